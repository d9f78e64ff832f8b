// Package ingest turns uploaded files into indexed chunks: load pages, split, embed, append to the vector index.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperjump/tanya/internal/apperr"
	"github.com/hyperjump/tanya/internal/config"
	"github.com/hyperjump/tanya/internal/embedding"
	"github.com/hyperjump/tanya/internal/extract"
	"github.com/hyperjump/tanya/internal/fileid"
	"github.com/hyperjump/tanya/internal/filestore"
	"github.com/hyperjump/tanya/internal/models"
	"github.com/hyperjump/tanya/internal/storage"
	"github.com/hyperjump/tanya/internal/vector"
	"go.uber.org/zap"
)

const opIngest = "ingest"

// Source describes where ingested chunks come from.
type Source struct {
	DocumentID string
	FileID     int64
	OwnerID    int64
}

// Ingestor loads files, splits them into chunks and appends their embeddings to a vector index.
// Ingesting the same file twice appends a second set of entries.
type Ingestor struct {
	files     storage.FileStore
	uploads   *filestore.Store
	embedder  embedding.Embedder
	index     vector.VectorIndex
	extractor *extract.Extractor
	chunker   *Chunker
	logger    *zap.Logger
}

// Option configures an Ingestor.
type Option func(*Ingestor)

// WithLogger sets a logger for ingestion events.
func WithLogger(l *zap.Logger) Option {
	return func(i *Ingestor) { i.logger = l }
}

// NewIngestor creates an ingestor with the given dependencies. File records are read
// through uploads. extractor may be nil; a default extractor is used then.
func NewIngestor(
	files storage.FileStore,
	uploads *filestore.Store,
	embedder embedding.Embedder,
	index vector.VectorIndex,
	cfg *config.RAGConfig,
	extractor *extract.Extractor,
	opts ...Option,
) *Ingestor {
	if extractor == nil {
		extractor = extract.NewExtractor()
	}
	i := &Ingestor{
		files:     files,
		uploads:   uploads,
		embedder:  embedder,
		index:     index,
		extractor: extractor,
		chunker:   NewChunker(cfg.ChunkSize, cfg.ChunkOverlap),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Ingest indexes the uploaded file with the given record id and marks it ingested
// when at least one chunk was indexed.
func (i *Ingestor) Ingest(ctx context.Context, fileID int64) (*models.IngestResult, error) {
	if fileID <= 0 {
		return nil, apperr.New(apperr.KindValidation, opIngest, "file_id is required")
	}
	f, err := i.files.GetFile(ctx, fileID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.New(apperr.KindNotFound, opIngest, fmt.Sprintf("file %d not found", fileID))
		}
		return nil, apperr.Wrap(apperr.KindInternal, opIngest, err)
	}

	ext := filepath.Ext(f.Path)
	if ext == "" {
		ext = filepath.Ext(f.OriginalName)
	}
	if err := checkSupported(ext); err != nil {
		return nil, err
	}
	content, err := i.readUpload(f.Path)
	if err != nil {
		return nil, apperr.WrapMsg(apperr.KindIngestion, opIngest, "read file", err)
	}
	src := Source{DocumentID: fileid.DocID(f.ID), FileID: f.ID, OwnerID: f.UserID}
	if f.Ingested {
		i.logger.Warn("re-ingesting file, index will hold duplicate entries",
			zap.Int64("file_id", f.ID),
			zap.String("content_hash", fileid.ContentHash(content)))
	}

	result, err := i.ingestContent(ctx, content, ext, src)
	if err != nil {
		return nil, err
	}
	result.AlreadyIngested = f.Ingested
	if result.ChunkCount > 0 {
		if _, err := i.files.MarkFileIngested(ctx, f.ID); err != nil {
			return nil, apperr.WrapMsg(apperr.KindInternal, opIngest, "mark file ingested", err)
		}
	}
	i.logger.Info("file ingested",
		zap.Int64("file_id", f.ID),
		zap.String("name", f.OriginalName),
		zap.Int("chunks", result.ChunkCount),
		zap.Int("index_size", result.IndexSize))
	return result, nil
}

// IngestPath indexes a file straight from disk without a file record.
// An empty src.DocumentID is derived from the absolute path.
func (i *Ingestor) IngestPath(ctx context.Context, path string, src Source) (*models.IngestResult, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, apperr.WrapMsg(apperr.KindValidation, opIngest, "absolute path", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.New(apperr.KindNotFound, opIngest, fmt.Sprintf("%s does not exist", absPath))
		}
		return nil, apperr.WrapMsg(apperr.KindIngestion, opIngest, "stat file", err)
	}
	if !info.Mode().IsRegular() {
		return nil, apperr.New(apperr.KindValidation, opIngest, fmt.Sprintf("not a regular file: %s", absPath))
	}
	if err := checkSupported(filepath.Ext(absPath)); err != nil {
		return nil, err
	}
	content, err := os.ReadFile(absPath)
	if err != nil {
		return nil, apperr.WrapMsg(apperr.KindIngestion, opIngest, "read file", err)
	}
	if src.DocumentID == "" {
		src.DocumentID = fileid.PathDocID(absPath)
	}
	i.logger.Debug("ingesting path",
		zap.String("path", absPath),
		zap.String("doc_id", src.DocumentID),
		zap.String("content_hash", fileid.ContentHash(content)))
	return i.ingestContent(ctx, content, filepath.Ext(absPath), src)
}

func (i *Ingestor) readUpload(path string) ([]byte, error) {
	f, err := i.uploads.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func checkSupported(ext string) error {
	if extract.Supported(ext) {
		return nil
	}
	return apperr.WrapMsg(apperr.KindIngestion, opIngest, "load document",
		fmt.Errorf("%w: %q", extract.ErrUnsupportedFormat, strings.ToLower(ext)))
}

func (i *Ingestor) ingestContent(ctx context.Context, content []byte, ext string, src Source) (*models.IngestResult, error) {
	pages, err := i.extractor.PagesBytes(content, strings.ToLower(ext))
	if err != nil {
		return nil, apperr.WrapMsg(apperr.KindIngestion, opIngest, "load document", err)
	}
	chunks, err := i.chunker.Chunk(src.DocumentID, pages)
	if err != nil {
		return nil, apperr.WrapMsg(apperr.KindIngestion, opIngest, "split document", err)
	}
	result := &models.IngestResult{FileID: src.FileID, DocumentID: src.DocumentID}
	if len(chunks) == 0 {
		i.logger.Warn("document has no text to index", zap.String("doc_id", src.DocumentID))
		return i.withIndexSize(ctx, result)
	}

	texts := make([]string, len(chunks))
	for n, ch := range chunks {
		texts[n] = ch.Content
	}
	embeddings, err := i.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, apperr.WrapMsg(apperr.KindEmbedding, opIngest, "generate embeddings", err)
	}
	if len(embeddings) != len(chunks) {
		return nil, apperr.New(apperr.KindEmbedding, opIngest,
			fmt.Sprintf("embedder returned %d vectors for %d chunks", len(embeddings), len(chunks)))
	}

	entries := make([]vector.Entry, len(chunks))
	for n, ch := range chunks {
		ch.FileID = src.FileID
		ch.OwnerID = src.OwnerID
		ch.Embedding = embeddings[n]
		entries[n] = vector.Entry{
			ID:     ch.ID,
			Text:   ch.Content,
			Vector: ch.Embedding,
			Metadata: vector.Metadata{
				DocumentID: ch.DocumentID,
				FileID:     ch.FileID,
				OwnerID:    ch.OwnerID,
				ChunkIndex: ch.ChunkIndex,
				Page:       ch.Page,
			},
		}
	}
	if err := i.index.Add(ctx, entries); err != nil {
		return nil, apperr.WrapMsg(apperr.KindIndex, opIngest, "index vectors", err)
	}
	result.ChunkCount = len(chunks)
	return i.withIndexSize(ctx, result)
}

func (i *Ingestor) withIndexSize(ctx context.Context, result *models.IngestResult) (*models.IngestResult, error) {
	size, err := i.index.Size(ctx)
	if err != nil {
		return nil, apperr.WrapMsg(apperr.KindIndex, opIngest, "index size", err)
	}
	result.IndexSize = size
	return result, nil
}
