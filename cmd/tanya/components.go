package main

import (
	"context"
	"fmt"
	"io"

	"github.com/hyperjump/tanya/internal/account"
	"github.com/hyperjump/tanya/internal/config"
	"github.com/hyperjump/tanya/internal/embedding"
	"github.com/hyperjump/tanya/internal/extract"
	"github.com/hyperjump/tanya/internal/filestore"
	"github.com/hyperjump/tanya/internal/generator"
	"github.com/hyperjump/tanya/internal/ingest"
	"github.com/hyperjump/tanya/internal/rag"
	"github.com/hyperjump/tanya/internal/server"
	"github.com/hyperjump/tanya/internal/storage"
	"github.com/hyperjump/tanya/internal/vector"
	"go.uber.org/zap"
)

// Components holds the wired application components.
type Components struct {
	Storage   *storage.SQLiteStorage
	Uploads   *filestore.Store
	Embedder  embedding.Embedder
	Index     vector.VectorIndex
	Generator generator.Generator
	Accounts  *account.Service
	Ingestor  *ingest.Ingestor
	// RAG is nil unless components were built with a generator.
	RAG *rag.Service
}

// Deps returns the server dependencies.
func (c *Components) Deps() server.Deps {
	return server.Deps{
		Storage:  c.Storage,
		Accounts: c.Accounts,
		Uploads:  c.Uploads,
		Ingestor: c.Ingestor,
		RAG:      c.RAG,
		Index:    c.Index,
	}
}

// Close releases the components. The memory index is flushed to disk.
func (c *Components) Close() {
	if c.Index != nil {
		_ = c.Index.Close()
	}
	if closer, ok := c.Generator.(io.Closer); ok {
		_ = closer.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

// initializeComponents wires storage, embedder, vector index and services from cfg.
// The generator is only created when withGenerator is set, so ingest and status work without API keys.
func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger, withGenerator bool) (*Components, error) {
	c := &Components{}
	ok := false
	defer func() {
		if !ok {
			c.Close()
		}
	}()

	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	c.Storage = store

	uploads, err := filestore.New(cfg.Storage.UploadDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize upload directory: %w", err)
	}
	c.Uploads = uploads

	emb, err := embedding.New(ctx, embedding.Config{
		Provider:      cfg.Embedding.Provider,
		Model:         cfg.Embedding.Model,
		ModelPath:     cfg.Embedding.ModelPath,
		TokenizerPath: cfg.Embedding.TokenizerPath,
		Dimensions:    cfg.Embedding.Dimensions,
		MaxTokens:     cfg.Embedding.MaxTokens,
		CacheSize:     cfg.Embedding.CacheSize,
		APIKey:        cfg.Embedding.APIKey,
		BaseURL:       cfg.Embedding.BaseURL,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	c.Embedder = emb

	index, err := vector.New(ctx, vector.Options{
		Type:        cfg.Vector.IndexType,
		Dimensions:  emb.Dimensions(),
		ModelID:     emb.ModelID(),
		Namespace:   cfg.Vector.Namespace,
		Dir:         cfg.Storage.VectorIndexPath,
		PostgresURL: cfg.Vector.PostgresURL,
		Table:       cfg.Vector.TableName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize vector index: %w", err)
	}
	c.Index = index
	size, err := index.Size(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read vector index size: %w", err)
	}
	logger.Info("vector index initialized",
		zap.String("type", cfg.Vector.IndexType),
		zap.String("namespace", index.Namespace()),
		zap.String("model_id", index.ModelID()),
		zap.Int("size", size))

	c.Accounts = account.NewService(store, account.WithLogger(logger))
	c.Ingestor = ingest.NewIngestor(store, uploads, emb, index, &cfg.RAG, extract.NewExtractor(), ingest.WithLogger(logger))

	if withGenerator {
		gen, err := generator.New(ctx, cfg.Generation.Provider,
			generator.WithAPIKey(cfg.Generation.APIKey),
			generator.WithModel(cfg.Generation.Model),
			generator.WithBaseURL(cfg.Generation.BaseURL),
			generator.WithMaxTokens(cfg.Generation.MaxTokens),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize generator: %w", err)
		}
		c.Generator = gen
		c.RAG = rag.NewService(store, emb, index, gen, cfg.RAG, rag.WithLogger(logger))
		logger.Info("generator ready", zap.String("model", gen.Model()))
	}

	ok = true
	return c, nil
}
