// Package status reports record counts, vector index size and the active configuration.
package status

import (
	"context"
	"fmt"

	"github.com/hyperjump/tanya/internal/config"
	"github.com/hyperjump/tanya/internal/models"
	"github.com/hyperjump/tanya/internal/storage"
	"github.com/hyperjump/tanya/internal/vector"
)

// Counter is the subset of storage.Storage that status reads.
type Counter interface {
	CountUsers(ctx context.Context) (int64, error)
	CountFiles(ctx context.Context) (int64, error)
	CountIngestedFiles(ctx context.Context) (int64, error)
	CountMessages(ctx context.Context) (int64, error)
}

// Collect gathers the status. cfg may be nil, in which case config and disk usage are omitted.
func Collect(ctx context.Context, store Counter, index vector.VectorIndex, cfg *config.Config) (*models.Status, error) {
	var st models.Status
	var err error
	if st.Users, err = store.CountUsers(ctx); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if st.Files, err = store.CountFiles(ctx); err != nil {
		return nil, fmt.Errorf("count files: %w", err)
	}
	if st.IngestedFiles, err = store.CountIngestedFiles(ctx); err != nil {
		return nil, fmt.Errorf("count ingested files: %w", err)
	}
	if st.Messages, err = store.CountMessages(ctx); err != nil {
		return nil, fmt.Errorf("count messages: %w", err)
	}
	if st.VectorIndexSize, err = index.Size(ctx); err != nil {
		return nil, fmt.Errorf("vector index size: %w", err)
	}
	if cfg == nil {
		return &st, nil
	}

	st.Config = &models.StatusConfig{
		VectorIndexType:    cfg.Vector.IndexType,
		Namespace:          index.Namespace(),
		EmbeddingProvider:  cfg.Embedding.Provider,
		EmbeddingModel:     index.ModelID(),
		GenerationProvider: cfg.Generation.Provider,
		GenerationModel:    cfg.Generation.Model,
		ChunkSize:          cfg.RAG.ChunkSize,
		ChunkOverlap:       cfg.RAG.ChunkOverlap,
		TopK:               cfg.RAG.TopK,
		Scope:              cfg.RAG.Scope,
		DatabasePath:       cfg.Storage.DatabasePath,
		UploadDir:          cfg.Storage.UploadDir,
	}
	paths := []string{cfg.Storage.DatabasePath, cfg.Storage.UploadDir}
	if cfg.Vector.IndexType == config.IndexMemory {
		st.Config.VectorIndexPath = cfg.Storage.VectorIndexPath
		paths = append(paths, cfg.Storage.VectorIndexPath)
	}
	if n, err := storage.DiskUsageBytes(paths...); err == nil {
		st.DiskUsageBytes = &n
	}
	return &st, nil
}
