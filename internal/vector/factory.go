package vector

import (
	"context"
	"fmt"
)

// IndexType represents the type of vector index to use.
type IndexType string

const (
	// IndexTypeMemory uses brute-force search over entries held in memory and persisted to a file.
	IndexTypeMemory IndexType = "memory"
	// IndexTypePgvector stores entries in PostgreSQL with the pgvector extension.
	IndexTypePgvector IndexType = "pgvector"
)

// Options configures New.
type Options struct {
	Type       string
	Dimensions int
	ModelID    string
	Namespace  string
	// Dir is where the memory index keeps its file; empty keeps it in memory only.
	Dir string
	// PostgresURL and Table are used by the pgvector index.
	PostgresURL string
	Table       string
}

// New creates a vector index of the requested type. An empty type means memory.
func New(ctx context.Context, opts Options) (VectorIndex, error) {
	switch IndexType(opts.Type) {
	case IndexTypeMemory, "":
		if opts.Dir == "" {
			return NewMemoryIndex(opts.Dimensions, opts.ModelID, opts.Namespace)
		}
		return OpenMemoryIndex(opts.Dir, opts.Dimensions, opts.ModelID, opts.Namespace)
	case IndexTypePgvector:
		if opts.PostgresURL == "" {
			return nil, fmt.Errorf("pgvector index requires a postgres URL")
		}
		return NewPgvectorIndex(ctx, opts.PostgresURL, opts.Table, opts.Dimensions, opts.ModelID, opts.Namespace)
	default:
		return nil, fmt.Errorf("unknown index type: %s (supported: memory, pgvector)", opts.Type)
	}
}
