// Package vector provides vector indexes for chunk embeddings and similarity search.
package vector

import (
	"context"
	"errors"
)

var (
	// ErrModelMismatch is returned when an index was built with a different embedding model.
	ErrModelMismatch = errors.New("embedding model mismatch")
	// ErrDimensionMismatch is returned when a vector has the wrong length for the index.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// VectorIndex stores chunk vectors and answers nearest-neighbour queries.
// Add only appends; the same chunk text added twice yields two entries.
type VectorIndex interface {
	Add(ctx context.Context, entries []Entry) error
	// Search returns up to k entries ordered by descending score. An empty index yields an empty slice.
	Search(ctx context.Context, query []float32, k int, filter *Filter) ([]*Result, error)
	Size(ctx context.Context) (int, error)
	Dimensions() int
	// ModelID is the embedding model tag the index was built with.
	ModelID() string
	Namespace() string
	Close() error
}

// Metadata is stored alongside each vector.
type Metadata struct {
	DocumentID string `json:"document_id"`
	FileID     int64  `json:"file_id,omitempty"`
	OwnerID    int64  `json:"owner_id,omitempty"`
	ChunkIndex int    `json:"chunk_index"`
	Page       int    `json:"page,omitempty"`
}

// Entry is one chunk to index.
type Entry struct {
	ID       string
	Text     string
	Vector   []float32
	Metadata Metadata
}

// Filter restricts a search. Zero fields match everything.
type Filter struct {
	OwnerID int64
	FileID  int64
}

func (f *Filter) matches(m Metadata) bool {
	if f == nil {
		return true
	}
	if f.OwnerID != 0 && m.OwnerID != f.OwnerID {
		return false
	}
	if f.FileID != 0 && m.FileID != f.FileID {
		return false
	}
	return true
}

// Result is a single search hit.
type Result struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	Score    float64  `json:"score"` // inner product; cosine similarity for normalized vectors
	Metadata Metadata `json:"metadata"`
}
