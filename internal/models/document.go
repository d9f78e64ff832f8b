package models

import "time"

// DocumentChunk is a bounded slice of a source document's text, the unit of embedding and retrieval.
type DocumentChunk struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	FileID     int64     `json:"file_id,omitempty"`
	OwnerID    int64     `json:"owner_id,omitempty"`
	Content    string    `json:"content"`
	ChunkIndex int       `json:"chunk_index"`
	Page       int       `json:"page"`
	Embedding  []float32 `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

// Status summarises stored records and the vector index.
type Status struct {
	Users           int64         `json:"users"`
	Files           int64         `json:"files"`
	IngestedFiles   int64         `json:"ingested_files"`
	Messages        int64         `json:"messages"`
	VectorIndexSize int           `json:"vector_index_size"`
	DiskUsageBytes  *int64        `json:"disk_usage_bytes,omitempty"`
	Config          *StatusConfig `json:"config,omitempty"`
}

// StatusConfig holds the configuration values reported by status.
type StatusConfig struct {
	VectorIndexType    string `json:"vector_index_type"`
	Namespace          string `json:"namespace"`
	EmbeddingProvider  string `json:"embedding_provider"`
	EmbeddingModel     string `json:"embedding_model"`
	GenerationProvider string `json:"generation_provider"`
	GenerationModel    string `json:"generation_model"`
	ChunkSize          int    `json:"chunk_size"`
	ChunkOverlap       int    `json:"chunk_overlap"`
	TopK               int    `json:"top_k"`
	Scope              string `json:"scope"`
	DatabasePath       string `json:"database_path,omitempty"`
	VectorIndexPath    string `json:"vector_index_path,omitempty"`
	UploadDir          string `json:"upload_dir,omitempty"`
}
