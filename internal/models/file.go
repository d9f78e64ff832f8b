package models

import "time"

// File is an uploaded document owned by a user.
// Ingested flips from false to true once, when an ingestion run indexes at least one chunk.
type File struct {
	ID           int64      `json:"id" db:"id"`
	UserID       int64      `json:"user_id" db:"user_id"`
	Path         string     `json:"-" db:"path"`
	OriginalName string     `json:"file_name" db:"original_name"`
	Caption      string     `json:"file_caption" db:"caption"`
	ContentType  string     `json:"content_type" db:"content_type"`
	Size         int64      `json:"size" db:"size"`
	Ingested     bool       `json:"ingested" db:"ingested"`
	IngestedAt   *time.Time `json:"ingested_at,omitempty" db:"ingested_at"`
	CreatedAt    time.Time  `json:"uploaded_at" db:"created_at"`
}

// IngestResult reports one ingestion run.
type IngestResult struct {
	FileID          int64  `json:"file_id"`
	DocumentID      string `json:"document_id"`
	ChunkCount      int    `json:"chunk_count"`
	IndexSize       int    `json:"index_size"`
	AlreadyIngested bool   `json:"already_ingested,omitempty"`
}
