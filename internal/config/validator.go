package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationError describes one invalid config field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks a loaded config. It expects defaults to have been applied.
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, ValidationError{Field: "server.port", Message: "port must be between 1 and 65535"})
	}
	if c.Server.QueryRateLimit < 0 {
		errs = append(errs, ValidationError{Field: "server.query_rate_limit", Message: "query_rate_limit must not be negative"})
	}

	switch c.Embedding.Provider {
	case ProviderONNX, ProviderGoogle, ProviderOpenAI, ProviderOllama, ProviderMock:
	default:
		errs = append(errs, ValidationError{Field: "embedding.provider", Message: fmt.Sprintf("unknown provider: %s", c.Embedding.Provider)})
	}
	if c.Embedding.Dimensions < 1 {
		errs = append(errs, ValidationError{Field: "embedding.dimensions", Message: "dimensions must be positive"})
	}
	if c.Embedding.Provider == ProviderOllama && c.Embedding.BaseURL != "" {
		if _, err := url.Parse(c.Embedding.BaseURL); err != nil {
			errs = append(errs, ValidationError{Field: "embedding.base_url", Message: "invalid base URL"})
		}
	}

	switch c.Generation.Provider {
	case ProviderGoogle, ProviderOpenAI, ProviderAnthropic, ProviderMock:
	default:
		errs = append(errs, ValidationError{Field: "generation.provider", Message: fmt.Sprintf("unknown provider: %s", c.Generation.Provider)})
	}
	if c.Generation.MaxTokens < 1 {
		errs = append(errs, ValidationError{Field: "generation.max_tokens", Message: "max_tokens must be positive"})
	}

	switch c.Vector.IndexType {
	case IndexMemory:
	case IndexPgvector:
		if c.Vector.PostgresURL == "" {
			errs = append(errs, ValidationError{Field: "vector.postgres_url", Message: "postgres_url is required for pgvector"})
		}
		if strings.ContainsAny(c.Vector.TableName, " ;\"'") {
			errs = append(errs, ValidationError{Field: "vector.table_name", Message: "invalid table name"})
		}
	default:
		errs = append(errs, ValidationError{Field: "vector.index_type", Message: fmt.Sprintf("unknown index type: %s", c.Vector.IndexType)})
	}

	if c.RAG.ChunkSize < 1 {
		errs = append(errs, ValidationError{Field: "rag.chunk_size", Message: "chunk_size must be positive"})
	}
	if c.RAG.ChunkOverlap < 0 || c.RAG.ChunkOverlap >= c.RAG.ChunkSize {
		errs = append(errs, ValidationError{Field: "rag.chunk_overlap", Message: "chunk_overlap must be non-negative and less than chunk_size"})
	}
	if c.RAG.TopK < 1 {
		errs = append(errs, ValidationError{Field: "rag.top_k", Message: "top_k must be positive"})
	}
	if c.RAG.Scope != ScopeShared && c.RAG.Scope != ScopeOwner {
		errs = append(errs, ValidationError{Field: "rag.scope", Message: "scope must be shared or owner"})
	}

	return errs
}
