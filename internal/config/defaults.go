package config

import "time"

// Provider and backend names accepted in config.
const (
	ProviderONNX      = "onnx"
	ProviderGoogle    = "google"
	ProviderOpenAI    = "openai"
	ProviderOllama    = "ollama"
	ProviderAnthropic = "anthropic"
	ProviderMock      = "mock"

	IndexMemory   = "memory"
	IndexPgvector = "pgvector"

	ScopeShared = "shared"
	ScopeOwner  = "owner"
)

// DefaultEmptyContext is the context text used when retrieval finds nothing.
const DefaultEmptyContext = "No relevant context available from the database."

// DefaultTopK is the number of chunks retrieved per query.
const DefaultTopK = 6

// Defaults for fields where an explicit zero is a valid setting.
const (
	DefaultChunkOverlap = 100
	DefaultCacheSize    = 10000
)

// Default returns a Config with every default applied.
func Default() *Config {
	cfg := &Config{}
	presetDefaults(cfg)
	ApplyDefaults(cfg)
	return cfg
}

// presetDefaults sets the fields ApplyDefaults leaves alone because zero means "off" for them:
// chunk_overlap: 0 disables overlap and cache_size: 0 disables the embedding cache.
// Load calls it before decoding the file so that an explicit zero survives.
func presetDefaults(cfg *Config) {
	cfg.RAG.ChunkOverlap = DefaultChunkOverlap
	cfg.Embedding.CacheSize = DefaultCacheSize
}

// ApplyDefaults sets default values for zero values in cfg. chunk_overlap and cache_size are
// not touched; see presetDefaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 120 * time.Second
	}
	if cfg.Server.QueryBurst == 0 {
		cfg.Server.QueryBurst = 5
	}
	if cfg.Server.MaxUploadBytes == 0 {
		cfg.Server.MaxUploadBytes = 32 << 20
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/tanya/data/db/tanya.db"
	}
	if cfg.Storage.VectorIndexPath == "" {
		cfg.Storage.VectorIndexPath = "/usr/local/var/tanya/data/indices/vector"
	}
	if cfg.Storage.UploadDir == "" {
		cfg.Storage.UploadDir = "/usr/local/var/tanya/data/uploads"
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = ProviderONNX
	}
	if cfg.Embedding.Model == "" {
		switch cfg.Embedding.Provider {
		case ProviderGoogle:
			cfg.Embedding.Model = "text-embedding-004"
		case ProviderOpenAI:
			cfg.Embedding.Model = "text-embedding-3-small"
		case ProviderOllama:
			cfg.Embedding.Model = "nomic-embed-text"
		default:
			cfg.Embedding.Model = "all-MiniLM-L6-v2"
		}
	}
	if cfg.Embedding.Provider == ProviderONNX && cfg.Embedding.ModelPath == "" {
		cfg.Embedding.ModelPath = "/usr/local/var/tanya/data/models/all-MiniLM-L6-v2.onnx"
	}
	if cfg.Embedding.Provider == ProviderONNX && cfg.Embedding.TokenizerPath == "" {
		cfg.Embedding.TokenizerPath = "/usr/local/var/tanya/data/models/all-MiniLM-L6-v2-tokenizer.json"
	}
	if cfg.Embedding.Dimensions == 0 {
		switch cfg.Embedding.Provider {
		case ProviderGoogle:
			cfg.Embedding.Dimensions = 768
		case ProviderOpenAI:
			cfg.Embedding.Dimensions = 1536
		case ProviderOllama:
			cfg.Embedding.Dimensions = 768
		default:
			cfg.Embedding.Dimensions = 384
		}
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.Provider == ProviderOllama && cfg.Embedding.BaseURL == "" {
		cfg.Embedding.BaseURL = "http://localhost:11434"
	}
	if cfg.Generation.Provider == "" {
		cfg.Generation.Provider = ProviderGoogle
	}
	if cfg.Generation.Model == "" {
		switch cfg.Generation.Provider {
		case ProviderOpenAI:
			cfg.Generation.Model = "gpt-4o-mini"
		case ProviderAnthropic:
			cfg.Generation.Model = "claude-3-5-haiku-latest"
		case ProviderMock:
			cfg.Generation.Model = "echo"
		default:
			cfg.Generation.Model = "gemini-1.5-flash"
		}
	}
	if cfg.Generation.MaxTokens == 0 {
		cfg.Generation.MaxTokens = 1024
	}
	if cfg.Vector.IndexType == "" {
		cfg.Vector.IndexType = IndexMemory
	}
	if cfg.Vector.Namespace == "" {
		cfg.Vector.Namespace = "tanya"
	}
	if cfg.Vector.TableName == "" {
		cfg.Vector.TableName = "tanya_chunks"
	}
	if cfg.RAG.ChunkSize == 0 {
		cfg.RAG.ChunkSize = 1000
	}
	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = DefaultTopK
	}
	if cfg.RAG.Scope == "" {
		cfg.RAG.Scope = ScopeShared
	}
	if cfg.RAG.EmptyContext == "" {
		cfg.RAG.EmptyContext = DefaultEmptyContext
	}
}
