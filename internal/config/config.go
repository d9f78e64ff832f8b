// Package config provides configuration loading and structs for the tanya server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug      bool             `yaml:"debug"`
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Generation GenerationConfig `yaml:"generation"`
	Vector     VectorConfig     `yaml:"vector"`
	RAG        RAGConfig        `yaml:"rag"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// QueryRateLimit is queries per second across the process; 0 disables limiting.
	QueryRateLimit float64 `yaml:"query_rate_limit"`
	QueryBurst     int     `yaml:"query_burst"`
	MaxUploadBytes int64   `yaml:"max_upload_bytes"`
}

// StorageConfig holds paths for the database, the vector index file and uploads.
type StorageConfig struct {
	DatabasePath    string `yaml:"database_path"`
	VectorIndexPath string `yaml:"vector_index_path"`
	UploadDir       string `yaml:"upload_dir"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"`
	Model     string `yaml:"model"`
	ModelPath string `yaml:"model_path"`
	// TokenizerPath is the model's tokenizer.json (or vocab.txt); onnx only.
	TokenizerPath string `yaml:"tokenizer_path,omitempty"`
	Dimensions    int    `yaml:"dimensions"`
	MaxTokens     int    `yaml:"max_tokens"`
	CacheSize     int    `yaml:"cache_size"`
	APIKey        string `yaml:"api_key,omitempty"`
	BaseURL       string `yaml:"base_url,omitempty"`
}

// GenerationConfig selects and configures the generative model.
type GenerationConfig struct {
	Provider  string `yaml:"provider"`
	Model     string `yaml:"model"`
	APIKey    string `yaml:"api_key,omitempty"`
	BaseURL   string `yaml:"base_url,omitempty"`
	MaxTokens int    `yaml:"max_tokens"`
}

// VectorConfig selects the vector index backend.
type VectorConfig struct {
	IndexType   string `yaml:"index_type"`
	Namespace   string `yaml:"namespace"`
	PostgresURL string `yaml:"postgres_url,omitempty"`
	TableName   string `yaml:"table_name"`
}

// RAGConfig holds chunking and retrieval settings.
type RAGConfig struct {
	ChunkSize    int    `yaml:"chunk_size"`
	ChunkOverlap int    `yaml:"chunk_overlap"`
	TopK         int    `yaml:"top_k"`
	Scope        string `yaml:"scope"`
	EmptyContext string `yaml:"empty_context"`
}

// Load reads and parses the config file at path, applies defaults and env overrides, and expands paths.
// An empty path yields the defaults. A .env file next to the working directory is loaded first if present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	presetDefaults(&cfg)
	configDir := "."
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		configDir = filepath.Dir(path)
	}

	ApplyDefaults(&cfg)
	mergeWithEnv(&cfg)

	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.VectorIndexPath = expandPath(cfg.Storage.VectorIndexPath, configDir)
	cfg.Storage.UploadDir = expandPath(cfg.Storage.UploadDir, configDir)
	if cfg.Embedding.ModelPath != "" {
		cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	}
	if cfg.Embedding.TokenizerPath != "" {
		cfg.Embedding.TokenizerPath = expandPath(cfg.Embedding.TokenizerPath, configDir)
	}

	return &cfg, nil
}

// Save writes the config to path. Used by the CLI to write a starter config.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// mergeWithEnv fills secrets and connection strings from the environment.
// Explicit config values win over the generic provider variables.
func mergeWithEnv(cfg *Config) {
	if v := os.Getenv("TANYA_GENERATION_API_KEY"); v != "" {
		cfg.Generation.APIKey = v
	}
	if cfg.Generation.APIKey == "" {
		cfg.Generation.APIKey = providerKey(cfg.Generation.Provider)
	}
	if v := os.Getenv("TANYA_EMBEDDING_API_KEY"); v != "" {
		cfg.Embedding.APIKey = v
	}
	if cfg.Embedding.APIKey == "" {
		cfg.Embedding.APIKey = providerKey(cfg.Embedding.Provider)
	}
	if v := os.Getenv("DATABASE_URL"); v != "" && cfg.Vector.PostgresURL == "" {
		cfg.Vector.PostgresURL = v
	}
}

func providerKey(provider string) string {
	switch provider {
	case ProviderGoogle:
		return os.Getenv("GEMINI_API_KEY")
	case ProviderOpenAI:
		return os.Getenv("OPENAI_API_KEY")
	case ProviderAnthropic:
		return os.Getenv("ANTHROPIC_API_KEY")
	}
	return ""
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
