package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
  request_timeout: 30s
storage:
  database_path: "test.db"
rag:
  top_k: 4
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Server.RequestTimeout != 30*time.Second {
		t.Errorf("request_timeout = %v, want 30s", cfg.Server.RequestTimeout)
	}
	if cfg.Storage.DatabasePath == "" {
		t.Error("database_path should be set")
	}
	if cfg.RAG.TopK != 4 {
		t.Errorf("top_k = %d, want 4", cfg.RAG.TopK)
	}
	if cfg.RAG.ChunkSize != 1000 || cfg.RAG.ChunkOverlap != 100 {
		t.Errorf("chunking defaults not applied: %+v", cfg.RAG)
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
}

func TestLoad_emptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("port = %d, want 8000", cfg.Server.Port)
	}
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("defaults should validate, got %v", errs)
	}
}

func TestLoad_explicitZeroDisables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
embedding:
  cache_size: 0
rag:
  chunk_overlap: 0
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.RAG.ChunkOverlap != 0 {
		t.Errorf("chunk_overlap = %d, want 0", cfg.RAG.ChunkOverlap)
	}
	if cfg.Embedding.CacheSize != 0 {
		t.Errorf("cache_size = %d, want 0", cfg.Embedding.CacheSize)
	}
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("zero overlap should validate, got %v", errs)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.RAG.ChunkOverlap != DefaultChunkOverlap || cfg.Embedding.CacheSize != DefaultCacheSize {
		t.Errorf("defaults not applied: overlap=%d cache=%d", cfg.RAG.ChunkOverlap, cfg.Embedding.CacheSize)
	}
	if cfg.RAG.ChunkSize != 1000 || cfg.Server.Port != 8000 {
		t.Errorf("unexpected defaults: %+v %+v", cfg.RAG, cfg.Server)
	}
}

func TestLoad_missingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
storage:
  database_path: "./data/db/tanya.db"
  vector_index_path: "./data/indices/vector"
  upload_dir: "./data/uploads"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	wantDB := filepath.Join(dir, "data", "db", "tanya.db")
	if cfg.Storage.DatabasePath != wantDB {
		t.Errorf("database_path = %s, want %s", cfg.Storage.DatabasePath, wantDB)
	}
	wantUploads := filepath.Join(dir, "data", "uploads")
	if cfg.Storage.UploadDir != wantUploads {
		t.Errorf("upload_dir = %s, want %s", cfg.Storage.UploadDir, wantUploads)
	}
}

func TestLoad_envOverrides(t *testing.T) {
	t.Setenv("TANYA_GENERATION_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "gem-key")
	t.Setenv("OPENAI_API_KEY", "oa-key")
	t.Setenv("DATABASE_URL", "postgres://localhost/tanya")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
embedding:
  provider: openai
generation:
  provider: google
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Generation.APIKey != "gem-key" {
		t.Errorf("generation api key = %q, want gem-key", cfg.Generation.APIKey)
	}
	if cfg.Embedding.APIKey != "oa-key" {
		t.Errorf("embedding api key = %q, want oa-key", cfg.Embedding.APIKey)
	}
	if cfg.Embedding.Dimensions != 1536 {
		t.Errorf("openai dimensions = %d, want 1536", cfg.Embedding.Dimensions)
	}
	if cfg.Vector.PostgresURL != "postgres://localhost/tanya" {
		t.Errorf("postgres url = %q", cfg.Vector.PostgresURL)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Server.Host != "localhost" {
		t.Errorf("default host: got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("default port: got %d", cfg.Server.Port)
	}
	if cfg.Embedding.Provider != ProviderONNX || cfg.Embedding.Model != "all-MiniLM-L6-v2" {
		t.Errorf("embedding defaults: %+v", cfg.Embedding)
	}
	if cfg.Embedding.Dimensions != 384 {
		t.Errorf("default dimensions: got %d", cfg.Embedding.Dimensions)
	}
	if filepath.Base(cfg.Embedding.TokenizerPath) != "all-MiniLM-L6-v2-tokenizer.json" {
		t.Errorf("default tokenizer path: got %s", cfg.Embedding.TokenizerPath)
	}
	if cfg.Generation.Provider != ProviderGoogle {
		t.Errorf("default generation provider: got %s", cfg.Generation.Provider)
	}
	if cfg.RAG.TopK != 6 {
		t.Errorf("default top_k: got %d", cfg.RAG.TopK)
	}
	if cfg.RAG.Scope != ScopeShared {
		t.Errorf("default scope: got %s", cfg.RAG.Scope)
	}
	if cfg.RAG.EmptyContext != DefaultEmptyContext {
		t.Errorf("default empty context: got %q", cfg.RAG.EmptyContext)
	}
	if cfg.Vector.IndexType != IndexMemory || cfg.Vector.Namespace != "tanya" {
		t.Errorf("vector defaults: %+v", cfg.Vector)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{"overlap not below size", func(c *Config) { c.RAG.ChunkOverlap = c.RAG.ChunkSize }, "rag.chunk_overlap"},
		{"negative top_k", func(c *Config) { c.RAG.TopK = -1 }, "rag.top_k"},
		{"unknown scope", func(c *Config) { c.RAG.Scope = "team" }, "rag.scope"},
		{"unknown embedder", func(c *Config) { c.Embedding.Provider = "bert" }, "embedding.provider"},
		{"unknown generator", func(c *Config) { c.Generation.Provider = "llama" }, "generation.provider"},
		{"pgvector without url", func(c *Config) { c.Vector.IndexType = IndexPgvector }, "vector.postgres_url"},
		{"unknown index", func(c *Config) { c.Vector.IndexType = "faiss" }, "vector.index_type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			ApplyDefaults(cfg)
			tt.mutate(cfg)
			errs := cfg.Validate()
			found := false
			for _, e := range errs {
				if e.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("Validate() = %v, want an error for %s", errs, tt.wantField)
			}
		})
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "saved.yaml")
	cfg := &Config{
		Server:  ServerConfig{Host: "localhost", Port: 9090},
		Storage: StorageConfig{DatabasePath: "/tmp/db"},
	}
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Server.Port != 9090 {
		t.Errorf("loaded port: got %d", loaded.Server.Port)
	}
	if loaded.Storage.DatabasePath != "/tmp/db" {
		t.Errorf("loaded database_path: got %s", loaded.Storage.DatabasePath)
	}
}
