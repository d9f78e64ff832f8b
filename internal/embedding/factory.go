package embedding

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Config selects a provider. Field meanings follow the embedding section of the config file;
// TokenizerPath is the tokenizer.json published with the onnx model.
type Config struct {
	Provider      string
	Model         string
	ModelPath     string
	TokenizerPath string
	Dimensions    int
	MaxTokens     int
	CacheSize     int
	APIKey        string
	BaseURL       string
}

// New builds the configured embedder and wraps it in a cache when CacheSize > 0.
// If the onnx provider cannot load its model, New logs a warning and falls back to the mock
// embedder; the differing model tag then keeps it away from an index built with onnx.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (Embedder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var (
		emb Embedder
		err error
	)
	switch cfg.Provider {
	case "onnx", "":
		emb, err = NewONNXEmbedder(cfg.ModelPath, cfg.TokenizerPath, cfg.Model, cfg.Dimensions, cfg.MaxTokens)
		if err != nil {
			logger.Warn("ONNX embedder not available, using mock embedder", zap.Error(err))
			emb, err = NewMockEmbedder(cfg.Dimensions), nil
		}
	case "google":
		emb, err = NewGoogleEmbedder(ctx, cfg.APIKey, cfg.Model, cfg.Dimensions)
	case "openai":
		emb, err = NewOpenAIEmbedder(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Dimensions)
	case "ollama":
		emb, err = NewOllamaEmbedder(cfg.BaseURL, cfg.Model, cfg.Dimensions)
	case "mock":
		emb = NewMockEmbedder(cfg.Dimensions)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	logger.Info("embedder ready", zap.String("model_id", emb.ModelID()), zap.Int("dimensions", emb.Dimensions()))
	if cfg.CacheSize > 0 {
		return NewCached(emb, cfg.CacheSize), nil
	}
	return emb, nil
}
