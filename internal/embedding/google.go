package embedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	genaiopt "google.golang.org/api/option"

	"github.com/hyperjump/tanya/pkg/utils"
)

// GoogleEmbedder calls the Gemini embedding API.
type GoogleEmbedder struct {
	client     *genai.Client
	model      string
	dimensions int
}

// NewGoogleEmbedder creates a client for model (for example text-embedding-004).
func NewGoogleEmbedder(ctx context.Context, apiKey, model string, dimensions int) (*GoogleEmbedder, error) {
	if apiKey == "" {
		return nil, errors.New("google embedder requires an API key")
	}
	client, err := genai.NewClient(ctx, genaiopt.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create google client: %w", err)
	}
	return &GoogleEmbedder{client: client, model: model, dimensions: dimensions}, nil
}

// Embed returns the normalized embedding for text.
func (e *GoogleEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	rsp, err := e.client.EmbeddingModel(e.model).EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, err
	}
	if rsp == nil || rsp.Embedding == nil || len(rsp.Embedding.Values) == 0 {
		return nil, errors.New("no response from Google")
	}
	return checkAndNormalize(rsp.Embedding.Values, e.dimensions)
}

// EmbedBatch calls Embed for each text.
func (e *GoogleEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return embedEach(ctx, e, texts)
}

func (e *GoogleEmbedder) Dimensions() int { return e.dimensions }

// ModelID is "google:<model>".
func (e *GoogleEmbedder) ModelID() string { return "google:" + e.model }

// Close closes the client.
func (e *GoogleEmbedder) Close() error {
	return e.client.Close()
}

// checkAndNormalize rejects vectors of the wrong length and scales the rest to unit length.
func checkAndNormalize(v []float32, dimensions int) ([]float32, error) {
	if dimensions > 0 && len(v) != dimensions {
		return nil, fmt.Errorf("provider returned %d dimensions, expected %d", len(v), dimensions)
	}
	out := make([]float32, len(v))
	copy(out, v)
	utils.NormalizeL2(out)
	return out, nil
}
