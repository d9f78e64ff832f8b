package embedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms/ollama"
)

// OllamaEmbedder calls a local Ollama server through langchaingo.
type OllamaEmbedder struct {
	llm        *ollama.LLM
	model      string
	dimensions int
}

// NewOllamaEmbedder connects to serverURL (default http://localhost:11434).
func NewOllamaEmbedder(serverURL, model string, dimensions int) (*OllamaEmbedder, error) {
	if serverURL == "" {
		serverURL = "http://localhost:11434"
	}
	llm, err := ollama.New(ollama.WithModel(model), ollama.WithServerURL(serverURL))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ollama: %w", err)
	}
	return &OllamaEmbedder{llm: llm, model: model, dimensions: dimensions}, nil
}

// Embed returns the normalized embedding for text.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds all texts in one call.
func (e *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	raw, err := e.llm.CreateEmbedding(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(raw) != len(texts) {
		return nil, errors.New("no response from Ollama")
	}
	out := make([][]float32, len(raw))
	for i, v := range raw {
		if out[i], err = checkAndNormalize(v, e.dimensions); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (e *OllamaEmbedder) Dimensions() int { return e.dimensions }

// ModelID is "ollama:<model>".
func (e *OllamaEmbedder) ModelID() string { return "ollama:" + e.model }

func (e *OllamaEmbedder) Close() error { return nil }
