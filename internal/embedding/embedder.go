// Package embedding turns text into fixed-length, L2-normalized vectors.
// Providers: local ONNX, Google, OpenAI, Ollama and a deterministic mock.
package embedding

import "context"

// Embedder produces vector embeddings for text. The same text and model always yield the same vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	// ModelID identifies the model; vector indexes are tagged with it.
	ModelID() string
	Close() error
}

// embedEach implements EmbedBatch for providers without a batch endpoint.
func embedEach(ctx context.Context, e Embedder, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = emb
	}
	return embeddings, nil
}
