package embedding

import (
	"context"
	"testing"
)

func TestEmbeddingCache_GetSet(t *testing.T) {
	c := NewEmbeddingCache(2)
	if v, ok := c.Get("a"); ok || v != nil {
		t.Fatal("expected miss")
	}
	c.Set("a", []float32{1, 2, 3})
	v, ok := c.Get("a")
	if !ok || len(v) != 3 || v[0] != 1 {
		t.Errorf("Get: got %v, %v", v, ok)
	}
	c.Set("b", []float32{4, 5})
	// a becomes most recent, so c evicts b
	c.Get("a")
	c.Set("c", []float32{6})
	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("expected a to remain")
	}
	if c.Len() != 2 {
		t.Errorf("Len=%d, want 2", c.Len())
	}
}

type countingEmbedder struct {
	*MockEmbedder
	calls int
	texts int
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.calls++
	c.texts++
	return c.MockEmbedder.Embed(ctx, text)
}

func (c *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	c.calls++
	c.texts += len(texts)
	return c.MockEmbedder.EmbedBatch(ctx, texts)
}

func TestCached(t *testing.T) {
	inner := &countingEmbedder{MockEmbedder: NewMockEmbedder(8)}
	c := NewCached(inner, 10)
	ctx := context.Background()

	first, err := c.Embed(ctx, "hello")
	if err != nil {
		t.Fatal(err)
	}
	second, _ := c.Embed(ctx, "hello")
	if inner.calls != 1 {
		t.Errorf("second Embed should hit the cache, calls=%d", inner.calls)
	}
	if first[0] != second[0] {
		t.Error("cached vector differs")
	}

	vecs, err := c.EmbedBatch(ctx, []string{"hello", "world", "again"})
	if err != nil {
		t.Fatal(err)
	}
	if len(vecs) != 3 || vecs[0][0] != first[0] {
		t.Errorf("batch result wrong: %d vectors", len(vecs))
	}
	if inner.texts != 3 {
		t.Errorf("only misses should be embedded, texts=%d", inner.texts)
	}
	if c.ModelID() != "mock-8" || c.Dimensions() != 8 {
		t.Errorf("wrapper should expose inner identity: %s %d", c.ModelID(), c.Dimensions())
	}
}
