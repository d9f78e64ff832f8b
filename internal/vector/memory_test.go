package vector

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func entry(id string, vec []float32, owner int64) Entry {
	return Entry{ID: id, Text: "text " + id, Vector: vec, Metadata: Metadata{DocumentID: "file:1", OwnerID: owner}}
}

func TestMemoryIndex_AddSearch(t *testing.T) {
	idx, err := NewMemoryIndex(3, "mock-3", "test")
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()
	ctx := context.Background()

	err = idx.Add(ctx, []Entry{
		entry("a", []float32{1, 0, 0}, 1),
		entry("b", []float32{0.9, 0.1, 0}, 1),
		entry("c", []float32{0, 1, 0}, 2),
	})
	if err != nil {
		t.Fatal(err)
	}
	if n, _ := idx.Size(ctx); n != 3 {
		t.Errorf("Size=%d", n)
	}

	results, err := idx.Search(ctx, []float32{1, 0, 0}, 2, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ID != "a" || results[0].Text != "text a" {
		t.Errorf("top result should be a, got %+v", results[0])
	}
	if results[0].Score < results[1].Score {
		t.Errorf("results not ordered by score: %f < %f", results[0].Score, results[1].Score)
	}
}

func TestMemoryIndex_SearchEdgeCases(t *testing.T) {
	idx, _ := NewMemoryIndex(2, "", "")
	ctx := context.Background()

	results, err := idx.Search(ctx, []float32{1, 0}, 5, nil)
	if err != nil {
		t.Fatal(err)
	}
	if results == nil || len(results) != 0 {
		t.Errorf("empty index should give empty non-nil slice, got %v", results)
	}

	_ = idx.Add(ctx, []Entry{entry("x", []float32{1, 0}, 0)})
	results, _ = idx.Search(ctx, []float32{1, 0}, 0, nil)
	if len(results) != 0 {
		t.Errorf("k=0 should give no results, got %d", len(results))
	}
	results, _ = idx.Search(ctx, []float32{1, 0}, 10, nil)
	if len(results) != 1 {
		t.Errorf("k larger than size should return all, got %d", len(results))
	}

	if _, err := idx.Search(ctx, []float32{1, 0, 0}, 1, nil); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected dimension mismatch, got %v", err)
	}
	if err := idx.Add(ctx, []Entry{entry("bad", []float32{1}, 0)}); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected dimension mismatch on add, got %v", err)
	}
}

func TestMemoryIndex_Filter(t *testing.T) {
	idx, _ := NewMemoryIndex(2, "", "")
	ctx := context.Background()
	_ = idx.Add(ctx, []Entry{
		entry("mine", []float32{0.6, 0.8}, 1),
		entry("theirs", []float32{1, 0}, 2),
	})
	results, err := idx.Search(ctx, []float32{1, 0}, 5, &Filter{OwnerID: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].ID != "mine" {
		t.Errorf("owner filter: got %+v", results)
	}
}

func TestMemoryIndex_AddDuplicatesAppend(t *testing.T) {
	idx, _ := NewMemoryIndex(2, "", "")
	ctx := context.Background()
	batch := []Entry{entry("a", []float32{1, 0}, 0), entry("b", []float32{0, 1}, 0)}
	_ = idx.Add(ctx, batch)
	_ = idx.Add(ctx, batch)
	if n, _ := idx.Size(ctx); n != 4 {
		t.Errorf("re-adding should append, size=%d", n)
	}
}

func TestMemoryIndex_PersistAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	idx, err := OpenMemoryIndex(dir, 2, "mock-2", "tanya")
	if err != nil {
		t.Fatal(err)
	}
	e := entry("a", []float32{0.6, 0.8}, 7)
	e.Metadata.FileID = 3
	e.Metadata.Page = 2
	if err := idx.Add(ctx, []Entry{e}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "tanya.idx")); err != nil {
		t.Fatalf("index file not written: %v", err)
	}

	reopened, err := OpenMemoryIndex(dir, 2, "mock-2", "tanya")
	if err != nil {
		t.Fatal(err)
	}
	results, err := reopened.Search(ctx, []float32{0.6, 0.8}, 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result after reopen, got %d", len(results))
	}
	got := results[0]
	if got.ID != "a" || got.Text != "text a" || got.Metadata.FileID != 3 || got.Metadata.OwnerID != 7 || got.Metadata.Page != 2 {
		t.Errorf("entry not restored: %+v", got)
	}
}

func TestMemoryIndex_ModelMismatch(t *testing.T) {
	dir := t.TempDir()
	idx, err := OpenMemoryIndex(dir, 2, "mock-2", "tanya")
	if err != nil {
		t.Fatal(err)
	}
	_ = idx.Add(context.Background(), []Entry{entry("a", []float32{1, 0}, 0)})

	_, err = OpenMemoryIndex(dir, 2, "google:text-embedding-004", "tanya")
	if !errors.Is(err, ErrModelMismatch) {
		t.Errorf("expected model mismatch, got %v", err)
	}
	_, err = OpenMemoryIndex(dir, 3, "mock-2", "tanya")
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected dimension mismatch, got %v", err)
	}
	if _, err := OpenMemoryIndex(dir, 2, "google:text-embedding-004", "other"); err != nil {
		t.Errorf("a different namespace is a separate file: %v", err)
	}
}

func TestMemoryIndex_LoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "tanya.idx"), []byte("garbage"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenMemoryIndex(dir, 2, "", "tanya"); err == nil {
		t.Error("expected error for corrupt index file")
	}
}
