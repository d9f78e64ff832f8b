package vector

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Requires a PostgreSQL server with the pgvector extension available.
func testPostgresURL(t *testing.T) string {
	url := os.Getenv("TANYA_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TANYA_TEST_DATABASE_URL not set")
	}
	return url
}

func TestPgvectorIndex_AddSearch(t *testing.T) {
	url := testPostgresURL(t)
	ctx := context.Background()
	table := fmt.Sprintf("tanya_test_%d", time.Now().UnixNano())

	idx, err := NewPgvectorIndex(ctx, url, table, 3, "mock-3", "test")
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = idx.pool.Exec(ctx, "DROP TABLE IF EXISTS "+table)
		_, _ = idx.pool.Exec(ctx, "DROP TABLE IF EXISTS "+table+"_meta")
		_ = idx.Close()
	})

	require.NoError(t, idx.Add(ctx, []Entry{
		{ID: "a", Text: "alpha", Vector: []float32{1, 0, 0}, Metadata: Metadata{DocumentID: "file:1", OwnerID: 1}},
		{ID: "b", Text: "beta", Vector: []float32{0, 1, 0}, Metadata: Metadata{DocumentID: "file:2", OwnerID: 2}},
	}))

	n, err := idx.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	results, err := idx.Search(ctx, []float32{1, 0, 0}, 1, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "alpha", results[0].Text)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)

	results, err = idx.Search(ctx, []float32{1, 0, 0}, 5, &Filter{OwnerID: 2})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "b", results[0].ID)

	_, err = NewPgvectorIndex(ctx, url, table, 3, "other-model", "test")
	assert.True(t, errors.Is(err, ErrModelMismatch), "got %v", err)
}
