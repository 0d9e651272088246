//go:build integration

package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore connects to a local Qdrant. Skips test if Qdrant is not running.
func setupTestStore(t *testing.T) *QdrantStore {
	store, err := NewQdrantStore(context.Background(), "localhost", 6334)
	if err != nil {
		t.Skipf("Qdrant not available: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestQdrant_SearchRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	idx, err := store.NewIndex(ctx, "qa")
	require.NoError(t, err)
	defer idx.Close()

	require.NoError(t, idx.Add(ctx, animals()))
	assert.Equal(t, 3, idx.Len())

	hits, err := idx.Search(ctx, []float32{0.1, 0.9, 0.2}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "The dog ran.", hits[0].Text)
	assert.Equal(t, 1, hits[0].Position)

	all, err := idx.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"The cat sat.", "The dog ran.", "The bird flew."}, Texts(all))
}

func TestQdrant_CloseDropsCollection(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	idx, err := store.NewIndex(ctx, "summary")
	require.NoError(t, err)
	require.NoError(t, idx.Add(ctx, animals()))

	name := idx.(*Qdrant).Collection()
	exists, err := store.client.CollectionExists(ctx, name)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, idx.Close())

	exists, err = store.client.CollectionExists(ctx, name)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = idx.Search(ctx, []float32{1, 0, 0}, 1)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestQdrant_DimensionMismatch(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	idx, err := store.NewIndex(ctx, "qa")
	require.NoError(t, err)
	defer idx.Close()

	require.NoError(t, idx.Add(ctx, animals()))
	err = idx.Add(ctx, []Document{{Text: "x", Vector: []float32{1}}})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}
