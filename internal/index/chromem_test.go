package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docubot/internal/config"
	"docubot/internal/models"
)

func newChromem(t *testing.T) *ChromemStore {
	t.Helper()
	store, err := NewChromemStore(&config.ChromemConfig{InMemory: true, Collection: "test"})
	require.NoError(t, err)
	return store
}

func TestChromemUpsertAndQuery(t *testing.T) {
	store := newChromem(t)
	ctx := context.Background()

	err := store.Upsert(ctx, []models.VectorRecord{
		{ID: "doc_0", Values: []float32{1, 0, 0}, Metadata: models.Metadata{Source: "a.txt", Text: "alpha"}},
		{ID: "doc_1", Values: []float32{0, 1, 0}, Metadata: models.Metadata{Source: "a.txt", Text: "beta"}},
	})
	require.NoError(t, err)

	matches, err := store.Query(ctx, []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	assert.Equal(t, "alpha", matches[0].Text)
	assert.Equal(t, "a.txt", matches[0].Source)
}

func TestChromemUpsertReplacesExistingID(t *testing.T) {
	store := newChromem(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, []models.VectorRecord{
		{ID: "doc_0", Values: []float32{1, 0, 0}, Metadata: models.Metadata{Source: "a.txt", Text: "first"}},
	}))
	require.NoError(t, store.Upsert(ctx, []models.VectorRecord{
		{ID: "doc_0", Values: []float32{1, 0, 0}, Metadata: models.Metadata{Source: "b.txt", Text: "second"}},
	}))

	matches, err := store.Query(ctx, []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "second", matches[0].Text)
	assert.Equal(t, "b.txt", matches[0].Source)
}

func TestChromemQueryEmptyStore(t *testing.T) {
	store := newChromem(t)

	matches, err := store.Query(context.Background(), []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestChromemDeleteAllKeepsCollection(t *testing.T) {
	store := newChromem(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, []models.VectorRecord{
		{ID: "doc_0", Values: []float32{1, 0, 0}, Metadata: models.Metadata{Text: "alpha"}},
	}))
	require.NoError(t, store.DeleteAll(ctx))

	matches, err := store.Query(ctx, []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, matches)

	// the store still accepts upserts after a clear
	require.NoError(t, store.Upsert(ctx, []models.VectorRecord{
		{ID: "doc_0", Values: []float32{0, 1, 0}, Metadata: models.Metadata{Text: "beta"}},
	}))
	matches, err = store.Query(ctx, []float32{0, 1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "beta", matches[0].Text)
}
