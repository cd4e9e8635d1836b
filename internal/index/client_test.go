package index

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docubot/internal/embedding"
	"docubot/internal/models"
)

type fakeStore struct {
	records    map[string]models.VectorRecord
	queried    []float32
	queriedK   int
	upsertErr  error
	deleteErr  error
	queryErr   error
	queryReply []models.Match
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[string]models.VectorRecord{}}
}

func (f *fakeStore) Upsert(_ context.Context, records []models.VectorRecord) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	for _, r := range records {
		f.records[r.ID] = r
	}
	return nil
}

func (f *fakeStore) DeleteAll(context.Context) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.records = map[string]models.VectorRecord{}
	return nil
}

func (f *fakeStore) Query(_ context.Context, vector []float32, k int) ([]models.Match, error) {
	f.queried = vector
	f.queriedK = k
	return f.queryReply, f.queryErr
}

type fakeEmbedder struct {
	vector []float32
	err    error
}

func (f *fakeEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	return f.vector, f.err
}

func TestClientSimilaritySearch(t *testing.T) {
	store := newFakeStore()
	store.queryReply = []models.Match{{ID: "doc_0", Text: "hello", Score: 0.9}}
	embedder := embedding.NewWithEmbedder(&fakeEmbedder{vector: []float32{1, 2, 3}}, 3)
	client := NewClient(store, embedder)

	matches, err := client.SimilaritySearch(context.Background(), "question", 5)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "hello", matches[0].Text)
	assert.Equal(t, []float32{1, 2, 3}, store.queried)
	assert.Equal(t, 5, store.queriedK)
}

func TestClientSimilaritySearchEmptyIndex(t *testing.T) {
	store := newFakeStore()
	embedder := embedding.NewWithEmbedder(&fakeEmbedder{vector: []float32{1, 2, 3}}, 3)
	client := NewClient(store, embedder)

	matches, err := client.SimilaritySearch(context.Background(), "question", 5)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestClientSimilaritySearchDimensionMismatch(t *testing.T) {
	store := newFakeStore()
	// the provider returns 2 dimensions while the index expects 3
	embedder := embedding.NewWithEmbedder(&fakeEmbedder{vector: []float32{1, 2}}, 3)
	client := NewClient(store, embedder)

	_, err := client.SimilaritySearch(context.Background(), "question", 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, embedding.ErrDimensionMismatch)
	assert.Nil(t, store.queried, "the store must not be queried with a bad vector")
}

func TestClientUpsertRejectsWrongDimension(t *testing.T) {
	store := newFakeStore()
	embedder := embedding.NewWithEmbedder(&fakeEmbedder{vector: []float32{1, 2, 3}}, 3)
	client := NewClient(store, embedder)

	err := client.Upsert(context.Background(), []models.VectorRecord{
		{ID: "doc_0", Values: []float32{1, 2}},
	})
	require.Error(t, err)
	assert.Empty(t, store.records)
}

func TestClientClearAll(t *testing.T) {
	store := newFakeStore()
	store.records["doc_0"] = models.VectorRecord{ID: "doc_0"}
	embedder := embedding.NewWithEmbedder(&fakeEmbedder{vector: []float32{1}}, 1)
	client := NewClient(store, embedder)

	require.NoError(t, client.ClearAll(context.Background()))
	assert.Empty(t, store.records)
}

func TestClientSurfacesStoreError(t *testing.T) {
	store := newFakeStore()
	store.queryErr = errors.New("connection refused")
	embedder := embedding.NewWithEmbedder(&fakeEmbedder{vector: []float32{1}}, 1)
	client := NewClient(store, embedder)

	_, err := client.SimilaritySearch(context.Background(), "q", 5)
	assert.Error(t, err)
}
