package embedding

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEmbedder struct {
	vector []float32
}

func (s *stubEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	return s.vector, nil
}

// blockingEmbedder never answers; it only returns once its context is
// cancelled.
type blockingEmbedder struct{}

func (blockingEmbedder) EmbedQuery(ctx context.Context, _ string) ([]float32, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

type deadlineRecorder struct {
	hadDeadline bool
}

func (d *deadlineRecorder) EmbedQuery(ctx context.Context, _ string) ([]float32, error) {
	_, d.hadDeadline = ctx.Deadline()
	return []float32{1, 2, 3}, nil
}

func TestEmbedQueryAppliesTimeout(t *testing.T) {
	recorder := &deadlineRecorder{}
	svc := &Service{embedder: recorder, dimensions: 3, timeout: 30 * time.Second}

	_, err := svc.EmbedQuery(context.Background(), "text")
	require.NoError(t, err)
	assert.True(t, recorder.hadDeadline, "the provider call must carry a deadline")
}

func TestEmbedQueryTimesOutHungProvider(t *testing.T) {
	svc := &Service{embedder: blockingEmbedder{}, dimensions: 3, timeout: 10 * time.Millisecond}

	done := make(chan error, 1)
	go func() {
		_, err := svc.EmbedQuery(context.Background(), "text")
		done <- err
	}()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(5 * time.Second):
		t.Fatal("embedding call did not time out")
	}
}

func TestEmbedChunksTimeoutIsPerChunk(t *testing.T) {
	recorder := &deadlineRecorder{}
	svc := &Service{embedder: recorder, dimensions: 3, timeout: 30 * time.Second}

	vectors, err := svc.EmbedChunks(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, vectors, 2)
	assert.True(t, recorder.hadDeadline)
}

func TestEmbedQueryDimensionMismatch(t *testing.T) {
	svc := NewWithEmbedder(&stubEmbedder{vector: []float32{1, 2}}, 3)

	_, err := svc.EmbedQuery(context.Background(), "text")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestNewWithEmbedderNoTimeout(t *testing.T) {
	recorder := &deadlineRecorder{}
	svc := NewWithEmbedder(recorder, 3)

	_, err := svc.EmbedQuery(context.Background(), "text")
	require.NoError(t, err)
	assert.False(t, recorder.hadDeadline, "no timeout configured, no deadline imposed")
}
