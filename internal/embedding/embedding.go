package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"docubot/internal/config"
)

// ErrDimensionMismatch is returned when the provider yields a vector
// whose dimension differs from the index schema. The pipeline fails
// fast rather than truncating or padding.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// QueryEmbedder is the provider surface the service needs.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Service embeds chunks and queries with one provider and verifies
// every vector against the configured dimension.
type Service struct {
	embedder   QueryEmbedder
	dimensions int
	timeout    time.Duration
}

// New builds a provider-backed embedding service from config.
func New(cfg *config.EmbeddingConfig) (*Service, error) {
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return nil, err
	}
	return &Service{
		embedder:   embedder,
		dimensions: cfg.Dimensions,
		timeout:    time.Duration(cfg.TimeoutSecs) * time.Second,
	}, nil
}

// NewWithEmbedder wires an explicit embedder, used for local setups
// and tests.
func NewWithEmbedder(e QueryEmbedder, dimensions int) *Service {
	return &Service{embedder: e, dimensions: dimensions}
}

func newEmbedder(cfg *config.EmbeddingConfig) (*embeddings.EmbedderImpl, error) {
	switch cfg.Type {
	case "openai", "":
		opts := []openai.Option{
			openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
			openai.WithEmbeddingModel(cfg.Model),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		llm, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("initializing openai embedder: %w", err)
		}
		return embeddings.NewEmbedder(llm)
	case "ollama":
		llm, err := ollama.New(
			ollama.WithServerURL(cfg.BaseURL),
			ollama.WithModel(cfg.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("initializing ollama embedder: %w", err)
		}
		return embeddings.NewEmbedder(llm)
	default:
		return nil, fmt.Errorf("unknown embedder type: %s", cfg.Type)
	}
}

func (s *Service) Dimensions() int { return s.dimensions }

// EmbedQuery embeds a single text with a per-call timeout applied and
// checks the vector dimension.
func (s *Service) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	vector, err := s.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding text: %w", err)
	}
	if s.dimensions > 0 && len(vector) != s.dimensions {
		return nil, fmt.Errorf("%w: got %d, index expects %d", ErrDimensionMismatch, len(vector), s.dimensions)
	}
	return vector, nil
}

// EmbedChunks embeds each chunk in order. Any failure aborts the
// whole batch; partial embeddings are never upserted.
func (s *Service) EmbedChunks(ctx context.Context, chunks []string) ([][]float32, error) {
	if len(chunks) == 0 {
		log.Info().Msg("No chunks generated from content")
		return nil, nil
	}
	vectors := make([][]float32, 0, len(chunks))
	for i, chunk := range chunks {
		vector, err := s.EmbedQuery(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}
		vectors = append(vectors, vector)
	}
	return vectors, nil
}
