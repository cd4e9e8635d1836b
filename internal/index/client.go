package index

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"docubot/internal/models"
)

// Embedder is the query-embedding surface the client needs. It must
// be the same embedder used at ingestion time.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// Client exposes the vector-index operations of the pipeline over a
// backend store and the ingestion-time embedder.
type Client struct {
	store    Store
	embedder Embedder
}

func NewClient(store Store, embedder Embedder) *Client {
	return &Client{store: store, embedder: embedder}
}

// Upsert writes the batch; upserting an id twice replaces the prior
// record.
func (c *Client) Upsert(ctx context.Context, records []models.VectorRecord) error {
	for _, r := range records {
		if d := c.embedder.Dimensions(); d > 0 && len(r.Values) != d {
			return fmt.Errorf("record %s has dimension %d, index expects %d", r.ID, len(r.Values), d)
		}
	}
	if err := c.store.Upsert(ctx, records); err != nil {
		return err
	}
	log.Debug().Int("count", len(records)).Msg("Upserted vectors")
	return nil
}

// ClearAll deletes every vector while keeping the index itself.
func (c *Client) ClearAll(ctx context.Context) error {
	return c.store.DeleteAll(ctx)
}

// SimilaritySearch embeds the query text and returns the k nearest
// neighbors, most-similar first. An empty index yields an empty
// result, not an error.
func (c *Client) SimilaritySearch(ctx context.Context, query string, k int) ([]models.Match, error) {
	vector, err := c.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	matches, err := c.store.Query(ctx, vector, k)
	if err != nil {
		return nil, err
	}
	return matches, nil
}
