// Package index wraps remote and embedded vector stores behind one
// contract: idempotent upsert, clear-all and nearest-neighbor search.
package index

import (
	"context"

	"docubot/internal/models"
)

// Store is a vector store backend. Upserting an existing id replaces
// the prior vector and metadata; DeleteAll empties the store but
// preserves its schema; Query returns up to k matches, most-similar
// first, and an empty result on an empty store.
type Store interface {
	Upsert(ctx context.Context, records []models.VectorRecord) error
	DeleteAll(ctx context.Context) error
	Query(ctx context.Context, vector []float32, k int) ([]models.Match, error)
}
