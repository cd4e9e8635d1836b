package index

import (
	"context"
	"fmt"
	"runtime"

	"github.com/philippgille/chromem-go"

	"docubot/internal/config"
	"docubot/internal/models"
)

// ChromemStore is the embedded local backend, used for offline runs
// and tests. Vectors are always supplied precomputed, so no embedding
// function is attached to the collection.
type ChromemStore struct {
	db         *chromem.DB
	collection *chromem.Collection
}

func NewChromemStore(cfg *config.ChromemConfig) (*ChromemStore, error) {
	var db *chromem.DB
	var err error
	if cfg.InMemory {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(cfg.Path, false)
		if err != nil {
			return nil, fmt.Errorf("creating local vector store: %w", err)
		}
	}

	name := cfg.Collection
	if name == "" {
		name = "docubot"
	}
	collection, err := db.GetOrCreateCollection(name, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("creating collection %s: %w", name, err)
	}
	return &ChromemStore{db: db, collection: collection}, nil
}

// Upsert deletes any documents under the incoming ids first, making
// the replace semantics explicit.
func (c *ChromemStore) Upsert(ctx context.Context, records []models.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}
	ids := make([]string, len(records))
	docs := make([]chromem.Document, len(records))
	for i, r := range records {
		ids[i] = r.ID
		docs[i] = chromem.Document{
			ID:      r.ID,
			Content: r.Metadata.Text,
			Metadata: map[string]string{
				"source": r.Metadata.Source,
			},
			Embedding: r.Values,
		}
	}
	if c.collection.Count() > 0 {
		if err := c.collection.Delete(ctx, nil, nil, ids...); err != nil {
			return fmt.Errorf("replacing existing documents: %w", err)
		}
	}
	if err := c.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("adding documents: %w", err)
	}
	return nil
}

func (c *ChromemStore) DeleteAll(ctx context.Context) error {
	if c.collection.Count() == 0 {
		return nil
	}
	if err := c.collection.Delete(ctx, nil, nil); err != nil {
		return fmt.Errorf("clearing local vector store: %w", err)
	}
	return nil
}

func (c *ChromemStore) Query(ctx context.Context, vector []float32, k int) ([]models.Match, error) {
	count := c.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}
	results, err := c.collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: vector,
		NResults:       k,
	})
	if err != nil {
		return nil, fmt.Errorf("querying local vector store: %w", err)
	}

	matches := make([]models.Match, 0, len(results))
	for _, r := range results {
		matches = append(matches, models.Match{
			ID:     r.ID,
			Text:   r.Content,
			Source: r.Metadata["source"],
			Score:  r.Similarity,
		})
	}
	return matches, nil
}
