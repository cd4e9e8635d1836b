package index

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"docubot/internal/config"
	"docubot/internal/models"
)

type vectorRow struct {
	bun.BaseModel `bun:"table:doc_vectors,alias:v"`
	ID            string    `bun:"id,pk"`
	Source        string    `bun:"source,notnull"`
	Text          string    `bun:"text,notnull"`
	Embedding     []float32 `bun:"embedding,notnull,type:vector(1536)"`
	Distance      float64   `bun:"distance,scanonly"`
}

// PgvectorStore keeps vectors in a Postgres table with a pgvector
// column.
type PgvectorStore struct {
	db *bun.DB
}

func NewPgvectorStore(ctx context.Context, cfg *config.PostgresConfig) (*PgvectorStore, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(cfg.DSN),
		pgdriver.WithPassword(cfg.Password),
	))
	db := bun.NewDB(sqldb, pgdialect.New())
	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	if _, err := db.NewCreateTable().Model((*vectorRow)(nil)).IfNotExists().Exec(ctx); err != nil {
		return nil, fmt.Errorf("initializing vector table: %w", err)
	}
	return &PgvectorStore{db: db}, nil
}

func (p *PgvectorStore) Close() error { return p.db.Close() }

func (p *PgvectorStore) Upsert(ctx context.Context, records []models.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([]vectorRow, len(records))
	for i, r := range records {
		rows[i] = vectorRow{
			ID:        r.ID,
			Source:    r.Metadata.Source,
			Text:      r.Metadata.Text,
			Embedding: r.Values,
		}
	}
	_, err := p.db.NewInsert().
		Model(&rows).
		On("CONFLICT (id) DO UPDATE").
		Set("source = EXCLUDED.source").
		Set("text = EXCLUDED.text").
		Set("embedding = EXCLUDED.embedding").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upserting %d vectors: %w", len(records), err)
	}
	return nil
}

func (p *PgvectorStore) DeleteAll(ctx context.Context) error {
	if _, err := p.db.NewTruncateTable().Model((*vectorRow)(nil)).Exec(ctx); err != nil {
		return fmt.Errorf("clearing vector table: %w", err)
	}
	return nil
}

func (p *PgvectorStore) Query(ctx context.Context, vector []float32, k int) ([]models.Match, error) {
	var rows []vectorRow
	err := p.db.NewSelect().
		Model(&rows).
		Column("id", "source", "text").
		ColumnExpr("embedding <-> ? AS distance", vector).
		OrderExpr("embedding <-> ?", vector).
		Limit(k).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("querying vector table: %w", err)
	}

	matches := make([]models.Match, 0, len(rows))
	for _, r := range rows {
		matches = append(matches, models.Match{
			ID:     r.ID,
			Text:   r.Text,
			Source: r.Source,
			Score:  float32(1 / (1 + r.Distance)),
		})
	}
	return matches, nil
}
