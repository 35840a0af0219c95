package news

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/alpha-engine/backend/pkg/database"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS news_items (
	id           BIGSERIAL PRIMARY KEY,
	source       TEXT NOT NULL,
	category     TEXT NOT NULL,
	title        TEXT NOT NULL,
	content      TEXT NOT NULL DEFAULT '',
	ticker       TEXT NOT NULL DEFAULT '',
	published_at TIMESTAMPTZ NOT NULL,
	scraped_at   TIMESTAMPTZ NOT NULL,
	importance   TEXT NOT NULL DEFAULT 'low',
	raw_data     JSONB NOT NULL DEFAULT '{}',
	UNIQUE (source, title, published_at)
);

CREATE INDEX IF NOT EXISTS idx_news_ticker_published ON news_items (ticker, published_at DESC);
CREATE INDEX IF NOT EXISTS idx_news_source_published ON news_items (source, published_at DESC);
`

// PostgresStore keeps news in a shared Postgres database so several
// monitor instances can read one scrape feed.
type PostgresStore struct {
	db  *database.DB
	now func() time.Time
}

// NewPostgresStore wraps db and ensures the schema exists. The store owns db.
func NewPostgresStore(ctx context.Context, db *database.DB) (*PostgresStore, error) {
	if _, err := db.Pool.Exec(ctx, postgresSchema); err != nil {
		return nil, fmt.Errorf("create news schema: %w", err)
	}
	return &PostgresStore{db: db, now: time.Now}, nil
}

// Save inserts items in one batch, skipping duplicates
func (s *PostgresStore) Save(ctx context.Context, items ...Item) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, item := range items {
		raw := item.RawData
		if raw == "" {
			raw = "{}"
		}
		batch.Queue(`
			INSERT INTO news_items
				(source, category, title, content, ticker, published_at, scraped_at, importance, raw_data)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb)
			ON CONFLICT (source, title, published_at) DO NOTHING`,
			item.Source, item.Category, item.Title, item.Content, strings.ToUpper(item.Ticker),
			item.PublishedAt.UTC(), item.ScrapedAt.UTC(), item.Importance, raw,
		)
	}

	results := s.db.Pool.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for range items {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("insert news item: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

// Query returns items matching opts, newest first
func (s *PostgresStore) Query(ctx context.Context, opts QueryOptions) ([]Item, error) {
	opts = opts.withDefaults()

	clauses := []string{"published_at >= $1"}
	args := []interface{}{opts.cutoff(s.now())}

	if opts.Ticker != "" || opts.FilterTicker {
		args = append(args, strings.ToUpper(opts.Ticker))
		clauses = append(clauses, fmt.Sprintf("ticker = $%d", len(args)))
	}
	if opts.Source != "" {
		args = append(args, opts.Source)
		clauses = append(clauses, fmt.Sprintf("source = $%d", len(args)))
	}
	args = append(args, opts.Limit)

	query := fmt.Sprintf(`
		SELECT id, source, category, title, content, ticker, published_at, scraped_at, importance, raw_data::text
		FROM news_items
		WHERE %s
		ORDER BY published_at DESC
		LIMIT $%d`, strings.Join(clauses, " AND "), len(args))

	rows, err := s.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query news: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.Source, &item.Category, &item.Title, &item.Content,
			&item.Ticker, &item.PublishedAt, &item.ScrapedAt, &item.Importance, &item.RawData); err != nil {
			return nil, fmt.Errorf("scan news item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// QueryMacro returns items without a ticker
func (s *PostgresStore) QueryMacro(ctx context.Context, hoursBack int) ([]Item, error) {
	return queryMacro(ctx, s, hoursBack)
}

// Count returns the number of stored items
func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM news_items").Scan(&n); err != nil {
		return 0, fmt.Errorf("count news: %w", err)
	}
	return n, nil
}

// Cleanup deletes items older than daysOld days
func (s *PostgresStore) Cleanup(ctx context.Context, daysOld int) (int, error) {
	cutoff := s.now().AddDate(0, 0, -daysOld)
	tag, err := s.db.Pool.Exec(ctx, "DELETE FROM news_items WHERE published_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup news: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// Close closes the pool
func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}
