package news

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Fixed-width UTC layout so that text comparison orders like time
const sqliteTimeLayout = "2006-01-02T15:04:05.000000Z"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS news_items (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	source       TEXT NOT NULL,
	category     TEXT NOT NULL,
	title        TEXT NOT NULL,
	content      TEXT NOT NULL DEFAULT '',
	ticker       TEXT NOT NULL DEFAULT '',
	published_at TEXT NOT NULL,
	scraped_at   TEXT NOT NULL,
	importance   TEXT NOT NULL DEFAULT 'low',
	raw_data     TEXT NOT NULL DEFAULT '{}',
	UNIQUE(source, title, published_at)
);

CREATE INDEX IF NOT EXISTS idx_news_ticker_published ON news_items(ticker, published_at);
CREATE INDEX IF NOT EXISTS idx_news_source_published ON news_items(source, published_at);
`

// SQLiteStore is the default local news store. WAL mode lets the scrape
// daemon write while analyses read from another process.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (creating if needed) the database at path.
// ":memory:" gives a private in-memory store.
func OpenSQLite(path string) (*SQLiteStore, error) {
	connStr := path
	if path == ":memory:" {
		connStr = "file::memory:"
	} else if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create news store dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// single writer; also keeps an in-memory database on one connection
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
		if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
			db.Close()
			return nil, fmt.Errorf("set busy timeout: %w", err)
		}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

// Save inserts items, skipping duplicates
func (s *SQLiteStore) Save(ctx context.Context, items ...Item) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO news_items
			(source, category, title, content, ticker, published_at, scraped_at, importance, raw_data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, item := range items {
		raw := item.RawData
		if raw == "" {
			raw = "{}"
		}
		res, err := stmt.ExecContext(ctx,
			item.Source, item.Category, item.Title, item.Content, strings.ToUpper(item.Ticker),
			formatTime(item.PublishedAt), formatTime(item.ScrapedAt), item.Importance, raw,
		)
		if err != nil {
			return 0, fmt.Errorf("insert news item: %w", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

// Query returns items matching opts, newest first
func (s *SQLiteStore) Query(ctx context.Context, opts QueryOptions) ([]Item, error) {
	opts = opts.withDefaults()

	clauses := []string{"published_at >= ?"}
	args := []interface{}{formatTime(opts.cutoff(s.now()))}

	if opts.Ticker != "" || opts.FilterTicker {
		clauses = append(clauses, "ticker = ?")
		args = append(args, strings.ToUpper(opts.Ticker))
	}
	if opts.Source != "" {
		clauses = append(clauses, "source = ?")
		args = append(args, opts.Source)
	}
	args = append(args, opts.Limit)

	query := `
		SELECT id, source, category, title, content, ticker, published_at, scraped_at, importance, raw_data
		FROM news_items
		WHERE ` + strings.Join(clauses, " AND ") + `
		ORDER BY published_at DESC
		LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query news: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		var published, scraped string
		if err := rows.Scan(&item.ID, &item.Source, &item.Category, &item.Title, &item.Content,
			&item.Ticker, &published, &scraped, &item.Importance, &item.RawData); err != nil {
			return nil, fmt.Errorf("scan news item: %w", err)
		}
		item.PublishedAt, _ = time.Parse(sqliteTimeLayout, published)
		item.ScrapedAt, _ = time.Parse(sqliteTimeLayout, scraped)
		items = append(items, item)
	}
	return items, rows.Err()
}

// QueryMacro returns items without a ticker
func (s *SQLiteStore) QueryMacro(ctx context.Context, hoursBack int) ([]Item, error) {
	return queryMacro(ctx, s, hoursBack)
}

// Count returns the number of stored items
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM news_items").Scan(&n); err != nil {
		return 0, fmt.Errorf("count news: %w", err)
	}
	return n, nil
}

// Cleanup deletes items older than daysOld days
func (s *SQLiteStore) Cleanup(ctx context.Context, daysOld int) (int, error) {
	cutoff := s.now().AddDate(0, 0, -daysOld)
	res, err := s.db.ExecContext(ctx, "DELETE FROM news_items WHERE published_at < ?", formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("cleanup news: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
