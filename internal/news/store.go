package news

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/alpha-engine/backend/internal/contracts"
	"github.com/wonny/alpha-engine/backend/pkg/config"
	"github.com/wonny/alpha-engine/backend/pkg/database"
)

// Item is one scraped headline
type Item = contracts.NewsItem

// Item categories
const (
	CategoryMacro          = "macro"
	CategoryStockNews      = "stock_news"
	CategoryKOL            = "kol"
	CategoryOptionsAnomaly = "options_anomaly"
)

// QueryOptions filters a news query.
// An empty Ticker matches every ticker unless FilterTicker is set, in which
// case it matches exactly (so "" selects macro items only).
type QueryOptions struct {
	Ticker       string
	Source       string
	HoursBack    int
	Limit        int
	FilterTicker bool
}

func (o QueryOptions) withDefaults() QueryOptions {
	if o.HoursBack <= 0 {
		o.HoursBack = 24
	}
	if o.Limit <= 0 {
		o.Limit = 50
	}
	return o
}

func (o QueryOptions) cutoff(now time.Time) time.Time {
	return now.Add(-time.Duration(o.HoursBack) * time.Hour)
}

// Store persists scraped news. Items are deduplicated on
// (source, title, published_at); saving a duplicate is not an error.
type Store interface {
	// Save inserts items and returns how many were new
	Save(ctx context.Context, items ...Item) (int, error)
	// Query returns matching items, newest first
	Query(ctx context.Context, opts QueryOptions) ([]Item, error)
	// QueryMacro returns items without a ticker from the last hoursBack hours
	QueryMacro(ctx context.Context, hoursBack int) ([]Item, error)
	Count(ctx context.Context) (int, error)
	// Cleanup deletes items published more than daysOld days ago
	Cleanup(ctx context.Context, daysOld int) (int, error)
	Close() error
}

// Open creates the store selected by NEWS_STORE_DRIVER
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.News.StoreDriver {
	case "postgres":
		db, err := database.New(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("open postgres news store: %w", err)
		}
		store, err := NewPostgresStore(ctx, db)
		if err != nil {
			db.Close()
			return nil, err
		}
		return store, nil
	case "sqlite", "":
		return OpenSQLite(cfg.News.StorePath)
	default:
		return nil, fmt.Errorf("unknown news store driver %q", cfg.News.StoreDriver)
	}
}

func queryMacro(ctx context.Context, s Store, hoursBack int) ([]Item, error) {
	return s.Query(ctx, QueryOptions{HoursBack: hoursBack, FilterTicker: true})
}
