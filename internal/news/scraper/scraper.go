package scraper

import (
	"context"

	"github.com/wonny/alpha-engine/backend/internal/news"
)

// Scraper fetches the latest items from one news source
type Scraper interface {
	Name() string
	Fetch(ctx context.Context) ([]news.Item, error)
}
