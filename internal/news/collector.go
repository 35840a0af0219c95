package news

import (
	"context"
	"strings"

	"github.com/wonny/alpha-engine/backend/internal/contracts"
	"github.com/wonny/alpha-engine/backend/pkg/logger"
)

// Collector turns stored news into the news-sentiment input of an analysis
type Collector struct {
	store     Store
	hoursBack int
	logger    *logger.Logger
}

// NewCollector creates a collector reading the last hoursBack hours
func NewCollector(store Store, hoursBack int, log *logger.Logger) *Collector {
	if hoursBack <= 0 {
		hoursBack = 24
	}
	return &Collector{store: store, hoursBack: hoursBack, logger: log}
}

// Collect reads ticker and macro news and scores both. Store failures
// degrade to empty data, never an error, so a missing scrape daemon only
// silences the news signal.
func (c *Collector) Collect(ctx context.Context, ticker string) (*contracts.NewsData, error) {
	ticker = strings.ToUpper(ticker)

	tickerNews, err := c.store.Query(ctx, QueryOptions{Ticker: ticker, HoursBack: c.hoursBack, FilterTicker: true})
	if err != nil {
		c.logger.WithError(err).ForTicker(ticker).Debug("News store unavailable")
		return &contracts.NewsData{}, nil
	}
	macroNews, err := c.store.QueryMacro(ctx, c.hoursBack)
	if err != nil {
		c.logger.WithError(err).Debug("News store unavailable")
		return &contracts.NewsData{}, nil
	}

	high := 0
	for _, items := range [][]Item{tickerNews, macroNews} {
		for _, item := range items {
			if item.Importance == contracts.ImportanceHigh {
				high++
			}
		}
	}

	return &contracts.NewsData{
		TickerNews:          tickerNews,
		MacroNews:           macroNews,
		TickerSentiment:     Sentiment(tickerNews),
		MacroSentiment:      Sentiment(macroNews),
		Volume:              len(tickerNews) + len(macroNews),
		HighImportanceCount: high,
	}, nil
}
