package scraper

import (
	"context"
	"time"

	"github.com/wonny/alpha-engine/backend/internal/news"
	"github.com/wonny/alpha-engine/backend/pkg/logger"
	"github.com/wonny/alpha-engine/backend/pkg/metrics"
)

// RunResult summarizes one scrape pass
type RunResult struct {
	Fetched  map[string]int `json:"fetched"`
	Saved    int            `json:"saved"`
	Failed   []string       `json:"failed,omitempty"`
	Deleted  int            `json:"deleted"`
	Total    int            `json:"total"`
	Duration time.Duration  `json:"duration"`
}

// Daemon feeds every scraper into the news store
type Daemon struct {
	scrapers      []Scraper
	store         news.Store
	retentionDays int
	metrics       *metrics.Recorder
	logger        *logger.Logger
}

// NewDaemon creates a daemon; retentionDays <= 0 disables cleanup
func NewDaemon(store news.Store, scrapers []Scraper, retentionDays int, log *logger.Logger) *Daemon {
	return &Daemon{
		scrapers:      scrapers,
		store:         store,
		retentionDays: retentionDays,
		logger:        log,
	}
}

// WithMetrics counts scraped items per source on rec
func (d *Daemon) WithMetrics(rec *metrics.Recorder) *Daemon {
	d.metrics = rec
	return d
}

// RunOnce fetches every source, saves what came back, then applies
// retention. A failing source is logged and skipped. Only store errors and
// cancellation are returned.
func (d *Daemon) RunOnce(ctx context.Context) (*RunResult, error) {
	start := time.Now()
	result := &RunResult{Fetched: make(map[string]int, len(d.scrapers))}

	for _, s := range d.scrapers {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		items, err := s.Fetch(ctx)
		if err != nil {
			result.Failed = append(result.Failed, s.Name())
			d.logger.WithError(err).WithField("source", s.Name()).Error("Scrape failed")
			continue
		}

		saved, err := d.store.Save(ctx, items...)
		if err != nil {
			return result, err
		}
		result.Fetched[s.Name()] = len(items)
		result.Saved += saved
		d.metrics.RecordNewsScraped(s.Name(), len(items))

		d.logger.WithFields(map[string]interface{}{
			"source":  s.Name(),
			"fetched": len(items),
			"saved":   saved,
		}).Info("Scrape complete")
	}

	if d.retentionDays > 0 {
		deleted, err := d.store.Cleanup(ctx, d.retentionDays)
		if err != nil {
			return result, err
		}
		result.Deleted = deleted
	}

	total, err := d.store.Count(ctx)
	if err != nil {
		return result, err
	}
	result.Total = total
	result.Duration = time.Since(start)

	d.logger.WithFields(map[string]interface{}{
		"saved":   result.Saved,
		"deleted": result.Deleted,
		"total":   result.Total,
	}).Info("News store updated")

	return result, nil
}
