package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/alpha-engine/backend/internal/news"
	"github.com/wonny/alpha-engine/backend/internal/news/scraper"
	"github.com/wonny/alpha-engine/backend/pkg/logger"
)

// NewsScrapeJob feeds every scraper into the news store
type NewsScrapeJob struct {
	daemon   *scraper.Daemon
	schedule string
	logger   *logger.Logger
}

// NewNewsScrapeJob creates a scrape job on the given cron schedule
func NewNewsScrapeJob(daemon *scraper.Daemon, schedule string, log *logger.Logger) *NewsScrapeJob {
	return &NewsScrapeJob{daemon: daemon, schedule: schedule, logger: log}
}

// Name returns the job name
func (j *NewsScrapeJob) Name() string {
	return "news_scrape"
}

// Schedule returns the cron schedule
func (j *NewsScrapeJob) Schedule() string {
	return j.schedule
}

// Run executes one scrape pass
func (j *NewsScrapeJob) Run(ctx context.Context) error {
	j.logger.Debug("Starting scheduled news scrape")

	result, err := j.daemon.RunOnce(ctx)
	if err != nil {
		return fmt.Errorf("news scrape failed: %w", err)
	}

	if len(result.Failed) > 0 {
		j.logger.WithField("failed", result.Failed).Warn("Some news sources failed")
	}
	return nil
}

// NewsCleanupJob deletes news older than the retention window
type NewsCleanupJob struct {
	store         news.Store
	retentionDays int
	schedule      string
	logger        *logger.Logger
}

// NewNewsCleanupJob creates a retention job
func NewNewsCleanupJob(store news.Store, retentionDays int, schedule string, log *logger.Logger) *NewsCleanupJob {
	return &NewsCleanupJob{
		store:         store,
		retentionDays: retentionDays,
		schedule:      schedule,
		logger:        log,
	}
}

// Name returns the job name
func (j *NewsCleanupJob) Name() string {
	return "news_cleanup"
}

// Schedule returns the cron schedule (daily by default)
func (j *NewsCleanupJob) Schedule() string {
	return j.schedule
}

// Run executes the cleanup
func (j *NewsCleanupJob) Run(ctx context.Context) error {
	deleted, err := j.store.Cleanup(ctx, j.retentionDays)
	if err != nil {
		return fmt.Errorf("news cleanup failed: %w", err)
	}

	if deleted > 0 {
		j.logger.WithFields(map[string]interface{}{
			"deleted":        deleted,
			"retention_days": j.retentionDays,
		}).Info("News cleanup completed")
	}
	return nil
}
