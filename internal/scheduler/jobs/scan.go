package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/alpha-engine/backend/internal/monitor"
	"github.com/wonny/alpha-engine/backend/pkg/logger"
)

// WatchlistScanJob runs the monitor over the watchlist
type WatchlistScanJob struct {
	monitor  *monitor.Monitor
	schedule string
	logger   *logger.Logger
}

// NewWatchlistScanJob creates a scan job on the given cron schedule
func NewWatchlistScanJob(m *monitor.Monitor, schedule string, log *logger.Logger) *WatchlistScanJob {
	return &WatchlistScanJob{monitor: m, schedule: schedule, logger: log}
}

// Name returns the job name
func (j *WatchlistScanJob) Name() string {
	return "watchlist_scan"
}

// Schedule returns the cron schedule
func (j *WatchlistScanJob) Schedule() string {
	return j.schedule
}

// Run executes one scan. Individual ticker failures do not fail the job;
// a scan where every ticker failed does.
func (j *WatchlistScanJob) Run(ctx context.Context) error {
	result, err := j.monitor.Scan(ctx)
	if err != nil {
		return fmt.Errorf("watchlist scan failed: %w", err)
	}

	j.logger.Infof("Watchlist scan: %d ideas from %d tickers in %s",
		len(result.Ideas), len(result.Statuses), result.Duration.Round(time.Millisecond))

	failed := result.Failed()
	if len(failed) > 0 && len(failed) == len(result.Statuses) {
		return fmt.Errorf("watchlist scan: all %d tickers failed", len(failed))
	}
	return nil
}
