package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wonny/alpha-engine/backend/internal/analysis"
	"github.com/wonny/alpha-engine/backend/internal/collector"
	"github.com/wonny/alpha-engine/backend/internal/contradiction"
	"github.com/wonny/alpha-engine/backend/internal/news"
	"github.com/wonny/alpha-engine/backend/internal/news/scraper"
	"github.com/wonny/alpha-engine/backend/internal/ruleconfig"
	"github.com/wonny/alpha-engine/backend/internal/signals"
	"github.com/wonny/alpha-engine/backend/pkg/config"
	"github.com/wonny/alpha-engine/backend/pkg/httputil"
	"github.com/wonny/alpha-engine/backend/pkg/logger"
	"github.com/wonny/alpha-engine/backend/pkg/metrics"
)

// News pages are slower than the chart API
const scrapeTimeout = 20 * time.Second

// appOptions tweaks how the shared components are built
type appOptions struct {
	snapshotDir string
	offline     bool // file snapshots only, no Yahoo calls
}

// app holds the components shared by every command
type app struct {
	cfg          *config.Config
	logger       *logger.Logger
	scrapeClient *httputil.Client
	store        news.Store
	analyzer     *analysis.Analyzer
	metrics      *metrics.Recorder
	rulesHash    string
}

// newApp wires collector → news → signals → detector → analyzer
func newApp(ctx context.Context, cfg *config.Config, log *logger.Logger, opts appOptions) (*app, error) {
	var rec *metrics.Recorder
	if cfg.MetricsEnabled {
		rec = metrics.New(prometheus.DefaultRegisterer)
	}

	rules, err := ruleconfig.LoadOrDefault(cfg.RulesFile)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	if err := ruleconfig.Validate(rules); err != nil {
		return nil, fmt.Errorf("invalid rules: %w", err)
	}
	hash, err := ruleconfig.Hash(rules)
	if err != nil {
		return nil, fmt.Errorf("hash rules: %w", err)
	}

	client := httputil.New(cfg, log.Component("http"))

	snapshotDir := cfg.Sources.SnapshotDir
	if opts.snapshotDir != "" {
		snapshotDir = opts.snapshotDir
	}
	var live *collector.Yahoo
	if !opts.offline {
		live = collector.NewYahoo(client, cfg.Sources.YahooBaseURL, log.Component("yahoo"))
	}
	snapshots := collector.New(live, collector.NewFileSource(snapshotDir), log.Component("collector"))

	store, err := news.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	builder := signals.NewBuilder(signals.Default(), log.Component("signals")).WithMetrics(rec)
	detector := contradiction.NewDetector(rules.Rules)
	analysisLog := log.Component("analysis")
	analyzer := analysis.NewAnalyzer(snapshots, news.NewCollector(store, cfg.News.HoursBack, analysisLog), builder, detector, analysisLog).
		WithMetrics(rec).
		WithRulesHash(hash)

	scrapeClient := httputil.NewWithTimeout(cfg, log.Component("http"), scrapeTimeout).
		WithRetry(1, time.Second).
		WithHeader("Accept-Language", "en-US,en;q=0.9")

	log.WithFields(map[string]interface{}{
		"rules":        rules.Meta.Name,
		"rules_hash":   hash,
		"snapshot_dir": snapshotDir,
		"offline":      opts.offline,
		"news_store":   cfg.News.StoreDriver,
	}).Debug("Engine wired")

	return &app{
		cfg:          cfg,
		logger:       log,
		scrapeClient: scrapeClient,
		store:        store,
		analyzer:     analyzer,
		metrics:      rec,
		rulesHash:    hash,
	}, nil
}

// scrapeDaemon builds the news daemon over every configured scraper.
// Retention is left to the cleanup job.
func (a *app) scrapeDaemon(tickers []string) *scraper.Daemon {
	log := a.logger.Component("scraper")
	scrapers := []scraper.Scraper{
		scraper.NewJin10(a.scrapeClient, a.cfg.Sources.Jin10APIURL, a.cfg.Sources.Jin10AppID, log),
		scraper.NewFinviz(a.scrapeClient, a.cfg.Sources.FinvizBaseURL, tickers, log),
	}
	return scraper.NewDaemon(a.store, scrapers, 0, log).WithMetrics(a.metrics)
}

// Close releases the news store
func (a *app) Close() error {
	if a.store == nil {
		return nil
	}
	if err := a.store.Close(); err != nil {
		return fmt.Errorf("close news store: %w", err)
	}
	return nil
}
