package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/alpha-engine/backend/internal/contracts"
	"github.com/wonny/alpha-engine/backend/internal/monitor"
	"github.com/wonny/alpha-engine/backend/internal/scheduler"
	"github.com/wonny/alpha-engine/backend/internal/scheduler/jobs"
)

// monitorCmd represents the monitor command
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Continuous watchlist monitor",
	Long: `Scan the watchlist on a schedule and publish trading ideas.

Subcommands:
  start   - run the monitor until Ctrl+C (or --duration)
  scan    - run a single watchlist scan

Ideas are appended to MONITOR_OUTPUT_PATH and, with KAFKA_ENABLED,
published to KAFKA_IDEAS_TOPIC.

Example:
  go run ./cmd/alpha monitor start
  go run ./cmd/alpha monitor start --duration 2h
  go run ./cmd/alpha monitor scan --watchlist NVDA,TSLA`,
}

var (
	monitorDuration  time.Duration
	monitorWatchlist []string
	monitorOffline   bool

	monitorStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the continuous monitor",
		Long: `Start the monitor and schedule its jobs.

Registered jobs:
- news_scrape:    MONITOR_SCRAPE_SCHEDULE (default every 5 minutes)
- watchlist_scan: MONITOR_SCAN_SCHEDULE (default every 30 minutes)
- news_cleanup:   MONITOR_CLEANUP_SCHEDULE (default daily 04:00)

One scrape and one scan run immediately at startup.`,
		RunE: runMonitor,
	}

	monitorScanCmd = &cobra.Command{
		Use:   "scan",
		Short: "Run one watchlist scan",
		RunE:  runMonitorScan,
	}
)

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.AddCommand(monitorStartCmd)
	monitorCmd.AddCommand(monitorScanCmd)

	monitorCmd.PersistentFlags().StringSliceVar(&monitorWatchlist, "watchlist", nil, "tickers to scan (default MONITOR_WATCHLIST)")
	monitorCmd.PersistentFlags().BoolVar(&monitorOffline, "offline", false, "use snapshot files only")
	monitorStartCmd.Flags().DurationVar(&monitorDuration, "duration", 0, "stop after this long (0 runs until interrupted)")
}

// buildMonitor wires the engine, the journal and the optional Kafka sink
func buildMonitor(ctx context.Context) (*app, *monitor.Monitor, *monitor.Journal, error) {
	cfg, log, err := setup()
	if err != nil {
		return nil, nil, nil, err
	}
	if len(monitorWatchlist) > 0 {
		cfg.Monitor.Watchlist = monitorWatchlist
	}

	a, err := newApp(ctx, cfg, log, appOptions{offline: monitorOffline})
	if err != nil {
		return nil, nil, nil, err
	}

	journal, err := monitor.OpenJournal(cfg.Monitor.OutputPath)
	if err != nil {
		a.Close()
		return nil, nil, nil, err
	}

	var sinks []contracts.IdeaSink
	if cfg.Kafka.Enabled {
		sink, err := monitor.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.IdeasTopic)
		if err != nil {
			journal.Close()
			a.Close()
			return nil, nil, nil, err
		}
		sinks = append(sinks, sink)
	}

	m := monitor.New(a.analyzer, cfg.Monitor.Watchlist, log).
		WithJournal(journal).
		WithSinks(sinks...).
		WithMetrics(a.metrics)
	return a, m, journal, nil
}

func runMonitor(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Alpha Contradiction Monitor ===")
	fmt.Println()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	a, m, journal, err := buildMonitor(ctx)
	if err != nil {
		return fmt.Errorf("init monitor: %w", err)
	}
	defer a.Close()
	defer m.Close()

	cfg := a.cfg
	start := time.Now()
	if err := journal.SessionHeader(start, m.Watchlist(), cfg.Monitor.ScanSchedule); err != nil {
		return err
	}

	sched := scheduler.New(a.logger.Component("scheduler"))
	daemon := a.scrapeDaemon(m.Watchlist())
	for _, job := range []scheduler.Job{
		jobs.NewNewsScrapeJob(daemon, cfg.Monitor.ScrapeSchedule, a.logger),
		jobs.NewWatchlistScanJob(m, cfg.Monitor.ScanSchedule, a.logger),
		jobs.NewNewsCleanupJob(a.store, cfg.News.RetentionDays, cfg.Monitor.CleanupSchedule, a.logger),
	} {
		if err := sched.AddJob(job); err != nil {
			return fmt.Errorf("add job: %w", err)
		}
	}

	fmt.Printf("Watchlist: %v\n", m.Watchlist())
	fmt.Printf("Output:    %s\n", journal.Path())
	fmt.Printf("Rules:     %s\n", a.rulesHash[:12])
	if cfg.Kafka.Enabled {
		fmt.Printf("Kafka:     %s\n", cfg.Kafka.IdeasTopic)
	}

	// Initial pass before handing over to cron
	for _, name := range []string{"news_scrape", "watchlist_scan"} {
		result, err := sched.RunNow(ctx, name)
		switch {
		case errors.Is(err, scheduler.ErrJobFailed):
			fmt.Printf("⚠️  %s failed: %s\n", name, result.Error)
		case err != nil:
			return fmt.Errorf("run %s: %w", name, err)
		}
	}

	sched.Start()

	fmt.Println("\n✅ Monitor started successfully")
	fmt.Println("\nRegistered jobs:")
	for name, stat := range sched.GetJobStats() {
		next := "-"
		if stat.NextRun != nil {
			next = monitor.Stamp(*stat.NextRun)
		}
		fmt.Printf("  - %-15s %-18s next: %s\n", name, stat.Schedule, next)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	var deadline <-chan time.Time
	if monitorDuration > 0 {
		timer := time.NewTimer(monitorDuration)
		defer timer.Stop()
		deadline = timer.C
	}

	select {
	case <-quit:
	case <-deadline:
		fmt.Printf("\nDuration %s reached\n", monitorDuration)
	}

	fmt.Println("\nShutting down monitor...")
	sched.Stop()
	_ = journal.Printf("\nSession ended %s (ran %s)\n", monitor.Stamp(time.Now()), time.Since(start).Round(time.Second))
	fmt.Println("Monitor stopped")

	return nil
}

func runMonitorScan(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	a, m, journal, err := buildMonitor(ctx)
	if err != nil {
		return fmt.Errorf("init monitor: %w", err)
	}
	defer a.Close()
	defer m.Close()

	result, err := m.Scan(ctx)
	if err != nil {
		return err
	}

	for _, st := range result.Statuses {
		switch {
		case st.Error != "":
			fmt.Printf("  ❌ %-6s %s\n", st.Ticker, st.Error)
		case st.Idea:
			fmt.Printf("  💡 %-6s %s str=%.2f alpha=%s\n", st.Ticker, st.Direction, st.Strength, st.Alpha)
		default:
			fmt.Printf("     %-6s %s str=%.2f alpha=%s\n", st.Ticker, st.Direction, st.Strength, st.Alpha)
		}
	}
	fmt.Printf("\nScan complete: %d ideas from %d stocks (%s)\n",
		len(result.Ideas), len(m.Watchlist()), result.Duration.Round(time.Millisecond))
	fmt.Printf("Journal: %s\n", journal.Path())

	if failed := result.Failed(); len(failed) == len(m.Watchlist()) {
		return fmt.Errorf("every ticker failed")
	}
	return nil
}
