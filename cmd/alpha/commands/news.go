package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/alpha-engine/backend/internal/news"
)

// newsCmd represents the news command
var newsCmd = &cobra.Command{
	Use:   "news",
	Short: "News store management",
	Long: `Scrape, inspect and prune the local news store.

Subcommands:
  scrape   - fetch every news source once
  cleanup  - delete items older than --days
  list     - print stored items
  count    - print the number of stored items

Example:
  go run ./cmd/alpha news scrape
  go run ./cmd/alpha news list --ticker NVDA --hours 48
  go run ./cmd/alpha news cleanup --days 3`,
}

var (
	newsDays      int
	newsTicker    string
	newsHours     int
	newsLimit     int
	newsWatchlist []string

	newsScrapeCmd = &cobra.Command{
		Use:   "scrape",
		Short: "Scrape every news source once",
		RunE:  runNewsScrape,
	}

	newsCleanupCmd = &cobra.Command{
		Use:   "cleanup",
		Short: "Delete old news items",
		RunE:  runNewsCleanup,
	}

	newsListCmd = &cobra.Command{
		Use:   "list",
		Short: "List stored news items",
		RunE:  runNewsList,
	}

	newsCountCmd = &cobra.Command{
		Use:   "count",
		Short: "Count stored news items",
		RunE:  runNewsCount,
	}
)

func init() {
	rootCmd.AddCommand(newsCmd)
	newsCmd.AddCommand(newsScrapeCmd)
	newsCmd.AddCommand(newsCleanupCmd)
	newsCmd.AddCommand(newsListCmd)
	newsCmd.AddCommand(newsCountCmd)

	newsScrapeCmd.Flags().StringSliceVar(&newsWatchlist, "watchlist", nil, "tickers for per-stock news (default MONITOR_WATCHLIST)")
	newsCleanupCmd.Flags().IntVar(&newsDays, "days", 0, "retention in days (default NEWS_RETENTION_DAYS)")
	newsListCmd.Flags().StringVar(&newsTicker, "ticker", "", "only this ticker")
	newsListCmd.Flags().IntVar(&newsHours, "hours", 24, "look back this many hours")
	newsListCmd.Flags().IntVar(&newsLimit, "limit", 50, "maximum items")
}

// withApp runs fn with a fully wired app and closes it afterwards
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	a, err := newApp(ctx, cfg, log, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}

func runNewsScrape(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		tickers := a.cfg.Monitor.Watchlist
		if len(newsWatchlist) > 0 {
			tickers = newsWatchlist
		}

		result, err := a.scrapeDaemon(tickers).RunOnce(ctx)
		if err != nil {
			return fmt.Errorf("scrape: %w", err)
		}

		sources := make([]string, 0, len(result.Fetched))
		for source := range result.Fetched {
			sources = append(sources, source)
		}
		sort.Strings(sources)

		fmt.Println("Fetched:")
		for _, source := range sources {
			fmt.Printf("  - %-8s %d\n", source, result.Fetched[source])
		}
		for _, source := range result.Failed {
			fmt.Printf("  ❌ %s failed\n", source)
		}
		fmt.Printf("\n✅ Saved %d new items (store total %d) in %s\n",
			result.Saved, result.Total, result.Duration.Round(time.Millisecond))
		return nil
	})
}

func runNewsCleanup(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		days := a.cfg.News.RetentionDays
		if newsDays > 0 {
			days = newsDays
		}

		deleted, err := a.store.Cleanup(ctx, days)
		if err != nil {
			return fmt.Errorf("cleanup: %w", err)
		}
		fmt.Printf("✅ Deleted %d items older than %d days\n", deleted, days)
		return nil
	})
}

func runNewsList(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		ticker := strings.ToUpper(strings.TrimSpace(newsTicker))
		items, err := a.store.Query(ctx, news.QueryOptions{
			Ticker:       ticker,
			HoursBack:    newsHours,
			Limit:        newsLimit,
			FilterTicker: ticker != "",
		})
		if err != nil {
			return fmt.Errorf("query news: %w", err)
		}

		for _, item := range items {
			tag := item.Ticker
			if tag == "" {
				tag = "MACRO"
			}
			fmt.Printf("%s  %-7s %-6s %-6s %s\n",
				item.PublishedAt.Local().Format("01-02 15:04"), item.Source, tag, item.Importance, item.Title)
		}
		fmt.Printf("\n%d items\n", len(items))
		return nil
	})
}

func runNewsCount(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		n, err := a.store.Count(ctx)
		if err != nil {
			return fmt.Errorf("count news: %w", err)
		}
		fmt.Println(n)
		return nil
	})
}
