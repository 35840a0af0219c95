package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/alpha-engine/backend/internal/contracts"
	"github.com/wonny/alpha-engine/backend/internal/report"
)

var (
	analyzeSnapshotDir string
	analyzeOffline     bool
	analyzeJSON        bool
)

// analyzeCmd runs one analysis per ticker and prints the report
var analyzeCmd = &cobra.Command{
	Use:   "analyze TICKER...",
	Short: "Analyze tickers for signal contradictions",
	Long: `Run the extract → detect → score pipeline for each ticker and print the
markdown report (or the raw analysis with --json).

Snapshot files in --snapshot-dir (TICKER.yaml / TICKER.json) overlay the
live Yahoo data; --offline uses the files alone.

Examples:
  go run ./cmd/alpha analyze NVDA
  go run ./cmd/alpha analyze NVDA TSLA --json
  go run ./cmd/alpha analyze NVDA --offline --snapshot-dir snapshots`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeSnapshotDir, "snapshot-dir", "", "snapshot directory (default SNAPSHOT_DIR)")
	analyzeCmd.Flags().BoolVar(&analyzeOffline, "offline", false, "use snapshot files only")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print analyses as JSON")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	a, err := newApp(ctx, cfg, log, appOptions{snapshotDir: analyzeSnapshotDir, offline: analyzeOffline})
	if err != nil {
		return err
	}
	defer a.Close()

	var (
		results []*contracts.Analysis
		failed  []string
	)
	for _, ticker := range args {
		ticker = strings.ToUpper(strings.TrimSpace(ticker))
		result, err := a.analyzer.Analyze(ctx, ticker)
		if err != nil {
			log.WithError(err).ForTicker(ticker).Error("Analysis failed")
			failed = append(failed, ticker)
			continue
		}
		results = append(results, result)
	}

	if analyzeJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return fmt.Errorf("encode analyses: %w", err)
		}
	} else {
		for i, result := range results {
			if i > 0 {
				fmt.Println()
			}
			fmt.Print(report.Markdown(result))
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("analysis failed for %s", strings.Join(failed, ", "))
	}
	return nil
}
