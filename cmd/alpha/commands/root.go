package commands

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/wonny/alpha-engine/backend/pkg/config"
	"github.com/wonny/alpha-engine/backend/pkg/logger"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "alpha",
	Short: "Alpha Contradiction Engine",
	Long: `Alpha Contradiction Engine CLI

Extracts eight directional signals per ticker, detects contradictions
between them and scores the consensus. No model calls: every number is
computed from market data.

Usage:
  go run ./cmd/alpha [command]

Examples:
  go run ./cmd/alpha analyze NVDA
  go run ./cmd/alpha analyze NVDA TSLA --json
  go run ./cmd/alpha monitor start
  go run ./cmd/alpha news scrape
  go run ./cmd/alpha api --port 8089
  go run ./cmd/alpha rules validate config/rules.yaml`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig applies the global flags on top of the environment and loads
// the configuration
func loadConfig() (*config.Config, error) {
	if configFile != "" {
		if err := godotenv.Load(configFile); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", configFile, err)
		}
	}
	if env != "" {
		_ = os.Setenv("ENV", env)
	}
	if verbose {
		_ = os.Setenv("LOG_LEVEL", "debug")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// setup loads config and creates the logger
func setup() (*config.Config, *logger.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger.NewWithWriter(cfg, os.Stderr), nil
}
