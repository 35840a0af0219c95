package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/wonny/alpha-engine/backend/internal/api"
	"github.com/wonny/alpha-engine/backend/internal/api/handlers"
	"github.com/wonny/alpha-engine/backend/pkg/logger"
	"github.com/wonny/alpha-engine/backend/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Start the REST API server.

Analyses are cached in Redis for ten minutes when REDIS_ENABLED is set;
pass ?refresh=true to bypass the cache.

Endpoints:
  GET  /health                        - Health check
  GET  /metrics                       - Prometheus metrics
  GET  /api/analysis/{ticker}         - Analysis as JSON
  GET  /api/analysis/{ticker}/report  - Markdown report
  GET  /api/news                      - Stored news (?ticker=&hours=&limit=&source=)

Example:
  go run ./cmd/alpha api
  go run ./cmd/alpha api --port 8090`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Alpha Contradiction Engine API Server ===")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Override port if flag is set
	if apiPort != "" {
		cfg.Port = apiPort
	}

	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	a, err := newApp(ctx, cfg, log, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	redisClient, err := redis.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()
	if redisClient.Enabled() {
		log.Info("Connected to redis")
	}

	cache := redis.NewCache(redisClient, "alpha")
	apiLog := log.Component("api")
	h := api.Handlers{
		Analysis: handlers.NewAnalysisHandler(a.analyzer, cache, apiLog),
		News:     handlers.NewNewsHandler(a.store, cache, apiLog),
	}
	limit := api.RateLimit{
		Limiter: redis.NewRateLimiter(redisClient, "alpha"),
		Limit:   cfg.API.RateLimit,
		Window:  cfg.API.RateWindow,
	}
	if !redisClient.Enabled() {
		log.Info("Redis disabled, API rate limit not enforced")
	}
	router := api.NewRouter(h, prometheus.DefaultGatherer, a.metrics, limit, apiLog)
	server := api.New(cfg, log, router)

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  GET  /metrics")
	fmt.Println("  GET  /api/analysis/{ticker}")
	fmt.Println("  GET  /api/analysis/{ticker}/report")
	fmt.Println("  GET  /api/news")
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
