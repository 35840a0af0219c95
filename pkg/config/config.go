package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// Only this package reads environment variables.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database (Postgres news store)
	Database DatabaseConfig

	// Redis (API analysis cache and rate limits)
	Redis RedisConfig

	// API per-client rate limit
	API APIConfig

	// News
	News NewsConfig

	// Data sources
	Sources SourcesConfig

	// Continuous monitor
	Monitor MonitorConfig

	// Kafka idea sink
	Kafka KafkaConfig

	// Contradiction rule table override (YAML)
	RulesFile string

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// APIConfig limits requests per client address on /api routes.
// A zero RateLimit disables the limit.
type APIConfig struct {
	RateLimit  int
	RateWindow time.Duration
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// NewsConfig selects and tunes the local news store
type NewsConfig struct {
	StoreDriver   string // sqlite, postgres
	StorePath     string // sqlite file
	HoursBack     int
	RetentionDays int
}

// SourcesConfig holds upstream endpoints for collectors and scrapers
type SourcesConfig struct {
	YahooBaseURL  string
	Jin10APIURL   string
	Jin10AppID    string
	FinvizBaseURL string
	SnapshotDir   string
	RateLimit     float64 // requests per second, per host client
}

// MonitorConfig holds the continuous monitor settings
type MonitorConfig struct {
	Watchlist       []string
	ScanSchedule    string // cron spec with seconds
	ScrapeSchedule  string
	CleanupSchedule string
	OutputPath      string
}

// KafkaConfig holds the trading idea topic settings
type KafkaConfig struct {
	Enabled    bool
	Brokers    []string
	IdeasTopic string
}

// DefaultWatchlist is scanned when MONITOR_WATCHLIST is unset
var DefaultWatchlist = []string{"NVDA", "TSLA", "AAPL", "META", "AMZN", "GOOGL", "MSFT", "AMD", "NFLX", "PLTR"}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		API: APIConfig{
			RateLimit:  getEnvAsInt("API_RATE_LIMIT", 60),
			RateWindow: getEnvAsDuration("API_RATE_WINDOW", "1m"),
		},

		News: NewsConfig{
			StoreDriver:   strings.ToLower(getEnv("NEWS_STORE_DRIVER", "sqlite")),
			StorePath:     getEnv("NEWS_STORE_PATH", "data/news.db"),
			HoursBack:     getEnvAsInt("NEWS_HOURS_BACK", 24),
			RetentionDays: getEnvAsInt("NEWS_RETENTION_DAYS", 7),
		},

		Sources: SourcesConfig{
			YahooBaseURL:  getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
			Jin10APIURL:   getEnv("JIN10_API_URL", "https://flash-api.jin10.com/get_flash_list"),
			Jin10AppID:    getEnv("JIN10_APP_ID", "bVBF4FyRTn5NJF5n"),
			FinvizBaseURL: getEnv("FINVIZ_BASE_URL", "https://finviz.com"),
			SnapshotDir:   getEnv("SNAPSHOT_DIR", "snapshots"),
			RateLimit:     getEnvAsFloat("HTTP_RATE_LIMIT", 2),
		},

		Monitor: MonitorConfig{
			Watchlist:       getEnvAsList("MONITOR_WATCHLIST", DefaultWatchlist),
			ScanSchedule:    getEnv("MONITOR_SCAN_SCHEDULE", "0 */30 * * * *"),
			ScrapeSchedule:  getEnv("MONITOR_SCRAPE_SCHEDULE", "0 */5 * * * *"),
			CleanupSchedule: getEnv("MONITOR_CLEANUP_SCHEDULE", "0 0 4 * * *"),
			OutputPath:      getEnv("MONITOR_OUTPUT_PATH", "data/trading_ideas.log"),
		},

		Kafka: KafkaConfig{
			Enabled:    getEnvAsBool("KAFKA_ENABLED", false),
			Brokers:    getEnvAsList("KAFKA_BROKERS", []string{"localhost:9092"}),
			IdeasTopic: getEnv("KAFKA_IDEAS_TOPIC", "alpha.trading-ideas"),
		},

		RulesFile: getEnv("RULES_FILE", ""),

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		// Monitoring
		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	// Validate environment
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.News.StoreDriver {
	case "sqlite":
		if c.News.StorePath == "" {
			return fmt.Errorf("NEWS_STORE_PATH is required for the sqlite news store")
		}
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres news store")
		}
	default:
		return fmt.Errorf("NEWS_STORE_DRIVER must be one of: sqlite, postgres")
	}

	if len(c.Monitor.Watchlist) == 0 {
		return fmt.Errorf("MONITOR_WATCHLIST must name at least one ticker")
	}

	if c.API.RateLimit < 0 {
		return fmt.Errorf("API_RATE_LIMIT must not be negative")
	}
	if c.API.RateLimit > 0 && c.API.RateWindow <= 0 {
		return fmt.Errorf("API_RATE_WINDOW must be positive when API_RATE_LIMIT is set")
	}

	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED is set")
	}

	return nil
}

// RedisAddr returns host:port for the Redis client
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	// Try paths in order of priority
	paths := []string{
		".env",         // Current directory
		"backend/.env", // From project root
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

// getEnvAsList splits a comma separated value and drops blanks
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return append([]string(nil), defaultValue...)
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
