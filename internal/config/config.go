package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// DateLayout is the format of RUN_DATE and the --date flag
const DateLayout = "2006-01-02"

// Cache backends
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config holds all application configuration
type Config struct {
	// Run
	Domain        string   `envconfig:"DOMAIN" default:"mlb-hr"`
	Simulate      bool     `envconfig:"SIMULATE" default:"false"`
	Debug         bool     `envconfig:"DEBUG" default:"false"`
	RunDate       string   `envconfig:"RUN_DATE" default:""`
	Season        int      `envconfig:"SEASON" default:"0"`
	LookbackDays  int      `envconfig:"LOOKBACK_DAYS" default:"0"`
	MinRating     float64  `envconfig:"MIN_RATING" default:"0"`
	Teams         []string `envconfig:"TEAMS" default:""`
	FavorableOnly bool     `envconfig:"FAVORABLE_ONLY" default:"false"`
	TopN          int      `envconfig:"TOP_N" default:"0"`
	ExportPath    string   `envconfig:"EXPORT_PATH" default:""`
	RandomSeed    uint64   `envconfig:"RANDOM_SEED" default:"0"`

	// MLB Stats API / Baseball Savant
	MLBStatsBaseURL string `envconfig:"MLB_STATS_BASE_URL" default:"https://statsapi.mlb.com/api/v1"`
	SavantBaseURL   string `envconfig:"SAVANT_BASE_URL" default:"https://baseballsavant.mlb.com"`
	StatcastMinBBE  int    `envconfig:"STATCAST_MIN_BBE" default:"25"`

	// OpenWeatherMap
	WeatherAPIKey  string `envconfig:"WEATHER_API_KEY" default:""`
	WeatherBaseURL string `envconfig:"WEATHER_BASE_URL" default:"https://api.openweathermap.org/data/2.5"`

	// Odds page
	OddsPageURL       string `envconfig:"ODDS_PAGE_URL" default:""`
	OddsRowSelector   string `envconfig:"ODDS_ROW_SELECTOR" default:"table tbody tr"`
	OddsNameSelector  string `envconfig:"ODDS_NAME_SELECTOR" default:"td:nth-child(1)"`
	OddsPriceSelector string `envconfig:"ODDS_PRICE_SELECTOR" default:"td:nth-child(2)"`

	// HTTP
	HTTPTimeout    time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`
	HTTPMaxRetries int           `envconfig:"HTTP_MAX_RETRIES" default:"2"`
	HTTPRetryDelay time.Duration `envconfig:"HTTP_RETRY_DELAY" default:"1s"`
	RequestDelay   time.Duration `envconfig:"REQUEST_DELAY" default:"250ms"`

	// Webhook
	WebhookURL    string `envconfig:"WEBHOOK_URL" default:""`
	NotifyEnabled bool   `envconfig:"NOTIFY_ENABLED" default:"false"`
	NotifyTop     int    `envconfig:"NOTIFY_TOP" default:"5"`

	// Cache
	CacheBackend string        `envconfig:"CACHE_BACKEND" default:"memory"`
	CacheTTL     time.Duration `envconfig:"CACHE_TTL" default:"6h"`

	// Redis
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Warehouse (read-only Postgres source)
	WarehouseEnabled bool   `envconfig:"WAREHOUSE_ENABLED" default:"false"`
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"betedge"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"betedge"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" default:""`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Autopilot
	EnableScheduler   bool   `envconfig:"ENABLE_SCHEDULER" default:"true"`
	AutopilotCron     string `envconfig:"AUTOPILOT_CRON" default:"0 15 * * *"`
	InitialRunEnabled bool   `envconfig:"INITIAL_RUN_ENABLED" default:"false"`

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
	MetricsPort   int  `envconfig:"METRICS_PORT" default:"9090"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if in development mode
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}
	cfg.Teams = cleanList(cfg.Teams)

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Domain) == "" {
		return fmt.Errorf("DOMAIN is required")
	}

	if c.MinRating < 0 || c.MinRating > 10 {
		return fmt.Errorf("MIN_RATING must be between 0 and 10, got %v", c.MinRating)
	}

	if c.TopN < 0 {
		return fmt.Errorf("TOP_N must not be negative")
	}

	if c.LookbackDays < 0 {
		return fmt.Errorf("LOOKBACK_DAYS must not be negative")
	}

	if c.RunDate != "" {
		if _, err := time.Parse(DateLayout, c.RunDate); err != nil {
			return fmt.Errorf("RUN_DATE must be formatted as %s: %w", DateLayout, err)
		}
	}

	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}

	if c.RequestDelay < 0 {
		return fmt.Errorf("REQUEST_DELAY must not be negative")
	}

	switch c.CacheBackend {
	case CacheNone, CacheMemory, CacheRedis:
	default:
		return fmt.Errorf("CACHE_BACKEND must be one of none, memory, redis; got %q", c.CacheBackend)
	}

	if c.WarehouseEnabled && c.DatabasePassword == "" {
		return fmt.Errorf("DATABASE_PASSWORD is required when WAREHOUSE_ENABLED is set")
	}

	if c.NotifyEnabled && c.WebhookURL == "" && c.IsProduction() {
		return fmt.Errorf("WEBHOOK_URL is required when NOTIFY_ENABLED is set in production")
	}

	return nil
}

// Date returns the run date, defaulting to today in the local zone
func (c *Config) Date(now time.Time) time.Time {
	if c.RunDate != "" {
		if t, err := time.ParseInLocation(DateLayout, c.RunDate, now.Location()); err == nil {
			return t
		}
	}
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

// SeasonFor returns the configured season or the year of the run date
func (c *Config) SeasonFor(date time.Time) int {
	if c.Season > 0 {
		return c.Season
	}
	return date.Year()
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DatabaseHost,
		c.DatabasePort,
		c.DatabaseUser,
		c.DatabasePassword,
		c.DatabaseName,
		c.DatabaseSSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// MustLoad loads configuration or panics on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func cleanList(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
