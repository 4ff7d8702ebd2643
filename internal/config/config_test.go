package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TEAMS", " Yankees, ,Dodgers ")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "mlb-hr", cfg.Domain)
	assert.Equal(t, CacheMemory, cfg.CacheBackend)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 250*time.Millisecond, cfg.RequestDelay)
	assert.Equal(t, []string{"Yankees", "Dodgers"}, cfg.Teams)
	assert.False(t, cfg.Simulate)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DOMAIN", "nba-shot")
	t.Setenv("SIMULATE", "true")
	t.Setenv("MIN_RATING", "5.5")
	t.Setenv("REQUEST_DELAY", "1s")
	t.Setenv("RUN_DATE", "2024-07-04")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "nba-shot", cfg.Domain)
	assert.True(t, cfg.Simulate)
	assert.Equal(t, 5.5, cfg.MinRating)
	assert.Equal(t, time.Second, cfg.RequestDelay)
}

func validConfig() *Config {
	return &Config{
		Domain:       "mlb-hr",
		LookbackDays: 7,
		HTTPTimeout:  time.Second,
		CacheBackend: CacheMemory,
		AppEnv:       "development",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"min rating too high", func(c *Config) { c.MinRating = 11 }, "MIN_RATING"},
		{"negative top", func(c *Config) { c.TopN = -1 }, "TOP_N"},
		{"bad date", func(c *Config) { c.RunDate = "07/04/2024" }, "RUN_DATE"},
		{"bad cache", func(c *Config) { c.CacheBackend = "memcached" }, "CACHE_BACKEND"},
		{"warehouse without password", func(c *Config) { c.WarehouseEnabled = true }, "DATABASE_PASSWORD"},
		{"production notify without url", func(c *Config) {
			c.AppEnv = "production"
			c.NotifyEnabled = true
		}, "WEBHOOK_URL"},
		{"development notify without url", func(c *Config) { c.NotifyEnabled = true }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_DateAndSeason(t *testing.T) {
	now := time.Date(2024, 8, 15, 18, 30, 0, 0, time.UTC)

	cfg := validConfig()
	assert.Equal(t, time.Date(2024, 8, 15, 0, 0, 0, 0, time.UTC), cfg.Date(now))
	assert.Equal(t, 2024, cfg.SeasonFor(now))

	cfg.RunDate = "2023-09-01"
	cfg.Season = 2022
	assert.Equal(t, time.Date(2023, 9, 1, 0, 0, 0, 0, time.UTC), cfg.Date(now))
	assert.Equal(t, 2022, cfg.SeasonFor(cfg.Date(now)))
}

func TestConfig_Addresses(t *testing.T) {
	cfg := &Config{
		RedisHost:        "cache",
		RedisPort:        6380,
		DatabaseHost:     "db",
		DatabasePort:     5432,
		DatabaseUser:     "u",
		DatabasePassword: "p",
		DatabaseName:     "betedge",
		DatabaseSSLMode:  "disable",
	}
	assert.Equal(t, "cache:6380", cfg.RedisAddr())
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=betedge sslmode=disable", cfg.DatabaseDSN())
}
