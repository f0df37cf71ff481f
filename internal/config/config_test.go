package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"APP_ENV", "HTTP_ADDR", "LOG_LEVEL", "MARKET_PROVIDER", "SCHEDULE_DETACHED"} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	c, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "development", c.Env)
	assert.Equal(t, ":8080", c.Server.Addr)
	assert.Equal(t, 15*time.Second, c.Server.ReadTimeout)
	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, "json", c.Log.Format)
	assert.Equal(t, "yahoo", c.Market.Provider)
	assert.Equal(t, []string{"1d", "1wk"}, c.Market.IngestIntervals)
	assert.Equal(t, 10, c.Scoring.BatchSize)
	assert.Equal(t, 3, c.Scoring.RetentionDays)
	assert.Equal(t, 1.0, c.Trading.Quantity)
	assert.Equal(t, []string{"15m"}, c.Trading.Intervals)
	assert.Empty(t, c.Trading.Strategies)
	assert.Equal(t, 70.0, c.Trading.RSIUpper)
	assert.Equal(t, "America/New_York", c.Schedule.Timezone)
	assert.Equal(t, "0 3 * * *", c.Schedule.Purge)
	assert.False(t, c.Schedule.Detached)
	assert.Equal(t, ":8081", c.Schedule.WorkerAddr)
	assert.Equal(t, "configs/reference.yaml", c.Reference.Path)
	assert.Equal(t, 12*time.Hour, c.Auth.TokenTTL)
	assert.False(t, c.IsProduction())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, `
env: production
server:
  addr: ":9090"
log:
  format: text
market:
  provider: twelvedata
  ingest_intervals: ["1d"]
scoring:
  batch_size: 25
trading:
  intervals: ["15m", "1h"]
  strategies: ["trend", "rsi", "pullback", "vwap"]
  strict_squeeze_cross: true
schedule:
  timezone: UTC
  scan: "off"
`)
	c, err := Load(path)
	require.NoError(t, err)

	assert.True(t, c.IsProduction())
	assert.Equal(t, ":9090", c.Server.Addr)
	assert.Equal(t, "text", c.Log.Format)
	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, "twelvedata", c.Market.Provider)
	assert.Equal(t, []string{"1d"}, c.Market.IngestIntervals)
	assert.Equal(t, 25, c.Scoring.BatchSize)
	assert.Equal(t, 3, c.Scoring.RetentionDays)
	assert.Equal(t, []string{"15m", "1h"}, c.Trading.Intervals)
	assert.Equal(t, []string{"trend", "rsi", "pullback", "vwap"}, c.Trading.Strategies)
	assert.True(t, c.Trading.StrictSqueezeCross)
	assert.Equal(t, "UTC", c.Schedule.Timezone)
	assert.Equal(t, "", c.Schedule.Spec(c.Schedule.Scan))
	assert.Equal(t, "*/30 9-16 * * 1-5", c.Schedule.Spec(c.Schedule.Score))
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "log:\n  level: debug\n")
	t.Setenv("APP_ENV", "staging")
	t.Setenv("HTTP_ADDR", ":7070")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("MARKET_PROVIDER", "twelvedata")
	t.Setenv("SCHEDULE_DETACHED", "true")

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "staging", c.Env)
	assert.Equal(t, ":7070", c.Server.Addr)
	assert.Equal(t, "warn", c.Log.Level)
	assert.Equal(t, "twelvedata", c.Market.Provider)
	assert.True(t, c.Schedule.Detached)
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "failure: malformed yaml", body: "server: [unclosed"},
		{name: "failure: unknown provider", body: "market:\n  provider: bloomberg\n"},
		{name: "failure: unknown interval", body: "trading:\n  intervals: [\"2h\"]\n"},
		{name: "failure: unknown strategy", body: "trading:\n  strategies: [\"macd\"]\n"},
		{name: "failure: batch too large", body: "scoring:\n  batch_size: 1000\n"},
		{name: "failure: rsi bounds inverted", body: "trading:\n  rsi_upper: 55\n  rsi_lower: 45\n"},
		{name: "failure: unknown timezone", body: "schedule:\n  timezone: Mars/Olympus\n"},
		{name: "failure: bad log level", body: "log:\n  level: loud\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_PATH", writeConfig(t, "server:\n  addr: \":6060\"\n"))

	c, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":6060", c.Server.Addr)
}
