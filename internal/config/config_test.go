package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CryptoSim/internal/model"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "HTTPS_PROXY", "SQLITE_PATH", "CYCLE_CRON", "INITIAL_CASH", "TRACKED_SYMBOLS"} {
		t.Setenv(k, "")
	}
	DotEnvPath = filepath.Join(t.TempDir(), ".env")
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, DefaultSymbols, cfg.Symbols)
	assert.Equal(t, model.DefaultStartingBalance, cfg.Portfolio.StartingBalance)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, 150*time.Millisecond, cfg.Sync.Stagger)
	assert.Equal(t, 3600, cfg.Sync.Granularity.Medium)
	assert.False(t, cfg.TelegramEnabled())

	opts := cfg.SyncOptions()
	assert.Equal(t, 86400, opts.Granularity[model.HorizonLong])
	assert.Equal(t, 100, opts.SeriesLength)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", `
symbols:
  - symbol: btc
    name: Bitcoin
    logo: https://example.com/btc.png
  - symbol: DOGE
sync:
  stagger: 50ms
  retry_backoff: 2s
  max_lanes: 2
schedule:
  cycle_cron: "*/30 * * * * *"
portfolio:
  starting_balance: 2500
storage:
  driver: file
  dir: /tmp/sim
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.Len(t, cfg.Symbols, 2)
	assert.Equal(t, "BTC", cfg.Symbols[0].Symbol)
	assert.Equal(t, "https://example.com/btc.png", cfg.Symbols[0].LogoURL)
	assert.Equal(t, "DOGE", cfg.Symbols[1].Name)
	assert.Equal(t, 50*time.Millisecond, cfg.Sync.Stagger)
	assert.Equal(t, 2*time.Second, cfg.Sync.RetryBackoff)
	assert.Equal(t, 2, cfg.Sync.MaxLanes)
	assert.Equal(t, "*/30 * * * * *", cfg.Schedule.CycleCron)
	assert.Equal(t, 2500.0, cfg.Portfolio.StartingBalance)
	assert.Equal(t, DriverFile, cfg.Storage.Driver)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", "portfolio:\n  starting_balance: 2500\n")
	t.Setenv("INITIAL_CASH", "500.5")
	t.Setenv("TRACKED_SYMBOLS", "eth, ada ,")
	t.Setenv("CYCLE_CRON", "0 */5 * * * *")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 500.5, cfg.Portfolio.StartingBalance)
	assert.Equal(t, []model.TrackedSymbol{{Symbol: "ETH", Name: "Ethereum"}, {Symbol: "ADA", Name: "ADA"}}, cfg.Symbols)
	assert.Equal(t, "0 */5 * * * *", cfg.Schedule.CycleCron)
	assert.Equal(t, "/tmp/x.db", cfg.Storage.SQLitePath)
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("TELEGRAM_BOT_TOKEN")
	os.Unsetenv("TELEGRAM_CHAT_ID")
	DotEnvPath = writeFile(t, ".env", "TELEGRAM_BOT_TOKEN=abc\nTELEGRAM_CHAT_ID=99\n")
	t.Cleanup(func() {
		os.Unsetenv("TELEGRAM_BOT_TOKEN")
		os.Unsetenv("TELEGRAM_CHAT_ID")
	})

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "abc", cfg.Telegram.BotToken)
	assert.Equal(t, "99", cfg.Telegram.ChatID)
	assert.True(t, cfg.TelegramEnabled())
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)
	_, err := Load(writeFile(t, "bad.yaml", "symbols: [:"))
	assert.Error(t, err)

	t.Setenv("INITIAL_CASH", "lots")
	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	base := func() *Config {
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"duplicate symbol", func(c *Config) { c.Symbols = append(c.Symbols, c.Symbols[0]) }},
		{"negative cash", func(c *Config) { c.Portfolio.StartingBalance = -1 }},
		{"half telegram", func(c *Config) { c.Telegram.BotToken = "x" }},
		{"negative stagger", func(c *Config) { c.Sync.Stagger = -time.Second }},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "redis" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
