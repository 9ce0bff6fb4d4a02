package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"CryptoSim/internal/feed"
	"CryptoSim/internal/model"
	"CryptoSim/internal/store"
	"CryptoSim/internal/synchronizer"
)

// Storage drivers.
const (
	DriverSQLite = store.DriverSQLite
	DriverFile   = store.DriverFile
	DriverMemory = store.DriverMemory
)

// DotEnvPath is loaded into the environment before overrides are applied.
// Variables already set in the environment win.
var DotEnvPath = ".env"

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Feed struct {
		SpotBaseURL     string        `yaml:"spot_base_url"`
		ExchangeBaseURL string        `yaml:"exchange_base_url"`
		CoinGeckoURL    string        `yaml:"coingecko_url"`
		Timeout         time.Duration `yaml:"timeout"`
	} `yaml:"feed"`
	Symbols []model.TrackedSymbol `yaml:"symbols"`
	Sync    struct {
		Stagger      time.Duration `yaml:"stagger"`
		RetryBackoff time.Duration `yaml:"retry_backoff"`
		CallTimeout  time.Duration `yaml:"call_timeout"`
		MaxLanes     int           `yaml:"max_lanes"`
		SeriesLength int           `yaml:"series_length"`
		Granularity  struct {
			Short  int `yaml:"short"`
			Medium int `yaml:"medium"`
			Long   int `yaml:"long"`
		} `yaml:"granularity"`
	} `yaml:"sync"`
	Schedule struct {
		CycleCron  string `yaml:"cycle_cron"`
		ReportCron string `yaml:"report_cron"`
	} `yaml:"schedule"`
	Portfolio struct {
		StartingBalance float64 `yaml:"starting_balance"`
	} `yaml:"portfolio"`
	Storage struct {
		Driver     string `yaml:"driver"`
		SQLitePath string `yaml:"sqlite_path"`
		Dir        string `yaml:"dir"`
	} `yaml:"storage"`
	Proxy string `yaml:"proxy"`
}

// DefaultSymbols are tracked when neither the file nor the environment names any.
var DefaultSymbols = []model.TrackedSymbol{
	{Symbol: "BTC", Name: "Bitcoin"},
	{Symbol: "ETH", Name: "Ethereum"},
	{Symbol: "SOL", Name: "Solana"},
}

// Load reads config from a YAML file, then applies .env and environment variable overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := godotenv.Load(DotEnvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", DotEnvPath, err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Storage.SQLitePath = v
	}
	if v := os.Getenv("CYCLE_CRON"); v != "" {
		c.Schedule.CycleCron = v
	}
	if v := os.Getenv("INITIAL_CASH"); v != "" {
		cash, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("INITIAL_CASH: %w", err)
		}
		c.Portfolio.StartingBalance = cash
	}
	if v := os.Getenv("TRACKED_SYMBOLS"); v != "" {
		c.Symbols = parseSymbols(v, c.Symbols)
	}
	return nil
}

// parseSymbols turns "BTC,eth" into tracked symbols, keeping metadata of symbols already known.
func parseSymbols(list string, known []model.TrackedSymbol) []model.TrackedSymbol {
	meta := make(map[string]model.TrackedSymbol)
	for _, s := range DefaultSymbols {
		meta[s.Symbol] = s
	}
	for _, s := range known {
		meta[s.Symbol] = s
	}

	var out []model.TrackedSymbol
	for _, field := range strings.Split(list, ",") {
		sym := strings.ToUpper(strings.TrimSpace(field))
		if sym == "" {
			continue
		}
		ts, ok := meta[sym]
		if !ok {
			ts = model.TrackedSymbol{Symbol: sym, Name: sym}
		}
		out = append(out, ts)
	}
	return out
}

func (c *Config) applyDefaults() {
	if len(c.Symbols) == 0 {
		c.Symbols = append([]model.TrackedSymbol(nil), DefaultSymbols...)
	}
	for i := range c.Symbols {
		c.Symbols[i].Symbol = strings.ToUpper(c.Symbols[i].Symbol)
		if c.Symbols[i].Name == "" {
			c.Symbols[i].Name = c.Symbols[i].Symbol
		}
	}

	if c.Feed.SpotBaseURL == "" {
		c.Feed.SpotBaseURL = feed.DefaultSpotBaseURL
	}
	if c.Feed.ExchangeBaseURL == "" {
		c.Feed.ExchangeBaseURL = feed.DefaultExchangeBaseURL
	}
	if c.Feed.CoinGeckoURL == "" {
		c.Feed.CoinGeckoURL = feed.DefaultCoinGeckoBaseURL
	}
	if c.Feed.Timeout == 0 {
		c.Feed.Timeout = 30 * time.Second
	}

	def := synchronizer.DefaultOptions()
	if c.Sync.Stagger == 0 {
		c.Sync.Stagger = def.Stagger
	}
	if c.Sync.RetryBackoff == 0 {
		c.Sync.RetryBackoff = def.RetryBackoff
	}
	if c.Sync.CallTimeout == 0 {
		c.Sync.CallTimeout = def.CallTimeout
	}
	if c.Sync.SeriesLength == 0 {
		c.Sync.SeriesLength = def.SeriesLength
	}
	if c.Sync.Granularity.Short == 0 {
		c.Sync.Granularity.Short = def.Granularity[model.HorizonShort]
	}
	if c.Sync.Granularity.Medium == 0 {
		c.Sync.Granularity.Medium = def.Granularity[model.HorizonMedium]
	}
	if c.Sync.Granularity.Long == 0 {
		c.Sync.Granularity.Long = def.Granularity[model.HorizonLong]
	}

	if c.Schedule.CycleCron == "" {
		c.Schedule.CycleCron = "0 * * * * *"
	}
	if c.Schedule.ReportCron == "" {
		c.Schedule.ReportCron = "0 0 9 * * *"
	}
	if c.Portfolio.StartingBalance == 0 {
		c.Portfolio.StartingBalance = model.DefaultStartingBalance
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverSQLite
	}
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = "data/cryptosim.db"
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = "data"
	}
}

// SyncOptions converts the sync section for the synchronizer.
func (c *Config) SyncOptions() synchronizer.Options {
	return synchronizer.Options{
		Stagger:      c.Sync.Stagger,
		RetryBackoff: c.Sync.RetryBackoff,
		CallTimeout:  c.Sync.CallTimeout,
		MaxLanes:     c.Sync.MaxLanes,
		SeriesLength: c.Sync.SeriesLength,
		Granularity: map[model.Horizon]int{
			model.HorizonShort:  c.Sync.Granularity.Short,
			model.HorizonMedium: c.Sync.Granularity.Medium,
			model.HorizonLong:   c.Sync.Granularity.Long,
		},
	}
}

// TelegramEnabled reports whether both bot credentials are set.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if len(c.Symbols) == 0 {
		return fmt.Errorf("at least one symbol is required")
	}
	seen := make(map[string]bool)
	for _, s := range c.Symbols {
		if s.Symbol == "" {
			return fmt.Errorf("symbols: empty symbol")
		}
		if seen[s.Symbol] {
			return fmt.Errorf("symbols: %s listed twice", s.Symbol)
		}
		seen[s.Symbol] = true
	}
	if c.Portfolio.StartingBalance <= 0 {
		return fmt.Errorf("portfolio.starting_balance must be positive")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	if c.Sync.Stagger < 0 || c.Sync.RetryBackoff < 0 || c.Sync.CallTimeout < 0 {
		return fmt.Errorf("sync durations must not be negative")
	}
	if c.Sync.Granularity.Short <= 0 || c.Sync.Granularity.Medium <= 0 || c.Sync.Granularity.Long <= 0 {
		return fmt.Errorf("sync.granularity values must be positive")
	}
	switch c.Storage.Driver {
	case DriverSQLite, DriverFile, DriverMemory:
	default:
		return fmt.Errorf("storage.driver %q is not one of sqlite, file, memory", c.Storage.Driver)
	}
	return nil
}
