package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"PriceDash/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Symbols       []string `yaml:"symbols" toml:"symbols"`
	DefaultSymbol string   `yaml:"default_symbol" toml:"default_symbol"`
	DefaultPeriod string   `yaml:"default_period" toml:"default_period"`
	Timeout       string   `yaml:"timeout" toml:"timeout"`

	Provider struct {
		Name      string `yaml:"name" toml:"name"`
		BaseURL   string `yaml:"base_url" toml:"base_url"`
		APIKey    string `yaml:"api_key" toml:"api_key"`
		APISecret string `yaml:"api_secret" toml:"api_secret"`
		Proxy     string `yaml:"proxy" toml:"proxy"`
	} `yaml:"provider" toml:"provider"`

	Store StoreConfig `yaml:"store" toml:"store"`

	Cache struct {
		Backend       string `yaml:"backend" toml:"backend"`
		RedisAddr     string `yaml:"redis_addr" toml:"redis_addr"`
		RedisPassword string `yaml:"redis_password" toml:"redis_password"`
		RedisDB       int    `yaml:"redis_db" toml:"redis_db"`
		TTL           string `yaml:"ttl" toml:"ttl"`
	} `yaml:"cache" toml:"cache"`

	History struct {
		WideCSV string `yaml:"wide_csv" toml:"wide_csv"`
	} `yaml:"history" toml:"history"`

	Schedule struct {
		SyncCron string `yaml:"sync_cron" toml:"sync_cron"`
	} `yaml:"schedule" toml:"schedule"`

	Telegram struct {
		BotToken string `yaml:"bot_token" toml:"bot_token"`
		ChatID   string `yaml:"chat_id" toml:"chat_id"`
	} `yaml:"telegram" toml:"telegram"`

	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// StoreConfig selects and locates the price history backend.
type StoreConfig struct {
	Backend     string `yaml:"backend" toml:"backend"` // sqlite, parquet, postgres or memory
	SQLitePath  string `yaml:"sqlite_path" toml:"sqlite_path"`
	DataDir     string `yaml:"data_dir" toml:"data_dir"`
	PostgresDSN string `yaml:"postgres_dsn" toml:"postgres_dsn"`
}

// LoggingConfig controls the process-wide logger.
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"` // console or json
	File   string `yaml:"file" toml:"file"`
}

// Load reads config from a YAML or TOML file, then applies environment
// variable overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := decode(path, data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Unmarshal(data, cfg)
	default:
		return yaml.Unmarshal(data, cfg)
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PRICEDASH_SYMBOLS"); v != "" {
		cfg.Symbols = splitSymbols(v)
	}
	if v := os.Getenv("PROVIDER"); v != "" {
		cfg.Provider.Name = v
	}
	if v := os.Getenv("ALPACA_API_KEY"); v != "" {
		cfg.Provider.APIKey = v
	}
	if v := os.Getenv("ALPACA_API_SECRET"); v != "" {
		cfg.Provider.APISecret = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Provider.Proxy = v
	}
	if v := os.Getenv("STORE_BACKEND"); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Store.SQLitePath = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Store.DataDir = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Store.PostgresDSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
		if cfg.Cache.Backend == "" {
			cfg.Cache.Backend = "redis"
		}
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Cache.RedisPassword = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("CRON_SYNC"); v != "" {
		cfg.Schedule.SyncCron = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

func applyDefaults(cfg *Config) {
	if len(cfg.Symbols) == 0 {
		cfg.Symbols = []string{"AAPL", "MSFT", "GOOG", "AMZN", "NFLX", "TSLA"}
	}
	for i, s := range cfg.Symbols {
		cfg.Symbols[i] = model.NormalizeSymbol(s)
	}
	if cfg.DefaultSymbol == "" {
		cfg.DefaultSymbol = cfg.Symbols[0]
	}
	cfg.DefaultSymbol = model.NormalizeSymbol(cfg.DefaultSymbol)
	if cfg.DefaultPeriod == "" {
		cfg.DefaultPeriod = string(model.Period1M)
	}
	if cfg.Timeout == "" {
		cfg.Timeout = "30s"
	}
	if cfg.Provider.Name == "" {
		cfg.Provider.Name = "yahoo"
	}
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = "sqlite"
	}
	if cfg.Store.SQLitePath == "" {
		cfg.Store.SQLitePath = "data/pricedash.db"
	}
	if cfg.Store.DataDir == "" {
		cfg.Store.DataDir = "data"
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "memory"
	}
	if cfg.Cache.RedisAddr == "" {
		cfg.Cache.RedisAddr = "localhost:6379"
	}
	if cfg.Cache.TTL == "" {
		cfg.Cache.TTL = "12h"
	}
	if cfg.Schedule.SyncCron == "" {
		cfg.Schedule.SyncCron = "0 30 22 * * 1-5"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
}

// Validate checks that all required fields are set and well formed.
func (c *Config) Validate() error {
	if len(c.Symbols) == 0 {
		return fmt.Errorf("symbols must not be empty")
	}
	if !c.Tracks(c.DefaultSymbol) {
		return fmt.Errorf("default_symbol %q is not in symbols", c.DefaultSymbol)
	}
	if _, err := model.ParsePeriod(c.DefaultPeriod); err != nil {
		return fmt.Errorf("default_period: %w", err)
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("timeout: %w", err)
	}
	if _, err := time.ParseDuration(c.Cache.TTL); err != nil {
		return fmt.Errorf("cache.ttl: %w", err)
	}
	switch c.Provider.Name {
	case "yahoo", "mock":
	case "alpaca":
		if c.Provider.APIKey == "" || c.Provider.APISecret == "" {
			return fmt.Errorf("provider.api_key and provider.api_secret are required for alpaca")
		}
	default:
		return fmt.Errorf("unknown provider %q", c.Provider.Name)
	}
	switch c.Store.Backend {
	case "sqlite", "parquet", "memory":
	case "postgres":
		if c.Store.PostgresDSN == "" {
			return fmt.Errorf("store.postgres_dsn is required for postgres")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("unknown logging format %q", c.Logging.Format)
	}
	return nil
}

// ValidateTelegram checks the settings the bot and scheduled reports need.
func (c *Config) ValidateTelegram() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	return nil
}

// Tracks reports whether symbol is one of the configured symbols.
func (c *Config) Tracks(symbol string) bool {
	symbol = model.NormalizeSymbol(symbol)
	for _, s := range c.Symbols {
		if s == symbol {
			return true
		}
	}
	return false
}

// TelegramEnabled reports whether both bot token and chat id are set.
func (c *Config) TelegramEnabled() bool {
	return c.ValidateTelegram() == nil
}

// RequestTimeout returns the per-call provider and store timeout.
func (c *Config) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// CacheTTL returns the safety expiry for shared cache entries.
func (c *Config) CacheTTL() time.Duration {
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil || d <= 0 {
		return 12 * time.Hour
	}
	return d
}

func splitSymbols(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
