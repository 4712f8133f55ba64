package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"PRICEDASH_SYMBOLS", "PROVIDER", "ALPACA_API_KEY", "ALPACA_API_SECRET", "HTTPS_PROXY",
		"STORE_BACKEND", "SQLITE_PATH", "DATA_DIR", "POSTGRES_DSN", "REDIS_ADDR", "REDIS_PASSWORD",
		"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "CRON_SYNC", "LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.DefaultSymbol != "AAPL" || cfg.DefaultPeriod != "1M" {
		t.Errorf("default symbol/period = %s/%s", cfg.DefaultSymbol, cfg.DefaultPeriod)
	}
	if cfg.Store.Backend != "sqlite" || cfg.Provider.Name != "yahoo" || cfg.Cache.Backend != "memory" {
		t.Errorf("unexpected backends: %+v %+v %+v", cfg.Store, cfg.Provider, cfg.Cache)
	}
	if cfg.RequestTimeout() != 30*time.Second {
		t.Errorf("timeout = %v", cfg.RequestTimeout())
	}
	if cfg.TelegramEnabled() {
		t.Error("telegram should be disabled without token")
	}
}

func TestLoad_YAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
symbols: [aapl, msft]
default_period: 3m
timeout: 10s
store:
  backend: parquet
  data_dir: /tmp/prices
telegram:
  bot_token: tok
  chat_id: "42"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(cfg.Symbols) != 2 || cfg.Symbols[0] != "AAPL" || cfg.DefaultSymbol != "AAPL" {
		t.Errorf("symbols = %v default %s", cfg.Symbols, cfg.DefaultSymbol)
	}
	if cfg.Store.Backend != "parquet" || cfg.Store.DataDir != "/tmp/prices" {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.RequestTimeout() != 10*time.Second {
		t.Errorf("timeout = %v", cfg.RequestTimeout())
	}
	if !cfg.TelegramEnabled() {
		t.Error("telegram should be enabled")
	}
}

func TestLoad_TOML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
symbols = ["TSLA"]

[provider]
name = "alpaca"
api_key = "k"
api_secret = "s"

[logging]
level = "debug"
format = "json"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Provider.Name != "alpaca" || cfg.DefaultSymbol != "TSLA" {
		t.Errorf("provider %s, default symbol %s", cfg.Provider.Name, cfg.DefaultSymbol)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PRICEDASH_SYMBOLS", "nflx, goog ,")
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("POSTGRES_DSN", "postgres://u:p@localhost/db")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(cfg.Symbols) != 2 || cfg.Symbols[1] != "GOOG" {
		t.Errorf("symbols = %v", cfg.Symbols)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.RedisAddr != "redis:6379" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
}

func TestValidate_Errors(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"untracked default symbol", func(c *Config) { c.DefaultSymbol = "IBM" }},
		{"bad period", func(c *Config) { c.DefaultPeriod = "2Y" }},
		{"bad timeout", func(c *Config) { c.Timeout = "soon" }},
		{"alpaca without keys", func(c *Config) { c.Provider.Name = "alpaca" }},
		{"unknown provider", func(c *Config) { c.Provider.Name = "bloomberg" }},
		{"postgres without dsn", func(c *Config) { c.Store.Backend = "postgres" }},
		{"unknown store", func(c *Config) { c.Store.Backend = "excel" }},
		{"unknown cache", func(c *Config) { c.Cache.Backend = "memcached" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			if err != nil {
				t.Fatal(err)
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestTracks(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Tracks("tsla") {
		t.Error("TSLA should be tracked by default")
	}
	if cfg.Tracks("IBM") {
		t.Error("IBM should not be tracked")
	}
}
