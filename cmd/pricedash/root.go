package main

import (
	"fmt"
	"os"
	"time"

	"github.com/phuslu/log"
	"github.com/spf13/cobra"

	"PriceDash/internal/cache"
	"PriceDash/internal/collector"
	"PriceDash/internal/config"
	"PriceDash/internal/logging"
	"PriceDash/internal/model"
	"PriceDash/internal/pipeline"
	"PriceDash/internal/store"
)

var configPath string

// app is the wiring shared by every subcommand.
type app struct {
	cfg      *config.Config
	store    store.Store
	cache    cache.Cache
	pipeline *pipeline.Pipeline
	session  *model.Session
}

var current *app

var rootCmd = &cobra.Command{
	Use:   "pricedash",
	Short: "Closing-price history tracker",
	Long: `PriceDash keeps a local closing-price history for a list of symbols up to date,
fetching only the missing days, and shows a percent-change window for one symbol.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(configPath)
		if err != nil {
			return err
		}
		current = a
		return nil
	},
}

// execute runs the root command. cobra skips post-run hooks when RunE fails,
// so the app is released here instead.
func execute() error {
	defer func() {
		if current != nil {
			current.close()
			current = nil
		}
	}()
	return rootCmd.Execute()
}

func init() {
	defaultPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultPath = v
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultPath, "config file (.yaml or .toml)")

	rootCmd.AddCommand(viewCmd, syncCmd, quoteCmd, historyCmd, importCmd, exportCmd, scheduleCmd, botCmd)
}

func newApp(path string) (*app, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	logging.Setup(cfg.Logging)

	sess := model.NewSession(time.Now())

	st, err := store.Open(cfg.Store)
	if err != nil {
		log.Warn().Str("backend", cfg.Store.Backend).Err(err).Msg("store unavailable, using in-memory history")
		st = store.NewMemoryStore()
	}

	provider, err := newProvider(cfg)
	if err != nil {
		st.Close()
		return nil, err
	}
	log.Info().Str("provider", provider.Name()).Str("store", st.Name()).Strs("symbols", cfg.Symbols).Msg("pricedash starting")

	c := newCache(cfg, sess)
	return &app{
		cfg:     cfg,
		store:   st,
		cache:   c,
		session: sess,
		pipeline: &pipeline.Pipeline{
			Store:     st,
			Collector: collector.NewCollector(provider),
			Cache:     c,
			Symbols:   cfg.Symbols,
			Timeout:   cfg.RequestTimeout(),
		},
	}, nil
}

func newProvider(cfg *config.Config) (collector.Provider, error) {
	switch cfg.Provider.Name {
	case "yahoo":
		return collector.NewYahooProvider(cfg.Provider.BaseURL, cfg.Provider.Proxy, cfg.RequestTimeout()), nil
	case "alpaca":
		return collector.NewAlpacaProvider(cfg.Provider.APIKey, cfg.Provider.APISecret, cfg.Provider.BaseURL), nil
	case "mock":
		return &collector.MockProvider{Price: 100}, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider.Name)
	}
}

func newCache(cfg *config.Config, sess *model.Session) cache.Cache {
	if cfg.Cache.Backend == "redis" {
		rc, err := cache.NewRedisCache(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB, cfg.CacheTTL(), sess.ID)
		if err == nil {
			return rc
		}
		log.Warn().Str("addr", cfg.Cache.RedisAddr).Err(err).Msg("redis unavailable, using in-memory cache")
	}
	return cache.NewMemoryCache(0)
}

func (a *app) close() {
	if a.cache != nil {
		a.cache.Close()
	}
	if err := a.store.Close(); err != nil {
		log.Warn().Err(err).Msg("close store")
	}
}
