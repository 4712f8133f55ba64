// Package store persists the closing-price history.
package store

import (
	"context"
	"fmt"

	"PriceDash/internal/config"
	"PriceDash/internal/model"
)

// Store loads and appends closing prices keyed by (symbol, date).
type Store interface {
	// Load returns every persisted row sorted by symbol, then date. Errors
	// caused by an unreachable backend wrap model.ErrStoreUnavailable.
	Load(ctx context.Context) ([]model.PricePoint, error)
	// Append persists rows. An existing (symbol, date) pair is never duplicated.
	Append(ctx context.Context, rows []model.PricePoint) error
	Name() string
	Close() error
}

// Compile-time interface checks.
var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*ParquetStore)(nil)
	_ Store = (*PostgresStore)(nil)
	_ Store = (*MemoryStore)(nil)
)

// Open builds the backend named by cfg.Backend.
func Open(cfg config.StoreConfig) (Store, error) {
	switch cfg.Backend {
	case "sqlite", "":
		return NewSQLiteStore(cfg.SQLitePath)
	case "parquet":
		return NewParquetStore(cfg.DataDir), nil
	case "postgres":
		return NewPostgresStore(cfg.PostgresDSN)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, model.ErrStoreUnavailable, err)
}
