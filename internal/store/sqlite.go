package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/phuslu/log"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"PriceDash/internal/model"
)

// SQLiteStore persists closing prices to a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// NewSQLiteStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, unavailable("create sqlite dir", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, unavailable("open sqlite", err)
	}

	// WAL lets a view read while a scheduled sync writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, unavailable("set WAL mode", err)
	}

	s := &SQLiteStore{db: db, path: dbPath}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite store opened")
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS closing_prices (
			symbol TEXT NOT NULL,
			date   TEXT NOT NULL,
			price  TEXT NOT NULL,
			PRIMARY KEY (symbol, date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_closing_date ON closing_prices(date)`,
	}
	for _, st := range stmts {
		if _, err := s.db.Exec(st); err != nil {
			return fmt.Errorf("exec %q: %w", st[:40], err)
		}
	}
	return nil
}

func (s *SQLiteStore) Name() string { return "sqlite" }

func (s *SQLiteStore) Load(ctx context.Context) ([]model.PricePoint, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT symbol, date, price FROM closing_prices ORDER BY symbol, date`)
	if err != nil {
		return nil, unavailable("query closing_prices", err)
	}
	defer rows.Close()

	var points []model.PricePoint
	for rows.Next() {
		var symbol, date, price string
		if err := rows.Scan(&symbol, &date, &price); err != nil {
			return nil, fmt.Errorf("scan closing_prices: %w", err)
		}
		p, err := parseRow(symbol, date, price)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate closing_prices", err)
	}
	return points, nil
}

func (s *SQLiteStore) Append(ctx context.Context, rows []model.PricePoint) error {
	if len(rows) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("begin", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO closing_prices (symbol, date, price) VALUES (?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range rows {
		if _, err := stmt.ExecContext(ctx, p.Symbol, p.Date.Format(model.DateLayout), model.Round2(p.Price).StringFixed(model.PriceDecimals)); err != nil {
			return fmt.Errorf("insert %s: %w", p, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return unavailable("commit", err)
	}
	log.Debug().Int("rows", len(rows)).Msg("sqlite rows appended")
	return nil
}

func (s *SQLiteStore) Close() error {
	log.Info().Str("path", s.path).Msg("closing sqlite store")
	return s.db.Close()
}

func parseRow(symbol, date, price string) (model.PricePoint, error) {
	d, err := model.ParseDate(date)
	if err != nil {
		return model.PricePoint{}, fmt.Errorf("row %s: %w", symbol, err)
	}
	v, err := decimal.NewFromString(price)
	if err != nil {
		return model.PricePoint{}, fmt.Errorf("row %s %s: price %q: %w", symbol, date, price, err)
	}
	return model.PricePoint{Symbol: symbol, Date: d, Price: model.Round2(v)}, nil
}
