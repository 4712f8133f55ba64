package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/lib/pq"
	"github.com/phuslu/log"
	"github.com/shopspring/decimal"

	"PriceDash/internal/model"
)

// PostgresStore keeps the history in a shared PostgreSQL table. The schema
// is created on first use so an unreachable server surfaces as
// model.ErrStoreUnavailable from Load or Append rather than at startup.
type PostgresStore struct {
	db *sql.DB

	mu          sync.Mutex
	initialized bool
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, unavailable("open postgres", err)
	}
	db.SetMaxOpenConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Name() string { return "postgres" }

// InitSchema creates the closing_prices table if needed.
func (s *PostgresStore) InitSchema(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return nil
	}
	query := `
	CREATE TABLE IF NOT EXISTS closing_prices (
		symbol VARCHAR(20) NOT NULL,
		date DATE NOT NULL,
		price NUMERIC(18,2) NOT NULL,
		PRIMARY KEY (symbol, date)
	);
	CREATE INDEX IF NOT EXISTS idx_closing_prices_date ON closing_prices(date);
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return unavailable("init schema", err)
	}
	s.initialized = true
	log.Info().Msg("postgres schema ready")
	return nil
}

func (s *PostgresStore) Load(ctx context.Context) ([]model.PricePoint, error) {
	if err := s.InitSchema(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT symbol, date, price::text FROM closing_prices ORDER BY symbol, date`)
	if err != nil {
		return nil, unavailable("query closing_prices", err)
	}
	defer rows.Close()

	var points []model.PricePoint
	for rows.Next() {
		var (
			symbol, price string
			date          time.Time
		)
		if err := rows.Scan(&symbol, &date, &price); err != nil {
			return nil, fmt.Errorf("scan closing_prices: %w", err)
		}
		v, err := decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("row %s: price %q: %w", symbol, price, err)
		}
		points = append(points, model.PricePoint{Symbol: symbol, Date: model.Day(date), Price: v})
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate closing_prices", err)
	}
	return points, nil
}

func (s *PostgresStore) Append(ctx context.Context, rows []model.PricePoint) error {
	if len(rows) == 0 {
		return nil
	}
	if err := s.InitSchema(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("begin", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO closing_prices (symbol, date, price) VALUES ($1, $2, $3)
		ON CONFLICT (symbol, date) DO NOTHING`)
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
	log.Debug().Int("rows", len(rows)).Msg("postgres rows appended")
	return nil
}

func (s *PostgresStore) Close() error { return s.db.Close() }
