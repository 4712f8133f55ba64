package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/phuslu/log"
	"github.com/shopspring/decimal"

	"PriceDash/internal/model"
	"PriceDash/internal/series"
)

// ParquetStore keeps one Parquet file per symbol at
//
//	<DataDir>/closing/<SYMBOL>.parquet
type ParquetStore struct {
	DataDir string

	mu sync.Mutex
}

// NewParquetStore creates a new ParquetStore rooted at the given data directory.
func NewParquetStore(dataDir string) *ParquetStore {
	return &ParquetStore{DataDir: dataDir}
}

// PriceRecord is the Parquet schema for one closing price.
type PriceRecord struct {
	Symbol string  `parquet:"symbol"`
	Date   int64   `parquet:"date,timestamp(millisecond)"` // Unix ms of UTC midnight
	Price  float64 `parquet:"price"`
}

func (s *ParquetStore) Name() string { return "parquet" }

func (s *ParquetStore) dir() string { return filepath.Join(s.DataDir, "closing") }

func (s *ParquetStore) path(symbol string) string {
	return filepath.Join(s.dir(), strings.ToUpper(symbol)+".parquet")
}

func (s *ParquetStore) Load(_ context.Context) ([]model.PricePoint, error) {
	entries, err := os.ReadDir(s.dir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, unavailable("read parquet dir", err)
	}

	var points []model.PricePoint
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".parquet" {
			continue
		}
		records, err := parquet.ReadFile[PriceRecord](filepath.Join(s.dir(), e.Name()))
		if err != nil {
			return nil, unavailable("read "+e.Name(), err)
		}
		points = append(points, fromRecords(records)...)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Less(points[j]) })
	return points, nil
}

// Append rewrites each touched symbol's file with the rows it does not
// already hold. Other symbols' files are never rewritten.
func (s *ParquetStore) Append(_ context.Context, rows []model.PricePoint) error {
	if len(rows) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	groups := make(map[string][]model.PricePoint)
	for _, p := range rows {
		groups[p.Symbol] = append(groups[p.Symbol], p)
	}

	for symbol, incoming := range groups {
		path := s.path(symbol)
		records, err := parquet.ReadFile[PriceRecord](path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return unavailable("read "+path, err)
		}
		existing := series.New(fromRecords(records))
		merged := series.Merge(existing, series.NewRows(existing, incoming))

		if err := writeAtomic(path, toRecords(merged)); err != nil {
			return fmt.Errorf("writing prices for %s: %w", symbol, err)
		}
		log.Debug().Str("symbol", symbol).Int("rows", len(merged)).Msg("parquet file written")
	}
	return nil
}

func (s *ParquetStore) Close() error { return nil }

// writeAtomic writes records to a temp file and renames it over path, so a
// reader never sees a half-written file.
func writeAtomic(path string, records []PriceRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return unavailable("mkdir", err)
	}
	tmp := path + ".tmp"
	if err := parquet.WriteFile(tmp, records); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func fromRecords(records []PriceRecord) []model.PricePoint {
	points := make([]model.PricePoint, 0, len(records))
	for _, r := range records {
		points = append(points, model.PricePoint{
			Symbol: model.NormalizeSymbol(r.Symbol),
			Date:   model.Day(time.UnixMilli(r.Date).UTC()),
			Price:  model.Round2(decimal.NewFromFloat(r.Price)),
		})
	}
	return points
}

func toRecords(points []model.PricePoint) []PriceRecord {
	records := make([]PriceRecord, 0, len(points))
	for _, p := range points {
		records = append(records, PriceRecord{
			Symbol: p.Symbol,
			Date:   p.Date.UnixMilli(),
			Price:  p.Price.InexactFloat64(),
		})
	}
	return records
}
