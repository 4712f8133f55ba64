package collector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/phuslu/log"

	"PriceDash/internal/model"
)

// HistoryResult is the outcome of one batch history fetch.
type HistoryResult struct {
	Rows     []model.PricePoint
	Failures map[string]error // per-symbol fetch errors
	Err      error            // set only when every symbol failed
}

// Collector fetches price history and quotes from a Provider, symbol by
// symbol, retrying each call once.
type Collector struct {
	Provider Provider
	Attempts int
	Backoff  time.Duration
}

// NewCollector creates a Collector with one retry and a one second backoff.
func NewCollector(p Provider) *Collector {
	return &Collector{Provider: p, Attempts: 2, Backoff: time.Second}
}

// FetchHistory pulls closes for every symbol within w. One failing symbol
// never aborts the others.
func (c *Collector) FetchHistory(ctx context.Context, symbols []string, w model.FetchWindow) HistoryResult {
	res := HistoryResult{Failures: make(map[string]error)}
	if len(symbols) == 0 {
		return res
	}

	for _, symbol := range symbols {
		var rows []model.PricePoint
		err := Retry(ctx, c.Attempts, c.Backoff, "history "+symbol, func() error {
			var err error
			rows, err = c.Provider.GetHistory(ctx, symbol, w.Start, w.End)
			return err
		})
		if err != nil {
			log.Warn().Str("provider", c.Provider.Name()).Str("symbol", symbol).Str("window", w.String()).Err(err).Msg("history fetch failed")
			res.Failures[symbol] = err
			continue
		}
		points := make([]model.PricePoint, 0, len(rows))
		for _, p := range rows {
			point := model.PricePoint{
				Symbol: model.NormalizeSymbol(symbol),
				Date:   model.Day(p.Date),
				Price:  model.Round2(p.Price),
			}
			if err = point.Validate(); err != nil {
				break
			}
			points = append(points, point)
		}
		if err != nil {
			log.Warn().Str("provider", c.Provider.Name()).Str("symbol", symbol).Err(err).Msg("history rejected")
			res.Failures[symbol] = err
			continue
		}
		res.Rows = append(res.Rows, points...)
		log.Debug().Str("symbol", symbol).Int("rows", len(rows)).Msg("history fetched")
	}

	if len(res.Failures) == len(symbols) {
		errs := make([]error, 0, len(res.Failures))
		for _, s := range sortedKeys(res.Failures) {
			errs = append(errs, fmt.Errorf("%s: %w", s, res.Failures[s]))
		}
		res.Err = fmt.Errorf("%w: %w", model.ErrProviderUnavailable, errors.Join(errs...))
	}
	return res
}

// FetchQuotes returns live quotes for symbols. A failed call is wrapped in
// model.ErrProviderUnavailable.
func (c *Collector) FetchQuotes(ctx context.Context, symbols []string) (map[string]model.Quote, error) {
	var quotes map[string]model.Quote
	err := Retry(ctx, c.Attempts, c.Backoff, "quote", func() error {
		var err error
		quotes, err = c.Provider.GetQuote(ctx, symbols)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrProviderUnavailable, err)
	}
	return quotes, nil
}

func sortedKeys(m map[string]error) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
