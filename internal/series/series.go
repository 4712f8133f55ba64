// Package series holds the price-history reconciliation logic: which dates are
// missing, how fetched rows merge into the cached history, and how a display
// window is derived from it.
package series

import (
	"sort"
	"time"

	"PriceDash/internal/model"
)

// Series is a price history sorted by (symbol, date) with no duplicate pairs.
type Series []model.PricePoint

// New builds a reconciled Series from rows in any order. Later duplicates win.
func New(rows []model.PricePoint) Series {
	return Merge(nil, rows)
}

// LatestDate returns the most recent date held for symbol.
func (s Series) LatestDate(symbol string) (time.Time, bool) {
	symbol = model.NormalizeSymbol(symbol)
	var latest time.Time
	found := false
	for _, p := range s {
		if p.Symbol != symbol {
			continue
		}
		if !found || p.Date.After(latest) {
			latest = p.Date
			found = true
		}
	}
	return latest, found
}

// Symbols returns the distinct symbols in the series, sorted.
func (s Series) Symbols() []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range s {
		if !seen[p.Symbol] {
			seen[p.Symbol] = true
			out = append(out, p.Symbol)
		}
	}
	sort.Strings(out)
	return out
}

// For returns the rows of one symbol in date order.
func (s Series) For(symbol string) Series {
	symbol = model.NormalizeSymbol(symbol)
	var out Series
	for _, p := range s {
		if p.Symbol == symbol {
			out = append(out, p)
		}
	}
	sortPoints(out)
	return out
}

func sortPoints(points []model.PricePoint) {
	sort.SliceStable(points, func(i, j int) bool { return points[i].Less(points[j]) })
}
