package series

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"PriceDash/internal/model"
)

// WideTable is the pivoted form of a series: one row per date, one column per
// symbol. A symbol missing from a row's Prices has no close that day.
type WideTable struct {
	Symbols []string
	Rows    []WideRow
}

// WideRow is one date of a WideTable.
type WideRow struct {
	Date   time.Time
	Prices map[string]decimal.Decimal
}

// Pivot turns long-form points into a WideTable with sorted symbol columns and
// ascending dates. Duplicate pairs keep the last value.
func Pivot(points []model.PricePoint) WideTable {
	byDate := make(map[int64]*WideRow)
	symbols := make(map[string]bool)
	for _, p := range points {
		p = canonical(p)
		k := p.Date.Unix()
		row, ok := byDate[k]
		if !ok {
			row = &WideRow{Date: p.Date, Prices: make(map[string]decimal.Decimal)}
			byDate[k] = row
		}
		row.Prices[p.Symbol] = p.Price
		symbols[p.Symbol] = true
	}

	t := WideTable{}
	for sym := range symbols {
		t.Symbols = append(t.Symbols, sym)
	}
	sort.Strings(t.Symbols)
	for _, row := range byDate {
		t.Rows = append(t.Rows, *row)
	}
	sort.Slice(t.Rows, func(i, j int) bool { return t.Rows[i].Date.Before(t.Rows[j].Date) })
	return t
}

// Melt turns a WideTable back into long-form points sorted by (symbol, date).
// Missing cells produce no point, so a date row with every cell missing has
// no long-form representation. Pivot(Melt(t)) therefore drops such rows and
// sorts the symbol columns; it is the identity on tables Pivot produced.
func Melt(t WideTable) []model.PricePoint {
	var out []model.PricePoint
	for _, sym := range t.Symbols {
		for _, row := range t.Rows {
			price, ok := row.Prices[sym]
			if !ok {
				continue
			}
			out = append(out, canonical(model.PricePoint{Symbol: sym, Date: row.Date, Price: price}))
		}
	}
	sortPoints(out)
	return out
}
