package series

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"PriceDash/internal/model"
)

// ReadWideCSV reads a "date,SYM1,SYM2,..." file. Empty, "NaN" and "-" cells
// are treated as missing.
func ReadWideCSV(r io.Reader) (WideTable, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return WideTable{}, fmt.Errorf("read header: %w", err)
	}
	dateCol := -1
	var t WideTable
	cols := make(map[int]string)
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), "date") {
			dateCol = i
			continue
		}
		sym := model.NormalizeSymbol(h)
		if sym == "" {
			continue
		}
		cols[i] = sym
		t.Symbols = append(t.Symbols, sym)
	}
	if dateCol < 0 {
		return WideTable{}, fmt.Errorf("wide csv: no date column in header %v", header)
	}

	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return WideTable{}, fmt.Errorf("line %d: %w", line, err)
		}
		date, err := model.ParseDate(rec[dateCol])
		if err != nil {
			return WideTable{}, fmt.Errorf("line %d: %w", line, err)
		}
		row := WideRow{Date: date, Prices: make(map[string]decimal.Decimal)}
		for i, sym := range cols {
			if i >= len(rec) || isMissing(rec[i]) {
				continue
			}
			price, err := decimal.NewFromString(strings.TrimSpace(rec[i]))
			if err != nil {
				return WideTable{}, fmt.Errorf("line %d, %s: %w", line, sym, err)
			}
			if price.IsNegative() {
				return WideTable{}, fmt.Errorf("line %d, %s: %w: %s", line, sym, model.ErrNegativePrice, price)
			}
			row.Prices[sym] = model.Round2(price)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// WriteWideCSV writes t with a leading date column. Missing cells are empty.
func WriteWideCSV(w io.Writer, t WideTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"date"}, t.Symbols...)); err != nil {
		return err
	}
	for _, row := range t.Rows {
		rec := make([]string, 0, len(t.Symbols)+1)
		rec = append(rec, row.Date.Format(model.DateLayout))
		for _, sym := range t.Symbols {
			if p, ok := row.Prices[sym]; ok {
				rec = append(rec, p.StringFixed(model.PriceDecimals))
			} else {
				rec = append(rec, "")
			}
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadLongCSV reads a file with date, symbol and price columns in any order.
func ReadLongCSV(r io.Reader) ([]model.PricePoint, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := map[string]int{"date": -1, "symbol": -1, "price": -1}
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if _, ok := idx[name]; ok {
			idx[name] = i
		}
	}
	for name, i := range idx {
		if i < 0 {
			return nil, fmt.Errorf("long csv: missing %q column", name)
		}
	}

	var out []model.PricePoint
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if isMissing(rec[idx["price"]]) {
			continue
		}
		date, err := model.ParseDate(rec[idx["date"]])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		price, err := decimal.NewFromString(strings.TrimSpace(rec[idx["price"]]))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		p := model.PricePoint{
			Symbol: model.NormalizeSymbol(rec[idx["symbol"]]),
			Date:   date,
			Price:  model.Round2(price),
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// WriteLongCSV writes points as date,symbol,price rows in the given order.
func WriteLongCSV(w io.Writer, points []model.PricePoint) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "symbol", "price"}); err != nil {
		return err
	}
	for _, p := range points {
		if err := cw.Write([]string{p.Date.Format(model.DateLayout), p.Symbol, p.Price.StringFixed(model.PriceDecimals)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func isMissing(cell string) bool {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "", "nan", "-", "null":
		return true
	}
	return false
}
