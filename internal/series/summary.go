package series

import (
	"time"

	"github.com/shopspring/decimal"

	"PriceDash/internal/calculator"
)

// Summary describes one symbol's whole history.
type Summary struct {
	Symbol    string
	Rows      int
	FirstDate time.Time
	LastDate  time.Time
	First     decimal.Decimal
	Last      decimal.Decimal
	Change    decimal.Decimal
	ChangeErr error
	High      decimal.Decimal
	Low       decimal.Decimal
}

// Summarize returns one Summary per symbol, sorted by symbol.
func Summarize(s Series) []Summary {
	s = New(s)
	var out []Summary
	for _, symbol := range s.Symbols() {
		rows := s.For(symbol)
		sum := Summary{
			Symbol:    symbol,
			Rows:      len(rows),
			FirstDate: rows[0].Date,
			LastDate:  rows[len(rows)-1].Date,
			First:     rows[0].Price,
			Last:      rows[len(rows)-1].Price,
		}
		sum.High, sum.Low, _ = calculator.Range(rows)
		sum.Change, sum.ChangeErr = calculator.PercentChange(sum.First, sum.Last)
		out = append(out, sum)
	}
	return out
}
