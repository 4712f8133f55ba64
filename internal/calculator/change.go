package calculator

import (
	"github.com/shopspring/decimal"

	"PriceDash/internal/model"
)

var hundred = decimal.NewFromInt(100)

// PercentChange returns (last - first) / first * 100 rounded to two places.
// A zero baseline is rejected instead of producing an infinity.
func PercentChange(first, last decimal.Decimal) (decimal.Decimal, error) {
	if first.IsZero() {
		return decimal.Zero, model.ErrInvalidBaseline
	}
	return model.Round2(last.Sub(first).Div(first).Mul(hundred)), nil
}

// Chronological returns the percent change between the earliest and latest
// point by date, whatever order the slice is in.
func Chronological(points []model.PricePoint) (decimal.Decimal, error) {
	if len(points) == 0 {
		return decimal.Zero, model.ErrEmptyWindow
	}
	first, last := points[0], points[0]
	for _, p := range points[1:] {
		if p.Date.Before(first.Date) {
			first = p
		}
		if p.Date.After(last.Date) {
			last = p
		}
	}
	return PercentChange(first.Price, last.Price)
}
