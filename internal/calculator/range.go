package calculator

import (
	"errors"

	"github.com/shopspring/decimal"

	"PriceDash/internal/model"
)

// Range scans the points and returns the highest and lowest price.
func Range(points []model.PricePoint) (high, low decimal.Decimal, err error) {
	if len(points) == 0 {
		return decimal.Zero, decimal.Zero, errors.New("no points provided")
	}
	high, low = points[0].Price, points[0].Price
	for _, p := range points[1:] {
		if p.Price.GreaterThan(high) {
			high = p.Price
		}
		if p.Price.LessThan(low) {
			low = p.Price
		}
	}
	return high, low, nil
}

// Position returns where current sits within [low, high], clamped to 0..1.
// A flat range yields 0.5.
func Position(current, high, low decimal.Decimal) (float64, error) {
	if high.Equal(low) {
		return 0.5, nil
	}
	if high.LessThan(low) {
		return 0, errors.New("high must be >= low")
	}
	pos := current.Sub(low).Div(high.Sub(low)).InexactFloat64()
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos, nil
}
