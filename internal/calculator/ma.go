package calculator

import (
	"errors"

	"github.com/shopspring/decimal"

	"PriceDash/internal/model"
)

// SMA computes the simple moving average of the last period prices.
func SMA(prices []decimal.Decimal, period int) (decimal.Decimal, error) {
	if period <= 0 {
		return decimal.Zero, errors.New("period must be positive")
	}
	if len(prices) < period {
		return decimal.Zero, errors.New("not enough data for SMA calculation")
	}
	sum := decimal.Zero
	for i := len(prices) - period; i < len(prices); i++ {
		sum = sum.Add(prices[i])
	}
	return model.Round2(sum.Div(decimal.NewFromInt(int64(period)))), nil
}

// Average returns the mean closing price of all points.
func Average(points []model.PricePoint) (decimal.Decimal, error) {
	return SMA(extractPrices(points), len(points))
}

func extractPrices(points []model.PricePoint) []decimal.Decimal {
	prices := make([]decimal.Decimal, len(points))
	for i, p := range points {
		prices[i] = p.Price
	}
	return prices
}
