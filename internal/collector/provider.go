package collector

import (
	"context"
	"time"

	"PriceDash/internal/model"
)

// Provider is a market-data source.
type Provider interface {
	// GetQuote returns live quotes keyed by symbol. Symbols the provider does
	// not know are left out of the map.
	GetQuote(ctx context.Context, symbols []string) (map[string]model.Quote, error)
	// GetHistory returns daily closes for symbol within [start, end], both inclusive.
	GetHistory(ctx context.Context, symbol string, start, end time.Time) ([]model.PricePoint, error)
	Name() string
}
