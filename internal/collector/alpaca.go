package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/shopspring/decimal"

	"PriceDash/internal/model"
)

// AlpacaProvider implements Provider on the Alpaca market-data API.
type AlpacaProvider struct {
	client *marketdata.Client
	feed   marketdata.Feed
}

// NewAlpacaProvider creates a provider with the given credentials. An empty
// dataURL keeps the SDK default endpoint.
func NewAlpacaProvider(apiKey, apiSecret, dataURL string) *AlpacaProvider {
	opts := marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	if dataURL != "" {
		opts.BaseURL = dataURL
	}
	return &AlpacaProvider{client: marketdata.NewClient(opts), feed: marketdata.IEX}
}

func (a *AlpacaProvider) Name() string { return "alpaca" }

// GetHistory fetches daily bars. The SDK end bound is exclusive, so one day
// is added to keep end inclusive.
func (a *AlpacaProvider) GetHistory(ctx context.Context, symbol string, start, end time.Time) ([]model.PricePoint, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	start, end = model.Day(start), model.Day(end)
	bars, err := a.client.GetBars(symbol, marketdata.GetBarsRequest{
		TimeFrame: marketdata.OneDay,
		Start:     start,
		End:       end.AddDate(0, 0, 1),
		Feed:      a.feed,
	})
	if err != nil {
		return nil, fmt.Errorf("alpaca GetBars %s: %w", symbol, err)
	}

	points := make([]model.PricePoint, 0, len(bars))
	for _, b := range bars {
		date := model.Day(b.Timestamp)
		if date.Before(start) || date.After(end) {
			continue
		}
		points = append(points, model.NewPricePoint(symbol, date, b.Close))
	}
	return points, nil
}

// GetQuote reads the latest trade from each symbol's snapshot. Alpaca has no
// market-state field, so the session time is the trade time.
func (a *AlpacaProvider) GetQuote(ctx context.Context, symbols []string) (map[string]model.Quote, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	snaps, err := a.client.GetSnapshots(symbols, marketdata.GetSnapshotRequest{Feed: a.feed})
	if err != nil {
		return nil, fmt.Errorf("alpaca GetSnapshots: %w", err)
	}

	quotes := make(map[string]model.Quote, len(snaps))
	for symbol, snap := range snaps {
		if snap == nil || snap.LatestTrade == nil {
			continue
		}
		symbol = model.NormalizeSymbol(symbol)
		quotes[symbol] = model.Quote{
			Symbol:      symbol,
			DisplayName: symbol,
			Price:       model.Round2(decimal.NewFromFloat(snap.LatestTrade.Price)),
			Currency:    "USD",
			SessionTime: snap.LatestTrade.Timestamp,
		}
	}
	return quotes, nil
}
