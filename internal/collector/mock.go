package collector

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"PriceDash/internal/model"
)

// MockProvider returns controllable fixed data for development and testing.
type MockProvider struct {
	Price   float64                       // base price for generated series
	History map[string][]model.PricePoint // fixed rows per symbol, overrides generation
	Quotes  map[string]model.Quote        // fixed quotes per symbol
	Errors  map[string]error              // per-symbol failures
	Err     error                         // fails every call when set

	mu           sync.Mutex
	historyCalls int
	quoteCalls   int
}

func (m *MockProvider) Name() string { return "mock" }

// HistoryCalls returns how many GetHistory calls were made.
func (m *MockProvider) HistoryCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.historyCalls
}

// QuoteCalls returns how many GetQuote calls were made.
func (m *MockProvider) QuoteCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.quoteCalls
}

func (m *MockProvider) GetHistory(_ context.Context, symbol string, start, end time.Time) ([]model.PricePoint, error) {
	m.mu.Lock()
	m.historyCalls++
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	if err, ok := m.Errors[symbol]; ok {
		return nil, err
	}
	start, end = model.Day(start), model.Day(end)
	if rows, ok := m.History[symbol]; ok {
		var out []model.PricePoint
		for _, p := range rows {
			if p.Date.Before(start) || p.Date.After(end) {
				continue
			}
			out = append(out, p)
		}
		return out, nil
	}
	return generateMockPoints(symbol, m.Price, start, end), nil
}

func (m *MockProvider) GetQuote(_ context.Context, symbols []string) (map[string]model.Quote, error) {
	m.mu.Lock()
	m.quoteCalls++
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	out := make(map[string]model.Quote, len(symbols))
	for _, s := range symbols {
		if _, failed := m.Errors[s]; failed {
			continue
		}
		if q, ok := m.Quotes[s]; ok {
			out[s] = q
			continue
		}
		out[s] = model.Quote{
			Symbol:      s,
			DisplayName: s,
			Price:       model.Round2(decimal.NewFromFloat(m.Price)),
			Currency:    "USD",
			MarketState: model.MarketClosed,
			SessionTime: time.Now(),
		}
	}
	return out, nil
}

// generateMockPoints yields one weekday close per day, drifting 0.1% a day.
func generateMockPoints(symbol string, basePrice float64, start, end time.Time) []model.PricePoint {
	var points []model.PricePoint
	i := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		points = append(points, model.NewPricePoint(symbol, d, basePrice*(1+float64(i)*0.001)))
		i++
	}
	return points
}
