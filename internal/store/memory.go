package store

import (
	"context"
	"sync"

	"PriceDash/internal/model"
	"PriceDash/internal/series"
)

// MemoryStore keeps the history in process memory. It backs the "memory"
// backend and stands in for an unreachable store. LoadErr and AppendErr
// force failures.
type MemoryStore struct {
	LoadErr   error
	AppendErr error

	mu      sync.Mutex
	rows    series.Series
	appends int
}

func NewMemoryStore(rows ...model.PricePoint) *MemoryStore {
	return &MemoryStore{rows: series.New(rows)}
}

func (m *MemoryStore) Name() string { return "memory" }

func (m *MemoryStore) Load(_ context.Context) ([]model.PricePoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return nil, unavailable("memory load", m.LoadErr)
	}
	out := make([]model.PricePoint, len(m.rows))
	copy(out, m.rows)
	return out, nil
}

func (m *MemoryStore) Append(_ context.Context, rows []model.PricePoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AppendErr != nil {
		return unavailable("memory append", m.AppendErr)
	}
	m.rows = series.Merge(m.rows, series.NewRows(m.rows, rows))
	m.appends++
	return nil
}

// Appends returns how many Append calls succeeded.
func (m *MemoryStore) Appends() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appends
}

func (m *MemoryStore) Close() error { return nil }
