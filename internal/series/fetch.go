package series

import (
	"time"

	"PriceDash/internal/model"
)

// DefaultLookbackYears is how far back a symbol with no history starts.
const DefaultLookbackYears = 1

// ComputeFetchWindow returns the single date range that covers every symbol's
// gap up to yesterday. Today is never requested because its close may not
// exist yet. ok is false when the store is already current.
func ComputeFetchWindow(s Series, symbols []string, today time.Time) (w model.FetchWindow, ok bool) {
	if len(symbols) == 0 {
		return model.FetchWindow{}, false
	}
	today = model.Day(today)
	end := today.AddDate(0, 0, -1)
	defaultStart := today.AddDate(-DefaultLookbackYears, 0, 0)

	var start time.Time
	for i, sym := range symbols {
		candidate := defaultStart
		if latest, found := s.LatestDate(sym); found {
			candidate = latest.AddDate(0, 0, 1)
		}
		if i == 0 || candidate.Before(start) {
			start = candidate
		}
	}
	if start.After(end) {
		return model.FetchWindow{}, false
	}
	return model.FetchWindow{Start: start, End: end}, true
}
