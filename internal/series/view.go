package series

import (
	"fmt"
	"sort"
	"time"

	"PriceDash/internal/calculator"
	"PriceDash/internal/model"
)

// WindowView filters s to symbol over [asOf-periodDays, asOf). The end is
// exclusive because asOf has no confirmed close yet.
//
// An empty match is not an error: the window comes back with Empty set.
// A zero earliest price returns the populated window together with
// model.ErrInvalidBaseline.
func WindowView(s Series, symbol string, periodDays int, asOf time.Time) (model.DisplayWindow, error) {
	symbol = model.NormalizeSymbol(symbol)
	end := model.Day(asOf)
	start := end.AddDate(0, 0, -periodDays)
	w := model.DisplayWindow{Symbol: symbol, Days: periodDays, Start: start, End: end}
	if periodDays <= 0 {
		return w, fmt.Errorf("period must be positive, got %d days", periodDays)
	}

	var rows []model.PricePoint
	for _, p := range s {
		if p.Symbol != symbol || p.Date.Before(start) || !p.Date.Before(end) {
			continue
		}
		rows = append(rows, p)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })
	if len(rows) == 0 {
		w.Empty = true
		return w, nil
	}
	w.Rows = rows

	// Both only fail on empty input, which is excluded above.
	w.High, w.Low, _ = calculator.Range(rows)
	w.Average, _ = calculator.Average(rows)
	w.Position, _ = calculator.Position(rows[len(rows)-1].Price, w.High, w.Low)

	change, err := calculator.Chronological(rows)
	if err != nil {
		return w, fmt.Errorf("%s %s: %w", symbol, start.Format(model.DateLayout), err)
	}
	w.Change = change
	return w, nil
}

// View is WindowView for one of the fixed display periods.
func View(s Series, symbol string, period model.Period, asOf time.Time) (model.DisplayWindow, error) {
	if period.Days() == 0 {
		return model.DisplayWindow{Symbol: model.NormalizeSymbol(symbol)}, fmt.Errorf("unknown period %q", period)
	}
	return WindowView(s, symbol, period.Days(), asOf)
}
