package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Period is a trailing display period.
type Period string

const (
	Period1W Period = "1W"
	Period1M Period = "1M"
	Period3M Period = "3M"
	Period6M Period = "6M"
	Period1Y Period = "1Y"
)

var periodDays = map[Period]int{
	Period1W: 7,
	Period1M: 30,
	Period3M: 91,
	Period6M: 182,
	Period1Y: 365,
}

// Periods lists the supported periods from longest to shortest.
func Periods() []Period {
	return []Period{Period1Y, Period6M, Period3M, Period1M, Period1W}
}

// Days returns the period length in calendar days, or 0 for an unknown period.
func (p Period) Days() int { return periodDays[p] }

// ParsePeriod parses "1w", "3M", etc.
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := periodDays[p]; !ok {
		return "", fmt.Errorf("unknown period %q (want one of 1W, 1M, 3M, 6M, 1Y)", s)
	}
	return p, nil
}

// FetchWindow is an inclusive date range to request from the provider.
type FetchWindow struct {
	Start time.Time
	End   time.Time
}

// Days returns the number of calendar days covered, inclusive.
func (w FetchWindow) Days() int {
	return int(w.End.Sub(w.Start).Hours()/24) + 1
}

func (w FetchWindow) String() string {
	return w.Start.Format(DateLayout) + ".." + w.End.Format(DateLayout)
}

// DisplayWindow is the filtered view of one symbol over a trailing period.
// Rows are ascending by date; Start is inclusive and End exclusive.
type DisplayWindow struct {
	Symbol  string
	Days    int
	Start   time.Time
	End     time.Time
	Rows    []PricePoint
	Empty   bool
	Change  decimal.Decimal
	High    decimal.Decimal
	Low     decimal.Decimal
	Average decimal.Decimal
	// Position is where the latest close sits between Low (0) and High (1).
	Position float64
}

// Chart returns the rows in ascending date order.
func (w DisplayWindow) Chart() []PricePoint {
	out := make([]PricePoint, len(w.Rows))
	copy(out, w.Rows)
	return out
}

// Table returns the rows newest first.
func (w DisplayWindow) Table() []PricePoint {
	out := make([]PricePoint, len(w.Rows))
	for i, r := range w.Rows {
		out[len(w.Rows)-1-i] = r
	}
	return out
}

// PercentChange returns the change over the window, ErrEmptyWindow when there
// are no rows, and ErrInvalidBaseline when the earliest price is zero.
func (w DisplayWindow) PercentChange() (decimal.Decimal, error) {
	if w.Empty || len(w.Rows) == 0 {
		return decimal.Zero, ErrEmptyWindow
	}
	if w.Rows[0].Price.IsZero() {
		return decimal.Zero, ErrInvalidBaseline
	}
	return w.Change, nil
}
