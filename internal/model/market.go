package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PriceDecimals is the number of decimal places every stored price is rounded to.
const PriceDecimals = 2

// DateLayout is the calendar-date format used in files and output.
const DateLayout = "2006-01-02"

// PricePoint is one closing price for a symbol on a calendar day.
type PricePoint struct {
	Symbol string          `json:"symbol"`
	Date   time.Time       `json:"date"`
	Price  decimal.Decimal `json:"price"`
}

// Key identifies a PricePoint within a series.
type Key struct {
	Symbol string
	Day    int64 // unix seconds of the UTC midnight
}

// NewPricePoint normalizes the symbol, truncates the date to a day and rounds the price.
func NewPricePoint(symbol string, date time.Time, price float64) PricePoint {
	return PricePoint{
		Symbol: NormalizeSymbol(symbol),
		Date:   Day(date),
		Price:  Round2(decimal.NewFromFloat(price)),
	}
}

// Validate rejects points that may not enter a series.
func (p PricePoint) Validate() error {
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: %s %s %s", ErrNegativePrice, p.Symbol, p.Date.Format(DateLayout), p.Price)
	}
	return nil
}

// Key returns the (symbol, date) identity of the point.
func (p PricePoint) Key() Key {
	return Key{Symbol: p.Symbol, Day: Day(p.Date).Unix()}
}

// Less orders points by symbol, then date.
func (p PricePoint) Less(o PricePoint) bool {
	if p.Symbol != o.Symbol {
		return p.Symbol < o.Symbol
	}
	return p.Date.Before(o.Date)
}

func (p PricePoint) String() string {
	return fmt.Sprintf("%s %s %s", p.Date.Format(DateLayout), p.Symbol, p.Price.StringFixed(PriceDecimals))
}

// Round2 rounds d half away from zero to PriceDecimals places.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(PriceDecimals)
}

// Day truncates t to its calendar day at UTC midnight. The calendar day of t
// in its own location is kept.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate accepts "2006-01-02" and the "2006-01-02 15:04:05" form pandas writes for date indexes.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{DateLayout, "2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("parse date %q", s)
}

// NormalizeSymbol upper-cases and trims a ticker code.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// MarketState is the trading session reported by the quote provider.
type MarketState string

const (
	MarketRegular  MarketState = "REGULAR"
	MarketPre      MarketState = "PRE"
	MarketPrePre   MarketState = "PREPRE"
	MarketPost     MarketState = "POST"
	MarketPostPost MarketState = "POSTPOST"
	MarketClosed   MarketState = "CLOSED"
)

// Quote is a live summary for one symbol.
type Quote struct {
	Symbol      string          `json:"symbol"`
	DisplayName string          `json:"display_name"`
	LongName    string          `json:"long_name"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
	MarketState MarketState     `json:"market_state"`
	SessionTime time.Time       `json:"session_time"`
}

// SessionTimes holds the per-session timestamps a provider reports.
type SessionTimes struct {
	Regular time.Time
	Pre     time.Time
	Post    time.Time
}

// Pick returns the timestamp matching state, falling back to now when the
// state is unknown or the matching timestamp is missing.
func (st SessionTimes) Pick(state MarketState, now time.Time) time.Time {
	var t time.Time
	switch state {
	case MarketRegular:
		t = st.Regular
	case MarketPre:
		t = st.Pre
	case MarketPrePre, MarketPost, MarketPostPost, MarketClosed:
		t = st.Post
	}
	if t.IsZero() {
		return now
	}
	return t
}
