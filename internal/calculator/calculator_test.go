package calculator

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"PriceDash/internal/model"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestPercentChange_Sign(t *testing.T) {
	tests := []struct {
		first, last string
		want        string
	}{
		{"100", "90", "-10"},
		{"100", "110", "10"},
		{"100", "100", "0"},
		{"102.22", "108.89", "6.53"},
	}
	for _, tt := range tests {
		got, err := PercentChange(d(tt.first), d(tt.last))
		if err != nil {
			t.Fatalf("%s -> %s: unexpected error %v", tt.first, tt.last, err)
		}
		if !got.Equal(d(tt.want)) {
			t.Errorf("%s -> %s: expected %s, got %s", tt.first, tt.last, tt.want, got)
		}
	}
}

func TestPercentChange_ZeroBaseline(t *testing.T) {
	_, err := PercentChange(decimal.Zero, d("10"))
	if !errors.Is(err, model.ErrInvalidBaseline) {
		t.Fatalf("expected ErrInvalidBaseline, got %v", err)
	}
}

func TestChronological_IgnoresSliceOrder(t *testing.T) {
	day := func(n int) time.Time { return time.Date(2024, 1, n, 0, 0, 0, 0, time.UTC) }
	// Newest first, the way a table is shown.
	points := []model.PricePoint{
		model.NewPricePoint("AAPL", day(3), 90),
		model.NewPricePoint("AAPL", day(2), 95),
		model.NewPricePoint("AAPL", day(1), 100),
	}
	got, err := Chronological(points)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(d("-10")) {
		t.Errorf("expected -10, got %s", got)
	}

	if _, err := Chronological(nil); !errors.Is(err, model.ErrEmptyWindow) {
		t.Errorf("expected ErrEmptyWindow for no points, got %v", err)
	}
}

func TestRangeAndAverage(t *testing.T) {
	day := func(n int) time.Time { return time.Date(2024, 1, n, 0, 0, 0, 0, time.UTC) }
	points := []model.PricePoint{
		model.NewPricePoint("MSFT", day(1), 10),
		model.NewPricePoint("MSFT", day(2), 30),
		model.NewPricePoint("MSFT", day(3), 20),
	}
	high, low, err := Range(points)
	if err != nil {
		t.Fatal(err)
	}
	if !high.Equal(d("30")) || !low.Equal(d("10")) {
		t.Errorf("expected 30/10, got %s/%s", high, low)
	}
	avg, err := Average(points)
	if err != nil {
		t.Fatal(err)
	}
	if !avg.Equal(d("20")) {
		t.Errorf("expected average 20, got %s", avg)
	}
	if _, _, err := Range(nil); err == nil {
		t.Error("expected error for empty range")
	}
}

func TestSMA_Errors(t *testing.T) {
	if _, err := SMA(nil, 0); err == nil {
		t.Error("expected error for zero period")
	}
	if _, err := SMA([]decimal.Decimal{d("1")}, 2); err == nil {
		t.Error("expected error for short input")
	}
}

func TestPosition(t *testing.T) {
	pos, err := Position(d("15"), d("20"), d("10"))
	if err != nil || pos != 0.5 {
		t.Errorf("expected 0.5, got %v (%v)", pos, err)
	}
	pos, _ = Position(d("25"), d("20"), d("10"))
	if pos != 1 {
		t.Errorf("expected clamp to 1, got %v", pos)
	}
	if _, err := Position(d("1"), d("1"), d("2")); err == nil {
		t.Error("expected error for inverted range")
	}
}
