package series

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"PriceDash/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func pt(symbol string, date time.Time, price string) model.PricePoint {
	return model.PricePoint{Symbol: symbol, Date: date, Price: decimal.RequireFromString(price)}
}

func equalPoints(t *testing.T, got, want []model.PricePoint) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d\n  got  %v\n  want %v", len(got), len(want), got, want)
	}
	for i := range got {
		if got[i].Symbol != want[i].Symbol || !got[i].Date.Equal(want[i].Date) || !got[i].Price.Equal(want[i].Price) {
			t.Errorf("row %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func assertNoDuplicates(t *testing.T, s Series) {
	t.Helper()
	seen := make(map[model.Key]bool)
	for _, p := range s {
		if seen[p.Key()] {
			t.Fatalf("duplicate pair %s %s", p.Symbol, p.Date.Format(model.DateLayout))
		}
		seen[p.Key()] = true
	}
}

// linearAAPL is AAPL from 2024-01-01 at 100.00 to 2024-01-10 at 110.00.
func linearAAPL() Series {
	var rows []model.PricePoint
	for n := 0; n < 10; n++ {
		price := decimal.NewFromInt(100).Add(decimal.NewFromInt(int64(n * 10)).Div(decimal.NewFromInt(9)))
		rows = append(rows, model.PricePoint{Symbol: "AAPL", Date: day(2024, 1, 1+n), Price: model.Round2(price)})
	}
	return New(rows)
}

func TestMerge_Idempotent(t *testing.T) {
	old := New([]model.PricePoint{
		pt("AAPL", day(2024, 1, 2), "185.50"),
		pt("MSFT", day(2024, 1, 2), "370.00"),
	})
	batch := []model.PricePoint{
		pt("AAPL", day(2024, 1, 3), "186.00"),
		pt("MSFT", day(2024, 1, 3), "371.25"),
		pt("AAPL", day(2024, 1, 2), "185.55"),
	}
	once := Merge(old, batch)
	twice := Merge(once, batch)
	equalPoints(t, twice, once)
}

func TestMerge_IncomingWinsAndSorted(t *testing.T) {
	old := New([]model.PricePoint{
		pt("MSFT", day(2024, 1, 2), "370.00"),
		pt("AAPL", day(2024, 1, 2), "185.50"),
	})
	merged := Merge(old, []model.PricePoint{
		pt("aapl", day(2024, 1, 1), "184.999"),
		pt("AAPL", day(2024, 1, 2), "185.55"),
	})
	equalPoints(t, merged, []model.PricePoint{
		pt("AAPL", day(2024, 1, 1), "185.00"),
		pt("AAPL", day(2024, 1, 2), "185.55"),
		pt("MSFT", day(2024, 1, 2), "370.00"),
	})
}

func TestMerge_NoDuplicatesAfterSequence(t *testing.T) {
	var s Series
	batches := [][]model.PricePoint{
		{pt("AAPL", day(2024, 1, 1), "1"), pt("AAPL", day(2024, 1, 2), "2")},
		{pt("AAPL", day(2024, 1, 2), "2.5"), pt("TSLA", day(2024, 1, 2), "3")},
		{pt("TSLA", day(2024, 1, 2), "3"), pt("TSLA", day(2024, 1, 2), "3.1"), pt("AAPL", day(2024, 1, 1), "1")},
	}
	for _, b := range batches {
		s = Merge(s, b)
		assertNoDuplicates(t, s)
	}
	if len(s) != 3 {
		t.Fatalf("expected 3 rows, got %d: %v", len(s), s)
	}
}

func TestNewRows_OnlyMissingPairs(t *testing.T) {
	old := New([]model.PricePoint{pt("AAPL", day(2024, 1, 2), "185.50")})
	rows := NewRows(old, []model.PricePoint{
		pt("AAPL", day(2024, 1, 2), "999"),
		pt("AAPL", day(2024, 1, 3), "186"),
		pt("AAPL", day(2024, 1, 3), "186.10"),
		pt("NFLX", day(2024, 1, 3), "480"),
	})
	equalPoints(t, rows, []model.PricePoint{
		pt("AAPL", day(2024, 1, 3), "186.10"),
		pt("NFLX", day(2024, 1, 3), "480.00"),
	})
	if got := NewRows(Merge(old, rows), rows); len(got) != 0 {
		t.Errorf("expected no new rows after merge, got %v", got)
	}
}

func TestLatestDate(t *testing.T) {
	s := linearAAPL()
	latest, ok := s.LatestDate("aapl")
	if !ok || !latest.Equal(day(2024, 1, 10)) {
		t.Errorf("expected 2024-01-10, got %v (%v)", latest, ok)
	}
	if _, ok := s.LatestDate("GOOG"); ok {
		t.Error("expected no latest date for GOOG")
	}
}

func TestComputeFetchWindow_Gap(t *testing.T) {
	s := New([]model.PricePoint{pt("AAPL", day(2024, 1, 5), "100")})

	w, ok := ComputeFetchWindow(s, []string{"AAPL"}, day(2024, 1, 10))
	if !ok {
		t.Fatal("expected a fetch window")
	}
	if !w.Start.Equal(day(2024, 1, 6)) || !w.End.Equal(day(2024, 1, 9)) {
		t.Errorf("expected 2024-01-06..2024-01-09, got %s", w)
	}
	if w.Days() != 4 {
		t.Errorf("expected 4 days, got %d", w.Days())
	}
}

func TestComputeFetchWindow_CurrentThroughYesterday(t *testing.T) {
	s := New([]model.PricePoint{pt("AAPL", day(2024, 1, 9), "100")})
	if w, ok := ComputeFetchWindow(s, []string{"AAPL"}, day(2024, 1, 10)); ok {
		t.Errorf("expected no fetch, got %s", w)
	}

	// Latest is the day before yesterday: exactly one day to fetch.
	s = New([]model.PricePoint{pt("AAPL", day(2024, 1, 8), "100")})
	w, ok := ComputeFetchWindow(s, []string{"AAPL"}, day(2024, 1, 10))
	if !ok || !w.Start.Equal(day(2024, 1, 9)) || !w.End.Equal(day(2024, 1, 9)) {
		t.Errorf("expected single day 2024-01-09, got %s (%v)", w, ok)
	}
}

func TestComputeFetchWindow_MinAcrossSymbols(t *testing.T) {
	s := New([]model.PricePoint{
		pt("AAPL", day(2024, 1, 8), "100"),
		pt("MSFT", day(2024, 1, 3), "100"),
	})
	w, ok := ComputeFetchWindow(s, []string{"AAPL", "MSFT"}, day(2024, 1, 10))
	if !ok || !w.Start.Equal(day(2024, 1, 4)) {
		t.Errorf("expected start 2024-01-04, got %s", w)
	}

	w, ok = ComputeFetchWindow(s, []string{"AAPL", "GOOG"}, day(2024, 1, 10))
	if !ok || !w.Start.Equal(day(2023, 1, 10)) || !w.End.Equal(day(2024, 1, 9)) {
		t.Errorf("expected default lookback 2023-01-10..2024-01-09, got %s", w)
	}

	if _, ok := ComputeFetchWindow(s, nil, day(2024, 1, 10)); ok {
		t.Error("expected no window without symbols")
	}
}

func TestComputeFetchWindow_IgnoresTimeOfDay(t *testing.T) {
	s := New([]model.PricePoint{pt("AAPL", day(2024, 1, 8), "100")})
	today := time.Date(2024, 1, 10, 23, 59, 0, 0, time.UTC)
	w, ok := ComputeFetchWindow(s, []string{"AAPL"}, today)
	if !ok || !w.End.Equal(day(2024, 1, 9)) {
		t.Errorf("expected end 2024-01-09, got %s", w)
	}
}

func TestWindowView_EndToEnd(t *testing.T) {
	w, err := WindowView(linearAAPL(), "AAPL", 7, day(2024, 1, 10))
	if err != nil {
		t.Fatal(err)
	}
	if w.Empty {
		t.Fatal("expected rows")
	}
	chart := w.Chart()
	if len(chart) != 7 {
		t.Fatalf("expected 7 rows, got %d: %v", len(chart), chart)
	}
	if !chart[0].Date.Equal(day(2024, 1, 3)) || !chart[6].Date.Equal(day(2024, 1, 9)) {
		t.Errorf("expected 2024-01-03..2024-01-09, got %s..%s",
			chart[0].Date.Format(model.DateLayout), chart[6].Date.Format(model.DateLayout))
	}
	if !chart[0].Price.Equal(decimal.RequireFromString("102.22")) || !chart[6].Price.Equal(decimal.RequireFromString("108.89")) {
		t.Errorf("unexpected boundary prices %s / %s", chart[0].Price, chart[6].Price)
	}
	change, err := w.PercentChange()
	if err != nil {
		t.Fatal(err)
	}
	if !change.Equal(decimal.RequireFromString("6.53")) {
		t.Errorf("expected +6.53%%, got %s", change)
	}

	table := w.Table()
	if !table[0].Date.Equal(day(2024, 1, 9)) || !table[6].Date.Equal(day(2024, 1, 3)) {
		t.Error("table should be newest first")
	}
	if !w.High.Equal(decimal.RequireFromString("108.89")) || !w.Low.Equal(decimal.RequireFromString("102.22")) {
		t.Errorf("unexpected high/low %s/%s", w.High, w.Low)
	}
	if w.Position != 1 {
		t.Errorf("latest close is the high, position = %v", w.Position)
	}
}

func TestWindowView_PercentChangeSign(t *testing.T) {
	tests := []struct {
		prices []string
		want   string
	}{
		{[]string{"100", "90"}, "-10"},
		{[]string{"100", "110"}, "10"},
	}
	for _, tt := range tests {
		s := New([]model.PricePoint{
			pt("AAPL", day(2024, 1, 1), tt.prices[0]),
			pt("AAPL", day(2024, 1, 2), tt.prices[1]),
		})
		w, err := WindowView(s, "AAPL", 7, day(2024, 1, 3))
		if err != nil {
			t.Fatal(err)
		}
		got, err := w.PercentChange()
		if err != nil {
			t.Fatal(err)
		}
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("%v: expected %s, got %s", tt.prices, tt.want, got)
		}
	}
}

func TestWindowView_EmptyIsNotZero(t *testing.T) {
	w, err := WindowView(linearAAPL(), "AAPL", 7, day(2025, 6, 1))
	if err != nil {
		t.Fatalf("empty window should not be an error, got %v", err)
	}
	if !w.Empty {
		t.Fatal("expected empty marker")
	}
	if _, err := w.PercentChange(); !errors.Is(err, model.ErrEmptyWindow) {
		t.Errorf("expected ErrEmptyWindow from PercentChange, got %v", err)
	}

	w, err = WindowView(linearAAPL(), "NFLX", 30, day(2024, 1, 10))
	if err != nil || !w.Empty {
		t.Errorf("expected empty window for unknown symbol, got %v / %v", w, err)
	}
}

func TestWindowView_ZeroBaseline(t *testing.T) {
	s := New([]model.PricePoint{
		pt("AAPL", day(2024, 1, 1), "0"),
		pt("AAPL", day(2024, 1, 2), "5"),
	})
	w, err := WindowView(s, "AAPL", 7, day(2024, 1, 3))
	if !errors.Is(err, model.ErrInvalidBaseline) {
		t.Fatalf("expected ErrInvalidBaseline, got %v", err)
	}
	if len(w.Rows) != 2 {
		t.Errorf("rows should still be returned, got %d", len(w.Rows))
	}
	if _, err := w.PercentChange(); !errors.Is(err, model.ErrInvalidBaseline) {
		t.Errorf("expected ErrInvalidBaseline from PercentChange, got %v", err)
	}
}

func TestView_Periods(t *testing.T) {
	s := linearAAPL()
	if _, err := View(s, "AAPL", model.Period("2W"), day(2024, 1, 10)); err == nil {
		t.Error("expected error for unknown period")
	}
	w, err := View(s, "AAPL", model.Period1M, day(2024, 1, 10))
	if err != nil {
		t.Fatal(err)
	}
	if len(w.Rows) != 9 {
		t.Errorf("expected 9 rows before 2024-01-10, got %d", len(w.Rows))
	}
	if _, err := WindowView(s, "AAPL", 0, day(2024, 1, 10)); err == nil {
		t.Error("expected error for zero-day period")
	}
}

func TestPivotMeltRoundTrip(t *testing.T) {
	points := []model.PricePoint{
		pt("AAPL", day(2024, 1, 2), "185.50"),
		pt("AAPL", day(2024, 1, 3), "186.00"),
		pt("MSFT", day(2024, 1, 2), "370.00"),
		pt("MSFT", day(2024, 1, 4), "372.10"),
		pt("TSLA", day(2024, 1, 3), "240.00"),
	}
	wide := Pivot(points)
	if len(wide.Rows) != 3 || len(wide.Symbols) != 3 {
		t.Fatalf("unexpected shape %d rows x %d symbols", len(wide.Rows), len(wide.Symbols))
	}
	if _, ok := wide.Rows[0].Prices["TSLA"]; ok {
		t.Error("TSLA should be missing on 2024-01-02")
	}

	again := Pivot(Melt(wide))
	if strings.Join(again.Symbols, ",") != strings.Join(wide.Symbols, ",") {
		t.Fatalf("symbols differ: %v vs %v", again.Symbols, wide.Symbols)
	}
	if len(again.Rows) != len(wide.Rows) {
		t.Fatalf("row count differs: %d vs %d", len(again.Rows), len(wide.Rows))
	}
	for i := range wide.Rows {
		a, b := again.Rows[i], wide.Rows[i]
		if !a.Date.Equal(b.Date) || len(a.Prices) != len(b.Prices) {
			t.Fatalf("row %d differs", i)
		}
		for sym, p := range b.Prices {
			if !a.Prices[sym].Equal(p) {
				t.Errorf("row %d %s: %s vs %s", i, sym, a.Prices[sym], p)
			}
		}
	}

	equalPoints(t, Melt(wide), New(points))
}

func TestPivotMeltNormalizesEmptyRowsAndColumnOrder(t *testing.T) {
	in := "date,MSFT,AAPL\n2024-01-02,370.00,185.50\n2024-01-03,,\n2024-01-04,372.10,\n"
	wide, err := ReadWideCSV(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(wide.Rows) != 3 || strings.Join(wide.Symbols, ",") != "MSFT,AAPL" {
		t.Fatalf("read %d rows, symbols %v", len(wide.Rows), wide.Symbols)
	}

	norm := Pivot(Melt(wide))
	if strings.Join(norm.Symbols, ",") != "AAPL,MSFT" {
		t.Errorf("symbols = %v, want sorted", norm.Symbols)
	}
	if len(norm.Rows) != 2 || !norm.Rows[1].Date.Equal(day(2024, 1, 4)) {
		t.Fatalf("rows = %v, want 2024-01-02 and 2024-01-04", norm.Rows)
	}

	again := Pivot(Melt(norm))
	if strings.Join(again.Symbols, ",") != strings.Join(norm.Symbols, ",") || len(again.Rows) != len(norm.Rows) {
		t.Errorf("normalized table changed on a second round trip")
	}
	equalPoints(t, Melt(again), Melt(wide))
}

func TestReadCSV_RejectsNegativePrice(t *testing.T) {
	_, err := ReadLongCSV(strings.NewReader("date,symbol,price\n2024-01-02,AAPL,-5.25\n"))
	if !errors.Is(err, model.ErrNegativePrice) {
		t.Errorf("long csv err = %v, want ErrNegativePrice", err)
	}
	_, err = ReadWideCSV(strings.NewReader("date,AAPL\n2024-01-02,-5.25\n"))
	if !errors.Is(err, model.ErrNegativePrice) {
		t.Errorf("wide csv err = %v, want ErrNegativePrice", err)
	}
	if _, err := ReadLongCSV(strings.NewReader("date,symbol,price\n2024-01-02,AAPL,0\n")); err != nil {
		t.Errorf("zero price rejected: %v", err)
	}
}

func TestWideCSVRoundTrip(t *testing.T) {
	in := "date,AAPL,MSFT\n2022-01-03 00:00:00,182.01,334.75\n2022-01-04,179.70,\n"
	wide, err := ReadWideCSV(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	points := Melt(wide)
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}

	var buf bytes.Buffer
	if err := WriteWideCSV(&buf, Pivot(points)); err != nil {
		t.Fatal(err)
	}
	want := "date,AAPL,MSFT\n2022-01-03,182.01,334.75\n2022-01-04,179.70,\n"
	if buf.String() != want {
		t.Errorf("unexpected output:\n%s\nwant:\n%s", buf.String(), want)
	}

	if _, err := ReadWideCSV(strings.NewReader("AAPL,MSFT\n1,2\n")); err == nil {
		t.Error("expected error without date column")
	}
}

func TestLongCSVRoundTrip(t *testing.T) {
	points := New([]model.PricePoint{
		pt("AAPL", day(2024, 1, 2), "185.5"),
		pt("NFLX", day(2024, 1, 2), "480"),
	})
	var buf bytes.Buffer
	if err := WriteLongCSV(&buf, points); err != nil {
		t.Fatal(err)
	}
	got, err := ReadLongCSV(&buf)
	if err != nil {
		t.Fatal(err)
	}
	equalPoints(t, got, points)

	// Column order follows the header; NaN rows are skipped.
	got, err = ReadLongCSV(strings.NewReader("symbol,price,date\ngoog,NaN,2024-01-02\ngoog,140.123,2024-01-03\n"))
	if err != nil {
		t.Fatal(err)
	}
	equalPoints(t, got, []model.PricePoint{pt("GOOG", day(2024, 1, 3), "140.12")})
}

func TestSummarize(t *testing.T) {
	s := New(append(linearAAPL(),
		pt("TSLA", day(2024, 1, 2), "248.42"),
		pt("TSLA", day(2024, 1, 3), "238.45"),
		pt("TSLA", day(2024, 1, 4), "237.93"),
	))
	sums := Summarize(s)
	if len(sums) != 2 || sums[0].Symbol != "AAPL" || sums[1].Symbol != "TSLA" {
		t.Fatalf("unexpected summaries %+v", sums)
	}
	aapl := sums[0]
	if aapl.Rows != 10 || !aapl.Change.Equal(decimal.RequireFromString("10")) {
		t.Errorf("AAPL rows %d change %s", aapl.Rows, aapl.Change)
	}
	tsla := sums[1]
	if !tsla.High.Equal(decimal.RequireFromString("248.42")) || !tsla.Low.Equal(decimal.RequireFromString("237.93")) {
		t.Errorf("TSLA high/low %s/%s", tsla.High, tsla.Low)
	}
	if !tsla.Change.Equal(decimal.RequireFromString("-4.22")) {
		t.Errorf("TSLA change %s, want -4.22", tsla.Change)
	}
}
