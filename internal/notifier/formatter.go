package notifier

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"PriceDash/internal/model"
	"PriceDash/internal/pipeline"
)

// maxTableRows caps how many closes a chat message lists.
const maxTableRows = 10

// FormatView formats one interaction's display window.
func FormatView(res pipeline.Result) string {
	w := res.Window
	var b strings.Builder

	switch res.Status {
	case pipeline.StatusUnavailable:
		fmt.Fprintf(&b, "❌ <b>%s</b>: price history unavailable (store and provider unreachable)\n", w.Symbol)
		return b.String()
	case pipeline.StatusNoData:
		fmt.Fprintf(&b, "ℹ️ <b>%s</b>: no data in the last %d days\n", w.Symbol, w.Days)
		if res.Stale {
			b.WriteString("⚠️ refresh failed, nothing cached yet\n")
		}
		return b.String()
	}

	last := w.End.AddDate(0, 0, -1)
	fmt.Fprintf(&b, "📊 <b>%s</b> | %dd (%s → %s)\n\n", w.Symbol, w.Days, w.Start.Format(model.DateLayout), last.Format(model.DateLayout))
	if res.ChangeErr != nil {
		b.WriteString("Change: n/a (zero baseline)\n")
	} else {
		fmt.Fprintf(&b, "Change: %s%%\n", signed(w.Change.StringFixed(model.PriceDecimals)))
	}
	fmt.Fprintf(&b, "High: %s | Low: %s | Avg: %s\n",
		w.High.StringFixed(model.PriceDecimals), w.Low.StringFixed(model.PriceDecimals), w.Average.StringFixed(model.PriceDecimals))
	fmt.Fprintf(&b, "Range position: %.0f%%\n", w.Position*100)
	fmt.Fprintf(&b, "Rows: %d\n\n", len(w.Rows))

	b.WriteString("<pre>")
	for i, p := range w.Table() {
		if i == maxTableRows {
			fmt.Fprintf(&b, "… %d more\n", len(w.Rows)-maxTableRows)
			break
		}
		fmt.Fprintf(&b, "%s  %10s\n", p.Date.Format(model.DateLayout), p.Price.StringFixed(model.PriceDecimals))
	}
	b.WriteString("</pre>")

	if res.Stale {
		b.WriteString("\n⚠️ refresh failed, showing cached data")
	}
	return b.String()
}

// FormatQuotes lists live quotes in symbol order.
func FormatQuotes(quotes map[string]model.Quote) string {
	if len(quotes) == 0 {
		return "ℹ️ no quotes returned"
	}
	symbols := make([]string, 0, len(quotes))
	for s := range quotes {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	var b strings.Builder
	b.WriteString("💹 <b>Quotes</b>\n\n")
	for _, s := range symbols {
		q := quotes[s]
		fmt.Fprintf(&b, "<b>%s</b> %s\n", q.Symbol, html.EscapeString(q.DisplayName))
		fmt.Fprintf(&b, "  %s %s", q.Price.StringFixed(model.PriceDecimals), q.Currency)
		if q.MarketState != "" {
			fmt.Fprintf(&b, " | %s", q.MarketState)
		}
		if !q.SessionTime.IsZero() {
			fmt.Fprintf(&b, " | %s", q.SessionTime.UTC().Format("2006-01-02 15:04 MST"))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FormatSyncReport summarises a sync run.
func FormatSyncReport(r pipeline.SyncResult, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔄 <b>PriceDash sync</b> | %s\n\n", now.Format(model.DateLayout))

	switch {
	case !r.Fetched:
		b.WriteString("History already current.\n")
	case r.ProviderErr != nil:
		fmt.Fprintf(&b, "❌ provider unavailable for %s\n", r.FetchWindow)
	default:
		fmt.Fprintf(&b, "Window: %s\nNew rows: %d\n", r.FetchWindow, r.NewRows)
	}
	if r.StoreErr != nil {
		b.WriteString("⚠️ store unavailable, rows not persisted\n")
	}
	if len(r.Failures) > 0 && r.ProviderErr == nil {
		failed := make([]string, 0, len(r.Failures))
		for s := range r.Failures {
			failed = append(failed, s)
		}
		sort.Strings(failed)
		fmt.Fprintf(&b, "⚠️ failed: %s\n", strings.Join(failed, ", "))
	}
	return b.String()
}

func signed(s string) string {
	if strings.HasPrefix(s, "-") {
		return s
	}
	return "+" + s
}
