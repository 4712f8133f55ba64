package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"PriceDash/internal/model"
)

// DefaultYahooURL is the public Yahoo Finance API host.
const DefaultYahooURL = "https://query1.finance.yahoo.com"

// YahooProvider implements Provider using the Yahoo Finance public API.
type YahooProvider struct {
	BaseURL   string
	Client    *http.Client
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
}

// NewYahooProvider creates a Yahoo provider with optional proxy support.
func NewYahooProvider(baseURL, proxyURL string, timeout time.Duration) *YahooProvider {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if baseURL == "" {
		baseURL = DefaultYahooURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &YahooProvider{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"NASDAQ": "^IXIC",
		},
	}
}

func (f *YahooProvider) Name() string { return "yahoo" }

func (f *YahooProvider) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooChart is the response structure from the chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol    string `json:"symbol"`
				Currency  string `json:"currency"`
				GMTOffset int64  `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"chart"`
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// yahooQuotes is the response structure from the quote API.
type yahooQuotes struct {
	QuoteResponse struct {
		Result []struct {
			Symbol             string  `json:"symbol"`
			ShortName          string  `json:"shortName"`
			LongName           string  `json:"longName"`
			DisplayName        string  `json:"displayName"`
			RegularMarketPrice float64 `json:"regularMarketPrice"`
			Currency           string  `json:"currency"`
			MarketState        string  `json:"marketState"`
			RegularMarketTime  int64   `json:"regularMarketTime"`
			PreMarketTime      int64   `json:"preMarketTime"`
			PostMarketTime     int64   `json:"postMarketTime"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"quoteResponse"`
}

func (f *YahooProvider) get(ctx context.Context, u string, into any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, into); err != nil {
		return fmt.Errorf("yahoo decode: %w", err)
	}
	return nil
}

// GetHistory fetches daily closes. Dates are taken in the exchange's own
// time zone so a close is never shifted onto the neighbouring day.
func (f *YahooProvider) GetHistory(ctx context.Context, symbol string, start, end time.Time) ([]model.PricePoint, error) {
	start, end = model.Day(start), model.Day(end)
	q := url.Values{}
	q.Set("interval", "1d")
	q.Set("period1", fmt.Sprint(start.Unix()))
	q.Set("period2", fmt.Sprint(end.AddDate(0, 0, 1).Unix()))
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", f.BaseURL, url.PathEscape(f.yahooSymbol(symbol)), q.Encode())

	var chart yahooChart
	if err := f.get(ctx, u, &chart); err != nil {
		return nil, err
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo: no data returned for %s", symbol)
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, nil
	}
	closes := result.Indicators.Quote[0].Close
	points := make([]model.PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue // null bars (holidays etc.)
		}
		date := model.Day(time.Unix(ts+result.Meta.GMTOffset, 0).UTC())
		if date.Before(start) || date.After(end) {
			continue
		}
		points = append(points, model.NewPricePoint(symbol, date, *closes[i]))
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points, nil
}

// GetQuote fetches live quotes for all symbols in one call.
func (f *YahooProvider) GetQuote(ctx context.Context, symbols []string) (map[string]model.Quote, error) {
	mapped := make([]string, len(symbols))
	reverse := make(map[string]string, len(symbols))
	for i, s := range symbols {
		mapped[i] = f.yahooSymbol(s)
		reverse[mapped[i]] = s
	}
	u := fmt.Sprintf("%s/v7/finance/quote?symbols=%s", f.BaseURL, url.QueryEscape(strings.Join(mapped, ",")))

	var resp yahooQuotes
	if err := f.get(ctx, u, &resp); err != nil {
		return nil, err
	}
	if resp.QuoteResponse.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", resp.QuoteResponse.Error.Description)
	}

	now := time.Now()
	quotes := make(map[string]model.Quote, len(resp.QuoteResponse.Result))
	for _, r := range resp.QuoteResponse.Result {
		symbol := r.Symbol
		if orig, ok := reverse[symbol]; ok {
			symbol = orig
		}
		symbol = model.NormalizeSymbol(symbol)
		display := r.DisplayName
		if display == "" {
			display = r.ShortName
		}
		if display == "" {
			display = symbol
		}
		state := model.MarketState(r.MarketState)
		times := model.SessionTimes{
			Regular: unixOrZero(r.RegularMarketTime),
			Pre:     unixOrZero(r.PreMarketTime),
			Post:    unixOrZero(r.PostMarketTime),
		}
		quotes[symbol] = model.Quote{
			Symbol:      symbol,
			DisplayName: display,
			LongName:    r.LongName,
			Price:       model.Round2(decimal.NewFromFloat(r.RegularMarketPrice)),
			Currency:    r.Currency,
			MarketState: state,
			SessionTime: times.Pick(state, now),
		}
	}
	return quotes, nil
}

func unixOrZero(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0)
}
