// Package pipeline runs one user interaction: load the history, fetch the
// missing days, merge and persist them, then build the display window.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/phuslu/log"

	"PriceDash/internal/cache"
	"PriceDash/internal/collector"
	"PriceDash/internal/model"
	"PriceDash/internal/series"
	"PriceDash/internal/store"
)

// Status is the user-visible outcome of a run.
type Status string

const (
	StatusOK          Status = "ok"
	StatusNoData      Status = "no_data"
	StatusUnavailable Status = "unavailable"
)

// Request selects what a run displays.
type Request struct {
	Symbol string
	Period model.Period
}

// SyncResult reports the load/fetch/merge/persist half of a run.
type SyncResult struct {
	Series      series.Series
	FetchWindow model.FetchWindow
	Fetched     bool             // false when the history was already current
	NewRows     int              // rows appended to the store
	Failures    map[string]error // per-symbol fetch errors
	StoreErr    error            // set when the store could not be read or written
	ProviderErr error            // set when every symbol failed to fetch
}

// Result is the outcome of Run.
type Result struct {
	SyncResult
	Status    Status
	Window    model.DisplayWindow
	Stale     bool  // the requested symbol could not be refreshed
	ChangeErr error // percent change undefined, rows still served
}

// Pipeline wires a store, a collector and a cache for a fixed symbol list.
type Pipeline struct {
	Store     store.Store
	Collector *collector.Collector
	Cache     cache.Cache
	Symbols   []string
	Timeout   time.Duration
	Now       func() time.Time
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p *Pipeline) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.Timeout)
}

// Run performs one interaction. Store, provider, empty-window and
// zero-baseline failures are folded into the Result; only unexpected
// errors are returned.
func (p *Pipeline) Run(ctx context.Context, sess *model.Session, req Request) (Result, error) {
	sync, err := p.Sync(ctx, sess)
	if err != nil {
		return Result{}, err
	}
	res := Result{SyncResult: sync}

	symbol := model.NormalizeSymbol(req.Symbol)
	_, symbolFailed := sync.Failures[symbol]
	res.Stale = sync.ProviderErr != nil || symbolFailed

	window, err := series.View(sync.Series, symbol, req.Period, p.now())
	switch {
	case errors.Is(err, model.ErrInvalidBaseline):
		res.ChangeErr = err
		log.Warn().Str("symbol", symbol).Err(err).Msg("percent change undefined")
	case err != nil:
		return res, fmt.Errorf("view %s %s: %w", symbol, req.Period, err)
	}
	res.Window = window

	switch {
	case !window.Empty:
		res.Status = StatusOK
	case sync.StoreErr != nil && sync.ProviderErr != nil:
		res.Status = StatusUnavailable
	default:
		res.Status = StatusNoData
	}

	log.Info().Str("session", sessionID(sess)).Str("symbol", symbol).Str("period", string(req.Period)).
		Str("status", string(res.Status)).Int("rows", len(window.Rows)).Bool("stale", res.Stale).Msg("view served")
	return res, nil
}

// Sync brings the history up to yesterday for every configured symbol.
func (p *Pipeline) Sync(ctx context.Context, sess *model.Session) (SyncResult, error) {
	now := p.now()
	if sess != nil {
		sess.Touch(now)
	}
	var res SyncResult

	rows, err := p.load(ctx)
	if err != nil {
		if !errors.Is(err, model.ErrStoreUnavailable) {
			return res, err
		}
		log.Warn().Str("store", p.Store.Name()).Err(err).Msg("store unavailable, starting from default lookback")
		res.StoreErr = err
	}
	s := series.New(rows)

	w, ok := series.ComputeFetchWindow(s, p.Symbols, now)
	res.FetchWindow = w
	if !ok {
		log.Debug().Str("window", w.String()).Msg("history current, nothing to fetch")
		res.Series = s
		return res, nil
	}

	res.Fetched = true
	fetchCtx, cancel := p.withTimeout(ctx)
	hist := p.Collector.FetchHistory(fetchCtx, p.Symbols, w)
	cancel()
	res.Failures = hist.Failures
	if hist.Err != nil {
		log.Warn().Str("window", w.String()).Err(hist.Err).Msg("provider unavailable, serving cached rows")
		res.ProviderErr = hist.Err
		res.Series = s
		return res, nil
	}

	// Refetched days replace cached values in the served series; only absent
	// pairs are persisted.
	res.Series = series.Merge(s, hist.Rows)
	fresh := series.NewRows(s, hist.Rows)
	res.NewRows = len(fresh)

	if res.StoreErr == nil && len(fresh) > 0 {
		appendCtx, cancel := p.withTimeout(ctx)
		err := p.Store.Append(appendCtx, fresh)
		cancel()
		if err != nil {
			if !errors.Is(err, model.ErrStoreUnavailable) {
				return res, fmt.Errorf("append: %w", err)
			}
			log.Warn().Str("store", p.Store.Name()).Err(err).Msg("rows not persisted")
			res.StoreErr = err
			res.NewRows = 0
		}
	}

	log.Info().Str("session", sessionID(sess)).Str("window", w.String()).Int("new_rows", res.NewRows).
		Int("failures", len(res.Failures)).Msg("history synced")
	return res, nil
}

func (p *Pipeline) load(ctx context.Context) ([]model.PricePoint, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	return p.Store.Load(ctx)
}

// Quote returns live quotes, memoized per session.
func (p *Pipeline) Quote(ctx context.Context, sess *model.Session, symbols []string) (map[string]model.Quote, error) {
	if sess != nil {
		sess.Touch(p.now())
	}
	normalized := make([]string, len(symbols))
	for i, s := range symbols {
		normalized[i] = model.NormalizeSymbol(s)
	}
	key := cache.Key("quote", sessionID(sess), normalized)
	return cache.Memoize(ctx, p.Cache, key, func() (map[string]model.Quote, error) {
		ctx, cancel := p.withTimeout(ctx)
		defer cancel()
		return p.Collector.FetchQuotes(ctx, normalized)
	})
}

// Import appends the rows the store does not hold yet and returns how many
// were written. A batch with a negative price is refused whole.
func (p *Pipeline) Import(ctx context.Context, rows []model.PricePoint) (int, error) {
	for _, r := range rows {
		if err := r.Validate(); err != nil {
			return 0, fmt.Errorf("import: %w", err)
		}
	}
	existing, err := p.load(ctx)
	if err != nil {
		return 0, err
	}
	fresh := series.NewRows(series.New(existing), rows)
	if len(fresh) == 0 {
		return 0, nil
	}
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	if err := p.Store.Append(ctx, fresh); err != nil {
		return 0, err
	}
	log.Info().Int("rows", len(fresh)).Int("skipped", len(rows)-len(fresh)).Msg("rows imported")
	return len(fresh), nil
}

// Export returns the whole persisted history.
func (p *Pipeline) Export(ctx context.Context) (series.Series, error) {
	rows, err := p.load(ctx)
	if err != nil {
		return nil, err
	}
	return series.New(rows), nil
}

func sessionID(sess *model.Session) string {
	if sess == nil {
		return ""
	}
	return sess.ID
}
