package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/phuslu/log"
	"github.com/robfig/cron/v3"

	"PriceDash/internal/model"
	"PriceDash/internal/notifier"
	"PriceDash/internal/pipeline"
)

// Notifier delivers reports. *notifier.TelegramNotifier satisfies it.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler runs cron-triggered syncs and answers bot commands.
type Scheduler struct {
	Cron          *cron.Cron
	Pipeline      *pipeline.Pipeline
	Notifier      Notifier // nil disables reports
	DefaultSymbol string
	DefaultPeriod model.Period
	Ctx           context.Context

	mu      sync.Mutex
	session *model.Session
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, p *pipeline.Pipeline, n Notifier, defaultSymbol string, defaultPeriod model.Period) *Scheduler {
	return &Scheduler{
		Cron:          cron.New(cron.WithSeconds()),
		Pipeline:      p,
		Notifier:      n,
		DefaultSymbol: defaultSymbol,
		DefaultPeriod: defaultPeriod,
		Ctx:           ctx,
		session:       model.NewSession(time.Now()),
	}
}

// RegisterSync schedules a sync run on the given six-field cron spec.
func (s *Scheduler) RegisterSync(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.syncTask); err != nil {
		return fmt.Errorf("register sync task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// RunSyncNow executes the sync task immediately.
func (s *Scheduler) RunSyncNow() {
	s.syncTask()
}

// Session returns the session bot commands run under.
func (s *Scheduler) Session() *model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// syncTask is one complete pipeline run without a view. It also starts a
// new session so memoized quotes do not outlive the trading day.
func (s *Scheduler) syncTask() {
	log.Info().Msg("running scheduled sync")
	sess := model.NewSession(time.Now())
	s.mu.Lock()
	s.session = sess
	s.mu.Unlock()

	res, err := s.Pipeline.Sync(s.Ctx, sess)
	if err != nil {
		log.Error().Err(err).Msg("scheduled sync")
		s.trySend(fmt.Sprintf("❌ sync failed: %v", err))
		return
	}
	s.trySend(notifier.FormatSyncReport(res, time.Now()))
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	// "/view@PriceDashBot" in group chats
	name := strings.SplitN(fields[0], "@", 2)[0]
	args := fields[1:]

	switch name {
	case "/view":
		return s.view(args)
	case "/quote":
		return s.quote(args)
	case "/sync":
		res, err := s.Pipeline.Sync(s.Ctx, s.Session())
		if err != nil {
			return fmt.Sprintf("❌ sync failed: %v", err)
		}
		return notifier.FormatSyncReport(res, time.Now())
	default:
		return helpText
	}
}

const helpText = "Commands:\n• /view [SYMBOL] [1W|1M|3M|6M|1Y]\n• /quote [SYMBOL...]\n• /sync"

func (s *Scheduler) view(args []string) string {
	req := pipeline.Request{Symbol: s.DefaultSymbol, Period: s.DefaultPeriod}
	for _, a := range args {
		if p, err := model.ParsePeriod(a); err == nil {
			req.Period = p
			continue
		}
		req.Symbol = model.NormalizeSymbol(a)
	}
	if !s.known(req.Symbol) {
		return fmt.Sprintf("❓ unknown symbol %s, tracking: %s", req.Symbol, strings.Join(s.Pipeline.Symbols, ", "))
	}

	res, err := s.Pipeline.Run(s.Ctx, s.Session(), req)
	if err != nil {
		log.Error().Str("symbol", req.Symbol).Err(err).Msg("view command")
		return fmt.Sprintf("❌ view failed: %v", err)
	}
	return notifier.FormatView(res)
}

func (s *Scheduler) quote(args []string) string {
	symbols := args
	if len(symbols) == 0 {
		symbols = []string{s.DefaultSymbol}
	}
	quotes, err := s.Pipeline.Quote(s.Ctx, s.Session(), symbols)
	if err != nil {
		log.Error().Strs("symbols", symbols).Err(err).Msg("quote command")
		return fmt.Sprintf("❌ quote failed: %v", err)
	}
	return notifier.FormatQuotes(quotes)
}

func (s *Scheduler) known(symbol string) bool {
	for _, sym := range s.Pipeline.Symbols {
		if sym == symbol {
			return true
		}
	}
	return false
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		log.Info().Msg(text)
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Error().Err(err).Msg("send notification")
	}
}
