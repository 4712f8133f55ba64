package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/phuslu/log"
	"github.com/spf13/cobra"

	"PriceDash/internal/model"
	"PriceDash/internal/notifier"
	"PriceDash/internal/scheduler"
)

var runNow bool

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run a sync on the configured cron schedule until interrupted",
	Long: `Each cron tick is one complete sync run. When Telegram is configured a short
report is posted after every tick.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context(), false)
	},
}

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Answer Telegram commands (/view, /quote, /sync) and run scheduled syncs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := current.cfg.ValidateTelegram(); err != nil {
			return err
		}
		return serve(cmd.Context(), true)
	},
}

func init() {
	for _, c := range []*cobra.Command{scheduleCmd, botCmd} {
		c.Flags().BoolVar(&runNow, "run-now", false, "run one sync immediately on start")
	}
}

func serve(parent context.Context, polling bool) error {
	a := current
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var tn *notifier.TelegramNotifier
	var n scheduler.Notifier
	if a.cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(a.cfg.Telegram.BotToken, a.cfg.Telegram.ChatID, a.cfg.Provider.Proxy)
		n = tn
	}

	period, err := model.ParsePeriod(a.cfg.DefaultPeriod)
	if err != nil {
		return err
	}
	sched := scheduler.NewScheduler(ctx, a.pipeline, n, a.cfg.DefaultSymbol, period)
	if err := sched.RegisterSync(a.cfg.Schedule.SyncCron); err != nil {
		return fmt.Errorf("register cron tasks: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	if polling {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")
	}
	if runNow {
		log.Info().Msg("running sync now")
		go sched.RunSyncNow()
	}

	log.Info().Str("cron", a.cfg.Schedule.SyncCron).Msg("pricedash is running, press Ctrl+C to stop")
	<-ctx.Done()
	log.Info().Msg("shutdown signal received, stopping")
	return nil
}
