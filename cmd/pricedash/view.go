package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"PriceDash/internal/model"
	"PriceDash/internal/pipeline"
)

var viewPeriod string

var viewCmd = &cobra.Command{
	Use:   "view [symbol]",
	Short: "Sync the history and show one symbol's window",
	Long: `Run one interaction: fetch the days missing from the local history, persist them,
then print the closes of the symbol over the selected period with its percent change.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := current
		symbol := a.cfg.DefaultSymbol
		if len(args) == 1 {
			symbol = model.NormalizeSymbol(args[0])
		}
		if !a.cfg.Tracks(symbol) {
			return fmt.Errorf("unknown symbol %s, tracking: %s", symbol, strings.Join(a.cfg.Symbols, ", "))
		}
		periodArg := viewPeriod
		if periodArg == "" {
			periodArg = a.cfg.DefaultPeriod
		}
		period, err := model.ParsePeriod(periodArg)
		if err != nil {
			return err
		}

		res, err := a.pipeline.Run(cmd.Context(), a.session, pipeline.Request{Symbol: symbol, Period: period})
		if err != nil {
			return err
		}
		printResult(cmd.OutOrStdout(), res, period)
		return nil
	},
}

func init() {
	viewCmd.Flags().StringVarP(&viewPeriod, "period", "p", "", "window: 1W, 1M, 3M, 6M or 1Y (default from config)")
}

func printResult(out io.Writer, res pipeline.Result, period model.Period) {
	w := res.Window
	if len(res.Failures) > 0 {
		fmt.Fprintf(out, "warning: %d symbol(s) failed to refresh\n", len(res.Failures))
	}
	switch res.Status {
	case pipeline.StatusUnavailable:
		fmt.Fprintf(out, "%s: unavailable (store and provider unreachable)\n", w.Symbol)
		return
	case pipeline.StatusNoData:
		fmt.Fprintf(out, "%s: no data for %s\n", w.Symbol, period)
		return
	}

	fmt.Fprintf(out, "%s %s  %s .. %s\n", w.Symbol, period, w.Start.Format(model.DateLayout), w.End.AddDate(0, 0, -1).Format(model.DateLayout))
	if res.ChangeErr != nil {
		fmt.Fprintln(out, "change: n/a (zero baseline)")
	} else {
		fmt.Fprintf(out, "change: %s%%\n", w.Change.StringFixed(model.PriceDecimals))
	}
	fmt.Fprintf(out, "high: %s  low: %s  avg: %s  position: %.0f%%\n\n",
		w.High.StringFixed(model.PriceDecimals), w.Low.StringFixed(model.PriceDecimals), w.Average.StringFixed(model.PriceDecimals), w.Position*100)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "date\tprice\t")
	for _, p := range w.Table() {
		fmt.Fprintf(tw, "%s\t%s\t\n", p.Date.Format(model.DateLayout), p.Price.StringFixed(model.PriceDecimals))
	}
	tw.Flush()
	if res.Stale {
		fmt.Fprintln(out, "\n(refresh failed, showing cached data)")
	}
}
