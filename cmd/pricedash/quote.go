package main

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"PriceDash/internal/model"
)

var quoteCmd = &cobra.Command{
	Use:   "quote [symbol...]",
	Short: "Show live quotes (default: every configured symbol)",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := current
		symbols := args
		if len(symbols) == 0 {
			symbols = a.cfg.Symbols
		}
		quotes, err := a.pipeline.Quote(cmd.Context(), a.session, symbols)
		if err != nil {
			return err
		}

		keys := make([]string, 0, len(quotes))
		for k := range quotes {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "symbol\tname\tprice\tcurrency\tstate\tas of")
		for _, k := range keys {
			q := quotes[k]
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", q.Symbol, q.DisplayName, q.Price.StringFixed(model.PriceDecimals),
				q.Currency, q.MarketState, q.SessionTime.Local().Format("2006-01-02 15:04"))
		}
		return tw.Flush()
	},
}
