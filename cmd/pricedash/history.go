package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"PriceDash/internal/model"
	"PriceDash/internal/series"
)

var historyFile string

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Summarise a wide historical closing-price CSV",
	Long: `Read a wide CSV (date plus one column per symbol), melt it to long form and print
first, last, change, high and low per symbol.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := historyFile
		if path == "" {
			path = current.cfg.History.WideCSV
		}
		if path == "" {
			return fmt.Errorf("no history file: pass --file or set history.wide_csv")
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		table, err := series.ReadWideCSV(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		summaries := series.Summarize(series.New(series.Melt(table)))

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "symbol\trows\tfrom\tto\tfirst\tlast\tchange %\thigh\tlow")
		for _, s := range summaries {
			change := "n/a"
			if s.ChangeErr == nil {
				change = s.Change.StringFixed(model.PriceDecimals)
			}
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n", s.Symbol, s.Rows,
				s.FirstDate.Format(model.DateLayout), s.LastDate.Format(model.DateLayout),
				s.First.StringFixed(2), s.Last.StringFixed(2), change, s.High.StringFixed(2), s.Low.StringFixed(2))
		}
		return tw.Flush()
	},
}

func init() {
	historyCmd.Flags().StringVarP(&historyFile, "file", "f", "", "wide CSV path (default history.wide_csv)")
}
