package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"PriceDash/internal/model"
	"PriceDash/internal/series"
)

var (
	importWide bool
	exportWide bool
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Append rows from a long (date,symbol,price) or wide CSV to the store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		rows, err := readCSV(f, importWide)
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}
		n, err := current.pipeline.Import(cmd.Context(), rows)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d of %d rows\n", n, len(rows))
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [FILE]",
	Short: "Write the whole store as long or wide CSV (stdout when FILE is omitted)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := current.pipeline.Export(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		if exportWide {
			return series.WriteWideCSV(out, series.Pivot(s))
		}
		return series.WriteLongCSV(out, s)
	},
}

func init() {
	importCmd.Flags().BoolVar(&importWide, "wide", false, "input is wide (date plus one column per symbol)")
	exportCmd.Flags().BoolVar(&exportWide, "wide", false, "write wide form")
}

func readCSV(r io.Reader, wide bool) ([]model.PricePoint, error) {
	if !wide {
		return series.ReadLongCSV(r)
	}
	t, err := series.ReadWideCSV(r)
	if err != nil {
		return nil, err
	}
	return series.Melt(t), nil
}
