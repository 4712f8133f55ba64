package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch and persist the days missing from the history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := current
		res, err := a.pipeline.Sync(cmd.Context(), a.session)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if !res.Fetched {
			fmt.Fprintln(out, "history already current")
			return nil
		}
		if res.ProviderErr != nil {
			return res.ProviderErr
		}
		fmt.Fprintf(out, "window %s: %d new rows\n", res.FetchWindow, res.NewRows)
		failed := make([]string, 0, len(res.Failures))
		for s := range res.Failures {
			failed = append(failed, s)
		}
		sort.Strings(failed)
		for _, s := range failed {
			fmt.Fprintf(out, "failed %s: %v\n", s, res.Failures[s])
		}
		if res.StoreErr != nil {
			fmt.Fprintf(out, "not persisted: %v\n", res.StoreErr)
		}
		return nil
	},
}
