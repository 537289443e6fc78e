package main

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"
)

func newStatsCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize the collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}

			st, err := svc.Stats(cmd.Context())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if asJSON {
				return printJSON(w, st)
			}

			fmt.Fprintf(w, "Total:  %d\nRecent: %d\n", st.Total, st.Recent)
			if len(st.Categories) == 0 {
				return nil
			}
			fmt.Fprintln(w, "Categories:")
			for _, c := range slices.Sorted(maps.Keys(st.Categories)) {
				name := c
				if name == "" {
					name = "(none)"
				}
				fmt.Fprintf(w, "  %s: %d\n", name, st.Categories[c])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}
