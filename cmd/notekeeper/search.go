package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/notekeeper/pkg/core"
)

func newSearchCmd(a *app) *cobra.Command {
	var (
		category string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "search [text]",
		Short: "Find notes whose title contains text",
		Long: `Find notes whose title contains text (case-insensitive), optionally
restricted to one category. With no text every note in the category matches.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}

			q := core.Query{Text: strings.Join(args, " "), Category: category}
			notes, err := svc.Search(cmd.Context(), q)
			if err != nil {
				return err
			}
			return renderNotes(cmd.OutOrStdout(), notes, asJSON)
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Only notes in this category")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}
