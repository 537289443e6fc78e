package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/notekeeper/pkg/core"
)

func newEditCmd(a *app) *cobra.Command {
	var (
		title, category, content string
		asJSON                   bool
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the title, category or content of a note",
		Long:  `Only the fields given as flags are changed; the others keep their value.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p core.NotePatch
			flags := cmd.Flags()
			if flags.Changed("title") {
				p.Title = &title
			}
			if flags.Changed("category") {
				p.Category = &category
			}
			if flags.Changed("content") {
				p.Content = &content
			}
			if p.Title == nil && p.Category == nil && p.Content == nil {
				return errors.New("nothing to change: pass --title, --category or --content")
			}

			svc, err := a.service()
			if err != nil {
				return err
			}

			n, err := svc.Patch(cmd.Context(), args[0], p)
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(cmd.OutOrStdout(), n)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Updated note %s\n", n.ID)
			return err
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "New title")
	cmd.Flags().StringVarP(&category, "category", "c", "", "New category")
	cmd.Flags().StringVar(&content, "content", "", "New content (HTML)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}
