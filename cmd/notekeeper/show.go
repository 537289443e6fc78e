package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/notekeeper/pkg/core"
)

func newShowCmd(a *app) *cobra.Command {
	var (
		asJSON bool
		raw    bool
	)

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}

			n, err := svc.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if asJSON {
				return printJSON(w, n)
			}

			content := core.Preview(n.Content, 0)
			if raw {
				content = n.Content
			}
			_, err = fmt.Fprintf(w, "%s\nCategory: %s\nCreated:  %s\nUpdated:  %s\n\n%s\n",
				n.Title, n.Category,
				n.CreatedAt.Local().Format(time.DateTime),
				n.UpdatedAt.Local().Format(time.DateTime),
				content)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print content markup instead of plain text")
	return cmd
}
