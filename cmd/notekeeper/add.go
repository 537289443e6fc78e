package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/notekeeper/pkg/core"
)

func newAddCmd(a *app) *cobra.Command {
	var (
		in     core.NoteInput
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a note",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}

			n, err := svc.Create(cmd.Context(), in)
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(cmd.OutOrStdout(), n)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Created note %s\n", n.ID)
			return err
		},
	}

	cmd.Flags().StringVarP(&in.Title, "title", "t", "", "Note title")
	cmd.Flags().StringVarP(&in.Category, "category", "c", "", "Note category")
	cmd.Flags().StringVar(&in.Content, "content", "", "Note content (HTML)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}
