package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aretw0/notekeeper/pkg/core"
)

// listPreviewLength is shorter than the card preview so rows fit a terminal.
const listPreviewLength = 40

func newListCmd(a *app) *cobra.Command {
	var (
		category string
		newest   bool
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}

			notes, err := svc.Search(cmd.Context(), core.Query{Category: category})
			if err != nil {
				return err
			}
			if newest {
				core.SortNewestFirst(notes)
			}
			return renderNotes(cmd.OutOrStdout(), notes, asJSON)
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Only notes in this category")
	cmd.Flags().BoolVar(&newest, "newest", false, "Sort by creation time, newest first")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}

// noteRow is a note as listed in JSON, with its card preview.
type noteRow struct {
	core.Note
	Preview string `json:"preview"`
}

// renderNotes prints notes as a table, or as a JSON array when asJSON.
func renderNotes(w io.Writer, notes []core.Note, asJSON bool) error {
	if asJSON {
		rows := make([]noteRow, 0, len(notes))
		for _, n := range notes {
			rows = append(rows, noteRow{Note: n, Preview: core.Preview(n.Content, core.PreviewLength)})
		}
		return printJSON(w, rows)
	}
	if len(notes) == 0 {
		_, err := fmt.Fprintln(w, "No notes found.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCATEGORY\tTITLE\tPREVIEW")
	for _, n := range notes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", n.ID, n.Category, n.Title, core.Preview(n.Content, listPreviewLength))
	}
	return tw.Flush()
}
