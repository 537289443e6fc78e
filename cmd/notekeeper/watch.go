package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	notesource "github.com/aretw0/notekeeper/pkg/adapters/lifecycle"
	"github.com/aretw0/notekeeper/pkg/core"
)

func newWatchCmd(a *app) *cobra.Command {
	var types []string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print changes other processes make to the notes",
		Long: `Print one line per note created, modified or deleted by another writer
until interrupted. Only the fs adapter supports watching.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseEventTypes(types)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			svc, err := a.service()
			if err != nil {
				return err
			}

			events, err := svc.Watch(ctx)
			if err != nil {
				return err
			}

			src := notesource.NewSource(events, notesource.WithTypes(filter...))
			if err := src.Start(ctx); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for e := range src.Events() {
				fmt.Fprintln(w, e)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&types, "types", nil, "Only report these event types (create, modify, delete)")
	return cmd
}

func parseEventTypes(names []string) ([]core.EventType, error) {
	var out []core.EventType
	for _, name := range names {
		t := core.EventType(strings.ToUpper(strings.TrimSpace(name)))
		switch t {
		case core.EventCreate, core.EventModify, core.EventDelete:
			out = append(out, t)
		default:
			return nil, fmt.Errorf("unknown event type %q", name)
		}
	}
	return out, nil
}
