package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/aretw0/notekeeper/internal/api"
	"github.com/aretw0/notekeeper/internal/server"
	notesource "github.com/aretw0/notekeeper/pkg/adapters/lifecycle"
	"github.com/aretw0/notekeeper/pkg/core"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		port  string
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the notes REST API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.HTTP.Port = port
			}
			if cmd.Flags().Changed("watch") {
				a.cfg.Notes.Watch = watch
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			svc, err := a.service()
			if err != nil {
				return err
			}

			srv, err := server.New(server.Options{
				Addr: a.cfg.HTTP.Addr(),
				Handler: api.NewRouter(svc, api.Options{
					Logger:     a.logger,
					CORSOrigin: a.cfg.HTTP.CORSOrigin,
					RateLimit:  a.cfg.HTTP.RateLimit,
					RateBurst:  a.cfg.HTTP.RateBurst,
				}),
				Logger: a.logger,
			})
			if err != nil {
				return err
			}

			eg, ctx := errgroup.WithContext(ctx)

			if a.cfg.Notes.Watch {
				events, err := svc.Watch(ctx)
				switch {
				case errors.Is(err, core.ErrWatchUnsupported):
					a.logger.Warn("watching is not supported by this adapter", "adapter", a.cfg.Notes.Adapter)
				case err != nil:
					return err
				default:
					src := notesource.NewSource(events)
					if err := src.Start(ctx); err != nil {
						return err
					}
					eg.Go(func() error {
						for e := range src.Events() {
							a.logger.Info("external change", "event", fmt.Sprint(e))
						}
						return nil
					})
				}
			}

			eg.Go(func() error {
				return srv.Run(ctx)
			})

			return eg.Wait()
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Listen port (env PORT, default 5000)")
	cmd.Flags().BoolVar(&watch, "watch", false, "Log changes made by other writers (env NOTES_WATCH)")
	return cmd
}
