package main

import (
	"cinemai/shared/api"
	"cinemai/shared/discovery"
	"cinemai/shared/logging"
	"cinemai/shared/monitoring"

	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API with health and metrics endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := opts.app
			ctx := cmd.Context()

			completer, err := a.newAssistant(ctx)
			if err != nil {
				return err
			}
			records, err := a.catalogue()
			if err != nil {
				return err
			}
			logging.Info().Int("records", len(records)).Int("history", len(a.history.Entries())).Msg("state loaded")

			srv := api.NewServer(a.cfg.Server, api.Deps{
				Orchestrator: discovery.NewOrchestrator(completer, a.history),
				History:      a.history,
				WatchLater:   a.watchLater,
				Catalogue:    records,
				Trailers:     a.trailers(ctx),
				Assistant:    completer,
				Monitor:      monitoring.NewMonitor(),
			})
			return srv.ListenAndServe(ctx)
		},
	}
}
