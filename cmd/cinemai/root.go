package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"cinemai/shared/config"
	"cinemai/shared/logging"
)

type rootOptions struct {
	cfgFile string
	verbose bool
	json    bool
	app     *app
}

// execute runs cmd and then closes the storage it opened, also when the
// command failed.
func execute(ctx context.Context, cmd *cobra.Command, opts *rootOptions) error {
	err := cmd.ExecuteContext(ctx)
	if opts.app != nil {
		if cerr := opts.app.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close storage: %w", cerr))
		}
	}
	return err
}

func newRootCmdWith(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cinemai",
		Short: "AI-assisted movie and series discovery",
		Long: `cinemai recommends movies and shows for a title, genre or mood,
keeps your recent searches, and manages a watch-later list.

Example usage:
  cinemai discover "Inception"          # Recommendations plus audience sentiment
  cinemai discover "Inception" --more 1 # Then one round of fresh picks
  cinemai history list                  # Recent searches, newest first
  cinemai watch-later toggle "Dark"     # Save or unsave a title
  cinemai serve                         # JSON API and health endpoints`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.init(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default is $CONFIG_FILE or config.yaml)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")
	cmd.PersistentFlags().BoolVar(&opts.json, "json", false, "output as JSON")

	cmd.AddCommand(
		newDiscoverCmd(opts),
		newHistoryCmd(opts),
		newWatchLaterCmd(opts),
		newTrailerCmd(opts),
		newExplainCmd(opts),
		newChatCmd(opts),
		newCatalogueCmd(opts),
		newServeCmd(opts),
	)
	return cmd
}

func (o *rootOptions) init(cmd *cobra.Command) error {
	var (
		cfg *config.Config
		err error
	)
	if o.cfgFile != "" {
		cfg, err = config.LoadFile(o.cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	level := cfg.Logging.Level
	if o.verbose {
		level = "debug"
	}
	logging.Init(logging.Config{Level: level, Format: cfg.Logging.Format, Output: cmd.ErrOrStderr()})

	if o.app != nil {
		return nil
	}
	o.app, err = newApp(cmd.Context(), cfg)
	return err
}
