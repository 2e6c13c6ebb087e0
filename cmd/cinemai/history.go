package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show or edit recent searches",
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List recent searches, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries := opts.app.history.Entries()
			if opts.json {
				return printJSON(cmd, entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No recent searches.")
				return nil
			}
			for i, q := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, q)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <query>",
		Short: "Remove one search from history",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.app.history.Remove(cmd.Context(), strings.Join(args, " "))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Forget all recent searches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.app.history.Clear(cmd.Context())
		},
	})

	return cmd
}
