package main

import (
	"fmt"
	"strings"

	"cinemai/shared/discovery"

	"github.com/spf13/cobra"
)

func newDiscoverCmd(opts *rootOptions) *cobra.Command {
	var (
		replay bool
		more   int
	)

	cmd := &cobra.Command{
		Use:   "discover <title, genre or mood>",
		Short: "Recommend titles and summarize audience sentiment",
		Long: `Recommend movies and shows similar to a title, or matching a genre or mood,
together with an audience sentiment summary.

Examples:
  cinemai discover "Inception"
  cinemai discover dark comedies --more 2   # Two extra rounds excluding what was shown
  cinemai discover "Breaking Bad" --replay  # Do not record in history`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := opts.app
			ctx := cmd.Context()
			query := strings.Join(args, " ")

			completer, err := a.newAssistant(ctx)
			if err != nil {
				return err
			}
			orchestrator := discovery.NewOrchestrator(completer, a.history)

			snap := orchestrator.Search(ctx, query, discovery.SearchOptions{Replay: replay})
			if snap.State == discovery.StateIdle {
				return fmt.Errorf("query must not be blank")
			}
			snaps := []discovery.Snapshot{snap}

			for i := 0; i < more && snap.State == discovery.StateSuccess; i++ {
				snap = orchestrator.Regenerate(ctx, snap.Query, snap.Result.Titles())
				snaps = append(snaps, snap)
				if snap.Condition != discovery.ConditionNone {
					break
				}
			}
			a.saveLastResult(ctx, orchestrator.Snapshot().Result)

			if opts.json {
				return printJSON(cmd, snaps)
			}
			out := cmd.OutOrStdout()
			for i, s := range snaps {
				if i == 0 {
					if err := printSnapshot(out, s); err != nil {
						return err
					}
					continue
				}
				headingColor.Fprintf(out, "\nMore like %q:\n", s.Query)
				if s.Condition != discovery.ConditionNone {
					noticeColor.Fprintln(out, s.Message)
					continue
				}
				if err := printRecommendations(out, s.Result.Recommendations); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&replay, "replay", false, "do not record the query in search history")
	cmd.Flags().IntVar(&more, "more", 0, "extra rounds of recommendations excluding titles already shown")
	return cmd
}
