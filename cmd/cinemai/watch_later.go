package main

import (
	"fmt"
	"strings"

	"cinemai/internal/models"
	"cinemai/shared/catalogue"
	"cinemai/shared/storage"

	"github.com/spf13/cobra"
)

func newWatchLaterCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "watch-later",
		Aliases: []string{"wl"},
		Short:   "Manage the watch-later list",
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved titles",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items := opts.app.watchLater.Items()
			if opts.json {
				return printJSON(cmd, items)
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Your watch-later list is empty.")
				return nil
			}
			t := newTable(cmd.OutOrStdout(), "Title", "Type", "Year", "Match", "Note")
			for _, it := range items {
				t.add(it.Title, it.Type, it.Year, fmt.Sprintf("%.0f%%", it.SimilarityScore), it.Reason)
			}
			return t.render()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "toggle <title>",
		Short: "Save a title, or remove it if already saved",
		Long: `Save a title from the last discovery result or the catalogue, or remove it
when it is already on the list.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := opts.app
			ctx := cmd.Context()
			title := strings.Join(args, " ")

			candidate, err := findCandidate(opts, cmd, title)
			if err != nil {
				return err
			}
			saved, err := a.watchLater.Toggle(ctx, candidate)
			if err != nil {
				return err
			}
			name := candidate.SavedItem().Title
			if saved {
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %q to watch later.\n", name)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %q from watch later.\n", name)
			}
			return nil
		},
	})

	return cmd
}

func findCandidate(opts *rootOptions, cmd *cobra.Command, title string) (storage.Candidate, error) {
	a := opts.app
	if a.watchLater.IsSaved(title) {
		for _, it := range a.watchLater.Items() {
			if it.Title == title {
				return storage.RecommendationCandidate{Recommendation: savedAsRecommendation(it)}, nil
			}
		}
	}
	if last := a.lastResult(cmd.Context()); last != nil {
		for _, rec := range last.Recommendations {
			if rec.Title == title {
				return storage.RecommendationCandidate{Recommendation: rec}, nil
			}
		}
	}
	records, err := a.catalogue()
	if err != nil {
		return nil, err
	}
	if rec, ok := catalogue.Find(records, title); ok {
		return storage.CatalogueCandidate{Record: rec}, nil
	}
	return nil, fmt.Errorf("%q is not in the last discovery result or the catalogue", title)
}

func savedAsRecommendation(it models.SavedItem) models.Recommendation {
	return models.Recommendation{
		Title:           it.Title,
		Type:            it.Type,
		SimilarityScore: it.SimilarityScore,
		Reason:          it.Reason,
		Year:            it.Year,
		Genre:           it.Genre,
		TrailerURL:      it.TrailerURL,
		PosterURL:       it.PosterURL,
	}
}
