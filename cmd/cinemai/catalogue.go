package main

import (
	"fmt"
	"strconv"

	"cinemai/shared/catalogue"
	"cinemai/shared/media"

	"github.com/spf13/cobra"
)

func newCatalogueCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalogue",
		Short: "Browse the local title catalogue",
	}

	var limit int
	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List catalogue titles",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := opts.app.catalogue()
			if err != nil {
				return err
			}
			if limit > 0 && len(records) > limit {
				records = records[:limit]
			}
			if opts.json {
				return printJSON(cmd, records)
			}
			t := newTable(cmd.OutOrStdout(), "Title", "Type", "Year", "Rating", "Duration", "Genres")
			for _, r := range records {
				t.add(r.Title, string(r.Kind), strconv.Itoa(r.ReleaseYear), r.Rating, r.Duration, r.ListedIn)
			}
			return t.render()
		},
	}
	list.Flags().IntVar(&limit, "limit", 0, "show at most this many titles")

	featured := &cobra.Command{
		Use:   "featured",
		Short: "Pick a recent movie to feature",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := opts.app.catalogue()
			if err != nil {
				return err
			}
			rec, ok := catalogue.Featured(records, nil)
			if !ok {
				return fmt.Errorf("no movie released after %d in the catalogue", catalogue.FeaturedSince)
			}
			if opts.json {
				return printJSON(cmd, rec)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%d)\n%s\n", rec.Title, rec.ReleaseYear, rec.Description)
			fmt.Fprintf(out, "Backdrop: %s\n", media.HeroFallback(rec.Title))
			return nil
		},
	}

	cmd.AddCommand(list, featured)
	return cmd
}
