package main

import (
	"fmt"
	"io"

	"cinemai/internal/models"
	"cinemai/shared/discovery"

	"github.com/fatih/color"
	"github.com/goccy/go-json"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
)

var (
	matchColor   = color.New(color.FgGreen, color.Bold)
	noticeColor  = color.New(color.FgYellow)
	headingColor = color.New(color.FgRed, color.Bold)
)

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

// table collects rows and renders them borderless, left aligned.
type table struct {
	t      *tablewriter.Table
	header []string
	rows   [][]string
}

func newTable(w io.Writer, headers ...string) *table {
	t := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{ShowHeader: tw.Off},
			},
		}),
	)
	return &table{t: t, header: headers}
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) render() error {
	t.t.Header(t.header)
	if err := t.t.Bulk(t.rows); err != nil {
		return err
	}
	return t.t.Render()
}

func printSnapshot(w io.Writer, snap discovery.Snapshot) error {
	if snap.Message != "" {
		noticeColor.Fprintln(w, snap.Message)
	}
	if snap.Result == nil {
		return nil
	}

	if s := snap.Result.Sentiment; s != nil {
		headingColor.Fprintf(w, "Audience pulse for %q: ", snap.Query)
		fmt.Fprintf(w, "%.0f%% positive, %.0f%% neutral, %.0f%% negative\n",
			s.PositivePercent, s.NeutralPercent, s.NegativePercent)
		if s.Summary != "" {
			fmt.Fprintf(w, "  %s\n", s.Summary)
		}
		fmt.Fprintln(w)
	}

	return printRecommendations(w, snap.Result.Recommendations)
}

func printRecommendations(w io.Writer, recs []models.Recommendation) error {
	t := newTable(w, "Match", "Title", "Type", "Year", "Genre", "Why")
	for _, r := range recs {
		t.add(matchColor.Sprintf("%d%%", r.DisplayScore()), r.Title, r.Type, r.Year, r.Genre, r.Reason)
	}
	return t.render()
}
