// Package catalogue turns the raw comma-delimited media table into typed records.
package catalogue

import (
	"errors"
	"strconv"
	"strings"

	"cinemai/internal/models"
)

// HeaderSentinel is the first header cell of the identifier column.
const HeaderSentinel = "show_id"

// ErrMalformedRow marks a row with fewer than two fields. Such rows are dropped.
var ErrMalformedRow = errors.New("malformed row")

// Stats describes one parse pass.
type Stats struct {
	Rows      int  // rows found in the text, header included
	HeaderRow bool // first row was discarded as a header
	Dropped   int  // rows dropped as malformed
}

// Parse turns raw text into catalogue records. It never fails.
func Parse(raw string) []models.CatalogueRecord {
	records, _ := ParseWithStats(raw)
	return records
}

// ParseWithStats is Parse plus a report of what was dropped.
func ParseWithStats(raw string) ([]models.CatalogueRecord, Stats) {
	rows := splitRows(raw)
	stats := Stats{Rows: len(rows)}

	if len(rows) > 0 && len(rows[0]) > 0 && rows[0][0] == HeaderSentinel {
		rows = rows[1:]
		stats.HeaderRow = true
	}

	records := make([]models.CatalogueRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := toRecord(row)
		if err != nil {
			stats.Dropped++
			continue
		}
		records = append(records, rec)
	}
	return records, stats
}

// splitRows runs the quoted/unquoted state machine over the input.
func splitRows(raw string) [][]string {
	var (
		rows     [][]string
		row      []string
		field    strings.Builder
		inQuotes bool
	)

	flushRow := func() {
		row = append(row, field.String())
		rows = append(rows, row)
		row = nil
		field.Reset()
	}

	for i := 0; i < len(raw); i++ {
		c := raw[i]

		if inQuotes {
			switch {
			case c == '"' && i+1 < len(raw) && raw[i+1] == '"':
				field.WriteByte('"')
				i++
			case c == '"':
				inQuotes = false
			default:
				field.WriteByte(c)
			}
			continue
		}

		switch c {
		case '"':
			inQuotes = true
		case ',':
			row = append(row, field.String())
			field.Reset()
		case '\n', '\r':
			// Blank lines do not produce rows.
			if field.Len() > 0 || len(row) > 0 {
				flushRow()
			}
			if c == '\r' && i+1 < len(raw) && raw[i+1] == '\n' {
				i++
			}
		default:
			field.WriteByte(c)
		}
	}

	if field.Len() > 0 || len(row) > 0 {
		flushRow()
	}
	return rows
}

func toRecord(row []string) (models.CatalogueRecord, error) {
	if len(row) < 2 {
		return models.CatalogueRecord{}, ErrMalformedRow
	}

	col := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}

	kind := models.KindMovie
	if col(1) == string(models.KindSeries) {
		kind = models.KindSeries
	}

	return models.CatalogueRecord{
		ShowID:      col(0),
		Kind:        kind,
		Title:       col(2),
		Director:    col(3),
		Cast:        col(4),
		Country:     col(5),
		DateAdded:   col(6),
		ReleaseYear: parseYear(col(7)),
		Rating:      col(8),
		Duration:    col(9),
		ListedIn:    col(10),
		Description: col(11),
	}, nil
}

// parseYear reads the leading integer of s, 0 when there is none.
func parseYear(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
