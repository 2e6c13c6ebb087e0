package catalogue

import (
	"fmt"
	"math/rand/v2"
	"os"
	"strings"

	"cinemai/internal/models"
	"cinemai/shared/logging"
)

// LoadFile reads and parses the catalogue text at path.
func LoadFile(path string) ([]models.CatalogueRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalogue %s: %w", path, err)
	}

	records, stats := ParseWithStats(string(data))
	evt := logging.Info()
	if stats.Dropped > 0 {
		evt = logging.Warn().AnErr("reason", ErrMalformedRow)
	}
	evt.Str("path", path).
		Int("records", len(records)).
		Int("dropped", stats.Dropped).
		Bool("header", stats.HeaderRow).
		Msg("catalogue loaded")

	return records, nil
}

// FeaturedSince is the release year a featured title must be newer than.
const FeaturedSince = 2018

// Featured picks a random movie released after FeaturedSince.
// pick returns a value in [0, n); nil uses math/rand.
func Featured(records []models.CatalogueRecord, pick func(n int) int) (models.CatalogueRecord, bool) {
	var candidates []models.CatalogueRecord
	for _, r := range records {
		if r.Kind == models.KindMovie && r.ReleaseYear > FeaturedSince {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		return models.CatalogueRecord{}, false
	}
	if pick == nil {
		pick = rand.IntN
	}
	return candidates[pick(len(candidates))], true
}

// Find returns the record titled title, preferring an exact match over a
// case-insensitive one.
func Find(records []models.CatalogueRecord, title string) (models.CatalogueRecord, bool) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.CatalogueRecord{}, false
	}
	for _, r := range records {
		if r.Title == title {
			return r, true
		}
	}
	for _, r := range records {
		if strings.EqualFold(r.Title, title) {
			return r, true
		}
	}
	return models.CatalogueRecord{}, false
}
