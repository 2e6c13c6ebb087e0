package media

import (
	"context"
	"strings"

	"cinemai/internal/models"
	"cinemai/shared/logging"
)

// Searcher finds a trailer video id for a title.
type Searcher interface {
	SearchTrailer(ctx context.Context, title string) (string, error)
}

// TrailerResolver turns a title and an optional link into a playable embed id.
type TrailerResolver struct {
	searcher Searcher
}

// NewTrailerResolver creates a resolver. searcher may be nil.
func NewTrailerResolver(searcher Searcher) *TrailerResolver {
	return &TrailerResolver{searcher: searcher}
}

// Resolve tries the supplied link, then the matching recommendation's trailer,
// then a trailer search. The result is never an error; ok is false when
// nothing playable was found.
func (t *TrailerResolver) Resolve(ctx context.Context, title, link string, shown *models.DiscoveryResult) (string, bool) {
	if id, ok := ExtractEmbedID(link); ok {
		return id, true
	}

	if shown != nil {
		for _, rec := range shown.Recommendations {
			if rec.Title != title {
				continue
			}
			if id, ok := ExtractEmbedID(rec.TrailerURL); ok {
				return id, true
			}
			break
		}
	}

	if t.searcher == nil || strings.TrimSpace(title) == "" {
		return "", false
	}

	id, err := t.searcher.SearchTrailer(ctx, title)
	if err != nil {
		logging.Warn().Err(err).Str("title", title).Msg("trailer search failed")
		return "", false
	}
	if len(id) != EmbedIDLength {
		return "", false
	}
	return id, true
}
