package storage

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"cinemai/internal/models"
	"cinemai/shared/logging"

	"github.com/goccy/go-json"
)

const (
	// WatchLaterKey is the optional persisted slot for the saved set.
	WatchLaterKey = "watch_later"

	defaultSavedReason = "Added from list"
	maxSavedScore      = 100
)

// Candidate is anything that can be saved for later: a catalogue record or
// a recommendation. Each variant adapts itself into the canonical SavedItem.
type Candidate interface {
	SavedItem() models.SavedItem
	isCandidate()
}

// CatalogueCandidate adapts a catalogue record.
type CatalogueCandidate struct {
	Record models.CatalogueRecord
}

func (CatalogueCandidate) isCandidate() {}

func (c CatalogueCandidate) SavedItem() models.SavedItem {
	r := c.Record
	item := models.SavedItem{
		Title:           r.Title,
		Type:            string(r.Kind),
		SimilarityScore: maxSavedScore,
		Reason:          firstNonEmpty(r.Description, defaultSavedReason),
		Genre:           r.ListedIn,
	}
	if item.Type == "" {
		item.Type = string(models.KindMovie)
	}
	if r.ReleaseYear != 0 {
		item.Year = strconv.Itoa(r.ReleaseYear)
	}
	return item
}

// RecommendationCandidate adapts an AI recommendation.
type RecommendationCandidate struct {
	Recommendation models.Recommendation
}

func (RecommendationCandidate) isCandidate() {}

func (c RecommendationCandidate) SavedItem() models.SavedItem {
	r := c.Recommendation
	score := r.SimilarityScore
	if score == 0 {
		score = maxSavedScore
	}
	return models.SavedItem{
		Title:           r.Title,
		Type:            firstNonEmpty(r.Type, string(models.KindMovie)),
		SimilarityScore: score,
		Reason:          firstNonEmpty(r.Reason, defaultSavedReason),
		Year:            r.Year,
		Genre:           r.Genre,
		TrailerURL:      r.TrailerURL,
		PosterURL:       r.PosterURL,
	}
}

// WatchLater is the set of saved titles, unique by title.
// With a KeyValue it snapshots itself after every toggle.
type WatchLater struct {
	kv    KeyValue
	mu    sync.RWMutex
	items []models.SavedItem
}

// NewWatchLater creates a session-only saved set.
func NewWatchLater() *WatchLater {
	return &WatchLater{}
}

// LoadWatchLater restores a saved set from kv. Corrupt content starts empty.
func LoadWatchLater(ctx context.Context, kv KeyValue) *WatchLater {
	w := &WatchLater{kv: kv}

	raw, ok, err := kv.Get(ctx, WatchLaterKey)
	if err != nil || !ok || raw == "" {
		if err != nil {
			logging.Warn().Err(err).Msg("failed to read watch later list, starting empty")
		}
		return w
	}

	var stored []models.SavedItem
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		logging.Warn().Err(fmt.Errorf("%w: %v", ErrPersistenceCorrupt, err)).Msg("discarding watch later list")
		return w
	}
	for _, item := range stored {
		if item.Title != "" && w.indexLocked(item.Title) < 0 {
			w.items = append(w.items, item)
		}
	}
	return w
}

// Toggle removes the candidate's title if saved, otherwise adds it.
// It reports whether the title is saved afterwards.
func (w *WatchLater) Toggle(ctx context.Context, c Candidate) (bool, error) {
	item := c.SavedItem()

	w.mu.Lock()
	defer w.mu.Unlock()

	saved := true
	if i := w.indexLocked(item.Title); i >= 0 {
		w.items = append(w.items[:i:i], w.items[i+1:]...)
		saved = false
	} else {
		w.items = append(w.items, item)
	}
	return saved, w.persistLocked(ctx)
}

// IsSaved reports whether title is in the set.
func (w *WatchLater) IsSaved(title string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.indexLocked(title) >= 0
}

// Items returns a copy of the saved items.
func (w *WatchLater) Items() []models.SavedItem {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]models.SavedItem(nil), w.items...)
}

func (w *WatchLater) indexLocked(title string) int {
	for i, it := range w.items {
		if it.Title == title {
			return i
		}
	}
	return -1
}

func (w *WatchLater) persistLocked(ctx context.Context) error {
	if w.kv == nil {
		return nil
	}
	items := w.items
	if items == nil {
		items = []models.SavedItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode watch later list: %w", err)
	}
	if err := w.kv.Set(ctx, WatchLaterKey, string(data)); err != nil {
		return fmt.Errorf("failed to save watch later list: %w", err)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
