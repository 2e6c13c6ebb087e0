package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"cinemai/shared/logging"

	"github.com/goccy/go-json"
)

const (
	// HistoryKey is the persisted slot holding the search history.
	HistoryKey = "search_history"
	// MaxHistory caps the number of remembered queries.
	MaxHistory = 8
)

// SearchHistory is the bounded most-recent-first log of past queries.
// Entries are unique by exact string match.
type SearchHistory struct {
	kv      KeyValue
	mu      sync.Mutex
	entries []string
}

// LoadSearchHistory builds the history from kv. Unreadable or corrupt
// persisted content is logged and discarded.
func LoadSearchHistory(ctx context.Context, kv KeyValue) *SearchHistory {
	h := &SearchHistory{kv: kv}

	raw, ok, err := kv.Get(ctx, HistoryKey)
	if err != nil {
		logging.Warn().Err(err).Msg("failed to read search history, starting empty")
		return h
	}
	if !ok || raw == "" {
		return h
	}

	var stored []string
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		logging.Warn().Err(fmt.Errorf("%w: %v", ErrPersistenceCorrupt, err)).Msg("discarding search history")
		return h
	}

	for _, q := range stored {
		if strings.TrimSpace(q) == "" || contains(h.entries, q) {
			continue
		}
		h.entries = append(h.entries, q)
		if len(h.entries) == MaxHistory {
			break
		}
	}
	return h
}

// Record moves query to the front. Blank queries are ignored.
func (h *SearchHistory) Record(ctx context.Context, query string) error {
	if strings.TrimSpace(query) == "" {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	next := make([]string, 0, MaxHistory)
	next = append(next, query)
	for _, q := range h.entries {
		if q != query {
			next = append(next, q)
		}
	}
	if len(next) > MaxHistory {
		next = next[:MaxHistory]
	}
	h.entries = next
	return h.persist(ctx)
}

// Remove drops every exact match of query.
func (h *SearchHistory) Remove(ctx context.Context, query string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	next := h.entries[:0:0]
	for _, q := range h.entries {
		if q != query {
			next = append(next, q)
		}
	}
	h.entries = next
	return h.persist(ctx)
}

// Clear empties the history and deletes the persisted slot.
func (h *SearchHistory) Clear(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = nil
	if err := h.kv.Delete(ctx, HistoryKey); err != nil {
		return fmt.Errorf("failed to clear search history: %w", err)
	}
	return nil
}

// Entries returns a copy, most recent first.
func (h *SearchHistory) Entries() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.entries...)
}

func (h *SearchHistory) persist(ctx context.Context) error {
	entries := h.entries
	if entries == nil {
		entries = []string{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode search history: %w", err)
	}
	if err := h.kv.Set(ctx, HistoryKey, string(data)); err != nil {
		return fmt.Errorf("failed to save search history: %w", err)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
