package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchHistoryRecordOrdering(t *testing.T) {
	ctx := context.Background()
	h := LoadSearchHistory(ctx, NewMemoryStore())

	for _, q := range []string{"A", "B", "A", "C"} {
		require.NoError(t, h.Record(ctx, q))
	}
	assert.Equal(t, []string{"C", "A", "B"}, h.Entries())
}

func TestSearchHistoryIgnoresBlank(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryStore()
	h := LoadSearchHistory(ctx, kv)

	require.NoError(t, h.Record(ctx, ""))
	require.NoError(t, h.Record(ctx, "   "))
	assert.Empty(t, h.Entries())

	_, ok, _ := kv.Get(ctx, HistoryKey)
	assert.False(t, ok)
}

func TestSearchHistoryExactMatchOnly(t *testing.T) {
	ctx := context.Background()
	h := LoadSearchHistory(ctx, NewMemoryStore())

	require.NoError(t, h.Record(ctx, "Dark"))
	require.NoError(t, h.Record(ctx, "dark"))
	require.NoError(t, h.Record(ctx, "Dark "))
	assert.Equal(t, []string{"Dark ", "dark", "Dark"}, h.Entries())
}

func TestSearchHistoryCap(t *testing.T) {
	ctx := context.Background()
	h := LoadSearchHistory(ctx, NewMemoryStore())

	for i := 0; i < 20; i++ {
		require.NoError(t, h.Record(ctx, fmt.Sprintf("q%d", i)))
		assert.LessOrEqual(t, len(h.Entries()), MaxHistory)
	}
	entries := h.Entries()
	require.Len(t, entries, MaxHistory)
	assert.Equal(t, "q19", entries[0])
	assert.Equal(t, "q12", entries[MaxHistory-1])
}

func TestSearchHistoryPersistsAndReloads(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryStore()

	h := LoadSearchHistory(ctx, kv)
	require.NoError(t, h.Record(ctx, "cozy comedies"))
	require.NoError(t, h.Record(ctx, "dark thrillers"))
	require.NoError(t, h.Remove(ctx, "cozy comedies"))

	raw, ok, err := kv.Get(ctx, HistoryKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `["dark thrillers"]`, raw)

	reloaded := LoadSearchHistory(ctx, kv)
	assert.Equal(t, []string{"dark thrillers"}, reloaded.Entries())
}

func TestSearchHistoryClearDeletesSlot(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryStore()
	h := LoadSearchHistory(ctx, kv)
	require.NoError(t, h.Record(ctx, "anime"))

	require.NoError(t, h.Clear(ctx))
	assert.Empty(t, h.Entries())
	_, ok, _ := kv.Get(ctx, HistoryKey)
	assert.False(t, ok)
}

func TestSearchHistoryCorruptFailsSoft(t *testing.T) {
	ctx := context.Background()
	for name, raw := range map[string]string{
		"not json":    "{{{",
		"wrong shape": `{"a":1}`,
	} {
		t.Run(name, func(t *testing.T) {
			kv := NewMemoryStore()
			require.NoError(t, kv.Set(ctx, HistoryKey, raw))

			h := LoadSearchHistory(ctx, kv)
			assert.Empty(t, h.Entries())
			require.NoError(t, h.Record(ctx, "fresh"))
			assert.Equal(t, []string{"fresh"}, h.Entries())
		})
	}
}

func TestSearchHistoryNormalizesLoadedContent(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryStore()
	require.NoError(t, kv.Set(ctx, HistoryKey, `["a","a","","b","c","d","e","f","g","h","i"]`))

	h := LoadSearchHistory(ctx, kv)
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f", "g", "h"}, h.Entries())
}

type failingKV struct{ MemoryStore }

func (f *failingKV) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("disk on fire")
}

func (f *failingKV) Set(context.Context, string, string) error {
	return errors.New("disk on fire")
}

func TestSearchHistoryBackendErrors(t *testing.T) {
	ctx := context.Background()
	h := LoadSearchHistory(ctx, &failingKV{})
	assert.Empty(t, h.Entries())

	err := h.Record(ctx, "x")
	assert.Error(t, err)
	assert.Equal(t, []string{"x"}, h.Entries())
}
