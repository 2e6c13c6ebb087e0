package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"cinemai/internal/models"
	"cinemai/shared/config"
	"cinemai/shared/discovery"
	"cinemai/shared/media"
	"cinemai/shared/storage"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAI struct {
	recs     []models.Recommendation
	recErr   error
	excluded []string
	chatErr  error
}

func (f *fakeAI) GetRecommendations(_ context.Context, _ string, exclude []string) ([]models.Recommendation, error) {
	f.excluded = exclude
	return f.recs, f.recErr
}

func (f *fakeAI) GetSentiment(context.Context, string) (*models.SentimentSummary, error) {
	return &models.SentimentSummary{PositivePercent: 70, Summary: "Solid"}, nil
}

func (f *fakeAI) ExplainMatch(context.Context, string, string) (string, error) {
	return "You'll love this because it is great.", nil
}

func (f *fakeAI) Chat(context.Context, []models.ChatMessage, string) (string, error) {
	if f.chatErr != nil {
		return "", f.chatErr
	}
	return "Watch Arrival.", nil
}

type fakeSearcher struct{ id string }

func (f fakeSearcher) SearchTrailer(context.Context, string) (string, error) {
	if f.id == "" {
		return "", errors.New("none")
	}
	return f.id, nil
}

type testServer struct {
	ai      *fakeAI
	history *storage.SearchHistory
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	kv := storage.NewMemoryStore()
	ai := &fakeAI{recs: []models.Recommendation{
		{Title: "Tenet", SimilarityScore: 91, TrailerURL: "https://youtu.be/LdOM0x0XDMo"},
		{Title: "Memento", SimilarityScore: 88},
	}}
	history := storage.LoadSearchHistory(ctx, kv)
	srv := NewServer(config.ServerConfig{}, Deps{
		Orchestrator: discovery.NewOrchestrator(ai, history),
		History:      history,
		WatchLater:   storage.LoadWatchLater(ctx, kv),
		Catalogue: []models.CatalogueRecord{
			{Title: "Dark", Kind: models.KindSeries, ReleaseYear: 2017, Description: "Time travel"},
			{Title: "Roma", Kind: models.KindMovie, ReleaseYear: 2020},
		},
		Trailers:  media.NewTrailerResolver(fakeSearcher{id: "aaaaaaaaaaa"}),
		Assistant: ai,
	})
	return &testServer{ai: ai, history: history, handler: srv.Router()}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestDiscoverAndSnapshot(t *testing.T) {
	ts := newTestServer(t)

	rec, out := ts.do(t, http.MethodPost, "/api/discover", map[string]any{"query": "Inception"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", out["state"])
	assert.NotContains(t, out, "Err")

	rec, out = ts.do(t, http.MethodGet, "/api/discover", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Inception", out["query"])

	rec, out = ts.do(t, http.MethodGet, "/api/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"Inception"}, out["entries"])
}

func TestDiscoverValidation(t *testing.T) {
	ts := newTestServer(t)

	rec, out := ts.do(t, http.MethodPost, "/api/discover", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", out["error"].(map[string]any)["code"])

	req := httptest.NewRequest(http.MethodPost, "/api/discover", bytes.NewBufferString("{"))
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegenerateUsesVisibleResult(t *testing.T) {
	ts := newTestServer(t)

	rec, _ := ts.do(t, http.MethodPost, "/api/discover/regenerate", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	ts.do(t, http.MethodPost, "/api/discover", map[string]any{"query": "Inception"})
	ts.ai.recs = nil
	rec, out := ts.do(t, http.MethodPost, "/api/discover/regenerate", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Tenet", "Memento"}, ts.ai.excluded)
	assert.Equal(t, "exhausted", out["condition"])
	assert.Equal(t, discovery.MessageExhausted, out["message"])
}

func TestHistoryRoutes(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	require.NoError(t, ts.history.Record(ctx, "cozy comedies"))
	require.NoError(t, ts.history.Record(ctx, "heist"))

	rec, out := ts.do(t, http.MethodDelete, "/api/history/cozy%20comedies", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"heist"}, out["entries"])

	rec, _ = ts.do(t, http.MethodDelete, "/api/history", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, ts.history.Entries())
}

func TestWatchLaterToggle(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, http.MethodPost, "/api/discover", map[string]any{"query": "Inception"})

	rec, out := ts.do(t, http.MethodPost, "/api/watch-later", map[string]any{"title": "Tenet"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, out["saved"])

	rec, out = ts.do(t, http.MethodPost, "/api/watch-later", map[string]any{"title": "dark", "source": "catalogue"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Dark", out["title"])

	_, out = ts.do(t, http.MethodGet, "/api/watch-later", nil)
	assert.Len(t, out["items"], 2)

	_, out = ts.do(t, http.MethodPost, "/api/watch-later", map[string]any{"title": "Tenet"})
	assert.Equal(t, false, out["saved"])

	rec, _ = ts.do(t, http.MethodPost, "/api/watch-later", map[string]any{"title": "Tenet", "source": "catalogue"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = ts.do(t, http.MethodPost, "/api/watch-later", map[string]any{"title": "x", "source": "elsewhere"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTrailer(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, http.MethodPost, "/api/discover", map[string]any{"query": "Inception"})

	rec, out := ts.do(t, http.MethodGet, "/api/trailer?title=Tenet", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "LdOM0x0XDMo", out["id"])
	assert.Equal(t, "https://www.youtube.com/embed/LdOM0x0XDMo?autoplay=1&controls=1", out["embed_url"])

	_, out = ts.do(t, http.MethodGet, "/api/trailer?title=Memento", nil)
	assert.Equal(t, "aaaaaaaaaaa", out["id"])

	rec, _ = ts.do(t, http.MethodGet, "/api/trailer", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFeatured(t *testing.T) {
	ts := newTestServer(t)
	rec, out := ts.do(t, http.MethodGet, "/api/catalogue/featured", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Roma", out["record"].(map[string]any)["title"])
	assert.Equal(t, "https://placehold.co/1920x1080/111/333?text=Roma", out["backdrop"])
}

func TestExplainAndChat(t *testing.T) {
	ts := newTestServer(t)

	rec, out := ts.do(t, http.MethodPost, "/api/explain", map[string]any{"title": "Dark"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "You'll love this because it is great.", out["explanation"])

	rec, out = ts.do(t, http.MethodPost, "/api/chat", map[string]any{"message": "something tense"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Watch Arrival.", out["reply"].(map[string]any)["text"])
	assert.Len(t, out["messages"], 3)

	ts.ai.chatErr = errors.New("offline")
	_, out = ts.do(t, http.MethodPost, "/api/chat", map[string]any{"message": "again"})
	assert.Equal(t, discovery.ChatApology, out["reply"].(map[string]any)["text"])

	rec, _ = ts.do(t, http.MethodPost, "/api/chat", map[string]any{"message": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthRoutesMounted(t *testing.T) {
	ts := newTestServer(t)
	rec, _ := ts.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = ts.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
