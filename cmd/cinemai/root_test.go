package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cinemai/internal/models"
	"cinemai/shared/config"
	"cinemai/shared/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalogue = `show_id,type,title,director,cast,country,date_added,release_year,rating,duration,listed_in,description
s1,TV Show,Dark,Baran bo Odar,Louis Hofmann,Germany,"December 1, 2017",2017,TV-MA,3 Seasons,"International TV Shows, Sci-Fi",A missing child sets four families on a frantic hunt.
s2,Movie,Roma,Alfonso Cuarón,Yalitza Aparicio,Mexico,"December 14, 2018",2019,R,135 min,Dramas,A year in the life of a housekeeper.
`

type fakeCompleter struct {
	rounds   [][]models.Recommendation
	calls    int
	excluded [][]string
}

func (f *fakeCompleter) GetRecommendations(_ context.Context, _ string, exclude []string) ([]models.Recommendation, error) {
	f.excluded = append(f.excluded, exclude)
	defer func() { f.calls++ }()
	if f.calls < len(f.rounds) {
		return f.rounds[f.calls], nil
	}
	return nil, nil
}

func (f *fakeCompleter) GetSentiment(context.Context, string) (*models.SentimentSummary, error) {
	return &models.SentimentSummary{PositivePercent: 75, NeutralPercent: 20, NegativePercent: 5, Summary: "Widely loved"}, nil
}

func (f *fakeCompleter) ExplainMatch(context.Context, string, string) (string, error) {
	return "", errors.New("quota exceeded")
}

func (f *fakeCompleter) Chat(_ context.Context, _ []models.ChatMessage, message string) (string, error) {
	return "You said " + message, nil
}

type harness struct {
	t    *testing.T
	opts *rootOptions
	ai   *fakeCompleter
	cfg  string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	cataloguePath := filepath.Join(dir, "catalogue.csv")
	require.NoError(t, os.WriteFile(cataloguePath, []byte(testCatalogue), 0644))
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("storage:\n  driver: memory\ncatalogue:\n  path: "+cataloguePath+"\nlogging:\n  level: disabled\n"), 0644))

	cfg, err := config.LoadFile(cfgPath)
	require.NoError(t, err)
	a, err := newApp(context.Background(), cfg)
	require.NoError(t, err)

	fake := &fakeCompleter{rounds: [][]models.Recommendation{
		{{Title: "Tenet", Type: "Movie", Year: "2020", SimilarityScore: 93, Reason: "Time inversion"}, {Title: "Memento", SimilarityScore: 88}},
		{{Title: "Primer", SimilarityScore: 80}},
	}}
	a.newAssistant = func(context.Context) (assistant, error) { return fake, nil }

	return &harness{t: t, opts: &rootOptions{app: a}, ai: fake, cfg: cfgPath}
}

func (h *harness) run(stdin string, args ...string) (string, error) {
	h.t.Helper()
	cmd := newRootCmdWith(h.opts)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", h.cfg}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestDiscoverCommand(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("", "discover", "Inception", "--more", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "75% positive")
	assert.Contains(t, out, "Tenet")
	assert.Contains(t, out, "93%")
	assert.Contains(t, out, "Primer")
	assert.Contains(t, out, "Could not find more similar titles.")
	require.Len(t, h.ai.excluded, 3)
	assert.Nil(t, h.ai.excluded[0])
	assert.Equal(t, []string{"Tenet", "Memento"}, h.ai.excluded[1])
	assert.Equal(t, []string{"Primer"}, h.ai.excluded[2])

	out, err = h.run("", "history", "list")
	require.NoError(t, err)
	assert.Equal(t, "1. Inception\n", out)
}

func TestDiscoverReplaySkipsHistory(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("", "discover", "sad", "movies", "--replay")
	require.NoError(t, err)

	out, err := h.run("", "history", "list")
	require.NoError(t, err)
	assert.Equal(t, "No recent searches.\n", out)
}

func TestHistoryCommands(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.opts.app.history.Record(ctx, "A"))
	require.NoError(t, h.opts.app.history.Record(ctx, "B"))

	_, err := h.run("", "history", "remove", "A")
	require.NoError(t, err)
	out, err := h.run("", "history", "list", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `["B"]`, out)

	_, err = h.run("", "history", "clear")
	require.NoError(t, err)
	assert.Empty(t, h.opts.app.history.Entries())
}

func TestWatchLaterCommands(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("", "discover", "Inception")
	require.NoError(t, err)

	out, err := h.run("", "watch-later", "toggle", "Tenet")
	require.NoError(t, err)
	assert.Contains(t, out, `Saved "Tenet"`)

	out, err = h.run("", "wl", "toggle", "dark")
	require.NoError(t, err)
	assert.Contains(t, out, `Saved "Dark"`)

	out, err = h.run("", "watch-later", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Time inversion")
	assert.Contains(t, out, "A missing child")

	out, err = h.run("", "watch-later", "toggle", "Tenet")
	require.NoError(t, err)
	assert.Contains(t, out, `Removed "Tenet"`)
	assert.False(t, h.opts.app.watchLater.IsSaved("Tenet"))

	_, err = h.run("", "watch-later", "toggle", "Nope")
	assert.Error(t, err)
}

func TestCatalogueCommands(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("", "catalogue", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Dark")
	assert.Contains(t, out, "Roma")

	out, err = h.run("", "catalogue", "featured")
	require.NoError(t, err)
	assert.Contains(t, out, "Roma (2019)")
	assert.Contains(t, out, "https://placehold.co/1920x1080/111/333?text=Roma")
}

func TestTrailerCommand(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("", "trailer", "--url", "https://youtu.be/dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, "https://www.youtube.com/embed/dQw4w9WgXcQ?autoplay=1&controls=1\n", out)

	_, err = h.run("", "trailer", "Unknown")
	assert.Error(t, err)
}

func TestExplainFallsBack(t *testing.T) {
	h := newHarness(t)
	out, err := h.run("", "explain", "Dark")
	require.NoError(t, err)
	assert.Contains(t, out, "We think you'll love this")
}

func TestChatCommand(t *testing.T) {
	h := newHarness(t)
	out, err := h.run("hello\n\nbye\n", "chat")
	require.NoError(t, err)
	assert.Contains(t, out, "Hi! I'm CinemAI")
	assert.Contains(t, out, "CinemAI: You said hello")
	assert.Contains(t, out, "CinemAI: You said bye")
}

type closeRecorder struct {
	storage.KeyValue
	closed int
}

func (c *closeRecorder) Close() error {
	c.closed++
	return c.KeyValue.Close()
}

func TestExecuteClosesStorageOnFailure(t *testing.T) {
	h := newHarness(t)
	kv := &closeRecorder{KeyValue: h.opts.app.kv}
	h.opts.app.kv = kv

	cmd := newRootCmdWith(h.opts)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", h.cfg, "watch-later", "toggle", "Nope"})

	err := execute(context.Background(), cmd, h.opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Nope")
	assert.Equal(t, 1, kv.closed)
}
