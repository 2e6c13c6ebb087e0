package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"cinemai/internal/models"
	"cinemai/shared/ai"
	"cinemai/shared/catalogue"
	"cinemai/shared/config"
	"cinemai/shared/logging"
	"cinemai/shared/media"
	"cinemai/shared/storage"
	"cinemai/shared/youtube"

	"github.com/goccy/go-json"
)

// lastResultKey holds the most recent discovery result so later invocations
// can save or play what was shown.
const lastResultKey = "last_discovery"

// app wires the stores and collaborators for one CLI invocation.
type app struct {
	cfg        *config.Config
	kv         storage.KeyValue
	history    *storage.SearchHistory
	watchLater *storage.WatchLater

	// newAssistant is replaced in tests.
	newAssistant func(ctx context.Context) (assistant, error)
	records      []models.CatalogueRecord
	loaded       bool
}

type assistant interface {
	ai.Completer
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	kv, err := storage.Open(cfg.Storage.Driver, cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Driver, err)
	}
	a := &app{
		cfg:        cfg,
		kv:         kv,
		history:    storage.LoadSearchHistory(ctx, kv),
		watchLater: storage.LoadWatchLater(ctx, kv),
	}
	a.newAssistant = a.geminiAssistant
	return a, nil
}

func (a *app) Close() error {
	return a.kv.Close()
}

func (a *app) geminiAssistant(ctx context.Context) (assistant, error) {
	if err := a.cfg.ValidateAI(); err != nil {
		return nil, err
	}
	client, err := ai.NewClient(ctx, &a.cfg.AI)
	if err != nil {
		return nil, err
	}
	return ai.NewResilient(client, a.cfg.AI.RequestsPerMinute), nil
}

// catalogue loads the catalogue once. A missing file yields no records.
func (a *app) catalogue() ([]models.CatalogueRecord, error) {
	if a.loaded {
		return a.records, nil
	}
	records, err := catalogue.LoadFile(a.cfg.Catalogue.Path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if err != nil {
		logging.Warn().Str("path", a.cfg.Catalogue.Path).Msg("catalogue file not found")
	}
	a.records, a.loaded = records, true
	return records, nil
}

// trailers uses YouTube search when credentials are configured.
func (a *app) trailers(ctx context.Context) *media.TrailerResolver {
	if !a.cfg.YouTube.Enabled() {
		return media.NewTrailerResolver(nil)
	}
	client, err := youtube.NewClient(ctx, &a.cfg.YouTube)
	if err != nil {
		logging.Warn().Err(err).Msg("trailer search disabled")
		return media.NewTrailerResolver(nil)
	}
	return media.NewTrailerResolver(client)
}

func (a *app) saveLastResult(ctx context.Context, result *models.DiscoveryResult) {
	if result == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := a.kv.Set(ctx, lastResultKey, string(data)); err != nil {
		logging.Warn().Err(err).Msg("failed to save last discovery result")
	}
}

func (a *app) lastResult(ctx context.Context) *models.DiscoveryResult {
	raw, ok, err := a.kv.Get(ctx, lastResultKey)
	if err != nil || !ok {
		return nil
	}
	var result models.DiscoveryResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		logging.Warn().Err(fmt.Errorf("%w: %v", storage.ErrPersistenceCorrupt, err)).Msg("ignoring last discovery result")
		return nil
	}
	return &result
}
