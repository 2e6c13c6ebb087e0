// Package discovery drives recommendation searches against the AI collaborator.
package discovery

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"cinemai/internal/models"
	"cinemai/shared/logging"
	"cinemai/shared/monitoring"
	"cinemai/shared/storage"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrTransportFailure marks a search whose AI calls did not complete.
	ErrTransportFailure = errors.New("discovery: AI collaborator unavailable")
	// ErrRefreshFailed marks a regeneration whose AI call did not complete.
	ErrRefreshFailed = errors.New("discovery: refresh failed")
)

const (
	MessageNoResults        = "No recommendations found. Try a different title or mood."
	MessageTransportFailure = "Something went wrong connecting to the AI."
	MessageExhausted        = "Could not find more similar titles."
	MessageRefreshFailed    = "Failed to refresh."
)

// Recommender is the part of the AI collaborator a search needs.
type Recommender interface {
	GetRecommendations(ctx context.Context, query string, excludeTitles []string) ([]models.Recommendation, error)
	GetSentiment(ctx context.Context, title string) (*models.SentimentSummary, error)
}

type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateSuccess State = "success"
	StateEmpty   State = "empty"
	StateFailed  State = "failed"
)

// Condition qualifies the visible state with the outcome of the last call.
type Condition string

const (
	ConditionNone             Condition = ""
	ConditionNoResults        Condition = "no_results"
	ConditionTransportFailure Condition = "transport_failure"
	ConditionExhausted        Condition = "exhausted"
	ConditionRefreshFailed    Condition = "refresh_failed"
)

// Snapshot is a copy of the orchestrator's visible state.
type Snapshot struct {
	State      State                   `json:"state"`
	Condition  Condition               `json:"condition,omitempty"`
	Message    string                  `json:"message,omitempty"`
	Query      string                  `json:"query,omitempty"`
	Result     *models.DiscoveryResult `json:"result,omitempty"`
	Generation uint64                  `json:"generation"`
	// Superseded is set on the value returned to a caller whose request
	// resolved after a newer one was started. The visible state is unchanged.
	Superseded bool  `json:"superseded,omitempty"`
	Err        error `json:"-"`
}

type SearchOptions struct {
	// Replay skips history recording (history replays, moods, digests).
	Replay bool
}

type Orchestrator struct {
	ai      Recommender
	history *storage.SearchHistory

	mu         sync.Mutex
	generation uint64
	current    Snapshot
	// settled is the last published non-loading state.
	settled Snapshot
}

// NewOrchestrator creates an idle orchestrator. history may be nil.
func NewOrchestrator(ai Recommender, history *storage.SearchHistory) *Orchestrator {
	return &Orchestrator{
		ai:      ai,
		history: history,
		current: Snapshot{State: StateIdle},
		settled: Snapshot{State: StateIdle},
	}
}

func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current
}

// Search fetches recommendations and sentiment for query in parallel. Both
// must succeed for the result to be shown. Blank queries are ignored.
func (o *Orchestrator) Search(ctx context.Context, query string, opts SearchOptions) Snapshot {
	if strings.TrimSpace(query) == "" {
		return o.Snapshot()
	}

	start := time.Now()
	gen := o.begin(Snapshot{State: StateLoading, Query: query})
	log := logging.With().
		Str("request_id", uuid.NewString()).
		Uint64("generation", gen).
		Str("query", query).
		Logger()
	log.Debug().Bool("replay", opts.Replay).Msg("discovery search started")

	if !opts.Replay && o.history != nil {
		if err := o.history.Record(ctx, query); err != nil {
			log.Warn().Err(err).Msg("failed to record search history")
		}
	}

	var (
		recs      []models.Recommendation
		sentiment *models.SentimentSummary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		recs, err = o.ai.GetRecommendations(gctx, query, nil)
		return err
	})
	g.Go(func() error {
		var err error
		sentiment, err = o.ai.GetSentiment(gctx, query)
		return err
	})
	err := g.Wait()

	next := Snapshot{Query: query}
	recs = validRecommendations(recs)
	switch {
	case err != nil:
		log.Error().Err(err).Msg("discovery search failed")
		next.State = StateFailed
		next.Condition = ConditionTransportFailure
		next.Message = MessageTransportFailure
		next.Err = ErrTransportFailure
	case len(recs) == 0:
		next.State = StateEmpty
		next.Condition = ConditionNoResults
		next.Message = MessageNoResults
	default:
		next.State = StateSuccess
		next.Result = &models.DiscoveryResult{
			Query:           query,
			Recommendations: recs,
			Sentiment:       sentiment,
		}
	}

	snap, ok := o.settle(gen, next)
	observe("search", snap, ok, start)
	log.Info().
		Str("state", string(snap.State)).
		Bool("superseded", !ok).
		Int("recommendations", len(recs)).
		Dur("duration", time.Since(start)).
		Msg("discovery search settled")
	return snap
}

// Regenerate asks for recommendations for query again, excluding the titles
// already shown. Sentiment is carried over from the visible result rather
// than refetched. When nothing new comes back or the call fails, the
// previous result stays visible with an Exhausted or RefreshFailed condition.
//
// The exclusion list is passed to the collaborator as an instruction only;
// titles it repeats anyway are not removed.
func (o *Orchestrator) Regenerate(ctx context.Context, query string, shownTitles []string) Snapshot {
	if strings.TrimSpace(query) == "" {
		return o.Snapshot()
	}

	start := time.Now()
	o.mu.Lock()
	previous := o.current
	if previous.State == StateLoading {
		previous = o.settled
	}
	o.generation++
	gen := o.generation
	loading := previous
	loading.State = StateLoading
	loading.Condition = ConditionNone
	loading.Message = ""
	loading.Err = nil
	loading.Superseded = false
	loading.Generation = gen
	o.current = loading
	o.mu.Unlock()

	log := logging.With().
		Str("request_id", uuid.NewString()).
		Uint64("generation", gen).
		Str("query", query).
		Int("excluded", len(shownTitles)).
		Logger()

	recs, err := o.ai.GetRecommendations(ctx, query, shownTitles)
	recs = validRecommendations(recs)

	next := previous
	next.Superseded = false
	next.Err = nil
	switch {
	case err != nil:
		log.Error().Err(err).Msg("discovery regeneration failed")
		next.State = restoredState(next, StateFailed)
		next.Condition = ConditionRefreshFailed
		next.Message = MessageRefreshFailed
		next.Err = ErrRefreshFailed
	case len(recs) == 0:
		next.State = restoredState(next, StateEmpty)
		next.Condition = ConditionExhausted
		next.Message = MessageExhausted
	default:
		var sentiment *models.SentimentSummary
		if previous.Result != nil && previous.Query == query {
			sentiment = previous.Result.Sentiment
		}
		next = Snapshot{
			State:  StateSuccess,
			Query:  query,
			Result: &models.DiscoveryResult{Query: query, Recommendations: recs, Sentiment: sentiment},
		}
	}

	snap, ok := o.settle(gen, next)
	observe("regenerate", snap, ok, start)
	log.Info().
		Str("state", string(snap.State)).
		Str("condition", string(snap.Condition)).
		Bool("superseded", !ok).
		Msg("discovery regeneration settled")
	return snap
}

// begin starts a new generation with the given visible state.
func (o *Orchestrator) begin(s Snapshot) uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.generation++
	s.Generation = o.generation
	o.current = s
	return o.generation
}

// settle publishes next if gen is still the latest generation. Otherwise the
// visible state is left alone and a superseded copy of it is returned.
func (o *Orchestrator) settle(gen uint64, next Snapshot) (Snapshot, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.generation {
		snap := o.current
		snap.Superseded = true
		return snap, false
	}
	next.Generation = gen
	o.current = next
	o.settled = next
	return next, true
}

// restoredState is the state shown when a regeneration falls back to the
// previous result. It is never StateLoading.
func restoredState(previous Snapshot, fallback State) State {
	if previous.Result != nil {
		return StateSuccess
	}
	return fallback
}

func validRecommendations(recs []models.Recommendation) []models.Recommendation {
	out := recs[:0:0]
	for _, r := range recs {
		if strings.TrimSpace(r.Title) == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}

func observe(op string, snap Snapshot, current bool, start time.Time) {
	outcome := string(snap.State)
	switch {
	case !current:
		outcome = "superseded"
	case snap.Condition != ConditionNone:
		outcome = string(snap.Condition)
	}
	monitoring.DiscoveryOutcomes.WithLabelValues(op, outcome).Inc()
	monitoring.DiscoveryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
