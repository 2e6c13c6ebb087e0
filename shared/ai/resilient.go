package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cinemai/internal/models"
	"cinemai/shared/logging"
	"cinemai/shared/monitoring"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

const breakerName = "gemini"

// Resilient wraps a Completer with a rate limiter and a circuit breaker.
// An open circuit fails fast with gobreaker.ErrOpenState.
type Resilient struct {
	next    Completer
	cb      *gobreaker.CircuitBreaker[any]
	limiter *rate.Limiter
}

// NewResilient paces calls to requestsPerMinute (zero or less is unlimited) and opens the
// circuit after 5 consecutive failures for 30 seconds.
func NewResilient(next Completer, requestsPerMinute int) *Resilient {
	limit := rate.Inf
	if requestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(requestsPerMinute))
	}

	monitoring.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// A cancelled sibling request is not a backend failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			monitoring.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})

	// Burst of 2 lets the paired recommendation and sentiment calls go out together.
	return &Resilient{next: next, cb: cb, limiter: rate.NewLimiter(limit, 2)}
}

func (r *Resilient) GetRecommendations(ctx context.Context, query string, excludeTitles []string) ([]models.Recommendation, error) {
	return execute(ctx, r, "recommendations", func() ([]models.Recommendation, error) {
		return r.next.GetRecommendations(ctx, query, excludeTitles)
	})
}

func (r *Resilient) GetSentiment(ctx context.Context, title string) (*models.SentimentSummary, error) {
	return execute(ctx, r, "sentiment", func() (*models.SentimentSummary, error) {
		return r.next.GetSentiment(ctx, title)
	})
}

func (r *Resilient) ExplainMatch(ctx context.Context, title, userContext string) (string, error) {
	return execute(ctx, r, "explain", func() (string, error) {
		return r.next.ExplainMatch(ctx, title, userContext)
	})
}

func (r *Resilient) Chat(ctx context.Context, history []models.ChatMessage, message string) (string, error) {
	return execute(ctx, r, "chat", func() (string, error) {
		return r.next.Chat(ctx, history, message)
	})
}

// State exposes the breaker state for status reporting.
func (r *Resilient) State() gobreaker.State {
	return r.cb.State()
}

func execute[T any](ctx context.Context, r *Resilient, op string, fn func() (T, error)) (T, error) {
	var zero T

	if err := r.limiter.Wait(ctx); err != nil {
		monitoring.AIRequests.WithLabelValues(op, "rate_limited").Inc()
		return zero, fmt.Errorf("rate limit wait for %s: %w", op, err)
	}

	out, err := r.cb.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		result := "failure"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			result = "rejected"
		}
		monitoring.AIRequests.WithLabelValues(op, result).Inc()
		return zero, err
	}
	monitoring.AIRequests.WithLabelValues(op, "success").Inc()

	typed, ok := out.(T)
	if !ok && out != nil {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", out)
	}
	return typed, nil
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
