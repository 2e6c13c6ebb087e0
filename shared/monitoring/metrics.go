package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DiscoveryOutcomes counts finished searches and regenerations by outcome.
	DiscoveryOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cinemai_discovery_outcomes_total",
		Help: "Discovery invocations by operation and outcome",
	}, []string{"operation", "outcome"})

	// DiscoveryDuration observes how long a discovery invocation took to settle.
	DiscoveryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cinemai_discovery_duration_seconds",
		Help:    "Time from request to settled discovery state",
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 8),
	}, []string{"operation"})

	// AIRequests counts AI collaborator calls by operation and result.
	AIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cinemai_ai_requests_total",
		Help: "AI collaborator calls by operation and result",
	}, []string{"operation", "result"})

	// CircuitBreakerState is 0 closed, 1 half-open, 2 open.
	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "cinemai_circuit_breaker_state",
		Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
	}, []string{"name"})
)
