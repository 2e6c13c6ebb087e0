package monitoring

import (
	"fmt"
	"sync"
	"time"

	"cinemai/shared/logging"
)

// Monitor records the outcome of the latest scheduled run.
type Monitor struct {
	mu             sync.RWMutex
	lastRunSuccess bool
	lastRunTime    time.Time
	lastSummary    string
}

func NewMonitor() *Monitor {
	return &Monitor{}
}

func (m *Monitor) RecordSuccess(summary string, duration time.Duration) {
	m.mu.Lock()
	m.lastRunSuccess = true
	m.lastRunTime = time.Now()
	m.lastSummary = summary
	m.mu.Unlock()

	logging.Info().Str("summary", summary).Dur("took", duration).Msg("run completed successfully")
}

// RecordPartialFailure logs without changing health.
func (m *Monitor) RecordPartialFailure(err error, duration time.Duration) {
	logging.Warn().Err(err).Dur("took", duration).Msg("partial failure")
}

func (m *Monitor) RecordCriticalFailure(err error, duration time.Duration) {
	m.mu.Lock()
	m.lastRunSuccess = false
	m.lastRunTime = time.Now()
	m.lastSummary = err.Error()
	m.mu.Unlock()

	logging.Error().Err(err).Dur("took", duration).Msg("critical failure")
}

// IsHealthy is true before the first run and after a successful one.
func (m *Monitor) IsHealthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.lastRunTime.IsZero() {
		return true
	}
	return m.lastRunSuccess
}

func (m *Monitor) GetStatusSummary() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.lastRunTime.IsZero() {
		return "No runs yet"
	}
	if m.lastRunSuccess {
		return fmt.Sprintf("Last run: %s (%s)", m.lastRunTime.Format("Jan 2 15:04"), m.lastSummary)
	}
	return fmt.Sprintf("Last run failed: %s (%s)", m.lastRunTime.Format("Jan 2 15:04"), m.lastSummary)
}
