package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"cinemai/shared/config"
	"cinemai/shared/logging"
	"cinemai/shared/monitoring"

	"github.com/robfig/cron/v3"
)

// Metrics defines the common interface for agent metrics
type Metrics interface {
	// GetSummary returns a human-readable summary of the run
	GetSummary() string
}

// AgentEvents provides callbacks for monitoring agent execution
type AgentEvents struct {
	OnSuccess         func(metrics Metrics, duration time.Duration)
	OnPartialFailure  func(err error, duration time.Duration)
	OnCriticalFailure func(err error, duration time.Duration)
}

// Agent defines the interface that all agents must implement
type Agent interface {
	Name() string
	RunOnce(ctx context.Context, events *AgentEvents) error
	Initialize(ctx context.Context) error
}

// Scheduler manages the execution of agents on a schedule
type Scheduler struct {
	config  *config.Config
	monitor *monitoring.Monitor
	agent   Agent
	cron    *cron.Cron
}

func New(cfg *config.Config, agent Agent) *Scheduler {
	return &Scheduler{
		config:  cfg,
		monitor: monitoring.NewMonitor(),
		agent:   agent,
		// Prevent overlapping runs
		cron: cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
	}
}

func (s *Scheduler) Monitor() *monitoring.Monitor {
	return s.monitor
}

func (s *Scheduler) Start(ctx context.Context) error {
	if err := s.agent.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize agent: %w", err)
	}

	healthServer := monitoring.NewHealthServer(s.monitor, strconv.Itoa(s.config.Server.HealthPort))
	healthServer.Start()
	defer healthServer.Shutdown(context.Background())

	if _, err := s.cron.AddFunc(s.config.Digest.Schedule, func() {
		if err := s.RunOnce(ctx); err != nil {
			logging.Error().Err(err).Str("agent", s.agent.Name()).Msg("scheduled run failed")
		}
	}); err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	logging.Info().Str("agent", s.agent.Name()).Str("schedule", s.config.Digest.Schedule).Msg("scheduler started")
	s.cron.Start()

	<-ctx.Done()
	logging.Info().Str("agent", s.agent.Name()).Msg("scheduler stopped")
	<-s.cron.Stop().Done()
	return ctx.Err()
}

func (s *Scheduler) RunOnce(ctx context.Context) error {
	startTime := time.Now()
	agentName := s.agent.Name()

	logging.Info().Str("agent", agentName).Msg("starting run")

	events := &AgentEvents{
		OnSuccess: func(metrics Metrics, duration time.Duration) {
			s.monitor.RecordSuccess(metrics.GetSummary(), duration)
		},
		OnPartialFailure: func(err error, duration time.Duration) {
			s.monitor.RecordPartialFailure(fmt.Errorf("%s partial failure: %w", agentName, err), duration)
		},
		OnCriticalFailure: func(err error, duration time.Duration) {
			s.monitor.RecordCriticalFailure(fmt.Errorf("%s critical failure: %w", agentName, err), duration)
		},
	}

	if err := s.agent.RunOnce(ctx, events); err != nil {
		duration := time.Since(startTime)
		s.monitor.RecordCriticalFailure(fmt.Errorf("%s failed: %w", agentName, err), duration)
		return fmt.Errorf("%s run failed: %w", agentName, err)
	}

	return nil
}
