package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	discoverydigest "cinemai/agents/discovery-digest"
	"cinemai/shared/config"
	"cinemai/shared/logging"
	"cinemai/shared/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Error().Err(err).Msg("failed to load configuration")
		os.Exit(1)
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	// Create context that responds to signals
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	agent := discoverydigest.NewDigestAgent(cfg)
	s := scheduler.New(cfg, agent)

	if len(os.Args) > 1 && os.Args[1] == "--once" {
		logging.Info().Msg("running once")
		if err := agent.Initialize(ctx); err != nil {
			logging.Error().Err(err).Msg("failed to initialize agent")
			os.Exit(1)
		}
		if err := s.RunOnce(ctx); err != nil {
			logging.Error().Err(err).Msg("run failed")
			os.Exit(1)
		}
		return
	}

	logging.Info().Msg("starting scheduler")
	if err := s.Start(ctx); err != nil && ctx.Err() == nil {
		logging.Error().Err(err).Msg("scheduler failed")
		os.Exit(1)
	}
}
