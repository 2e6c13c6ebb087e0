package discoverydigest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cinemai/internal/models"
	"cinemai/shared/ai"
	"cinemai/shared/config"
	"cinemai/shared/discovery"
	"cinemai/shared/email"
	"cinemai/shared/logging"
	"cinemai/shared/scheduler"
)

type searcher interface {
	Search(ctx context.Context, query string, opts discovery.SearchOptions) discovery.Snapshot
}

type reportSender interface {
	SendReport(report *models.DigestReport) error
}

// DigestAgent implements the scheduler.Agent interface
type DigestAgent struct {
	config       *config.Config
	orchestrator searcher
	emailSender  reportSender
	now          func() time.Time
}

// DigestMetrics holds metrics for a digest run
type DigestMetrics struct {
	Queries         int
	Succeeded       int
	Empty           int
	Failed          int
	Recommendations int
}

func (m DigestMetrics) GetSummary() string {
	return fmt.Sprintf("ran %d queries, %d with picks, %d recommendations", m.Queries, m.Succeeded, m.Recommendations)
}

func NewDigestAgent(cfg *config.Config) *DigestAgent {
	return &DigestAgent{
		config: cfg,
		now:    time.Now,
	}
}

func (d *DigestAgent) Name() string {
	return "Discovery Digest"
}

func (d *DigestAgent) Initialize(ctx context.Context) error {
	logging.Info().Str("agent", d.Name()).Msg("initializing")

	if err := d.config.ValidateDigest(); err != nil {
		return err
	}

	if d.orchestrator == nil {
		client, err := ai.NewClient(ctx, &d.config.AI)
		if err != nil {
			return fmt.Errorf("failed to create AI client: %w", err)
		}
		resilient := ai.NewResilient(client, d.config.AI.RequestsPerMinute)
		// Digest searches are replays and never touch search history.
		d.orchestrator = discovery.NewOrchestrator(resilient, nil)
		logging.Info().Str("model", d.config.AI.Model).Msg("AI client initialized")
	}

	if d.emailSender == nil {
		d.emailSender = email.NewSender(&d.config.Email)
		logging.Info().Msg("email sender initialized")
	}

	return nil
}

func (d *DigestAgent) RunOnce(ctx context.Context, events *scheduler.AgentEvents) error {
	startTime := time.Now()

	queries := d.queries()
	metrics := DigestMetrics{Queries: len(queries)}
	report := &models.DigestReport{Date: d.now(), Queries: len(queries)}
	var failed []string

	for i, query := range queries {
		logging.Info().Int("n", i+1).Int("of", len(queries)).Str("query", query).Msg("running digest query")

		snap := d.orchestrator.Search(ctx, query, discovery.SearchOptions{Replay: true})
		switch snap.State {
		case discovery.StateSuccess:
			metrics.Succeeded++
			metrics.Recommendations += len(snap.Result.Recommendations)
			report.Entries = append(report.Entries, models.DigestEntry{Query: query, Result: snap.Result})
		case discovery.StateEmpty:
			metrics.Empty++
		default:
			metrics.Failed++
			failed = append(failed, query)
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	report.Failures = metrics.Failed

	if len(queries) > 0 && metrics.Failed == len(queries) {
		return fmt.Errorf("all %d digest queries failed", len(queries))
	}
	if len(failed) > 0 && events != nil && events.OnPartialFailure != nil {
		events.OnPartialFailure(fmt.Errorf("%d queries failed: %s", len(failed), strings.Join(failed, ", ")), time.Since(startTime))
	}

	if len(report.Entries) > 0 {
		logging.Info().Int("entries", len(report.Entries)).Msg("sending digest email")
		if err := d.emailSender.SendReport(report); err != nil {
			return fmt.Errorf("failed to send digest email: %w", err)
		}
	} else {
		logging.Info().Msg("no recommendations found, skipping email")
	}

	if events != nil && events.OnSuccess != nil {
		events.OnSuccess(metrics, time.Since(startTime))
	}
	return nil
}

// queries returns the configured digest queries, trimmed, blanks dropped.
func (d *DigestAgent) queries() []string {
	var out []string
	for _, q := range d.config.Digest.Queries {
		if q = strings.TrimSpace(q); q != "" {
			out = append(out, q)
		}
	}
	return out
}
