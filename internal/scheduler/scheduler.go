// Package scheduler runs the pipeline on a cron schedule and posts the leaderboard.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"betedge/engine/internal/config"
	"betedge/engine/internal/metrics"
	"betedge/engine/internal/models"
	"betedge/engine/internal/pipeline"
	"betedge/engine/internal/query"
	"betedge/engine/internal/rating"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// ErrBusy is returned by RunOnce while another run is in progress
var ErrBusy = errors.New("autopilot run already in progress")

// Runner executes one pipeline pass
type Runner interface {
	Run(ctx context.Context, opts pipeline.Options) (*pipeline.Result, error)
}

// Poster publishes a leaderboard
type Poster interface {
	Post(ctx context.Context, domain *rating.Domain, table *models.Table) error
}

// Scheduler is the autopilot: it runs the configured pipeline on AUTOPILOT_CRON,
// exports the leaderboard when EXPORT_PATH is set and posts it to the webhook.
// Runs never overlap.
type Scheduler struct {
	cfg    *config.Config
	runner Runner
	poster Poster
	cron   *cron.Cron
	now    func() time.Time

	mu sync.Mutex
}

// NewScheduler creates a new scheduler instance. poster may be nil to skip posting.
func NewScheduler(cfg *config.Config, runner Runner, poster Poster) *Scheduler {
	return &Scheduler{
		cfg:    cfg,
		runner: runner,
		poster: poster,
		cron:   cron.New(),
		now:    time.Now,
	}
}

// Start schedules the autopilot job and starts the cron
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	if _, err := s.cron.AddFunc(s.cfg.AutopilotCron, func() {
		if err := s.RunOnce(ctx); err != nil && !errors.Is(err, ErrBusy) {
			log.Error().Err(err).Msg("Autopilot run failed")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule autopilot: %w", err)
	}

	s.cron.Start()
	log.Info().
		Str("schedule", s.cfg.AutopilotCron).
		Str("domain", s.cfg.Domain).
		Bool("simulate", s.cfg.Simulate).
		Msg("Autopilot scheduled")

	return nil
}

// Stop stops the cron and waits for a running job to finish
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")
	<-s.cron.Stop().Done()
	log.Info().Msg("Scheduler stopped")
}

// RunOnce runs the pipeline once. An empty scope is logged and skipped, it is not
// an error.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	if !s.mu.TryLock() {
		log.Warn().Msg("Previous autopilot run still in progress, skipping")
		return ErrBusy
	}
	defer s.mu.Unlock()

	start := time.Now()
	defer func() {
		metrics.RecordWorkerIteration(time.Since(start).Seconds())
	}()

	opts, err := pipeline.OptionsFromConfig(s.cfg, s.now())
	if err != nil {
		return err
	}

	result, err := s.runner.Run(ctx, opts)
	if errors.Is(err, pipeline.ErrNoData) {
		log.Info().
			Err(err).
			Str("domain", opts.Domain.Key).
			Str("date", opts.Date.Format(config.DateLayout)).
			Msg("Nothing to rate, skipping post")
		return nil
	}
	if err != nil {
		metrics.RecordError("autopilot", "run")
		return fmt.Errorf("autopilot run: %w", err)
	}

	if s.cfg.ExportPath != "" {
		if err := query.Export(s.cfg.ExportPath, result.Leaderboard, s.cfg.Debug); err != nil {
			log.Error().Err(err).Str("path", s.cfg.ExportPath).Msg("Failed to export leaderboard")
		}
	}

	if s.poster != nil {
		if err := s.poster.Post(ctx, opts.Domain, result.Leaderboard); err != nil {
			return err
		}
	}

	log.Info().
		Str("run_id", result.RunID).
		Int("leaderboard", result.Leaderboard.Len()).
		Dur("duration", time.Since(start)).
		Msg("Autopilot run complete")

	return nil
}
