package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/helios/fss/internal/domain"
	"github.com/helios/fss/internal/infrastructure/metrics"
)

// Pipeline defines the evaluation behavior the scheduler drives.
type Pipeline interface {
	Run(ctx context.Context, asOf time.Time) (*domain.Snapshot, error)
}

// Scheduler runs the evaluation pipeline on a fixed interval.
type Scheduler struct {
	pipeline Pipeline
	metrics  *metrics.Metrics
	logger   zerolog.Logger
	interval time.Duration
}

// Config for Scheduler.
type Config struct {
	Pipeline Pipeline
	Metrics  *metrics.Metrics
	Logger   zerolog.Logger
	Interval time.Duration // defaults to 24h
}

// New creates a new Scheduler.
func New(cfg Config) *Scheduler {
	if cfg.Interval == 0 {
		cfg.Interval = 24 * time.Hour
	}

	return &Scheduler{
		pipeline: cfg.Pipeline,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
		interval: cfg.Interval,
	}
}

// Start begins the evaluation worker.
// It runs continuously until the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info().
		Dur("interval", s.interval).
		Msg("scheduler started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Evaluate immediately on start
	s.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("scheduler shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// runOnce runs one evaluation and records its outcome.
func (s *Scheduler) runOnce(ctx context.Context) {
	started := time.Now()

	snapshot, err := s.pipeline.Run(ctx, started.UTC())
	elapsed := time.Since(started).Seconds()

	if err != nil {
		if s.metrics != nil {
			s.metrics.ObserveRun("failure", elapsed)
		}
		s.logger.Error().Err(err).Msg("evaluation run failed")

		return
	}

	if s.metrics != nil {
		s.metrics.ObserveRun("success", elapsed)

		recommended, _ := snapshot.Recommendation.RecommendedAmount.Float64()
		s.metrics.ObserveSnapshot(
			recommended,
			string(snapshot.Recommendation.SafetyLevel),
			snapshot.Stale(),
			len(snapshot.Obligations),
			len(snapshot.GoalSuggestions),
		)
	}

	s.logger.Info().
		Str("snapshot_id", snapshot.ID).
		Str("recommended", snapshot.Recommendation.RecommendedAmount.String()).
		Str("safety_level", string(snapshot.Recommendation.SafetyLevel)).
		Bool("stale", snapshot.Stale()).
		Msg("evaluation run published")
}
