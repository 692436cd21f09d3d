package scheduler

import (
	"context"
	"log/slog"
	"time"

	"content_fetcher/internal/domain"
)

// JobRunner executes a single fetch job.
type JobRunner interface {
	Run(ctx context.Context, spec domain.JobSpec) (*domain.JobResult, error)
}

type Config struct {
	Interval   time.Duration
	JobTimeout time.Duration
	Jobs       []domain.JobSpec
}

type Scheduler struct {
	runner JobRunner
	cfg    Config
	logger *slog.Logger
}

func NewScheduler(runner JobRunner, cfg Config, logger *slog.Logger) *Scheduler {
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 5 * time.Minute
	}
	return &Scheduler{
		runner: runner,
		cfg:    cfg,
		logger: logger,
	}
}

// Start runs every configured job once, then again on each tick, until ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.cfg.Interval, "jobs", len(s.cfg.Jobs))

	s.runAll(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runAll(ctx)
		}
	}
}

func (s *Scheduler) runAll(ctx context.Context) {
	for _, spec := range s.cfg.Jobs {
		if ctx.Err() != nil {
			return
		}
		s.runJob(ctx, spec)
	}
}

func (s *Scheduler) runJob(ctx context.Context, spec domain.JobSpec) {
	jobCtx, cancel := context.WithTimeout(ctx, s.cfg.JobTimeout)
	defer cancel()

	result, err := s.runner.Run(jobCtx, spec)
	if err != nil {
		s.logger.Error("scheduled job rejected",
			"platform", spec.Platform,
			"source_id", spec.SourceID,
			"error", err,
		)
		return
	}

	s.logger.Info("scheduled job finished",
		"run_id", result.RunID,
		"platform", result.Platform,
		"status", result.Status,
		"items_fetched", result.ItemsFetched,
		"new_items", result.NewItems,
		"errors", len(result.ErrorMessages),
	)
}
