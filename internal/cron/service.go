package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/artisanmarket/cart-backend/pkg/logger"
	"github.com/artisanmarket/cart-backend/pkg/metrics"
)

const defaultInterval = time.Hour

// Job is one maintenance task run on every scheduler tick.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

type SchedulerParams struct {
	Logger   *logger.Logger
	Jobs     []Job
	Lock     Lock
	Metrics  *metrics.JobMetrics
	Interval time.Duration
}

// Scheduler runs its jobs immediately and then on a fixed cadence. Only the
// instance holding Lock runs a cycle; the rest skip it.
type Scheduler struct {
	logg     *logger.Logger
	jobs     []Job
	lock     Lock
	metrics  *metrics.JobMetrics
	interval time.Duration
}

func NewScheduler(params SchedulerParams) (*Scheduler, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	lock := params.Lock
	if lock == nil {
		lock = NewLocalLock()
	}
	interval := params.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	jobs := make([]Job, 0, len(params.Jobs))
	for _, job := range params.Jobs {
		if job != nil {
			jobs = append(jobs, job)
		}
	}
	return &Scheduler{
		logg:     params.Logger,
		jobs:     jobs,
		lock:     lock,
		metrics:  params.Metrics,
		interval: interval,
	}, nil
}

// Run blocks until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.runCycle(ctx); err != nil {
		s.logg.Error(ctx, "scheduled run failed", err)
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := s.runCycle(ctx); err != nil {
				s.logg.Error(ctx, "scheduled run failed", err)
			}
		}
	}
}

func (s *Scheduler) runCycle(ctx context.Context) error {
	locked, err := s.lock.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("lock acquire: %w", err)
	}
	if !locked {
		s.logg.Debug(ctx, "another instance holds the scheduler lock; skipping cycle")
		return nil
	}
	defer func() {
		if relErr := s.lock.Release(context.WithoutCancel(ctx)); relErr != nil {
			s.logg.Error(ctx, "failed to release scheduler lock", relErr)
		}
	}()

	for _, job := range s.jobs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.runJob(ctx, job)
	}
	return nil
}

func (s *Scheduler) runJob(ctx context.Context, job Job) {
	jobCtx := s.logg.WithFields(ctx, map[string]any{"job": job.Name(), "event": "cron.job"})
	start := time.Now()
	err := job.Run(jobCtx)
	duration := time.Since(start)
	s.metrics.Observe(job.Name(), duration, err)

	jobCtx = s.logg.WithField(jobCtx, "duration_ms", duration.Milliseconds())
	if err != nil {
		s.logg.Error(jobCtx, "job failed", err)
		return
	}
	s.logg.Debug(jobCtx, "job completed")
}
