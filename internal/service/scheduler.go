package service

import (
	"context"
	"fmt"
	"time"

	"quiz-poll/internal/config"
	"quiz-poll/internal/domain"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// RetryPolicy is the linear backoff applied after a failed cycle.
type RetryPolicy struct {
	Step       time.Duration
	MaxWait    time.Duration
	MaxRetries int
}

// Backoff returns the wait before retry attempt n (1-based).
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	wait := p.Step * time.Duration(attempt)
	if p.MaxWait > 0 && wait > p.MaxWait {
		wait = p.MaxWait
	}
	return wait
}

// Scheduler runs quiz cycles until its context is cancelled.
type Scheduler struct {
	cycles   domain.CycleService
	schedule cron.Schedule
	retry    RetryPolicy
	now      func() time.Time
	wait     func(ctx context.Context, d time.Duration) error
	logger   *zap.Logger
}

// NewScheduler builds a scheduler from cfg. A cron spec takes precedence
// over the fixed interval.
func NewScheduler(cycles domain.CycleService, cfg config.ScheduleConfig, logger *zap.Logger) (*Scheduler, error) {
	var schedule cron.Schedule
	if cfg.Cron != "" {
		parsed, err := cron.ParseStandard(cfg.Cron)
		if err != nil {
			return nil, fmt.Errorf("invalid schedule.cron %q: %w", cfg.Cron, err)
		}
		schedule = parsed
	} else {
		if cfg.Interval <= 0 {
			return nil, fmt.Errorf("schedule.interval must be positive, got %s", cfg.Interval)
		}
		schedule = cron.Every(cfg.Interval)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		cycles:   cycles,
		schedule: schedule,
		retry: RetryPolicy{
			Step:       cfg.RetryStep,
			MaxWait:    cfg.RetryMaxWait,
			MaxRetries: cfg.MaxRetries,
		},
		now:    time.Now,
		wait:   sleepContext,
		logger: logger,
	}, nil
}

// Run blocks, running a cycle immediately and then on schedule. A failed
// cycle is retried with the retry policy; the attempt counter resets after
// MaxRetries failures or any successful cycle. Run returns nil once ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("Scheduler started")
	attempt := 0

	for {
		s.logger.Info("Current time", zap.String("time", s.now().Format("2006-01-02 15:04:05")))

		var delay time.Duration
		result, err := s.cycles.RunCycle(ctx)
		switch {
		case err != nil && ctx.Err() != nil:
			s.logger.Info("Scheduler stopped")
			return nil
		case err != nil:
			attempt++
			delay = s.retry.Backoff(attempt)
			s.logger.Error("Quiz cycle failed",
				zap.Int("attempt", attempt),
				zap.Int("max_retries", s.retry.MaxRetries),
				zap.Error(err),
			)
			if s.retry.MaxRetries > 0 && attempt >= s.retry.MaxRetries {
				s.logger.Error("Maximum retry attempts reached, resetting retry counter")
				attempt = 0
			}
			s.logger.Info("Waiting before retrying", zap.Duration("wait", delay))
		default:
			attempt = 0
			now := s.now()
			delay = s.schedule.Next(now).Sub(now)
			s.logger.Info("Waiting before next quiz",
				zap.String("last_status", string(result.Status)),
				zap.Duration("wait", delay),
			)
		}

		if err := s.wait(ctx, delay); err != nil {
			s.logger.Info("Scheduler stopped")
			return nil
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
