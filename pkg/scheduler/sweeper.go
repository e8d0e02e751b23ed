package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Releaser completes every delivered escrow whose release deadline has passed.
type Releaser interface {
	ReleaseOverdue(ctx context.Context) (released int, err error)
}

// Sweeper runs the overdue-delivery release on a cron schedule. It is the
// server-mode counterpart of the reconciliation lambda.
type Sweeper struct {
	cron     *cron.Cron
	releaser Releaser
	schedule string
	timeout  time.Duration
	logger   *slog.Logger
}

// NewSweeper creates a Sweeper. schedule is a standard five-field cron spec or a descriptor such as "@every 1m".
func NewSweeper(releaser Releaser, schedule string, logger *slog.Logger) *Sweeper {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	return &Sweeper{
		cron:     cron.New(cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger))),
		releaser: releaser,
		schedule: schedule,
		timeout:  time.Minute,
		logger:   logger,
	}
}

// Start registers the sweep and starts the cron scheduler.
func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.RunOnce); err != nil {
		return fmt.Errorf("failed to schedule auto-release sweep %q: %w", s.schedule, err)
	}
	s.logger.Info("scheduled auto-release sweep", "schedule", s.schedule)
	s.cron.Start()
	return nil
}

// Stop stops the scheduler; the returned context is done when a running sweep finishes.
func (s *Sweeper) Stop() context.Context {
	return s.cron.Stop()
}

// RunOnce performs a single sweep.
func (s *Sweeper) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	released, err := s.releaser.ReleaseOverdue(ctx)
	if err != nil {
		s.logger.Error("auto-release sweep failed", "error", err, "released", released)
		return
	}
	if released > 0 {
		s.logger.Info("auto-release sweep finished", "released", released)
	}
}
