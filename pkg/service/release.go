package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chris/escrow-marketplace/pkg/escrow"
	"github.com/chris/escrow-marketplace/pkg/models"
	"github.com/chris/escrow-marketplace/pkg/storage"
)

// ReleaseOutcome says what an auto-release attempt did.
type ReleaseOutcome string

const (
	// Released means this call completed the escrow.
	Released ReleaseOutcome = "released"
	// NotDue means the escrow is delivered but its deadline is still ahead.
	NotDue ReleaseOutcome = "not_due"
	// Skipped means there is nothing to release: the escrow moved on, is
	// disputed, or another caller released it first.
	Skipped ReleaseOutcome = "skipped"
)

// ReleaseResult is the outcome of AutoRelease.
type ReleaseResult struct {
	Outcome ReleaseOutcome
	Escrow  *models.Escrow
	DueAt   *time.Time
}

// AutoRelease completes a delivered escrow whose confirmation window has
// passed. It is safe to call any number of times from any number of pollers:
// only one conditional write can win and the rest report Skipped.
func (s *Service) AutoRelease(ctx context.Context, escrowID string) (ReleaseResult, error) {
	e, err := s.loadEscrow(ctx, escrowID)
	if err != nil {
		return ReleaseResult{}, err
	}
	if e.Status != models.StatusDelivered {
		return ReleaseResult{Outcome: Skipped, Escrow: e}, nil
	}

	t, err := s.machine.AutoRelease(e)
	switch {
	case errors.Is(err, escrow.ErrAutoReleaseNotDue):
		return ReleaseResult{Outcome: NotDue, Escrow: e, DueAt: e.Delivery.AutoReleaseAt}, nil
	case errors.Is(err, escrow.ErrDisputeOpen):
		return ReleaseResult{Outcome: Skipped, Escrow: e}, nil
	case err != nil:
		return ReleaseResult{}, s.refused(e, escrow.EventAutoRelease, err)
	}

	next, err := s.apply(ctx, e, t)
	if errors.Is(err, storage.ErrConcurrentModification) {
		s.logger.Info("auto-release lost to a concurrent update", "escrow_id", e.ID)
		return ReleaseResult{Outcome: Skipped, Escrow: e}, nil
	}
	if err != nil {
		return ReleaseResult{}, err
	}
	return ReleaseResult{Outcome: Released, Escrow: next}, nil
}

// ReleaseOverdue releases every delivered escrow past its deadline, up to the
// configured batch size. A failure on one escrow does not stop the rest.
func (s *Service) ReleaseOverdue(ctx context.Context) (int, error) {
	overdue, err := s.store.ListOverdueDeliveries(ctx, s.machine.Now(), s.batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list overdue deliveries: %w", err)
	}

	released := 0
	var errs []error
	for _, e := range overdue {
		res, err := s.AutoRelease(ctx, e.ID)
		if err != nil {
			s.logger.Error("auto-release failed", "escrow_id", e.ID, "error", err)
			errs = append(errs, fmt.Errorf("escrow %s: %w", e.ID, err))
			continue
		}
		if res.Outcome == Released {
			released++
		}
	}
	if len(overdue) > 0 {
		s.logger.Info("overdue deliveries processed", "found", len(overdue), "released", released, "failed", len(errs))
	}
	return released, errors.Join(errs...)
}
