package storage

import (
	"context"
	"time"

	"github.com/chris/escrow-marketplace/pkg/models"
)

// ReleaseStore is the narrow interface used by the auto-release workers.
// It only needs to find overdue deliveries and apply guarded transitions.
type ReleaseStore interface {
	EscrowReader

	// ApplyTransition writes a transition conditionally, as EscrowWriter does.
	ApplyTransition(ctx context.Context, t *models.Transition) error

	// ListOverdueDeliveries returns delivered escrows whose auto-release
	// deadline is at or before now.
	ListOverdueDeliveries(ctx context.Context, now time.Time, limit int32) ([]models.Escrow, error)
}
