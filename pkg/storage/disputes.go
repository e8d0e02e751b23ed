package storage

import (
	"context"

	"github.com/chris/escrow-marketplace/pkg/models"
)

// DisputeStore persists dispute documents together with their escrow transitions.
type DisputeStore interface {
	GetDispute(ctx context.Context, disputeID string) (*models.Dispute, error)

	// OpenDispute creates d and applies t in one atomic write.
	OpenDispute(ctx context.Context, d *models.Dispute, t *models.Transition) error

	// AssignDispute writes d if the stored version equals expectedVersion.
	AssignDispute(ctx context.Context, d *models.Dispute, expectedVersion int64) error

	// ResolveDispute writes d and applies t in one atomic write, conditional on
	// both the dispute version and the escrow status/version.
	ResolveDispute(ctx context.Context, d *models.Dispute, expectedVersion int64, t *models.Transition) error
}
