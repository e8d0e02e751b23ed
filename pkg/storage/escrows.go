package storage

import (
	"context"

	"github.com/chris/escrow-marketplace/pkg/models"
)

// EscrowReader defines the interface for reading escrow data.
type EscrowReader interface {
	// GetEscrow retrieves an escrow by its ID.
	GetEscrow(ctx context.Context, escrowID string) (*models.Escrow, error)

	// ListEscrowsByUser retrieves every escrow where the user is buyer or seller, newest first.
	ListEscrowsByUser(ctx context.Context, userID string) ([]models.Escrow, error)
}

// UsageUpdate moves a user's monthly usage from Previous to Next. The write is
// conditional on Previous still being stored.
type UsageUpdate struct {
	UserID   string
	Previous models.MonthlyUsage
	Next     models.MonthlyUsage
}

// EscrowWriter defines the interface for persisting escrows. Every write is
// conditional; a stale snapshot yields ErrConcurrentModification.
type EscrowWriter interface {
	// CreateEscrow atomically stores a new escrow, claims its reference and
	// applies the buyer's usage update.
	CreateEscrow(ctx context.Context, e *models.Escrow, usage UsageUpdate) error

	// ApplyTransition writes t.Escrow only if the stored status and version
	// still equal t.From and t.FromVersion.
	ApplyTransition(ctx context.Context, t *models.Transition) error
}

// EscrowStore combines the reader and writer interfaces.
type EscrowStore interface {
	EscrowReader
	EscrowWriter
}
