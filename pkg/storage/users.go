package storage

import (
	"context"

	"github.com/chris/escrow-marketplace/pkg/models"
)

// UserReader reads the externally managed user records.
type UserReader interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}
