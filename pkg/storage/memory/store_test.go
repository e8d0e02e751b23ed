package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chris/escrow-marketplace/pkg/models"
	"github.com/chris/escrow-marketplace/pkg/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 5, 2, 9, 30, 0, 0, time.UTC)

func seeded(t *testing.T) (*Store, *models.Escrow) {
	t.Helper()
	s := New()
	s.PutUser(&models.User{ID: "buyer-1", Email: "Buyer@Example.com"})
	e := &models.Escrow{
		ID: "esc-1", EscrowRef: "ESC1", Amount: decimal.RequireFromString("100"), Currency: models.USD,
		BuyerID: "buyer-1", SellerID: "seller-1", Status: models.StatusPending, Version: 1,
		Timeline: []models.TimelineEntry{}, CreatedAt: t0, UpdatedAt: t0,
	}
	usage := storage.UsageUpdate{UserID: "buyer-1", Next: models.MonthlyUsage{TransactionCount: 1, ResetMonth: "2025-05"}}
	require.NoError(t, s.CreateEscrow(context.Background(), e, usage))
	return s, e
}

func accept(e *models.Escrow) *models.Transition {
	next := e.Clone()
	entry := models.TimelineEntry{ID: "tl-1", Status: models.StatusAccepted, Actor: "seller-1", Timestamp: t0}
	next.Status = models.StatusAccepted
	next.Version = e.Version + 1
	next.Timeline = append(next.Timeline, entry)
	return &models.Transition{Event: "accept", From: e.Status, FromVersion: e.Version, Escrow: next, Entry: entry}
}

func TestCreateEscrow(t *testing.T) {
	s, e := seeded(t)

	u, err := s.GetUser(context.Background(), "buyer-1")
	require.NoError(t, err)
	assert.Equal(t, 1, u.MonthlyUsage.TransactionCount)

	t.Run("Duplicate Reference", func(t *testing.T) {
		dup := e.Clone()
		dup.ID = "esc-2"
		err := s.CreateEscrow(context.Background(), dup, storage.UsageUpdate{UserID: "buyer-1", Previous: u.MonthlyUsage})
		assert.ErrorIs(t, err, storage.ErrDuplicateReference)
	})

	t.Run("Stale Usage", func(t *testing.T) {
		other := e.Clone()
		other.ID, other.EscrowRef = "esc-3", "ESC3"
		err := s.CreateEscrow(context.Background(), other, storage.UsageUpdate{UserID: "buyer-1"})
		assert.ErrorIs(t, err, storage.ErrConcurrentModification)
	})
}

func TestApplyTransition(t *testing.T) {
	t.Run("Second Writer From Same Read Loses", func(t *testing.T) {
		s, e := seeded(t)
		first := accept(e)
		second := accept(e)

		require.NoError(t, s.ApplyTransition(context.Background(), first))
		assert.ErrorIs(t, s.ApplyTransition(context.Background(), second), storage.ErrConcurrentModification)

		got, err := s.GetEscrow(context.Background(), e.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusAccepted, got.Status)
		assert.Len(t, got.Timeline, 1)
	})

	t.Run("Returned Escrow Is A Copy", func(t *testing.T) {
		s, e := seeded(t)
		got, err := s.GetEscrow(context.Background(), e.ID)
		require.NoError(t, err)
		got.Status = models.StatusCancelled

		again, err := s.GetEscrow(context.Background(), e.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, again.Status)
	})
}

func TestListOverdueDeliveries(t *testing.T) {
	s, e := seeded(t)
	due := t0.Add(time.Hour)
	delivered := e.Clone()
	delivered.Status = models.StatusDelivered
	delivered.Delivery.AutoReleaseAt = &due
	s.escrows[e.ID] = delivered

	none, err := s.ListOverdueDeliveries(context.Background(), t0, 10)
	require.NoError(t, err)
	assert.Empty(t, none)

	overdue, err := s.ListOverdueDeliveries(context.Background(), due, 10)
	require.NoError(t, err)
	assert.Len(t, overdue, 1)
}

func TestDisputes(t *testing.T) {
	s, e := seeded(t)
	d := &models.Dispute{ID: "dsp-1", EscrowID: e.ID, Status: models.DisputeOpen, Version: 1}
	tr := accept(e)
	require.NoError(t, s.OpenDispute(context.Background(), d, tr))

	assigned := d.Clone()
	assigned.Status = models.DisputeUnderReview
	assigned.Version = 2
	require.NoError(t, s.AssignDispute(context.Background(), assigned, 1))
	assert.ErrorIs(t, s.AssignDispute(context.Background(), assigned, 1), storage.ErrConcurrentModification)

	got, err := s.GetDispute(context.Background(), d.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DisputeUnderReview, got.Status)
}

func TestUsersAndConnections(t *testing.T) {
	s, _ := seeded(t)

	u, err := s.GetUserByEmail(context.Background(), "buyer@example.com")
	require.NoError(t, err)
	assert.Equal(t, "buyer-1", u.ID)

	_, err = s.GetUser(context.Background(), "ghost")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.AddConnection(context.Background(), "c2", "buyer-1"))
	require.NoError(t, s.AddConnection(context.Background(), "c1", "buyer-1"))
	require.NoError(t, s.RemoveConnection(context.Background(), "c2"))
	ids, err := s.GetConnectionsByUser(context.Background(), "buyer-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, ids)
}

func TestLoadUsers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
- id: admin-1
  email: admin@example.com
  role: admin
  capabilities: [manageDisputes]
- id: seller-1
  email: seller@example.com
  kyc_status: approved
  payout_accounts:
    - id: pa-1
      verified: true
      is_default: true
`), 0o600))

	s := New()
	require.NoError(t, s.LoadUsers(path))

	admin, err := s.GetUser(context.Background(), "admin-1")
	require.NoError(t, err)
	assert.True(t, admin.HasCapability(models.CapabilityManageDisputes))

	seller, err := s.GetUser(context.Background(), "seller-1")
	require.NoError(t, err)
	_, ok := seller.VerifiedPayoutAccount()
	assert.True(t, ok)
}
