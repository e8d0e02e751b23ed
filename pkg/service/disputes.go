package service

import (
	"context"
	"fmt"

	"github.com/chris/escrow-marketplace/pkg/escrow"
	"github.com/chris/escrow-marketplace/pkg/models"
	"github.com/shopspring/decimal"
)

// RaiseDispute moves a funded or delivered escrow to disputed. The dispute
// document and the escrow transition are written together.
func (s *Service) RaiseDispute(ctx context.Context, escrowID, actorID, reason string, evidence []models.Evidence) (*models.Escrow, error) {
	e, err := s.loadEscrow(ctx, escrowID)
	if err != nil {
		return nil, err
	}
	t, d, err := s.machine.RaiseDispute(e, actorID, reason, evidence)
	if err != nil {
		return nil, s.refused(e, escrow.EventRaiseDispute, err)
	}
	next, err := s.commit(ctx, e, t, func(ctx context.Context) error {
		return s.store.OpenDispute(ctx, d, t)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("dispute opened", "dispute_id", d.ID, "escrow_id", e.ID, "reported_by", d.ReportedBy)
	return next, nil
}

// GetDispute returns a dispute to either party or to a dispute admin.
func (s *Service) GetDispute(ctx context.Context, disputeID, actorID string) (*models.Dispute, error) {
	d, err := s.store.GetDispute(ctx, disputeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load dispute %s: %w", disputeID, err)
	}
	if actorID != "" && (actorID == d.ReportedBy || actorID == d.ReportedUser) {
		return d, nil
	}
	actor, err := s.loadUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.HasCapability(models.CapabilityManageDisputes) {
		return nil, fmt.Errorf("dispute %s: %w", disputeID, escrow.ErrForbidden)
	}
	return d, nil
}

// AssignDispute puts a dispute under review by the admin. Reassigning an
// unresolved dispute is allowed.
func (s *Service) AssignDispute(ctx context.Context, disputeID, adminID string) (*models.Dispute, error) {
	d, err := s.store.GetDispute(ctx, disputeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load dispute %s: %w", disputeID, err)
	}
	admin, err := s.loadUser(ctx, adminID)
	if err != nil {
		return nil, err
	}
	next, err := s.machine.AssignDispute(d, admin)
	if err != nil {
		return nil, err
	}
	if err := s.store.AssignDispute(ctx, next, d.Version); err != nil {
		return nil, err
	}
	s.logger.Info("dispute assigned", "dispute_id", d.ID, "assigned_to", admin.ID, "previous", d.AssignedTo)
	return next, nil
}

// ResolveDisputeRequest is an admin's decision. A nil RefundPercentage means 100.
type ResolveDisputeRequest struct {
	Resolution       string
	Winner           models.Winner
	RefundPercentage *decimal.Decimal
}

// ResolveDispute closes the dispute and resolves the parent escrow to
// completed or cancelled, in one atomic write.
func (s *Service) ResolveDispute(ctx context.Context, disputeID, adminID string, req ResolveDisputeRequest) (*models.Dispute, error) {
	d, err := s.store.GetDispute(ctx, disputeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load dispute %s: %w", disputeID, err)
	}
	e, err := s.loadEscrow(ctx, d.EscrowID)
	if err != nil {
		return nil, err
	}
	admin, err := s.loadUser(ctx, adminID)
	if err != nil {
		return nil, err
	}

	t, resolved, err := s.machine.ResolveDispute(e, d, admin, escrow.ResolveRequest{
		Decision:         req.Resolution,
		Winner:           req.Winner,
		RefundPercentage: req.RefundPercentage,
	})
	if err != nil {
		return nil, s.refused(e, escrow.EventResolveDispute, err)
	}
	if _, err := s.commit(ctx, e, t, func(ctx context.Context) error {
		return s.store.ResolveDispute(ctx, resolved, d.Version, t)
	}); err != nil {
		return nil, err
	}
	s.logger.Info("dispute resolved",
		"dispute_id", resolved.ID,
		"escrow_id", e.ID,
		"winner", resolved.Resolution.Winner,
		"refund_percentage", resolved.Resolution.RefundPercentage.String(),
	)
	return resolved, nil
}
