package escrow

import (
	"fmt"
	"strings"
	"time"

	"github.com/chris/escrow-marketplace/pkg/models"
	"github.com/shopspring/decimal"
)

var (
	fullRefund = decimal.NewFromInt(100)
	noRefund   = decimal.Zero
)

// ClampRefundPercentage defaults a missing percentage to 100 and clamps to [0, 100].
func ClampRefundPercentage(p *decimal.Decimal) decimal.Decimal {
	if p == nil {
		return fullRefund
	}
	switch {
	case p.IsNegative():
		return noRefund
	case p.GreaterThan(fullRefund):
		return fullRefund
	default:
		return *p
	}
}

// RaiseDispute moves a funded or delivered escrow to disputed and returns
// the new dispute document. The two must be persisted together.
func (m *Machine) RaiseDispute(e *models.Escrow, actorID, reason string, evidence []models.Evidence) (*models.Transition, *models.Dispute, error) {
	to, err := allowedTarget(e, EventRaiseDispute, "")
	if err != nil {
		return nil, nil, err
	}
	if !e.IsParticipant(actorID) {
		return nil, nil, reject(e, EventRaiseDispute, to, ErrForbidden, "only a participant can raise a dispute")
	}
	if e.Dispute.IsDisputed {
		return nil, nil, reject(e, EventRaiseDispute, to, ErrDisputeOpen, "a dispute was already raised on this escrow")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, nil, invalid("reason", "is required")
	}
	if len(reason) > MaxReasonLength {
		return nil, nil, invalid("reason", "must be at most %d characters", MaxReasonLength)
	}

	disputeID := m.newID()
	t := m.apply(e, EventRaiseDispute, to, actorID, reason, func(next *models.Escrow, _ time.Time) {
		next.Dispute = models.DisputeInfo{
			IsDisputed: true,
			DisputeID:  disputeID,
			RaisedBy:   actorID,
			Reason:     reason,
			Status:     models.DisputeOpen,
		}
	})
	d := &models.Dispute{
		ID:           disputeID,
		EscrowID:     e.ID,
		ReportedBy:   actorID,
		ReportedUser: e.Counterparty(actorID),
		Reason:       reason,
		Evidence:     append([]models.Evidence(nil), evidence...),
		Status:       models.DisputeOpen,
		Version:      1,
		CreatedAt:    t.Entry.Timestamp,
		UpdatedAt:    t.Entry.Timestamp,
	}
	return t, d, nil
}

// AssignDispute puts a dispute under review by admin. Reassigning an open or
// under-review dispute is allowed.
func (m *Machine) AssignDispute(d *models.Dispute, admin *models.User) (*models.Dispute, error) {
	if admin == nil || !admin.HasCapability(models.CapabilityManageDisputes) {
		return nil, fmt.Errorf("assign dispute %s: %w", d.ID, ErrForbidden)
	}
	if d.Status == models.DisputeResolved {
		return nil, fmt.Errorf("assign dispute %s: %w", d.ID, ErrAlreadyResolved)
	}
	now := m.now()
	next := d.Clone()
	next.Status = models.DisputeUnderReview
	next.AssignedTo = admin.ID
	next.AssignedAt = &now
	next.UpdatedAt = now
	next.Version = d.Version + 1
	return next, nil
}

// ResolveRequest is an admin's decision on a dispute.
type ResolveRequest struct {
	Decision         string
	Winner           models.Winner
	RefundPercentage *decimal.Decimal
}

// refundPercentage maps the winner onto the share of the amount returned to
// the buyer. reportedBy and reportedUser are first resolved to buyer or seller.
func refundPercentage(e *models.Escrow, d *models.Dispute, req ResolveRequest) (decimal.Decimal, error) {
	switch req.Winner {
	case models.WinnerRefund, models.WinnerSplit:
		return ClampRefundPercentage(req.RefundPercentage), nil
	case models.WinnerReportedBy, models.WinnerReportedUser:
		winner := d.ReportedBy
		if req.Winner == models.WinnerReportedUser {
			winner = d.ReportedUser
		}
		switch winner {
		case e.BuyerID:
			return fullRefund, nil
		case e.SellerID:
			return noRefund, nil
		}
		return decimal.Zero, &InvariantError{EscrowID: e.ID, Detail: fmt.Sprintf("dispute %s names %q who is not a participant", d.ID, winner)}
	}
	return decimal.Zero, &ValidationError{Field: "winner", Message: fmt.Sprintf("unknown winner %q", req.Winner)}
}

// resolvedStatus completes the escrow when the seller is still owed part of
// it after their fee, whatever the winner. Otherwise it is cancelled.
func resolvedStatus(e *models.Escrow, release decimal.Decimal) models.EscrowStatus {
	if release.Sub(e.Payment.SellerFee).IsPositive() {
		return models.StatusCompleted
	}
	return models.StatusCancelled
}

// ResolveDispute closes a dispute and resolves the parent escrow out of
// disputed. Both results must be persisted together.
func (m *Machine) ResolveDispute(e *models.Escrow, d *models.Dispute, admin *models.User, req ResolveRequest) (*models.Transition, *models.Dispute, error) {
	if admin == nil || !admin.HasCapability(models.CapabilityManageDisputes) {
		return nil, nil, fmt.Errorf("resolve dispute %s: %w", d.ID, ErrForbidden)
	}
	if d.Status == models.DisputeResolved {
		return nil, nil, fmt.Errorf("resolve dispute %s: %w", d.ID, ErrAlreadyResolved)
	}
	if d.EscrowID != e.ID || e.Dispute.DisputeID != d.ID {
		return nil, nil, &InvariantError{EscrowID: e.ID, Detail: fmt.Sprintf("dispute %s does not belong to this escrow", d.ID)}
	}
	decision := strings.TrimSpace(req.Decision)
	if decision == "" {
		return nil, nil, invalid("resolution", "is required")
	}
	if !req.Winner.Valid() {
		return nil, nil, invalid("winner", "must be one of reportedBy, reportedUser, split, refund")
	}
	pct, err := refundPercentage(e, d, req)
	if err != nil {
		return nil, nil, err
	}
	if _, err := allowedTarget(e, EventResolveDispute, ""); err != nil {
		return nil, nil, err
	}
	if e.Payment == nil {
		return nil, nil, &InvariantError{EscrowID: e.ID, Detail: "disputed escrow has no payment snapshot"}
	}
	refundAmount := models.Round2(e.Amount.Mul(pct).Div(fullRefund))
	releaseAmount := e.Amount.Sub(refundAmount)
	to, err := allowedTarget(e, EventResolveDispute, resolvedStatus(e, releaseAmount))
	if err != nil {
		return nil, nil, err
	}

	now := m.now()
	resolution := models.Resolution{
		Decision:         decision,
		Winner:           req.Winner,
		RefundPercentage: pct,
		RefundAmount:     refundAmount,
		ReleaseAmount:    releaseAmount,
		ResolvedBy:       admin.ID,
		ResolvedAt:       now,
	}

	t := m.apply(e, EventResolveDispute, to, admin.ID, "dispute resolved: "+decision, func(next *models.Escrow, at time.Time) {
		r := resolution
		next.Dispute.Status = models.DisputeResolved
		next.Dispute.Resolution = &r
		if to == models.StatusCancelled {
			next.Cancellation = &models.Cancellation{
				By:        admin.ID,
				Reason:    "dispute resolved: " + decision,
				At:        at,
				RefundDue: refundAmount.IsPositive(),
			}
		}
	})

	resolved := d.Clone()
	r := resolution
	resolved.Status = models.DisputeResolved
	resolved.Resolution = &r
	resolved.UpdatedAt = now
	resolved.Version = d.Version + 1
	return t, resolved, nil
}
