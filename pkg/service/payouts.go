package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/chris/escrow-marketplace/pkg/escrow"
	"github.com/chris/escrow-marketplace/pkg/gateway"
	"github.com/chris/escrow-marketplace/pkg/models"
)

// PayoutReference is the transfer reference for an escrow's payout. It is
// stable so a repeated request cannot pay the seller twice.
func PayoutReference(e *models.Escrow) string {
	return "PAYOUT-" + e.EscrowRef
}

// RequestPayout asks the payout gateway to pay the seller of a completed
// escrow. The escrow only moves to paid_out once the transfer is confirmed,
// which happens here if the provider settles immediately and through
// ConfirmPayout otherwise.
func (s *Service) RequestPayout(ctx context.Context, escrowID, actorID string) (gateway.Transfer, error) {
	e, err := s.loadEscrow(ctx, escrowID)
	if err != nil {
		return gateway.Transfer{}, err
	}
	if err := escrow.CheckActor(e, escrow.EventPayout, actorID); err != nil {
		return gateway.Transfer{}, s.refused(e, escrow.EventPayout, err)
	}
	seller, err := s.loadUser(ctx, e.SellerID)
	if err != nil {
		return gateway.Transfer{}, err
	}
	if err := s.gated("receive_payouts", s.gate.CanReceivePayouts(seller)); err != nil {
		return gateway.Transfer{}, s.refused(e, escrow.EventPayout, err)
	}
	amount, err := escrow.PayoutAmount(e)
	if err != nil {
		return gateway.Transfer{}, s.refused(e, escrow.EventPayout, err)
	}
	if !amount.IsPositive() {
		err := &escrow.TransitionError{
			Event:   escrow.EventPayout,
			Current: e.Status,
			Target:  models.StatusPaidOut,
			Reason:  "nothing is owed to the seller",
			Cause:   escrow.ErrPayoutMismatch,
		}
		return gateway.Transfer{}, s.refused(e, escrow.EventPayout, err)
	}
	destination, _ := seller.VerifiedPayoutAccount()

	transfer, err := s.payouts.InitiateTransfer(ctx, gateway.TransferRequest{
		Amount:      amount,
		Currency:    e.Currency,
		Destination: destination,
		Reference:   PayoutReference(e),
		Reason:      fmt.Sprintf("Payout for escrow %s", e.EscrowRef),
	})
	if err != nil {
		return gateway.Transfer{}, s.refused(e, escrow.EventPayout, err)
	}
	s.logger.Info("payout initiated", "escrow_id", e.ID, "reference", transfer.Reference, "status", transfer.Status)

	if transfer.Succeeded() {
		if _, err := s.completePayout(ctx, e, transfer); err != nil {
			return transfer, err
		}
	}
	return transfer, nil
}

// ConfirmPayout handles the provider's completion event for a payout: it
// verifies the escrow's own transfer and moves the escrow from completed to
// paid_out. Transfers issued for anything else are refused.
func (s *Service) ConfirmPayout(ctx context.Context, escrowID, transferReference string) (*models.Escrow, error) {
	transferReference = strings.TrimSpace(transferReference)
	if transferReference == "" {
		return nil, &escrow.ValidationError{Field: "transfer_reference", Message: "is required"}
	}
	e, err := s.loadEscrow(ctx, escrowID)
	if err != nil {
		return nil, err
	}
	if transferReference != PayoutReference(e) {
		return nil, s.refused(e, escrow.EventPayout, referenceMismatch(e, escrow.EventPayout, models.StatusPaidOut, "transfer", transferReference))
	}
	transfer, err := s.payouts.VerifyTransfer(ctx, transferReference)
	if err != nil {
		return nil, s.refused(e, escrow.EventPayout, err)
	}
	return s.completePayout(ctx, e, transfer)
}

func (s *Service) completePayout(ctx context.Context, e *models.Escrow, transfer gateway.Transfer) (*models.Escrow, error) {
	if transfer.Reference != PayoutReference(e) {
		return nil, s.refused(e, escrow.EventPayout, referenceMismatch(e, escrow.EventPayout, models.StatusPaidOut, "transfer", transfer.Reference))
	}
	if !transfer.Succeeded() {
		err := &escrow.TransitionError{
			Event:   escrow.EventPayout,
			Current: e.Status,
			Target:  models.StatusPaidOut,
			Reason:  fmt.Sprintf("transfer %s is %s", transfer.Reference, transfer.Status),
			Cause:   ErrTransferNotSettled,
		}
		return nil, s.refused(e, escrow.EventPayout, err)
	}
	t, err := s.machine.Payout(e, models.Payout{
		Reference: transfer.Reference,
		Amount:    transfer.Amount,
		Currency:  transfer.Currency,
		PaidAt:    transfer.PaidAt,
	})
	if err != nil {
		return nil, s.refused(e, escrow.EventPayout, err)
	}
	return s.apply(ctx, e, t)
}
