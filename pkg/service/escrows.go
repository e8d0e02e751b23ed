package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/chris/escrow-marketplace/pkg/escrow"
	"github.com/chris/escrow-marketplace/pkg/models"
	"github.com/chris/escrow-marketplace/pkg/storage"
	"github.com/shopspring/decimal"
)

// CreateEscrowRequest is the buyer's input for a new escrow.
type CreateEscrowRequest struct {
	BuyerID     string
	SellerEmail string
	Amount      decimal.Decimal
	Currency    string
	Title       string
	Description string
}

// CreateEscrow opens a pending escrow between the buyer and the seller found
// by email. The buyer must pass the create-transaction gate; buyer and seller
// must be two distinct active users. Nothing is persisted on failure.
func (s *Service) CreateEscrow(ctx context.Context, req CreateEscrowRequest) (*models.Escrow, error) {
	currency, err := models.ParseCurrency(req.Currency)
	if err != nil {
		return nil, &escrow.ValidationError{Field: "currency", Message: err.Error(), Err: models.ErrUnsupportedCurrency}
	}
	if !req.Amount.IsPositive() {
		return nil, &escrow.ValidationError{Field: "amount", Message: "must be greater than zero"}
	}

	buyer, err := s.loadUser(ctx, req.BuyerID)
	if err != nil {
		return nil, err
	}
	decision, err := s.gate.CanCreateTransaction(buyer, req.Amount, currency)
	if err != nil {
		return nil, err
	}
	if err := s.gated("create_transaction", decision); err != nil {
		return nil, err
	}

	seller, err := s.store.GetUserByEmail(ctx, req.SellerEmail)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, &escrow.ValidationError{Field: "seller_email", Message: "no user with this email", Err: escrow.ErrInvalidParticipants}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up seller: %w", err)
	}

	params := escrow.CreateParams{
		Title:       req.Title,
		Description: req.Description,
		Amount:      req.Amount,
		Currency:    currency,
		Buyer:       buyer,
		Seller:      seller,
	}
	usage := s.nextUsage(buyer)

	for attempt := 1; ; attempt++ {
		e, err := s.machine.NewEscrow(params)
		if err != nil {
			return nil, err
		}
		err = s.store.CreateEscrow(ctx, e, usage)
		if err == nil {
			s.logger.Info("escrow created",
				"escrow_id", e.ID,
				"escrow_ref", e.EscrowRef,
				"buyer_id", e.BuyerID,
				"seller_id", e.SellerID,
				"amount", e.Amount.String(),
				"currency", e.Currency,
			)
			return e, nil
		}
		if !errors.Is(err, storage.ErrDuplicateReference) || attempt == createAttempts {
			return nil, err
		}
		s.logger.Warn("escrow reference collision, retrying", "escrow_ref", e.EscrowRef, "attempt", attempt)
	}
}

// nextUsage moves the buyer's monthly count forward, starting a new bucket
// when the month has rolled over.
func (s *Service) nextUsage(buyer *models.User) storage.UsageUpdate {
	now := s.machine.Now()
	return storage.UsageUpdate{
		UserID:   buyer.ID,
		Previous: buyer.MonthlyUsage,
		Next: models.MonthlyUsage{
			TransactionCount: buyer.TransactionsThisMonth(now) + 1,
			ResetMonth:       models.UsageMonth(now),
		},
	}
}

// GetEscrow returns an escrow to one of its participants or to a dispute admin.
func (s *Service) GetEscrow(ctx context.Context, escrowID, actorID string) (*models.Escrow, error) {
	e, err := s.loadEscrow(ctx, escrowID)
	if err != nil {
		return nil, err
	}
	if e.IsParticipant(actorID) {
		return e, nil
	}
	actor, err := s.loadUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.HasCapability(models.CapabilityManageDisputes) {
		return nil, fmt.Errorf("escrow %s: %w", escrowID, escrow.ErrForbidden)
	}
	return e, nil
}

// ListEscrows returns the actor's escrows as buyer or seller, newest first.
func (s *Service) ListEscrows(ctx context.Context, actorID string) ([]models.Escrow, error) {
	escrows, err := s.store.ListEscrowsByUser(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list escrows for %s: %w", actorID, err)
	}
	return escrows, nil
}

// AcceptEscrow lets the seller accept a pending escrow.
func (s *Service) AcceptEscrow(ctx context.Context, escrowID, actorID string) (*models.Escrow, error) {
	e, err := s.loadEscrow(ctx, escrowID)
	if err != nil {
		return nil, err
	}
	t, err := s.machine.Accept(e, actorID)
	if err != nil {
		return nil, s.refused(e, escrow.EventAccept, err)
	}
	return s.apply(ctx, e, t)
}

// FundingSession is what the buyer needs to pay for an escrow.
type FundingSession struct {
	AuthorizationURL string              `json:"authorization_url"`
	Reference        string              `json:"reference"`
	Quote            models.FeeBreakdown `json:"quote"`
}

// fundingQuote runs the buyer checks shared by initialization and funding
// and returns the buyer's fee breakdown.
func (s *Service) fundingQuote(ctx context.Context, e *models.Escrow, actorID string) (models.FeeBreakdown, error) {
	if err := escrow.CheckActor(e, escrow.EventFund, actorID); err != nil {
		return models.FeeBreakdown{}, s.refused(e, escrow.EventFund, err)
	}
	buyer, err := s.loadUser(ctx, e.BuyerID)
	if err != nil {
		return models.FeeBreakdown{}, err
	}
	if err := s.gated("access", s.gate.CanAccessEscrow(buyer)); err != nil {
		return models.FeeBreakdown{}, s.refused(e, escrow.EventFund, err)
	}
	quote, err := s.fees.Compute(e.Amount, e.Currency, buyer.Tier)
	if err != nil {
		return models.FeeBreakdown{}, err
	}
	s.metrics.FeeQuoted(string(quote.Tier), string(quote.Currency))
	return quote, nil
}

// InitializeFunding starts a payment for what the buyer owes. The escrow
// reference doubles as the payment reference. No state changes.
func (s *Service) InitializeFunding(ctx context.Context, escrowID, actorID string) (*FundingSession, error) {
	e, err := s.loadEscrow(ctx, escrowID)
	if err != nil {
		return nil, err
	}
	quote, err := s.fundingQuote(ctx, e, actorID)
	if err != nil {
		return nil, err
	}
	url, err := s.payments.InitializePayment(ctx, quote.BuyerPays, e.Currency, e.EscrowRef)
	if err != nil {
		return nil, s.refused(e, escrow.EventFund, err)
	}
	return &FundingSession{AuthorizationURL: url, Reference: e.EscrowRef, Quote: quote}, nil
}

// FundEscrow verifies the buyer's payment with the gateway and moves the
// escrow to funded with a snapshot of the fee breakdown. The reference must be
// the one InitializeFunding issued. A gateway failure leaves the escrow untouched.
func (s *Service) FundEscrow(ctx context.Context, escrowID, actorID, paymentReference string) (*models.Escrow, error) {
	paymentReference = strings.TrimSpace(paymentReference)
	if paymentReference == "" {
		return nil, &escrow.ValidationError{Field: "payment_reference", Message: "is required"}
	}
	e, err := s.loadEscrow(ctx, escrowID)
	if err != nil {
		return nil, err
	}
	quote, err := s.fundingQuote(ctx, e, actorID)
	if err != nil {
		return nil, err
	}

	// Payments are initialized under the escrow reference, which storage keeps
	// unique, so one payment can fund at most one escrow.
	if paymentReference != e.EscrowRef {
		return nil, s.refused(e, escrow.EventFund, referenceMismatch(e, escrow.EventFund, models.StatusFunded, "payment", paymentReference))
	}

	v, err := s.payments.VerifyPayment(ctx, paymentReference)
	if err != nil {
		return nil, s.refused(e, escrow.EventFund, err)
	}
	if v.Reference != e.EscrowRef {
		return nil, s.refused(e, escrow.EventFund, referenceMismatch(e, escrow.EventFund, models.StatusFunded, "payment", v.Reference))
	}
	if !v.Success || v.Currency != e.Currency {
		err := &escrow.TransitionError{
			Event:   escrow.EventFund,
			Current: e.Status,
			Target:  models.StatusFunded,
			Reason:  fmt.Sprintf("payment %s not confirmed in %s", paymentReference, e.Currency),
			Cause:   ErrPaymentNotVerified,
		}
		return nil, s.refused(e, escrow.EventFund, err)
	}

	t, err := s.machine.Fund(e, actorID, models.Payment{
		FeeBreakdown: quote,
		Reference:    paymentReference,
		AmountPaid:   v.AmountPaid,
		PaidAt:       v.PaidAt,
	})
	if err != nil {
		return nil, s.refused(e, escrow.EventFund, err)
	}
	return s.apply(ctx, e, t)
}

// SubmitDelivery records the seller's proof and schedules the auto-release.
// A scheduling failure is logged; the sweeper still finds the escrow.
func (s *Service) SubmitDelivery(ctx context.Context, escrowID, actorID string, proof models.DeliveryProof) (*models.Escrow, error) {
	e, err := s.loadEscrow(ctx, escrowID)
	if err != nil {
		return nil, err
	}
	t, err := s.machine.SubmitDelivery(e, actorID, proof)
	if err != nil {
		return nil, s.refused(e, escrow.EventSubmitDelivery, err)
	}
	next, err := s.apply(ctx, e, t)
	if err != nil {
		return nil, err
	}
	if at := next.Delivery.AutoReleaseAt; at != nil {
		if err := s.scheduler.ScheduleAutoRelease(ctx, next.ID, *at); err != nil {
			s.logger.Warn("failed to schedule auto-release", "escrow_id", next.ID, "release_at", *at, "error", err)
		}
	}
	return next, nil
}

// ConfirmDelivery lets the buyer complete a delivered escrow.
func (s *Service) ConfirmDelivery(ctx context.Context, escrowID, actorID string) (*models.Escrow, error) {
	e, err := s.loadEscrow(ctx, escrowID)
	if err != nil {
		return nil, err
	}
	t, err := s.machine.ConfirmDelivery(e, actorID)
	if err != nil {
		return nil, s.refused(e, escrow.EventConfirmDelivery, err)
	}
	return s.apply(ctx, e, t)
}

// CancelEscrow lets either participant cancel before delivery.
func (s *Service) CancelEscrow(ctx context.Context, escrowID, actorID, reason string) (*models.Escrow, error) {
	e, err := s.loadEscrow(ctx, escrowID)
	if err != nil {
		return nil, err
	}
	t, err := s.machine.Cancel(e, actorID, strings.TrimSpace(reason))
	if err != nil {
		return nil, s.refused(e, escrow.EventCancel, err)
	}
	return s.apply(ctx, e, t)
}

func referenceMismatch(e *models.Escrow, event escrow.Event, target models.EscrowStatus, kind, ref string) error {
	return &escrow.TransitionError{
		Event:   event,
		Current: e.Status,
		Target:  target,
		Reason:  fmt.Sprintf("%s reference %q was not issued for escrow %s", kind, ref, e.EscrowRef),
		Cause:   ErrReferenceMismatch,
	}
}
