// Package escrow holds the escrow aggregate rules and its state machine.
//
// Every operation is pure: it validates the guard against the snapshot it is
// given and returns a models.Transition describing the new state. Nothing is
// persisted here; the caller writes the transition conditionally on the
// snapshot's status and version.
package escrow

import (
	"fmt"
	"strings"
	"time"

	"github.com/chris/escrow-marketplace/pkg/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultAutoReleaseAfter is how long a buyer has to confirm or dispute a delivery.
const DefaultAutoReleaseAfter = 72 * time.Hour

// Machine applies guarded transitions to escrow snapshots.
type Machine struct {
	now              func() time.Time
	newID            func() string
	autoReleaseAfter time.Duration
}

// NewMachine creates a state machine. A non-positive autoReleaseAfter uses the default.
func NewMachine(autoReleaseAfter time.Duration) *Machine {
	if autoReleaseAfter <= 0 {
		autoReleaseAfter = DefaultAutoReleaseAfter
	}
	return &Machine{
		now:              func() time.Time { return time.Now().UTC() },
		newID:            uuid.NewString,
		autoReleaseAfter: autoReleaseAfter,
	}
}

// WithClock returns a copy of the machine that reads time from now.
func (m *Machine) WithClock(now func() time.Time) *Machine {
	c := *m
	c.now = now
	return &c
}

// AutoReleaseAfter returns the configured delivery confirmation window.
func (m *Machine) AutoReleaseAfter() time.Duration {
	return m.autoReleaseAfter
}

// Now exposes the machine's clock so callers stamp records consistently.
func (m *Machine) Now() time.Time {
	return m.now()
}

func reject(e *models.Escrow, event Event, target models.EscrowStatus, cause error, reason string) error {
	if target == "" {
		target = nominalTarget(event)
	}
	return &TransitionError{Event: event, Current: e.Status, Target: target, Reason: reason, Cause: cause}
}

// allowedTarget checks the transition table and returns the single target for event.
// Events with more than one target must pass the chosen one in want.
func allowedTarget(e *models.Escrow, event Event, want models.EscrowStatus) (models.EscrowStatus, error) {
	ts := Targets(e.Status, event)
	if len(ts) == 0 {
		reason := fmt.Sprintf("%s is not allowed from %s", event, e.Status)
		if e.Status.Terminal() {
			reason = fmt.Sprintf("escrow is %s and cannot change", e.Status)
		}
		if e.Status == models.StatusDisputed {
			return "", reject(e, event, want, ErrDisputeOpen, "escrow is locked until the dispute is resolved")
		}
		return "", reject(e, event, want, nil, reason)
	}
	if want == "" {
		return ts[0], nil
	}
	if !CanTransition(e.Status, event, want) {
		return "", reject(e, event, want, nil, fmt.Sprintf("%s cannot lead to %s", event, want))
	}
	return want, nil
}

// apply clones e, runs mutate on the clone, then sets the status, appends
// exactly one timeline entry and bumps the version.
func (m *Machine) apply(e *models.Escrow, event Event, to models.EscrowStatus, actor, note string, mutate func(next *models.Escrow, now time.Time)) *models.Transition {
	now := m.now()
	next := e.Clone()
	if mutate != nil {
		mutate(next, now)
	}
	entry := models.TimelineEntry{
		ID:        m.newID(),
		Status:    to,
		Actor:     actor,
		Note:      note,
		Timestamp: now,
	}
	next.Status = to
	next.Timeline = append(next.Timeline, entry)
	next.Version = e.Version + 1
	next.UpdatedAt = now

	return &models.Transition{
		Event:       string(event),
		From:        e.Status,
		FromVersion: e.Version,
		Escrow:      next,
		Entry:       entry,
	}
}

func disputeOpen(e *models.Escrow) bool {
	return e.Dispute.IsDisputed && e.Dispute.Status != models.DisputeResolved
}

// Accept moves a pending escrow to accepted. Only the seller may accept.
func (m *Machine) Accept(e *models.Escrow, actorID string) (*models.Transition, error) {
	to, err := allowedTarget(e, EventAccept, "")
	if err != nil {
		return nil, err
	}
	if actorID != e.SellerID {
		return nil, reject(e, EventAccept, to, ErrForbidden, "only the seller can accept")
	}
	return m.apply(e, EventAccept, to, actorID, "seller accepted the escrow", nil), nil
}

// Fund records the verified payment and its fee snapshot. The payment must
// already be confirmed by the gateway; Fund only checks that it covers what
// the buyer owes.
func (m *Machine) Fund(e *models.Escrow, actorID string, payment models.Payment) (*models.Transition, error) {
	to, err := allowedTarget(e, EventFund, "")
	if err != nil {
		return nil, err
	}
	if actorID != e.BuyerID {
		return nil, reject(e, EventFund, to, ErrForbidden, "only the buyer can fund")
	}
	if e.Payment != nil {
		return nil, &InvariantError{EscrowID: e.ID, Detail: "payment snapshot already set before funding", Err: ErrPaymentAlreadySet}
	}
	if !payment.Amount.Equal(e.Amount) || payment.Currency != e.Currency {
		return nil, &InvariantError{
			EscrowID: e.ID,
			Detail:   fmt.Sprintf("fee snapshot is for %s %s, escrow is %s %s", payment.Amount, payment.Currency, e.Amount, e.Currency),
		}
	}
	if payment.AmountPaid.LessThan(payment.BuyerPays) {
		return nil, reject(e, EventFund, to, ErrUnderpaid,
			fmt.Sprintf("paid %s %s, owed %s", payment.AmountPaid, e.Currency, payment.BuyerPays))
	}

	t := m.apply(e, EventFund, to, actorID, fmt.Sprintf("payment %s confirmed", payment.Reference), func(next *models.Escrow, now time.Time) {
		p := payment
		if p.PaidAt.IsZero() {
			p.PaidAt = now
		}
		next.Payment = &p
	})
	t.SetsPayment = true
	return t, nil
}

// ValidateDeliveryProof checks that proof carries what its method requires.
func ValidateDeliveryProof(proof models.DeliveryProof) error {
	switch proof.Method {
	case models.DeliveryShipping:
		if strings.TrimSpace(proof.TrackingNumber) == "" || strings.TrimSpace(proof.Carrier) == "" {
			return fmt.Errorf("%w: shipping requires a tracking number and carrier", ErrInvalidDeliveryProof)
		}
	case models.DeliveryDigital:
		hasURL := false
		for _, ev := range proof.Evidence {
			if strings.TrimSpace(ev.URL) != "" {
				hasURL = true
				break
			}
		}
		if !hasURL {
			return fmt.Errorf("%w: digital delivery requires evidence with a URL", ErrInvalidDeliveryProof)
		}
	case models.DeliveryService:
		if strings.TrimSpace(proof.Note) == "" {
			return fmt.Errorf("%w: service delivery requires a completion note", ErrInvalidDeliveryProof)
		}
	default:
		return fmt.Errorf("%w: unknown delivery method %q", ErrInvalidDeliveryProof, proof.Method)
	}
	return nil
}

// SubmitDelivery records the seller's proof and starts the auto-release clock.
func (m *Machine) SubmitDelivery(e *models.Escrow, actorID string, proof models.DeliveryProof) (*models.Transition, error) {
	to, err := allowedTarget(e, EventSubmitDelivery, "")
	if err != nil {
		return nil, err
	}
	if actorID != e.SellerID {
		return nil, reject(e, EventSubmitDelivery, to, ErrForbidden, "only the seller can submit delivery")
	}
	if err := ValidateDeliveryProof(proof); err != nil {
		return nil, reject(e, EventSubmitDelivery, to, ErrInvalidDeliveryProof, err.Error())
	}

	return m.apply(e, EventSubmitDelivery, to, actorID, fmt.Sprintf("delivered via %s", proof.Method), func(next *models.Escrow, now time.Time) {
		release := now.Add(m.autoReleaseAfter)
		submitted := now
		next.Delivery = models.Delivery{
			Method:         proof.Method,
			TrackingNumber: proof.TrackingNumber,
			Carrier:        proof.Carrier,
			Note:           proof.Note,
			Evidence:       append([]models.Evidence(nil), proof.Evidence...),
			SubmittedAt:    &submitted,
			AutoReleaseAt:  &release,
		}
	}), nil
}

// ConfirmDelivery completes a delivered escrow. Only the buyer may confirm.
func (m *Machine) ConfirmDelivery(e *models.Escrow, actorID string) (*models.Transition, error) {
	to, err := allowedTarget(e, EventConfirmDelivery, "")
	if err != nil {
		return nil, err
	}
	if actorID != e.BuyerID {
		return nil, reject(e, EventConfirmDelivery, to, ErrForbidden, "only the buyer can confirm delivery")
	}
	return m.apply(e, EventConfirmDelivery, to, actorID, "buyer confirmed receipt", func(next *models.Escrow, now time.Time) {
		confirmed := now
		next.Delivery.ConfirmedAt = &confirmed
	}), nil
}

// AutoReleaseDue reports whether e is delivered, undisputed and past its deadline.
func (m *Machine) AutoReleaseDue(e *models.Escrow) bool {
	return e.Status == models.StatusDelivered &&
		!disputeOpen(e) &&
		e.Delivery.AutoReleaseAt != nil &&
		!m.now().Before(*e.Delivery.AutoReleaseAt)
}

// AutoRelease completes a delivered escrow once its deadline passes. It goes
// through the same table and guards as a buyer confirmation.
func (m *Machine) AutoRelease(e *models.Escrow) (*models.Transition, error) {
	to, err := allowedTarget(e, EventAutoRelease, "")
	if err != nil {
		return nil, err
	}
	if disputeOpen(e) {
		return nil, reject(e, EventAutoRelease, to, ErrDisputeOpen, "")
	}
	if e.Delivery.AutoReleaseAt == nil {
		return nil, &InvariantError{EscrowID: e.ID, Detail: "delivered escrow has no auto-release deadline"}
	}
	if m.now().Before(*e.Delivery.AutoReleaseAt) {
		return nil, reject(e, EventAutoRelease, to, ErrAutoReleaseNotDue,
			fmt.Sprintf("due at %s", e.Delivery.AutoReleaseAt.Format(time.RFC3339)))
	}
	return m.apply(e, EventAutoRelease, to, models.SystemActor, "released automatically after the confirmation window", func(next *models.Escrow, now time.Time) {
		confirmed := now
		next.Delivery.ConfirmedAt = &confirmed
		next.Delivery.AutoReleased = true
	}), nil
}

// PayoutAmount is what the seller is owed once an escrow completes: the
// fee-adjusted amount, or the released share after a dispute.
func PayoutAmount(e *models.Escrow) (decimal.Decimal, error) {
	if e.Payment == nil {
		return decimal.Zero, &InvariantError{EscrowID: e.ID, Detail: "completed escrow has no payment snapshot"}
	}
	if r := e.Dispute.Resolution; r != nil {
		owed := r.ReleaseAmount.Sub(e.Payment.SellerFee)
		if owed.IsNegative() {
			return decimal.Zero, nil
		}
		return owed, nil
	}
	return e.Payment.SellerReceives, nil
}

// Payout marks a completed escrow as paid out once the transfer is confirmed.
func (m *Machine) Payout(e *models.Escrow, payout models.Payout) (*models.Transition, error) {
	to, err := allowedTarget(e, EventPayout, "")
	if err != nil {
		return nil, err
	}
	owed, err := PayoutAmount(e)
	if err != nil {
		return nil, err
	}
	if !owed.IsPositive() {
		return nil, reject(e, EventPayout, to, ErrPayoutMismatch, "nothing is owed to the seller")
	}
	if payout.Currency != e.Currency || !payout.Amount.Equal(owed) {
		return nil, reject(e, EventPayout, to, ErrPayoutMismatch,
			fmt.Sprintf("transfer of %s %s, owed %s %s", payout.Amount, payout.Currency, owed, e.Currency))
	}
	return m.apply(e, EventPayout, to, models.SystemActor, fmt.Sprintf("payout %s completed", payout.Reference), func(next *models.Escrow, now time.Time) {
		p := payout
		if p.PaidAt.IsZero() {
			p.PaidAt = now
		}
		next.Payout = &p
	}), nil
}

// Cancel ends an escrow before delivery. A funded escrow is flagged for refund.
func (m *Machine) Cancel(e *models.Escrow, actorID, reason string) (*models.Transition, error) {
	to, err := allowedTarget(e, EventCancel, "")
	if err != nil {
		return nil, err
	}
	if !e.IsParticipant(actorID) {
		return nil, reject(e, EventCancel, to, ErrForbidden, "only a participant can cancel")
	}
	if disputeOpen(e) {
		return nil, reject(e, EventCancel, to, ErrDisputeOpen, "")
	}
	note := "escrow cancelled"
	if reason != "" {
		note = reason
	}
	return m.apply(e, EventCancel, to, actorID, note, func(next *models.Escrow, now time.Time) {
		next.Cancellation = &models.Cancellation{
			By:        actorID,
			Reason:    reason,
			At:        now,
			RefundDue: e.Payment != nil,
		}
	}), nil
}

// CheckActor reports whether actorID may start event from e's current status.
// It is used before calling a collaborator so a refused request never
// reaches the payment provider.
func CheckActor(e *models.Escrow, event Event, actorID string) error {
	to, err := allowedTarget(e, event, "")
	if err != nil {
		return err
	}
	var permitted bool
	switch event {
	case EventAccept, EventSubmitDelivery, EventPayout:
		permitted = actorID == e.SellerID
	case EventFund, EventConfirmDelivery:
		permitted = actorID == e.BuyerID
	case EventCancel, EventRaiseDispute:
		permitted = e.IsParticipant(actorID)
	case EventAutoRelease, EventResolveDispute:
		permitted = false
	}
	if !permitted {
		return reject(e, event, to, ErrForbidden, fmt.Sprintf("%s may not %s this escrow", actorID, event))
	}
	return nil
}
