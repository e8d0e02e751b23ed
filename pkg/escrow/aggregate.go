package escrow

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/chris/escrow-marketplace/pkg/models"
	"github.com/shopspring/decimal"
)

const (
	MinTitleLength       = 3
	MaxTitleLength       = 200
	MaxDescriptionLength = 5000
	MaxReasonLength      = 2000
)

// CreateParams is the validated input for a new escrow.
type CreateParams struct {
	Title       string
	Description string
	Amount      decimal.Decimal
	Currency    models.Currency
	Buyer       *models.User
	Seller      *models.User
}

// ValidateCreate checks input shape and participants before anything is persisted.
func ValidateCreate(p CreateParams) error {
	title := strings.TrimSpace(p.Title)
	if n := utf8.RuneCountInString(title); n < MinTitleLength || n > MaxTitleLength {
		return invalid("title", "must be between %d and %d characters", MinTitleLength, MaxTitleLength)
	}
	if utf8.RuneCountInString(p.Description) > MaxDescriptionLength {
		return invalid("description", "must be at most %d characters", MaxDescriptionLength)
	}
	if !p.Amount.IsPositive() {
		return invalid("amount", "must be greater than zero")
	}
	if !p.Currency.Valid() {
		return &ValidationError{Field: "currency", Message: fmt.Sprintf("unsupported currency %q", p.Currency), Err: models.ErrUnsupportedCurrency}
	}
	if p.Buyer == nil || p.Seller == nil {
		return &ValidationError{Field: "seller", Message: "buyer and seller must both exist", Err: ErrInvalidParticipants}
	}
	if p.Buyer.ID == p.Seller.ID || strings.EqualFold(p.Buyer.Email, p.Seller.Email) {
		return &ValidationError{Field: "seller_email", Message: "buyer and seller must be different users", Err: ErrInvalidParticipants}
	}
	if !p.Seller.IsActive() {
		return &ValidationError{Field: "seller_email", Message: "seller account is not active", Err: ErrInvalidParticipants}
	}
	return nil
}

// NewEscrow validates p and builds a pending escrow. The initial status gets
// no timeline entry.
func (m *Machine) NewEscrow(p CreateParams) (*models.Escrow, error) {
	if err := ValidateCreate(p); err != nil {
		return nil, err
	}
	ref, err := NewReference(m.now())
	if err != nil {
		return nil, err
	}
	now := m.now()
	e := &models.Escrow{
		ID:          m.newID(),
		EscrowRef:   ref,
		Title:       strings.TrimSpace(p.Title),
		Description: p.Description,
		Amount:      p.Amount,
		Currency:    p.Currency,
		BuyerID:     p.Buyer.ID,
		SellerID:    p.Seller.ID,
		Status:      models.StatusPending,
		Version:     1,
		Timeline:    []models.TimelineEntry{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := CheckInvariants(e); err != nil {
		return nil, err
	}
	return e, nil
}

// CheckInvariants verifies the aggregate invariants on a snapshot about to be
// persisted. A failure is a programming error.
func CheckInvariants(e *models.Escrow) error {
	fail := func(format string, args ...any) error {
		return &InvariantError{EscrowID: e.ID, Detail: fmt.Sprintf(format, args...)}
	}
	if e.ID == "" {
		return fail("missing id")
	}
	if e.BuyerID == "" || e.SellerID == "" || e.BuyerID == e.SellerID {
		return fail("buyer %q and seller %q must be distinct", e.BuyerID, e.SellerID)
	}
	if !e.Amount.IsPositive() {
		return fail("amount %s is not positive", e.Amount)
	}
	if !e.Currency.Valid() {
		return fail("unsupported currency %q", e.Currency)
	}
	if !e.Status.Valid() {
		return fail("unknown status %q", e.Status)
	}
	if n := len(e.Timeline); n > 0 && e.Timeline[n-1].Status != e.Status {
		return fail("last timeline entry %s does not match status %s", e.Timeline[n-1].Status, e.Status)
	}
	if e.Status == models.StatusPending && len(e.Timeline) > 0 {
		return fail("pending escrow has timeline entries")
	}
	for i := 1; i < len(e.Timeline); i++ {
		if e.Timeline[i].Timestamp.Before(e.Timeline[i-1].Timestamp) {
			return fail("timeline entry %d is out of order", i)
		}
	}
	switch e.Status {
	case models.StatusFunded, models.StatusDelivered, models.StatusCompleted, models.StatusPaidOut, models.StatusDisputed:
		if e.Payment == nil {
			return fail("status %s requires a payment snapshot", e.Status)
		}
	case models.StatusPending, models.StatusAccepted:
		if e.Payment != nil {
			return fail("status %s must not carry a payment snapshot", e.Status)
		}
	case models.StatusCancelled:
	}
	return nil
}

// CheckAppendOnly verifies that next extends prev's timeline without editing it.
func CheckAppendOnly(prev, next *models.Escrow) error {
	if len(next.Timeline) < len(prev.Timeline) {
		return &InvariantError{EscrowID: prev.ID, Detail: "timeline shrank"}
	}
	for i := range prev.Timeline {
		a, b := prev.Timeline[i], next.Timeline[i]
		if a.Status != b.Status || !a.Timestamp.Equal(b.Timestamp) {
			return &InvariantError{EscrowID: prev.ID, Detail: fmt.Sprintf("timeline entry %d was rewritten", i)}
		}
	}
	if prev.Payment != nil && !samePayment(prev.Payment, next.Payment) {
		return &InvariantError{EscrowID: prev.ID, Detail: "payment snapshot changed", Err: ErrPaymentAlreadySet}
	}
	return nil
}

func samePayment(a, b *models.Payment) bool {
	if b == nil {
		return false
	}
	return a.Reference == b.Reference &&
		a.AmountPaid.Equal(b.AmountPaid) &&
		a.BuyerFee.Equal(b.BuyerFee) &&
		a.SellerFee.Equal(b.SellerFee) &&
		a.BuyerPays.Equal(b.BuyerPays) &&
		a.SellerReceives.Equal(b.SellerReceives) &&
		a.PaidAt.Equal(b.PaidAt)
}

const refAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewReference builds the human-facing escrow reference:
// "ESC" + unix milliseconds + 6 uppercase alphanumerics. Uniqueness is
// enforced by the store, not by the randomness.
func NewReference(now time.Time) (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate escrow reference: %w", err)
	}
	for i, b := range buf {
		buf[i] = refAlphabet[int(b)%len(refAlphabet)]
	}
	return fmt.Sprintf("ESC%d%s", now.UnixMilli(), buf), nil
}
