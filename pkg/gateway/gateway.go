// Package gateway defines the payment and payout collaborators and a JSON
// HTTP client for them.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chris/escrow-marketplace/pkg/models"
	"github.com/shopspring/decimal"
)

// ErrUpstreamUnavailable is wrapped by every failure of an external collaborator.
var ErrUpstreamUnavailable = errors.New("upstream unavailable")

// UpstreamError describes a failed call to the payment provider.
type UpstreamError struct {
	Provider   string
	Op         string
	StatusCode int
	Detail     string
	Err        error
}

func (e *UpstreamError) Error() string {
	msg := fmt.Sprintf("%s %s failed", e.Provider, e.Op)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UpstreamError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrUpstreamUnavailable, e.Err}
	}
	return []error{ErrUpstreamUnavailable}
}

// PaymentVerification is the provider's view of a buyer payment.
type PaymentVerification struct {
	Reference  string
	Success    bool
	AmountPaid decimal.Decimal
	Currency   models.Currency
	PaidAt     time.Time
}

// PaymentGateway collects buyer funds.
type PaymentGateway interface {
	InitializePayment(ctx context.Context, amount decimal.Decimal, currency models.Currency, reference string) (authorizationURL string, err error)
	VerifyPayment(ctx context.Context, reference string) (PaymentVerification, error)
}

// TransferRequest asks the provider to pay a seller.
type TransferRequest struct {
	Amount      decimal.Decimal
	Currency    models.Currency
	Destination models.PayoutAccount
	Reference   string
	Reason      string
}

// TransferStatus values reported by the provider.
const (
	TransferPending = "pending"
	TransferSuccess = "success"
	TransferFailed  = "failed"
)

// Transfer is the provider's view of a payout.
type Transfer struct {
	Reference string
	Status    string
	Amount    decimal.Decimal
	Currency  models.Currency
	PaidAt    time.Time
}

// Succeeded reports whether the transfer has settled.
func (t Transfer) Succeeded() bool { return t.Status == TransferSuccess }

// PayoutGateway pays sellers.
type PayoutGateway interface {
	InitiateTransfer(ctx context.Context, req TransferRequest) (Transfer, error)
	VerifyTransfer(ctx context.Context, reference string) (Transfer, error)
}
