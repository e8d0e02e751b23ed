package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EscrowStatus is the closed set of lifecycle states of an escrow.
type EscrowStatus string

const (
	StatusPending   EscrowStatus = "pending"
	StatusAccepted  EscrowStatus = "accepted"
	StatusFunded    EscrowStatus = "funded"
	StatusDelivered EscrowStatus = "delivered"
	StatusCompleted EscrowStatus = "completed"
	StatusPaidOut   EscrowStatus = "paid_out"
	StatusCancelled EscrowStatus = "cancelled"
	StatusDisputed  EscrowStatus = "disputed"
)

// AllStatuses lists every escrow status in lifecycle order.
var AllStatuses = []EscrowStatus{
	StatusPending, StatusAccepted, StatusFunded, StatusDelivered,
	StatusCompleted, StatusPaidOut, StatusCancelled, StatusDisputed,
}

// Valid reports whether s is a known status.
func (s EscrowStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusFunded, StatusDelivered,
		StatusCompleted, StatusPaidOut, StatusCancelled, StatusDisputed:
		return true
	default:
		return false
	}
}

// Terminal reports whether no event can move an escrow out of s.
func (s EscrowStatus) Terminal() bool {
	switch s {
	case StatusCancelled, StatusPaidOut:
		return true
	case StatusPending, StatusAccepted, StatusFunded, StatusDelivered,
		StatusCompleted, StatusDisputed:
		return false
	default:
		return false
	}
}

// SystemActor is recorded on timeline entries produced without a human actor.
const SystemActor = "system"

// TimelineEntry is one append-only audit record of a status change.
type TimelineEntry struct {
	ID        string       `json:"id" dynamodbav:"id"`
	Status    EscrowStatus `json:"status" dynamodbav:"status"`
	Actor     string       `json:"actor" dynamodbav:"actor"`
	Note      string       `json:"note,omitempty" dynamodbav:"note,omitempty"`
	Timestamp time.Time    `json:"timestamp" dynamodbav:"timestamp"`
}

// Payment is the write-once funding snapshot.
type Payment struct {
	FeeBreakdown
	Reference  string          `json:"reference"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
	PaidAt     time.Time       `json:"paid_at"`
}

// DeliveryMethod selects which proof a seller must provide.
type DeliveryMethod string

const (
	DeliveryShipping DeliveryMethod = "shipping"
	DeliveryDigital  DeliveryMethod = "digital"
	DeliveryService  DeliveryMethod = "service"
)

// Evidence is a piece of supporting material attached to a delivery or dispute.
type Evidence struct {
	URL         string `json:"url" dynamodbav:"url"`
	Description string `json:"description,omitempty" dynamodbav:"description,omitempty"`
}

// DeliveryProof is what the seller submits to move a funded escrow to delivered.
type DeliveryProof struct {
	Method         DeliveryMethod `json:"method"`
	TrackingNumber string         `json:"tracking_number,omitempty"`
	Carrier        string         `json:"carrier,omitempty"`
	Note           string         `json:"note,omitempty"`
	Evidence       []Evidence     `json:"evidence,omitempty"`
}

// Delivery holds proof-of-delivery metadata and the auto-release deadline.
type Delivery struct {
	Method         DeliveryMethod `json:"method,omitempty" dynamodbav:"method,omitempty"`
	TrackingNumber string         `json:"tracking_number,omitempty" dynamodbav:"tracking_number,omitempty"`
	Carrier        string         `json:"carrier,omitempty" dynamodbav:"carrier,omitempty"`
	Note           string         `json:"note,omitempty" dynamodbav:"note,omitempty"`
	Evidence       []Evidence     `json:"evidence,omitempty" dynamodbav:"evidence,omitempty"`
	SubmittedAt    *time.Time     `json:"submitted_at,omitempty" dynamodbav:"submitted_at,omitempty"`
	ConfirmedAt    *time.Time     `json:"confirmed_at,omitempty" dynamodbav:"confirmed_at,omitempty"`
	AutoReleaseAt  *time.Time     `json:"auto_release_at,omitempty" dynamodbav:"auto_release_at,omitempty"`
	AutoReleased   bool           `json:"auto_released" dynamodbav:"auto_released"`
}

// DisputeInfo is the dispute summary embedded in the escrow document.
type DisputeInfo struct {
	IsDisputed bool          `json:"is_disputed"`
	DisputeID  string        `json:"dispute_id,omitempty"`
	RaisedBy   string        `json:"raised_by,omitempty"`
	Reason     string        `json:"reason,omitempty"`
	Status     DisputeStatus `json:"status,omitempty"`
	Resolution *Resolution   `json:"resolution,omitempty"`
}

// Cancellation records who cancelled and whether funds must be returned.
type Cancellation struct {
	By        string    `json:"by" dynamodbav:"by"`
	Reason    string    `json:"reason,omitempty" dynamodbav:"reason,omitempty"`
	At        time.Time `json:"at" dynamodbav:"at"`
	RefundDue bool      `json:"refund_due" dynamodbav:"refund_due"`
}

// Payout records the completed transfer to the seller.
type Payout struct {
	Reference string          `json:"reference"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  Currency        `json:"currency"`
	PaidAt    time.Time       `json:"paid_at"`
}

// Escrow is the aggregate root.
type Escrow struct {
	ID           string          `json:"id"`
	EscrowRef    string          `json:"escrow_ref"`
	Title        string          `json:"title"`
	Description  string          `json:"description,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     Currency        `json:"currency"`
	BuyerID      string          `json:"buyer_id"`
	SellerID     string          `json:"seller_id"`
	Status       EscrowStatus    `json:"status"`
	Version      int64           `json:"version"`
	Timeline     []TimelineEntry `json:"timeline"`
	Payment      *Payment        `json:"payment,omitempty"`
	Delivery     Delivery        `json:"delivery"`
	Dispute      DisputeInfo     `json:"dispute"`
	Cancellation *Cancellation   `json:"cancellation,omitempty"`
	Payout       *Payout         `json:"payout,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ChatUnlocked is derived: true once the escrow has been funded.
func (e *Escrow) ChatUnlocked() bool {
	switch e.Status {
	case StatusFunded, StatusDelivered, StatusCompleted, StatusPaidOut, StatusDisputed:
		return true
	case StatusCancelled:
		return e.Payment != nil
	case StatusPending, StatusAccepted:
		return false
	default:
		return false
	}
}

// IsParticipant reports whether userID is the buyer or the seller.
func (e *Escrow) IsParticipant(userID string) bool {
	return userID != "" && (userID == e.BuyerID || userID == e.SellerID)
}

// Counterparty returns the other participant, or "" if userID is not a participant.
func (e *Escrow) Counterparty(userID string) string {
	switch userID {
	case e.BuyerID:
		return e.SellerID
	case e.SellerID:
		return e.BuyerID
	default:
		return ""
	}
}

// Clone returns a deep copy so transitions never mutate a caller's snapshot.
func (e *Escrow) Clone() *Escrow {
	c := *e
	c.Timeline = append([]TimelineEntry(nil), e.Timeline...)
	if e.Payment != nil {
		p := *e.Payment
		c.Payment = &p
	}
	c.Delivery.Evidence = append([]Evidence(nil), e.Delivery.Evidence...)
	if e.Dispute.Resolution != nil {
		r := *e.Dispute.Resolution
		c.Dispute.Resolution = &r
	}
	if e.Cancellation != nil {
		x := *e.Cancellation
		c.Cancellation = &x
	}
	if e.Payout != nil {
		p := *e.Payout
		c.Payout = &p
	}
	return &c
}

// Transition is the outcome of a guarded state change, ready to be persisted
// with a compare-and-swap on From and FromVersion.
type Transition struct {
	Event       string
	From        EscrowStatus
	FromVersion int64
	Escrow      *Escrow
	Entry       TimelineEntry
	SetsPayment bool
}
