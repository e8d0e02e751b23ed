package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DisputeStatus is the lifecycle of a dispute document.
type DisputeStatus string

const (
	DisputeOpen        DisputeStatus = "open"
	DisputeUnderReview DisputeStatus = "under_review"
	DisputeResolved    DisputeStatus = "resolved"
)

// Winner names who a dispute resolution favours.
type Winner string

const (
	WinnerReportedBy   Winner = "reportedBy"
	WinnerReportedUser Winner = "reportedUser"
	WinnerSplit        Winner = "split"
	WinnerRefund       Winner = "refund"
)

// Valid reports whether w is a known winner value.
func (w Winner) Valid() bool {
	switch w {
	case WinnerReportedBy, WinnerReportedUser, WinnerSplit, WinnerRefund:
		return true
	default:
		return false
	}
}

// Resolution is the admin decision on a dispute.
type Resolution struct {
	Decision         string          `json:"decision"`
	Winner           Winner          `json:"winner"`
	RefundPercentage decimal.Decimal `json:"refund_percentage"`
	RefundAmount     decimal.Decimal `json:"refund_amount"`
	ReleaseAmount    decimal.Decimal `json:"release_amount"`
	ResolvedBy       string          `json:"resolved_by"`
	ResolvedAt       time.Time       `json:"resolved_at"`
}

// Dispute is stored as its own document alongside the escrow it concerns.
type Dispute struct {
	ID           string        `json:"id"`
	EscrowID     string        `json:"escrow_id"`
	ReportedBy   string        `json:"reported_by"`
	ReportedUser string        `json:"reported_user"`
	Reason       string        `json:"reason"`
	Evidence     []Evidence    `json:"evidence,omitempty"`
	Status       DisputeStatus `json:"status"`
	AssignedTo   string        `json:"assigned_to,omitempty"`
	AssignedAt   *time.Time    `json:"assigned_at,omitempty"`
	Resolution   *Resolution   `json:"resolution,omitempty"`
	Version      int64         `json:"version"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// Clone returns a deep copy of the dispute.
func (d *Dispute) Clone() *Dispute {
	c := *d
	c.Evidence = append([]Evidence(nil), d.Evidence...)
	if d.AssignedAt != nil {
		t := *d.AssignedAt
		c.AssignedAt = &t
	}
	if d.Resolution != nil {
		r := *d.Resolution
		c.Resolution = &r
	}
	return &c
}
