package dynamodb

import (
	"fmt"
	"time"

	"github.com/chris/escrow-marketplace/pkg/models"
	"github.com/shopspring/decimal"
)

// sortableTime is a fixed-width UTC layout so index range keys compare lexically.
const sortableTime = "2006-01-02T15:04:05.000000Z"

func formatSortable(t time.Time) string {
	return t.UTC().Format(sortableTime)
}

// Money is stored as strings so nothing passes through a float.

type paymentItem struct {
	Amount           string    `dynamodbav:"amount"`
	Currency         string    `dynamodbav:"currency"`
	Tier             string    `dynamodbav:"tier"`
	BuyerFeePercent  string    `dynamodbav:"buyer_fee_percent"`
	SellerFeePercent string    `dynamodbav:"seller_fee_percent"`
	BuyerFee         string    `dynamodbav:"buyer_fee"`
	SellerFee        string    `dynamodbav:"seller_fee"`
	PlatformFee      string    `dynamodbav:"platform_fee"`
	BuyerPays        string    `dynamodbav:"buyer_pays"`
	SellerReceives   string    `dynamodbav:"seller_receives"`
	Reference        string    `dynamodbav:"reference"`
	AmountPaid       string    `dynamodbav:"amount_paid"`
	PaidAt           time.Time `dynamodbav:"paid_at"`
}

type resolutionItem struct {
	Decision         string    `dynamodbav:"decision"`
	Winner           string    `dynamodbav:"winner"`
	RefundPercentage string    `dynamodbav:"refund_percentage"`
	RefundAmount     string    `dynamodbav:"refund_amount"`
	ReleaseAmount    string    `dynamodbav:"release_amount"`
	ResolvedBy       string    `dynamodbav:"resolved_by"`
	ResolvedAt       time.Time `dynamodbav:"resolved_at"`
}

type disputeInfoItem struct {
	IsDisputed bool            `dynamodbav:"is_disputed"`
	DisputeID  string          `dynamodbav:"dispute_id,omitempty"`
	RaisedBy   string          `dynamodbav:"raised_by,omitempty"`
	Reason     string          `dynamodbav:"reason,omitempty"`
	Status     string          `dynamodbav:"status,omitempty"`
	Resolution *resolutionItem `dynamodbav:"resolution,omitempty"`
}

type payoutItem struct {
	Reference string    `dynamodbav:"reference"`
	Amount    string    `dynamodbav:"amount"`
	Currency  string    `dynamodbav:"currency"`
	PaidAt    time.Time `dynamodbav:"paid_at"`
}

// escrowItem is the stored shape of an escrow.
type escrowItem struct {
	ID            string                 `dynamodbav:"id"`
	EscrowRef     string                 `dynamodbav:"escrow_ref"`
	Title         string                 `dynamodbav:"title"`
	Description   string                 `dynamodbav:"description,omitempty"`
	Amount        string                 `dynamodbav:"amount"`
	Currency      string                 `dynamodbav:"currency"`
	BuyerID       string                 `dynamodbav:"buyer_id"`
	SellerID      string                 `dynamodbav:"seller_id"`
	Status        string                 `dynamodbav:"status"`
	Version       int64                  `dynamodbav:"version"`
	Timeline      []models.TimelineEntry `dynamodbav:"timeline"`
	Payment       *paymentItem           `dynamodbav:"payment,omitempty"`
	Delivery      models.Delivery        `dynamodbav:"delivery"`
	Dispute       disputeInfoItem        `dynamodbav:"dispute"`
	Cancellation  *models.Cancellation   `dynamodbav:"cancellation,omitempty"`
	Payout        *payoutItem            `dynamodbav:"payout,omitempty"`
	AutoReleaseAt string                 `dynamodbav:"auto_release_at,omitempty"`
	CreatedAt     string                 `dynamodbav:"created_at"`
	UpdatedAt     time.Time              `dynamodbav:"updated_at"`
}

// referenceItem claims an escrow reference in the escrows table.
type referenceItem struct {
	ID       string `dynamodbav:"id"`
	EscrowID string `dynamodbav:"escrow_id"`
	Kind     string `dynamodbav:"kind"`
}

func referenceKey(ref string) string {
	return "REF#" + ref
}

// disputeItem is the stored shape of a dispute.
type disputeItem struct {
	ID           string            `dynamodbav:"id"`
	EscrowID     string            `dynamodbav:"escrow_id"`
	ReportedBy   string            `dynamodbav:"reported_by"`
	ReportedUser string            `dynamodbav:"reported_user"`
	Reason       string            `dynamodbav:"reason"`
	Evidence     []models.Evidence `dynamodbav:"evidence,omitempty"`
	Status       string            `dynamodbav:"status"`
	AssignedTo   string            `dynamodbav:"assigned_to,omitempty"`
	AssignedAt   *time.Time        `dynamodbav:"assigned_at,omitempty"`
	Resolution   *resolutionItem   `dynamodbav:"resolution,omitempty"`
	Version      int64             `dynamodbav:"version"`
	CreatedAt    time.Time         `dynamodbav:"created_at"`
	UpdatedAt    time.Time         `dynamodbav:"updated_at"`
}

func newPaymentItem(p *models.Payment) *paymentItem {
	if p == nil {
		return nil
	}
	return &paymentItem{
		Amount:           p.Amount.String(),
		Currency:         string(p.Currency),
		Tier:             string(p.Tier),
		BuyerFeePercent:  p.BuyerFeePercent.String(),
		SellerFeePercent: p.SellerFeePercent.String(),
		BuyerFee:         p.BuyerFee.String(),
		SellerFee:        p.SellerFee.String(),
		PlatformFee:      p.PlatformFee.String(),
		BuyerPays:        p.BuyerPays.String(),
		SellerReceives:   p.SellerReceives.String(),
		Reference:        p.Reference,
		AmountPaid:       p.AmountPaid.String(),
		PaidAt:           p.PaidAt,
	}
}

func newResolutionItem(r *models.Resolution) *resolutionItem {
	if r == nil {
		return nil
	}
	return &resolutionItem{
		Decision:         r.Decision,
		Winner:           string(r.Winner),
		RefundPercentage: r.RefundPercentage.String(),
		RefundAmount:     r.RefundAmount.String(),
		ReleaseAmount:    r.ReleaseAmount.String(),
		ResolvedBy:       r.ResolvedBy,
		ResolvedAt:       r.ResolvedAt,
	}
}

func newDisputeInfoItem(d models.DisputeInfo) disputeInfoItem {
	return disputeInfoItem{
		IsDisputed: d.IsDisputed,
		DisputeID:  d.DisputeID,
		RaisedBy:   d.RaisedBy,
		Reason:     d.Reason,
		Status:     string(d.Status),
		Resolution: newResolutionItem(d.Resolution),
	}
}

func newPayoutItem(p *models.Payout) *payoutItem {
	if p == nil {
		return nil
	}
	return &payoutItem{
		Reference: p.Reference,
		Amount:    p.Amount.String(),
		Currency:  string(p.Currency),
		PaidAt:    p.PaidAt,
	}
}

// autoReleaseKey is only set while the escrow is delivered, which keeps the
// overdue-delivery index sparse.
func autoReleaseKey(e *models.Escrow) string {
	if e.Status != models.StatusDelivered || e.Delivery.AutoReleaseAt == nil {
		return ""
	}
	return formatSortable(*e.Delivery.AutoReleaseAt)
}

func newEscrowItem(e *models.Escrow) escrowItem {
	timeline := e.Timeline
	if timeline == nil {
		timeline = []models.TimelineEntry{}
	}
	return escrowItem{
		ID:            e.ID,
		EscrowRef:     e.EscrowRef,
		Title:         e.Title,
		Description:   e.Description,
		Amount:        e.Amount.String(),
		Currency:      string(e.Currency),
		BuyerID:       e.BuyerID,
		SellerID:      e.SellerID,
		Status:        string(e.Status),
		Version:       e.Version,
		Timeline:      timeline,
		Payment:       newPaymentItem(e.Payment),
		Delivery:      e.Delivery,
		Dispute:       newDisputeInfoItem(e.Dispute),
		Cancellation:  e.Cancellation,
		Payout:        newPayoutItem(e.Payout),
		AutoReleaseAt: autoReleaseKey(e),
		CreatedAt:     formatSortable(e.CreatedAt),
		UpdatedAt:     e.UpdatedAt,
	}
}

type decimalParser struct {
	err error
}

func (p *decimalParser) parse(field, s string) decimal.Decimal {
	if p.err != nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		p.err = fmt.Errorf("failed to parse %s %q: %w", field, s, err)
	}
	return d
}

func (it *paymentItem) toModel(p *decimalParser) *models.Payment {
	if it == nil {
		return nil
	}
	return &models.Payment{
		FeeBreakdown: models.FeeBreakdown{
			Amount:           p.parse("payment.amount", it.Amount),
			Currency:         models.Currency(it.Currency),
			Tier:             models.TierID(it.Tier),
			BuyerFeePercent:  p.parse("payment.buyer_fee_percent", it.BuyerFeePercent),
			SellerFeePercent: p.parse("payment.seller_fee_percent", it.SellerFeePercent),
			BuyerFee:         p.parse("payment.buyer_fee", it.BuyerFee),
			SellerFee:        p.parse("payment.seller_fee", it.SellerFee),
			PlatformFee:      p.parse("payment.platform_fee", it.PlatformFee),
			BuyerPays:        p.parse("payment.buyer_pays", it.BuyerPays),
			SellerReceives:   p.parse("payment.seller_receives", it.SellerReceives),
		},
		Reference:  it.Reference,
		AmountPaid: p.parse("payment.amount_paid", it.AmountPaid),
		PaidAt:     it.PaidAt,
	}
}

func (it *resolutionItem) toModel(p *decimalParser) *models.Resolution {
	if it == nil {
		return nil
	}
	return &models.Resolution{
		Decision:         it.Decision,
		Winner:           models.Winner(it.Winner),
		RefundPercentage: p.parse("resolution.refund_percentage", it.RefundPercentage),
		RefundAmount:     p.parse("resolution.refund_amount", it.RefundAmount),
		ReleaseAmount:    p.parse("resolution.release_amount", it.ReleaseAmount),
		ResolvedBy:       it.ResolvedBy,
		ResolvedAt:       it.ResolvedAt,
	}
}

func (it *payoutItem) toModel(p *decimalParser) *models.Payout {
	if it == nil {
		return nil
	}
	return &models.Payout{
		Reference: it.Reference,
		Amount:    p.parse("payout.amount", it.Amount),
		Currency:  models.Currency(it.Currency),
		PaidAt:    it.PaidAt,
	}
}

func (it escrowItem) toModel() (*models.Escrow, error) {
	var p decimalParser
	created, err := time.Parse(sortableTime, it.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at %q: %w", it.CreatedAt, err)
	}
	e := &models.Escrow{
		ID:          it.ID,
		EscrowRef:   it.EscrowRef,
		Title:       it.Title,
		Description: it.Description,
		Amount:      p.parse("amount", it.Amount),
		Currency:    models.Currency(it.Currency),
		BuyerID:     it.BuyerID,
		SellerID:    it.SellerID,
		Status:      models.EscrowStatus(it.Status),
		Version:     it.Version,
		Timeline:    it.Timeline,
		Payment:     it.Payment.toModel(&p),
		Delivery:    it.Delivery,
		Dispute: models.DisputeInfo{
			IsDisputed: it.Dispute.IsDisputed,
			DisputeID:  it.Dispute.DisputeID,
			RaisedBy:   it.Dispute.RaisedBy,
			Reason:     it.Dispute.Reason,
			Status:     models.DisputeStatus(it.Dispute.Status),
			Resolution: it.Dispute.Resolution.toModel(&p),
		},
		Cancellation: it.Cancellation,
		Payout:       it.Payout.toModel(&p),
		CreatedAt:    created,
		UpdatedAt:    it.UpdatedAt,
	}
	if p.err != nil {
		return nil, fmt.Errorf("escrow %s: %w", it.ID, p.err)
	}
	if e.Timeline == nil {
		e.Timeline = []models.TimelineEntry{}
	}
	return e, nil
}

func newDisputeItem(d *models.Dispute) disputeItem {
	return disputeItem{
		ID:           d.ID,
		EscrowID:     d.EscrowID,
		ReportedBy:   d.ReportedBy,
		ReportedUser: d.ReportedUser,
		Reason:       d.Reason,
		Evidence:     d.Evidence,
		Status:       string(d.Status),
		AssignedTo:   d.AssignedTo,
		AssignedAt:   d.AssignedAt,
		Resolution:   newResolutionItem(d.Resolution),
		Version:      d.Version,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func (it disputeItem) toModel() (*models.Dispute, error) {
	var p decimalParser
	d := &models.Dispute{
		ID:           it.ID,
		EscrowID:     it.EscrowID,
		ReportedBy:   it.ReportedBy,
		ReportedUser: it.ReportedUser,
		Reason:       it.Reason,
		Evidence:     it.Evidence,
		Status:       models.DisputeStatus(it.Status),
		AssignedTo:   it.AssignedTo,
		AssignedAt:   it.AssignedAt,
		Resolution:   it.Resolution.toModel(&p),
		Version:      it.Version,
		CreatedAt:    it.CreatedAt,
		UpdatedAt:    it.UpdatedAt,
	}
	if p.err != nil {
		return nil, fmt.Errorf("dispute %s: %w", it.ID, p.err)
	}
	return d, nil
}
