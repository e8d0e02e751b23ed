// Package mapping converts between domain models and API types.
package mapping

import (
	"github.com/chris/escrow-marketplace/pkg/api"
	"github.com/chris/escrow-marketplace/pkg/gateway"
	"github.com/chris/escrow-marketplace/pkg/models"
	"github.com/chris/escrow-marketplace/pkg/service"
	"github.com/chris/escrow-marketplace/pkg/tiers"
	"github.com/chris/escrow-marketplace/pkg/verification"
	"github.com/shopspring/decimal"
)

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ToApiFeeBreakdown converts a fee quote.
func ToApiFeeBreakdown(f models.FeeBreakdown) api.FeeBreakdown {
	return api.FeeBreakdown{
		Amount:           f.Amount.String(),
		Currency:         string(f.Currency),
		Tier:             string(f.Tier),
		BuyerFeePercent:  f.BuyerFeePercent.String(),
		SellerFeePercent: f.SellerFeePercent.String(),
		BuyerFee:         f.BuyerFee.String(),
		SellerFee:        f.SellerFee.String(),
		PlatformFee:      f.PlatformFee.String(),
		BuyerPays:        f.BuyerPays.String(),
		SellerReceives:   f.SellerReceives.String(),
	}
}

func toApiEvidence(in []models.Evidence) *[]api.Evidence {
	if len(in) == 0 {
		return nil
	}
	out := make([]api.Evidence, len(in))
	for i, ev := range in {
		out[i] = api.Evidence{Url: ev.URL, Description: optString(ev.Description)}
	}
	return &out
}

func toDomainEvidence(in *[]api.Evidence) []models.Evidence {
	if in == nil {
		return nil
	}
	out := make([]models.Evidence, len(*in))
	for i, ev := range *in {
		out[i] = models.Evidence{URL: ev.Url, Description: derefString(ev.Description)}
	}
	return out
}

func toApiResolution(r *models.Resolution) *api.Resolution {
	if r == nil {
		return nil
	}
	return &api.Resolution{
		Decision:         r.Decision,
		Winner:           api.DisputeWinner(r.Winner),
		RefundPercentage: r.RefundPercentage.String(),
		RefundAmount:     r.RefundAmount.String(),
		ReleaseAmount:    r.ReleaseAmount.String(),
		ResolvedBy:       r.ResolvedBy,
		ResolvedAt:       r.ResolvedAt,
	}
}

// ToApiEscrow converts an escrow, including its timeline and sub-records.
func ToApiEscrow(e *models.Escrow) *api.Escrow {
	out := &api.Escrow{
		Id:           e.ID,
		EscrowRef:    e.EscrowRef,
		Title:        e.Title,
		Description:  optString(e.Description),
		Amount:       e.Amount.String(),
		Currency:     string(e.Currency),
		BuyerId:      e.BuyerID,
		SellerId:     e.SellerID,
		Status:       api.EscrowStatus(e.Status),
		Version:      e.Version,
		ChatUnlocked: e.ChatUnlocked(),
		Timeline:     make([]api.TimelineEntry, len(e.Timeline)),
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
	for i, entry := range e.Timeline {
		out.Timeline[i] = api.TimelineEntry{
			Id:        entry.ID,
			Status:    api.EscrowStatus(entry.Status),
			Actor:     entry.Actor,
			Note:      optString(entry.Note),
			Timestamp: entry.Timestamp,
		}
	}

	if p := e.Payment; p != nil {
		out.Payment = &api.Payment{
			FeeBreakdown: ToApiFeeBreakdown(p.FeeBreakdown),
			Reference:    p.Reference,
			AmountPaid:   p.AmountPaid.String(),
			PaidAt:       p.PaidAt,
		}
	}

	d := e.Delivery
	out.Delivery = api.Delivery{
		TrackingNumber: optString(d.TrackingNumber),
		Carrier:        optString(d.Carrier),
		Note:           optString(d.Note),
		Evidence:       toApiEvidence(d.Evidence),
		SubmittedAt:    d.SubmittedAt,
		ConfirmedAt:    d.ConfirmedAt,
		AutoReleaseAt:  d.AutoReleaseAt,
		AutoReleased:   d.AutoReleased,
	}
	if d.Method != "" {
		m := api.DeliveryMethod(d.Method)
		out.Delivery.Method = &m
	}

	out.Dispute = api.DisputeSummary{
		IsDisputed: e.Dispute.IsDisputed,
		DisputeId:  optString(e.Dispute.DisputeID),
		RaisedBy:   optString(e.Dispute.RaisedBy),
		Reason:     optString(e.Dispute.Reason),
		Resolution: toApiResolution(e.Dispute.Resolution),
	}
	if e.Dispute.Status != "" {
		s := api.DisputeStatus(e.Dispute.Status)
		out.Dispute.Status = &s
	}

	if c := e.Cancellation; c != nil {
		out.Cancellation = &api.Cancellation{By: c.By, Reason: optString(c.Reason), At: c.At, RefundDue: c.RefundDue}
	}
	if p := e.Payout; p != nil {
		out.Payout = &api.Payout{Reference: p.Reference, Amount: p.Amount.String(), Currency: string(p.Currency), PaidAt: p.PaidAt}
	}
	return out
}

// ToApiEscrows converts a list of escrows.
func ToApiEscrows(in []models.Escrow) []*api.Escrow {
	out := make([]*api.Escrow, len(in))
	for i := range in {
		out[i] = ToApiEscrow(&in[i])
	}
	return out
}

// ToDomainDeliveryProof converts a submitted delivery proof.
func ToDomainDeliveryProof(p *api.DeliveryProof) models.DeliveryProof {
	return models.DeliveryProof{
		Method:         models.DeliveryMethod(p.Method),
		TrackingNumber: derefString(p.TrackingNumber),
		Carrier:        derefString(p.Carrier),
		Note:           derefString(p.Note),
		Evidence:       toDomainEvidence(p.Evidence),
	}
}

// ToDomainEvidence converts dispute evidence.
func ToDomainEvidence(in *[]api.Evidence) []models.Evidence {
	return toDomainEvidence(in)
}

// ToApiFundingSession converts a funding session.
func ToApiFundingSession(s *service.FundingSession) *api.FundingSession {
	return &api.FundingSession{
		AuthorizationUrl: s.AuthorizationURL,
		Reference:        s.Reference,
		Quote:            ToApiFeeBreakdown(s.Quote),
	}
}

// ToApiTransfer converts a payout transfer. Amount and currency are only set
// when the provider reported them.
func ToApiTransfer(t gateway.Transfer) *api.Transfer {
	out := &api.Transfer{Reference: t.Reference, Status: t.Status}
	if !t.Amount.IsZero() {
		amount := t.Amount.String()
		out.Amount = &amount
	}
	if t.Currency != "" {
		currency := string(t.Currency)
		out.Currency = &currency
	}
	if !t.PaidAt.IsZero() {
		paidAt := t.PaidAt
		out.PaidAt = &paidAt
	}
	return out
}

// ToApiDispute converts a dispute document.
func ToApiDispute(d *models.Dispute) *api.Dispute {
	return &api.Dispute{
		Id:           d.ID,
		EscrowId:     d.EscrowID,
		ReportedBy:   d.ReportedBy,
		ReportedUser: d.ReportedUser,
		Reason:       d.Reason,
		Evidence:     toApiEvidence(d.Evidence),
		Status:       api.DisputeStatus(d.Status),
		AssignedTo:   optString(d.AssignedTo),
		AssignedAt:   d.AssignedAt,
		Resolution:   toApiResolution(d.Resolution),
		Version:      d.Version,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// ToDomainResolveRequest converts an admin resolution. A malformed refund
// percentage is reported as the error.
func ToDomainResolveRequest(r *api.ResolveDisputeRequest) (service.ResolveDisputeRequest, error) {
	out := service.ResolveDisputeRequest{
		Resolution: r.Resolution,
		Winner:     models.Winner(r.Winner),
	}
	if r.RefundPercentage != nil {
		pct, err := decimal.NewFromString(*r.RefundPercentage)
		if err != nil {
			return service.ResolveDisputeRequest{}, err
		}
		out.RefundPercentage = &pct
	}
	return out, nil
}

// ToApiTierPrices converts rendered tier prices.
func ToApiTierPrices(in []tiers.Price) []api.TierPrice {
	out := make([]api.TierPrice, len(in))
	for i, p := range in {
		out[i] = api.TierPrice{
			Tier:                    string(p.Tier),
			Name:                    p.Name,
			Currency:                string(p.Currency),
			MonthlyCost:             p.MonthlyCost.String(),
			SetupFee:                p.SetupFee.String(),
			MaxTransactionsPerMonth: p.MaxTransactionsPerMonth,
			MaxTransactionAmount:    p.MaxTransactionAmount.String(),
			FeePercent:              api.FeeRate{Buyer: p.FeePercent.Buyer.String(), Seller: p.FeePercent.Seller.String()},
		}
	}
	return out
}

// ToApiGateDecision converts a gate decision, omitting empty detail fields.
func ToApiGateDecision(d verification.Decision) api.GateDecision {
	out := api.GateDecision{
		Allowed:              d.Allowed,
		Reason:               optString(d.Reason),
		RequiresVerification: optString(string(d.RequiresVerification)),
		RequiredAction:       optString(string(d.RequiredAction)),
		KycStatus:            optString(string(d.KYCStatus)),
	}
	if d.Step != 0 {
		step := d.Step
		out.Step = &step
	}
	if d.UpgradeRequired {
		up := true
		out.UpgradeRequired = &up
	}
	return out
}

// ToApiVerificationStatus converts the gate summary for a user.
func ToApiVerificationStatus(s verification.Status) *api.VerificationStatus {
	return &api.VerificationStatus{
		UserId:                s.UserID,
		EmailVerified:         s.EmailVerified,
		KycStatus:             string(s.KYCStatus),
		KycVerified:           s.KYCVerified,
		Tier:                  string(s.Tier),
		Access:                ToApiGateDecision(s.Access),
		CreateTransaction:     ToApiGateDecision(s.CreateTransaction),
		ReceivePayouts:        ToApiGateDecision(s.ReceivePayouts),
		TransactionsThisMonth: s.TransactionsThisMonth,
	}
}
