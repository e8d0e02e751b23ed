package handlers

import (
	"net/http"
	"strings"

	"github.com/chris/escrow-marketplace/pkg/api"
	"github.com/chris/escrow-marketplace/pkg/escrow"
	"github.com/chris/escrow-marketplace/pkg/mapping"
	"github.com/chris/escrow-marketplace/pkg/models"
	"github.com/chris/escrow-marketplace/pkg/service"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"
)

// ListEscrows returns every escrow the caller is a party to, newest first.
func (h *ApiHandler) ListEscrows(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	escrows, err := h.Service.ListEscrows(r.Context(), actor)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapping.ToApiEscrows(escrows))
}

// CreateEscrow opens a pending escrow with the caller as buyer.
func (h *ApiHandler) CreateEscrow(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var body api.CreateEscrowJSONRequestBody
	if !decode(w, r, &body) {
		return
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(body.Amount))
	if err != nil {
		h.writeError(w, r, &escrow.ValidationError{Field: "amount", Message: "must be a decimal number"})
		return
	}

	req := service.CreateEscrowRequest{
		BuyerID:     actor,
		SellerEmail: string(body.SellerEmail),
		Amount:      amount,
		Currency:    body.Currency,
		Title:       body.Title,
	}
	if body.Description != nil {
		req.Description = *body.Description
	}

	created, err := h.Service.CreateEscrow(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapping.ToApiEscrow(created))
}

// GetEscrow returns one escrow to a participant or dispute admin.
func (h *ApiHandler) GetEscrow(w http.ResponseWriter, r *http.Request, escrowId openapi_types.UUID) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	e, err := h.Service.GetEscrow(r.Context(), escrowId.String(), actor)
	h.respondEscrow(w, r, http.StatusOK, e, err)
}

// AcceptEscrow moves a pending escrow to accepted.
func (h *ApiHandler) AcceptEscrow(w http.ResponseWriter, r *http.Request, escrowId openapi_types.UUID) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	e, err := h.Service.AcceptEscrow(r.Context(), escrowId.String(), actor)
	h.respondEscrow(w, r, http.StatusOK, e, err)
}

// InitializeFunding starts a payment session for the buyer.
func (h *ApiHandler) InitializeFunding(w http.ResponseWriter, r *http.Request, escrowId openapi_types.UUID) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	session, err := h.Service.InitializeFunding(r.Context(), escrowId.String(), actor)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapping.ToApiFundingSession(session))
}

// FundEscrow records the buyer's verified payment.
func (h *ApiHandler) FundEscrow(w http.ResponseWriter, r *http.Request, escrowId openapi_types.UUID) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var body api.FundEscrowJSONRequestBody
	if !decode(w, r, &body) {
		return
	}
	e, err := h.Service.FundEscrow(r.Context(), escrowId.String(), actor, body.PaymentReference)
	h.respondEscrow(w, r, http.StatusOK, e, err)
}

// SubmitDelivery records the seller's delivery proof.
func (h *ApiHandler) SubmitDelivery(w http.ResponseWriter, r *http.Request, escrowId openapi_types.UUID) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var body api.SubmitDeliveryJSONRequestBody
	if !decode(w, r, &body) {
		return
	}
	e, err := h.Service.SubmitDelivery(r.Context(), escrowId.String(), actor, mapping.ToDomainDeliveryProof(&body))
	h.respondEscrow(w, r, http.StatusOK, e, err)
}

// ConfirmDelivery completes a delivered escrow on the buyer's word.
func (h *ApiHandler) ConfirmDelivery(w http.ResponseWriter, r *http.Request, escrowId openapi_types.UUID) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	e, err := h.Service.ConfirmDelivery(r.Context(), escrowId.String(), actor)
	h.respondEscrow(w, r, http.StatusOK, e, err)
}

// CancelEscrow cancels an escrow before delivery. The body is optional.
func (h *ApiHandler) CancelEscrow(w http.ResponseWriter, r *http.Request, escrowId openapi_types.UUID) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var body api.CancelEscrowJSONRequestBody
	if r.ContentLength != 0 && !decode(w, r, &body) {
		return
	}
	var reason string
	if body.Reason != nil {
		reason = *body.Reason
	}
	e, err := h.Service.CancelEscrow(r.Context(), escrowId.String(), actor, reason)
	h.respondEscrow(w, r, http.StatusOK, e, err)
}

// RequestPayout asks the payout provider to pay the seller. The transfer may
// still be pending, in which case 202 is returned.
func (h *ApiHandler) RequestPayout(w http.ResponseWriter, r *http.Request, escrowId openapi_types.UUID) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	transfer, err := h.Service.RequestPayout(r.Context(), escrowId.String(), actor)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	status := http.StatusAccepted
	if transfer.Succeeded() {
		status = http.StatusOK
	}
	writeJSON(w, status, mapping.ToApiTransfer(transfer))
}

// ConfirmPayout handles the payout provider's completion callback.
func (h *ApiHandler) ConfirmPayout(w http.ResponseWriter, r *http.Request, escrowId openapi_types.UUID) {
	var body api.ConfirmPayoutJSONRequestBody
	if !decode(w, r, &body) {
		return
	}
	e, err := h.Service.ConfirmPayout(r.Context(), escrowId.String(), body.TransferReference)
	h.respondEscrow(w, r, http.StatusOK, e, err)
}

func (h *ApiHandler) respondEscrow(w http.ResponseWriter, r *http.Request, status int, e *models.Escrow, err error) {
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, status, mapping.ToApiEscrow(e))
}
