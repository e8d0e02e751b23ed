package handlers

import (
	"net/http"

	"github.com/chris/escrow-marketplace/pkg/api"
	"github.com/chris/escrow-marketplace/pkg/escrow"
	"github.com/chris/escrow-marketplace/pkg/mapping"
	"github.com/chris/escrow-marketplace/pkg/models"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// RaiseDispute opens a dispute on a funded or delivered escrow.
func (h *ApiHandler) RaiseDispute(w http.ResponseWriter, r *http.Request, escrowId openapi_types.UUID) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var body api.RaiseDisputeJSONRequestBody
	if !decode(w, r, &body) {
		return
	}
	e, err := h.Service.RaiseDispute(r.Context(), escrowId.String(), actor, body.Reason, mapping.ToDomainEvidence(body.Evidence))
	h.respondEscrow(w, r, http.StatusCreated, e, err)
}

// GetDispute returns a dispute to its parties or an admin.
func (h *ApiHandler) GetDispute(w http.ResponseWriter, r *http.Request, disputeId openapi_types.UUID) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	d, err := h.Service.GetDispute(r.Context(), disputeId.String(), actor)
	h.respondDispute(w, r, d, err)
}

// AssignDispute assigns the dispute to the calling admin.
func (h *ApiHandler) AssignDispute(w http.ResponseWriter, r *http.Request, disputeId openapi_types.UUID) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	d, err := h.Service.AssignDispute(r.Context(), disputeId.String(), actor)
	h.respondDispute(w, r, d, err)
}

// ResolveDispute records the calling admin's decision.
func (h *ApiHandler) ResolveDispute(w http.ResponseWriter, r *http.Request, disputeId openapi_types.UUID) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var body api.ResolveDisputeJSONRequestBody
	if !decode(w, r, &body) {
		return
	}
	req, err := mapping.ToDomainResolveRequest(&body)
	if err != nil {
		h.writeError(w, r, &escrow.ValidationError{Field: "refund_percentage", Message: "must be a decimal number"})
		return
	}
	d, err := h.Service.ResolveDispute(r.Context(), disputeId.String(), actor, req)
	h.respondDispute(w, r, d, err)
}

func (h *ApiHandler) respondDispute(w http.ResponseWriter, r *http.Request, d *models.Dispute, err error) {
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapping.ToApiDispute(d))
}
