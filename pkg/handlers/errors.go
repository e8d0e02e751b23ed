package handlers

import (
	"errors"
	"net/http"

	"github.com/chris/escrow-marketplace/pkg/api"
	"github.com/chris/escrow-marketplace/pkg/escrow"
	"github.com/chris/escrow-marketplace/pkg/fees"
	"github.com/chris/escrow-marketplace/pkg/gateway"
	"github.com/chris/escrow-marketplace/pkg/models"
	"github.com/chris/escrow-marketplace/pkg/service"
	"github.com/chris/escrow-marketplace/pkg/storage"
	"github.com/chris/escrow-marketplace/pkg/tiers"
	"github.com/chris/escrow-marketplace/pkg/verification"
)

// ErrorResponse maps a service error to its HTTP status and body.
func ErrorResponse(err error) (int, api.Error) {
	body := api.Error{Error: err.Error()}

	var denied *verification.DeniedError
	var transition *escrow.TransitionError
	var validation *escrow.ValidationError

	switch {
	case errors.Is(err, escrow.ErrInvariantViolation):
		body.Error = "internal error"
		body.Code = "invariant_violation"
		return http.StatusInternalServerError, body

	case errors.As(err, &denied):
		d := denied.Decision
		body.Code = "verification_required"
		if d.UpgradeRequired {
			body.Code = "upgrade_required"
			up := true
			body.UpgradeRequired = &up
		}
		body.Reason = optString(d.Reason)
		body.RequiredAction = optString(string(d.RequiredAction))
		body.KycStatus = optString(string(d.KYCStatus))
		if d.Step != 0 {
			step := d.Step
			body.Step = &step
		}
		return http.StatusForbidden, body

	case errors.As(err, &validation),
		errors.Is(err, fees.ErrInvalidAmount),
		errors.Is(err, tiers.ErrUnknownTier),
		errors.Is(err, tiers.ErrNoExchangeRate),
		errors.Is(err, models.ErrUnsupportedCurrency):
		body.Code = "validation_failed"
		return http.StatusBadRequest, body

	case errors.Is(err, storage.ErrNotFound):
		body.Code = "not_found"
		return http.StatusNotFound, body

	case errors.Is(err, storage.ErrConcurrentModification):
		body.Code = "concurrent_modification"
		return http.StatusConflict, body

	case errors.Is(err, gateway.ErrUpstreamUnavailable):
		body.Code = "upstream_unavailable"
		return http.StatusBadGateway, body

	case errors.As(err, &transition):
		current, target := string(transition.Current), string(transition.Target)
		body.CurrentStatus = optString(current)
		body.TargetStatus = optString(target)
		body.Reason = optString(transition.Reason)
		if errors.Is(err, escrow.ErrForbidden) {
			body.Code = "forbidden"
			return http.StatusForbidden, body
		}
		body.Code = transitionCode(err)
		if errors.Is(err, escrow.ErrInvalidDeliveryProof) {
			return http.StatusUnprocessableEntity, body
		}
		return http.StatusConflict, body

	case errors.Is(err, escrow.ErrForbidden):
		body.Code = "forbidden"
		return http.StatusForbidden, body

	case errors.Is(err, escrow.ErrAlreadyResolved):
		body.Code = "already_resolved"
		return http.StatusConflict, body
	}

	body.Error = "internal error"
	body.Code = "internal"
	return http.StatusInternalServerError, body
}

func transitionCode(err error) string {
	switch {
	case errors.Is(err, escrow.ErrDisputeOpen):
		return "dispute_open"
	case errors.Is(err, escrow.ErrAlreadyResolved):
		return "already_resolved"
	case errors.Is(err, escrow.ErrAutoReleaseNotDue):
		return "auto_release_not_due"
	case errors.Is(err, escrow.ErrUnderpaid):
		return "underpaid"
	case errors.Is(err, escrow.ErrPayoutMismatch):
		return "payout_mismatch"
	case errors.Is(err, escrow.ErrInvalidDeliveryProof):
		return "invalid_delivery_proof"
	case errors.Is(err, service.ErrPaymentNotVerified):
		return "payment_not_verified"
	case errors.Is(err, service.ErrTransferNotSettled):
		return "transfer_not_settled"
	case errors.Is(err, service.ErrReferenceMismatch):
		return "reference_mismatch"
	}
	return "invalid_transition"
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// writeError logs server-side failures and writes the mapped error body.
func (h *ApiHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := ErrorResponse(err)
	if status >= http.StatusInternalServerError {
		h.Logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, body)
}
