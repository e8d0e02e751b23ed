package handlers

import (
	"net/http"
	"strings"

	"github.com/chris/escrow-marketplace/pkg/api"
	"github.com/chris/escrow-marketplace/pkg/escrow"
	"github.com/chris/escrow-marketplace/pkg/mapping"
	"github.com/chris/escrow-marketplace/pkg/models"
	"github.com/shopspring/decimal"
)

// QuoteFees returns the fee breakdown for an amount under a tier.
func (h *ApiHandler) QuoteFees(w http.ResponseWriter, r *http.Request, params api.QuoteFeesParams) {
	amount, err := decimal.NewFromString(strings.TrimSpace(params.Amount))
	if err != nil {
		h.writeError(w, r, &escrow.ValidationError{Field: "amount", Message: "must be a decimal number"})
		return
	}
	var tier models.TierID
	if params.Tier != nil {
		tier = models.TierID(*params.Tier)
	}
	quote, err := h.Service.QuoteFees(amount, params.Currency, tier)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapping.ToApiFeeBreakdown(quote))
}

// ListTiers returns tier pricing, in USD unless a currency is given.
func (h *ApiHandler) ListTiers(w http.ResponseWriter, r *http.Request, params api.ListTiersParams) {
	currency := string(models.USD)
	if params.Currency != nil && *params.Currency != "" {
		currency = *params.Currency
	}
	prices, err := h.Service.ListTiers(currency)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapping.ToApiTierPrices(prices))
}

// GetVerificationStatus returns the caller's gate decisions.
func (h *ApiHandler) GetVerificationStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	status, err := h.Service.VerificationStatus(r.Context(), actor)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapping.ToApiVerificationStatus(status))
}
