package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/chris/escrow-marketplace/pkg/escrow"
	"github.com/chris/escrow-marketplace/pkg/models"
	"github.com/chris/escrow-marketplace/pkg/tiers"
	"github.com/chris/escrow-marketplace/pkg/verification"
	"github.com/shopspring/decimal"
)

// ListTiers renders every tier's pricing in currency, converted from USD.
func (s *Service) ListTiers(currency string) ([]tiers.Price, error) {
	c, err := models.ParseCurrency(currency)
	if err != nil {
		return nil, &escrow.ValidationError{Field: "currency", Message: err.Error(), Err: models.ErrUnsupportedCurrency}
	}
	prices, err := s.catalog.Prices(c)
	if errors.Is(err, tiers.ErrNoExchangeRate) {
		// Subscriptions are billed in fiat; crypto has no quoted rate.
		return nil, &escrow.ValidationError{Field: "currency", Message: fmt.Sprintf("tier prices are not quoted in %s", c), Err: err}
	}
	return prices, err
}

// QuoteFees returns the fee breakdown for a prospective escrow. It has no
// side effects beyond a metric.
func (s *Service) QuoteFees(amount decimal.Decimal, currency string, tierID models.TierID) (models.FeeBreakdown, error) {
	c, err := models.ParseCurrency(currency)
	if err != nil {
		return models.FeeBreakdown{}, &escrow.ValidationError{Field: "currency", Message: err.Error(), Err: models.ErrUnsupportedCurrency}
	}
	if tierID == "" {
		tierID = models.TierFree
	}
	quote, err := s.fees.Compute(amount, c, tierID)
	if err != nil {
		return models.FeeBreakdown{}, err
	}
	s.metrics.FeeQuoted(string(quote.Tier), string(quote.Currency))
	return quote, nil
}

// VerificationStatus returns every gate decision for the actor.
func (s *Service) VerificationStatus(ctx context.Context, actorID string) (verification.Status, error) {
	u, err := s.loadUser(ctx, actorID)
	if err != nil {
		return verification.Status{}, err
	}
	return s.gate.Evaluate(u)
}
