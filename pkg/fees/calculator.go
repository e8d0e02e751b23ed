// Package fees computes escrow fee breakdowns from the tier catalog.
package fees

import (
	"errors"
	"fmt"

	"github.com/chris/escrow-marketplace/pkg/models"
	"github.com/chris/escrow-marketplace/pkg/tiers"
	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned for amounts that are zero or negative.
var ErrInvalidAmount = errors.New("amount must be greater than zero")

var hundred = decimal.NewFromInt(100)

// Calculator is a pure function over the catalog; it holds no clock or randomness.
type Calculator struct {
	catalog *tiers.Catalog
}

// NewCalculator creates a calculator bound to a tier catalog.
func NewCalculator(catalog *tiers.Catalog) *Calculator {
	return &Calculator{catalog: catalog}
}

// Compute returns the fee breakdown for amount in currency under tier.
// Each fee is rounded once from the raw product; every derived figure is
// exact arithmetic on those rounded fees.
func (c *Calculator) Compute(amount decimal.Decimal, currency models.Currency, tierID models.TierID) (models.FeeBreakdown, error) {
	if !amount.IsPositive() {
		return models.FeeBreakdown{}, fmt.Errorf("%w: %s", ErrInvalidAmount, amount.String())
	}
	if !currency.Valid() {
		return models.FeeBreakdown{}, fmt.Errorf("%w: %q", models.ErrUnsupportedCurrency, currency)
	}
	tier, err := c.catalog.Tier(tierID)
	if err != nil {
		return models.FeeBreakdown{}, err
	}

	r := tier.FeeRateFor(currency)
	buyerFee := models.Round2(amount.Mul(r.Buyer).Div(hundred))
	sellerFee := models.Round2(amount.Mul(r.Seller).Div(hundred))

	return models.FeeBreakdown{
		Amount:           amount,
		Currency:         currency,
		Tier:             tier.ID,
		BuyerFeePercent:  r.Buyer,
		SellerFeePercent: r.Seller,
		BuyerFee:         buyerFee,
		SellerFee:        sellerFee,
		PlatformFee:      buyerFee.Add(sellerFee),
		BuyerPays:        amount.Add(buyerFee),
		SellerReceives:   amount.Sub(sellerFee),
	}, nil
}
