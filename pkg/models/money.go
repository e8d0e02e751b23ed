package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrUnsupportedCurrency is returned when a currency code is not in the supported set.
var ErrUnsupportedCurrency = errors.New("unsupported currency")

// Currency is an ISO-like currency code accepted by the marketplace.
type Currency string

const (
	USD  Currency = "USD"
	EUR  Currency = "EUR"
	GBP  Currency = "GBP"
	NGN  Currency = "NGN"
	GHS  Currency = "GHS"
	KES  Currency = "KES"
	ZAR  Currency = "ZAR"
	BTC  Currency = "BTC"
	ETH  Currency = "ETH"
	USDT Currency = "USDT"
	USDC Currency = "USDC"
)

// SupportedCurrencies lists every currency an escrow may be denominated in.
var SupportedCurrencies = []Currency{USD, EUR, GBP, NGN, GHS, KES, ZAR, BTC, ETH, USDT, USDC}

// Valid reports whether the currency is in the supported set.
func (c Currency) Valid() bool {
	switch c {
	case USD, EUR, GBP, NGN, GHS, KES, ZAR, BTC, ETH, USDT, USDC:
		return true
	default:
		return false
	}
}

// IsCrypto reports whether the currency settles in the crypto fee bucket.
func (c Currency) IsCrypto() bool {
	switch c {
	case BTC, ETH, USDT, USDC:
		return true
	default:
		return false
	}
}

// ParseCurrency normalises a currency code and checks it against the supported set.
func ParseCurrency(code string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(code)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedCurrency, code)
	}
	return c, nil
}

// Round2 rounds a monetary value to cents, half away from zero. For the
// non-negative amounts handled here that is round-half-up.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// FeeBreakdown is the output of the fee calculator for a given amount, currency and tier.
type FeeBreakdown struct {
	Amount           decimal.Decimal `json:"amount"`
	Currency         Currency        `json:"currency"`
	Tier             TierID          `json:"tier"`
	BuyerFeePercent  decimal.Decimal `json:"buyer_fee_percent"`
	SellerFeePercent decimal.Decimal `json:"seller_fee_percent"`
	BuyerFee         decimal.Decimal `json:"buyer_fee"`
	SellerFee        decimal.Decimal `json:"seller_fee"`
	PlatformFee      decimal.Decimal `json:"platform_fee"`
	BuyerPays        decimal.Decimal `json:"buyer_pays"`
	SellerReceives   decimal.Decimal `json:"seller_receives"`
}
