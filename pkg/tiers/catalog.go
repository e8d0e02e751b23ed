package tiers

import (
	"errors"
	"fmt"
	"maps"
	"sort"

	"github.com/chris/escrow-marketplace/pkg/models"
	"github.com/shopspring/decimal"
)

var (
	// ErrUnknownTier is returned when a tier id is not in the catalog.
	ErrUnknownTier = errors.New("unknown tier")
	// ErrNoExchangeRate is returned when a USD amount cannot be converted to a currency.
	ErrNoExchangeRate = errors.New("no exchange rate for currency")
)

// Unlimited is the sentinel for an unbounded count or amount limit.
const Unlimited = -1

// Fee buckets used when a currency has no explicit fee entry.
const (
	BucketFiat   = "fiat"
	BucketCrypto = "crypto"
)

// FeeRate is a buyer/seller pair of fee percentages (3.5 means 3.5%).
type FeeRate struct {
	Buyer  decimal.Decimal `json:"buyer"`
	Seller decimal.Decimal `json:"seller"`
}

// Tier is an immutable subscription plan definition.
type Tier struct {
	ID                      models.TierID                       `json:"id"`
	Name                    string                              `json:"name"`
	Rank                    int                                 `json:"rank"`
	MonthlyCost             map[models.Currency]decimal.Decimal `json:"monthly_cost"`
	SetupFee                map[models.Currency]decimal.Decimal `json:"setup_fee"`
	MaxTransactionsPerMonth int                                 `json:"max_transactions_per_month"`
	MaxTransactionAmount    map[models.Currency]decimal.Decimal `json:"max_transaction_amount"`
	FeePercent              map[string]FeeRate                  `json:"fee_percent"`
}

// Clone returns a copy of t that shares no maps with it.
func (t *Tier) Clone() *Tier {
	c := *t
	c.MonthlyCost = maps.Clone(t.MonthlyCost)
	c.SetupFee = maps.Clone(t.SetupFee)
	c.MaxTransactionAmount = maps.Clone(t.MaxTransactionAmount)
	c.FeePercent = maps.Clone(t.FeePercent)
	return &c
}

// FeeRateFor resolves the fee percentages for a currency: an explicit entry
// first, then the crypto bucket for crypto currencies, then the fiat bucket.
func (t *Tier) FeeRateFor(currency models.Currency) FeeRate {
	if r, ok := t.FeePercent[string(currency)]; ok {
		return r
	}
	if currency.IsCrypto() {
		if r, ok := t.FeePercent[BucketCrypto]; ok {
			return r
		}
	}
	return t.FeePercent[BucketFiat]
}

// UnlimitedTransactions reports whether the monthly count limit is unbounded.
func (t *Tier) UnlimitedTransactions() bool {
	return t.MaxTransactionsPerMonth == Unlimited
}

// Catalog is a read-only set of tiers plus the static USD exchange table.
type Catalog struct {
	tiers map[models.TierID]*Tier
	rates map[models.Currency]decimal.Decimal
}

// NewCatalog validates and indexes the given tiers. Rates are units of the
// currency per one USD.
func NewCatalog(tiers []Tier, rates map[models.Currency]decimal.Decimal) (*Catalog, error) {
	c := &Catalog{
		tiers: make(map[models.TierID]*Tier, len(tiers)),
		rates: map[models.Currency]decimal.Decimal{models.USD: decimal.NewFromInt(1)},
	}
	for cur, r := range rates {
		if !cur.Valid() {
			return nil, fmt.Errorf("exchange rate for %q: %w", cur, models.ErrUnsupportedCurrency)
		}
		if !r.IsPositive() {
			return nil, fmt.Errorf("exchange rate for %s must be positive", cur)
		}
		c.rates[cur] = r
	}
	for i := range tiers {
		t := tiers[i]
		if t.ID == "" {
			return nil, fmt.Errorf("tier at index %d has no id", i)
		}
		if _, dup := c.tiers[t.ID]; dup {
			return nil, fmt.Errorf("duplicate tier %q", t.ID)
		}
		if _, ok := t.FeePercent[BucketFiat]; !ok {
			return nil, fmt.Errorf("tier %q has no %s fee bucket", t.ID, BucketFiat)
		}
		for bucket, r := range t.FeePercent {
			if r.Buyer.IsNegative() || r.Seller.IsNegative() {
				return nil, fmt.Errorf("tier %q bucket %s has a negative fee", t.ID, bucket)
			}
		}
		if t.MaxTransactionsPerMonth < Unlimited {
			return nil, fmt.Errorf("tier %q has invalid monthly transaction limit %d", t.ID, t.MaxTransactionsPerMonth)
		}
		c.tiers[t.ID] = t.Clone()
	}
	return c, nil
}

// Tier returns a copy of the tier with the given id.
func (c *Catalog) Tier(id models.TierID) (*Tier, error) {
	t, ok := c.tiers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTier, id)
	}
	return t.Clone(), nil
}

// Tiers returns copies of every tier ordered by rank, free first.
func (c *Catalog) Tiers() []*Tier {
	out := make([]*Tier, 0, len(c.tiers))
	for _, t := range c.tiers {
		out = append(out, t.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out
}

// ConvertFromUSD multiplies by the static exchange rate and rounds to cents.
func (c *Catalog) ConvertFromUSD(usd decimal.Decimal, to models.Currency) (decimal.Decimal, error) {
	rate, ok := c.rates[to]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrNoExchangeRate, to)
	}
	return models.Round2(usd.Mul(rate)), nil
}

// MaxTransactionAmount returns the per-transaction ceiling of a tier in the
// given currency. bounded is false when the tier has no ceiling.
func (c *Catalog) MaxTransactionAmount(t *Tier, currency models.Currency) (limit decimal.Decimal, bounded bool, err error) {
	if v, ok := t.MaxTransactionAmount[currency]; ok {
		return v, !isUnlimited(v), nil
	}
	usd, ok := t.MaxTransactionAmount[models.USD]
	if !ok || isUnlimited(usd) {
		return decimal.Zero, false, nil
	}
	v, err := c.ConvertFromUSD(usd, currency)
	if err != nil {
		return decimal.Zero, false, err
	}
	return v, true, nil
}

// Price is a tier's pricing rendered in a single currency.
type Price struct {
	Tier                    models.TierID   `json:"tier"`
	Name                    string          `json:"name"`
	Currency                models.Currency `json:"currency"`
	MonthlyCost             decimal.Decimal `json:"monthly_cost"`
	SetupFee                decimal.Decimal `json:"setup_fee"`
	MaxTransactionsPerMonth int             `json:"max_transactions_per_month"`
	MaxTransactionAmount    decimal.Decimal `json:"max_transaction_amount"`
	FeePercent              FeeRate         `json:"fee_percent"`
}

// Prices renders every tier in the given currency. Explicit per-currency
// prices win over converted USD prices.
func (c *Catalog) Prices(currency models.Currency) ([]Price, error) {
	tiers := c.Tiers()
	out := make([]Price, 0, len(tiers))
	for _, t := range tiers {
		monthly, err := c.priceIn(t.MonthlyCost, currency)
		if err != nil {
			return nil, fmt.Errorf("tier %s monthly cost: %w", t.ID, err)
		}
		setup, err := c.priceIn(t.SetupFee, currency)
		if err != nil {
			return nil, fmt.Errorf("tier %s setup fee: %w", t.ID, err)
		}
		limit, bounded, err := c.MaxTransactionAmount(t, currency)
		if err != nil {
			return nil, fmt.Errorf("tier %s transaction limit: %w", t.ID, err)
		}
		if !bounded {
			limit = decimal.NewFromInt(Unlimited)
		}
		out = append(out, Price{
			Tier:                    t.ID,
			Name:                    t.Name,
			Currency:                currency,
			MonthlyCost:             monthly,
			SetupFee:                setup,
			MaxTransactionsPerMonth: t.MaxTransactionsPerMonth,
			MaxTransactionAmount:    limit,
			FeePercent:              t.FeeRateFor(currency),
		})
	}
	return out, nil
}

func (c *Catalog) priceIn(prices map[models.Currency]decimal.Decimal, currency models.Currency) (decimal.Decimal, error) {
	if v, ok := prices[currency]; ok {
		return v, nil
	}
	return c.ConvertFromUSD(prices[models.USD], currency)
}

func isUnlimited(v decimal.Decimal) bool {
	return v.Equal(decimal.NewFromInt(Unlimited))
}
