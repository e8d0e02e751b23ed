package tiers

import (
	"fmt"
	"os"

	"github.com/chris/escrow-marketplace/pkg/models"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// catalogFile is the on-disk shape. Amounts are strings so no value passes
// through a float.
type catalogFile struct {
	ExchangeRates map[string]string `yaml:"exchange_rates"`
	Tiers         []tierFile        `yaml:"tiers"`
}

type tierFile struct {
	ID                      string                  `yaml:"id"`
	Name                    string                  `yaml:"name"`
	Rank                    int                     `yaml:"rank"`
	MonthlyCost             map[string]string       `yaml:"monthly_cost"`
	SetupFee                map[string]string       `yaml:"setup_fee"`
	MaxTransactionsPerMonth int                     `yaml:"max_transactions_per_month"`
	MaxTransactionAmount    map[string]string       `yaml:"max_transaction_amount"`
	FeePercent              map[string]feeRateEntry `yaml:"fee_percent"`
}

type feeRateEntry struct {
	Buyer  string `yaml:"buyer"`
	Seller string `yaml:"seller"`
}

// LoadCatalog reads a YAML tier catalog. An empty path yields the default catalog.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tier catalog: %w", err)
	}
	return ParseCatalog(raw)
}

// ParseCatalog decodes a YAML tier catalog. Missing exchange rates fall back
// to the built-in table.
func ParseCatalog(raw []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("failed to decode tier catalog: %w", err)
	}
	if len(f.Tiers) == 0 {
		return nil, fmt.Errorf("tier catalog defines no tiers")
	}

	rates := DefaultExchangeRates()
	for code, v := range f.ExchangeRates {
		r, err := decimal.NewFromString(v)
		if err != nil {
			return nil, fmt.Errorf("exchange rate %s: %w", code, err)
		}
		rates[models.Currency(code)] = r
	}

	tiers := make([]Tier, 0, len(f.Tiers))
	for _, tf := range f.Tiers {
		t, err := tf.toTier()
		if err != nil {
			return nil, fmt.Errorf("tier %q: %w", tf.ID, err)
		}
		tiers = append(tiers, t)
	}
	return NewCatalog(tiers, rates)
}

func (tf tierFile) toTier() (Tier, error) {
	monthly, err := decimalMap(tf.MonthlyCost)
	if err != nil {
		return Tier{}, fmt.Errorf("monthly_cost: %w", err)
	}
	setup, err := decimalMap(tf.SetupFee)
	if err != nil {
		return Tier{}, fmt.Errorf("setup_fee: %w", err)
	}
	limits, err := decimalMap(tf.MaxTransactionAmount)
	if err != nil {
		return Tier{}, fmt.Errorf("max_transaction_amount: %w", err)
	}
	fees := make(map[string]FeeRate, len(tf.FeePercent))
	for bucket, e := range tf.FeePercent {
		buyer, err := decimal.NewFromString(e.Buyer)
		if err != nil {
			return Tier{}, fmt.Errorf("fee_percent.%s.buyer: %w", bucket, err)
		}
		seller, err := decimal.NewFromString(e.Seller)
		if err != nil {
			return Tier{}, fmt.Errorf("fee_percent.%s.seller: %w", bucket, err)
		}
		fees[bucket] = FeeRate{Buyer: buyer, Seller: seller}
	}
	return Tier{
		ID:                      models.TierID(tf.ID),
		Name:                    tf.Name,
		Rank:                    tf.Rank,
		MonthlyCost:             monthly,
		SetupFee:                setup,
		MaxTransactionsPerMonth: tf.MaxTransactionsPerMonth,
		MaxTransactionAmount:    limits,
		FeePercent:              fees,
	}, nil
}

func decimalMap(in map[string]string) (map[models.Currency]decimal.Decimal, error) {
	out := make(map[models.Currency]decimal.Decimal, len(in))
	for code, v := range in {
		cur, err := models.ParseCurrency(code)
		if err != nil {
			return nil, err
		}
		amt, err := decimal.NewFromString(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", code, err)
		}
		out[cur] = amt
	}
	return out, nil
}
