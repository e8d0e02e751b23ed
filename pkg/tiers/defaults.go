package tiers

import (
	"github.com/chris/escrow-marketplace/pkg/models"
	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func rate(buyer, seller string) FeeRate {
	return FeeRate{Buyer: d(buyer), Seller: d(seller)}
}

// DefaultExchangeRates are units of each currency per one USD. BTC and ETH
// have no entry; tiers carry explicit limits for them.
func DefaultExchangeRates() map[models.Currency]decimal.Decimal {
	return map[models.Currency]decimal.Decimal{
		models.EUR:  d("0.92"),
		models.GBP:  d("0.79"),
		models.NGN:  d("1550"),
		models.GHS:  d("15.5"),
		models.KES:  d("129"),
		models.ZAR:  d("18.5"),
		models.USDT: d("1"),
		models.USDC: d("1"),
	}
}

// DefaultTiers is the built-in plan table.
func DefaultTiers() []Tier {
	unlimited := decimal.NewFromInt(Unlimited)
	return []Tier{
		{
			ID:                      models.TierFree,
			Name:                    "Free",
			Rank:                    0,
			MonthlyCost:             map[models.Currency]decimal.Decimal{models.USD: d("0")},
			SetupFee:                map[models.Currency]decimal.Decimal{models.USD: d("0")},
			MaxTransactionsPerMonth: 5,
			MaxTransactionAmount: map[models.Currency]decimal.Decimal{
				models.USD: d("1000"),
				models.BTC: d("0.015"),
				models.ETH: d("0.4"),
			},
			FeePercent: map[string]FeeRate{
				BucketFiat:   rate("5.0", "5.0"),
				BucketCrypto: rate("3.0", "3.0"),
			},
		},
		{
			ID:                      models.TierStarter,
			Name:                    "Starter",
			Rank:                    1,
			MonthlyCost:             map[models.Currency]decimal.Decimal{models.USD: d("19")},
			SetupFee:                map[models.Currency]decimal.Decimal{models.USD: d("0")},
			MaxTransactionsPerMonth: 25,
			MaxTransactionAmount: map[models.Currency]decimal.Decimal{
				models.USD: d("10000"),
				models.BTC: d("0.15"),
				models.ETH: d("4"),
			},
			FeePercent: map[string]FeeRate{
				BucketFiat:   rate("3.5", "3.5"),
				BucketCrypto: rate("2.0", "2.0"),
			},
		},
		{
			ID:                      models.TierGrowth,
			Name:                    "Growth",
			Rank:                    2,
			MonthlyCost:             map[models.Currency]decimal.Decimal{models.USD: d("49")},
			SetupFee:                map[models.Currency]decimal.Decimal{models.USD: d("0")},
			MaxTransactionsPerMonth: 100,
			MaxTransactionAmount: map[models.Currency]decimal.Decimal{
				models.USD: d("50000"),
				models.BTC: d("0.75"),
				models.ETH: d("20"),
			},
			FeePercent: map[string]FeeRate{
				BucketFiat:   rate("2.5", "2.5"),
				BucketCrypto: rate("1.5", "1.5"),
			},
		},
		{
			ID:                      models.TierEnterprise,
			Name:                    "Enterprise",
			Rank:                    3,
			MonthlyCost:             map[models.Currency]decimal.Decimal{models.USD: d("199")},
			SetupFee:                map[models.Currency]decimal.Decimal{models.USD: d("99")},
			MaxTransactionsPerMonth: Unlimited,
			MaxTransactionAmount:    map[models.Currency]decimal.Decimal{models.USD: unlimited},
			FeePercent: map[string]FeeRate{
				BucketFiat:   rate("1.5", "1.5"),
				BucketCrypto: rate("1.0", "1.0"),
			},
		},
		{
			ID:                      models.TierAPI,
			Name:                    "API",
			Rank:                    4,
			MonthlyCost:             map[models.Currency]decimal.Decimal{models.USD: d("499")},
			SetupFee:                map[models.Currency]decimal.Decimal{models.USD: d("249")},
			MaxTransactionsPerMonth: Unlimited,
			MaxTransactionAmount:    map[models.Currency]decimal.Decimal{models.USD: unlimited},
			FeePercent: map[string]FeeRate{
				BucketFiat:   rate("1.0", "1.0"),
				BucketCrypto: rate("0.5", "0.5"),
			},
		},
	}
}

// DefaultCatalog builds the catalog from the built-in tables.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultTiers(), DefaultExchangeRates())
	if err != nil {
		panic("tiers: invalid default catalog: " + err.Error())
	}
	return c
}
