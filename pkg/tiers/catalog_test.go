package tiers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chris/escrow-marketplace/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_Tier(t *testing.T) {
	c := DefaultCatalog()

	t.Run("Known Tier", func(t *testing.T) {
		tier, err := c.Tier(models.TierStarter)
		require.NoError(t, err)
		assert.Equal(t, "Starter", tier.Name)
		assert.Equal(t, 25, tier.MaxTransactionsPerMonth)
	})

	t.Run("Unknown Tier", func(t *testing.T) {
		_, err := c.Tier("platinum")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnknownTier)
	})
}

func TestCatalog_TiersOrderedByRank(t *testing.T) {
	ids := []models.TierID{}
	for _, tier := range DefaultCatalog().Tiers() {
		ids = append(ids, tier.ID)
	}
	assert.Equal(t, []models.TierID{
		models.TierFree, models.TierStarter, models.TierGrowth, models.TierEnterprise, models.TierAPI,
	}, ids)
}

func TestTier_FeeRateFor(t *testing.T) {
	tier, err := DefaultCatalog().Tier(models.TierStarter)
	require.NoError(t, err)

	assert.True(t, tier.FeeRateFor(models.NGN).Buyer.Equal(decimal.RequireFromString("3.5")))
	assert.True(t, tier.FeeRateFor(models.USDT).Buyer.Equal(decimal.RequireFromString("2.0")))

	t.Run("Explicit Currency Entry Wins", func(t *testing.T) {
		custom := *tier
		custom.FeePercent = map[string]FeeRate{
			BucketFiat: rate("3.5", "3.5"),
			"GBP":      rate("3.0", "2.0"),
		}
		r := custom.FeeRateFor(models.GBP)
		assert.True(t, r.Buyer.Equal(decimal.RequireFromString("3.0")))
		assert.True(t, r.Seller.Equal(decimal.RequireFromString("2.0")))
	})

	t.Run("Crypto Falls Back To Fiat Without Crypto Bucket", func(t *testing.T) {
		custom := *tier
		custom.FeePercent = map[string]FeeRate{BucketFiat: rate("4", "4")}
		assert.True(t, custom.FeeRateFor(models.BTC).Buyer.Equal(decimal.NewFromInt(4)))
	})
}

func TestTiers_FeesNonIncreasingWithRank(t *testing.T) {
	tiers := DefaultCatalog().Tiers()
	for _, cur := range models.SupportedCurrencies {
		for i := 1; i < len(tiers); i++ {
			prev, next := tiers[i-1].FeeRateFor(cur), tiers[i].FeeRateFor(cur)
			assert.True(t, next.Buyer.LessThanOrEqual(prev.Buyer), "%s buyer fee %s > %s", cur, tiers[i].ID, tiers[i-1].ID)
			assert.True(t, next.Seller.LessThanOrEqual(prev.Seller), "%s seller fee %s > %s", cur, tiers[i].ID, tiers[i-1].ID)
		}
	}
}

func TestCatalog_ReturnsCopies(t *testing.T) {
	c := DefaultCatalog()

	t.Run("Tier", func(t *testing.T) {
		free, err := c.Tier(models.TierFree)
		require.NoError(t, err)
		free.MaxTransactionAmount[models.USD] = decimal.NewFromInt(1)
		free.FeePercent[BucketFiat] = rate("0", "0")
		free.MaxTransactionsPerMonth = Unlimited

		again, err := c.Tier(models.TierFree)
		require.NoError(t, err)
		assert.Equal(t, "1000", again.MaxTransactionAmount[models.USD].String())
		assert.Equal(t, "5", again.FeePercent[BucketFiat].Buyer.String())
		assert.Equal(t, 5, again.MaxTransactionsPerMonth)
	})

	t.Run("Tiers", func(t *testing.T) {
		all := c.Tiers()
		delete(all[0].MonthlyCost, models.USD)
		all[0].SetupFee[models.USD] = decimal.NewFromInt(99)

		again := c.Tiers()
		assert.Contains(t, again[0].MonthlyCost, models.USD)
		assert.True(t, again[0].SetupFee[models.USD].IsZero())
	})

	t.Run("Input Tiers", func(t *testing.T) {
		in := DefaultTiers()
		own, err := NewCatalog(in, nil)
		require.NoError(t, err)
		in[0].FeePercent[BucketFiat] = rate("0", "0")

		free, err := own.Tier(models.TierFree)
		require.NoError(t, err)
		assert.Equal(t, "5", free.FeePercent[BucketFiat].Buyer.String())
	})
}

func TestCatalog_ConvertFromUSD(t *testing.T) {
	c := DefaultCatalog()

	got, err := c.ConvertFromUSD(decimal.RequireFromString("19"), models.EUR)
	require.NoError(t, err)
	assert.Equal(t, "17.48", got.StringFixed(2))

	got, err = c.ConvertFromUSD(decimal.RequireFromString("0.015"), models.USD)
	require.NoError(t, err)
	assert.Equal(t, "0.02", got.StringFixed(2))

	_, err = c.ConvertFromUSD(decimal.RequireFromString("19"), models.BTC)
	assert.ErrorIs(t, err, ErrNoExchangeRate)
}

func TestCatalog_MaxTransactionAmount(t *testing.T) {
	c := DefaultCatalog()
	free, _ := c.Tier(models.TierFree)
	enterprise, _ := c.Tier(models.TierEnterprise)

	t.Run("Explicit USD", func(t *testing.T) {
		limit, bounded, err := c.MaxTransactionAmount(free, models.USD)
		require.NoError(t, err)
		assert.True(t, bounded)
		assert.Equal(t, "1000.00", limit.StringFixed(2))
	})

	t.Run("Converted From USD", func(t *testing.T) {
		limit, bounded, err := c.MaxTransactionAmount(free, models.NGN)
		require.NoError(t, err)
		assert.True(t, bounded)
		assert.Equal(t, "1550000.00", limit.StringFixed(2))
	})

	t.Run("Explicit Crypto", func(t *testing.T) {
		limit, bounded, err := c.MaxTransactionAmount(free, models.BTC)
		require.NoError(t, err)
		assert.True(t, bounded)
		assert.True(t, limit.Equal(decimal.RequireFromString("0.015")))
	})

	t.Run("Unlimited", func(t *testing.T) {
		_, bounded, err := c.MaxTransactionAmount(enterprise, models.KES)
		require.NoError(t, err)
		assert.False(t, bounded)
	})
}

func TestCatalog_Prices(t *testing.T) {
	prices, err := DefaultCatalog().Prices(models.GBP)
	require.NoError(t, err)
	require.Len(t, prices, 5)

	assert.Equal(t, models.TierStarter, prices[1].Tier)
	assert.Equal(t, "15.01", prices[1].MonthlyCost.StringFixed(2))
	assert.Equal(t, "-1", prices[4].MaxTransactionAmount.String())

	_, err = DefaultCatalog().Prices(models.BTC)
	assert.ErrorIs(t, err, ErrNoExchangeRate)
}

func TestNewCatalog_Validation(t *testing.T) {
	t.Run("Missing Fiat Bucket", func(t *testing.T) {
		_, err := NewCatalog([]Tier{{ID: "x", FeePercent: map[string]FeeRate{}}}, nil)
		assert.ErrorContains(t, err, "fiat fee bucket")
	})

	t.Run("Duplicate Tier", func(t *testing.T) {
		tier := Tier{ID: "x", FeePercent: map[string]FeeRate{BucketFiat: rate("1", "1")}}
		_, err := NewCatalog([]Tier{tier, tier}, nil)
		assert.ErrorContains(t, err, "duplicate tier")
	})

	t.Run("Negative Rate", func(t *testing.T) {
		_, err := NewCatalog(nil, map[models.Currency]decimal.Decimal{models.EUR: decimal.NewFromInt(-1)})
		assert.ErrorContains(t, err, "must be positive")
	})
}

const sampleCatalog = `
exchange_rates:
  EUR: "0.9"
tiers:
  - id: basic
    name: Basic
    rank: 0
    monthly_cost: {USD: "10"}
    setup_fee: {USD: "0"}
    max_transactions_per_month: 3
    max_transaction_amount: {USD: "500"}
    fee_percent:
      fiat: {buyer: "4.25", seller: "4.25"}
      crypto: {buyer: "2", seller: "2"}
`

func TestLoadCatalog(t *testing.T) {
	t.Run("Empty Path Uses Defaults", func(t *testing.T) {
		c, err := LoadCatalog("")
		require.NoError(t, err)
		assert.Len(t, c.Tiers(), 5)
	})

	t.Run("From File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tiers.yaml")
		require.NoError(t, os.WriteFile(path, []byte(sampleCatalog), 0o600))

		c, err := LoadCatalog(path)
		require.NoError(t, err)

		tier, err := c.Tier("basic")
		require.NoError(t, err)
		assert.True(t, tier.FeeRateFor(models.USD).Buyer.Equal(decimal.RequireFromString("4.25")))

		limit, bounded, err := c.MaxTransactionAmount(tier, models.EUR)
		require.NoError(t, err)
		assert.True(t, bounded)
		assert.Equal(t, "450.00", limit.StringFixed(2))
	})

	t.Run("Bad Decimal", func(t *testing.T) {
		_, err := ParseCatalog([]byte("tiers:\n  - id: x\n    fee_percent:\n      fiat: {buyer: abc, seller: \"1\"}\n"))
		assert.ErrorContains(t, err, "fee_percent.fiat.buyer")
	})

	t.Run("Missing File", func(t *testing.T) {
		_, err := LoadCatalog(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorContains(t, err, "failed to read tier catalog")
	})
}
