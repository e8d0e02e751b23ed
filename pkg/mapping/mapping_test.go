package mapping

import (
	"testing"
	"time"

	"github.com/chris/escrow-marketplace/pkg/api"
	"github.com/chris/escrow-marketplace/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToApiEscrow(t *testing.T) {
	at := time.Date(2025, 5, 2, 9, 30, 0, 0, time.UTC)
	release := at.Add(72 * time.Hour)
	e := &models.Escrow{
		ID:        "e-1",
		EscrowRef: "ESC1",
		Title:     "Camera",
		Amount:    decimal.RequireFromString("1000.00"),
		Currency:  models.USD,
		BuyerID:   "b",
		SellerID:  "s",
		Status:    models.StatusDelivered,
		Version:   3,
		Timeline: []models.TimelineEntry{
			{ID: "t1", Status: models.StatusFunded, Actor: "b", Timestamp: at},
			{ID: "t2", Status: models.StatusDelivered, Actor: "s", Note: "shipped", Timestamp: at},
		},
		Payment: &models.Payment{
			FeeBreakdown: models.FeeBreakdown{BuyerPays: decimal.RequireFromString("1035"), Tier: models.TierStarter},
			Reference:    "PAY-1",
			AmountPaid:   decimal.RequireFromString("1035"),
		},
		Delivery: models.Delivery{Method: models.DeliveryShipping, TrackingNumber: "1Z", Carrier: "UPS", AutoReleaseAt: &release},
	}

	got := ToApiEscrow(e)

	assert.Equal(t, api.Delivered, got.Status)
	assert.Equal(t, "1000", got.Amount)
	assert.True(t, got.ChatUnlocked)
	require.Len(t, got.Timeline, 2)
	assert.Nil(t, got.Timeline[0].Note)
	require.NotNil(t, got.Timeline[1].Note)
	assert.Equal(t, "shipped", *got.Timeline[1].Note)
	require.NotNil(t, got.Payment)
	assert.Equal(t, "starter", got.Payment.Tier)
	require.NotNil(t, got.Delivery.Method)
	assert.Equal(t, api.Shipping, *got.Delivery.Method)
	assert.Nil(t, got.Delivery.Evidence)
	assert.False(t, got.Dispute.IsDisputed)
	assert.Nil(t, got.Dispute.Status)
	assert.Nil(t, got.Cancellation)
}

func TestToDomainDeliveryProof(t *testing.T) {
	desc := "build artifact"
	got := ToDomainDeliveryProof(&api.DeliveryProof{
		Method:   api.Digital,
		Evidence: &[]api.Evidence{{Url: "https://files.example.com/a.zip", Description: &desc}},
	})
	assert.Equal(t, models.DeliveryDigital, got.Method)
	assert.Equal(t, []models.Evidence{{URL: "https://files.example.com/a.zip", Description: desc}}, got.Evidence)
	assert.Empty(t, got.Carrier)
}

func TestToDomainResolveRequest(t *testing.T) {
	pct := "30"
	got, err := ToDomainResolveRequest(&api.ResolveDisputeRequest{Resolution: "split it", Winner: api.Split, RefundPercentage: &pct})
	require.NoError(t, err)
	assert.Equal(t, models.WinnerSplit, got.Winner)
	require.NotNil(t, got.RefundPercentage)
	assert.True(t, got.RefundPercentage.Equal(decimal.NewFromInt(30)))

	got, err = ToDomainResolveRequest(&api.ResolveDisputeRequest{Resolution: "refund", Winner: api.Refund})
	require.NoError(t, err)
	assert.Nil(t, got.RefundPercentage)

	bad := "x"
	_, err = ToDomainResolveRequest(&api.ResolveDisputeRequest{Winner: api.Split, RefundPercentage: &bad})
	assert.Error(t, err)
}
