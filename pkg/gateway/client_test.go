package gateway

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chris/escrow-marketplace/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "sk_test", slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestClient_InitializePayment(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/payments/initialize", r.URL.Path)
			assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))

			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "1035", body["amount"])
			assert.Equal(t, "ESC1", body["reference"])

			_, _ = w.Write([]byte(`{"status":true,"data":{"authorization_url":"https://pay.example/abc","reference":"ESC1"}}`))
		})

		u, err := c.InitializePayment(context.Background(), decimal.RequireFromString("1035"), models.USD, "ESC1")

		require.NoError(t, err)
		assert.Equal(t, "https://pay.example/abc", u)
	})

	t.Run("Provider Rejects", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"status":false,"message":"invalid currency"}`))
		})

		_, err := c.InitializePayment(context.Background(), decimal.RequireFromString("10"), models.USD, "ESC1")

		assert.ErrorIs(t, err, ErrUpstreamUnavailable)
		var ue *UpstreamError
		require.ErrorAs(t, err, &ue)
		assert.Equal(t, http.StatusBadRequest, ue.StatusCode)
		assert.Equal(t, "invalid currency", ue.Detail)
	})

	t.Run("Missing Authorization URL", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status":true,"data":{}}`))
		})

		_, err := c.InitializePayment(context.Background(), decimal.RequireFromString("10"), models.USD, "ESC1")

		assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	})
}

func TestClient_VerifyPayment(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payments/verify/ref-1", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":true,"data":{"reference":"ref-1","status":"success","amount":"1035.00","currency":"USD","paid_at":"2025-05-02T09:30:00Z"}}`))
	})

	v, err := c.VerifyPayment(context.Background(), "ref-1")

	require.NoError(t, err)
	assert.True(t, v.Success)
	assert.True(t, v.AmountPaid.Equal(decimal.RequireFromString("1035")))
	assert.Equal(t, models.USD, v.Currency)
}

func TestClient_Transfers(t *testing.T) {
	t.Run("Initiate", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "0123456789", body["account_number"])
			_, _ = w.Write([]byte(`{"status":true,"data":{"reference":"PO-1","status":"pending","amount":"965","currency":"USD"}}`))
		})

		tr, err := c.InitiateTransfer(context.Background(), TransferRequest{
			Amount:      decimal.RequireFromString("965"),
			Currency:    models.USD,
			Destination: models.PayoutAccount{AccountName: "Seller", AccountNumber: "0123456789", Type: "bank"},
			Reference:   "PO-1",
		})

		require.NoError(t, err)
		assert.Equal(t, TransferPending, tr.Status)
		assert.False(t, tr.Succeeded())
	})

	t.Run("Network Failure", func(t *testing.T) {
		c := NewClient("http://127.0.0.1:1", "sk", slog.New(slog.NewTextHandler(io.Discard, nil)))

		_, err := c.VerifyTransfer(context.Background(), "PO-1")

		assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	})
}
