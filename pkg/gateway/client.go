package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/chris/escrow-marketplace/pkg/models"
	"github.com/shopspring/decimal"
)

const providerName = "payment-gateway"

// Client talks to the payment provider's JSON API. It implements both
// PaymentGateway and PayoutGateway.
type Client struct {
	BaseURL    string
	Secret     string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

var (
	_ PaymentGateway = (*Client)(nil)
	_ PayoutGateway  = (*Client)(nil)
)

// NewClient creates a provider client with a 30 second timeout.
func NewClient(baseURL, secret string, logger *slog.Logger) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Secret:  secret,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		Logger: logger,
	}
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type initializeRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Reference string          `json:"reference"`
}

type initializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	Reference        string `json:"reference"`
}

type verifyData struct {
	Reference string          `json:"reference"`
	Status    string          `json:"status"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	PaidAt    time.Time       `json:"paid_at"`
}

type transferRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Reference     string          `json:"reference"`
	Reason        string          `json:"reason,omitempty"`
	AccountName   string          `json:"account_name"`
	AccountNumber string          `json:"account_number"`
	BankCode      string          `json:"bank_code,omitempty"`
	Type          string          `json:"type"`
}

type transferData struct {
	Reference string          `json:"reference"`
	Status    string          `json:"status"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	PaidAt    time.Time       `json:"paid_at"`
}

func (d transferData) toTransfer() Transfer {
	return Transfer{
		Reference: d.Reference,
		Status:    d.Status,
		Amount:    d.Amount,
		Currency:  models.Currency(d.Currency),
		PaidAt:    d.PaidAt,
	}
}

// InitializePayment starts a checkout and returns the URL the buyer is sent to.
func (c *Client) InitializePayment(ctx context.Context, amount decimal.Decimal, currency models.Currency, reference string) (string, error) {
	var data initializeData
	payload := initializeRequest{Amount: amount, Currency: string(currency), Reference: reference}
	if err := c.do(ctx, "initialize_payment", http.MethodPost, "/payments/initialize", payload, &data); err != nil {
		return "", err
	}
	if data.AuthorizationURL == "" {
		return "", &UpstreamError{Provider: providerName, Op: "initialize_payment", Detail: "missing authorization url"}
	}
	return data.AuthorizationURL, nil
}

// VerifyPayment looks up a payment by reference.
func (c *Client) VerifyPayment(ctx context.Context, reference string) (PaymentVerification, error) {
	var data verifyData
	if err := c.do(ctx, "verify_payment", http.MethodGet, "/payments/verify/"+url.PathEscape(reference), nil, &data); err != nil {
		return PaymentVerification{}, err
	}
	return PaymentVerification{
		Reference:  data.Reference,
		Success:    data.Status == TransferSuccess,
		AmountPaid: data.Amount,
		Currency:   models.Currency(data.Currency),
		PaidAt:     data.PaidAt,
	}, nil
}

// InitiateTransfer sends funds to the seller's payout account.
func (c *Client) InitiateTransfer(ctx context.Context, req TransferRequest) (Transfer, error) {
	var data transferData
	payload := transferRequest{
		Amount:        req.Amount,
		Currency:      string(req.Currency),
		Reference:     req.Reference,
		Reason:        req.Reason,
		AccountName:   req.Destination.AccountName,
		AccountNumber: req.Destination.AccountNumber,
		BankCode:      req.Destination.BankCode,
		Type:          req.Destination.Type,
	}
	if err := c.do(ctx, "initiate_transfer", http.MethodPost, "/transfers", payload, &data); err != nil {
		return Transfer{}, err
	}
	return data.toTransfer(), nil
}

// VerifyTransfer looks up a transfer by reference.
func (c *Client) VerifyTransfer(ctx context.Context, reference string) (Transfer, error) {
	var data transferData
	if err := c.do(ctx, "verify_transfer", http.MethodGet, "/transfers/verify/"+url.PathEscape(reference), nil, &data); err != nil {
		return Transfer{}, err
	}
	return data.toTransfer(), nil
}

func (c *Client) do(ctx context.Context, op, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s request: %w", op, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Secret)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return &UpstreamError{Provider: providerName, Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &UpstreamError{Provider: providerName, Op: op, StatusCode: resp.StatusCode, Err: err}
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || (decodeErr == nil && !env.Status) {
		c.Logger.WarnContext(ctx, "payment gateway call failed",
			slog.String("op", op),
			slog.Int("status", resp.StatusCode),
			slog.String("message", env.Message),
		)
		return &UpstreamError{Provider: providerName, Op: op, StatusCode: resp.StatusCode, Detail: env.Message}
	}
	if decodeErr != nil {
		return &UpstreamError{Provider: providerName, Op: op, StatusCode: resp.StatusCode, Detail: "undecodable response", Err: decodeErr}
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &UpstreamError{Provider: providerName, Op: op, StatusCode: resp.StatusCode, Detail: "undecodable data", Err: err}
	}
	return nil
}
