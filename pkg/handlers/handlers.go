package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/chris/escrow-marketplace/pkg/api"
	"github.com/chris/escrow-marketplace/pkg/gateway"
	"github.com/chris/escrow-marketplace/pkg/middleware"
	"github.com/chris/escrow-marketplace/pkg/models"
	"github.com/chris/escrow-marketplace/pkg/service"
	"github.com/chris/escrow-marketplace/pkg/tiers"
	"github.com/chris/escrow-marketplace/pkg/verification"
	"github.com/shopspring/decimal"
)

// EscrowService is the application layer behind the HTTP API.
type EscrowService interface {
	CreateEscrow(ctx context.Context, req service.CreateEscrowRequest) (*models.Escrow, error)
	GetEscrow(ctx context.Context, escrowID, actorID string) (*models.Escrow, error)
	ListEscrows(ctx context.Context, actorID string) ([]models.Escrow, error)
	AcceptEscrow(ctx context.Context, escrowID, actorID string) (*models.Escrow, error)
	InitializeFunding(ctx context.Context, escrowID, actorID string) (*service.FundingSession, error)
	FundEscrow(ctx context.Context, escrowID, actorID, paymentReference string) (*models.Escrow, error)
	SubmitDelivery(ctx context.Context, escrowID, actorID string, proof models.DeliveryProof) (*models.Escrow, error)
	ConfirmDelivery(ctx context.Context, escrowID, actorID string) (*models.Escrow, error)
	CancelEscrow(ctx context.Context, escrowID, actorID, reason string) (*models.Escrow, error)
	RequestPayout(ctx context.Context, escrowID, actorID string) (gateway.Transfer, error)
	ConfirmPayout(ctx context.Context, escrowID, transferReference string) (*models.Escrow, error)
	RaiseDispute(ctx context.Context, escrowID, actorID, reason string, evidence []models.Evidence) (*models.Escrow, error)
	GetDispute(ctx context.Context, disputeID, actorID string) (*models.Dispute, error)
	AssignDispute(ctx context.Context, disputeID, adminID string) (*models.Dispute, error)
	ResolveDispute(ctx context.Context, disputeID, adminID string, req service.ResolveDisputeRequest) (*models.Dispute, error)
	ListTiers(currency string) ([]tiers.Price, error)
	QuoteFees(amount decimal.Decimal, currency string, tierID models.TierID) (models.FeeBreakdown, error)
	VerificationStatus(ctx context.Context, actorID string) (verification.Status, error)
}

var _ EscrowService = (*service.Service)(nil)

// ApiHandler implements the generated server interface on top of the escrow service.
type ApiHandler struct {
	Service EscrowService
	Logger  *slog.Logger
}

// NewApiHandler creates a new ApiHandler.
func NewApiHandler(svc EscrowService, logger *slog.Logger) *ApiHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ApiHandler{Service: svc, Logger: logger}
}

// Make sure we conform to the interface
var _ api.ServerInterface = (*ApiHandler)(nil)

// actor returns the authenticated user or writes a 401.
func (h *ApiHandler) actor(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, api.Error{Error: "authentication required", Code: "unauthorized"})
		return "", false
	}
	return id, true
}

// decode reads a JSON body into v or writes a 400.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, api.Error{Error: fmt.Sprintf("Invalid request body: %v", err), Code: "invalid_body"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}
