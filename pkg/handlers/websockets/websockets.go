package websockets

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/chris/escrow-marketplace/pkg/middleware"
	"github.com/chris/escrow-marketplace/pkg/websockets"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// TokenVerifier resolves a bearer token to a user id.
type TokenVerifier interface {
	Subject(token string) (string, error)
}

// Handler handles WebSocket connections, both behind API Gateway and on the
// local development server.
type Handler struct {
	connManager websockets.ConnectionManager
	verifier    TokenVerifier
	hub         *websockets.LocalHub
	logger      *slog.Logger
}

// NewHandler creates a new Handler. hub is only needed for local connections.
func NewHandler(connManager websockets.ConnectionManager, verifier TokenVerifier, hub *websockets.LocalHub, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		connManager: connManager,
		verifier:    verifier,
		hub:         hub,
		logger:      logger,
	}
}

// HandleConnect authenticates the access_token query parameter and stores the
// connection under the token's user.
func (h *Handler) HandleConnect(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	connectionID := request.RequestContext.ConnectionID

	userID, err := h.verifier.Subject(request.QueryStringParameters["access_token"])
	if err != nil {
		h.logger.Warn("rejected websocket connection", "connectionId", connectionID, "error", err)
		return events.APIGatewayProxyResponse{StatusCode: http.StatusUnauthorized}, nil
	}

	if err := h.connManager.AddConnection(ctx, connectionID, userID); err != nil {
		h.logger.Error("failed to save connection ID", "connectionId", connectionID, "error", err)
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError}, err
	}

	h.logger.Info("client connected", "connectionId", connectionID, "userId", userID)
	return events.APIGatewayProxyResponse{StatusCode: http.StatusOK}, nil
}

// HandleDisconnect forgets the connection.
func (h *Handler) HandleDisconnect(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	connectionID := request.RequestContext.ConnectionID
	h.logger.Info("client disconnected", "connectionId", connectionID)

	if err := h.connManager.RemoveConnection(ctx, connectionID); err != nil {
		h.logger.Error("failed to delete connection ID", "connectionId", connectionID, "error", err)
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError}, err
	}

	return events.APIGatewayProxyResponse{StatusCode: http.StatusOK}, nil
}

// HandleDefault acknowledges client messages. Clients are not expected to send any.
func (h *Handler) HandleDefault(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	h.logger.Debug("received message", "connectionId", request.RequestContext.ConnectionID, "bytes", len(request.Body))
	return events.APIGatewayProxyResponse{StatusCode: http.StatusOK}, nil
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Origins are enforced by the CORS middleware in front of this handler.
		return true
	},
}

// ServeHTTP serves WebSocket connections on the local development server.
// The request must already be authenticated.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	connectionID := uuid.New().String()
	ctx := context.WithoutCancel(r.Context())
	if h.hub != nil {
		h.hub.Register(connectionID, userID, conn)
	}
	if err := h.connManager.AddConnection(ctx, connectionID, userID); err != nil {
		h.logger.Error("failed to save local connection ID", "error", err)
		if h.hub != nil {
			h.hub.Unregister(connectionID)
		}
		return
	}
	h.logger.Info("client connected locally", "connectionId", connectionID, "userId", userID)

	defer func() {
		if h.hub != nil {
			h.hub.Unregister(connectionID)
		}
		if err := h.connManager.RemoveConnection(ctx, connectionID); err != nil {
			h.logger.Error("failed to delete local connection ID", "error", err)
		}
		h.logger.Info("client disconnected locally", "connectionId", connectionID)
	}()

	// The read loop only exists to notice the client going away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn("unexpected close error", "error", err)
			}
			break
		}
	}
}
