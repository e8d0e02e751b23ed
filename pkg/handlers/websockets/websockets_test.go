package websockets

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/chris/escrow-marketplace/pkg/middleware"
	"github.com/chris/escrow-marketplace/pkg/storage/memory"
	ws "github.com/chris/escrow-marketplace/pkg/websockets"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier map[string]string

func (v stubVerifier) Subject(token string) (string, error) {
	if sub, ok := v[token]; ok {
		return sub, nil
	}
	return "", errors.New("invalid token")
}

func connectRequest(connectionID, token string) events.APIGatewayWebsocketProxyRequest {
	return events.APIGatewayWebsocketProxyRequest{
		RequestContext:        events.APIGatewayWebsocketProxyRequestContext{ConnectionID: connectionID},
		QueryStringParameters: map[string]string{"access_token": token},
	}
}

func TestHandleConnect(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	h := NewHandler(store, stubVerifier{"good": "user-1"}, nil, nil)

	t.Run("Success", func(t *testing.T) {
		resp, err := h.HandleConnect(ctx, connectRequest("conn-1", "good"))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		ids, err := store.GetConnectionsByUser(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, []string{"conn-1"}, ids)
	})

	t.Run("Bad Token", func(t *testing.T) {
		resp, err := h.HandleConnect(ctx, connectRequest("conn-2", "bad"))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("Disconnect", func(t *testing.T) {
		resp, err := h.HandleDisconnect(ctx, connectRequest("conn-1", ""))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		ids, err := store.GetConnectionsByUser(ctx, "user-1")
		require.NoError(t, err)
		assert.Empty(t, ids)
	})
}

func TestServeHTTP_LocalHub(t *testing.T) {
	store := memory.New()
	hub := ws.NewLocalHub(nil)
	h := NewHandler(store, nil, hub, nil)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeHTTP(w, r.WithContext(middleware.WithActor(r.Context(), "user-1")))
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		ids, _ := store.GetConnectionsByUser(context.Background(), "user-1")
		return len(ids) == 1
	}, time.Second, 10*time.Millisecond)

	msg := ws.Message{Type: ws.MessageTypeEscrowStatusChanged, Payload: ws.EscrowStatusPayload{EscrowID: "e-1", To: "funded"}}
	require.NoError(t, hub.Publish(context.Background(), []string{"user-1"}, msg))

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"escrow_id":"e-1"`)
}

func TestServeHTTP_Unauthenticated(t *testing.T) {
	h := NewHandler(memory.New(), nil, nil, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
