package websockets

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

type localConn struct {
	userID string
	mu     sync.Mutex
	conn   *websocket.Conn
}

// LocalHub delivers messages to gorilla connections held by this process.
// It is the Publisher used by the local development server.
type LocalHub struct {
	mu     sync.RWMutex
	conns  map[string]*localConn
	logger *slog.Logger
}

var _ Publisher = (*LocalHub)(nil)

// NewLocalHub creates an empty hub.
func NewLocalHub(logger *slog.Logger) *LocalHub {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalHub{conns: make(map[string]*localConn), logger: logger}
}

// Register tracks conn under connectionID for userID.
func (h *LocalHub) Register(connectionID, userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[connectionID] = &localConn{userID: userID, conn: conn}
}

// Unregister forgets a connection. It does not close it.
func (h *LocalHub) Unregister(connectionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, connectionID)
}

// Publish writes the message to every local connection of the given users.
func (h *LocalHub) Publish(_ context.Context, userIDs []string, message Message) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	wanted := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = struct{}{}
	}

	h.mu.RLock()
	var targets []*localConn
	var ids []string
	for id, c := range h.conns {
		if _, ok := wanted[c.userID]; ok {
			targets = append(targets, c)
			ids = append(ids, id)
		}
	}
	h.mu.RUnlock()

	for i, c := range targets {
		c.mu.Lock()
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		err := c.conn.WriteMessage(websocket.TextMessage, payload)
		c.mu.Unlock()
		if err != nil {
			h.logger.Warn("failed to write to local connection", "connectionId", ids[i], "error", err)
			h.Unregister(ids[i])
		}
	}
	return nil
}
