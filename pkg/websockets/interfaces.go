package websockets

import (
	"context"
)

// ConnectionManager defines the interface for managing WebSocket connections.
type ConnectionManager interface {
	AddConnection(ctx context.Context, connectionID, userID string) error
	RemoveConnection(ctx context.Context, connectionID string) error
}

// Publisher defines the interface for publishing messages to the WebSocket clients of a set of users.
type Publisher interface {
	Publish(ctx context.Context, userIDs []string, message Message) error
}
