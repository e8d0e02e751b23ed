package websockets

import "time"

// MessageType defines the type of a WebSocket message.
type MessageType string

const (
	// MessageTypeEscrowStatusChanged is sent to both participants after a committed transition.
	MessageTypeEscrowStatusChanged MessageType = "escrow.status_changed"
)

// Message represents a generic WebSocket message.
type Message struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload"`
}

// EscrowStatusPayload is the payload for an escrow.status_changed message.
type EscrowStatusPayload struct {
	EscrowID     string    `json:"escrow_id"`
	EscrowRef    string    `json:"escrow_ref"`
	Event        string    `json:"event"`
	From         string    `json:"from"`
	To           string    `json:"to"`
	Actor        string    `json:"actor"`
	Version      int64     `json:"version"`
	ChatUnlocked bool      `json:"chat_unlocked"`
	At           time.Time `json:"at"`
}
