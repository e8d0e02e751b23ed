package notify

import (
	"context"

	"github.com/chris/escrow-marketplace/pkg/rabbitmq"
	"github.com/chris/escrow-marketplace/pkg/websockets"
)

// DefaultExchange is the topic exchange escrow events are published to.
const DefaultExchange = "escrow_events"

// WebSocketSink pushes the event to both participants' open connections.
type WebSocketSink struct {
	Publisher websockets.Publisher
}

func (s *WebSocketSink) Name() string { return "websocket" }

func (s *WebSocketSink) Send(ctx context.Context, e Event) error {
	return s.Publisher.Publish(ctx, e.Participants(), websockets.Message{
		Type: websockets.MessageTypeEscrowStatusChanged,
		Payload: websockets.EscrowStatusPayload{
			EscrowID:     e.EscrowID,
			EscrowRef:    e.EscrowRef,
			Event:        e.Event,
			From:         e.From,
			To:           e.To,
			Actor:        e.Actor,
			Version:      e.Version,
			ChatUnlocked: e.ChatUnlocked,
			At:           e.At,
		},
	})
}

// AMQPSink publishes the event to a topic exchange with routing key escrow.<status>.
type AMQPSink struct {
	Producer rabbitmq.Publisher
	Exchange string
}

func (s *AMQPSink) Name() string { return "rabbitmq" }

// RoutingKey returns the routing key for an event.
func RoutingKey(e Event) string {
	return "escrow." + e.To
}

func (s *AMQPSink) Send(ctx context.Context, e Event) error {
	exchange := s.Exchange
	if exchange == "" {
		exchange = DefaultExchange
	}
	return s.Producer.Publish(ctx, exchange, RoutingKey(e), e)
}
