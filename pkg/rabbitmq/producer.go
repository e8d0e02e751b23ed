// Package rabbitmq publishes escrow events to a RabbitMQ topic exchange.
package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// Publisher is the interface implemented by types that can publish events.
type Publisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body interface{}) error
	Close()
}

// EventProducerFallback is a no-op publisher used when RabbitMQ is unavailable at startup.
type EventProducerFallback struct {
	Logger *slog.Logger
}

func (p *EventProducerFallback) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	if p.Logger != nil {
		p.Logger.WarnContext(ctx, "publish skipped", "component", "rabbitmq_producer", "mode", "fallback", "exchange", exchange, "routing_key", routingKey)
	}
	return nil
}

func (p *EventProducerFallback) Close() {}

// SanitizeURL trims quotes and stray prefixes from an AMQP URL and checks its scheme.
func SanitizeURL(raw string) (string, error) {
	clean := strings.Trim(strings.TrimSpace(raw), "\"'")
	if idx := strings.Index(strings.ToLower(clean), "amqp"); idx > 0 {
		clean = clean[idx:]
	}
	u, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", errors.New("AMQP scheme must be either 'amqp://' or 'amqps://'")
	}
	return clean, nil
}

// EventProducer holds the RabbitMQ connection and channel for publishing messages.
type EventProducer struct {
	mu       sync.Mutex
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	declared map[string]bool
	logger   *slog.Logger
}

// NewEventProducer dials RabbitMQ with a bounded timeout and opens a channel.
func NewEventProducer(amqpURL string, logger *slog.Logger) (*EventProducer, error) {
	cleanURL, err := SanitizeURL(amqpURL)
	if err != nil {
		return nil, err
	}

	conn, err := amqp091.DialConfig(cleanURL, amqp091.Config{Dial: amqp091.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, fmt.Errorf("failed to dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}

	return &EventProducer{conn: conn, channel: ch, declared: make(map[string]bool), logger: logger}, nil
}

func (p *EventProducer) declare(exchange string) error {
	if p.declared[exchange] {
		return nil
	}
	if err := p.channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return err
	}
	p.declared[exchange] = true
	return nil
}

func (p *EventProducer) reopen() error {
	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	p.channel = ch
	p.declared = make(map[string]bool)
	return nil
}

// Publish sends body as JSON to a durable topic exchange. On a channel error
// the channel is reopened and the publish retried once.
func (p *EventProducer) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	msg := amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now(),
		Body:         jsonBody,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	send := func() error {
		if err := p.declare(exchange); err != nil {
			return err
		}
		return p.channel.PublishWithContext(ctx, exchange, routingKey, false, false, msg)
	}

	if err := send(); err != nil {
		p.logger.WarnContext(ctx, "publish failed; reopening channel", "exchange", exchange, "routing_key", routingKey, "error", err)
		if rerr := p.reopen(); rerr != nil {
			return fmt.Errorf("failed to reopen rabbitmq channel: %w", errors.Join(err, rerr))
		}
		if err := send(); err != nil {
			return fmt.Errorf("failed to publish to %s: %w", exchange, err)
		}
	}
	return nil
}

// Close gracefully closes the channel and connection to RabbitMQ.
func (p *EventProducer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
