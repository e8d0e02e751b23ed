package notify

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/chris/escrow-marketplace/pkg/models"
	"github.com/chris/escrow-marketplace/pkg/websockets"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu     sync.Mutex
	name   string
	err    error
	events []Event
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Send(_ context.Context, e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return s.err
}

type recordingProducer struct {
	exchange, key string
	body          interface{}
}

func (p *recordingProducer) Publish(_ context.Context, exchange, routingKey string, body interface{}) error {
	p.exchange, p.key, p.body = exchange, routingKey, body
	return nil
}

func (p *recordingProducer) Close() {}

type recordingPublisher struct {
	users []string
	msg   websockets.Message
}

func (p *recordingPublisher) Publish(_ context.Context, userIDs []string, m websockets.Message) error {
	p.users, p.msg = userIDs, m
	return nil
}

func sampleTransition() *models.Transition {
	at := time.Date(2025, 5, 2, 9, 30, 0, 0, time.UTC)
	entry := models.TimelineEntry{ID: "tl-1", Status: models.StatusFunded, Actor: "buyer-1", Timestamp: at}
	return &models.Transition{
		Event: "fund",
		From:  models.StatusPending,
		Escrow: &models.Escrow{
			ID: "esc-1", EscrowRef: "ESC1", Amount: decimal.RequireFromString("10"), Currency: models.USD,
			BuyerID: "buyer-1", SellerID: "seller-1", Status: models.StatusFunded, Version: 2,
			Timeline: []models.TimelineEntry{entry},
		},
		Entry: entry,
	}
}

func TestEventFromTransition(t *testing.T) {
	e := EventFromTransition(sampleTransition())

	assert.Equal(t, EventStatusChanged, e.Type)
	assert.Equal(t, "pending", e.From)
	assert.Equal(t, "funded", e.To)
	assert.Equal(t, "buyer-1", e.Actor)
	assert.True(t, e.ChatUnlocked)
	assert.Equal(t, []string{"buyer-1", "seller-1"}, e.Participants())
	assert.Equal(t, "escrow.funded", RoutingKey(e))
}

func TestDispatcher(t *testing.T) {
	ok := &recordingSink{name: "ok"}
	failing := &recordingSink{name: "failing", err: errors.New("down")}
	d := NewDispatcher(slog.New(slog.NewTextHandler(io.Discard, nil)), time.Second, ok, failing)

	ctx, cancel := context.WithCancel(context.Background())
	d.Notify(ctx, EventFromTransition(sampleTransition()))
	cancel()
	d.Wait()

	require.Len(t, ok.events, 1)
	require.Len(t, failing.events, 1)
	assert.Equal(t, "esc-1", ok.events[0].EscrowID)
}

type panickingSink struct{}

func (panickingSink) Name() string { return "broken" }

func (panickingSink) Send(context.Context, Event) error { panic("nil channel") }

func TestDispatcher_SinkPanic(t *testing.T) {
	var logs bytes.Buffer
	ok := &recordingSink{name: "ok"}
	d := NewDispatcher(slog.New(slog.NewJSONHandler(&logs, nil)), time.Second, panickingSink{}, ok)

	require.NotPanics(t, func() {
		d.Notify(context.Background(), EventFromTransition(sampleTransition()))
		d.Wait()
	})

	require.Len(t, ok.events, 1)
	assert.Contains(t, logs.String(), `"level":"WARN"`)
	assert.Contains(t, logs.String(), "notification sink panicked")
	assert.Contains(t, logs.String(), `"sink":"broken"`)
}

func TestSinks(t *testing.T) {
	e := EventFromTransition(sampleTransition())

	t.Run("AMQP", func(t *testing.T) {
		p := &recordingProducer{}
		require.NoError(t, (&AMQPSink{Producer: p}).Send(context.Background(), e))
		assert.Equal(t, DefaultExchange, p.exchange)
		assert.Equal(t, "escrow.funded", p.key)
	})

	t.Run("WebSocket", func(t *testing.T) {
		p := &recordingPublisher{}
		require.NoError(t, (&WebSocketSink{Publisher: p}).Send(context.Background(), e))
		assert.Equal(t, []string{"buyer-1", "seller-1"}, p.users)
		assert.Equal(t, websockets.MessageTypeEscrowStatusChanged, p.msg.Type)
	})
}
