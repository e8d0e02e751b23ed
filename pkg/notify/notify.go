// Package notify fans committed escrow transitions out to notification sinks.
// Delivery is best effort and never affects the transition that produced it.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/chris/escrow-marketplace/pkg/models"
)

// EventStatusChanged is the type of every transition event.
const EventStatusChanged = "escrow.status_changed"

// Event describes one committed transition.
type Event struct {
	Type         string    `json:"type"`
	EscrowID     string    `json:"escrow_id"`
	EscrowRef    string    `json:"escrow_ref"`
	Event        string    `json:"event"`
	From         string    `json:"from"`
	To           string    `json:"to"`
	Actor        string    `json:"actor"`
	Version      int64     `json:"version"`
	BuyerID      string    `json:"buyer_id"`
	SellerID     string    `json:"seller_id"`
	ChatUnlocked bool      `json:"chat_unlocked"`
	At           time.Time `json:"at"`
}

// Participants returns the users who should hear about the event.
func (e Event) Participants() []string {
	return []string{e.BuyerID, e.SellerID}
}

// EventFromTransition builds the event for a committed transition.
func EventFromTransition(t *models.Transition) Event {
	return Event{
		Type:         EventStatusChanged,
		EscrowID:     t.Escrow.ID,
		EscrowRef:    t.Escrow.EscrowRef,
		Event:        t.Event,
		From:         string(t.From),
		To:           string(t.Escrow.Status),
		Actor:        t.Entry.Actor,
		Version:      t.Escrow.Version,
		BuyerID:      t.Escrow.BuyerID,
		SellerID:     t.Escrow.SellerID,
		ChatUnlocked: t.Escrow.ChatUnlocked(),
		At:           t.Entry.Timestamp,
	}
}

// Sink delivers events to one channel.
type Sink interface {
	Name() string
	Send(ctx context.Context, e Event) error
}

// Notifier is what the escrow service depends on.
type Notifier interface {
	Notify(ctx context.Context, e Event)
}

// Dispatcher sends each event to every sink on its own goroutine.
type Dispatcher struct {
	sinks   []Sink
	timeout time.Duration
	logger  *slog.Logger
	wg      sync.WaitGroup
}

var _ Notifier = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher. Each send gets timeout to finish.
func NewDispatcher(logger *slog.Logger, timeout time.Duration, sinks ...Sink) *Dispatcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Dispatcher{sinks: sinks, timeout: timeout, logger: logger}
}

// Notify returns immediately. The caller's context only contributes its values;
// sends outlive the request that triggered them.
func (d *Dispatcher) Notify(ctx context.Context, e Event) {
	base := context.WithoutCancel(ctx)
	for _, s := range d.sinks {
		d.wg.Add(1)
		go func(s Sink) {
			defer d.wg.Done()
			sctx, cancel := context.WithTimeout(base, d.timeout)
			defer cancel()
			// A misbehaving sink must not take the process down with it.
			defer func() {
				if r := recover(); r != nil {
					d.logger.WarnContext(sctx, "notification sink panicked",
						"sink", s.Name(),
						"escrow_id", e.EscrowID,
						"event", e.Event,
						"panic", r,
					)
				}
			}()
			if err := s.Send(sctx, e); err != nil {
				d.logger.WarnContext(sctx, "notification failed",
					"sink", s.Name(),
					"escrow_id", e.EscrowID,
					"event", e.Event,
					"error", err,
				)
			}
		}(s)
	}
}

// Wait blocks until every in-flight send has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Discard drops every event.
type Discard struct{}

func (Discard) Notify(context.Context, Event) {}
