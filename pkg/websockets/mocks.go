package websockets

import "context"

// NoOpPublisher is a publisher that does nothing.
type NoOpPublisher struct{}

// Publish does nothing.
func (p *NoOpPublisher) Publish(ctx context.Context, userIDs []string, message Message) error {
	return nil
}
