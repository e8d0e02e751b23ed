package scheduler

import (
	"context"
	"time"
)

// AutoReleaseMessage is the queue payload asking for an escrow to be released.
type AutoReleaseMessage struct {
	EscrowID  string    `json:"escrow_id"`
	ReleaseAt time.Time `json:"release_at"`
}

// Scheduler defines the interface for a component that schedules an escrow for later release.
type Scheduler interface {
	// ScheduleAutoRelease enqueues an auto-release check for the escrow at or after releaseAt.
	ScheduleAutoRelease(ctx context.Context, escrowID string, releaseAt time.Time) error
}

// NoOpScheduler drops every request. The cron sweeper covers release when it is used.
type NoOpScheduler struct{}

func (NoOpScheduler) ScheduleAutoRelease(context.Context, string, time.Time) error { return nil }
