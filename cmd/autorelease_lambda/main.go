package main

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/chris/escrow-marketplace/pkg/bootstrap"
	"github.com/chris/escrow-marketplace/pkg/scheduler"
	"github.com/chris/escrow-marketplace/pkg/service"
)

type autoReleaser interface {
	AutoRelease(ctx context.Context, escrowID string) (service.ReleaseResult, error)
}

// handler consumes auto-release messages. A message that arrives before its
// deadline, because SQS caps delays, is put back on the queue.
type handler struct {
	releaser  autoReleaser
	scheduler scheduler.Scheduler
	// pending, when set, is waited on so notifications finish before the
	// invocation is frozen.
	pending   interface{ Wait() }
	logger    *slog.Logger
}

// HandleRequest reports each failed message individually so SQS only retries those.
func (h *handler) HandleRequest(ctx context.Context, sqsEvent events.SQSEvent) (events.SQSEventResponse, error) {
	var resp events.SQSEventResponse
	if h.pending != nil {
		defer h.pending.Wait()
	}
	for _, message := range sqsEvent.Records {
		if err := h.process(ctx, message); err != nil {
			h.logger.ErrorContext(ctx, "auto-release message failed", "message_id", message.MessageId, "error", err)
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: message.MessageId})
		}
	}
	return resp, nil
}

func (h *handler) process(ctx context.Context, message events.SQSMessage) error {
	var msg scheduler.AutoReleaseMessage
	if err := json.Unmarshal([]byte(message.Body), &msg); err != nil {
		// Retrying cannot fix a malformed body.
		h.logger.ErrorContext(ctx, "dropping malformed auto-release message", "message_id", message.MessageId, "error", err)
		return nil
	}

	res, err := h.releaser.AutoRelease(ctx, msg.EscrowID)
	if err != nil {
		return err
	}

	switch res.Outcome {
	case service.NotDue:
		releaseAt := msg.ReleaseAt
		if res.DueAt != nil {
			releaseAt = *res.DueAt
		}
		h.logger.InfoContext(ctx, "auto-release not due, rescheduling", "escrow_id", msg.EscrowID, "release_at", releaseAt.Format(time.RFC3339))
		return h.scheduler.ScheduleAutoRelease(ctx, msg.EscrowID, releaseAt)
	case service.Released:
		h.logger.InfoContext(ctx, "escrow auto-released", "escrow_id", msg.EscrowID)
	default:
		h.logger.InfoContext(ctx, "auto-release skipped", "escrow_id", msg.EscrowID, "outcome", res.Outcome)
	}
	return nil
}

func main() {
	rt, err := bootstrap.Open(context.Background(), ".")
	if err != nil {
		log.Fatalf("failed to initialize: %v", err)
	}

	sched := rt.Scheduler()
	producer := rt.Producer()
	defer producer.Close()
	dispatcher := rt.Dispatcher(rt.Publisher(nil), producer)
	svc := rt.Service(bootstrap.ServiceOptions{
		Scheduler: sched,
		Notifier:  dispatcher,
	})

	h := &handler{releaser: svc, scheduler: sched, pending: dispatcher, logger: rt.Logger}
	lambda.Start(h.HandleRequest)
}
