package main

import (
	"context"
	"log"
	"log/slog"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/chris/escrow-marketplace/pkg/bootstrap"
	"github.com/chris/escrow-marketplace/pkg/scheduler"
)

// handler releases delivered escrows whose deadline passed without their
// queued auto-release message being processed.
type handler struct {
	releaser scheduler.Releaser
	pending  interface{ Wait() }
	logger   *slog.Logger
}

// HandleRequest is triggered by an EventBridge Schedule.
func (h *handler) HandleRequest(ctx context.Context) error {
	defer h.pending.Wait()
	h.logger.InfoContext(ctx, "starting reconciliation of overdue deliveries")

	released, err := h.releaser.ReleaseOverdue(ctx)
	if err != nil {
		// The escrows that did release are committed; the rest are picked up next run.
		h.logger.ErrorContext(ctx, "reconciliation finished with errors", "released", released, "error", err)
		return err
	}

	h.logger.InfoContext(ctx, "reconciliation finished", "released", released)
	return nil
}

func main() {
	rt, err := bootstrap.Open(context.Background(), ".")
	if err != nil {
		log.Fatalf("failed to initialize: %v", err)
	}

	producer := rt.Producer()
	defer producer.Close()
	dispatcher := rt.Dispatcher(rt.Publisher(nil), producer)
	svc := rt.Service(bootstrap.ServiceOptions{
		Scheduler: rt.Scheduler(),
		Notifier:  dispatcher,
	})

	h := &handler{releaser: svc, pending: dispatcher, logger: rt.Logger}
	lambda.Start(h.HandleRequest)
}
