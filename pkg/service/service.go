// Package service runs escrow operations end to end: it loads the current
// snapshot, applies the verification gate and fee calculator, asks the state
// machine for a transition and writes it conditionally. Committed transitions
// are reported to metrics and notification sinks; neither can undo them.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chris/escrow-marketplace/pkg/escrow"
	"github.com/chris/escrow-marketplace/pkg/fees"
	"github.com/chris/escrow-marketplace/pkg/gateway"
	"github.com/chris/escrow-marketplace/pkg/metrics"
	"github.com/chris/escrow-marketplace/pkg/models"
	"github.com/chris/escrow-marketplace/pkg/notify"
	"github.com/chris/escrow-marketplace/pkg/scheduler"
	"github.com/chris/escrow-marketplace/pkg/storage"
	"github.com/chris/escrow-marketplace/pkg/tiers"
	"github.com/chris/escrow-marketplace/pkg/verification"
)

var (
	// ErrPaymentNotVerified means the gateway did not confirm the buyer's payment.
	ErrPaymentNotVerified = errors.New("payment was not confirmed by the gateway")
	// ErrTransferNotSettled means the payout transfer has not succeeded yet.
	ErrTransferNotSettled = errors.New("payout transfer has not settled")
	// ErrReferenceMismatch means a payment or transfer reference was issued for
	// a different escrow.
	ErrReferenceMismatch = errors.New("reference does not belong to this escrow")
)

// Store is the persistence the service needs. Both the DynamoDB and the
// in-memory backends satisfy it.
type Store interface {
	storage.ApiStore
	ListOverdueDeliveries(ctx context.Context, now time.Time, limit int32) ([]models.Escrow, error)
}

// Config wires the service's collaborators. Only Store and Catalog are
// required; everything else has a working default.
type Config struct {
	Store     Store
	Catalog   *tiers.Catalog
	Machine   *escrow.Machine
	Gate      *verification.Gate
	Payments  gateway.PaymentGateway
	Payouts   gateway.PayoutGateway
	Scheduler scheduler.Scheduler
	Notifier  notify.Notifier
	Metrics   metrics.Recorder
	Logger    *slog.Logger

	// OverdueBatchSize caps how many escrows one ReleaseOverdue call handles.
	OverdueBatchSize int32
}

// Service implements the escrow operations.
type Service struct {
	store     Store
	catalog   *tiers.Catalog
	machine   *escrow.Machine
	gate      *verification.Gate
	fees      *fees.Calculator
	payments  gateway.PaymentGateway
	payouts   gateway.PayoutGateway
	scheduler scheduler.Scheduler
	notifier  notify.Notifier
	metrics   metrics.Recorder
	logger    *slog.Logger
	batchSize int32
}

const (
	defaultOverdueBatchSize = 100
	createAttempts          = 3
)

// New creates the service.
func New(cfg Config) *Service {
	s := &Service{
		store:     cfg.Store,
		catalog:   cfg.Catalog,
		machine:   cfg.Machine,
		gate:      cfg.Gate,
		fees:      fees.NewCalculator(cfg.Catalog),
		payments:  cfg.Payments,
		payouts:   cfg.Payouts,
		scheduler: cfg.Scheduler,
		notifier:  cfg.Notifier,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
		batchSize: cfg.OverdueBatchSize,
	}
	if s.machine == nil {
		s.machine = escrow.NewMachine(escrow.DefaultAutoReleaseAfter)
	}
	if s.gate == nil {
		s.gate = verification.NewGate(cfg.Catalog).WithClock(s.machine.Now)
	}
	if s.scheduler == nil {
		s.scheduler = scheduler.NoOpScheduler{}
	}
	if s.notifier == nil {
		s.notifier = notify.Discard{}
	}
	if s.metrics == nil {
		s.metrics = metrics.Noop{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.batchSize <= 0 {
		s.batchSize = defaultOverdueBatchSize
	}
	return s
}

// Machine exposes the state machine, mainly for its clock and settings.
func (s *Service) Machine() *escrow.Machine {
	return s.machine
}

// loadUser reads a user and fills in the free tier when none is recorded.
func (s *Service) loadUser(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user %s: %w", userID, err)
	}
	if u.Tier == "" {
		u.Tier = models.TierFree
	}
	return u, nil
}

func (s *Service) loadEscrow(ctx context.Context, escrowID string) (*models.Escrow, error) {
	e, err := s.store.GetEscrow(ctx, escrowID)
	if err != nil {
		return nil, fmt.Errorf("failed to load escrow %s: %w", escrowID, err)
	}
	return e, nil
}

// gated records a denial and converts the decision into an error.
func (s *Service) gated(check string, d verification.Decision) error {
	if d.Allowed {
		return nil
	}
	s.metrics.GateDenied(check, d.Step)
	return d.Err()
}

// refused records a transition the machine or a collaborator would not allow.
// Invariant violations are logged with the full snapshot.
func (s *Service) refused(e *models.Escrow, event escrow.Event, err error) error {
	s.metrics.TransitionRejected(string(event), rejectionReason(err))
	if errors.Is(err, escrow.ErrInvariantViolation) {
		s.logger.Error("escrow invariant violated", "event", event, "escrow", e, "error", err)
	}
	return err
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, escrow.ErrInvariantViolation):
		return "invariant_violation"
	case errors.Is(err, storage.ErrConcurrentModification):
		return "concurrent_modification"
	case errors.Is(err, escrow.ErrForbidden):
		return "forbidden"
	case errors.Is(err, escrow.ErrDisputeOpen):
		return "dispute_open"
	case errors.Is(err, escrow.ErrValidation), errors.Is(err, escrow.ErrInvalidDeliveryProof):
		return "validation"
	case errors.Is(err, verification.ErrVerificationRequired):
		return "verification_required"
	case errors.Is(err, gateway.ErrUpstreamUnavailable):
		return "upstream_unavailable"
	case errors.Is(err, escrow.ErrAutoReleaseNotDue):
		return "not_due"
	case errors.Is(err, ErrReferenceMismatch):
		return "reference_mismatch"
	case errors.Is(err, escrow.ErrInvalidTransition):
		return "invalid_transition"
	default:
		return "error"
	}
}

// commit re-checks the aggregate rules on the new snapshot, then runs write,
// which must persist t conditionally on t.From and t.FromVersion.
func (s *Service) commit(ctx context.Context, prev *models.Escrow, t *models.Transition, write func(context.Context) error) (*models.Escrow, error) {
	event := escrow.Event(t.Event)
	if err := escrow.CheckInvariants(t.Escrow); err != nil {
		return nil, s.refused(t.Escrow, event, err)
	}
	if err := escrow.CheckAppendOnly(prev, t.Escrow); err != nil {
		return nil, s.refused(t.Escrow, event, err)
	}
	if err := write(ctx); err != nil {
		return nil, s.refused(prev, event, err)
	}

	s.metrics.TransitionCommitted(t.Event, string(t.From), string(t.Escrow.Status))
	s.logger.Info("escrow transition committed",
		"escrow_id", t.Escrow.ID,
		"event", t.Event,
		"from", t.From,
		"to", t.Escrow.Status,
		"actor", t.Entry.Actor,
		"version", t.Escrow.Version,
	)
	s.notifier.Notify(ctx, notify.EventFromTransition(t))
	return t.Escrow, nil
}

// apply commits a plain transition with ApplyTransition.
func (s *Service) apply(ctx context.Context, prev *models.Escrow, t *models.Transition) (*models.Escrow, error) {
	return s.commit(ctx, prev, t, func(ctx context.Context) error {
		return s.store.ApplyTransition(ctx, t)
	})
}
