package escrow

import (
	"errors"
	"fmt"

	"github.com/chris/escrow-marketplace/pkg/models"
)

var (
	// ErrInvalidTransition is wrapped by every rejected state change.
	ErrInvalidTransition = errors.New("invalid escrow transition")
	// ErrForbidden means the actor is not allowed to trigger the event.
	ErrForbidden = errors.New("actor is not permitted to perform this action")
	// ErrDisputeOpen means a dispute blocks the event.
	ErrDisputeOpen = errors.New("escrow has an open dispute")
	// ErrInvalidDeliveryProof means the proof does not satisfy the delivery method.
	ErrInvalidDeliveryProof = errors.New("invalid delivery proof")
	// ErrAutoReleaseNotDue means the auto-release deadline has not passed.
	ErrAutoReleaseNotDue = errors.New("auto-release is not due yet")
	// ErrUnderpaid means the verified payment does not cover what the buyer owes.
	ErrUnderpaid = errors.New("verified payment does not cover the amount due")
	// ErrPayoutMismatch means the confirmed transfer differs from the amount owed to the seller.
	ErrPayoutMismatch = errors.New("payout does not match the amount owed")

	// ErrAlreadyResolved is returned when assigning or resolving a resolved dispute.
	ErrAlreadyResolved = errors.New("dispute is already resolved")

	// ErrValidation is wrapped by every input validation failure.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidParticipants means buyer and seller are not two distinct active users.
	ErrInvalidParticipants = errors.New("buyer and seller must be two distinct active users")

	// ErrInvariantViolation marks programming errors. Callers must not recover.
	ErrInvariantViolation = errors.New("escrow invariant violated")
	// ErrPaymentAlreadySet is raised on any attempt to overwrite the payment snapshot.
	ErrPaymentAlreadySet = errors.New("payment snapshot is write-once")
)

// TransitionError reports a guarded transition that was refused.
type TransitionError struct {
	Event   Event
	Current models.EscrowStatus
	Target  models.EscrowStatus
	Reason  string
	Cause   error
}

func (e *TransitionError) Error() string {
	msg := fmt.Sprintf("cannot %s: escrow is %s, cannot move to %s", e.Event, e.Current, e.Target)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *TransitionError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrInvalidTransition}
	}
	return []error{ErrInvalidTransition, e.Cause}
}

// ValidationError reports bad input before any state is touched.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrValidation}
	}
	return []error{ErrValidation, e.Err}
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// InvariantError reports a broken aggregate invariant.
type InvariantError struct {
	EscrowID string
	Detail   string
	Err      error
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("escrow %s: invariant violated: %s", e.EscrowID, e.Detail)
}

func (e *InvariantError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvariantViolation}
	}
	return []error{ErrInvariantViolation, e.Err}
}
