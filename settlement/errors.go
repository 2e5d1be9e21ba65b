/*
errors.go - Centralized error types for the settlement engine

PURPOSE:
  All error types in one place. The orchestrator classifies errors into
  the taxonomy below; the API layer maps the classes to HTTP statuses.

ERROR CATEGORIES:
  1. Configuration - gateway credentials missing; abort before any state change
  2. Not found     - gift does not exist; abort immediately
  3. Validation    - pool below minimum, non-positive gross; revert any lock
  4. Concurrency   - settlement already in flight; abort, no state change
  5. Total failure - zero contributors resolved despite attempts

  Per-contributor failures are NOT errors at this level: they are recorded
  as RefundFailure rows and aggregated into counts.

USAGE:
  if errors.Is(err, settlement.ErrAlreadyInProgress) { ... }

SEE ALSO:
  - orchestrator.go: where the taxonomy is applied
  - api/handlers.go: HTTP status mapping
*/
package settlement

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrGatewayNotConfigured is returned when the payment gateway has no
	// credentials. Checked before any state change.
	ErrGatewayNotConfigured = errors.New("payment gateway not configured")

	// ErrGiftNotFound is returned when the referenced gift doesn't exist.
	ErrGiftNotFound = errors.New("gift not found")

	// ErrNoContributions is returned when neither the primary store nor the
	// gift's embedded legacy list has any eligible contribution.
	ErrNoContributions = errors.New("no completed contributions found")

	// ErrInvalidPool is returned when the total gross of the contributions
	// is not positive, making proportional allocation undefined.
	ErrInvalidPool = errors.New("total contributions must be positive")

	// ErrPoolBelowMinimum is returned when the net refundable pool is under
	// one cent.
	ErrPoolBelowMinimum = errors.New("net refundable pool below minimum")

	// ErrAlreadyInProgress is returned when the gift is not in active
	// status: a settlement is in flight or already finished.
	ErrAlreadyInProgress = errors.New("settlement already in progress or completed")

	// ErrNoRecipientsResolved is returned when every contributor failed to
	// resolve via refund or credit.
	ErrNoRecipientsResolved = errors.New("no contributors could be refunded or credited")

	// ErrContributionNotFound is returned by stores for missing rows.
	ErrContributionNotFound = errors.New("contribution not found")

	// ErrAccountNotFound is returned by the credit ledger for unknown accounts.
	ErrAccountNotFound = errors.New("account not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// StatusTransitionError reports a rejected conditional status update.
type StatusTransitionError struct {
	GiftID  GiftID
	From    GiftStatus
	To      GiftStatus
	Current GiftStatus
}

func (e *StatusTransitionError) Error() string {
	return fmt.Sprintf("gift %s: cannot transition %s -> %s (currently %s)",
		e.GiftID, e.From, e.To, e.Current)
}

func (e *StatusTransitionError) Unwrap() error {
	return ErrAlreadyInProgress
}

// PoolValidationError carries the rejected pool amount.
type PoolValidationError struct {
	GiftID GiftID
	Pool   Amount
}

func (e *PoolValidationError) Error() string {
	return fmt.Sprintf("gift %s: net pool %s is below the minimum settleable amount", e.GiftID, e.Pool)
}

func (e *PoolValidationError) Unwrap() error {
	return ErrPoolBelowMinimum
}

// GatewayError wraps a payment-gateway failure for one contribution.
type GatewayError struct {
	PaymentReference string
	Code             string
	Message          string
}

func (e *GatewayError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("gateway refund failed for %s: %s (%s)", e.PaymentReference, e.Message, e.Code)
	}
	return fmt.Sprintf("gateway refund failed for %s: %s", e.PaymentReference, e.Message)
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsValidation reports errors caused by invalid input or state that the
// caller can correct.
func IsValidation(err error) bool {
	return errors.Is(err, ErrPoolBelowMinimum) ||
		errors.Is(err, ErrInvalidPool) ||
		errors.Is(err, ErrNoContributions)
}

// IsConflict reports concurrency rejections (lock held or terminal state).
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyInProgress)
}

// IsNotFound reports missing-resource errors.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrGiftNotFound) ||
		errors.Is(err, ErrContributionNotFound) ||
		errors.Is(err, ErrAccountNotFound)
}
