/*
store.go - Persistence interfaces consumed by the engine

PURPOSE:
  Defines the contracts between the settlement engine and the database.
  Different implementations can use SQLite, PostgreSQL, or in-memory
  storage; the engine only sees these interfaces.

KEY INTERFACES:
  GiftStore:       gift reads and the conditional status transition
  ContributionStore: contribution reads + refund-reference write-back
  RecordStore:     append-only settlement records and failure log

CONDITIONAL TRANSITION:
  TransitionStatus must be implemented as a single conditional update
  ("set status = to where id = ? and status = from"). That one statement
  IS the settlement lock: at most one run can move a gift out of active.

APPEND-ONLY CONTRACT:
  Settlement records, credit entries, and refund failures are never
  updated or deleted. Corrections happen operationally, not in place.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: production SQLite
  - settlement/store/memory.go: in-memory for testing

SEE ALSO:
  - orchestrator.go: composes these with the gateway and ledger
*/
package settlement

import "context"

// =============================================================================
// GIFT STORE
// =============================================================================

type GiftStore interface {
	// GetGift returns the gift or ErrGiftNotFound.
	GetGift(ctx context.Context, id GiftID) (*Gift, error)

	// TransitionStatus atomically moves the gift from one status to
	// another. Returns *StatusTransitionError (wrapping
	// ErrAlreadyInProgress) if the gift is not currently in from, or
	// ErrGiftNotFound if it doesn't exist.
	TransitionStatus(ctx context.Context, id GiftID, from, to GiftStatus) error
}

// =============================================================================
// CONTRIBUTION STORE
// =============================================================================

type ContributionStore interface {
	// ListContributions returns contributions for the gift filtered by
	// status, ordered by creation time.
	ListContributions(ctx context.Context, giftID GiftID, status ContributionStatus) ([]Contribution, error)

	// SetRefundReference records the gateway refund id on a contribution
	// after a successful refund. The only mutation contributions allow.
	SetRefundReference(ctx context.Context, id ContributionID, refundRef string) error
}

// =============================================================================
// RECORD STORE - Append-only audit surfaces
// =============================================================================

type RecordStore interface {
	// AppendSettlementRecords persists the batch atomically and is called
	// once per settlement run.
	AppendSettlementRecords(ctx context.Context, records []SettlementRecord) error

	// AppendRefundFailure logs a contributor that could not be resolved.
	AppendRefundFailure(ctx context.Context, failure RefundFailure) error
}

// Store is the full persistence surface the orchestrator needs.
type Store interface {
	GiftStore
	ContributionStore
	RecordStore
}
