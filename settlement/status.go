/*
status.go - Gift lifecycle state machine

PURPOSE:
  The gift status is the only shared mutable state in a settlement run,
  and refunding doubles as the concurrency lock. Transitions are
  monotonic:

    active -> refunding -> settled_refund | settled_credits

  The only backward edge is refunding -> active, taken when a
  precondition fails after the lock was acquired, so a gift is never left
  stuck mid-settlement.

  Every transition is a single conditional update pushed down to the
  store, so the invariant is enforced by the persistence layer itself
  rather than by an in-process lock.
*/
package settlement

import (
	"context"
	"log/slog"
)

// StatusManager guards the gift lifecycle during settlement.
type StatusManager struct {
	gifts  GiftStore
	logger *slog.Logger
}

func NewStatusManager(gifts GiftStore, logger *slog.Logger) *StatusManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatusManager{gifts: gifts, logger: logger}
}

// Lock moves active -> refunding. Fails with ErrAlreadyInProgress when
// another settlement holds the gift or it is already terminal.
func (m *StatusManager) Lock(ctx context.Context, id GiftID) error {
	return m.gifts.TransitionStatus(ctx, id, StatusActive, StatusRefunding)
}

// Unlock reverts refunding -> active after a failed precondition.
// Best-effort: an unlock failure is logged, not returned, because the
// caller is already propagating the original error.
func (m *StatusManager) Unlock(ctx context.Context, id GiftID) {
	if err := m.gifts.TransitionStatus(ctx, id, StatusRefunding, StatusActive); err != nil {
		m.logger.Error("failed to revert gift to active", "gift_id", id, "error", err)
	}
}

// Finalize moves refunding into the terminal state for the run.
func (m *StatusManager) Finalize(ctx context.Context, id GiftID, terminal GiftStatus) error {
	return m.gifts.TransitionStatus(ctx, id, StatusRefunding, terminal)
}
