/*
attempter.go - Concurrent refund fan-out with credit fallback

PURPOSE:
  Drives the payment gateway once per refund-eligible contribution. All
  attempts run concurrently and join before the engine proceeds; one
  contributor's gateway failure never blocks or aborts the others.

IDEMPOTENCY:
  Every gateway call carries the key refund_{giftId}_{contributionId}.
  The processor deduplicates on it, so retrying a whole settlement run
  can never refund the same contribution twice.

FALLBACK LADDER (per contribution):
  1. Gateway refund against the original charge
  2. Internal account credit, when the contribution has a linked account
  3. RefundFailure row - the manual follow-up queue

  Contributions with no payment reference never enter the fan-out; they
  are resolved on the credit path (see credits.go).

SEE ALSO:
  - credits.go: pure-credit resolution
  - orchestrator.go: aggregates the outcomes
*/
package settlement

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RefundIdempotencyKey builds the deduplication token for one
// contribution's refund. Stable across retries of the whole operation.
func RefundIdempotencyKey(giftID GiftID, contributionID ContributionID) string {
	return fmt.Sprintf("refund_%s_%s", giftID, contributionID)
}

// Attempter resolves allocated shares via gateway refund with credit
// fallback.
type Attempter struct {
	gateway       PaymentGateway
	ledger        CreditLedger
	contributions ContributionStore
	failures      RecordStore
	logger        *slog.Logger
}

func NewAttempter(gateway PaymentGateway, ledger CreditLedger, contributions ContributionStore, failures RecordStore, logger *slog.Logger) *Attempter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Attempter{
		gateway:       gateway,
		ledger:        ledger,
		contributions: contributions,
		failures:      failures,
		logger:        logger,
	}
}

// RefundBatch settles the shares that carry a payment reference, one
// concurrent attempt each, then joins. Shares without a reference must be
// filtered out by the caller. The returned slice has one outcome per
// share, index-aligned.
func (a *Attempter) RefundBatch(ctx context.Context, giftID GiftID, shares []Share) []Outcome {
	outcomes := make([]Outcome, len(shares))

	var wg sync.WaitGroup
	for i, share := range shares {
		wg.Add(1)
		go func(i int, share Share) {
			defer wg.Done()
			outcomes[i] = a.attemptOne(ctx, giftID, share)
		}(i, share)
	}
	wg.Wait()

	return outcomes
}

// attemptOne runs the full fallback ladder for a single contribution.
// Never returns an error: every path ends in a tagged outcome.
func (a *Attempter) attemptOne(ctx context.Context, giftID GiftID, share Share) Outcome {
	c := share.Contribution
	key := RefundIdempotencyKey(giftID, c.ID)

	refundID, err := a.gateway.CreateRefund(ctx, c.PaymentReference, share.Amount.MinorUnits(), key)
	if err == nil {
		// Best-effort write-back; the refund already happened, so a store
		// hiccup here must not turn a success into a failure.
		if werr := a.contributions.SetRefundReference(ctx, c.ID, refundID); werr != nil {
			a.logger.Warn("failed to record refund reference",
				"gift_id", giftID, "contribution_id", c.ID, "refund_id", refundID, "error", werr)
		}
		a.logger.Info("refund issued",
			"gift_id", giftID, "contribution_id", c.ID, "amount", share.Amount.String(), "refund_id", refundID)
		return Refunded(share, refundID)
	}

	a.logger.Warn("gateway refund failed, trying credit fallback",
		"gift_id", giftID, "contribution_id", c.ID, "amount", share.Amount.String(), "error", err)

	if c.AccountID != "" {
		creditID, cerr := a.ledger.CreditAccount(ctx, c.AccountID, share.Amount, string(c.ID), ReferenceContribution)
		if cerr == nil {
			a.logger.Info("credit issued in lieu of refund",
				"gift_id", giftID, "contribution_id", c.ID, "amount", share.Amount.String(), "credit_id", creditID)
			return Credited(share, creditID)
		}
		a.recordFailure(ctx, giftID, share, fmt.Sprintf("refund failed (%v); credit failed (%v)", err, cerr))
		return Failed(share, cerr.Error())
	}

	a.recordFailure(ctx, giftID, share, fmt.Sprintf("refund failed and no linked account: %v", err))
	return Failed(share, err.Error())
}

func (a *Attempter) recordFailure(ctx context.Context, giftID GiftID, share Share, detail string) {
	failure := RefundFailure{
		ID:             uuid.NewString(),
		GiftID:         giftID,
		ContributionID: share.Contribution.ID,
		Amount:         share.Amount,
		Detail:         detail,
		CreatedAt:      time.Now().UTC(),
	}
	if err := a.failures.AppendRefundFailure(ctx, failure); err != nil {
		a.logger.Error("failed to persist refund failure",
			"gift_id", giftID, "contribution_id", share.Contribution.ID, "error", err)
	}
}
