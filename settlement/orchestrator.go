/*
orchestrator.go - The public settlement entry point

PURPOSE:
  Composes the loader, allocator, refund attempter, credit issuer,
  recorder, and status manager into one operation:

    lock gift -> load contributions -> allocate shares ->
    fan out refunds / issue credits -> record audit rows -> finalize

FAILURE SEMANTICS:
  - Configuration and not-found errors abort before any state change.
  - Pool/allocation/load failures after the lock revert the gift to
    active and propagate.
  - Per-contributor failures never abort the batch; they are counted and
    logged. Only when zero contributors resolve does the run fail as a
    whole (and the gift unlocks for a retry).

TERMINAL STATE:
  Chosen by which path processed the batch, not by the disposition mix:
  a batch with at least one payment reference settles as settled_refund
  even if every refund fell back to credit; a batch with none settles as
  settled_credits. Downstream consumers depend on this distinction.

SEE ALSO:
  - status.go: the state machine doing the locking
  - api/handlers.go: the HTTP surface over Settle
*/
package settlement

import (
	"context"
	"log/slog"
)

// Orchestrator is the public entry point of the engine.
type Orchestrator struct {
	store     Store
	gateway   PaymentGateway
	loader    *Loader
	attempter *Attempter
	issuer    *CreditIssuer
	recorder  *Recorder
	status    *StatusManager
	logger    *slog.Logger
}

// NewOrchestrator wires the engine. directory and ledger are the internal
// account collaborators; gateway is the external payment processor.
func NewOrchestrator(store Store, gateway PaymentGateway, directory AccountDirectory, ledger CreditLedger, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		store:     store,
		gateway:   gateway,
		loader:    NewLoader(store),
		attempter: NewAttempter(gateway, ledger, store, store, logger),
		issuer:    NewCreditIssuer(directory, ledger, store, logger),
		recorder:  NewRecorder(store),
		status:    NewStatusManager(store, logger),
		logger:    logger,
	}
}

// Settle returns the net refundable pool to the gift's contributors.
// netPool is the amount left after platform fees; it must be at least one
// cent. Safe to retry: the refunding status rejects concurrent runs and
// gateway idempotency keys make repeated refund attempts harmless.
func (o *Orchestrator) Settle(ctx context.Context, giftID GiftID, netPool Amount) (*SettleResult, error) {
	if !o.gateway.Configured() {
		return nil, ErrGatewayNotConfigured
	}

	gift, err := o.store.GetGift(ctx, giftID)
	if err != nil {
		return nil, err
	}

	if netPool.BelowMinimum() {
		return nil, &PoolValidationError{GiftID: giftID, Pool: netPool}
	}

	// The refunding status is the settlement lock.
	if err := o.status.Lock(ctx, giftID); err != nil {
		return nil, err
	}

	contributions, err := o.loader.Load(ctx, gift)
	if err != nil {
		o.status.Unlock(ctx, giftID)
		return nil, err
	}

	shares, err := Allocate(contributions, netPool)
	if err != nil {
		o.status.Unlock(ctx, giftID)
		return nil, err
	}
	if len(shares) == 0 {
		o.status.Unlock(ctx, giftID)
		return nil, ErrNoRecipientsResolved
	}

	refundable, creditOnly := partitionByPaymentReference(shares)

	var outcomes []Outcome
	terminal := StatusSettledRefund
	if len(refundable) == 0 {
		// Nothing to refund anywhere in the batch: the pure-credit path.
		terminal = StatusSettledCredits
		outcomes = o.issuer.CreditBatch(ctx, giftID, creditOnly)
	} else {
		outcomes = o.attempter.RefundBatch(ctx, giftID, refundable)
		outcomes = append(outcomes, o.issuer.CreditBatch(ctx, giftID, creditOnly)...)
	}

	result := tally(giftID, outcomes)
	if result.BankRefunds+result.CreditsIssued == 0 {
		// Every contributor failed; unlock so the run can be retried once
		// the underlying problem is fixed.
		o.status.Unlock(ctx, giftID)
		return nil, ErrNoRecipientsResolved
	}

	ids, err := o.recorder.Record(ctx, gift, outcomes)
	if err != nil {
		// Money has already moved; an audit write failure must not wedge
		// the gift in refunding.
		o.logger.Error("failed to persist settlement records", "gift_id", giftID, "error", err)
	}
	result.SettlementIDs = ids

	if err := o.status.Finalize(ctx, giftID, terminal); err != nil {
		o.logger.Error("failed to finalize gift status", "gift_id", giftID, "terminal", terminal, "error", err)
		return result, err
	}
	result.FinalStatus = terminal

	o.logger.Info("gift settled",
		"gift_id", giftID,
		"status", terminal,
		"bank_refunds", result.BankRefunds,
		"credits_issued", result.CreditsIssued,
		"failed", result.Failed,
		"net_pool", netPool.String(),
	)
	return result, nil
}

func partitionByPaymentReference(shares []Share) (refundable, creditOnly []Share) {
	for _, s := range shares {
		if s.Contribution.PaymentReference != "" {
			refundable = append(refundable, s)
		} else {
			creditOnly = append(creditOnly, s)
		}
	}
	return refundable, creditOnly
}

func tally(giftID GiftID, outcomes []Outcome) *SettleResult {
	result := &SettleResult{GiftID: giftID}
	for _, o := range outcomes {
		switch o.Kind {
		case OutcomeRefunded:
			result.BankRefunds++
		case OutcomeCredited:
			result.CreditsIssued++
		case OutcomeFailed:
			result.Failed++
		}
	}
	return result
}
