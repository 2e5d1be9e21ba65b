/*
gateway.go - External collaborator contracts

PURPOSE:
  The engine never talks to Stripe or the internal accounts service
  directly; it consumes these three interfaces. Production wiring lives in
  gateway/stripecard and store/sqlite.

SEE ALSO:
  - attempter.go: drives PaymentGateway concurrently
  - credits.go: drives AccountDirectory + CreditLedger
*/
package settlement

import "context"

// PaymentGateway executes monetary refunds against the external processor.
type PaymentGateway interface {
	// CreateRefund refunds amountMinor (integer cents) against the
	// original charge. The gateway deduplicates by idempotencyKey, so a
	// retried call returns the original refund instead of a second one.
	CreateRefund(ctx context.Context, paymentReference string, amountMinor int64, idempotencyKey string) (refundID string, err error)

	// Configured reports whether credentials are present. Checked by the
	// orchestrator before any state change.
	Configured() bool
}

// AccountDirectory resolves contributor emails to platform accounts.
type AccountDirectory interface {
	// FindAccountIDByEmail returns (id, true) when an account exists for
	// the email, (_, false) when none does.
	FindAccountIDByEmail(ctx context.Context, email string) (AccountID, bool, error)
}

// CreditLedger credits internal account balances. Implementations must
// write the ledger row and the balance update in one transaction.
type CreditLedger interface {
	CreditAccount(ctx context.Context, accountID AccountID, amount Amount, referenceID, referenceType string) (creditID string, err error)
}
