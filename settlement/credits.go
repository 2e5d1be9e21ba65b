/*
credits.go - Pure-credit resolution

PURPOSE:
  Resolves contributors for whom no monetary refund is possible: either
  the whole batch was recorded manually (no payment references at all),
  or an individual contribution in a mixed batch lacks one. The money
  comes back as internal account credit instead.

ACCOUNT RESOLUTION:
  A contribution with a linked account is credited directly. Otherwise
  the contributor's email is looked up in the account directory; a
  contributor with no resolvable account becomes a RefundFailure but
  never blocks the rest of the batch.

SEE ALSO:
  - attempter.go: the refund path this complements
*/
package settlement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// CreditIssuer resolves shares into internal account credits.
type CreditIssuer struct {
	directory AccountDirectory
	ledger    CreditLedger
	failures  RecordStore
	logger    *slog.Logger
}

func NewCreditIssuer(directory AccountDirectory, ledger CreditLedger, failures RecordStore, logger *slog.Logger) *CreditIssuer {
	if logger == nil {
		logger = slog.Default()
	}
	return &CreditIssuer{directory: directory, ledger: ledger, failures: failures, logger: logger}
}

// CreditBatch credits every share with a resolvable account. Returns one
// outcome per share, index-aligned.
func (ci *CreditIssuer) CreditBatch(ctx context.Context, giftID GiftID, shares []Share) []Outcome {
	outcomes := make([]Outcome, len(shares))
	for i, share := range shares {
		outcomes[i] = ci.creditOne(ctx, giftID, share)
	}
	return outcomes
}

func (ci *CreditIssuer) creditOne(ctx context.Context, giftID GiftID, share Share) Outcome {
	c := share.Contribution

	accountID := c.AccountID
	if accountID == "" {
		if c.ContributorEmail == "" {
			ci.recordFailure(ctx, giftID, share, "no linked account and no contributor email")
			return Failed(share, "no linked account and no contributor email")
		}
		found, ok, err := ci.directory.FindAccountIDByEmail(ctx, c.ContributorEmail)
		if err != nil {
			ci.recordFailure(ctx, giftID, share, fmt.Sprintf("account lookup failed: %v", err))
			return Failed(share, err.Error())
		}
		if !ok {
			ci.recordFailure(ctx, giftID, share, fmt.Sprintf("no account for %s", c.ContributorEmail))
			return Failed(share, "no resolvable account")
		}
		accountID = found
	}

	creditID, err := ci.ledger.CreditAccount(ctx, accountID, share.Amount, string(c.ID), ReferenceContribution)
	if err != nil {
		ci.recordFailure(ctx, giftID, share, fmt.Sprintf("credit failed: %v", err))
		return Failed(share, err.Error())
	}

	ci.logger.Info("credit issued",
		"gift_id", giftID, "contribution_id", c.ID, "account_id", accountID,
		"amount", share.Amount.String(), "credit_id", creditID)
	return Credited(share, creditID)
}

func (ci *CreditIssuer) recordFailure(ctx context.Context, giftID GiftID, share Share, detail string) {
	failure := RefundFailure{
		ID:             uuid.NewString(),
		GiftID:         giftID,
		ContributionID: share.Contribution.ID,
		Amount:         share.Amount,
		Detail:         detail,
		CreatedAt:      time.Now().UTC(),
	}
	if err := ci.failures.AppendRefundFailure(ctx, failure); err != nil {
		ci.logger.Error("failed to persist refund failure",
			"gift_id", giftID, "contribution_id", share.Contribution.ID, "error", err)
	}
}
