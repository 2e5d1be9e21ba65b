package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giftwell/settlement-engine/settlement"
	"github.com/giftwell/settlement-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// =============================================================================
// GIFT STATUS TRANSITIONS (the settlement lock)
// =============================================================================

func TestTransitionStatus_ConditionalUpdate(t *testing.T) {
	// GIVEN: an active gift
	// WHEN: transitioning active -> refunding twice
	// THEN: the first wins; the second is rejected with the current status

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveGift(ctx, settlement.Gift{
		ID: "gift-1", Name: "Espresso machine", Status: settlement.StatusActive,
	}))

	err := store.TransitionStatus(ctx, "gift-1", settlement.StatusActive, settlement.StatusRefunding)
	require.NoError(t, err)

	err = store.TransitionStatus(ctx, "gift-1", settlement.StatusActive, settlement.StatusRefunding)
	require.Error(t, err)
	assert.ErrorIs(t, err, settlement.ErrAlreadyInProgress)

	var transitionErr *settlement.StatusTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, settlement.StatusRefunding, transitionErr.Current)
}

func TestTransitionStatus_RevertAndFinalize(t *testing.T) {
	// GIVEN: a gift locked in refunding
	// WHEN: reverting to active, re-locking, then finalizing
	// THEN: each conditional update succeeds in turn

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveGift(ctx, settlement.Gift{
		ID: "gift-1", Name: "Espresso machine", Status: settlement.StatusRefunding,
	}))

	require.NoError(t, store.TransitionStatus(ctx, "gift-1", settlement.StatusRefunding, settlement.StatusActive))
	require.NoError(t, store.TransitionStatus(ctx, "gift-1", settlement.StatusActive, settlement.StatusRefunding))
	require.NoError(t, store.TransitionStatus(ctx, "gift-1", settlement.StatusRefunding, settlement.StatusSettledCredits))

	gift, err := store.GetGift(ctx, "gift-1")
	require.NoError(t, err)
	assert.Equal(t, settlement.StatusSettledCredits, gift.Status)
}

func TestTransitionStatus_MissingGift(t *testing.T) {
	store := newTestStore(t)

	err := store.TransitionStatus(context.Background(), "nope", settlement.StatusActive, settlement.StatusRefunding)
	assert.ErrorIs(t, err, settlement.ErrGiftNotFound)
}

// =============================================================================
// GIFTS & LEGACY CONTRIBUTIONS
// =============================================================================

func TestGift_LegacyContributionsRoundTrip(t *testing.T) {
	// GIVEN: a gift saved with embedded legacy contributions
	// WHEN: reading it back
	// THEN: the embedded list survives with amounts intact

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveGift(ctx, settlement.Gift{
		ID:     "gift-legacy",
		Name:   "Farewell fund",
		Status: settlement.StatusActive,
		LegacyContributions: []settlement.Contribution{
			{ID: "l-1", Amount: settlement.NewAmount(30.50), ContributorName: "Sam", ContributorEmail: "sam@example.com"},
			{ID: "l-2", Amount: settlement.NewAmount(70), AccountID: "acct-maya"},
		},
	}))

	gift, err := store.GetGift(ctx, "gift-legacy")
	require.NoError(t, err)
	require.Len(t, gift.LegacyContributions, 2)
	assert.Equal(t, "30.50", gift.LegacyContributions[0].Amount.String())
	assert.Equal(t, "sam@example.com", gift.LegacyContributions[0].ContributorEmail)
	assert.Equal(t, settlement.AccountID("acct-maya"), gift.LegacyContributions[1].AccountID)
	assert.Equal(t, settlement.ContributionCompleted, gift.LegacyContributions[1].Status)
}

func TestGetGift_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetGift(context.Background(), "nope")
	assert.ErrorIs(t, err, settlement.ErrGiftNotFound)
}

// =============================================================================
// CONTRIBUTIONS
// =============================================================================

func TestContributions_ListFiltersByStatus(t *testing.T) {
	// GIVEN: completed and pending contributions on one gift
	// WHEN: listing completed ones
	// THEN: pending rows are excluded

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveGift(ctx, settlement.Gift{ID: "gift-1", Name: "G", Status: settlement.StatusActive}))
	require.NoError(t, store.SaveContribution(ctx, settlement.Contribution{
		ID: "c-1", GiftID: "gift-1", Amount: settlement.NewAmount(100),
		Status: settlement.ContributionCompleted, PaymentReference: "ch_1",
		ContributorName: "Maya", ContributorEmail: "maya@example.com",
		CreatedAt: time.Now().UTC(),
	}))
	require.NoError(t, store.SaveContribution(ctx, settlement.Contribution{
		ID: "c-2", GiftID: "gift-1", Amount: settlement.NewAmount(50),
		Status: settlement.ContributionPending,
		ContributorName: "Jordan", ContributorEmail: "jordan@example.com",
		CreatedAt: time.Now().UTC(),
	}))

	contributions, err := store.ListContributions(ctx, "gift-1", settlement.ContributionCompleted)
	require.NoError(t, err)
	require.Len(t, contributions, 1)
	assert.Equal(t, settlement.ContributionID("c-1"), contributions[0].ID)
	assert.Equal(t, "100.00", contributions[0].Amount.String())
	assert.Equal(t, "ch_1", contributions[0].PaymentReference)
}

func TestSetRefundReference(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveGift(ctx, settlement.Gift{ID: "gift-1", Name: "G", Status: settlement.StatusActive}))
	require.NoError(t, store.SaveContribution(ctx, settlement.Contribution{
		ID: "c-1", GiftID: "gift-1", Amount: settlement.NewAmount(100),
		Status: settlement.ContributionCompleted,
	}))

	require.NoError(t, store.SetRefundReference(ctx, "c-1", "re_123"))

	contributions, err := store.ListContributions(ctx, "gift-1", settlement.ContributionCompleted)
	require.NoError(t, err)
	require.Len(t, contributions, 1)
	assert.Equal(t, "re_123", contributions[0].RefundReference)

	assert.ErrorIs(t, store.SetRefundReference(ctx, "missing", "re_x"), settlement.ErrContributionNotFound)
}

// =============================================================================
// ACCOUNTS & CREDIT LEDGER
// =============================================================================

func TestCreditAccount_LedgerAndBalanceMoveTogether(t *testing.T) {
	// GIVEN: an account with zero balance
	// WHEN: crediting twice
	// THEN: the balance reflects both credits and the ledger has two rows

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveAccount(ctx, sqlite.Account{
		ID: "acct-1", Email: "maya@example.com", Name: "Maya",
	}))

	creditID, err := store.CreditAccount(ctx, "acct-1", settlement.NewAmount(45), "c-2", settlement.ReferenceContribution)
	require.NoError(t, err)
	assert.NotEmpty(t, creditID)

	_, err = store.CreditAccount(ctx, "acct-1", settlement.NewAmount(5.50), "c-3", settlement.ReferenceContribution)
	require.NoError(t, err)

	account, err := store.GetAccount(ctx, "acct-1")
	require.NoError(t, err)
	assert.Equal(t, "50.50", account.Balance.String())

	entries, err := store.ListCreditEntries(ctx, "acct-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	refs := []string{entries[0].ReferenceID, entries[1].ReferenceID}
	assert.ElementsMatch(t, []string{"c-2", "c-3"}, refs)
	assert.Equal(t, settlement.ReferenceContribution, entries[0].ReferenceType)
}

func TestCreditAccount_UnknownAccount(t *testing.T) {
	store := newTestStore(t)

	_, err := store.CreditAccount(context.Background(), "ghost", settlement.NewAmount(10), "c-1", settlement.ReferenceContribution)
	assert.ErrorIs(t, err, settlement.ErrAccountNotFound)
}

func TestFindAccountIDByEmail(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveAccount(ctx, sqlite.Account{
		ID: "acct-1", Email: "maya@example.com",
	}))

	id, ok, err := store.FindAccountIDByEmail(ctx, "maya@example.com")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, settlement.AccountID("acct-1"), id)

	_, ok, err = store.FindAccountIDByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, ok)
}

// =============================================================================
// SETTLEMENT RECORDS & FAILURES
// =============================================================================

func TestSettlementRecords_BatchRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveGift(ctx, settlement.Gift{ID: "gift-1", Name: "Espresso machine", Status: settlement.StatusRefunding}))

	now := time.Now().UTC().Truncate(time.Second)
	records := []settlement.SettlementRecord{
		{
			ID: "rec-1", GiftID: "gift-1", Amount: settlement.NewAmount(90),
			Disposition: settlement.DispositionRefund, RecipientName: "Maya",
			RecipientEmail: "maya@example.com", GiftName: "Espresso machine",
			Status: settlement.SettlementStatusCompleted, CreatedAt: now,
		},
		{
			ID: "rec-2", GiftID: "gift-1", Amount: settlement.NewAmount(45),
			Disposition: settlement.DispositionCredit, RecipientName: "Jordan",
			RecipientEmail: "jordan@example.com", GiftName: "Espresso machine",
			Status: settlement.SettlementStatusCompleted, CreatedAt: now,
		},
	}
	require.NoError(t, store.AppendSettlementRecords(ctx, records))

	got, err := store.ListSettlementRecords(ctx, "gift-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, settlement.DispositionRefund, got[0].Disposition)
	assert.Equal(t, "90.00", got[0].Amount.String())
	assert.Equal(t, "Espresso machine", got[1].GiftName)
}

func TestRefundFailures_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AppendRefundFailure(ctx, settlement.RefundFailure{
		ID: "fail-1", GiftID: "gift-1", ContributionID: "c-2",
		Amount: settlement.NewAmount(45), Detail: "card_declined; no linked account",
		CreatedAt: time.Now().UTC(),
	}))

	failures, err := store.ListRefundFailures(ctx)
	require.NoError(t, err)
	require.Len(t, failures, 1)
	assert.Equal(t, settlement.ContributionID("c-2"), failures[0].ContributionID)
	assert.Equal(t, "45.00", failures[0].Amount.String())
}
