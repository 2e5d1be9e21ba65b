/*
Package settlement implements the gift-fund settlement engine.

PURPOSE:
  When a group-funded gift is cancelled, the money pooled by contributors
  must go back to them fairly. This package computes each contributor's
  proportional share of the net refundable pool, issues real refunds
  through the payment gateway, falls back to internal account credit when
  a refund cannot be completed, and records one audit row per resolved
  contributor.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: a monetary quantity backed by decimal.Decimal (never floats)
  - Gift / Contribution: the records being settled
  - Share: a contributor's allocated slice of the net pool
  - Outcome: tagged per-contribution result (refunded | credited | failed)
  - SettlementRecord / CreditEntry / RefundFailure: audit rows

DESIGN PRINCIPLES:
  1. Precision: all money math on decimal.Decimal, rounded to cents once
  2. Idempotency: every gateway call carries refund_{gift}_{contribution}
  3. Isolation: one contributor's failure never affects another's outcome
  4. Auditability: every resolved contributor leaves a settlement record

SEE ALSO:
  - allocator.go: proportional share computation
  - attempter.go: concurrent refund fan-out with credit fallback
  - orchestrator.go: the public Settle entry point
*/
package settlement

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Monetary quantity
// =============================================================================

// Amount is a monetary value. All arithmetic stays in decimal space;
// conversion to minor units happens only at the gateway boundary.
type Amount struct {
	Value decimal.Decimal
}

func NewAmount(value float64) Amount {
	return Amount{Value: decimal.NewFromFloat(value)}
}

func NewAmountFromString(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, err
	}
	return Amount{Value: d}, nil
}

// MustParseAmount panics on a malformed decimal string. For literals in
// tests and seeds; persistence paths use NewAmountFromString and surface
// the error.
func MustParseAmount(s string) Amount {
	a, err := NewAmountFromString(s)
	if err != nil {
		panic(fmt.Sprintf("invalid amount %q: %v", s, err))
	}
	return a
}

var minSettleable = decimal.NewFromFloat(0.01)

func (a Amount) Add(b Amount) Amount          { return Amount{Value: a.Value.Add(b.Value)} }
func (a Amount) Sub(b Amount) Amount          { return Amount{Value: a.Value.Sub(b.Value)} }
func (a Amount) Mul(s decimal.Decimal) Amount { return Amount{Value: a.Value.Mul(s)} }
func (a Amount) Div(s decimal.Decimal) Amount { return Amount{Value: a.Value.Div(s)} }
func (a Amount) IsPositive() bool             { return a.Value.IsPositive() }
func (a Amount) IsZero() bool                 { return a.Value.IsZero() }
func (a Amount) GreaterThan(b Amount) bool    { return a.Value.GreaterThan(b.Value) }
func (a Amount) LessThan(b Amount) bool       { return a.Value.LessThan(b.Value) }

// RoundCents truncates to two decimal places. Shares always round toward
// zero so that a sum of rounded shares can never exceed the pool they were
// carved from.
func (a Amount) RoundCents() Amount { return Amount{Value: a.Value.RoundDown(2)} }

// BelowMinimum reports whether the amount is under one cent, the smallest
// unit the engine settles.
func (a Amount) BelowMinimum() bool { return a.Value.LessThan(minSettleable) }

// MinorUnits converts to integer cents for the payment gateway, flooring
// at 1 so a gateway never sees a zero-amount refund.
func (a Amount) MinorUnits() int64 {
	cents := a.Value.Mul(decimal.NewFromInt(100)).IntPart()
	if cents < 1 {
		return 1
	}
	return cents
}

func (a Amount) String() string { return a.Value.StringFixed(2) }

// =============================================================================
// IDENTIFIERS
// =============================================================================

type GiftID string
type ContributionID string
type AccountID string
type SettlementID string

// =============================================================================
// GIFT - The record being settled
// =============================================================================

type GiftStatus string

const (
	StatusActive         GiftStatus = "active"
	StatusRefunding      GiftStatus = "refunding"       // transitional lock
	StatusSettledRefund  GiftStatus = "settled_refund"  // terminal
	StatusSettledCredits GiftStatus = "settled_credits" // terminal
)

// Terminal reports whether no further settlement may be attempted.
func (s GiftStatus) Terminal() bool {
	return s == StatusSettledRefund || s == StatusSettledCredits
}

type Gift struct {
	ID     GiftID
	Name   string
	Status GiftStatus

	// LegacyContributions is the embedded contribution list carried on the
	// gift record itself (manually entered or migrated data). Used only
	// when the primary contribution store has no rows for the gift.
	LegacyContributions []Contribution

	CreatedAt time.Time
	UpdatedAt time.Time
}

// =============================================================================
// CONTRIBUTION
// =============================================================================

type ContributionStatus string

const (
	ContributionPending   ContributionStatus = "pending"
	ContributionCompleted ContributionStatus = "completed"
	ContributionFailed    ContributionStatus = "failed"
)

// Contribution is immutable once completed, except for RefundReference
// which is written back after a successful gateway refund.
type Contribution struct {
	ID               ContributionID
	GiftID           GiftID
	Amount           Amount
	Status           ContributionStatus
	PaymentReference string    // external charge id; empty for manual entries
	AccountID        AccountID // linked platform account; empty if none
	ContributorName  string
	ContributorEmail string
	RefundReference  string
	CreatedAt        time.Time
}

// =============================================================================
// SHARE - One contributor's allocation of the net pool
// =============================================================================

type Share struct {
	Contribution Contribution
	Amount       Amount
}

// =============================================================================
// OUTCOME - Tagged per-contribution settlement result
// =============================================================================

type OutcomeKind string

const (
	OutcomeRefunded OutcomeKind = "refunded"
	OutcomeCredited OutcomeKind = "credited"
	OutcomeFailed   OutcomeKind = "failed"
)

type Outcome struct {
	Contribution Contribution
	Amount       Amount
	Kind         OutcomeKind
	RefundID     string // set when Kind == OutcomeRefunded
	CreditID     string // set when Kind == OutcomeCredited
	Reason       string // set when Kind == OutcomeFailed
}

func Refunded(share Share, refundID string) Outcome {
	return Outcome{Contribution: share.Contribution, Amount: share.Amount, Kind: OutcomeRefunded, RefundID: refundID}
}

func Credited(share Share, creditID string) Outcome {
	return Outcome{Contribution: share.Contribution, Amount: share.Amount, Kind: OutcomeCredited, CreditID: creditID}
}

func Failed(share Share, reason string) Outcome {
	return Outcome{Contribution: share.Contribution, Amount: share.Amount, Kind: OutcomeFailed, Reason: reason}
}

// =============================================================================
// AUDIT ROWS
// =============================================================================

type Disposition string

const (
	DispositionRefund Disposition = "refund"
	DispositionCredit Disposition = "credit"
)

// SettlementRecord is one audit row per resolved contributor. GiftName is
// a snapshot taken at settlement time so later renames do not rewrite
// history.
type SettlementRecord struct {
	ID             SettlementID
	GiftID         GiftID
	Amount         Amount
	Disposition    Disposition
	RecipientName  string
	RecipientEmail string
	GiftName       string
	Status         string
	CreatedAt      time.Time
}

const SettlementStatusCompleted = "completed"

// CreditEntry is an append-only internal ledger row produced when a
// contributor is made whole via account credit instead of a bank refund.
type CreditEntry struct {
	ID            string
	AccountID     AccountID
	Amount        Amount
	ReferenceID   string
	ReferenceType string // "contribution" or "gift"
	CreatedAt     time.Time
}

const (
	ReferenceContribution = "contribution"
	ReferenceGift         = "gift"
)

// RefundFailure records a contributor that could be neither refunded nor
// credited. These rows are the manual follow-up queue.
type RefundFailure struct {
	ID             string
	GiftID         GiftID
	ContributionID ContributionID
	Amount         Amount
	Detail         string
	CreatedAt      time.Time
}

// =============================================================================
// SETTLE RESULT - Aggregate returned to the caller
// =============================================================================

type SettleResult struct {
	GiftID        GiftID
	FinalStatus   GiftStatus
	BankRefunds   int
	CreditsIssued int
	Failed        int
	SettlementIDs []SettlementID
}
