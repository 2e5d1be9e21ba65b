package settlement_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giftwell/settlement-engine/settlement"
)

func contribution(id string, amount float64) settlement.Contribution {
	return settlement.Contribution{
		ID:     settlement.ContributionID(id),
		GiftID: "gift-1",
		Amount: settlement.NewAmount(amount),
		Status: settlement.ContributionCompleted,
	}
}

// =============================================================================
// PROPORTIONAL ALLOCATION
// =============================================================================

func TestAllocate_ProportionalShares(t *testing.T) {
	// GIVEN: contributions of $100 and $50 and a net pool of $135
	// WHEN: allocating
	// THEN: shares are $90.00 and $45.00

	contributions := []settlement.Contribution{
		contribution("c-1", 100),
		contribution("c-2", 50),
	}

	shares, err := settlement.Allocate(contributions, settlement.NewAmount(135))
	require.NoError(t, err)
	require.Len(t, shares, 2)

	assert.Equal(t, "90.00", shares[0].Amount.String())
	assert.Equal(t, "45.00", shares[1].Amount.String())
}

func TestAllocate_FullPoolWhenNoFees(t *testing.T) {
	// GIVEN: a net pool equal to the gross total
	// WHEN: allocating
	// THEN: everyone gets back exactly what they paid

	contributions := []settlement.Contribution{
		contribution("c-1", 25),
		contribution("c-2", 75),
	}

	shares, err := settlement.Allocate(contributions, settlement.NewAmount(100))
	require.NoError(t, err)
	require.Len(t, shares, 2)
	assert.Equal(t, "25.00", shares[0].Amount.String())
	assert.Equal(t, "75.00", shares[1].Amount.String())
}

func TestAllocate_Deterministic(t *testing.T) {
	// GIVEN: the same inputs twice
	// WHEN: allocating twice
	// THEN: identical shares (retries re-derive the same allocation)

	contributions := []settlement.Contribution{
		contribution("c-1", 33.33),
		contribution("c-2", 66.67),
		contribution("c-3", 10),
	}
	pool := settlement.NewAmount(99.37)

	first, err := settlement.Allocate(contributions, pool)
	require.NoError(t, err)
	second, err := settlement.Allocate(contributions, pool)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.True(t, first[i].Amount.Value.Equal(second[i].Amount.Value))
		assert.Equal(t, first[i].Contribution.ID, second[i].Contribution.ID)
	}
}

// =============================================================================
// ROUNDING BOUNDS
// =============================================================================

func TestAllocate_SumNeverExceedsPool(t *testing.T) {
	// GIVEN: awkward contribution amounts that force rounding
	// WHEN: allocating a pool P across n contributors
	// THEN: the share sum lies in [P - 0.01*n, P]

	cases := []struct {
		name    string
		amounts []float64
		pool    float64
	}{
		{"thirds", []float64{10, 10, 10}, 10},
		{"sevenths", []float64{1, 1, 1, 1, 1, 1, 1}, 5},
		{"uneven", []float64{33.33, 66.67, 12.15}, 100.01},
		{"two cards", []float64{100, 50}, 135},
		{"half cents", []float64{1, 1}, 1.01},
		{"half cents many", []float64{1, 1, 1, 1, 1}, 4.99},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			contributions := make([]settlement.Contribution, len(tc.amounts))
			for i, a := range tc.amounts {
				contributions[i] = contribution(string(rune('a'+i)), a)
			}
			pool := settlement.NewAmount(tc.pool)

			shares, err := settlement.Allocate(contributions, pool)
			require.NoError(t, err)

			sum := decimal.Zero
			for _, s := range shares {
				sum = sum.Add(s.Amount.Value)
			}

			slack := decimal.NewFromFloat(0.01).Mul(decimal.NewFromInt(int64(len(contributions))))
			assert.True(t, sum.LessThanOrEqual(pool.Value),
				"sum %s must not exceed pool %s", sum, pool.Value)
			assert.True(t, sum.GreaterThanOrEqual(pool.Value.Sub(slack)),
				"sum %s must be within rounding slack of pool %s", sum, pool.Value)
		})
	}
}

func TestAllocate_HalfCentSharesRoundDown(t *testing.T) {
	// GIVEN: two equal contributions and a pool that splits into exact
	//        half cents ($0.505 each)
	// WHEN: allocating
	// THEN: each share truncates to $0.50; half-up rounding here would
	//       hand out $1.02 of a $1.01 pool

	contributions := []settlement.Contribution{
		contribution("c-1", 1),
		contribution("c-2", 1),
	}

	shares, err := settlement.Allocate(contributions, settlement.NewAmount(1.01))
	require.NoError(t, err)
	require.Len(t, shares, 2)
	assert.Equal(t, "0.50", shares[0].Amount.String())
	assert.Equal(t, "0.50", shares[1].Amount.String())
}

// =============================================================================
// EDGE CASES
// =============================================================================

func TestAllocate_SubCentSharesDropped(t *testing.T) {
	// GIVEN: a tiny contributor whose share rounds below one cent
	// WHEN: allocating
	// THEN: that contributor is omitted, not errored

	contributions := []settlement.Contribution{
		contribution("whale", 10000),
		contribution("speck", 0.01),
	}

	shares, err := settlement.Allocate(contributions, settlement.NewAmount(10))
	require.NoError(t, err)
	require.Len(t, shares, 1)
	assert.Equal(t, settlement.ContributionID("whale"), shares[0].Contribution.ID)
}

func TestAllocate_ZeroGross_Rejected(t *testing.T) {
	// GIVEN: contributions summing to zero
	// WHEN: allocating
	// THEN: ErrInvalidPool

	contributions := []settlement.Contribution{
		contribution("c-1", 0),
	}

	_, err := settlement.Allocate(contributions, settlement.NewAmount(10))
	assert.ErrorIs(t, err, settlement.ErrInvalidPool)
}

func TestAllocate_EmptyContributions_Rejected(t *testing.T) {
	_, err := settlement.Allocate(nil, settlement.NewAmount(10))
	assert.ErrorIs(t, err, settlement.ErrInvalidPool)
}

// =============================================================================
// MINOR-UNIT CONVERSION
// =============================================================================

func TestAmount_MinorUnits(t *testing.T) {
	assert.Equal(t, int64(9000), settlement.NewAmount(90).MinorUnits())
	assert.Equal(t, int64(4550), settlement.NewAmount(45.50).MinorUnits())
	// Never below one minor unit
	assert.Equal(t, int64(1), settlement.NewAmount(0.001).MinorUnits())
	assert.Equal(t, int64(1), settlement.NewAmount(0.01).MinorUnits())
}

func TestAmount_BelowMinimum(t *testing.T) {
	assert.True(t, settlement.NewAmount(0.005).BelowMinimum())
	assert.False(t, settlement.NewAmount(0.01).BelowMinimum())
}

func TestAmount_Parsing(t *testing.T) {
	a, err := settlement.NewAmountFromString("45.50")
	require.NoError(t, err)
	assert.Equal(t, "45.50", a.String())

	_, err = settlement.NewAmountFromString("forty-five")
	assert.Error(t, err)

	// A malformed literal must never silently become $0.00.
	assert.Panics(t, func() { settlement.MustParseAmount("forty-five") })
	assert.Equal(t, "1.25", settlement.MustParseAmount("1.25").String())
}
