/*
allocator.go - Proportional allocation of the net refundable pool

PURPOSE:
  Splits the net refundable pool (gross contributions minus platform fees)
  across contributors in proportion to what each paid in. Pure and
  deterministic: the same inputs always produce the same shares, which is
  what makes whole-operation retries safe.

ROUNDING POLICY:
  Each share is rounded down to the cent independently. The sum of shares
  can therefore undershoot the pool by at most one cent per contributor;
  rounding down guarantees it never overshoots. Shares that round below
  one cent are dropped rather than pursued - chasing sub-cent refunds
  costs more than they return.

SEE ALSO:
  - attempter.go: consumes the shares
*/
package settlement

// Allocate computes each contribution's slice of netPool, proportional to
// its gross amount. Returns ErrInvalidPool when the total gross is not
// positive. Contributions whose share rounds below one cent are omitted
// from the result.
func Allocate(contributions []Contribution, netPool Amount) ([]Share, error) {
	totalGross := Amount{}
	for _, c := range contributions {
		totalGross = totalGross.Add(c.Amount)
	}
	if !totalGross.IsPositive() {
		return nil, ErrInvalidPool
	}

	shares := make([]Share, 0, len(contributions))
	for _, c := range contributions {
		share := c.Amount.Div(totalGross.Value).Mul(netPool.Value).RoundCents()
		if share.BelowMinimum() {
			continue
		}
		shares = append(shares, Share{Contribution: c, Amount: share})
	}
	return shares, nil
}
