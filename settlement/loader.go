/*
loader.go - Contribution loading with legacy fallback

PURPOSE:
  Fetches the contributions eligible for settlement. The primary source is
  the contributions table; gifts migrated from the old system carry their
  contributions embedded on the gift record instead, so when the primary
  source has no rows we fall back to that list, keeping only entries with
  a positive amount.

SEE ALSO:
  - orchestrator.go: calls this right after taking the refunding lock
*/
package settlement

import "context"

// Loader fetches the set of contributions to settle for a gift.
type Loader struct {
	contributions ContributionStore
}

func NewLoader(contributions ContributionStore) *Loader {
	return &Loader{contributions: contributions}
}

// Load returns the completed contributions for the gift, falling back to
// the gift's embedded legacy list when the primary store is empty.
// Returns ErrNoContributions when both sources are empty.
func (l *Loader) Load(ctx context.Context, gift *Gift) ([]Contribution, error) {
	contributions, err := l.contributions.ListContributions(ctx, gift.ID, ContributionCompleted)
	if err != nil {
		return nil, err
	}
	if len(contributions) > 0 {
		return contributions, nil
	}

	// Legacy/manual data attached to the gift record itself.
	legacy := make([]Contribution, 0, len(gift.LegacyContributions))
	for _, c := range gift.LegacyContributions {
		if !c.Amount.IsPositive() {
			continue
		}
		if c.GiftID == "" {
			c.GiftID = gift.ID
		}
		legacy = append(legacy, c)
	}
	if len(legacy) == 0 {
		return nil, ErrNoContributions
	}
	return legacy, nil
}
