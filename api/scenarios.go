/*
scenarios.go - Demo data for local development

PURPOSE:
  Seeds the database with a small set of gifts, contributions, and
  accounts so the settlement flow can be exercised end to end without the
  rest of the platform.

SCENARIO:
  - "Espresso machine for Dana": two card-backed contributions, one
    contributor with a platform account (refund path).
  - "Office send-off": manually recorded contributions embedded on the
    gift, contributors resolvable by email (pure-credit path).
*/
package api

import (
	"net/http"
	"time"

	"github.com/giftwell/settlement-engine/settlement"
	"github.com/giftwell/settlement-engine/store/sqlite"
)

// LoadScenario seeds the demo data set. Existing rows with the same ids
// cause a 500; reset the database file first.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accounts := []sqlite.Account{
		{ID: "acct-maya", Email: "maya@example.com", Name: "Maya Lindqvist"},
		{ID: "acct-jordan", Email: "jordan@example.com", Name: "Jordan Okafor"},
		{ID: "acct-sam", Email: "sam@example.com", Name: "Sam Whitfield"},
	}
	for _, a := range accounts {
		if err := h.Store.SaveAccount(ctx, a); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to seed accounts", err)
			return
		}
	}

	espresso := settlement.Gift{
		ID:     "gift-espresso",
		Name:   "Espresso machine for Dana",
		Status: settlement.StatusActive,
	}
	if err := h.Store.SaveGift(ctx, espresso); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to seed gifts", err)
		return
	}

	contributions := []settlement.Contribution{
		{
			ID: "contrib-1", GiftID: espresso.ID,
			Amount: settlement.NewAmount(100), Status: settlement.ContributionCompleted,
			PaymentReference: "ch_demo_maya", AccountID: "acct-maya",
			ContributorName: "Maya Lindqvist", ContributorEmail: "maya@example.com",
			CreatedAt: time.Now().UTC(),
		},
		{
			ID: "contrib-2", GiftID: espresso.ID,
			Amount: settlement.NewAmount(50), Status: settlement.ContributionCompleted,
			PaymentReference: "ch_demo_jordan",
			ContributorName:  "Jordan Okafor", ContributorEmail: "jordan@example.com",
			CreatedAt: time.Now().UTC(),
		},
	}
	for _, c := range contributions {
		if err := h.Store.SaveContribution(ctx, c); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to seed contributions", err)
			return
		}
	}

	// Manually recorded gift: contributions live on the gift record.
	sendoff := settlement.Gift{
		ID:     "gift-sendoff",
		Name:   "Office send-off",
		Status: settlement.StatusActive,
		LegacyContributions: []settlement.Contribution{
			{ID: "legacy-1", Amount: settlement.NewAmount(40), ContributorName: "Sam Whitfield", ContributorEmail: "sam@example.com"},
			{ID: "legacy-2", Amount: settlement.NewAmount(60), ContributorName: "Maya Lindqvist", ContributorEmail: "maya@example.com"},
		},
	}
	if err := h.Store.SaveGift(ctx, sendoff); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to seed gifts", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"gifts":    []string{string(espresso.ID), string(sendoff.ID)},
		"accounts": len(accounts),
	})
}
