/*
dto.go - Request/response data structures for the HTTP API

PURPOSE:
  JSON shapes exchanged with clients, kept separate from domain types so
  the wire format can evolve independently. Amounts cross the wire as
  strings ("90.00") to keep cent precision out of float territory.
*/
package api

import (
	"time"

	"github.com/giftwell/settlement-engine/settlement"
)

// =============================================================================
// REQUESTS
// =============================================================================

// CreateGiftRequest creates a gift, optionally with embedded legacy
// contributions (migrated/manual data).
type CreateGiftRequest struct {
	ID                  string                     `json:"id"`
	Name                string                     `json:"name"`
	LegacyContributions []LegacyContributionInput `json:"legacy_contributions,omitempty"`
}

type LegacyContributionInput struct {
	ID               string `json:"id"`
	Amount           string `json:"amount"`
	PaymentReference string `json:"payment_reference,omitempty"`
	AccountID        string `json:"account_id,omitempty"`
	ContributorName  string `json:"contributor_name,omitempty"`
	ContributorEmail string `json:"contributor_email,omitempty"`
}

// CreateContributionRequest records a completed contribution on a gift.
type CreateContributionRequest struct {
	ID               string `json:"id"`
	Amount           string `json:"amount"`
	PaymentReference string `json:"payment_reference,omitempty"`
	AccountID        string `json:"account_id,omitempty"`
	ContributorName  string `json:"contributor_name"`
	ContributorEmail string `json:"contributor_email"`
}

// SettleRequest triggers settlement of a cancelled gift.
type SettleRequest struct {
	// NetPool is the amount to return to contributors after platform
	// fees, as a decimal string.
	NetPool string `json:"net_pool"`
}

// CreateAccountRequest registers a platform account.
type CreateAccountRequest struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// =============================================================================
// RESPONSES
// =============================================================================

type GiftDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type ContributionDTO struct {
	ID               string `json:"id"`
	GiftID           string `json:"gift_id"`
	Amount           string `json:"amount"`
	Status           string `json:"status"`
	PaymentReference string `json:"payment_reference,omitempty"`
	AccountID        string `json:"account_id,omitempty"`
	ContributorName  string `json:"contributor_name"`
	ContributorEmail string `json:"contributor_email"`
	RefundReference  string `json:"refund_reference,omitempty"`
}

type SettleResponse struct {
	Success       bool     `json:"success"`
	GiftStatus    string   `json:"gift_status"`
	BankRefunds   int      `json:"bank_refund_count"`
	CreditsIssued int      `json:"credits_issued_count"`
	Failed        int      `json:"failed_count"`
	SettlementIDs []string `json:"settlement_ids"`
}

type SettlementRecordDTO struct {
	ID             string `json:"id"`
	GiftID         string `json:"gift_id"`
	Amount         string `json:"amount"`
	Disposition    string `json:"disposition"`
	RecipientName  string `json:"recipient_name"`
	RecipientEmail string `json:"recipient_email"`
	GiftName       string `json:"gift_name"`
	Status         string `json:"status"`
	CreatedAt      string `json:"created_at"`
}

type CreditEntryDTO struct {
	ID            string `json:"id"`
	AccountID     string `json:"account_id"`
	Amount        string `json:"amount"`
	ReferenceID   string `json:"reference_id,omitempty"`
	ReferenceType string `json:"reference_type,omitempty"`
	CreatedAt     string `json:"created_at"`
}

type RefundFailureDTO struct {
	ID             string `json:"id"`
	GiftID         string `json:"gift_id"`
	ContributionID string `json:"contribution_id"`
	Amount         string `json:"amount"`
	Detail         string `json:"detail"`
	CreatedAt      string `json:"created_at"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toGiftDTO(g settlement.Gift) GiftDTO {
	return GiftDTO{
		ID:        string(g.ID),
		Name:      g.Name,
		Status:    string(g.Status),
		CreatedAt: g.CreatedAt.Format(time.RFC3339),
		UpdatedAt: g.UpdatedAt.Format(time.RFC3339),
	}
}

func toContributionDTO(c settlement.Contribution) ContributionDTO {
	return ContributionDTO{
		ID:               string(c.ID),
		GiftID:           string(c.GiftID),
		Amount:           c.Amount.String(),
		Status:           string(c.Status),
		PaymentReference: c.PaymentReference,
		AccountID:        string(c.AccountID),
		ContributorName:  c.ContributorName,
		ContributorEmail: c.ContributorEmail,
		RefundReference:  c.RefundReference,
	}
}

func toSettlementRecordDTO(r settlement.SettlementRecord) SettlementRecordDTO {
	return SettlementRecordDTO{
		ID:             string(r.ID),
		GiftID:         string(r.GiftID),
		Amount:         r.Amount.String(),
		Disposition:    string(r.Disposition),
		RecipientName:  r.RecipientName,
		RecipientEmail: r.RecipientEmail,
		GiftName:       r.GiftName,
		Status:         r.Status,
		CreatedAt:      r.CreatedAt.Format(time.RFC3339),
	}
}

func toSettleResponse(result *settlement.SettleResult) SettleResponse {
	ids := make([]string, len(result.SettlementIDs))
	for i, id := range result.SettlementIDs {
		ids[i] = string(id)
	}
	return SettleResponse{
		Success:       true,
		GiftStatus:    string(result.FinalStatus),
		BankRefunds:   result.BankRefunds,
		CreditsIssued: result.CreditsIssued,
		Failed:        result.Failed,
		SettlementIDs: ids,
	}
}
