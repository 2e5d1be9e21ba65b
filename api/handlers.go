/*
handlers.go - HTTP API handlers for the settlement engine

PURPOSE:
  Exposes the settlement engine via REST. Handles HTTP request/response,
  JSON serialization, and delegates to the orchestrator and store.

ENDPOINTS:
  Gifts:
    GET    /api/gifts                        List gifts
    POST   /api/gifts                        Create gift
    GET    /api/gifts/{id}                   Gift details
    POST   /api/gifts/{id}/contributions     Record contribution
    GET    /api/gifts/{id}/contributions     List contributions
    POST   /api/gifts/{id}/settle            Settle (refund contributors)
    GET    /api/gifts/{id}/settlements       Settlement audit rows

  Accounts:
    POST   /api/accounts                     Create account
    GET    /api/accounts/{id}/credits        Credit ledger entries

  Operations:
    GET    /api/failures                     Manual follow-up queue
    POST   /api/scenarios/load               Load demo data

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Gift/account not found
  - 409: Settlement already in progress or completed
  - 503: Payment gateway not configured
  - 500: Internal errors

SEE ALSO:
  - dto.go: request/response data structures
  - server.go: router setup and middleware
  - settlement/orchestrator.go: the engine behind POST /settle
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/giftwell/settlement-engine/settlement"
	"github.com/giftwell/settlement-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store        *sqlite.Store
	Orchestrator *settlement.Orchestrator
	Metrics      *Metrics
}

// NewHandler creates a new handler.
func NewHandler(store *sqlite.Store, orchestrator *settlement.Orchestrator) *Handler {
	return &Handler{
		Store:        store,
		Orchestrator: orchestrator,
		Metrics:      NewMetrics(),
	}
}

// =============================================================================
// GIFT HANDLERS
// =============================================================================

// ListGifts returns all gifts.
func (h *Handler) ListGifts(w http.ResponseWriter, r *http.Request) {
	gifts, err := h.Store.ListGifts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list gifts", err)
		return
	}

	dtos := make([]GiftDTO, len(gifts))
	for i, g := range gifts {
		dtos[i] = toGiftDTO(g)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetGift returns a single gift.
func (h *Handler) GetGift(w http.ResponseWriter, r *http.Request) {
	id := settlement.GiftID(chi.URLParam(r, "id"))

	gift, err := h.Store.GetGift(r.Context(), id)
	if errors.Is(err, settlement.ErrGiftNotFound) {
		writeError(w, http.StatusNotFound, "Gift not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get gift", err)
		return
	}
	writeJSON(w, http.StatusOK, toGiftDTO(*gift))
}

// CreateGift creates a new gift in active status.
func (h *Handler) CreateGift(w http.ResponseWriter, r *http.Request) {
	var req CreateGiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}

	legacy := make([]settlement.Contribution, 0, len(req.LegacyContributions))
	for _, lc := range req.LegacyContributions {
		amount, err := settlement.NewAmountFromString(lc.Amount)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid legacy contribution amount", err)
			return
		}
		legacy = append(legacy, settlement.Contribution{
			ID:               settlement.ContributionID(lc.ID),
			GiftID:           settlement.GiftID(req.ID),
			Amount:           amount,
			Status:           settlement.ContributionCompleted,
			PaymentReference: lc.PaymentReference,
			AccountID:        settlement.AccountID(lc.AccountID),
			ContributorName:  lc.ContributorName,
			ContributorEmail: lc.ContributorEmail,
		})
	}

	gift := settlement.Gift{
		ID:                  settlement.GiftID(req.ID),
		Name:                req.Name,
		Status:              settlement.StatusActive,
		LegacyContributions: legacy,
	}
	if err := h.Store.SaveGift(r.Context(), gift); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create gift", err)
		return
	}
	writeJSON(w, http.StatusCreated, toGiftDTO(gift))
}

// =============================================================================
// CONTRIBUTION HANDLERS
// =============================================================================

// CreateContribution records a completed contribution on a gift.
func (h *Handler) CreateContribution(w http.ResponseWriter, r *http.Request) {
	giftID := settlement.GiftID(chi.URLParam(r, "id"))

	var req CreateContributionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "id is required", nil)
		return
	}
	amount, err := settlement.NewAmountFromString(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return
	}
	if !amount.IsPositive() {
		writeError(w, http.StatusBadRequest, "Amount must be positive", nil)
		return
	}

	if _, err := h.Store.GetGift(r.Context(), giftID); err != nil {
		if errors.Is(err, settlement.ErrGiftNotFound) {
			writeError(w, http.StatusNotFound, "Gift not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get gift", err)
		return
	}

	c := settlement.Contribution{
		ID:               settlement.ContributionID(req.ID),
		GiftID:           giftID,
		Amount:           amount,
		Status:           settlement.ContributionCompleted,
		PaymentReference: req.PaymentReference,
		AccountID:        settlement.AccountID(req.AccountID),
		ContributorName:  req.ContributorName,
		ContributorEmail: req.ContributorEmail,
		CreatedAt:        time.Now().UTC(),
	}
	if err := h.Store.SaveContribution(r.Context(), c); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save contribution", err)
		return
	}
	writeJSON(w, http.StatusCreated, toContributionDTO(c))
}

// ListContributions returns a gift's completed contributions.
func (h *Handler) ListContributions(w http.ResponseWriter, r *http.Request) {
	giftID := settlement.GiftID(chi.URLParam(r, "id"))

	contributions, err := h.Store.ListContributions(r.Context(), giftID, settlement.ContributionCompleted)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list contributions", err)
		return
	}

	dtos := make([]ContributionDTO, len(contributions))
	for i, c := range contributions {
		dtos[i] = toContributionDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// SETTLEMENT HANDLERS
// =============================================================================

// Settle runs the settlement engine for a cancelled gift.
// POST /api/gifts/{id}/settle
func (h *Handler) Settle(w http.ResponseWriter, r *http.Request) {
	giftID := settlement.GiftID(chi.URLParam(r, "id"))

	var req SettleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	netPool, err := settlement.NewAmountFromString(req.NetPool)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid net_pool", err)
		return
	}

	result, err := h.Orchestrator.Settle(r.Context(), giftID, netPool)
	if err != nil {
		h.Metrics.ObserveError(err)
		writeSettlementError(w, err)
		return
	}

	h.Metrics.ObserveResult(result)
	writeJSON(w, http.StatusOK, toSettleResponse(result))
}

// ListSettlements returns the audit rows for a gift.
func (h *Handler) ListSettlements(w http.ResponseWriter, r *http.Request) {
	giftID := settlement.GiftID(chi.URLParam(r, "id"))

	records, err := h.Store.ListSettlementRecords(r.Context(), giftID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list settlement records", err)
		return
	}

	dtos := make([]SettlementRecordDTO, len(records))
	for i, rec := range records {
		dtos[i] = toSettlementRecordDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListFailures returns the manual follow-up queue.
func (h *Handler) ListFailures(w http.ResponseWriter, r *http.Request) {
	failures, err := h.Store.ListRefundFailures(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list refund failures", err)
		return
	}

	dtos := make([]RefundFailureDTO, len(failures))
	for i, f := range failures {
		dtos[i] = RefundFailureDTO{
			ID:             f.ID,
			GiftID:         string(f.GiftID),
			ContributionID: string(f.ContributionID),
			Amount:         f.Amount.String(),
			Detail:         f.Detail,
			CreatedAt:      f.CreatedAt.Format(time.RFC3339),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// ACCOUNT HANDLERS
// =============================================================================

// CreateAccount registers a platform account.
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "id and email are required", nil)
		return
	}

	a := sqlite.Account{
		ID:    settlement.AccountID(req.ID),
		Email: req.Email,
		Name:  req.Name,
	}
	if err := h.Store.SaveAccount(r.Context(), a); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create account", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": req.ID})
}

// ListCredits returns an account's credit ledger entries.
func (h *Handler) ListCredits(w http.ResponseWriter, r *http.Request) {
	accountID := settlement.AccountID(chi.URLParam(r, "id"))

	entries, err := h.Store.ListCreditEntries(r.Context(), accountID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list credits", err)
		return
	}

	dtos := make([]CreditEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = CreditEntryDTO{
			ID:            e.ID,
			AccountID:     string(e.AccountID),
			Amount:        e.Amount.String(),
			ReferenceID:   e.ReferenceID,
			ReferenceType: e.ReferenceType,
			CreatedAt:     e.CreatedAt.Format(time.RFC3339),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// HELPERS
// =============================================================================

// writeSettlementError maps the engine's error taxonomy to HTTP statuses.
func writeSettlementError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, settlement.ErrGatewayNotConfigured):
		writeErrorCode(w, http.StatusServiceUnavailable, "Payment gateway not configured", "gateway_not_configured", err)
	case settlement.IsNotFound(err):
		writeErrorCode(w, http.StatusNotFound, "Gift not found", "not_found", err)
	case settlement.IsConflict(err):
		writeErrorCode(w, http.StatusConflict, "Settlement already in progress or completed", "settlement_in_progress", err)
	case settlement.IsValidation(err):
		writeErrorCode(w, http.StatusBadRequest, "Settlement rejected", "validation_failed", err)
	case errors.Is(err, settlement.ErrNoRecipientsResolved):
		writeErrorCode(w, http.StatusUnprocessableEntity, "No contributors could be refunded or credited", "no_recipients_resolved", err)
	default:
		writeError(w, http.StatusInternalServerError, "Settlement failed", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func writeErrorCode(w http.ResponseWriter, status int, message, code string, err error) {
	resp := ErrorResponse{Error: message, Code: code}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
