// Package store provides in-memory implementations of the settlement
// persistence interfaces, for tests and local development.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/giftwell/settlement-engine/settlement"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements settlement.Store, settlement.AccountDirectory and
// settlement.CreditLedger with map-backed state.
type Memory struct {
	mu              sync.RWMutex
	gifts           map[settlement.GiftID]*settlement.Gift
	contributions   map[settlement.GiftID][]settlement.Contribution
	accounts        map[settlement.AccountID]*Account
	accountsByEmail map[string]settlement.AccountID
	credits         []settlement.CreditEntry
	records         []settlement.SettlementRecord
	failures        []settlement.RefundFailure
}

// Account is a platform account with a credit balance.
type Account struct {
	ID      settlement.AccountID
	Email   string
	Name    string
	Balance settlement.Amount
}

func NewMemory() *Memory {
	return &Memory{
		gifts:           make(map[settlement.GiftID]*settlement.Gift),
		contributions:   make(map[settlement.GiftID][]settlement.Contribution),
		accounts:        make(map[settlement.AccountID]*Account),
		accountsByEmail: make(map[string]settlement.AccountID),
	}
}

// =============================================================================
// GIFT STORE
// =============================================================================

func (m *Memory) PutGift(g settlement.Gift) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := g
	m.gifts[g.ID] = &copied
}

func (m *Memory) GetGift(_ context.Context, id settlement.GiftID) (*settlement.Gift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.gifts[id]
	if !ok {
		return nil, settlement.ErrGiftNotFound
	}
	copied := *g
	return &copied, nil
}

// TransitionStatus is the compare-and-swap the engine relies on. The
// whole check-and-set happens under one lock, mirroring the single
// conditional UPDATE of the SQL implementation.
func (m *Memory) TransitionStatus(_ context.Context, id settlement.GiftID, from, to settlement.GiftStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.gifts[id]
	if !ok {
		return settlement.ErrGiftNotFound
	}
	if g.Status != from {
		return &settlement.StatusTransitionError{GiftID: id, From: from, To: to, Current: g.Status}
	}
	g.Status = to
	g.UpdatedAt = time.Now().UTC()
	return nil
}

// =============================================================================
// CONTRIBUTION STORE
// =============================================================================

func (m *Memory) PutContribution(c settlement.Contribution) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contributions[c.GiftID] = append(m.contributions[c.GiftID], c)
}

func (m *Memory) ListContributions(_ context.Context, giftID settlement.GiftID, status settlement.ContributionStatus) ([]settlement.Contribution, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []settlement.Contribution
	for _, c := range m.contributions[giftID] {
		if c.Status == status {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *Memory) SetRefundReference(_ context.Context, id settlement.ContributionID, refundRef string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for giftID, list := range m.contributions {
		for i := range list {
			if list[i].ID == id {
				list[i].RefundReference = refundRef
				m.contributions[giftID] = list
				return nil
			}
		}
	}
	return settlement.ErrContributionNotFound
}

// =============================================================================
// ACCOUNTS - Directory + credit ledger
// =============================================================================

func (m *Memory) PutAccount(a Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := a
	m.accounts[a.ID] = &copied
	m.accountsByEmail[a.Email] = a.ID
}

func (m *Memory) GetAccount(id settlement.AccountID) (Account, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.accounts[id]
	if !ok {
		return Account{}, false
	}
	return *a, true
}

func (m *Memory) FindAccountIDByEmail(_ context.Context, email string) (settlement.AccountID, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.accountsByEmail[email]
	return id, ok, nil
}

// CreditAccount writes the ledger entry and the balance bump under one
// lock, matching the SQL implementation's transaction.
func (m *Memory) CreditAccount(_ context.Context, accountID settlement.AccountID, amount settlement.Amount, referenceID, referenceType string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[accountID]
	if !ok {
		return "", settlement.ErrAccountNotFound
	}
	entry := settlement.CreditEntry{
		ID:            uuid.NewString(),
		AccountID:     accountID,
		Amount:        amount,
		ReferenceID:   referenceID,
		ReferenceType: referenceType,
		CreatedAt:     time.Now().UTC(),
	}
	m.credits = append(m.credits, entry)
	a.Balance = a.Balance.Add(amount)
	return entry.ID, nil
}

func (m *Memory) ListCreditEntries(_ context.Context, accountID settlement.AccountID) ([]settlement.CreditEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []settlement.CreditEntry
	for _, e := range m.credits {
		if e.AccountID == accountID {
			out = append(out, e)
		}
	}
	return out, nil
}

// =============================================================================
// RECORD STORE
// =============================================================================

func (m *Memory) AppendSettlementRecords(_ context.Context, records []settlement.SettlementRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, records...)
	return nil
}

func (m *Memory) ListSettlementRecords(_ context.Context, giftID settlement.GiftID) ([]settlement.SettlementRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []settlement.SettlementRecord
	for _, r := range m.records {
		if r.GiftID == giftID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *Memory) AppendRefundFailure(_ context.Context, failure settlement.RefundFailure) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = append(m.failures, failure)
	return nil
}

func (m *Memory) ListRefundFailures(_ context.Context) ([]settlement.RefundFailure, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]settlement.RefundFailure, len(m.failures))
	copy(out, m.failures)
	return out, nil
}
