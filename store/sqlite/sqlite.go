/*
Package sqlite provides a SQLite-backed implementation of the settlement
storage interfaces.

PURPOSE:
  Implements settlement.Store, settlement.AccountDirectory and
  settlement.CreditLedger using SQLite. In production the same patterns
  apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  gifts:              Gift records; status is the settlement lock
  contributions:      Contributor payments (refund_reference write-back only)
  accounts:           Platform accounts with a credit balance
  credit_ledger:      Append-only internal credit entries
  settlement_records: Append-only audit rows, one per resolved contributor
  refund_failures:    Append-only manual follow-up queue

CONDITIONAL STATUS UPDATE:
  TransitionStatus is a single
    UPDATE gifts SET status = ? WHERE id = ? AND status = ?
  so the active -> refunding lock is enforced by the database itself; a
  concurrent run sees zero rows affected and is rejected.

TRANSACTIONAL CREDIT:
  CreditAccount inserts the ledger row and bumps the account balance in
  one SQL transaction; a contributor is never credited without a ledger
  entry or vice versa.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) so readers don't block
  while the settlement run writes.

USAGE:
  store, err := sqlite.New("./data/giftwell.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - settlement/store.go: interface definitions
  - settlement/store/memory.go: in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/giftwell/settlement-engine/settlement"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Gifts (status column doubles as the settlement lock)
	CREATE TABLE IF NOT EXISTS gifts (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'active',
		legacy_contributions_json TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_gifts_status ON gifts(status);

	-- Contributions (immutable except refund_reference)
	CREATE TABLE IF NOT EXISTS contributions (
		id TEXT PRIMARY KEY,
		gift_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'completed',
		payment_reference TEXT,
		account_id TEXT,
		contributor_name TEXT,
		contributor_email TEXT,
		refund_reference TEXT,
		created_at TEXT NOT NULL,
		FOREIGN KEY (gift_id) REFERENCES gifts(id)
	);

	CREATE INDEX IF NOT EXISTS idx_contributions_gift_status
		ON contributions(gift_id, status);

	-- Accounts (credit balances)
	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT,
		balance TEXT NOT NULL DEFAULT '0',
		created_at TEXT NOT NULL
	);

	-- Credit ledger (append-only)
	CREATE TABLE IF NOT EXISTS credit_ledger (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		reference_id TEXT,
		reference_type TEXT,
		created_at TEXT NOT NULL,
		FOREIGN KEY (account_id) REFERENCES accounts(id)
	);

	CREATE INDEX IF NOT EXISTS idx_credit_ledger_account
		ON credit_ledger(account_id);
	CREATE INDEX IF NOT EXISTS idx_credit_ledger_reference
		ON credit_ledger(reference_id) WHERE reference_id IS NOT NULL;

	-- Settlement records (append-only audit rows)
	CREATE TABLE IF NOT EXISTS settlement_records (
		id TEXT PRIMARY KEY,
		gift_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		disposition TEXT NOT NULL,
		recipient_name TEXT,
		recipient_email TEXT,
		gift_name TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL,
		FOREIGN KEY (gift_id) REFERENCES gifts(id)
	);

	CREATE INDEX IF NOT EXISTS idx_settlement_records_gift
		ON settlement_records(gift_id);

	-- Refund failures (append-only manual follow-up queue)
	CREATE TABLE IF NOT EXISTS refund_failures (
		id TEXT PRIMARY KEY,
		gift_id TEXT NOT NULL,
		contribution_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		detail TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_refund_failures_gift
		ON refund_failures(gift_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// GIFT STORE (settlement.GiftStore interface)
// =============================================================================

// SaveGift inserts or replaces a gift record.
func (s *Store) SaveGift(ctx context.Context, gift settlement.Gift) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	legacyJSON, err := json.Marshal(legacyToRows(gift.LegacyContributions))
	if err != nil {
		return fmt.Errorf("failed to encode legacy contributions: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO gifts (id, name, status, legacy_contributions_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			status = excluded.status,
			legacy_contributions_json = excluded.legacy_contributions_json,
			updated_at = excluded.updated_at
	`, gift.ID, gift.Name, string(gift.Status), string(legacyJSON), now, now)
	if err != nil {
		return fmt.Errorf("failed to save gift: %w", err)
	}
	return nil
}

// GetGift returns the gift or settlement.ErrGiftNotFound.
func (s *Store) GetGift(ctx context.Context, id settlement.GiftID) (*settlement.Gift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, status, legacy_contributions_json, created_at, updated_at
		FROM gifts WHERE id = ?
	`, id)

	var g settlement.Gift
	var status, createdAt, updatedAt string
	var legacyNull sql.NullString
	err := row.Scan(&g.ID, &g.Name, &status, &legacyNull, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, settlement.ErrGiftNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get gift: %w", err)
	}
	g.Status = settlement.GiftStatus(status)
	if legacyNull.Valid && legacyNull.String != "" && legacyNull.String != "null" {
		var rows []legacyContributionRow
		if err := json.Unmarshal([]byte(legacyNull.String), &rows); err != nil {
			return nil, fmt.Errorf("failed to decode legacy contributions: %w", err)
		}
		g.LegacyContributions, err = rowsToLegacy(g.ID, rows)
		if err != nil {
			return nil, err
		}
	}
	g.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	g.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &g, nil
}

// ListGifts returns all gifts, newest first.
func (s *Store) ListGifts(ctx context.Context) ([]settlement.Gift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, status, created_at, updated_at
		FROM gifts ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list gifts: %w", err)
	}
	defer rows.Close()

	var gifts []settlement.Gift
	for rows.Next() {
		var g settlement.Gift
		var status, createdAt, updatedAt string
		if err := rows.Scan(&g.ID, &g.Name, &status, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		g.Status = settlement.GiftStatus(status)
		g.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		g.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		gifts = append(gifts, g)
	}
	return gifts, rows.Err()
}

// TransitionStatus atomically moves the gift between statuses. The WHERE
// clause on the current status is the settlement lock; zero rows affected
// means another run holds the gift (or it is already terminal).
func (s *Store) TransitionStatus(ctx context.Context, id settlement.GiftID, from, to settlement.GiftStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE gifts SET status = ?, updated_at = ? WHERE id = ? AND status = ?
	`, string(to), time.Now().UTC().Format(time.RFC3339), id, string(from))
	if err != nil {
		return fmt.Errorf("failed to transition gift status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 1 {
		return nil
	}

	// Rejected: distinguish a missing gift from a held lock.
	var current string
	err = s.db.QueryRowContext(ctx, `SELECT status FROM gifts WHERE id = ?`, id).Scan(&current)
	if err == sql.ErrNoRows {
		return settlement.ErrGiftNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read gift status: %w", err)
	}
	return &settlement.StatusTransitionError{
		GiftID:  id,
		From:    from,
		To:      to,
		Current: settlement.GiftStatus(current),
	}
}

// =============================================================================
// CONTRIBUTION STORE (settlement.ContributionStore interface)
// =============================================================================

// SaveContribution inserts a contribution row.
func (s *Store) SaveContribution(ctx context.Context, c settlement.Contribution) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contributions
		(id, gift_id, amount, status, payment_reference, account_id,
		 contributor_name, contributor_email, refund_reference, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		c.ID, c.GiftID, c.Amount.Value.String(), string(c.Status),
		nullString(c.PaymentReference), nullString(string(c.AccountID)),
		c.ContributorName, c.ContributorEmail, nullString(c.RefundReference),
		createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to save contribution: %w", err)
	}
	return nil
}

// ListContributions returns contributions for the gift with the given
// status, oldest first.
func (s *Store) ListContributions(ctx context.Context, giftID settlement.GiftID, status settlement.ContributionStatus) ([]settlement.Contribution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, gift_id, amount, status, payment_reference, account_id,
		       contributor_name, contributor_email, refund_reference, created_at
		FROM contributions
		WHERE gift_id = ? AND status = ?
		ORDER BY created_at ASC, id
	`, giftID, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to list contributions: %w", err)
	}
	defer rows.Close()

	var contributions []settlement.Contribution
	for rows.Next() {
		c, err := scanContribution(rows)
		if err != nil {
			return nil, err
		}
		contributions = append(contributions, c)
	}
	return contributions, rows.Err()
}

// SetRefundReference records the gateway refund id on the contribution.
func (s *Store) SetRefundReference(ctx context.Context, id settlement.ContributionID, refundRef string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE contributions SET refund_reference = ? WHERE id = ?
	`, refundRef, id)
	if err != nil {
		return fmt.Errorf("failed to set refund reference: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return settlement.ErrContributionNotFound
	}
	return nil
}

// =============================================================================
// ACCOUNTS (settlement.AccountDirectory + settlement.CreditLedger)
// =============================================================================

// Account is a platform account row.
type Account struct {
	ID        settlement.AccountID
	Email     string
	Name      string
	Balance   settlement.Amount
	CreatedAt time.Time
}

// SaveAccount inserts an account row.
func (s *Store) SaveAccount(ctx context.Context, a Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, email, name, balance, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, a.ID, a.Email, a.Name, a.Balance.Value.String(), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}
	return nil
}

// GetAccount returns the account or settlement.ErrAccountNotFound.
func (s *Store) GetAccount(ctx context.Context, id settlement.AccountID) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, name, balance, created_at FROM accounts WHERE id = ?
	`, id)

	var a Account
	var balance, createdAt string
	err := row.Scan(&a.ID, &a.Email, &a.Name, &balance, &createdAt)
	if err == sql.ErrNoRows {
		return nil, settlement.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	a.Balance, err = settlement.NewAmountFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("corrupt account balance %q: %w", balance, err)
	}
	a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &a, nil
}

// FindAccountIDByEmail resolves a contributor email to an account id.
func (s *Store) FindAccountIDByEmail(ctx context.Context, email string) (settlement.AccountID, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var id string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM accounts WHERE email = ?`, email).Scan(&id)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to look up account by email: %w", err)
	}
	return settlement.AccountID(id), true, nil
}

// CreditAccount writes the ledger entry and the balance update in one SQL
// transaction.
func (s *Store) CreditAccount(ctx context.Context, accountID settlement.AccountID, amount settlement.Amount, referenceID, referenceType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin credit transaction: %w", err)
	}
	defer tx.Rollback()

	var balance string
	err = tx.QueryRowContext(ctx, `SELECT balance FROM accounts WHERE id = ?`, accountID).Scan(&balance)
	if err == sql.ErrNoRows {
		return "", settlement.ErrAccountNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read account balance: %w", err)
	}

	current, err := settlement.NewAmountFromString(balance)
	if err != nil {
		return "", fmt.Errorf("corrupt account balance %q: %w", balance, err)
	}
	newBalance := current.Add(amount)
	if _, err := tx.ExecContext(ctx, `UPDATE accounts SET balance = ? WHERE id = ?`,
		newBalance.Value.String(), accountID); err != nil {
		return "", fmt.Errorf("failed to update account balance: %w", err)
	}

	creditID := uuid.NewString()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO credit_ledger (id, account_id, amount, reference_id, reference_type, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, creditID, accountID, amount.Value.String(), nullString(referenceID), nullString(referenceType),
		time.Now().UTC().Format(time.RFC3339)); err != nil {
		return "", fmt.Errorf("failed to insert credit entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit credit: %w", err)
	}
	return creditID, nil
}

// ListCreditEntries returns an account's credit history, oldest first.
func (s *Store) ListCreditEntries(ctx context.Context, accountID settlement.AccountID) ([]settlement.CreditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, account_id, amount, reference_id, reference_type, created_at
		FROM credit_ledger WHERE account_id = ? ORDER BY created_at ASC, id
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list credit entries: %w", err)
	}
	defer rows.Close()

	var entries []settlement.CreditEntry
	for rows.Next() {
		var e settlement.CreditEntry
		var amount, createdAt string
		var refID, refType sql.NullString
		if err := rows.Scan(&e.ID, &e.AccountID, &amount, &refID, &refType, &createdAt); err != nil {
			return nil, err
		}
		e.Amount, err = settlement.NewAmountFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("corrupt credit amount %q: %w", amount, err)
		}
		e.ReferenceID = refID.String
		e.ReferenceType = refType.String
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// =============================================================================
// RECORD STORE (settlement.RecordStore interface)
// =============================================================================

// AppendSettlementRecords persists the batch atomically.
func (s *Store) AppendSettlementRecords(ctx context.Context, records []settlement.SettlementRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin settlement record batch: %w", err)
	}
	defer tx.Rollback()

	for _, r := range records {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO settlement_records
			(id, gift_id, amount, disposition, recipient_name, recipient_email,
			 gift_name, status, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			r.ID, r.GiftID, r.Amount.Value.String(), string(r.Disposition),
			r.RecipientName, r.RecipientEmail, r.GiftName, r.Status,
			r.CreatedAt.Format(time.RFC3339),
		); err != nil {
			return fmt.Errorf("failed to insert settlement record: %w", err)
		}
	}

	return tx.Commit()
}

// ListSettlementRecords returns the audit rows for a gift, oldest first.
func (s *Store) ListSettlementRecords(ctx context.Context, giftID settlement.GiftID) ([]settlement.SettlementRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, gift_id, amount, disposition, recipient_name, recipient_email,
		       gift_name, status, created_at
		FROM settlement_records WHERE gift_id = ? ORDER BY created_at ASC, id
	`, giftID)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlement records: %w", err)
	}
	defer rows.Close()

	var records []settlement.SettlementRecord
	for rows.Next() {
		var r settlement.SettlementRecord
		var amount, disposition, createdAt string
		if err := rows.Scan(&r.ID, &r.GiftID, &amount, &disposition,
			&r.RecipientName, &r.RecipientEmail, &r.GiftName, &r.Status, &createdAt); err != nil {
			return nil, err
		}
		r.Amount, err = settlement.NewAmountFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("corrupt settlement record amount %q: %w", amount, err)
		}
		r.Disposition = settlement.Disposition(disposition)
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		records = append(records, r)
	}
	return records, rows.Err()
}

// AppendRefundFailure logs an unresolvable contributor.
func (s *Store) AppendRefundFailure(ctx context.Context, f settlement.RefundFailure) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO refund_failures (id, gift_id, contribution_id, amount, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, f.ID, f.GiftID, f.ContributionID, f.Amount.Value.String(), f.Detail,
		f.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert refund failure: %w", err)
	}
	return nil
}

// ListRefundFailures returns the manual follow-up queue, newest first.
func (s *Store) ListRefundFailures(ctx context.Context) ([]settlement.RefundFailure, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, gift_id, contribution_id, amount, detail, created_at
		FROM refund_failures ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list refund failures: %w", err)
	}
	defer rows.Close()

	var failures []settlement.RefundFailure
	for rows.Next() {
		var f settlement.RefundFailure
		var amount, createdAt string
		if err := rows.Scan(&f.ID, &f.GiftID, &f.ContributionID, &amount, &f.Detail, &createdAt); err != nil {
			return nil, err
		}
		f.Amount, err = settlement.NewAmountFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("corrupt refund failure amount %q: %w", amount, err)
		}
		f.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		failures = append(failures, f)
	}
	return failures, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

// legacyContributionRow is the JSON shape embedded on the gift record for
// migrated/manual contributions.
type legacyContributionRow struct {
	ID               string `json:"id"`
	Amount           string `json:"amount"`
	PaymentReference string `json:"payment_reference,omitempty"`
	AccountID        string `json:"account_id,omitempty"`
	ContributorName  string `json:"contributor_name,omitempty"`
	ContributorEmail string `json:"contributor_email,omitempty"`
}

func legacyToRows(contributions []settlement.Contribution) []legacyContributionRow {
	if len(contributions) == 0 {
		return nil
	}
	rows := make([]legacyContributionRow, len(contributions))
	for i, c := range contributions {
		rows[i] = legacyContributionRow{
			ID:               string(c.ID),
			Amount:           c.Amount.Value.String(),
			PaymentReference: c.PaymentReference,
			AccountID:        string(c.AccountID),
			ContributorName:  c.ContributorName,
			ContributorEmail: c.ContributorEmail,
		}
	}
	return rows
}

func rowsToLegacy(giftID settlement.GiftID, rows []legacyContributionRow) ([]settlement.Contribution, error) {
	contributions := make([]settlement.Contribution, len(rows))
	for i, r := range rows {
		amount, err := settlement.NewAmountFromString(r.Amount)
		if err != nil {
			return nil, fmt.Errorf("corrupt legacy contribution amount %q: %w", r.Amount, err)
		}
		contributions[i] = settlement.Contribution{
			ID:               settlement.ContributionID(r.ID),
			GiftID:           giftID,
			Amount:           amount,
			Status:           settlement.ContributionCompleted,
			PaymentReference: r.PaymentReference,
			AccountID:        settlement.AccountID(r.AccountID),
			ContributorName:  r.ContributorName,
			ContributorEmail: r.ContributorEmail,
		}
	}
	return contributions, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanContribution(row scannable) (settlement.Contribution, error) {
	var c settlement.Contribution
	var amount, status, createdAt string
	var paymentRef, accountID, refundRef sql.NullString
	err := row.Scan(&c.ID, &c.GiftID, &amount, &status, &paymentRef, &accountID,
		&c.ContributorName, &c.ContributorEmail, &refundRef, &createdAt)
	if err != nil {
		return c, fmt.Errorf("failed to scan contribution: %w", err)
	}
	c.Amount, err = settlement.NewAmountFromString(amount)
	if err != nil {
		return c, fmt.Errorf("corrupt contribution amount %q: %w", amount, err)
	}
	c.Status = settlement.ContributionStatus(status)
	c.PaymentReference = paymentRef.String
	c.AccountID = settlement.AccountID(accountID.String)
	c.RefundReference = refundRef.String
	c.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return c, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
