package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openbooks-app/openbooks/internal/apperrors"
	"github.com/openbooks-app/openbooks/internal/core/domain"
	portsrepo "github.com/openbooks-app/openbooks/internal/core/ports/repositories"
	"github.com/openbooks-app/openbooks/internal/models"
	"github.com/openbooks-app/openbooks/internal/utils/mapping"
)

// PgxTransactionRepository persists transactions, entry lines, balance
// deltas and idempotency keys. Every posting commit is a single database
// transaction: all rows become visible together or not at all.
type PgxTransactionRepository struct {
	BaseRepository
}

// newPgxTransactionRepository creates a new repository for posting data.
func newPgxTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionRepository {
	return &PgxTransactionRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.TransactionRepository = (*PgxTransactionRepository)(nil)

const transactionColumns = `transaction_id, journal_id, tx_date, memo, posted, reverses_transaction_id, created_at, created_by, last_updated_at, last_updated_by`

const entryLineInsert = `
	INSERT INTO entry_lines (line_id, transaction_id, account_id, debit, credit, description, currency_code, base_amount, created_at, created_by, last_updated_at, last_updated_by)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
`

const balanceUpsert = `
	INSERT INTO balances (account_id, period, debit_total, credit_total, created_at, created_by, last_updated_at, last_updated_by)
	VALUES ($1, $2, $3, $4, $5, $6, $5, $6)
	ON CONFLICT (account_id, period) DO UPDATE
	SET debit_total     = balances.debit_total + EXCLUDED.debit_total,
	    credit_total    = balances.credit_total + EXCLUDED.credit_total,
	    last_updated_at = EXCLUDED.last_updated_at,
	    last_updated_by = EXCLUDED.last_updated_by;
`

func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var m models.Transaction
	err := row.Scan(
		&m.TransactionID,
		&m.JournalID,
		&m.TxDate,
		&m.Memo,
		&m.Posted,
		&m.ReversesTransactionID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// lockAccounts takes row locks on the referenced accounts in a deterministic
// order so concurrent postings touching the same accounts serialize instead
// of deadlocking.
func lockAccounts(ctx context.Context, tx pgx.Tx, accountIDs []string) error {
	ids := make([]string, len(accountIDs))
	copy(ids, accountIDs)
	sort.Strings(ids)

	rows, err := tx.Query(ctx, `SELECT account_id FROM accounts WHERE account_id = ANY($1) ORDER BY account_id FOR UPDATE;`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	locked := 0
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return err
		}
		locked++
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if locked != len(ids) {
		return fmt.Errorf("%w: expected %d accounts, locked %d", apperrors.ErrUnknownOrInactiveAccount, len(ids), locked)
	}
	return nil
}

func insertTransactionRow(ctx context.Context, tx pgx.Tx, m models.Transaction) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := tx.Exec(ctx, query,
		m.TransactionID,
		m.JournalID,
		m.TxDate,
		m.Memo,
		m.Posted,
		m.ReversesTransactionID,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	return err
}

func batchInsertLines(ctx context.Context, tx pgx.Tx, lines []domain.EntryLine) error {
	batch := &pgx.Batch{}
	for _, line := range lines {
		m := mapping.ToModelEntryLine(line)
		batch.Queue(entryLineInsert,
			m.LineID,
			m.TransactionID,
			m.AccountID,
			m.Debit,
			m.Credit,
			m.Description,
			m.CurrencyCode,
			m.BaseAmount,
			m.CreatedAt,
			m.CreatedBy,
			m.LastUpdatedAt,
			m.LastUpdatedBy,
		)
	}
	return tx.SendBatch(ctx, batch).Close()
}

func applyBalanceDeltas(ctx context.Context, tx pgx.Tx, period time.Time, deltas map[string]domain.BalanceDelta, updatedBy string, updatedAt time.Time) error {
	batch := &pgx.Batch{}
	for accountID, delta := range deltas {
		batch.Queue(balanceUpsert, accountID, period, delta.Debit, delta.Credit, updatedAt, updatedBy)
	}
	return tx.SendBatch(ctx, batch).Close()
}

// SavePosted commits a validated transaction in the posted state: the
// transaction row, its lines, the (account, period) balance upserts and the
// optional idempotency key all in one database transaction.
func (r *PgxTransactionRepository) SavePosted(ctx context.Context, txn domain.Transaction, period time.Time, deltas map[string]domain.BalanceDelta, idempotencyKey string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	// Claim the idempotency key first: a unique violation here means another
	// commit already recorded this candidate, and nothing else is written.
	if idempotencyKey != "" {
		_, err := tx.Exec(ctx,
			`INSERT INTO idempotency_keys (key, transaction_id, created_at) VALUES ($1, $2, $3);`,
			idempotencyKey, txn.TransactionID, txn.CreatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: idempotency key already used", apperrors.ErrDuplicate)
			}
			return apperrors.NewAppError(500, "failed to record idempotency key", err)
		}
	}

	accountIDs := make([]string, 0, len(deltas))
	for accountID := range deltas {
		accountIDs = append(accountIDs, accountID)
	}
	if err := lockAccounts(ctx, tx, accountIDs); err != nil {
		return err
	}

	m := mapping.ToModelTransaction(txn)
	if err := insertTransactionRow(ctx, tx, m); err != nil {
		return apperrors.NewAppError(500, "failed to insert transaction "+m.TransactionID, err)
	}
	if err := batchInsertLines(ctx, tx, txn.Lines); err != nil {
		return apperrors.NewAppError(500, "failed to insert entry lines for "+m.TransactionID, err)
	}
	if err := applyBalanceDeltas(ctx, tx, period, deltas, txn.CreatedBy, txn.CreatedAt); err != nil {
		return apperrors.NewAppError(500, "failed to apply balance deltas for "+m.TransactionID, err)
	}

	return r.Commit(ctx, tx)
}

// SaveDraft persists an unposted transaction and its lines. No balance rows
// are touched.
func (r *PgxTransactionRepository) SaveDraft(ctx context.Context, txn domain.Transaction) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelTransaction(txn)
	m.Posted = false
	if err := insertTransactionRow(ctx, tx, m); err != nil {
		return apperrors.NewAppError(500, "failed to insert draft "+m.TransactionID, err)
	}
	if err := batchInsertLines(ctx, tx, txn.Lines); err != nil {
		return apperrors.NewAppError(500, "failed to insert draft lines for "+m.TransactionID, err)
	}

	return r.Commit(ctx, tx)
}

// lockTransactionForUpdate takes a row lock on the transaction and returns
// its posted flag, so posting-state checks hold until commit.
func lockTransactionForUpdate(ctx context.Context, tx pgx.Tx, transactionID string) (bool, error) {
	var posted bool
	err := tx.QueryRow(ctx, `SELECT posted FROM transactions WHERE transaction_id = $1 FOR UPDATE;`, transactionID).Scan(&posted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, apperrors.NewNotFoundError("transaction " + transactionID + " not found")
		}
		return false, apperrors.NewAppError(500, "failed to lock transaction "+transactionID, err)
	}
	return posted, nil
}

// UpdateDraft replaces the header fields and lines of an unposted transaction.
func (r *PgxTransactionRepository) UpdateDraft(ctx context.Context, txn domain.Transaction) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	posted, err := lockTransactionForUpdate(ctx, tx, txn.TransactionID)
	if err != nil {
		return err
	}
	if posted {
		return fmt.Errorf("%w: transaction %s", apperrors.ErrImmutablePostedTransaction, txn.TransactionID)
	}

	m := mapping.ToModelTransaction(txn)
	_, err = tx.Exec(ctx, `
		UPDATE transactions
		SET tx_date = $2, memo = $3, last_updated_at = $4, last_updated_by = $5
		WHERE transaction_id = $1;
	`, m.TransactionID, m.TxDate, m.Memo, m.LastUpdatedAt, m.LastUpdatedBy)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update draft "+m.TransactionID, err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM entry_lines WHERE transaction_id = $1;`, m.TransactionID); err != nil {
		return apperrors.NewAppError(500, "failed to clear draft lines for "+m.TransactionID, err)
	}
	if err := batchInsertLines(ctx, tx, txn.Lines); err != nil {
		return apperrors.NewAppError(500, "failed to insert draft lines for "+m.TransactionID, err)
	}

	return r.Commit(ctx, tx)
}

// DeleteDraft removes an unposted transaction and its lines.
func (r *PgxTransactionRepository) DeleteDraft(ctx context.Context, transactionID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	posted, err := lockTransactionForUpdate(ctx, tx, transactionID)
	if err != nil {
		return err
	}
	if posted {
		return fmt.Errorf("%w: transaction %s", apperrors.ErrImmutablePostedTransaction, transactionID)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM entry_lines WHERE transaction_id = $1;`, transactionID); err != nil {
		return apperrors.NewAppError(500, "failed to delete draft lines for "+transactionID, err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM transactions WHERE transaction_id = $1;`, transactionID); err != nil {
		return apperrors.NewAppError(500, "failed to delete draft "+transactionID, err)
	}

	return r.Commit(ctx, tx)
}

// MarkPosted flips a draft to posted and applies the balance deltas in the
// same database transaction.
func (r *PgxTransactionRepository) MarkPosted(ctx context.Context, transactionID string, period time.Time, deltas map[string]domain.BalanceDelta, updatedBy string, updatedAt time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	posted, err := lockTransactionForUpdate(ctx, tx, transactionID)
	if err != nil {
		return err
	}
	if posted {
		return fmt.Errorf("%w: transaction %s", apperrors.ErrImmutablePostedTransaction, transactionID)
	}

	accountIDs := make([]string, 0, len(deltas))
	for accountID := range deltas {
		accountIDs = append(accountIDs, accountID)
	}
	if err := lockAccounts(ctx, tx, accountIDs); err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		UPDATE transactions
		SET posted = TRUE, last_updated_at = $2, last_updated_by = $3
		WHERE transaction_id = $1;
	`, transactionID, updatedAt, updatedBy)
	if err != nil {
		return apperrors.NewAppError(500, "failed to mark transaction posted "+transactionID, err)
	}

	if err := applyBalanceDeltas(ctx, tx, period, deltas, updatedBy, updatedAt); err != nil {
		return apperrors.NewAppError(500, "failed to apply balance deltas for "+transactionID, err)
	}

	return r.Commit(ctx, tx)
}

// FindTransactionByID retrieves a transaction with its entry lines, account
// codes resolved.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`

	m, err := scanTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("transaction " + transactionID + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to find transaction "+transactionID, err)
	}

	lines, err := r.findLinesByTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	d := mapping.ToDomainTransaction(m)
	d.Lines = lines
	return &d, nil
}

const entryLineSelect = `
	SELECT l.line_id, l.transaction_id, l.account_id, a.code, l.debit, l.credit, l.description, l.currency_code, l.base_amount,
	       l.created_at, l.created_by, l.last_updated_at, l.last_updated_by
	FROM entry_lines l
	JOIN accounts a ON a.account_id = l.account_id
`

func scanEntryLine(rows pgx.Rows) (models.EntryLine, error) {
	var m models.EntryLine
	err := rows.Scan(
		&m.LineID,
		&m.TransactionID,
		&m.AccountID,
		&m.AccountCode,
		&m.Debit,
		&m.Credit,
		&m.Description,
		&m.CurrencyCode,
		&m.BaseAmount,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func (r *PgxTransactionRepository) findLinesByTransaction(ctx context.Context, transactionID string) ([]domain.EntryLine, error) {
	query := entryLineSelect + `WHERE l.transaction_id = $1 ORDER BY l.created_at, l.line_id;`

	rows, err := r.Pool.Query(ctx, query, transactionID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query entry lines for "+transactionID, err)
	}
	defer rows.Close()

	var ms []models.EntryLine
	for rows.Next() {
		m, err := scanEntryLine(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan entry line row", err)
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating entry line rows", err)
	}
	return mapping.ToDomainEntryLineSlice(ms), nil
}

// ListEntryLinesByAccount retrieves posted entry lines for one account,
// newest transaction date first.
func (r *PgxTransactionRepository) ListEntryLinesByAccount(ctx context.Context, accountID string, limit, offset int) ([]domain.EntryLine, error) {
	query := entryLineSelect + `
	JOIN transactions t ON t.transaction_id = l.transaction_id
	WHERE l.account_id = $1 AND t.posted
	ORDER BY t.tx_date DESC, l.created_at DESC, l.line_id
	LIMIT $2 OFFSET $3;`

	rows, err := r.Pool.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query entry lines for account "+accountID, err)
	}
	defer rows.Close()

	var ms []models.EntryLine
	for rows.Next() {
		m, err := scanEntryLine(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan entry line row", err)
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating entry line rows", err)
	}
	return mapping.ToDomainEntryLineSlice(ms), nil
}

// FindTransactionIDByIdempotencyKey returns the transaction previously posted
// under key, or ErrNotFound.
func (r *PgxTransactionRepository) FindTransactionIDByIdempotencyKey(ctx context.Context, key string) (string, error) {
	var transactionID string
	err := r.Pool.QueryRow(ctx, `SELECT transaction_id FROM idempotency_keys WHERE key = $1;`, key).Scan(&transactionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.NewNotFoundError("idempotency key not found")
		}
		return "", apperrors.NewAppError(500, "failed to look up idempotency key", err)
	}
	return transactionID, nil
}
