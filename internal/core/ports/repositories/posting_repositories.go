package repositories

import (
	"context"
	"time"

	"github.com/openbooks-app/openbooks/internal/core/domain"
)

// TransactionReader defines read operations for transaction and entry line data
type TransactionReader interface {
	// FindTransactionByID retrieves a transaction with its entry lines.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListEntryLinesByAccount retrieves posted entry lines for one account,
	// newest transaction date first.
	ListEntryLinesByAccount(ctx context.Context, accountID string, limit, offset int) ([]domain.EntryLine, error)

	// FindTransactionIDByIdempotencyKey returns the transaction previously
	// posted under the caller-supplied key, or ErrNotFound.
	FindTransactionIDByIdempotencyKey(ctx context.Context, key string) (string, error)
}

// TransactionWriter defines the mutating posting operations. Every method that
// makes a posting durable runs as a single storage transaction: the
// transaction row, its entry lines, the period balance upserts and the
// optional idempotency key all become visible together or not at all.
type TransactionWriter interface {
	// SavePosted persists a validated transaction directly in the posted state,
	// upserting the (account, period) balance rows for deltas. idempotencyKey
	// may be empty; a duplicate key surfaces as ErrDuplicate with nothing written.
	SavePosted(ctx context.Context, txn domain.Transaction, period time.Time, deltas map[string]domain.BalanceDelta, idempotencyKey string) error

	// SaveDraft persists an unposted transaction with its lines. Drafts touch
	// no balance rows.
	SaveDraft(ctx context.Context, txn domain.Transaction) error

	// UpdateDraft replaces the header fields and lines of an unposted
	// transaction. Posting state is checked in-transaction; a posted row
	// surfaces as ErrImmutablePostedTransaction.
	UpdateDraft(ctx context.Context, txn domain.Transaction) error

	// DeleteDraft removes an unposted transaction and its lines.
	DeleteDraft(ctx context.Context, transactionID string) error

	// MarkPosted flips an existing draft to posted and applies the balance
	// deltas in the same storage transaction.
	MarkPosted(ctx context.Context, transactionID string, period time.Time, deltas map[string]domain.BalanceDelta, updatedBy string, updatedAt time.Time) error
}

// TransactionRepository combines all posting repository interfaces
type TransactionRepository interface {
	TransactionReader
	TransactionWriter
}
