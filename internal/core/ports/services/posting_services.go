package services

import (
	"context"

	"github.com/openbooks-app/openbooks/internal/core/domain"
	"github.com/openbooks-app/openbooks/internal/dto"
)

// PostingService is the posting pipeline: it turns candidate transactions into
// durably posted, immutable ledger entries, exactly once per candidate.
type PostingService interface {
	// Post validates a candidate and commits it directly in the posted state.
	// On any rejection nothing is persisted. When the candidate carries an
	// idempotency key a repeated Post returns the originally posted transaction.
	Post(ctx context.Context, req dto.CreateTransactionRequest, creatorID string) (*domain.Transaction, error)

	// CreateDraft validates a candidate and stores it unposted. Drafts touch
	// no balances and may be edited or deleted.
	CreateDraft(ctx context.Context, req dto.CreateTransactionRequest, creatorID string) (*domain.Transaction, error)

	// PostDraft flips an existing draft to posted, applying balances atomically.
	PostDraft(ctx context.Context, transactionID string, updaterID string) (*domain.Transaction, error)

	// UpdateDraft edits an unposted transaction. A posted transaction returns
	// ErrImmutablePostedTransaction with stored data untouched.
	UpdateDraft(ctx context.Context, transactionID string, req dto.UpdateTransactionRequest, updaterID string) (*domain.Transaction, error)

	// AddDraftLine appends a line to an unposted transaction; posted
	// transactions are immutable.
	AddDraftLine(ctx context.Context, transactionID string, req dto.AddLineRequest, updaterID string) (*domain.Transaction, error)

	// DeleteDraft removes an unposted transaction and its lines.
	DeleteDraft(ctx context.Context, transactionID string, updaterID string) error

	// Reverse posts a new transaction offsetting a posted one, linked through
	// reversesTransactionID. Reversing a reversal or a draft is rejected.
	Reverse(ctx context.Context, transactionID string, updaterID string) (*domain.Transaction, error)

	// GetTransaction retrieves a transaction with its lines.
	GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListAccountEntries retrieves posted entry lines for one account code.
	ListAccountEntries(ctx context.Context, accountCode string, limit, offset int) ([]domain.EntryLine, error)
}
