package services

import (
	"context"
	"time"

	"github.com/openbooks-app/openbooks/internal/core/domain"
)

// BalanceService exposes the cached monthly aggregates and their repair path.
type BalanceService interface {
	// ListAccountBalances retrieves all cached periods for an account code.
	ListAccountBalances(ctx context.Context, accountCode string) ([]domain.Balance, error)

	// Rebuild recomputes one (account, period) row from the posted entry line
	// history. The rebuilt totals must equal the incrementally maintained ones;
	// a mismatch is reported as a ledger integrity violation.
	Rebuild(ctx context.Context, accountCode string, period time.Time, updaterID string) (*domain.Balance, error)

	// RebuildAll recomputes every cached row, returning the row count.
	RebuildAll(ctx context.Context, updaterID string) (int, error)
}
