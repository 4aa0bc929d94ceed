package repositories

import (
	"context"
	"time"

	"github.com/openbooks-app/openbooks/internal/core/domain"
)

// BalanceRepository defines operations on the cached per-month balance rows.
// The incremental write path lives inside the posting repository so that it
// shares the posting's storage transaction; this interface covers reads and
// the reconciliation/repair path.
type BalanceRepository interface {
	// Increment upserts the (account, period) row, adding the deltas to the
	// running totals. Outside the posting pipeline this exists for repair
	// tooling only.
	Increment(ctx context.Context, accountID string, period time.Time, delta domain.BalanceDelta, updatedBy string) error

	// FindBalance retrieves one (account, period) row, or ErrNotFound.
	FindBalance(ctx context.Context, accountID string, period time.Time) (*domain.Balance, error)

	// ListBalancesByAccount retrieves all cached periods for an account in
	// period order.
	ListBalancesByAccount(ctx context.Context, accountID string) ([]domain.Balance, error)

	// RebuildBalance recomputes the (account, period) totals from the posted
	// entry line history and overwrites the cached row, returning the rebuilt
	// value. The result must equal what the incremental path maintained.
	RebuildBalance(ctx context.Context, accountID string, period time.Time) (*domain.Balance, error)

	// RebuildAll recomputes every cached row from history and returns the
	// number of rows written.
	RebuildAll(ctx context.Context) (int, error)
}
