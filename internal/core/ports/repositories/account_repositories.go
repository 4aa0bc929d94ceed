package repositories

import (
	"context"

	"github.com/openbooks-app/openbooks/internal/core/domain"
)

// AccountReader defines read operations for chart-of-accounts data
type AccountReader interface {
	// FindAccountByID retrieves an account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountByCode retrieves an account by its unique chart code.
	FindAccountByCode(ctx context.Context, code string) (*domain.Account, error)

	// FindAccountsByCodes retrieves multiple accounts keyed by code. Codes with
	// no matching account are simply absent from the result.
	FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error)

	// ListAccounts retrieves the full chart of accounts ordered by code.
	ListAccounts(ctx context.Context) ([]domain.Account, error)
}

// AccountWriter defines write operations for chart-of-accounts data
type AccountWriter interface {
	// SaveAccount inserts a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount updates mutable account fields (name, description, active flag).
	// The code and type are immutable once the account is referenced.
	UpdateAccount(ctx context.Context, account domain.Account) error
}

// AccountRepository combines all account repository interfaces
type AccountRepository interface {
	AccountReader
	AccountWriter
}
