package services

import (
	"context"

	"github.com/openbooks-app/openbooks/internal/core/domain"
	"github.com/openbooks-app/openbooks/internal/dto"
)

// AccountService exposes chart-of-accounts operations.
type AccountService interface {
	// CreateAccount creates a new ledger account.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorID string) (*domain.Account, error)

	// GetAccountByCode retrieves an account by chart code.
	GetAccountByCode(ctx context.Context, code string) (*domain.Account, error)

	// GetAccountsByCodes retrieves multiple accounts keyed by code.
	GetAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error)

	// ListAccounts retrieves the full chart of accounts.
	ListAccounts(ctx context.Context) ([]domain.Account, error)

	// UpdateAccount updates the mutable fields of an account.
	UpdateAccount(ctx context.Context, code string, req dto.UpdateAccountRequest, updaterID string) (*domain.Account, error)

	// DeactivateAccount soft-disables an account. Accounts referenced by posted
	// lines are never hard-deleted.
	DeactivateAccount(ctx context.Context, code string, updaterID string) error
}
