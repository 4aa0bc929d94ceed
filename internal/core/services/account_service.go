package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/openbooks-app/openbooks/internal/apperrors"
	"github.com/openbooks-app/openbooks/internal/core/domain"
	portsrepo "github.com/openbooks-app/openbooks/internal/core/ports/repositories"
	portssvc "github.com/openbooks-app/openbooks/internal/core/ports/services"
	"github.com/openbooks-app/openbooks/internal/dto"
)

// accountService manages the chart of accounts.
type accountService struct {
	BaseService
	accountRepo portsrepo.AccountRepository
}

// NewAccountService creates a new AccountService.
func NewAccountService(accountRepo portsrepo.AccountRepository) portssvc.AccountService {
	return &accountService{accountRepo: accountRepo}
}

var _ portssvc.AccountService = (*accountService)(nil)

func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorID string) (*domain.Account, error) {
	if !req.AccountType.IsValid() {
		return nil, fmt.Errorf("%w: unknown account type %q", apperrors.ErrValidation, req.AccountType)
	}

	code := strings.TrimSpace(req.Code)
	if code == "" {
		return nil, fmt.Errorf("%w: account code is required", apperrors.ErrValidation)
	}

	if existing, err := s.accountRepo.FindAccountByCode(ctx, code); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: account code %s", apperrors.ErrDuplicate, code)
	} else if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to check account code uniqueness", slog.String("code", code))
		return nil, err
	}

	// Default the normal-balance side from the account type when the caller
	// does not specify one.
	normalDebit := req.AccountType.NormalDebit()
	if req.NormalDebit != nil {
		normalDebit = *req.NormalDebit
	}

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:   uuid.NewString(),
		Code:        code,
		Name:        req.Name,
		AccountType: req.AccountType,
		NormalDebit: normalDebit,
		Description: req.Description,
		IsActive:    true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		s.LogError(ctx, err, "Failed to save account", slog.String("code", code))
		return nil, err
	}

	s.LogInfo(ctx, "Account created", slog.String("account_id", account.AccountID), slog.String("code", code))
	return &account, nil
}

func (s *accountService) GetAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account by code", slog.String("code", code))
		}
		return nil, err
	}
	return account, nil
}

func (s *accountService) GetAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error) {
	accounts, err := s.accountRepo.FindAccountsByCodes(ctx, codes)
	if err != nil {
		s.LogError(ctx, err, "Failed to find accounts by codes")
		return nil, err
	}
	return accounts, nil
}

func (s *accountService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts")
		return nil, err
	}
	return accounts, nil
}

func (s *accountService) UpdateAccount(ctx context.Context, code string, req dto.UpdateAccountRequest, updaterID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		account.Name = *req.Name
	}
	if req.Description != nil {
		account.Description = *req.Description
	}
	if req.IsActive != nil {
		account.IsActive = *req.IsActive
	}
	account.LastUpdatedAt = time.Now().UTC()
	account.LastUpdatedBy = updaterID

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		s.LogError(ctx, err, "Failed to update account", slog.String("code", code))
		return nil, err
	}

	return account, nil
}

func (s *accountService) DeactivateAccount(ctx context.Context, code string, updaterID string) error {
	inactive := false
	_, err := s.UpdateAccount(ctx, code, dto.UpdateAccountRequest{IsActive: &inactive}, updaterID)
	if err != nil {
		return err
	}
	s.LogInfo(ctx, "Account deactivated", slog.String("code", code))
	return nil
}
