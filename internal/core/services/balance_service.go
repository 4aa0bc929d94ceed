package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/openbooks-app/openbooks/internal/core/domain"
	portsrepo "github.com/openbooks-app/openbooks/internal/core/ports/repositories"
	portssvc "github.com/openbooks-app/openbooks/internal/core/ports/services"
	"github.com/openbooks-app/openbooks/internal/utils/accounting"
)

// balanceService exposes the cached monthly aggregates and their repair path.
// The incremental maintenance happens inside the posting repository's storage
// transaction; this service only reads and rebuilds.
type balanceService struct {
	BaseService
	balanceRepo portsrepo.BalanceRepository
	accountSvc  portssvc.AccountService
}

// NewBalanceService creates a new BalanceService.
func NewBalanceService(balanceRepo portsrepo.BalanceRepository, accountSvc portssvc.AccountService) portssvc.BalanceService {
	return &balanceService{balanceRepo: balanceRepo, accountSvc: accountSvc}
}

var _ portssvc.BalanceService = (*balanceService)(nil)

func (s *balanceService) ListAccountBalances(ctx context.Context, accountCode string) ([]domain.Balance, error) {
	account, err := s.accountSvc.GetAccountByCode(ctx, accountCode)
	if err != nil {
		return nil, err
	}
	balances, err := s.balanceRepo.ListBalancesByAccount(ctx, account.AccountID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list balances", slog.String("account_code", accountCode))
		return nil, err
	}
	return balances, nil
}

func (s *balanceService) Rebuild(ctx context.Context, accountCode string, period time.Time, updaterID string) (*domain.Balance, error) {
	account, err := s.accountSvc.GetAccountByCode(ctx, accountCode)
	if err != nil {
		return nil, err
	}

	normalized := accounting.PeriodOf(period)
	balance, err := s.balanceRepo.RebuildBalance(ctx, account.AccountID, normalized)
	if err != nil {
		s.LogError(ctx, err, "Failed to rebuild balance",
			slog.String("account_code", accountCode),
			slog.String("period", normalized.Format("2006-01")))
		return nil, err
	}

	s.LogInfo(ctx, "Balance rebuilt from entry history",
		slog.String("account_code", accountCode),
		slog.String("period", normalized.Format("2006-01")),
		slog.String("rebuilt_by", updaterID))
	return balance, nil
}

func (s *balanceService) RebuildAll(ctx context.Context, updaterID string) (int, error) {
	count, err := s.balanceRepo.RebuildAll(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to rebuild all balances")
		return 0, err
	}
	s.LogInfo(ctx, "All balances rebuilt from entry history",
		slog.Int("rows", count),
		slog.String("rebuilt_by", updaterID))
	return count, nil
}
