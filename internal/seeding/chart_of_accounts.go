// Package seeding installs the starter chart of accounts and the default
// journal into an empty ledger. Seeding is idempotent: existing codes are
// left untouched.
package seeding

import (
	"context"
	"errors"
	"log/slog"

	"github.com/openbooks-app/openbooks/internal/apperrors"
	"github.com/openbooks-app/openbooks/internal/core/domain"
	portssvc "github.com/openbooks-app/openbooks/internal/core/ports/services"
	"github.com/openbooks-app/openbooks/internal/dto"
)

// DefaultJournalName is the journal transactions land in unless a producer
// names another.
const DefaultJournalName = "GENERAL"

type seedAccount struct {
	Code        string
	Name        string
	AccountType domain.AccountType
}

// basicChart is a small general-purpose chart of accounts suitable for
// personal or small-business bookkeeping.
var basicChart = []seedAccount{
	{"1000", "Cash", domain.Asset},
	{"1100", "Bank", domain.Asset},
	{"1200", "Debtors", domain.Asset},
	{"1500", "Furniture", domain.Asset},
	{"2000", "Accounts Payable", domain.Liability},
	{"2100", "Credit Card", domain.Liability},
	{"3000", "Capital", domain.Equity},
	{"4000", "Sales", domain.Income},
	{"5000", "Office Supplies", domain.Expense},
	{"5100", "Payroll", domain.Expense},
	{"5200", "Food", domain.Expense},
	{"5300", "Depreciation", domain.Expense},
}

// SeedChartOfAccounts creates the basic chart of accounts and the default
// journal, skipping anything already present.
func SeedChartOfAccounts(ctx context.Context, logger *slog.Logger, accountSvc portssvc.AccountService, journalSvc portssvc.JournalService, seederID string) error {
	if _, err := journalSvc.GetJournalByName(ctx, DefaultJournalName); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		if _, err := journalSvc.CreateJournal(ctx, dto.CreateJournalRequest{
			Name:        DefaultJournalName,
			Description: "Default journal",
		}, seederID); err != nil && !errors.Is(err, apperrors.ErrDuplicate) {
			return err
		}
		logger.Info("Seeded default journal", slog.String("name", DefaultJournalName))
	}

	for _, seed := range basicChart {
		if _, err := accountSvc.GetAccountByCode(ctx, seed.Code); err == nil {
			continue
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}

		if _, err := accountSvc.CreateAccount(ctx, dto.CreateAccountRequest{
			Code:        seed.Code,
			Name:        seed.Name,
			AccountType: seed.AccountType,
		}, seederID); err != nil && !errors.Is(err, apperrors.ErrDuplicate) {
			return err
		}
		logger.Info("Seeded account", slog.String("code", seed.Code), slog.String("name", seed.Name))
	}
	return nil
}
