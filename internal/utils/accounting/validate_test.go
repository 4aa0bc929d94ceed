package accounting_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/openbooks-app/openbooks/internal/apperrors"
	"github.com/openbooks-app/openbooks/internal/core/domain"
	"github.com/openbooks-app/openbooks/internal/utils/accounting"
)

func newTestAccount(code string, accountType domain.AccountType, active bool) domain.Account {
	return domain.Account{
		AccountID:   uuid.NewString(),
		Code:        code,
		Name:        code,
		AccountType: accountType,
		NormalDebit: accountType.NormalDebit(),
		IsActive:    active,
	}
}

func debitLine(accountID string, amount string) domain.EntryLine {
	return domain.EntryLine{
		LineID:    uuid.NewString(),
		AccountID: accountID,
		Debit:     decimal.RequireFromString(amount),
		Credit:    decimal.Zero,
	}
}

func creditLine(accountID string, amount string) domain.EntryLine {
	return domain.EntryLine{
		LineID:    uuid.NewString(),
		AccountID: accountID,
		Debit:     decimal.Zero,
		Credit:    decimal.RequireFromString(amount),
	}
}

func TestValidateCandidate_BalancedPair(t *testing.T) {
	cash := newTestAccount("1000", domain.Asset, true)
	sales := newTestAccount("4000", domain.Income, true)
	accounts := map[string]domain.Account{cash.AccountID: cash, sales.AccountID: sales}

	lines := []domain.EntryLine{
		debitLine(cash.AccountID, "100.00"),
		creditLine(sales.AccountID, "100.00"),
	}

	assert.NoError(t, accounting.ValidateCandidate(lines, accounts))
}

func TestValidateCandidate_Unbalanced(t *testing.T) {
	cash := newTestAccount("1000", domain.Asset, true)
	sales := newTestAccount("4000", domain.Income, true)
	accounts := map[string]domain.Account{cash.AccountID: cash, sales.AccountID: sales}

	lines := []domain.EntryLine{
		debitLine(cash.AccountID, "50.00"),
		creditLine(sales.AccountID, "40.00"),
	}

	err := accounting.ValidateCandidate(lines, accounts)
	assert.ErrorIs(t, err, apperrors.ErrUnbalancedTransaction)
	assert.Equal(t, "UnbalancedTransaction", apperrors.RejectionKind(err))
}

func TestValidateCandidate_SingleLine(t *testing.T) {
	cash := newTestAccount("1000", domain.Asset, true)
	accounts := map[string]domain.Account{cash.AccountID: cash}

	err := accounting.ValidateCandidate([]domain.EntryLine{debitLine(cash.AccountID, "10.00")}, accounts)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientLines)
}

func TestValidateCandidate_UnknownAccount(t *testing.T) {
	cash := newTestAccount("1000", domain.Asset, true)
	accounts := map[string]domain.Account{cash.AccountID: cash}

	lines := []domain.EntryLine{
		debitLine(cash.AccountID, "10.00"),
		creditLine(uuid.NewString(), "10.00"),
	}

	err := accounting.ValidateCandidate(lines, accounts)
	assert.ErrorIs(t, err, apperrors.ErrUnknownOrInactiveAccount)
}

func TestValidateCandidate_InactiveAccount(t *testing.T) {
	cash := newTestAccount("1000", domain.Asset, true)
	closed := newTestAccount("4000", domain.Income, false)
	accounts := map[string]domain.Account{cash.AccountID: cash, closed.AccountID: closed}

	lines := []domain.EntryLine{
		debitLine(cash.AccountID, "10.00"),
		creditLine(closed.AccountID, "10.00"),
	}

	err := accounting.ValidateCandidate(lines, accounts)
	assert.ErrorIs(t, err, apperrors.ErrUnknownOrInactiveAccount)
}

func TestValidateLineAmount(t *testing.T) {
	tests := []struct {
		name    string
		debit   string
		credit  string
		wantErr bool
	}{
		{"debit only", "25.50", "0", false},
		{"credit only", "0", "25.50", false},
		{"both zero", "0", "0", true},
		{"both set", "10.00", "10.00", true},
		{"negative debit", "-5.00", "0", true},
		{"three decimal places", "10.005", "0", true},
		{"two decimal places exact", "10.05", "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := domain.EntryLine{
				Debit:  decimal.RequireFromString(tt.debit),
				Credit: decimal.RequireFromString(tt.credit),
			}
			err := accounting.ValidateLineAmount(line, 0)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrInvalidLineAmount)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateCandidate_RejectionOrder(t *testing.T) {
	// A candidate that is both under-count and unbalanced reports the line
	// count first.
	cash := newTestAccount("1000", domain.Asset, true)
	accounts := map[string]domain.Account{cash.AccountID: cash}

	err := accounting.ValidateCandidate([]domain.EntryLine{}, accounts)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientLines)
}
