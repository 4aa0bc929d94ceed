package services_test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/openbooks-app/openbooks/internal/core/domain"
	portsrepo "github.com/openbooks-app/openbooks/internal/core/ports/repositories"
	portssvc "github.com/openbooks-app/openbooks/internal/core/ports/services"
	"github.com/openbooks-app/openbooks/internal/dto"
)

// --- Mock TransactionRepository ---

type MockTransactionRepository struct {
	mock.Mock
}

var _ portsrepo.TransactionRepository = (*MockTransactionRepository)(nil)

func (m *MockTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListEntryLinesByAccount(ctx context.Context, accountID string, limit, offset int) ([]domain.EntryLine, error) {
	args := m.Called(ctx, accountID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.EntryLine), args.Error(1)
}

func (m *MockTransactionRepository) FindTransactionIDByIdempotencyKey(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockTransactionRepository) SavePosted(ctx context.Context, txn domain.Transaction, period time.Time, deltas map[string]domain.BalanceDelta, idempotencyKey string) error {
	args := m.Called(ctx, txn, period, deltas, idempotencyKey)
	return args.Error(0)
}

func (m *MockTransactionRepository) SaveDraft(ctx context.Context, txn domain.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) UpdateDraft(ctx context.Context, txn domain.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) DeleteDraft(ctx context.Context, transactionID string) error {
	args := m.Called(ctx, transactionID)
	return args.Error(0)
}

func (m *MockTransactionRepository) MarkPosted(ctx context.Context, transactionID string, period time.Time, deltas map[string]domain.BalanceDelta, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, transactionID, period, deltas, updatedBy, updatedAt)
	return args.Error(0)
}

// --- Mock AccountService ---

type MockAccountService struct {
	mock.Mock
}

var _ portssvc.AccountService = (*MockAccountService)(nil)

func (m *MockAccountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorID string) (*domain.Account, error) {
	args := m.Called(ctx, req, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountService) UpdateAccount(ctx context.Context, code string, req dto.UpdateAccountRequest, updaterID string) (*domain.Account, error) {
	args := m.Called(ctx, code, req, updaterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) DeactivateAccount(ctx context.Context, code string, updaterID string) error {
	args := m.Called(ctx, code, updaterID)
	return args.Error(0)
}

// --- Mock JournalService ---

type MockJournalService struct {
	mock.Mock
}

var _ portssvc.JournalService = (*MockJournalService)(nil)

func (m *MockJournalService) CreateJournal(ctx context.Context, req dto.CreateJournalRequest, creatorID string) (*domain.Journal, error) {
	args := m.Called(ctx, req, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Journal), args.Error(1)
}

func (m *MockJournalService) GetJournalByName(ctx context.Context, name string) (*domain.Journal, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Journal), args.Error(1)
}

func (m *MockJournalService) ListJournals(ctx context.Context) ([]domain.Journal, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Journal), args.Error(1)
}

// --- Mock BalanceRepository ---

type MockBalanceRepository struct {
	mock.Mock
}

var _ portsrepo.BalanceRepository = (*MockBalanceRepository)(nil)

func (m *MockBalanceRepository) Increment(ctx context.Context, accountID string, period time.Time, delta domain.BalanceDelta, updatedBy string) error {
	args := m.Called(ctx, accountID, period, delta, updatedBy)
	return args.Error(0)
}

func (m *MockBalanceRepository) FindBalance(ctx context.Context, accountID string, period time.Time) (*domain.Balance, error) {
	args := m.Called(ctx, accountID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Balance), args.Error(1)
}

func (m *MockBalanceRepository) ListBalancesByAccount(ctx context.Context, accountID string) ([]domain.Balance, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Balance), args.Error(1)
}

func (m *MockBalanceRepository) RebuildBalance(ctx context.Context, accountID string, period time.Time) (*domain.Balance, error) {
	args := m.Called(ctx, accountID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Balance), args.Error(1)
}

func (m *MockBalanceRepository) RebuildAll(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// --- Mock ReportingRepository ---

type MockReportingRepository struct {
	mock.Mock
}

var _ portsrepo.ReportingRepository = (*MockReportingRepository)(nil)

func (m *MockReportingRepository) GetTrialBalanceData(ctx context.Context, asOf time.Time) ([]domain.TrialBalanceRow, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TrialBalanceRow), args.Error(1)
}

func (m *MockReportingRepository) GetTrialBalancePeriodData(ctx context.Context, from, to time.Time) ([]domain.TrialBalanceRow, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TrialBalanceRow), args.Error(1)
}

func (m *MockReportingRepository) GetTrialBalanceFromBalances(ctx context.Context, asOf time.Time) ([]domain.TrialBalanceRow, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TrialBalanceRow), args.Error(1)
}

func (m *MockReportingRepository) GetIncomeStatementData(ctx context.Context, from, to time.Time) ([]domain.AccountAmount, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountAmount), args.Error(1)
}

func (m *MockReportingRepository) GetBalanceSheetData(ctx context.Context, asOf time.Time) ([]domain.AccountAmount, decimal.Decimal, error) {
	args := m.Called(ctx, asOf)
	var amounts []domain.AccountAmount
	if args.Get(0) != nil {
		amounts = args.Get(0).([]domain.AccountAmount)
	}
	return amounts, args.Get(1).(decimal.Decimal), args.Error(2)
}
