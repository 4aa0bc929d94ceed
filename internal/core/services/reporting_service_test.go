package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/openbooks-app/openbooks/internal/apperrors"
	"github.com/openbooks-app/openbooks/internal/core/domain"
	portssvc "github.com/openbooks-app/openbooks/internal/core/ports/services"
	"github.com/openbooks-app/openbooks/internal/core/services"
)

type ReportingServiceTestSuite struct {
	suite.Suite
	mockReportingRepo *MockReportingRepository
	service           portssvc.ReportingService
	asOf              time.Time
}

func (suite *ReportingServiceTestSuite) SetupTest() {
	suite.mockReportingRepo = new(MockReportingRepository)
	suite.service = services.NewReportingService(suite.mockReportingRepo)
	suite.asOf = time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC)
}

func balancedRows() []domain.TrialBalanceRow {
	return []domain.TrialBalanceRow{
		{
			AccountID:   uuid.NewString(),
			AccountCode: "1000",
			AccountName: "Cash",
			AccountType: domain.Asset,
			Debit:       decimal.RequireFromString("100.00"),
			Credit:      decimal.Zero,
		},
		{
			AccountID:   uuid.NewString(),
			AccountCode: "4000",
			AccountName: "Sales",
			AccountType: domain.Income,
			Debit:       decimal.Zero,
			Credit:      decimal.RequireFromString("100.00"),
		},
	}
}

func (suite *ReportingServiceTestSuite) TestTrialBalance_Balanced() {
	ctx := context.Background()
	suite.mockReportingRepo.On("GetTrialBalanceData", ctx, suite.asOf).Return(balancedRows(), nil)

	rows, err := suite.service.TrialBalance(ctx, suite.asOf)

	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), rows, 2)
}

func (suite *ReportingServiceTestSuite) TestTrialBalance_UnbalancedTotalsRefuseToAnswer() {
	ctx := context.Background()
	rows := balancedRows()
	rows[1].Credit = decimal.RequireFromString("90.00")
	suite.mockReportingRepo.On("GetTrialBalanceData", ctx, suite.asOf).Return(rows, nil)

	result, err := suite.service.TrialBalance(ctx, suite.asOf)

	assert.Nil(suite.T(), result)
	assert.ErrorIs(suite.T(), err, apperrors.ErrLedgerIntegrity)
	assert.Equal(suite.T(), "LedgerIntegrityViolation", apperrors.RejectionKind(err))
}

func (suite *ReportingServiceTestSuite) TestTrialBalanceFromCache_AgreesWithScan() {
	ctx := context.Background()
	rows := balancedRows()
	suite.mockReportingRepo.On("GetTrialBalanceFromBalances", ctx, suite.asOf).Return(rows, nil)
	suite.mockReportingRepo.On("GetTrialBalanceData", ctx, suite.asOf).Return(rows, nil)

	result, err := suite.service.TrialBalanceFromCache(ctx, suite.asOf)

	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), result, 2)
}

func (suite *ReportingServiceTestSuite) TestTrialBalanceFromCache_DriftedCacheDetected() {
	ctx := context.Background()
	cached := balancedRows()
	scanned := balancedRows()
	// Cache drifted but still internally balanced: both sides of one account
	// inflated equally.
	cached[0].Debit = decimal.RequireFromString("110.00")
	cached[1].Credit = decimal.RequireFromString("110.00")
	suite.mockReportingRepo.On("GetTrialBalanceFromBalances", ctx, suite.asOf).Return(cached, nil)
	suite.mockReportingRepo.On("GetTrialBalanceData", ctx, suite.asOf).Return(scanned, nil)

	result, err := suite.service.TrialBalanceFromCache(ctx, suite.asOf)

	assert.Nil(suite.T(), result)
	assert.ErrorIs(suite.T(), err, apperrors.ErrLedgerIntegrity)
}

func (suite *ReportingServiceTestSuite) TestTrialBalancePeriod_BadRange() {
	ctx := context.Background()
	from := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	rows, err := suite.service.TrialBalancePeriod(ctx, from, to)

	assert.Nil(suite.T(), rows)
	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
}

func (suite *ReportingServiceTestSuite) TestIncomeStatement_Totals() {
	ctx := context.Background()
	from := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC)

	// Raw debit-credit nets: income accounts run credit-heavy, expenses
	// debit-heavy.
	amounts := []domain.AccountAmount{
		{AccountCode: "4000", Name: "Sales", AccountType: domain.Income, NetAmount: decimal.RequireFromString("-500.00")},
		{AccountCode: "5000", Name: "Office Supplies", AccountType: domain.Expense, NetAmount: decimal.RequireFromString("120.00")},
		{AccountCode: "5100", Name: "Payroll", AccountType: domain.Expense, NetAmount: decimal.RequireFromString("200.00")},
	}
	suite.mockReportingRepo.On("GetIncomeStatementData", ctx, from, to).Return(amounts, nil)

	report, err := suite.service.IncomeStatement(ctx, from, to)

	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), report.Income, 1)
	assert.Len(suite.T(), report.Expenses, 2)
	assert.True(suite.T(), report.Income[0].NetAmount.Equal(decimal.RequireFromString("500.00")))
	assert.True(suite.T(), report.TotalIncome.Equal(decimal.RequireFromString("500.00")))
	assert.True(suite.T(), report.TotalExpense.Equal(decimal.RequireFromString("320.00")))
	assert.True(suite.T(), report.Net.Equal(decimal.RequireFromString("180.00")))
}

func (suite *ReportingServiceTestSuite) TestBalanceSheet_IdentityHolds() {
	ctx := context.Background()
	amounts := []domain.AccountAmount{
		{AccountCode: "1000", Name: "Cash", AccountType: domain.Asset, NetAmount: decimal.RequireFromString("600.00")},
		{AccountCode: "2000", Name: "Accounts Payable", AccountType: domain.Liability, NetAmount: decimal.RequireFromString("-100.00")},
		{AccountCode: "3000", Name: "Capital", AccountType: domain.Equity, NetAmount: decimal.RequireFromString("-320.00")},
	}
	retained := decimal.RequireFromString("180.00")
	suite.mockReportingRepo.On("GetBalanceSheetData", ctx, suite.asOf).Return(amounts, retained, nil)

	report, err := suite.service.BalanceSheet(ctx, suite.asOf)

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), report.TotalAssets.Equal(decimal.RequireFromString("600.00")))
	assert.True(suite.T(), report.TotalLiabilities.Equal(decimal.RequireFromString("100.00")))
	assert.True(suite.T(), report.TotalEquity.Equal(decimal.RequireFromString("500.00")))
	assert.True(suite.T(), report.RetainedEarnings.Equal(retained))
}

func (suite *ReportingServiceTestSuite) TestBalanceSheet_ContraAccountsReduceTheirSection() {
	ctx := context.Background()
	// Equipment bought with capital, then 30.00 of depreciation recorded
	// against an accumulated depreciation contra asset.
	amounts := []domain.AccountAmount{
		{AccountCode: "1500", Name: "Equipment", AccountType: domain.Asset, NetAmount: decimal.RequireFromString("100.00")},
		{AccountCode: "1590", Name: "Accumulated Depreciation", AccountType: domain.ContraAsset, NetAmount: decimal.RequireFromString("-30.00")},
		{AccountCode: "3000", Name: "Capital", AccountType: domain.Equity, NetAmount: decimal.RequireFromString("-100.00")},
	}
	retained := decimal.RequireFromString("-30.00")
	suite.mockReportingRepo.On("GetBalanceSheetData", ctx, suite.asOf).Return(amounts, retained, nil)

	report, err := suite.service.BalanceSheet(ctx, suite.asOf)

	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), report.Assets, 2)
	assert.True(suite.T(), report.Assets[1].NetAmount.Equal(decimal.RequireFromString("-30.00")),
		"contra asset must appear negative within the assets section")
	assert.True(suite.T(), report.TotalAssets.Equal(decimal.RequireFromString("70.00")))
	assert.True(suite.T(), report.TotalLiabilities.IsZero())
	assert.True(suite.T(), report.TotalEquity.Equal(decimal.RequireFromString("70.00")))
}

func (suite *ReportingServiceTestSuite) TestBalanceSheet_ContraLiabilityReducesLiabilities() {
	ctx := context.Background()
	amounts := []domain.AccountAmount{
		{AccountCode: "1100", Name: "Bank", AccountType: domain.Asset, NetAmount: decimal.RequireFromString("90.00")},
		{AccountCode: "2500", Name: "Notes Payable", AccountType: domain.Liability, NetAmount: decimal.RequireFromString("-100.00")},
		{AccountCode: "2590", Name: "Discount on Notes Payable", AccountType: domain.ContraLiability, NetAmount: decimal.RequireFromString("10.00")},
	}
	suite.mockReportingRepo.On("GetBalanceSheetData", ctx, suite.asOf).Return(amounts, decimal.Zero, nil)

	report, err := suite.service.BalanceSheet(ctx, suite.asOf)

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), report.TotalLiabilities.Equal(decimal.RequireFromString("90.00")))
	assert.True(suite.T(), report.TotalAssets.Equal(decimal.RequireFromString("90.00")))
}

func (suite *ReportingServiceTestSuite) TestBalanceSheet_IdentityViolationDetected() {
	ctx := context.Background()
	amounts := []domain.AccountAmount{
		{AccountCode: "1000", Name: "Cash", AccountType: domain.Asset, NetAmount: decimal.RequireFromString("600.00")},
		{AccountCode: "2000", Name: "Accounts Payable", AccountType: domain.Liability, NetAmount: decimal.RequireFromString("-100.00")},
		{AccountCode: "3000", Name: "Capital", AccountType: domain.Equity, NetAmount: decimal.RequireFromString("-300.00")},
	}
	suite.mockReportingRepo.On("GetBalanceSheetData", ctx, suite.asOf).Return(amounts, decimal.Zero, nil)

	report, err := suite.service.BalanceSheet(ctx, suite.asOf)

	assert.Nil(suite.T(), report)
	assert.ErrorIs(suite.T(), err, apperrors.ErrLedgerIntegrity)
}

func TestReportingService(t *testing.T) {
	suite.Run(t, new(ReportingServiceTestSuite))
}
