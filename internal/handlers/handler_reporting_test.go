package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/openbooks-app/openbooks/internal/core/domain"
	portssvc "github.com/openbooks-app/openbooks/internal/core/ports/services"
	"github.com/openbooks-app/openbooks/internal/handlers"
	"github.com/openbooks-app/openbooks/pkg/config"
)

// --- Mock ReportingService ---

type MockReportingService struct {
	mock.Mock
}

var _ portssvc.ReportingService = (*MockReportingService)(nil)

func (m *MockReportingService) TrialBalance(ctx context.Context, asOf time.Time) ([]domain.TrialBalanceRow, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TrialBalanceRow), args.Error(1)
}

func (m *MockReportingService) TrialBalancePeriod(ctx context.Context, from, to time.Time) ([]domain.TrialBalanceRow, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TrialBalanceRow), args.Error(1)
}

func (m *MockReportingService) TrialBalanceFromCache(ctx context.Context, asOf time.Time) ([]domain.TrialBalanceRow, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TrialBalanceRow), args.Error(1)
}

func (m *MockReportingService) IncomeStatement(ctx context.Context, from, to time.Time) (*domain.IncomeStatementReport, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IncomeStatementReport), args.Error(1)
}

func (m *MockReportingService) BalanceSheet(ctx context.Context, asOf time.Time) (*domain.BalanceSheetReport, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BalanceSheetReport), args.Error(1)
}

// --- Suite ---

type ReportingHandlerTestSuite struct {
	suite.Suite
	router           *gin.Engine
	mockReportingSvc *MockReportingService
}

func (suite *ReportingHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.mockReportingSvc = new(MockReportingService)

	services := &portssvc.ServiceContainer{Reporting: suite.mockReportingSvc}
	suite.router = gin.New()
	handlers.RegisterRoutes(suite.router, &config.Config{}, services)
}

func (suite *ReportingHandlerTestSuite) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func emptyBalanceSheet() *domain.BalanceSheetReport {
	return &domain.BalanceSheetReport{
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
		TotalEquity:      decimal.Zero,
	}
}

func (suite *ReportingHandlerTestSuite) TestBalanceSheet_AsOfQueryParam() {
	want := time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC)
	suite.mockReportingSvc.On("BalanceSheet", mock.Anything, want).Return(emptyBalanceSheet(), nil)

	w := suite.get("/api/v1/reports/balance-sheet?as_of=2025-08-31")

	suite.Equal(http.StatusOK, w.Code)
	suite.mockReportingSvc.AssertExpectations(suite.T())
}

func (suite *ReportingHandlerTestSuite) TestBalanceSheet_AsOfAliasAccepted() {
	want := time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC)
	suite.mockReportingSvc.On("BalanceSheet", mock.Anything, want).Return(emptyBalanceSheet(), nil)

	w := suite.get("/api/v1/reports/balance-sheet?asOf=2025-08-31")

	suite.Equal(http.StatusOK, w.Code)
	suite.mockReportingSvc.AssertExpectations(suite.T())
}

func (suite *ReportingHandlerTestSuite) TestBalanceSheet_MalformedAsOfRejected() {
	w := suite.get("/api/v1/reports/balance-sheet?as_of=31-08-2025")

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockReportingSvc.AssertNotCalled(suite.T(), "BalanceSheet", mock.Anything, mock.Anything)
}

func (suite *ReportingHandlerTestSuite) TestTrialBalance_AsOfQueryParam() {
	want := time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC)
	suite.mockReportingSvc.On("TrialBalance", mock.Anything, want).Return([]domain.TrialBalanceRow{}, nil)

	w := suite.get("/api/v1/reports/trial-balance?as_of=2025-08-31")

	suite.Equal(http.StatusOK, w.Code)
	suite.mockReportingSvc.AssertExpectations(suite.T())
}

func (suite *ReportingHandlerTestSuite) TestTrialBalance_PeriodVariant() {
	from := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC)
	suite.mockReportingSvc.On("TrialBalancePeriod", mock.Anything, from, to).Return([]domain.TrialBalanceRow{}, nil)

	w := suite.get("/api/v1/reports/trial-balance?from=2025-08-01&to=2025-08-31")

	suite.Equal(http.StatusOK, w.Code)
	suite.mockReportingSvc.AssertExpectations(suite.T())
}

func TestReportingHandler(t *testing.T) {
	suite.Run(t, new(ReportingHandlerTestSuite))
}
