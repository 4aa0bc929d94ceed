package services

import (
	"context"
	"time"

	"github.com/openbooks-app/openbooks/internal/core/domain"
)

// ReportingService answers read-only financial queries over posted entries.
// Reports that fail to reconcile refuse to answer and surface
// ErrLedgerIntegrity instead of a partial result.
type ReportingService interface {
	// TrialBalance reports per-account debit/credit totals as of a date.
	TrialBalance(ctx context.Context, asOf time.Time) ([]domain.TrialBalanceRow, error)

	// TrialBalancePeriod is the ranged variant over [from, to].
	TrialBalancePeriod(ctx context.Context, from, to time.Time) ([]domain.TrialBalanceRow, error)

	// TrialBalanceFromCache answers TrialBalance using closed-month balance
	// rows plus a boundary-month scan; it must agree exactly with the full
	// scan and exists for the reconciliation path.
	TrialBalanceFromCache(ctx context.Context, asOf time.Time) ([]domain.TrialBalanceRow, error)

	// IncomeStatement reports income vs expense over [from, to].
	IncomeStatement(ctx context.Context, from, to time.Time) (*domain.IncomeStatementReport, error)

	// BalanceSheet reports assets, liabilities and equity (with retained
	// earnings) as of a date and verifies Assets = Liabilities + Equity.
	BalanceSheet(ctx context.Context, asOf time.Time) (*domain.BalanceSheetReport, error)
}
