package repositories

import (
	"context"
	"time"

	"github.com/openbooks-app/openbooks/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ReportingRepository defines the read-only aggregate queries behind the
// report engine. Only posted transactions are visible to any of them.
type ReportingRepository interface {
	// GetTrialBalanceData sums posted debits and credits per account for
	// transactions dated up to and including asOf, by scanning entry lines.
	GetTrialBalanceData(ctx context.Context, asOf time.Time) ([]domain.TrialBalanceRow, error)

	// GetTrialBalancePeriodData is the ranged variant covering [from, to].
	GetTrialBalancePeriodData(ctx context.Context, from, to time.Time) ([]domain.TrialBalanceRow, error)

	// GetTrialBalanceFromBalances answers the same question as
	// GetTrialBalanceData but combines closed-month Balance rows with a
	// partial entry line scan of the boundary month. Both paths must agree
	// exactly; the reporting service cross-checks them.
	GetTrialBalanceFromBalances(ctx context.Context, asOf time.Time) ([]domain.TrialBalanceRow, error)

	// GetIncomeStatementData returns raw per-account debit minus credit nets
	// for income and expense accounts over [from, to]. The report engine
	// applies display signs and splits the rows by statement section.
	GetIncomeStatementData(ctx context.Context, from, to time.Time) ([]domain.AccountAmount, error)

	// GetBalanceSheetData returns raw per-account debit minus credit nets for
	// asset, liability and equity accounts (including contra types) from
	// inception through asOf, plus retained earnings (cumulative income minus
	// expense, credit-positive).
	GetBalanceSheetData(ctx context.Context, asOf time.Time) ([]domain.AccountAmount, decimal.Decimal, error)
}
