package accounting

import (
	"time"

	"github.com/openbooks-app/openbooks/internal/core/domain"
	"github.com/shopspring/decimal"
)

// MinorUnit is one cent, the reconciliation tolerance for the balance sheet
// identity (Assets = Liabilities + Equity).
var MinorUnit = decimal.New(1, -2)

// BaseAmount returns the signed base amount for a line: debit - credit.
// Debits are positive, credits negative.
func BaseAmount(line domain.EntryLine) decimal.Decimal {
	return line.Debit.Sub(line.Credit)
}

// DisplayAmount applies the account's normal balance so the human-readable
// sign follows standard accounting presentation: debit-normal accounts show
// their debit balance as positive, credit-normal accounts are inverted.
func DisplayAmount(net decimal.Decimal, normalDebit bool) decimal.Decimal {
	if normalDebit {
		return net
	}
	return net.Neg()
}

// PeriodOf truncates a transaction date to its calendar-month period: the
// first day of the month at midnight UTC. Balance rows are keyed by this.
func PeriodOf(txDate time.Time) time.Time {
	return time.Date(txDate.Year(), txDate.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// NextPeriod returns the first day of the month following period.
func NextPeriod(period time.Time) time.Time {
	return PeriodOf(period.AddDate(0, 1, 0))
}

// WithinMinorUnit reports whether the difference between a and b is at most
// one minor currency unit.
func WithinMinorUnit(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(MinorUnit)
}
