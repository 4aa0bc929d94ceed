package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance is a derived per-account, per-calendar-month aggregate of debit and
// credit totals. It is a performance cache maintained by the posting pipeline
// and always reconstructible from the entry line history.
type Balance struct {
	AccountID   string          `json:"accountID"` // FK -> Account.accountID
	Period      time.Time       `json:"period"`    // First day of the month, UTC
	DebitTotal  decimal.Decimal `json:"debitTotal"`
	CreditTotal decimal.Decimal `json:"creditTotal"`
	AuditFields
}

// Net returns debitTotal - creditTotal for the period.
func (b Balance) Net() decimal.Decimal {
	return b.DebitTotal.Sub(b.CreditTotal)
}

// BalanceDelta is the debit/credit increment a single posting applies to one
// account's period balance. All lines of a posting share one transaction date,
// so a posting touches exactly one period per account.
type BalanceDelta struct {
	Debit  decimal.Decimal
	Credit decimal.Decimal
}

// Add accumulates another delta.
func (d BalanceDelta) Add(o BalanceDelta) BalanceDelta {
	return BalanceDelta{Debit: d.Debit.Add(o.Debit), Credit: d.Credit.Add(o.Credit)}
}
