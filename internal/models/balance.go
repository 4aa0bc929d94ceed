package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance represents a cached per-account monthly aggregate as stored.
// Unique on (account_id, period).
type Balance struct {
	AccountID   string          `db:"account_id"`
	Period      time.Time       `db:"period"` // First day of month
	DebitTotal  decimal.Decimal `db:"debit_total"`
	CreditTotal decimal.Decimal `db:"credit_total"`
	AuditFields
}
