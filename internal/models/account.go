package models

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset           AccountType = "ASSET"
	Liability       AccountType = "LIABILITY"
	Equity          AccountType = "EQUITY"
	Income          AccountType = "INCOME"
	Expense         AccountType = "EXPENSE"
	ContraAsset     AccountType = "CONTRA_ASSET"
	ContraLiability AccountType = "CONTRA_LIABILITY"
)

// Account represents a chart-of-accounts row as stored.
type Account struct {
	AccountID   string      `db:"account_id"`
	Code        string      `db:"code"` // Unique
	Name        string      `db:"name"`
	AccountType AccountType `db:"account_type"`
	NormalDebit bool        `db:"normal_debit"`
	Description string      `db:"description"`
	IsActive    bool        `db:"is_active"`
	AuditFields             // Embed common audit fields
}
