package domain

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

// IsValid reports whether t is one of the known account types.
func (t AccountType) IsValid() bool {
	switch t {
	case Asset, Liability, Equity, Income, Expense, ContraAsset, ContraLiability:
		return true
	}
	return false
}

// NormalDebit returns the conventional normal-balance side for the type:
// true for debit-normal accounts (assets, expenses, contra liabilities).
func (t AccountType) NormalDebit() bool {
	switch t {
	case Asset, Expense, ContraLiability:
		return true
	default:
		return false
	}
}

// Account represents a single ledger account in the chart of accounts.
// This is the primary representation used by services.
type Account struct {
	AccountID   string      `json:"accountID"`   // Primary Key (UUID)
	Code        string      `json:"code"`        // Short unique identifier, immutable once referenced by a posted line
	Name        string      `json:"name"`        // User-facing name
	AccountType AccountType `json:"accountType"` // ASSET, LIABILITY, etc.
	NormalDebit bool        `json:"normalDebit"` // True = debit-normal, False = credit-normal
	Description string      `json:"description"` // Nullable user description
	IsActive    bool        `json:"isActive"`    // Soft delete or status flag
	AuditFields             // Embed CreatedAt, CreatedBy, etc.
}
