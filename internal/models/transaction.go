package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents a ledger transaction row as stored.
type Transaction struct {
	TransactionID         string    `db:"transaction_id"`
	JournalID             string    `db:"journal_id"`
	TxDate                time.Time `db:"tx_date"`
	Memo                  string    `db:"memo"`
	Posted                bool      `db:"posted"`
	ReversesTransactionID *string   `db:"reverses_transaction_id"` // Nullable
	AuditFields
}

// EntryLine represents one debit or credit leg as stored. The check
// constraints debit_xor_credit and non_negative_amounts mirror the validator.
type EntryLine struct {
	LineID        string          `db:"line_id"`
	TransactionID string          `db:"transaction_id"`
	AccountID     string          `db:"account_id"`
	AccountCode   string          `db:"-"` // Joined from accounts, not a column
	Debit         decimal.Decimal `db:"debit"`
	Credit        decimal.Decimal `db:"credit"`
	Description   string          `db:"description"`
	CurrencyCode  string          `db:"currency_code"`
	BaseAmount    decimal.Decimal `db:"base_amount"` // Signed: debit - credit
	AuditFields
}
