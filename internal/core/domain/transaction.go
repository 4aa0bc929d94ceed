package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is an atomic economic event recorded against a journal.
// Once Posted is true the transaction and all its entry lines are immutable;
// corrections require a new reversing transaction.
type Transaction struct {
	TransactionID         string      `json:"transactionID"` // Primary Key (UUID)
	JournalID             string      `json:"journalID"`     // FK -> Journal.journalID (Not Null)
	TxDate                time.Time   `json:"txDate"`        // Date the event occurred
	Memo                  string      `json:"memo"`          // Nullable
	Posted                bool        `json:"posted"`        // Immutable once true
	ReversesTransactionID *string     `json:"reversesTransactionID,omitempty"`
	Lines                 []EntryLine `json:"lines,omitempty"` // Often loaded separately
	AuditFields
}

// IsReversal reports whether the transaction was created to offset another.
func (t Transaction) IsReversal() bool {
	return t.ReversesTransactionID != nil
}

// EntryLine is one debit or credit leg of a transaction. Exactly one of
// Debit/Credit is strictly positive; the other is zero.
type EntryLine struct {
	LineID        string          `json:"lineID"`        // Primary Key (UUID)
	TransactionID string          `json:"transactionID"` // FK -> Transaction.transactionID (Not Null)
	AccountID     string          `json:"accountID"`     // FK -> Account.accountID (Not Null)
	AccountCode   string          `json:"accountCode"`   // Denormalized for responses; resolved at load time
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
	Description   string          `json:"description"`  // Nullable
	CurrencyCode  string          `json:"currencyCode"` // 3-letter, defaults to EUR
	BaseAmount    decimal.Decimal `json:"baseAmount"`   // Signed: debit - credit
	AuditFields
}

// IsDebit reports whether the line is a debit leg.
func (l EntryLine) IsDebit() bool {
	return l.Debit.IsPositive()
}

// SignedBaseAmount returns debit - credit regardless of whether BaseAmount
// was populated by the storage layer.
func (l EntryLine) SignedBaseAmount() decimal.Decimal {
	return l.Debit.Sub(l.Credit)
}
