package dto

import (
	"time"

	"github.com/openbooks-app/openbooks/internal/core/domain"
	"github.com/shopspring/decimal"
)

// EntryLineRequest is one proposed debit or credit leg of a candidate
// transaction. Exactly one of debit/credit must be strictly positive; the
// validator, not the binding layer, enforces that so rejections carry the
// structured reason.
type EntryLineRequest struct {
	AccountCode string          `json:"accountCode" binding:"required,max=20"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
	Currency    string          `json:"currency" binding:"omitempty,len=3"` // Defaults to EUR
}

// CreateTransactionRequest is the candidate-transaction shape consumed by the
// posting pipeline. Producers (web layer, importers, categorizers) all submit
// this same shape.
type CreateTransactionRequest struct {
	Journal        string             `json:"journal" binding:"required"`
	TxDate         string             `json:"txDate" binding:"required"` // YYYY-MM-DD
	Memo           string             `json:"memo"`
	Lines          []EntryLineRequest `json:"lines" binding:"required"`
	IdempotencyKey string             `json:"idempotencyKey"` // Optional, for at-most-once posting
}

// UpdateTransactionRequest defines the payload for editing a draft
// transaction. Nil fields are left unchanged; a non-nil Lines replaces the
// full line set.
type UpdateTransactionRequest struct {
	TxDate *string             `json:"txDate"`
	Memo   *string             `json:"memo"`
	Lines  *[]EntryLineRequest `json:"lines"`
}

// AddLineRequest defines the payload for appending a line to a draft.
type AddLineRequest struct {
	Line EntryLineRequest `json:"line" binding:"required"`
}

// EntryLineResponse defines the data returned for an entry line.
type EntryLineResponse struct {
	LineID      string          `json:"lineID"`
	AccountCode string          `json:"accountCode"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description,omitempty"`
	Currency    string          `json:"currency"`
	BaseAmount  decimal.Decimal `json:"baseAmount"`
}

// TransactionResponse defines the data returned for a transaction.
type TransactionResponse struct {
	TransactionID         string              `json:"transactionID"`
	JournalID             string              `json:"journalID"`
	TxDate                string              `json:"txDate"`
	Memo                  string              `json:"memo,omitempty"`
	Posted                bool                `json:"posted"`
	ReversesTransactionID *string             `json:"reversesTransactionID,omitempty"`
	Lines                 []EntryLineResponse `json:"lines,omitempty"`
	CreatedAt             time.Time           `json:"createdAt"`
}

// ToEntryLineResponse converts a domain.EntryLine to EntryLineResponse DTO.
func ToEntryLineResponse(l *domain.EntryLine) EntryLineResponse {
	return EntryLineResponse{
		LineID:      l.LineID,
		AccountCode: l.AccountCode,
		Debit:       l.Debit,
		Credit:      l.Credit,
		Description: l.Description,
		Currency:    l.CurrencyCode,
		BaseAmount:  l.BaseAmount,
	}
}

// ToEntryLineResponses converts a slice of domain.EntryLine to []EntryLineResponse.
func ToEntryLineResponses(lines []domain.EntryLine) []EntryLineResponse {
	responses := make([]EntryLineResponse, len(lines))
	for i := range lines {
		responses[i] = ToEntryLineResponse(&lines[i])
	}
	return responses
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse DTO.
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:         t.TransactionID,
		JournalID:             t.JournalID,
		TxDate:                t.TxDate.Format("2006-01-02"),
		Memo:                  t.Memo,
		Posted:                t.Posted,
		ReversesTransactionID: t.ReversesTransactionID,
		Lines:                 ToEntryLineResponses(t.Lines),
		CreatedAt:             t.CreatedAt,
	}
}
