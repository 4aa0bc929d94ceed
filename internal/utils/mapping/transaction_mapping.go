package mapping

import (
	"github.com/openbooks-app/openbooks/internal/core/domain"
	"github.com/openbooks-app/openbooks/internal/models"
)

// ToModelTransaction converts a domain Transaction to a model Transaction
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID:         d.TransactionID,
		JournalID:             d.JournalID,
		TxDate:                d.TxDate,
		Memo:                  d.Memo,
		Posted:                d.Posted,
		ReversesTransactionID: d.ReversesTransactionID,
		AuditFields:           ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTransaction converts a model Transaction to a domain Transaction
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID:         m.TransactionID,
		JournalID:             m.JournalID,
		TxDate:                m.TxDate,
		Memo:                  m.Memo,
		Posted:                m.Posted,
		ReversesTransactionID: m.ReversesTransactionID,
		AuditFields:           ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelEntryLine converts a domain EntryLine to a model EntryLine
func ToModelEntryLine(d domain.EntryLine) models.EntryLine {
	return models.EntryLine{
		LineID:        d.LineID,
		TransactionID: d.TransactionID,
		AccountID:     d.AccountID,
		AccountCode:   d.AccountCode,
		Debit:         d.Debit,
		Credit:        d.Credit,
		Description:   d.Description,
		CurrencyCode:  d.CurrencyCode,
		BaseAmount:    d.BaseAmount,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainEntryLine converts a model EntryLine to a domain EntryLine
func ToDomainEntryLine(m models.EntryLine) domain.EntryLine {
	return domain.EntryLine{
		LineID:        m.LineID,
		TransactionID: m.TransactionID,
		AccountID:     m.AccountID,
		AccountCode:   m.AccountCode,
		Debit:         m.Debit,
		Credit:        m.Credit,
		Description:   m.Description,
		CurrencyCode:  m.CurrencyCode,
		BaseAmount:    m.BaseAmount,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainEntryLineSlice converts a slice of model EntryLines to domain EntryLines
func ToDomainEntryLineSlice(ms []models.EntryLine) []domain.EntryLine {
	ds := make([]domain.EntryLine, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainEntryLine(m)
	}
	return ds
}
