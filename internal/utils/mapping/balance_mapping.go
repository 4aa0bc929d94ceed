package mapping

import (
	"github.com/openbooks-app/openbooks/internal/core/domain"
	"github.com/openbooks-app/openbooks/internal/models"
)

// ToDomainBalance converts a model Balance to a domain Balance
func ToDomainBalance(m models.Balance) domain.Balance {
	return domain.Balance{
		AccountID:   m.AccountID,
		Period:      m.Period,
		DebitTotal:  m.DebitTotal,
		CreditTotal: m.CreditTotal,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainBalanceSlice converts a slice of model Balances to domain Balances
func ToDomainBalanceSlice(ms []models.Balance) []domain.Balance {
	ds := make([]domain.Balance, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainBalance(m)
	}
	return ds
}
