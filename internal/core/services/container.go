package services

import (
	portsrepo "github.com/openbooks-app/openbooks/internal/core/ports/repositories"
	portssvc "github.com/openbooks-app/openbooks/internal/core/ports/services"
)

// NewServiceContainer wires every service with its repository dependencies.
func NewServiceContainer(repos *portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	accountSvc := NewAccountService(repos.AccountRepo)
	journalSvc := NewJournalService(repos.JournalRepo)

	return &portssvc.ServiceContainer{
		Account:   accountSvc,
		Journal:   journalSvc,
		Posting:   NewPostingService(repos.TransactionRepo, accountSvc, journalSvc),
		Balance:   NewBalanceService(repos.BalanceRepo, accountSvc),
		Reporting: NewReportingService(repos.ReportingRepo),
	}
}
