package services

// ServiceContainer bundles every service implementation handed to the HTTP
// layer at startup.
type ServiceContainer struct {
	Account   AccountService
	Journal   JournalService
	Posting   PostingService
	Balance   BalanceService
	Reporting ReportingService
}
