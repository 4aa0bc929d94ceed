package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/openbooks-app/openbooks/internal/core/ports/repositories"
)

// NewRepositoryProvider wires every PostgreSQL repository to the shared pool.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:     newPgxAccountRepository(dbPool),
		JournalRepo:     newPgxJournalRepository(dbPool),
		TransactionRepo: newPgxTransactionRepository(dbPool),
		BalanceRepo:     newPgxBalanceRepository(dbPool),
		ReportingRepo:   newPgxReportingRepository(dbPool),
	}
}
