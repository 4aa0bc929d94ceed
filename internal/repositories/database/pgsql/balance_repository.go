package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openbooks-app/openbooks/internal/apperrors"
	"github.com/openbooks-app/openbooks/internal/core/domain"
	portsrepo "github.com/openbooks-app/openbooks/internal/core/ports/repositories"
	"github.com/openbooks-app/openbooks/internal/models"
	"github.com/openbooks-app/openbooks/internal/utils/mapping"
)

// systemUser marks rows written by repair tooling rather than a caller.
const systemUser = "system"

type PgxBalanceRepository struct {
	BaseRepository
}

// newPgxBalanceRepository creates a new repository for cached period balances.
func newPgxBalanceRepository(pool *pgxpool.Pool) portsrepo.BalanceRepository {
	return &PgxBalanceRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.BalanceRepository = (*PgxBalanceRepository)(nil)

const balanceColumns = `account_id, period, debit_total, credit_total, created_at, created_by, last_updated_at, last_updated_by`

func scanBalance(row pgx.Row) (models.Balance, error) {
	var m models.Balance
	err := row.Scan(
		&m.AccountID,
		&m.Period,
		&m.DebitTotal,
		&m.CreditTotal,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// Increment upserts the (account, period) row, adding the deltas. The posting
// pipeline applies its deltas inside its own database transaction; this
// standalone variant exists for repair tooling.
func (r *PgxBalanceRepository) Increment(ctx context.Context, accountID string, period time.Time, delta domain.BalanceDelta, updatedBy string) error {
	now := time.Now().UTC()
	_, err := r.Pool.Exec(ctx, balanceUpsert, accountID, period, delta.Debit, delta.Credit, now, updatedBy)
	if err != nil {
		return apperrors.NewAppError(500, "failed to increment balance for account "+accountID, err)
	}
	return nil
}

func (r *PgxBalanceRepository) FindBalance(ctx context.Context, accountID string, period time.Time) (*domain.Balance, error) {
	query := `SELECT ` + balanceColumns + ` FROM balances WHERE account_id = $1 AND period = $2;`

	m, err := scanBalance(r.Pool.QueryRow(ctx, query, accountID, period))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("balance not found for account " + accountID)
		}
		return nil, apperrors.NewAppError(500, "failed to find balance for account "+accountID, err)
	}
	d := mapping.ToDomainBalance(m)
	return &d, nil
}

func (r *PgxBalanceRepository) ListBalancesByAccount(ctx context.Context, accountID string) ([]domain.Balance, error) {
	query := `SELECT ` + balanceColumns + ` FROM balances WHERE account_id = $1 ORDER BY period;`

	rows, err := r.Pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list balances for account "+accountID, err)
	}
	defer rows.Close()

	var ms []models.Balance
	for rows.Next() {
		m, err := scanBalance(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan balance row", err)
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating balance rows", err)
	}
	return mapping.ToDomainBalanceSlice(ms), nil
}

// RebuildBalance recomputes one (account, period) row from the posted entry
// line history and overwrites the cached value. Sums over an empty history
// are zero, which still overwrites a drifted cache row.
func (r *PgxBalanceRepository) RebuildBalance(ctx context.Context, accountID string, period time.Time) (*domain.Balance, error) {
	query := `
		INSERT INTO balances (account_id, period, debit_total, credit_total, created_at, created_by, last_updated_at, last_updated_by)
		SELECT $1, $2,
		       COALESCE(SUM(l.debit), 0),
		       COALESCE(SUM(l.credit), 0),
		       $3, $4, $3, $4
		FROM entry_lines l
		JOIN transactions t ON t.transaction_id = l.transaction_id
		WHERE l.account_id = $1
		  AND t.posted
		  AND t.tx_date >= $2
		  AND t.tx_date < ($2::date + INTERVAL '1 month')
		ON CONFLICT (account_id, period) DO UPDATE
		SET debit_total     = EXCLUDED.debit_total,
		    credit_total    = EXCLUDED.credit_total,
		    last_updated_at = EXCLUDED.last_updated_at,
		    last_updated_by = EXCLUDED.last_updated_by
		RETURNING ` + balanceColumns + `;
	`
	now := time.Now().UTC()
	m, err := scanBalance(r.Pool.QueryRow(ctx, query, accountID, period, now, systemUser))
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to rebuild balance for account "+accountID, err)
	}
	d := mapping.ToDomainBalance(m)
	return &d, nil
}

// RebuildAll drops every cached row and re-derives the full set from the
// posted entry line history, in one database transaction so readers never
// see a half-rebuilt cache.
func (r *PgxBalanceRepository) RebuildAll(ctx context.Context) (int, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer r.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx, `DELETE FROM balances;`); err != nil {
		return 0, apperrors.NewAppError(500, "failed to clear balances", err)
	}

	query := `
		INSERT INTO balances (account_id, period, debit_total, credit_total, created_at, created_by, last_updated_at, last_updated_by)
		SELECT l.account_id,
		       date_trunc('month', t.tx_date)::date,
		       SUM(l.debit),
		       SUM(l.credit),
		       $1, $2, $1, $2
		FROM entry_lines l
		JOIN transactions t ON t.transaction_id = l.transaction_id
		WHERE t.posted
		GROUP BY l.account_id, date_trunc('month', t.tx_date);
	`
	now := time.Now().UTC()
	tag, err := tx.Exec(ctx, query, now, systemUser)
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to rebuild balances", err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
