package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/openbooks-app/openbooks/internal/apperrors"
	"github.com/openbooks-app/openbooks/internal/core/domain"
	portsrepo "github.com/openbooks-app/openbooks/internal/core/ports/repositories"
)

// PgxReportingRepository runs the read-only aggregate queries behind the
// report engine. Only posted transactions contribute to any of them.
type PgxReportingRepository struct {
	BaseRepository
}

// newPgxReportingRepository creates a new repository for report queries.
func newPgxReportingRepository(pool *pgxpool.Pool) portsrepo.ReportingRepository {
	return &PgxReportingRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.ReportingRepository = (*PgxReportingRepository)(nil)

func (r *PgxReportingRepository) scanTrialBalanceRows(rows pgx.Rows) ([]domain.TrialBalanceRow, error) {
	var result []domain.TrialBalanceRow
	for rows.Next() {
		var row domain.TrialBalanceRow
		if err := rows.Scan(&row.AccountID, &row.AccountCode, &row.AccountName, &row.AccountType, &row.Debit, &row.Credit); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan trial balance row", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating trial balance rows", err)
	}
	return result, nil
}

// GetTrialBalanceData sums posted debits and credits per account for
// transactions dated up to and including asOf, scanning the entry lines.
func (r *PgxReportingRepository) GetTrialBalanceData(ctx context.Context, asOf time.Time) ([]domain.TrialBalanceRow, error) {
	query := `
		SELECT a.account_id, a.code, a.name, a.account_type,
		       COALESCE(SUM(l.debit), 0), COALESCE(SUM(l.credit), 0)
		FROM accounts a
		JOIN entry_lines l ON l.account_id = a.account_id
		JOIN transactions t ON t.transaction_id = l.transaction_id
		WHERE t.posted AND t.tx_date <= $1
		GROUP BY a.account_id, a.code, a.name, a.account_type
		ORDER BY a.code;
	`
	rows, err := r.Pool.Query(ctx, query, asOf)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query trial balance", err)
	}
	defer rows.Close()
	return r.scanTrialBalanceRows(rows)
}

// GetTrialBalancePeriodData is the ranged variant covering [from, to].
func (r *PgxReportingRepository) GetTrialBalancePeriodData(ctx context.Context, from, to time.Time) ([]domain.TrialBalanceRow, error) {
	query := `
		SELECT a.account_id, a.code, a.name, a.account_type,
		       COALESCE(SUM(l.debit), 0), COALESCE(SUM(l.credit), 0)
		FROM accounts a
		JOIN entry_lines l ON l.account_id = a.account_id
		JOIN transactions t ON t.transaction_id = l.transaction_id
		WHERE t.posted AND t.tx_date >= $1 AND t.tx_date <= $2
		GROUP BY a.account_id, a.code, a.name, a.account_type
		ORDER BY a.code;
	`
	rows, err := r.Pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query period trial balance", err)
	}
	defer rows.Close()
	return r.scanTrialBalanceRows(rows)
}

// GetTrialBalanceFromBalances combines closed-month balance rows with a
// partial entry line scan of the boundary month.
func (r *PgxReportingRepository) GetTrialBalanceFromBalances(ctx context.Context, asOf time.Time) ([]domain.TrialBalanceRow, error) {
	query := `
		SELECT a.account_id, a.code, a.name, a.account_type,
		       COALESCE(SUM(x.debit), 0), COALESCE(SUM(x.credit), 0)
		FROM (
			SELECT b.account_id, b.debit_total AS debit, b.credit_total AS credit
			FROM balances b
			WHERE b.period < date_trunc('month', $1::timestamptz)
			UNION ALL
			SELECT l.account_id, l.debit, l.credit
			FROM entry_lines l
			JOIN transactions t ON t.transaction_id = l.transaction_id
			WHERE t.posted
			  AND t.tx_date >= date_trunc('month', $1::timestamptz)
			  AND t.tx_date <= $1
		) x
		JOIN accounts a ON a.account_id = x.account_id
		GROUP BY a.account_id, a.code, a.name, a.account_type
		ORDER BY a.code;
	`
	rows, err := r.Pool.Query(ctx, query, asOf)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query trial balance from balances", err)
	}
	defer rows.Close()
	return r.scanTrialBalanceRows(rows)
}

// accountAmountQuery computes raw per-account debit minus credit nets. The
// reporting service owns the display-sign conventions, so no sign flipping
// happens here.
const accountAmountQuery = `
	SELECT a.account_id, a.code, a.name, a.account_type,
	       COALESCE(SUM(l.debit - l.credit), 0) AS net_amount
	FROM accounts a
	JOIN entry_lines l ON l.account_id = a.account_id
	JOIN transactions t ON t.transaction_id = l.transaction_id
	WHERE t.posted AND a.account_type = ANY($1)
`

func (r *PgxReportingRepository) queryAccountAmounts(ctx context.Context, types []string, dateClause string, args ...any) ([]domain.AccountAmount, error) {
	query := accountAmountQuery + dateClause + `
	GROUP BY a.account_id, a.code, a.name, a.account_type
	ORDER BY a.code;`

	queryArgs := append([]any{types}, args...)
	rows, err := r.Pool.Query(ctx, query, queryArgs...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query account amounts", err)
	}
	defer rows.Close()

	var result []domain.AccountAmount
	for rows.Next() {
		var a domain.AccountAmount
		if err := rows.Scan(&a.AccountID, &a.AccountCode, &a.Name, &a.AccountType, &a.NetAmount); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan account amount row", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating account amount rows", err)
	}
	return result, nil
}

// GetIncomeStatementData returns raw per-account nets for income and expense
// accounts over [from, to].
func (r *PgxReportingRepository) GetIncomeStatementData(ctx context.Context, from, to time.Time) ([]domain.AccountAmount, error) {
	return r.queryAccountAmounts(ctx,
		[]string{string(domain.Income), string(domain.Expense)},
		` AND t.tx_date >= $2 AND t.tx_date <= $3`, from, to)
}

// GetBalanceSheetData returns raw per-account nets for the balance sheet
// account types from inception through asOf, plus retained earnings.
func (r *PgxReportingRepository) GetBalanceSheetData(ctx context.Context, asOf time.Time) ([]domain.AccountAmount, decimal.Decimal, error) {
	amounts, err := r.queryAccountAmounts(ctx,
		[]string{
			string(domain.Asset), string(domain.ContraAsset),
			string(domain.Liability), string(domain.ContraLiability),
			string(domain.Equity),
		},
		` AND t.tx_date <= $2`, asOf)
	if err != nil {
		return nil, decimal.Zero, err
	}

	// Retained earnings: cumulative income minus expense through asOf,
	// expressed from the credit-normal perspective.
	retainedQuery := `
		SELECT COALESCE(SUM(l.credit - l.debit), 0)
		FROM entry_lines l
		JOIN accounts a ON a.account_id = l.account_id
		JOIN transactions t ON t.transaction_id = l.transaction_id
		WHERE t.posted AND t.tx_date <= $1
		  AND a.account_type = ANY($2);
	`
	var retained decimal.Decimal
	err = r.Pool.QueryRow(ctx, retainedQuery, asOf,
		[]string{string(domain.Income), string(domain.Expense)}).Scan(&retained)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, decimal.Zero, apperrors.NewAppError(500, "failed to compute retained earnings", err)
	}
	return amounts, retained, nil
}
