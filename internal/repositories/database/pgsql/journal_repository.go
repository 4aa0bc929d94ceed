package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openbooks-app/openbooks/internal/apperrors"
	"github.com/openbooks-app/openbooks/internal/core/domain"
	portsrepo "github.com/openbooks-app/openbooks/internal/core/ports/repositories"
	"github.com/openbooks-app/openbooks/internal/models"
	"github.com/openbooks-app/openbooks/internal/utils/mapping"
)

type PgxJournalRepository struct {
	BaseRepository
}

// newPgxJournalRepository creates a new repository for journal data.
func newPgxJournalRepository(pool *pgxpool.Pool) portsrepo.JournalRepository {
	return &PgxJournalRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.JournalRepository = (*PgxJournalRepository)(nil)

const journalColumns = `journal_id, name, description, created_at, created_by, last_updated_at, last_updated_by`

func scanJournal(row pgx.Row) (models.Journal, error) {
	var m models.Journal
	err := row.Scan(
		&m.JournalID,
		&m.Name,
		&m.Description,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func (r *PgxJournalRepository) SaveJournal(ctx context.Context, journal domain.Journal) error {
	m := mapping.ToModelJournal(journal)

	query := `
		INSERT INTO journals (` + journalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.JournalID,
		m.Name,
		m.Description,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: journal %s", apperrors.ErrDuplicate, m.Name)
		}
		return apperrors.NewAppError(500, "failed to insert journal "+m.JournalID, err)
	}
	return nil
}

func (r *PgxJournalRepository) FindJournalByID(ctx context.Context, journalID string) (*domain.Journal, error) {
	query := `SELECT ` + journalColumns + ` FROM journals WHERE journal_id = $1;`

	m, err := scanJournal(r.Pool.QueryRow(ctx, query, journalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("journal " + journalID + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to find journal "+journalID, err)
	}
	d := mapping.ToDomainJournal(m)
	return &d, nil
}

func (r *PgxJournalRepository) FindJournalByName(ctx context.Context, name string) (*domain.Journal, error) {
	query := `SELECT ` + journalColumns + ` FROM journals WHERE name = $1;`

	m, err := scanJournal(r.Pool.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("journal " + name + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to find journal by name "+name, err)
	}
	d := mapping.ToDomainJournal(m)
	return &d, nil
}

func (r *PgxJournalRepository) ListJournals(ctx context.Context) ([]domain.Journal, error) {
	query := `SELECT ` + journalColumns + ` FROM journals ORDER BY name;`

	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list journals", err)
	}
	defer rows.Close()

	var journals []domain.Journal
	for rows.Next() {
		m, err := scanJournal(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan journal row", err)
		}
		journals = append(journals, mapping.ToDomainJournal(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating journal rows", err)
	}
	return journals, nil
}
