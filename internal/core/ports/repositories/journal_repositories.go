package repositories

import (
	"context"

	"github.com/openbooks-app/openbooks/internal/core/domain"
)

// JournalRepository defines operations for journal (transaction grouping) data
type JournalRepository interface {
	// SaveJournal inserts a new journal.
	SaveJournal(ctx context.Context, journal domain.Journal) error

	// FindJournalByID retrieves a journal by its unique identifier.
	FindJournalByID(ctx context.Context, journalID string) (*domain.Journal, error)

	// FindJournalByName retrieves a journal by its unique name.
	FindJournalByName(ctx context.Context, name string) (*domain.Journal, error)

	// ListJournals retrieves all journals ordered by name.
	ListJournals(ctx context.Context) ([]domain.Journal, error)
}
