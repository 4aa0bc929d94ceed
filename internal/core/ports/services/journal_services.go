package services

import (
	"context"

	"github.com/openbooks-app/openbooks/internal/core/domain"
	"github.com/openbooks-app/openbooks/internal/dto"
)

// JournalService exposes journal (transaction grouping) operations.
type JournalService interface {
	// CreateJournal creates a new named journal.
	CreateJournal(ctx context.Context, req dto.CreateJournalRequest, creatorID string) (*domain.Journal, error)

	// GetJournalByName retrieves a journal by its unique name.
	GetJournalByName(ctx context.Context, name string) (*domain.Journal, error)

	// ListJournals retrieves all journals.
	ListJournals(ctx context.Context) ([]domain.Journal, error)
}
