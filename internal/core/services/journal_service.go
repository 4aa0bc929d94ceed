package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/openbooks-app/openbooks/internal/apperrors"
	"github.com/openbooks-app/openbooks/internal/core/domain"
	portsrepo "github.com/openbooks-app/openbooks/internal/core/ports/repositories"
	portssvc "github.com/openbooks-app/openbooks/internal/core/ports/services"
	"github.com/openbooks-app/openbooks/internal/dto"
)

// journalService manages the named journals transactions are grouped under.
type journalService struct {
	BaseService
	journalRepo portsrepo.JournalRepository
}

// NewJournalService creates a new JournalService.
func NewJournalService(journalRepo portsrepo.JournalRepository) portssvc.JournalService {
	return &journalService{journalRepo: journalRepo}
}

var _ portssvc.JournalService = (*journalService)(nil)

func (s *journalService) CreateJournal(ctx context.Context, req dto.CreateJournalRequest, creatorID string) (*domain.Journal, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: journal name is required", apperrors.ErrValidation)
	}

	if existing, err := s.journalRepo.FindJournalByName(ctx, name); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: journal %s", apperrors.ErrDuplicate, name)
	} else if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to check journal name uniqueness", slog.String("name", name))
		return nil, err
	}

	now := time.Now().UTC()
	journal := domain.Journal{
		JournalID:   uuid.NewString(),
		Name:        name,
		Description: req.Description,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorID,
		},
	}

	if err := s.journalRepo.SaveJournal(ctx, journal); err != nil {
		s.LogError(ctx, err, "Failed to save journal", slog.String("name", name))
		return nil, err
	}

	s.LogInfo(ctx, "Journal created", slog.String("journal_id", journal.JournalID), slog.String("name", name))
	return &journal, nil
}

func (s *journalService) GetJournalByName(ctx context.Context, name string) (*domain.Journal, error) {
	journal, err := s.journalRepo.FindJournalByName(ctx, name)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find journal by name", slog.String("name", name))
		}
		return nil, err
	}
	return journal, nil
}

func (s *journalService) ListJournals(ctx context.Context) ([]domain.Journal, error) {
	journals, err := s.journalRepo.ListJournals(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list journals")
		return nil, err
	}
	return journals, nil
}
