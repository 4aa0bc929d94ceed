package dto

import (
	"github.com/openbooks-app/openbooks/internal/core/domain"
)

// CreateJournalRequest defines the payload for creating a journal.
type CreateJournalRequest struct {
	Name        string `json:"name" binding:"required,max=60"`
	Description string `json:"description"`
}

// JournalResponse defines the data returned for a journal.
type JournalResponse struct {
	JournalID   string `json:"journalID"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ToJournalResponse converts a domain.Journal to JournalResponse DTO.
func ToJournalResponse(j *domain.Journal) JournalResponse {
	return JournalResponse{
		JournalID:   j.JournalID,
		Name:        j.Name,
		Description: j.Description,
	}
}

// ToJournalResponses converts a slice of domain.Journal to []JournalResponse.
func ToJournalResponses(journals []domain.Journal) []JournalResponse {
	responses := make([]JournalResponse, len(journals))
	for i := range journals {
		responses[i] = ToJournalResponse(&journals[i])
	}
	return responses
}
