package dto

import (
	"github.com/openbooks-app/openbooks/internal/core/domain"
)

// CreateAccountRequest defines the payload for creating a ledger account.
type CreateAccountRequest struct {
	Code        string             `json:"code" binding:"required,max=20"`
	Name        string             `json:"name" binding:"required,max=120"`
	AccountType domain.AccountType `json:"accountType" binding:"required,accounttype"`
	// NormalDebit may be omitted; the conventional side for the account type is used.
	NormalDebit *bool  `json:"normalDebit"`
	Description string `json:"description"`
}

// UpdateAccountRequest defines the payload for updating mutable account fields.
// Code and type are immutable.
type UpdateAccountRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID   string `json:"accountID"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	AccountType string `json:"accountType"`
	NormalDebit bool   `json:"normalDebit"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"isActive"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO.
func ToAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:   a.AccountID,
		Code:        a.Code,
		Name:        a.Name,
		AccountType: string(a.AccountType),
		NormalDebit: a.NormalDebit,
		Description: a.Description,
		IsActive:    a.IsActive,
	}
}

// ToAccountResponses converts a slice of domain.Account to []AccountResponse.
func ToAccountResponses(accounts []domain.Account) []AccountResponse {
	responses := make([]AccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = ToAccountResponse(&accounts[i])
	}
	return responses
}
