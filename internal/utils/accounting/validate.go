// Package accounting holds the pure double-entry arithmetic and validation
// used by both services and repositories. Nothing here touches storage; every
// function is safe to call repeatedly and concurrently.
package accounting

import (
	"fmt"

	"github.com/openbooks-app/openbooks/internal/apperrors"
	"github.com/openbooks-app/openbooks/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ValidateLineAmount checks the debit-XOR-credit rule for a single entry line:
// both amounts non-negative, exactly one strictly positive, and neither with
// more than two decimal places. idx is the zero-based line position, used only
// for error detail.
func ValidateLineAmount(line domain.EntryLine, idx int) error {
	if line.Debit.IsNegative() || line.Credit.IsNegative() {
		return fmt.Errorf("%w: line %d has a negative amount", apperrors.ErrInvalidLineAmount, idx)
	}
	if line.Debit.Exponent() < -2 || line.Credit.Exponent() < -2 {
		return fmt.Errorf("%w: line %d exceeds two decimal places", apperrors.ErrInvalidLineAmount, idx)
	}
	debitSet := line.Debit.IsPositive()
	creditSet := line.Credit.IsPositive()
	if debitSet == creditSet {
		// Both set or both zero.
		return fmt.Errorf("%w: line %d must carry exactly one of debit/credit", apperrors.ErrInvalidLineAmount, idx)
	}
	return nil
}

// ValidateAccounts checks that every account referenced by the lines is
// present in accounts (keyed by account ID) and active.
func ValidateAccounts(lines []domain.EntryLine, accounts map[string]domain.Account) error {
	for _, line := range lines {
		acc, found := accounts[line.AccountID]
		if !found {
			return fmt.Errorf("%w: account %s", apperrors.ErrUnknownOrInactiveAccount, line.AccountID)
		}
		if !acc.IsActive {
			return fmt.Errorf("%w: account %s is inactive", apperrors.ErrUnknownOrInactiveAccount, acc.Code)
		}
	}
	return nil
}

// ValidateBalanced checks that the sum of debits equals the sum of credits
// across the lines, using exact decimal comparison.
func ValidateBalanced(lines []domain.EntryLine) error {
	debits := decimal.Zero
	credits := decimal.Zero
	for _, line := range lines {
		debits = debits.Add(line.Debit)
		credits = credits.Add(line.Credit)
	}
	if !debits.Equal(credits) {
		return fmt.Errorf("%w: debits %s != credits %s",
			apperrors.ErrUnbalancedTransaction, debits.StringFixed(2), credits.StringFixed(2))
	}
	return nil
}

// ValidateCandidate runs the full pre-posting check sequence on a candidate
// transaction's lines. Checks run in order and the first failure wins:
// line count, per-line amounts, account existence/activity, balance.
// Immutability of already-posted transactions is enforced by the pipeline
// before it reaches this point.
func ValidateCandidate(lines []domain.EntryLine, accounts map[string]domain.Account) error {
	if len(lines) < 2 {
		return fmt.Errorf("%w: got %d", apperrors.ErrInsufficientLines, len(lines))
	}
	for i, line := range lines {
		if err := ValidateLineAmount(line, i); err != nil {
			return err
		}
	}
	if err := ValidateAccounts(lines, accounts); err != nil {
		return err
	}
	return ValidateBalanced(lines)
}
