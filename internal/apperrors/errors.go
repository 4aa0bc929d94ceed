package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// Posting rejection reasons. These are returned by the candidate validator and
// the posting pipeline; handlers map them to structured HTTP rejections.
var (
	// ErrInsufficientLines: a candidate transaction carries fewer than two entry lines.
	ErrInsufficientLines = errors.New("transaction must have at least two entry lines")

	// ErrInvalidLineAmount: an entry line violates the debit-XOR-credit rule or
	// carries a non-positive or over-precise amount.
	ErrInvalidLineAmount = errors.New("entry line must have exactly one of debit/credit strictly positive")

	// ErrUnknownOrInactiveAccount: a referenced account does not exist or is deactivated.
	ErrUnknownOrInactiveAccount = errors.New("unknown or inactive account")

	// ErrUnbalancedTransaction: the sum of debits does not equal the sum of credits.
	ErrUnbalancedTransaction = errors.New("transaction debits do not equal credits")

	// ErrImmutablePostedTransaction: a mutation was attempted against a posted transaction.
	ErrImmutablePostedTransaction = errors.New("posted transaction is immutable")

	// ErrPostingFailed: the atomic commit failed; nothing was persisted and the
	// caller may safely retry the same candidate.
	ErrPostingFailed = errors.New("posting failed")

	// ErrLedgerIntegrity: report totals do not reconcile, indicating corrupted
	// prior state rather than a bad input. Never swallowed.
	ErrLedgerIntegrity = errors.New("ledger integrity violation")
)

// RejectionKind returns the stable machine-readable name for a posting
// rejection, or the empty string when err is not part of the taxonomy.
func RejectionKind(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientLines):
		return "InsufficientLines"
	case errors.Is(err, ErrInvalidLineAmount):
		return "InvalidLineAmount"
	case errors.Is(err, ErrUnknownOrInactiveAccount):
		return "UnknownOrInactiveAccount"
	case errors.Is(err, ErrUnbalancedTransaction):
		return "UnbalancedTransaction"
	case errors.Is(err, ErrImmutablePostedTransaction):
		return "ImmutablePostedTransaction"
	case errors.Is(err, ErrPostingFailed):
		return "PostingFailed"
	case errors.Is(err, ErrLedgerIntegrity):
		return "LedgerIntegrityViolation"
	}
	return ""
}
