package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/openbooks-app/openbooks/internal/apperrors"
	"github.com/openbooks-app/openbooks/internal/core/domain"
	portsrepo "github.com/openbooks-app/openbooks/internal/core/ports/repositories"
	portssvc "github.com/openbooks-app/openbooks/internal/core/ports/services"
	"github.com/openbooks-app/openbooks/internal/dto"
	"github.com/openbooks-app/openbooks/internal/utils/accounting"
)

const (
	txDateLayout    = "2006-01-02"
	defaultCurrency = "EUR"
)

// postingService turns candidate transactions into durably posted ledger
// entries. All validation happens before any write; the repository commits
// the transaction row, its lines and the balance deltas atomically.
type postingService struct {
	BaseService
	txnRepo    portsrepo.TransactionRepository
	accountSvc portssvc.AccountService
	journalSvc portssvc.JournalService
}

// NewPostingService creates a new PostingService.
func NewPostingService(txnRepo portsrepo.TransactionRepository, accountSvc portssvc.AccountService, journalSvc portssvc.JournalService) portssvc.PostingService {
	return &postingService{
		txnRepo:    txnRepo,
		accountSvc: accountSvc,
		journalSvc: journalSvc,
	}
}

var _ portssvc.PostingService = (*postingService)(nil)

// buildCandidate assembles a domain transaction from the request: parses the
// date, resolves the journal and accounts, and materializes entry lines with
// their signed base amounts. Nothing is persisted; full candidate validation
// is left to the caller so drafts can stay looser than postings.
func (s *postingService) buildCandidate(ctx context.Context, req dto.CreateTransactionRequest, creatorID string) (*domain.Transaction, map[string]domain.Account, error) {
	txDate, err := time.ParseInLocation(txDateLayout, req.TxDate, time.UTC)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: txDate must be YYYY-MM-DD, got %q", apperrors.ErrValidation, req.TxDate)
	}

	journal, err := s.journalSvc.GetJournalByName(ctx, req.Journal)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: journal %q", apperrors.ErrValidation, req.Journal)
		}
		return nil, nil, err
	}

	now := time.Now().UTC()
	txnID := uuid.NewString()

	lines, accountsByID, err := s.buildLines(ctx, txnID, req.Lines, creatorID, now)
	if err != nil {
		return nil, nil, err
	}

	txn := &domain.Transaction{
		TransactionID: txnID,
		JournalID:     journal.JournalID,
		TxDate:        txDate,
		Memo:          req.Memo,
		Lines:         lines,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorID,
		},
	}
	return txn, accountsByID, nil
}

// buildLines resolves account codes and materializes domain entry lines.
// Unknown codes are rejected here so the rejection carries the offending code
// rather than a missing-ID lookup failure later on.
func (s *postingService) buildLines(ctx context.Context, txnID string, reqs []dto.EntryLineRequest, creatorID string, now time.Time) ([]domain.EntryLine, map[string]domain.Account, error) {
	codes := make([]string, 0, len(reqs))
	for _, lr := range reqs {
		codes = append(codes, lr.AccountCode)
	}

	accountsByCode, err := s.accountSvc.GetAccountsByCodes(ctx, codes)
	if err != nil {
		return nil, nil, err
	}

	accountsByID := make(map[string]domain.Account, len(accountsByCode))
	lines := make([]domain.EntryLine, 0, len(reqs))
	for _, lr := range reqs {
		account, found := accountsByCode[lr.AccountCode]
		if !found {
			return nil, nil, fmt.Errorf("%w: account %s", apperrors.ErrUnknownOrInactiveAccount, lr.AccountCode)
		}
		accountsByID[account.AccountID] = account

		currency := lr.Currency
		if currency == "" {
			currency = defaultCurrency
		}

		line := domain.EntryLine{
			LineID:        uuid.NewString(),
			TransactionID: txnID,
			AccountID:     account.AccountID,
			AccountCode:   account.Code,
			Debit:         lr.Debit,
			Credit:        lr.Credit,
			Description:   lr.Description,
			CurrencyCode:  currency,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     creatorID,
				LastUpdatedAt: now,
				LastUpdatedBy: creatorID,
			},
		}
		line.BaseAmount = accounting.BaseAmount(line)
		lines = append(lines, line)
	}
	return lines, accountsByID, nil
}

// computeDeltas folds the lines into per-account debit/credit increments.
// All lines share the transaction date, so one posting touches exactly one
// period per account.
func computeDeltas(lines []domain.EntryLine) map[string]domain.BalanceDelta {
	deltas := make(map[string]domain.BalanceDelta)
	for _, line := range lines {
		deltas[line.AccountID] = deltas[line.AccountID].Add(domain.BalanceDelta{
			Debit:  line.Debit,
			Credit: line.Credit,
		})
	}
	return deltas
}

func (s *postingService) Post(ctx context.Context, req dto.CreateTransactionRequest, creatorID string) (*domain.Transaction, error) {
	// Idempotency pre-check: a repeated candidate returns the original
	// posting instead of recording the event twice.
	if req.IdempotencyKey != "" {
		existingID, err := s.txnRepo.FindTransactionIDByIdempotencyKey(ctx, req.IdempotencyKey)
		if err == nil {
			s.LogInfo(ctx, "Idempotent replay of posted transaction",
				slog.String("idempotency_key", req.IdempotencyKey),
				slog.String("transaction_id", existingID))
			return s.txnRepo.FindTransactionByID(ctx, existingID)
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
	}

	txn, accountsByID, err := s.buildCandidate(ctx, req, creatorID)
	if err != nil {
		return nil, err
	}

	if err := accounting.ValidateCandidate(txn.Lines, accountsByID); err != nil {
		s.LogWarn(ctx, "Candidate transaction rejected",
			slog.String("rejection", apperrors.RejectionKind(err)),
			slog.String("error", err.Error()))
		return nil, err
	}

	txn.Posted = true
	period := accounting.PeriodOf(txn.TxDate)
	deltas := computeDeltas(txn.Lines)

	if err := s.txnRepo.SavePosted(ctx, *txn, period, deltas, req.IdempotencyKey); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) && req.IdempotencyKey != "" {
			// Lost a race with a concurrent submission of the same key;
			// the winner's transaction is the answer.
			existingID, lookupErr := s.txnRepo.FindTransactionIDByIdempotencyKey(ctx, req.IdempotencyKey)
			if lookupErr != nil {
				return nil, lookupErr
			}
			return s.txnRepo.FindTransactionByID(ctx, existingID)
		}
		s.LogError(ctx, err, "Failed to commit posting", slog.String("transaction_id", txn.TransactionID))
		return nil, fmt.Errorf("%w: %v", apperrors.ErrPostingFailed, err)
	}

	s.LogInfo(ctx, "Transaction posted",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("tx_date", txn.TxDate.Format(txDateLayout)),
		slog.Int("lines", len(txn.Lines)))
	return txn, nil
}

func (s *postingService) CreateDraft(ctx context.Context, req dto.CreateTransactionRequest, creatorID string) (*domain.Transaction, error) {
	txn, _, err := s.buildCandidate(ctx, req, creatorID)
	if err != nil {
		return nil, err
	}

	// Drafts only enforce the per-line amount rule; balance and line count
	// are checked when the draft is posted, so lines can be added piecemeal.
	for i, line := range txn.Lines {
		if err := accounting.ValidateLineAmount(line, i); err != nil {
			return nil, err
		}
	}

	if err := s.txnRepo.SaveDraft(ctx, *txn); err != nil {
		s.LogError(ctx, err, "Failed to save draft", slog.String("transaction_id", txn.TransactionID))
		return nil, err
	}

	s.LogInfo(ctx, "Draft transaction created", slog.String("transaction_id", txn.TransactionID))
	return txn, nil
}

func (s *postingService) PostDraft(ctx context.Context, transactionID string, updaterID string) (*domain.Transaction, error) {
	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.Posted {
		return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrImmutablePostedTransaction, transactionID)
	}

	accountsByID, err := s.accountsForLines(ctx, txn.Lines)
	if err != nil {
		return nil, err
	}
	if err := accounting.ValidateCandidate(txn.Lines, accountsByID); err != nil {
		s.LogWarn(ctx, "Draft rejected at posting",
			slog.String("transaction_id", transactionID),
			slog.String("rejection", apperrors.RejectionKind(err)))
		return nil, err
	}

	now := time.Now().UTC()
	period := accounting.PeriodOf(txn.TxDate)
	deltas := computeDeltas(txn.Lines)

	if err := s.txnRepo.MarkPosted(ctx, transactionID, period, deltas, updaterID, now); err != nil {
		if errors.Is(err, apperrors.ErrImmutablePostedTransaction) {
			return nil, err
		}
		s.LogError(ctx, err, "Failed to post draft", slog.String("transaction_id", transactionID))
		return nil, fmt.Errorf("%w: %v", apperrors.ErrPostingFailed, err)
	}

	txn.Posted = true
	txn.LastUpdatedAt = now
	txn.LastUpdatedBy = updaterID
	s.LogInfo(ctx, "Draft transaction posted", slog.String("transaction_id", transactionID))
	return txn, nil
}

func (s *postingService) UpdateDraft(ctx context.Context, transactionID string, req dto.UpdateTransactionRequest, updaterID string) (*domain.Transaction, error) {
	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.Posted {
		return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrImmutablePostedTransaction, transactionID)
	}

	now := time.Now().UTC()
	if req.TxDate != nil {
		txDate, err := time.ParseInLocation(txDateLayout, *req.TxDate, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("%w: txDate must be YYYY-MM-DD, got %q", apperrors.ErrValidation, *req.TxDate)
		}
		txn.TxDate = txDate
	}
	if req.Memo != nil {
		txn.Memo = *req.Memo
	}
	if req.Lines != nil {
		lines, _, err := s.buildLines(ctx, txn.TransactionID, *req.Lines, updaterID, now)
		if err != nil {
			return nil, err
		}
		for i, line := range lines {
			if err := accounting.ValidateLineAmount(line, i); err != nil {
				return nil, err
			}
		}
		txn.Lines = lines
	}
	txn.LastUpdatedAt = now
	txn.LastUpdatedBy = updaterID

	if err := s.txnRepo.UpdateDraft(ctx, *txn); err != nil {
		s.LogError(ctx, err, "Failed to update draft", slog.String("transaction_id", transactionID))
		return nil, err
	}
	return txn, nil
}

func (s *postingService) AddDraftLine(ctx context.Context, transactionID string, req dto.AddLineRequest, updaterID string) (*domain.Transaction, error) {
	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.Posted {
		return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrImmutablePostedTransaction, transactionID)
	}

	now := time.Now().UTC()
	lines, _, err := s.buildLines(ctx, txn.TransactionID, []dto.EntryLineRequest{req.Line}, updaterID, now)
	if err != nil {
		return nil, err
	}
	if err := accounting.ValidateLineAmount(lines[0], len(txn.Lines)); err != nil {
		return nil, err
	}

	txn.Lines = append(txn.Lines, lines[0])
	txn.LastUpdatedAt = now
	txn.LastUpdatedBy = updaterID

	if err := s.txnRepo.UpdateDraft(ctx, *txn); err != nil {
		s.LogError(ctx, err, "Failed to add draft line", slog.String("transaction_id", transactionID))
		return nil, err
	}
	return txn, nil
}

func (s *postingService) DeleteDraft(ctx context.Context, transactionID string, updaterID string) error {
	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return err
	}
	if txn.Posted {
		return fmt.Errorf("%w: transaction %s", apperrors.ErrImmutablePostedTransaction, transactionID)
	}

	if err := s.txnRepo.DeleteDraft(ctx, transactionID); err != nil {
		s.LogError(ctx, err, "Failed to delete draft", slog.String("transaction_id", transactionID))
		return err
	}
	s.LogInfo(ctx, "Draft transaction deleted", slog.String("transaction_id", transactionID), slog.String("deleted_by", updaterID))
	return nil
}

func (s *postingService) Reverse(ctx context.Context, transactionID string, updaterID string) (*domain.Transaction, error) {
	original, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if !original.Posted {
		return nil, fmt.Errorf("%w: cannot reverse unposted transaction %s", apperrors.ErrValidation, transactionID)
	}
	if original.IsReversal() {
		return nil, fmt.Errorf("%w: transaction %s is itself a reversal", apperrors.ErrValidation, transactionID)
	}

	now := time.Now().UTC()
	reversal := &domain.Transaction{
		TransactionID:         uuid.NewString(),
		JournalID:             original.JournalID,
		TxDate:                original.TxDate,
		Memo:                  fmt.Sprintf("Reversal of %s", original.TransactionID),
		Posted:                true,
		ReversesTransactionID: &original.TransactionID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     updaterID,
			LastUpdatedAt: now,
			LastUpdatedBy: updaterID,
		},
	}

	// Swap each leg: the reversal carries the same accounts and amounts with
	// debit and credit exchanged, so the pair nets to zero.
	reversal.Lines = make([]domain.EntryLine, len(original.Lines))
	for i, line := range original.Lines {
		swapped := domain.EntryLine{
			LineID:        uuid.NewString(),
			TransactionID: reversal.TransactionID,
			AccountID:     line.AccountID,
			AccountCode:   line.AccountCode,
			Debit:         line.Credit,
			Credit:        line.Debit,
			Description:   line.Description,
			CurrencyCode:  line.CurrencyCode,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     updaterID,
				LastUpdatedAt: now,
				LastUpdatedBy: updaterID,
			},
		}
		swapped.BaseAmount = accounting.BaseAmount(swapped)
		reversal.Lines[i] = swapped
	}

	period := accounting.PeriodOf(reversal.TxDate)
	deltas := computeDeltas(reversal.Lines)

	if err := s.txnRepo.SavePosted(ctx, *reversal, period, deltas, ""); err != nil {
		s.LogError(ctx, err, "Failed to commit reversal",
			slog.String("original_id", transactionID),
			slog.String("reversal_id", reversal.TransactionID))
		return nil, fmt.Errorf("%w: %v", apperrors.ErrPostingFailed, err)
	}

	s.LogInfo(ctx, "Transaction reversed",
		slog.String("original_id", transactionID),
		slog.String("reversal_id", reversal.TransactionID))
	return reversal, nil
}

func (s *postingService) GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return s.txnRepo.FindTransactionByID(ctx, transactionID)
}

func (s *postingService) ListAccountEntries(ctx context.Context, accountCode string, limit, offset int) ([]domain.EntryLine, error) {
	account, err := s.accountSvc.GetAccountByCode(ctx, accountCode)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.txnRepo.ListEntryLinesByAccount(ctx, account.AccountID, limit, offset)
}

// accountsForLines looks up the accounts referenced by already-materialized
// lines, keyed by account ID for the validator.
func (s *postingService) accountsForLines(ctx context.Context, lines []domain.EntryLine) (map[string]domain.Account, error) {
	codes := make([]string, 0, len(lines))
	for _, line := range lines {
		codes = append(codes, line.AccountCode)
	}
	byCode, err := s.accountSvc.GetAccountsByCodes(ctx, codes)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Account, len(byCode))
	for _, account := range byCode {
		byID[account.AccountID] = account
	}
	return byID, nil
}
