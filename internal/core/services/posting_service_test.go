package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/openbooks-app/openbooks/internal/apperrors"
	"github.com/openbooks-app/openbooks/internal/core/domain"
	portssvc "github.com/openbooks-app/openbooks/internal/core/ports/services"
	"github.com/openbooks-app/openbooks/internal/core/services"
	"github.com/openbooks-app/openbooks/internal/dto"
	"github.com/openbooks-app/openbooks/internal/utils/accounting"
)

type PostingServiceTestSuite struct {
	suite.Suite
	mockTxnRepo    *MockTransactionRepository
	mockAccountSvc *MockAccountService
	mockJournalSvc *MockJournalService
	service        portssvc.PostingService

	journal     domain.Journal
	cashAccount domain.Account
	salesAccount domain.Account
	userID      string
}

func (suite *PostingServiceTestSuite) SetupTest() {
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.mockAccountSvc = new(MockAccountService)
	suite.mockJournalSvc = new(MockJournalService)
	suite.service = services.NewPostingService(suite.mockTxnRepo, suite.mockAccountSvc, suite.mockJournalSvc)

	suite.userID = uuid.NewString()
	suite.journal = domain.Journal{JournalID: uuid.NewString(), Name: "GENERAL"}
	suite.cashAccount = domain.Account{
		AccountID:   uuid.NewString(),
		Code:        "1000",
		Name:        "Cash",
		AccountType: domain.Asset,
		NormalDebit: true,
		IsActive:    true,
	}
	suite.salesAccount = domain.Account{
		AccountID:   uuid.NewString(),
		Code:        "4000",
		Name:        "Sales",
		AccountType: domain.Income,
		NormalDebit: false,
		IsActive:    true,
	}
}

func (suite *PostingServiceTestSuite) accountsByCode() map[string]domain.Account {
	return map[string]domain.Account{
		suite.cashAccount.Code:  suite.cashAccount,
		suite.salesAccount.Code: suite.salesAccount,
	}
}

func (suite *PostingServiceTestSuite) balancedRequest() dto.CreateTransactionRequest {
	return dto.CreateTransactionRequest{
		Journal: "GENERAL",
		TxDate:  "2025-08-15",
		Memo:    "Cash sale",
		Lines: []dto.EntryLineRequest{
			{AccountCode: "1000", Debit: decimal.RequireFromString("100.00")},
			{AccountCode: "4000", Credit: decimal.RequireFromString("100.00")},
		},
	}
}

func (suite *PostingServiceTestSuite) TestPost_Success() {
	ctx := context.Background()
	suite.mockJournalSvc.On("GetJournalByName", ctx, "GENERAL").Return(&suite.journal, nil)
	suite.mockAccountSvc.On("GetAccountsByCodes", ctx, mock.Anything).Return(suite.accountsByCode(), nil)

	expectedPeriod := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	suite.mockTxnRepo.On("SavePosted", ctx,
		mock.MatchedBy(func(txn domain.Transaction) bool {
			return txn.Posted &&
				txn.JournalID == suite.journal.JournalID &&
				len(txn.Lines) == 2 &&
				txn.TxDate.Equal(time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC))
		}),
		expectedPeriod,
		mock.MatchedBy(func(deltas map[string]domain.BalanceDelta) bool {
			cash := deltas[suite.cashAccount.AccountID]
			sales := deltas[suite.salesAccount.AccountID]
			return cash.Debit.Equal(decimal.RequireFromString("100.00")) &&
				cash.Credit.IsZero() &&
				sales.Credit.Equal(decimal.RequireFromString("100.00")) &&
				sales.Debit.IsZero()
		}),
		"",
	).Return(nil)

	txn, err := suite.service.Post(ctx, suite.balancedRequest(), suite.userID)

	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), txn)
	assert.True(suite.T(), txn.Posted)
	assert.Equal(suite.T(), suite.userID, txn.CreatedBy)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *PostingServiceTestSuite) TestPost_UnbalancedRejectedWithoutPersisting() {
	ctx := context.Background()
	suite.mockJournalSvc.On("GetJournalByName", ctx, "GENERAL").Return(&suite.journal, nil)
	suite.mockAccountSvc.On("GetAccountsByCodes", ctx, mock.Anything).Return(suite.accountsByCode(), nil)

	req := suite.balancedRequest()
	req.Lines = []dto.EntryLineRequest{
		{AccountCode: "1000", Debit: decimal.RequireFromString("50.00")},
		{AccountCode: "4000", Credit: decimal.RequireFromString("40.00")},
	}

	txn, err := suite.service.Post(ctx, req, suite.userID)

	assert.Nil(suite.T(), txn)
	assert.ErrorIs(suite.T(), err, apperrors.ErrUnbalancedTransaction)
	assert.Equal(suite.T(), "UnbalancedTransaction", apperrors.RejectionKind(err))
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SavePosted", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PostingServiceTestSuite) TestPost_UnknownAccountRejected() {
	ctx := context.Background()
	suite.mockJournalSvc.On("GetJournalByName", ctx, "GENERAL").Return(&suite.journal, nil)
	// Only cash resolves; 4000 is missing from the result.
	suite.mockAccountSvc.On("GetAccountsByCodes", ctx, mock.Anything).Return(map[string]domain.Account{
		suite.cashAccount.Code: suite.cashAccount,
	}, nil)

	txn, err := suite.service.Post(ctx, suite.balancedRequest(), suite.userID)

	assert.Nil(suite.T(), txn)
	assert.ErrorIs(suite.T(), err, apperrors.ErrUnknownOrInactiveAccount)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SavePosted", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PostingServiceTestSuite) TestPost_BadDateRejected() {
	ctx := context.Background()

	req := suite.balancedRequest()
	req.TxDate = "15-08-2025"

	txn, err := suite.service.Post(ctx, req, suite.userID)

	assert.Nil(suite.T(), txn)
	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
}

func (suite *PostingServiceTestSuite) TestPost_IdempotentReplayReturnsOriginal() {
	ctx := context.Background()
	existingID := uuid.NewString()
	existing := &domain.Transaction{TransactionID: existingID, Posted: true}

	suite.mockTxnRepo.On("FindTransactionIDByIdempotencyKey", ctx, "key-1").Return(existingID, nil)
	suite.mockTxnRepo.On("FindTransactionByID", ctx, existingID).Return(existing, nil)

	req := suite.balancedRequest()
	req.IdempotencyKey = "key-1"

	txn, err := suite.service.Post(ctx, req, suite.userID)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), existingID, txn.TransactionID)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SavePosted", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PostingServiceTestSuite) TestPost_IdempotencyRaceResolvesToWinner() {
	ctx := context.Background()
	winnerID := uuid.NewString()
	winner := &domain.Transaction{TransactionID: winnerID, Posted: true}

	// Pre-check misses, the commit loses the race, the re-lookup finds the winner.
	suite.mockTxnRepo.On("FindTransactionIDByIdempotencyKey", ctx, "key-2").
		Return("", apperrors.ErrNotFound).Once()
	suite.mockJournalSvc.On("GetJournalByName", ctx, "GENERAL").Return(&suite.journal, nil)
	suite.mockAccountSvc.On("GetAccountsByCodes", ctx, mock.Anything).Return(suite.accountsByCode(), nil)
	suite.mockTxnRepo.On("SavePosted", ctx, mock.Anything, mock.Anything, mock.Anything, "key-2").
		Return(apperrors.ErrDuplicate)
	suite.mockTxnRepo.On("FindTransactionIDByIdempotencyKey", ctx, "key-2").
		Return(winnerID, nil).Once()
	suite.mockTxnRepo.On("FindTransactionByID", ctx, winnerID).Return(winner, nil)

	req := suite.balancedRequest()
	req.IdempotencyKey = "key-2"

	txn, err := suite.service.Post(ctx, req, suite.userID)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), winnerID, txn.TransactionID)
}

func (suite *PostingServiceTestSuite) TestPostDraft_PostedIsImmutable() {
	ctx := context.Background()
	posted := &domain.Transaction{TransactionID: uuid.NewString(), Posted: true}
	suite.mockTxnRepo.On("FindTransactionByID", ctx, posted.TransactionID).Return(posted, nil)

	txn, err := suite.service.PostDraft(ctx, posted.TransactionID, suite.userID)

	assert.Nil(suite.T(), txn)
	assert.ErrorIs(suite.T(), err, apperrors.ErrImmutablePostedTransaction)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "MarkPosted", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PostingServiceTestSuite) TestAddDraftLine_PostedIsImmutable() {
	ctx := context.Background()
	posted := &domain.Transaction{TransactionID: uuid.NewString(), Posted: true}
	suite.mockTxnRepo.On("FindTransactionByID", ctx, posted.TransactionID).Return(posted, nil)

	txn, err := suite.service.AddDraftLine(ctx, posted.TransactionID, dto.AddLineRequest{
		Line: dto.EntryLineRequest{AccountCode: "1000", Debit: decimal.RequireFromString("5.00")},
	}, suite.userID)

	assert.Nil(suite.T(), txn)
	assert.ErrorIs(suite.T(), err, apperrors.ErrImmutablePostedTransaction)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "UpdateDraft", mock.Anything, mock.Anything)
}

func (suite *PostingServiceTestSuite) TestDeleteDraft_PostedIsImmutable() {
	ctx := context.Background()
	posted := &domain.Transaction{TransactionID: uuid.NewString(), Posted: true}
	suite.mockTxnRepo.On("FindTransactionByID", ctx, posted.TransactionID).Return(posted, nil)

	err := suite.service.DeleteDraft(ctx, posted.TransactionID, suite.userID)

	assert.ErrorIs(suite.T(), err, apperrors.ErrImmutablePostedTransaction)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "DeleteDraft", mock.Anything, mock.Anything)
}

func (suite *PostingServiceTestSuite) TestReverse_SwapsLegsAndLinks() {
	ctx := context.Background()
	originalID := uuid.NewString()
	original := &domain.Transaction{
		TransactionID: originalID,
		JournalID:     suite.journal.JournalID,
		TxDate:        time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC),
		Posted:        true,
		Lines: []domain.EntryLine{
			{
				LineID:       uuid.NewString(),
				AccountID:    suite.cashAccount.AccountID,
				AccountCode:  "1000",
				Debit:        decimal.RequireFromString("100.00"),
				Credit:       decimal.Zero,
				CurrencyCode: "EUR",
			},
			{
				LineID:       uuid.NewString(),
				AccountID:    suite.salesAccount.AccountID,
				AccountCode:  "4000",
				Debit:        decimal.Zero,
				Credit:       decimal.RequireFromString("100.00"),
				CurrencyCode: "EUR",
			},
		},
	}
	suite.mockTxnRepo.On("FindTransactionByID", ctx, originalID).Return(original, nil)
	suite.mockTxnRepo.On("SavePosted", ctx,
		mock.MatchedBy(func(txn domain.Transaction) bool {
			return txn.Posted &&
				txn.ReversesTransactionID != nil &&
				*txn.ReversesTransactionID == originalID &&
				txn.Lines[0].Credit.Equal(decimal.RequireFromString("100.00")) &&
				txn.Lines[1].Debit.Equal(decimal.RequireFromString("100.00"))
		}),
		mock.Anything, mock.Anything, "",
	).Return(nil)

	reversal, err := suite.service.Reverse(ctx, originalID, suite.userID)

	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), reversal)
	assert.True(suite.T(), reversal.IsReversal())
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *PostingServiceTestSuite) TestReverse_OfReversalRejected() {
	ctx := context.Background()
	origID := uuid.NewString()
	reversalID := uuid.NewString()
	reversal := &domain.Transaction{
		TransactionID:         reversalID,
		Posted:                true,
		ReversesTransactionID: &origID,
	}
	suite.mockTxnRepo.On("FindTransactionByID", ctx, reversalID).Return(reversal, nil)

	txn, err := suite.service.Reverse(ctx, reversalID, suite.userID)

	assert.Nil(suite.T(), txn)
	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
}

func (suite *PostingServiceTestSuite) TestReverse_DraftRejected() {
	ctx := context.Background()
	draft := &domain.Transaction{TransactionID: uuid.NewString(), Posted: false}
	suite.mockTxnRepo.On("FindTransactionByID", ctx, draft.TransactionID).Return(draft, nil)

	txn, err := suite.service.Reverse(ctx, draft.TransactionID, suite.userID)

	assert.Nil(suite.T(), txn)
	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
}

// TestPost_IncrementalDeltasMatchFullReaggregation posts several transactions
// across two months and checks that accumulating the per-posting balance
// deltas yields the same per-account, per-period totals as re-aggregating
// every stored line from scratch. This is the contract the balance rebuild
// relies on: the incremental path and a full recomputation must agree.
func (suite *PostingServiceTestSuite) TestPost_IncrementalDeltasMatchFullReaggregation() {
	ctx := context.Background()
	suite.mockJournalSvc.On("GetJournalByName", ctx, "GENERAL").Return(&suite.journal, nil)
	suite.mockAccountSvc.On("GetAccountsByCodes", ctx, mock.Anything).Return(suite.accountsByCode(), nil)

	type periodKey struct {
		accountID string
		period    string
	}
	incremental := make(map[periodKey]domain.BalanceDelta)
	var postedTxns []domain.Transaction

	suite.mockTxnRepo.On("SavePosted", ctx, mock.Anything, mock.Anything, mock.Anything, "").
		Run(func(args mock.Arguments) {
			txn := args.Get(1).(domain.Transaction)
			period := args.Get(2).(time.Time)
			deltas := args.Get(3).(map[string]domain.BalanceDelta)
			postedTxns = append(postedTxns, txn)
			for accountID, delta := range deltas {
				key := periodKey{accountID: accountID, period: period.Format("2006-01-02")}
				incremental[key] = incremental[key].Add(delta)
			}
		}).
		Return(nil)

	post := func(txDate, amount string) {
		req := dto.CreateTransactionRequest{
			Journal: "GENERAL",
			TxDate:  txDate,
			Lines: []dto.EntryLineRequest{
				{AccountCode: "1000", Debit: decimal.RequireFromString(amount)},
				{AccountCode: "4000", Credit: decimal.RequireFromString(amount)},
			},
		}
		_, err := suite.service.Post(ctx, req, suite.userID)
		suite.Require().NoError(err)
	}
	post("2025-08-15", "100.00")
	post("2025-08-20", "40.00")
	post("2025-09-03", "25.00")

	// Full re-aggregation over every stored line, grouped the same way the
	// balance cache is keyed.
	rebuilt := make(map[periodKey]domain.BalanceDelta)
	for _, txn := range postedTxns {
		period := accounting.PeriodOf(txn.TxDate).Format("2006-01-02")
		for _, line := range txn.Lines {
			key := periodKey{accountID: line.AccountID, period: period}
			rebuilt[key] = rebuilt[key].Add(domain.BalanceDelta{Debit: line.Debit, Credit: line.Credit})
		}
	}

	assert.Len(suite.T(), incremental, 4) // two accounts, two periods
	assert.Equal(suite.T(), len(rebuilt), len(incremental))
	for key, want := range rebuilt {
		got, found := incremental[key]
		suite.Require().True(found, "missing incremental totals for %v", key)
		assert.True(suite.T(), got.Debit.Equal(want.Debit),
			"debit totals diverge for %v: incremental %s, rebuilt %s", key, got.Debit, want.Debit)
		assert.True(suite.T(), got.Credit.Equal(want.Credit),
			"credit totals diverge for %v: incremental %s, rebuilt %s", key, got.Credit, want.Credit)
	}

	cashAug := incremental[periodKey{accountID: suite.cashAccount.AccountID, period: "2025-08-01"}]
	assert.True(suite.T(), cashAug.Debit.Equal(decimal.RequireFromString("140.00")))
	cashSep := incremental[periodKey{accountID: suite.cashAccount.AccountID, period: "2025-09-01"}]
	assert.True(suite.T(), cashSep.Debit.Equal(decimal.RequireFromString("25.00")))
}

func TestPostingService(t *testing.T) {
	suite.Run(t, new(PostingServiceTestSuite))
}
