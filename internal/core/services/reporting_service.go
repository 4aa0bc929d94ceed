package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openbooks-app/openbooks/internal/apperrors"
	"github.com/openbooks-app/openbooks/internal/core/domain"
	portsrepo "github.com/openbooks-app/openbooks/internal/core/ports/repositories"
	portssvc "github.com/openbooks-app/openbooks/internal/core/ports/services"
	"github.com/openbooks-app/openbooks/internal/utils/accounting"
)

// reportingService answers read-only financial queries over posted entries.
// Every report verifies its own accounting identity before answering; a
// failed check surfaces ErrLedgerIntegrity rather than a partial result.
type reportingService struct {
	BaseService
	reportingRepo portsrepo.ReportingRepository
}

// NewReportingService creates a new ReportingService.
func NewReportingService(reportingRepo portsrepo.ReportingRepository) portssvc.ReportingService {
	return &reportingService{reportingRepo: reportingRepo}
}

var _ portssvc.ReportingService = (*reportingService)(nil)

// checkTrialBalanceTotals verifies the fundamental identity of any trial
// balance: total debits equal total credits.
func (s *reportingService) checkTrialBalanceTotals(ctx context.Context, rows []domain.TrialBalanceRow) error {
	debits, credits := decimal.Zero, decimal.Zero
	for _, row := range rows {
		debits = debits.Add(row.Debit)
		credits = credits.Add(row.Credit)
	}
	if !debits.Equal(credits) {
		s.LogError(ctx, apperrors.ErrLedgerIntegrity, "Trial balance does not balance",
			slog.String("debits", debits.StringFixed(2)),
			slog.String("credits", credits.StringFixed(2)))
		return fmt.Errorf("%w: trial balance debits %s != credits %s",
			apperrors.ErrLedgerIntegrity, debits.StringFixed(2), credits.StringFixed(2))
	}
	return nil
}

func (s *reportingService) TrialBalance(ctx context.Context, asOf time.Time) ([]domain.TrialBalanceRow, error) {
	rows, err := s.reportingRepo.GetTrialBalanceData(ctx, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to compute trial balance")
		return nil, err
	}
	if err := s.checkTrialBalanceTotals(ctx, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *reportingService) TrialBalancePeriod(ctx context.Context, from, to time.Time) ([]domain.TrialBalanceRow, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: report range end precedes start", apperrors.ErrValidation)
	}
	rows, err := s.reportingRepo.GetTrialBalancePeriodData(ctx, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to compute period trial balance")
		return nil, err
	}
	if err := s.checkTrialBalanceTotals(ctx, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *reportingService) TrialBalanceFromCache(ctx context.Context, asOf time.Time) ([]domain.TrialBalanceRow, error) {
	cached, err := s.reportingRepo.GetTrialBalanceFromBalances(ctx, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to compute trial balance from balance cache")
		return nil, err
	}
	if err := s.checkTrialBalanceTotals(ctx, cached); err != nil {
		return nil, err
	}

	// The cache-assisted answer must agree exactly with a full scan of the
	// entry line history; a divergence means the balance cache has drifted.
	scanned, err := s.reportingRepo.GetTrialBalanceData(ctx, asOf)
	if err != nil {
		return nil, err
	}
	if err := s.compareTrialBalances(ctx, cached, scanned); err != nil {
		return nil, err
	}
	return cached, nil
}

// compareTrialBalances checks that two trial balance answers carry identical
// per-account totals.
func (s *reportingService) compareTrialBalances(ctx context.Context, cached, scanned []domain.TrialBalanceRow) error {
	type totals struct{ debit, credit decimal.Decimal }
	byAccount := make(map[string]totals, len(scanned))
	for _, row := range scanned {
		byAccount[row.AccountID] = totals{debit: row.Debit, credit: row.Credit}
	}
	if len(cached) != len(scanned) {
		s.LogError(ctx, apperrors.ErrLedgerIntegrity, "Balance cache row count diverges from entry history",
			slog.Int("cached_rows", len(cached)), slog.Int("scanned_rows", len(scanned)))
		return fmt.Errorf("%w: balance cache reports %d accounts, entry history %d",
			apperrors.ErrLedgerIntegrity, len(cached), len(scanned))
	}
	for _, row := range cached {
		want, found := byAccount[row.AccountID]
		if !found || !row.Debit.Equal(want.debit) || !row.Credit.Equal(want.credit) {
			s.LogError(ctx, apperrors.ErrLedgerIntegrity, "Balance cache diverges from entry history",
				slog.String("account_code", row.AccountCode))
			return fmt.Errorf("%w: balance cache diverges from entry history for account %s",
				apperrors.ErrLedgerIntegrity, row.AccountCode)
		}
	}
	return nil
}

func (s *reportingService) IncomeStatement(ctx context.Context, from, to time.Time) (*domain.IncomeStatementReport, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: report range end precedes start", apperrors.ErrValidation)
	}
	amounts, err := s.reportingRepo.GetIncomeStatementData(ctx, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to compute income statement")
		return nil, err
	}

	var income, expenses []domain.AccountAmount
	for _, a := range amounts {
		switch a.AccountType {
		case domain.Income:
			income = append(income, displaySigned(a, false))
		case domain.Expense:
			expenses = append(expenses, displaySigned(a, true))
		}
	}

	report := &domain.IncomeStatementReport{
		Income:       income,
		Expenses:     expenses,
		TotalIncome:  sumAmounts(income),
		TotalExpense: sumAmounts(expenses),
	}
	report.Net = report.TotalIncome.Sub(report.TotalExpense)
	return report, nil
}

// BalanceSheet sections accounts by type and signs every row for the section
// it reports under. Contra accounts carry the opposite normal balance of
// their section, so their rows come out negative and reduce the section total
// rather than inflating it.
func (s *reportingService) BalanceSheet(ctx context.Context, asOf time.Time) (*domain.BalanceSheetReport, error) {
	amounts, retained, err := s.reportingRepo.GetBalanceSheetData(ctx, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to compute balance sheet")
		return nil, err
	}

	var assets, liabilities, equity []domain.AccountAmount
	for _, a := range amounts {
		switch a.AccountType {
		case domain.Asset, domain.ContraAsset:
			assets = append(assets, displaySigned(a, true))
		case domain.Liability, domain.ContraLiability:
			liabilities = append(liabilities, displaySigned(a, false))
		case domain.Equity:
			equity = append(equity, displaySigned(a, false))
		}
	}

	report := &domain.BalanceSheetReport{
		Assets:           assets,
		Liabilities:      liabilities,
		Equity:           equity,
		RetainedEarnings: retained,
		TotalAssets:      sumAmounts(assets),
		TotalLiabilities: sumAmounts(liabilities),
		TotalEquity:      sumAmounts(equity).Add(retained),
	}

	// Assets = Liabilities + Equity, tolerating one minor unit of rounding.
	if !accounting.WithinMinorUnit(report.TotalAssets, report.TotalLiabilities.Add(report.TotalEquity)) {
		s.LogError(ctx, apperrors.ErrLedgerIntegrity, "Balance sheet identity violated",
			slog.String("assets", report.TotalAssets.StringFixed(2)),
			slog.String("liabilities", report.TotalLiabilities.StringFixed(2)),
			slog.String("equity", report.TotalEquity.StringFixed(2)))
		return nil, fmt.Errorf("%w: assets %s != liabilities %s + equity %s",
			apperrors.ErrLedgerIntegrity,
			report.TotalAssets.StringFixed(2),
			report.TotalLiabilities.StringFixed(2),
			report.TotalEquity.StringFixed(2))
	}
	return report, nil
}

// displaySigned re-signs a raw debit-minus-credit net for a section whose
// normal balance side is sectionNormalDebit.
func displaySigned(a domain.AccountAmount, sectionNormalDebit bool) domain.AccountAmount {
	a.NetAmount = accounting.DisplayAmount(a.NetAmount, sectionNormalDebit)
	return a
}

func sumAmounts(amounts []domain.AccountAmount) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a.NetAmount)
	}
	return total
}
