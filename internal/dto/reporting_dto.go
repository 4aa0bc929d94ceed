package dto

import (
	"time"

	"github.com/openbooks-app/openbooks/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TrialBalanceRowResponse represents a row in the trial balance report response
type TrialBalanceRowResponse struct {
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	AccountType string          `json:"accountType"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// TrialBalanceResponse represents the trial balance report response
type TrialBalanceResponse struct {
	AsOf     string                    `json:"asOf,omitempty"`
	FromDate string                    `json:"fromDate,omitempty"`
	ToDate   string                    `json:"toDate,omitempty"`
	Accounts []TrialBalanceRowResponse `json:"accounts"`
	Totals   struct {
		Debit  decimal.Decimal `json:"debit"`
		Credit decimal.Decimal `json:"credit"`
	} `json:"totals"`
}

// AccountAmountResponse represents an account with its report amount
type AccountAmountResponse struct {
	Code   string          `json:"code"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// IncomeStatementResponse represents the income statement (P&L) response
type IncomeStatementResponse struct {
	FromDate string                  `json:"fromDate"`
	ToDate   string                  `json:"toDate"`
	Income   []AccountAmountResponse `json:"income"`
	Expenses []AccountAmountResponse `json:"expenses"`
	Totals   struct {
		IncomeTotal  decimal.Decimal `json:"income_total"`
		ExpenseTotal decimal.Decimal `json:"expense_total"`
		Net          decimal.Decimal `json:"net"`
	} `json:"totals"`
}

// BalanceSheetResponse represents the balance sheet report response
type BalanceSheetResponse struct {
	AsOf        string                  `json:"asOf"`
	Assets      []AccountAmountResponse `json:"assets"`
	Liabilities []AccountAmountResponse `json:"liabilities"`
	Equity      []AccountAmountResponse `json:"equity"`
	Totals      struct {
		Assets           decimal.Decimal `json:"assets"`
		Liabilities      decimal.Decimal `json:"liabilities"`
		Equity           decimal.Decimal `json:"equity"`
		RetainedEarnings decimal.Decimal `json:"retainedEarnings"`
	} `json:"totals"`
}

// BalanceResponse represents one cached (account, period) aggregate.
type BalanceResponse struct {
	AccountID   string          `json:"accountID"`
	Period      string          `json:"period"` // YYYY-MM-DD, first of month
	DebitTotal  decimal.Decimal `json:"debitTotal"`
	CreditTotal decimal.Decimal `json:"creditTotal"`
}

// ToTrialBalanceRows converts domain trial balance rows to response rows.
func ToTrialBalanceRows(rows []domain.TrialBalanceRow) []TrialBalanceRowResponse {
	out := make([]TrialBalanceRowResponse, len(rows))
	for i, row := range rows {
		out[i] = TrialBalanceRowResponse{
			Code:        row.AccountCode,
			Name:        row.AccountName,
			AccountType: string(row.AccountType),
			Debit:       row.Debit,
			Credit:      row.Credit,
		}
	}
	return out
}

// ToTrialBalanceResponse converts domain trial balance rows to a DTO response
// for a point-in-time report.
func ToTrialBalanceResponse(rows []domain.TrialBalanceRow, asOf time.Time) TrialBalanceResponse {
	response := TrialBalanceResponse{
		AsOf:     asOf.Format("2006-01-02"),
		Accounts: ToTrialBalanceRows(rows),
	}
	response.Totals.Debit, response.Totals.Credit = trialBalanceTotals(rows)
	return response
}

// ToTrialBalancePeriodResponse is the ranged variant of ToTrialBalanceResponse.
func ToTrialBalancePeriodResponse(rows []domain.TrialBalanceRow, from, to time.Time) TrialBalanceResponse {
	response := TrialBalanceResponse{
		FromDate: from.Format("2006-01-02"),
		ToDate:   to.Format("2006-01-02"),
		Accounts: ToTrialBalanceRows(rows),
	}
	response.Totals.Debit, response.Totals.Credit = trialBalanceTotals(rows)
	return response
}

func trialBalanceTotals(rows []domain.TrialBalanceRow) (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, row := range rows {
		debit = debit.Add(row.Debit)
		credit = credit.Add(row.Credit)
	}
	return debit, credit
}

// ToAccountAmountResponses converts domain account amounts to response rows.
func ToAccountAmountResponses(amounts []domain.AccountAmount) []AccountAmountResponse {
	out := make([]AccountAmountResponse, len(amounts))
	for i, a := range amounts {
		out[i] = AccountAmountResponse{Code: a.AccountCode, Name: a.Name, Amount: a.NetAmount}
	}
	return out
}

// ToIncomeStatementResponse converts a domain income statement to a DTO response.
func ToIncomeStatementResponse(report *domain.IncomeStatementReport, from, to time.Time) IncomeStatementResponse {
	response := IncomeStatementResponse{
		FromDate: from.Format("2006-01-02"),
		ToDate:   to.Format("2006-01-02"),
		Income:   ToAccountAmountResponses(report.Income),
		Expenses: ToAccountAmountResponses(report.Expenses),
	}
	response.Totals.IncomeTotal = report.TotalIncome
	response.Totals.ExpenseTotal = report.TotalExpense
	response.Totals.Net = report.Net
	return response
}

// ToBalanceSheetResponse converts a domain balance sheet to a DTO response.
func ToBalanceSheetResponse(report *domain.BalanceSheetReport, asOf time.Time) BalanceSheetResponse {
	response := BalanceSheetResponse{
		AsOf:        asOf.Format("2006-01-02"),
		Assets:      ToAccountAmountResponses(report.Assets),
		Liabilities: ToAccountAmountResponses(report.Liabilities),
		Equity:      ToAccountAmountResponses(report.Equity),
	}
	response.Totals.Assets = report.TotalAssets
	response.Totals.Liabilities = report.TotalLiabilities
	response.Totals.Equity = report.TotalEquity
	response.Totals.RetainedEarnings = report.RetainedEarnings
	return response
}

// ToBalanceResponses converts domain balances to response rows.
func ToBalanceResponses(balances []domain.Balance) []BalanceResponse {
	out := make([]BalanceResponse, len(balances))
	for i, b := range balances {
		out[i] = BalanceResponse{
			AccountID:   b.AccountID,
			Period:      b.Period.Format("2006-01-02"),
			DebitTotal:  b.DebitTotal,
			CreditTotal: b.CreditTotal,
		}
	}
	return out
}
