package domain

import (
	"github.com/shopspring/decimal"
)

// TrialBalanceRow represents a single account row in a trial balance report.
type TrialBalanceRow struct {
	AccountID   string          `json:"accountID"`
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	AccountType AccountType     `json:"accountType"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// AccountAmount represents an account with its net amount for financial
// reports. Repositories fill NetAmount with the raw debit minus credit sum;
// the report engine re-signs it for the section the account reports under, so
// contra accounts appear negative within the section they offset.
type AccountAmount struct {
	AccountID   string          `json:"accountID"`
	AccountCode string          `json:"accountCode"`
	Name        string          `json:"name"`
	AccountType AccountType     `json:"accountType"`
	NetAmount   decimal.Decimal `json:"netAmount"`
}

// IncomeStatementReport represents a profit and loss report over a period.
type IncomeStatementReport struct {
	Income       []AccountAmount `json:"income"`
	Expenses     []AccountAmount `json:"expenses"`
	TotalIncome  decimal.Decimal `json:"totalIncome"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
	Net          decimal.Decimal `json:"net"` // Total income minus total expense
}

// BalanceSheetReport represents a balance sheet snapshot.
// RetainedEarnings is cumulative income minus expense up to the as-of date and
// is counted inside TotalEquity.
type BalanceSheetReport struct {
	Assets           []AccountAmount `json:"assets"`
	Liabilities      []AccountAmount `json:"liabilities"`
	Equity           []AccountAmount `json:"equity"`
	RetainedEarnings decimal.Decimal `json:"retainedEarnings"`
	TotalAssets      decimal.Decimal `json:"totalAssets"`
	TotalLiabilities decimal.Decimal `json:"totalLiabilities"`
	TotalEquity      decimal.Decimal `json:"totalEquity"`
}
