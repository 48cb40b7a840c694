package entities

import "github.com/shopspring/decimal"

// CategoryTotal is one line of the per-category breakdown
type CategoryTotal struct {
	Category string
	Total    decimal.Decimal
}

// LedgerSummaryItem is a single transaction shown in a summary
type LedgerSummaryItem struct {
	Date     string
	Category string
	Amount   decimal.Decimal
	Note     string
}

// LedgerSummary is the monthly report for one account or a family of accounts
type LedgerSummary struct {
	Title          string
	Month          string // YYYY-MM
	Family         bool
	Total          decimal.Decimal
	Count          int
	CategoryTotals []CategoryTotal // first-seen order
	Items          []LedgerSummaryItem
	Budget         decimal.Decimal
}

// Remaining returns the budget left after this month's spending
func (s *LedgerSummary) Remaining() decimal.Decimal {
	return s.Budget.Sub(s.Total)
}

// OverBudget reports whether spending exceeded a configured budget
func (s *LedgerSummary) OverBudget() bool {
	return s.Budget.IsPositive() && s.Total.GreaterThan(s.Budget)
}
