package domain

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// ============================================================
// Snapshot: the financial records submitted by the app
// ============================================================

const (
	// DefaultCurrency is used when the snapshot carries no currency code.
	DefaultCurrency = "TRY"

	// DefaultCategory groups expenses that were saved without a category.
	DefaultCategory = "other"

	// ActiveDebtStatus is the status the mobile client stores on open debts ("active").
	ActiveDebtStatus = "نشط"
)

// Analysis types accepted by POST /api/ai/analyze.
// Only AnalysisFull has its own behaviour; the others run the full analysis.
const (
	AnalysisFull     = "full"
	AnalysisSpending = "spending"
	AnalysisSavings  = "savings"
	AnalysisForecast = "forecast"
	AnalysisTips     = "tips"
)

// ValidAnalysisType reports whether t is one of the known analysis types.
func ValidAnalysisType(t string) bool {
	switch t {
	case AnalysisFull, AnalysisSpending, AnalysisSavings, AnalysisForecast, AnalysisTips:
		return true
	}
	return false
}

// Expense is a single spending record. Unknown fields are ignored.
type Expense struct {
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category"`
}

// Income is a single income record.
type Income struct {
	Amount decimal.Decimal `json:"amount"`
	Source string          `json:"source"`
}

// Debt is an outstanding or settled debt.
type Debt struct {
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Status      string          `json:"status"`
}

// SavingsGoal tracks progress towards a savings target.
type SavingsGoal struct {
	CurrentAmount decimal.Decimal `json:"currentAmount"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
}

// RecurringExpense is a subscription-like expense that may be paused.
type RecurringExpense struct {
	Amount   decimal.Decimal `json:"amount"`
	IsActive bool            `json:"isActive"`
}

// FinancialSnapshot is everything the app sends for one analysis.
// Absent sequences decode as empty, absent amounts as zero.
type FinancialSnapshot struct {
	Expenses          []Expense          `json:"expenses"`
	Incomes           []Income           `json:"incomes"`
	Debts             []Debt             `json:"debts"`
	Budgets           []json.RawMessage  `json:"budgets"`
	SavingsGoals      []SavingsGoal      `json:"savings_goals"`
	RecurringExpenses []RecurringExpense `json:"recurring_expenses"`
	Currency          string             `json:"currency"`
}

// CurrencyCode returns the snapshot currency, defaulting to TRY.
func (s *FinancialSnapshot) CurrencyCode() string {
	if s.Currency == "" {
		return DefaultCurrency
	}
	return s.Currency
}

// AnalysisRequest is the body of POST /api/ai/analyze and POST /api/ai/tips.
type AnalysisRequest struct {
	FinancialData FinancialSnapshot `json:"financial_data"`
	AnalysisType  string            `json:"analysis_type,omitempty"`
}

// ============================================================
// Aggregates: derived per request, never stored
// ============================================================

// CategoryAmount is one entry of the category breakdown.
type CategoryAmount struct {
	Category string
	Amount   decimal.Decimal
}

// CategorySpending keeps the category breakdown in first-seen order.
// It serializes as a JSON object whose keys keep that order.
type CategorySpending []CategoryAmount

// MarshalJSON writes the breakdown as {"category": amount, ...}.
func (c CategorySpending) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(entry.Category)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(entry.Amount.String())
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Get returns the amount recorded for category.
func (c CategorySpending) Get(category string) (decimal.Decimal, bool) {
	for _, entry := range c {
		if entry.Category == category {
			return entry.Amount, true
		}
	}
	return decimal.Zero, false
}

// AggregateSummary holds the sums computed from a snapshot.
type AggregateSummary struct {
	TotalExpenses    decimal.Decimal
	TotalIncome      decimal.Decimal
	TotalActiveDebt  decimal.Decimal
	TotalSavings     decimal.Decimal
	TotalRecurring   decimal.Decimal
	CategorySpending CategorySpending
	ExpenseCount     int
	SavingsGoalCount int
}

// MonthlyBalance is income minus expenses.
func (s AggregateSummary) MonthlyBalance() decimal.Decimal {
	return s.TotalIncome.Sub(s.TotalExpenses)
}

// ============================================================
// AI results
// ============================================================

// Forecast is always computed locally, never taken from the model.
type Forecast struct {
	MonthlyBalance float64 `json:"monthly_balance"`
	SavingsRate    float64 `json:"savings_rate"`
	DebtRatio      float64 `json:"debt_ratio"`
}

// AnalysisResult is the response of POST /api/ai/analyze.
type AnalysisResult struct {
	Analysis         string           `json:"analysis"`
	Insights         []string         `json:"insights"`
	Recommendations  []string         `json:"recommendations"`
	Alerts           []string         `json:"alerts"`
	SpendingPatterns CategorySpending `json:"spending_patterns"`
	Forecast         Forecast         `json:"forecast"`
}

// TipsResult is the response of POST /api/ai/tips.
type TipsResult struct {
	Tips []string `json:"tips"`
}
