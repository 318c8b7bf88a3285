package service

import (
	"github.com/boddenberg/masrofi-bfa-go/internal/domain"

	"github.com/shopspring/decimal"
)

// Aggregate reduces a snapshot to its sums and category breakdown.
// It never fails; negative amounts are summed as given.
func Aggregate(s *domain.FinancialSnapshot) domain.AggregateSummary {
	summary := domain.AggregateSummary{
		TotalExpenses:    decimal.Zero,
		TotalIncome:      decimal.Zero,
		TotalActiveDebt:  decimal.Zero,
		TotalSavings:     decimal.Zero,
		TotalRecurring:   decimal.Zero,
		CategorySpending: domain.CategorySpending{},
		ExpenseCount:     len(s.Expenses),
		SavingsGoalCount: len(s.SavingsGoals),
	}

	index := make(map[string]int)
	for _, e := range s.Expenses {
		summary.TotalExpenses = summary.TotalExpenses.Add(e.Amount)

		category := e.Category
		if category == "" {
			category = domain.DefaultCategory
		}
		if i, ok := index[category]; ok {
			summary.CategorySpending[i].Amount = summary.CategorySpending[i].Amount.Add(e.Amount)
			continue
		}
		index[category] = len(summary.CategorySpending)
		summary.CategorySpending = append(summary.CategorySpending, domain.CategoryAmount{
			Category: category,
			Amount:   e.Amount,
		})
	}

	for _, in := range s.Incomes {
		summary.TotalIncome = summary.TotalIncome.Add(in.Amount)
	}

	for _, d := range s.Debts {
		if d.Status == domain.ActiveDebtStatus {
			summary.TotalActiveDebt = summary.TotalActiveDebt.Add(d.TotalAmount)
		}
	}

	for _, g := range s.SavingsGoals {
		summary.TotalSavings = summary.TotalSavings.Add(g.CurrentAmount)
	}

	for _, r := range s.RecurringExpenses {
		if r.IsActive {
			summary.TotalRecurring = summary.TotalRecurring.Add(r.Amount)
		}
	}

	return summary
}
