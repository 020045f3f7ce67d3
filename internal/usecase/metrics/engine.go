// Package metrics derives the financial metrics snapshot from raw records.
// The computation is a pure function of its inputs and the supplied "today";
// it is cheap enough to rerun in full on every relevant state change, and it
// must be rerun in full because the daily limit and health thresholds are
// nonlinear in the inputs.
package metrics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pocketpilot/pocketpilot-backend/internal/domain"
)

// defaultSavingsPercent applies when no savings target has been configured.
var defaultSavingsPercent = decimal.NewFromInt(20)

var hundred = decimal.NewFromInt(100)

// Compute derives the FinancialMetrics snapshot for today's calendar month.
// Logic:
//  1. Sum actual income and actual fixed expenses for the current month
//  2. Resolve planned vs actual figures (fallback-to-actuals policy)
//  3. Derive savings target and the pocket-money pool
//  4. Spread the remaining pool over the remaining days of the month
//  5. Grade budget health from the remaining/total pool ratio
func Compute(settings *domain.BudgetSettings, txs []*domain.Transaction, categories []*domain.Category, today time.Time) domain.FinancialMetrics {
	if settings == nil {
		settings = domain.DefaultBudgetSettings()
	}

	year, month := today.Year(), today.Month()
	daysInMonth := time.Date(year, month+1, 0, 0, 0, 0, 0, today.Location()).Day()
	daysRemaining := daysInMonth - today.Day()
	if daysRemaining < 1 {
		daysRemaining = 1
	}

	categoryTypes := domain.CategoryTypeByName(categories)

	actualIncome := decimal.Zero
	actualFixedExpenses := decimal.Zero
	spentToday := decimal.Zero
	spentMonthTotal := decimal.Zero

	for _, tx := range txs {
		if !tx.OccursIn(year, month) {
			continue
		}

		switch tx.Type {
		case domain.TransactionTypeIncome:
			actualIncome = actualIncome.Add(tx.Amount)
		case domain.TransactionTypeExpense:
			spentMonthTotal = spentMonthTotal.Add(tx.Amount)
			if categoryTypes[tx.Category] == domain.CategoryTypeFixed {
				actualFixedExpenses = actualFixedExpenses.Add(tx.Amount)
			}
			if tx.OccursOn(today) {
				spentToday = spentToday.Add(tx.Amount)
			}
		}
	}

	totalIncome := resolveIncome(settings.MonthlySalary, actualIncome)
	totalFixedExpenses := resolveFixedExpenses(settings.PlannedFixedTotal(), actualFixedExpenses)
	totalVariableExpenses := settings.PlannedVariableTotal()

	savingsPercent := settings.SavingsTargetPercent
	if savingsPercent.IsZero() {
		savingsPercent = defaultSavingsPercent
	}
	totalSavings := totalIncome.Mul(savingsPercent).Div(hundred)

	pocketMoneyPool := clampToZero(totalIncome.Sub(totalFixedExpenses).Sub(totalVariableExpenses).Sub(totalSavings))
	remainingPocketMoney := clampToZero(pocketMoneyPool.Sub(spentMonthTotal))

	dailyLimit := remainingPocketMoney.Div(decimal.NewFromInt(int64(daysRemaining)))
	remainingToday := dailyLimit.Sub(spentToday)

	return domain.FinancialMetrics{
		TotalIncome:           totalIncome,
		TotalFixedExpenses:    totalFixedExpenses,
		TotalVariableExpenses: totalVariableExpenses,
		TotalSavings:          totalSavings,
		PocketMoneyPool:       pocketMoneyPool,
		RemainingPocketMoney:  remainingPocketMoney,
		DailyLimit:            dailyLimit,
		SpentToday:            spentToday,
		RemainingToday:        remainingToday,
		DaysRemaining:         daysRemaining,
		BudgetHealth:          gradeHealth(pocketMoneyPool, remainingPocketMoney),
	}
}

// resolveIncome applies the fallback-to-actuals policy: a configured salary
// wins; with no salary configured the month's actual income is used instead.
func resolveIncome(monthlySalary, actualIncome decimal.Decimal) decimal.Decimal {
	if monthlySalary.GreaterThan(decimal.Zero) {
		return monthlySalary
	}
	return actualIncome
}

// resolveFixedExpenses mirrors resolveIncome for the fixed expense side:
// planned fixed lines win; with none configured the month's actual fixed
// spend is used instead.
func resolveFixedExpenses(plannedFixed, actualFixed decimal.Decimal) decimal.Decimal {
	if plannedFixed.GreaterThan(decimal.Zero) {
		return plannedFixed
	}
	return actualFixed
}

// gradeHealth grades the budget from the remaining/total pool ratio:
// below 20% remaining is Critical, below 50% is At Risk, otherwise Healthy.
// A zero pool grades Healthy because both thresholds collapse to zero and
// remaining is clamped non-negative.
func gradeHealth(pool, remaining decimal.Decimal) domain.BudgetHealth {
	criticalThreshold := pool.Mul(decimal.NewFromFloat(0.2))
	atRiskThreshold := pool.Mul(decimal.NewFromFloat(0.5))

	switch {
	case remaining.LessThan(criticalThreshold):
		return domain.BudgetHealthCritical
	case remaining.LessThan(atRiskThreshold):
		return domain.BudgetHealthAtRisk
	default:
		return domain.BudgetHealthHealthy
	}
}

func clampToZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
