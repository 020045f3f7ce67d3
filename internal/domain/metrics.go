package domain

import "github.com/shopspring/decimal"

// BudgetHealth is a three-level qualitative budget status
type BudgetHealth string

const (
	BudgetHealthHealthy  BudgetHealth = "Healthy"
	BudgetHealthAtRisk   BudgetHealth = "At Risk"
	BudgetHealthCritical BudgetHealth = "Critical"
)

// FinancialMetrics is the derived snapshot for the current month and day.
// It is never persisted and never mutated in place: it is recomputed from
// scratch whenever budget settings, transactions or categories change.
type FinancialMetrics struct {
	TotalIncome           decimal.Decimal
	TotalFixedExpenses    decimal.Decimal
	TotalVariableExpenses decimal.Decimal
	TotalSavings          decimal.Decimal
	PocketMoneyPool       decimal.Decimal
	RemainingPocketMoney  decimal.Decimal
	DailyLimit            decimal.Decimal
	SpentToday            decimal.Decimal
	RemainingToday        decimal.Decimal // May be negative: signals overspend
	DaysRemaining         int
	BudgetHealth          BudgetHealth
}
