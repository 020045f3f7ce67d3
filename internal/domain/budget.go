package domain

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BudgetLine is one labelled planned amount inside the budget settings
// (e.g. {"Rent", 800} under fixed expenses). Order is user-defined.
type BudgetLine struct {
	Label  string
	Amount decimal.Decimal
}

// BudgetSettings is the per-user budget configuration. Exactly one row per
// user: created lazily with zero defaults on first access, updated via
// partial merge, never deleted.
type BudgetSettings struct {
	ID                   uuid.UUID
	MonthlySalary        decimal.Decimal
	SavingsTargetPercent decimal.Decimal // 0-100
	FixedExpenses        []BudgetLine
	VariableExpenses     []BudgetLine
	EmergencyFund        decimal.Decimal
}

// Validate ensures the budget settings adhere to domain rules
func (b *BudgetSettings) Validate() error {
	if b.MonthlySalary.IsNegative() {
		return errors.New("monthly salary must not be negative")
	}

	if b.SavingsTargetPercent.IsNegative() || b.SavingsTargetPercent.GreaterThan(decimal.NewFromInt(100)) {
		return errors.New("savings target percent must be between 0 and 100")
	}

	for _, line := range b.FixedExpenses {
		if line.Amount.IsNegative() {
			return errors.New("fixed expense amount must not be negative")
		}
	}

	for _, line := range b.VariableExpenses {
		if line.Amount.IsNegative() {
			return errors.New("variable expense amount must not be negative")
		}
	}

	return nil
}

// PlannedFixedTotal sums the planned fixed expense lines.
func (b *BudgetSettings) PlannedFixedTotal() decimal.Decimal {
	return sumLines(b.FixedExpenses)
}

// PlannedVariableTotal sums the planned variable expense lines.
func (b *BudgetSettings) PlannedVariableTotal() decimal.Decimal {
	return sumLines(b.VariableExpenses)
}

func sumLines(lines []BudgetLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Amount)
	}
	return total
}

// DefaultBudgetSettings returns the zero-valued settings created lazily
// when a user has never configured a budget.
func DefaultBudgetSettings() *BudgetSettings {
	return &BudgetSettings{
		ID:                   uuid.New(),
		MonthlySalary:        decimal.Zero,
		SavingsTargetPercent: decimal.Zero,
		FixedExpenses:        []BudgetLine{},
		VariableExpenses:     []BudgetLine{},
		EmergencyFund:        decimal.Zero,
	}
}
