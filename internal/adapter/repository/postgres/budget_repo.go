package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/pocketpilot/pocketpilot-backend/internal/domain"
)

// budgetSettingsRepository implements domain.BudgetSettingsRepository
type budgetSettingsRepository struct {
	db *DB
}

// NewBudgetSettingsRepository creates a new budget settings repository
func NewBudgetSettingsRepository(db *DB) domain.BudgetSettingsRepository {
	return &budgetSettingsRepository{db: db}
}

// budgetLineRow is the JSON shape of one planned expense line
type budgetLineRow struct {
	Label  string `json:"label"`
	Amount string `json:"amount"`
}

// Get retrieves the budget settings row, or nil if none exists yet
func (r *budgetSettingsRepository) Get(ctx context.Context) (*domain.BudgetSettings, error) {
	query := `
		SELECT id, monthly_salary, savings_target_percent, fixed_expenses, variable_expenses, emergency_fund
		FROM budget_settings
		LIMIT 1
	`

	var settings domain.BudgetSettings
	var salaryStr, percentStr, emergencyStr string
	var fixedJSON, variableJSON []byte

	err := r.db.QueryRowContext(ctx, query).Scan(
		&settings.ID,
		&salaryStr,
		&percentStr,
		&fixedJSON,
		&variableJSON,
		&emergencyStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get budget settings: %w", err)
	}

	if settings.MonthlySalary, err = decimal.NewFromString(salaryStr); err != nil {
		return nil, fmt.Errorf("failed to parse monthly_salary: %w", err)
	}
	if settings.SavingsTargetPercent, err = decimal.NewFromString(percentStr); err != nil {
		return nil, fmt.Errorf("failed to parse savings_target_percent: %w", err)
	}
	if settings.EmergencyFund, err = decimal.NewFromString(emergencyStr); err != nil {
		return nil, fmt.Errorf("failed to parse emergency_fund: %w", err)
	}

	if settings.FixedExpenses, err = decodeLines(fixedJSON); err != nil {
		return nil, fmt.Errorf("failed to parse fixed_expenses: %w", err)
	}
	if settings.VariableExpenses, err = decodeLines(variableJSON); err != nil {
		return nil, fmt.Errorf("failed to parse variable_expenses: %w", err)
	}

	return &settings, nil
}

// Upsert inserts or replaces the single budget settings row
func (r *budgetSettingsRepository) Upsert(ctx context.Context, settings *domain.BudgetSettings) error {
	fixedJSON, err := encodeLines(settings.FixedExpenses)
	if err != nil {
		return fmt.Errorf("failed to encode fixed_expenses: %w", err)
	}
	variableJSON, err := encodeLines(settings.VariableExpenses)
	if err != nil {
		return fmt.Errorf("failed to encode variable_expenses: %w", err)
	}

	query := `
		INSERT INTO budget_settings (id, monthly_salary, savings_target_percent, fixed_expenses, variable_expenses, emergency_fund)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET monthly_salary = EXCLUDED.monthly_salary,
		    savings_target_percent = EXCLUDED.savings_target_percent,
		    fixed_expenses = EXCLUDED.fixed_expenses,
		    variable_expenses = EXCLUDED.variable_expenses,
		    emergency_fund = EXCLUDED.emergency_fund
	`

	_, err = r.db.ExecContext(ctx, query,
		settings.ID,
		settings.MonthlySalary.String(),
		settings.SavingsTargetPercent.String(),
		fixedJSON,
		variableJSON,
		settings.EmergencyFund.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert budget settings: %w", err)
	}

	return nil
}

func encodeLines(lines []domain.BudgetLine) ([]byte, error) {
	rows := make([]budgetLineRow, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, budgetLineRow{Label: line.Label, Amount: line.Amount.String()})
	}
	return json.Marshal(rows)
}

func decodeLines(data []byte) ([]domain.BudgetLine, error) {
	var rows []budgetLineRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}

	lines := make([]domain.BudgetLine, 0, len(rows))
	for _, row := range rows {
		amount, err := decimal.NewFromString(row.Amount)
		if err != nil {
			return nil, err
		}
		lines = append(lines, domain.BudgetLine{Label: row.Label, Amount: amount})
	}
	return lines, nil
}
