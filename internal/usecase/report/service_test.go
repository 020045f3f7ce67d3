package report

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pocketpilot/pocketpilot-backend/internal/adapter/snapshot"
	"github.com/pocketpilot/pocketpilot-backend/internal/domain"
)

var reportToday = time.Date(2025, time.April, 10, 12, 0, 0, 0, time.UTC)

func tx(title, category string, amount float64, txType domain.TransactionType, date time.Time) *domain.Transaction {
	return &domain.Transaction{
		ID:       uuid.New(),
		Title:    title,
		Amount:   decimal.NewFromFloat(amount),
		Type:     txType,
		Category: category,
		Date:     date,
	}
}

func storeWith(txs []*domain.Transaction, categories []*domain.Category) *snapshot.Store {
	store := snapshot.NewStore()
	store.Hydrate(txs, nil, nil, categories)
	return store
}

func TestMonthly(t *testing.T) {
	txs := []*domain.Transaction{
		tx("Salary", "Salary", 3000, domain.TransactionTypeIncome, reportToday.AddDate(0, 0, -9)),
		tx("Rent", "Housing", 800, domain.TransactionTypeExpense, reportToday.AddDate(0, 0, -8)),
		tx("Groceries", "Food", 120, domain.TransactionTypeExpense, reportToday.AddDate(0, 0, -3)),
		tx("Old rent", "Housing", 800, domain.TransactionTypeExpense, reportToday.AddDate(0, -1, 0)),
	}

	m := NewService(storeWith(txs, nil)).Monthly(2025, time.April)

	assert.True(t, m.Income.Equal(decimal.NewFromInt(3000)))
	assert.True(t, m.Expenses.Equal(decimal.NewFromInt(920)))
	assert.True(t, m.Net.Equal(decimal.NewFromInt(2080)))
	assert.Equal(t, 3, m.TransactionCount)
}

func TestCategoryDistribution(t *testing.T) {
	txs := []*domain.Transaction{
		tx("Rent", "Housing", 600, domain.TransactionTypeExpense, reportToday.AddDate(0, 0, -8)),
		tx("Groceries", "Food", 300, domain.TransactionTypeExpense, reportToday.AddDate(0, 0, -3)),
		tx("Coffee", "Food", 100, domain.TransactionTypeExpense, reportToday.AddDate(0, 0, -1)),
	}

	shares := NewService(storeWith(txs, nil)).CategoryDistribution(2025, time.April)

	require.Len(t, shares, 2)
	assert.Equal(t, "Housing", shares[0].Name)
	assert.True(t, shares[0].Amount.Equal(decimal.NewFromInt(600)))
	assert.True(t, shares[0].Percent.Equal(decimal.NewFromInt(60)))
	assert.Equal(t, "Food", shares[1].Name)
	assert.True(t, shares[1].Percent.Equal(decimal.NewFromInt(40)))
}

func TestSpendingTrend_ZeroFilled(t *testing.T) {
	txs := []*domain.Transaction{
		tx("Groceries", "Food", 50, domain.TransactionTypeExpense, time.Date(2025, time.April, 3, 0, 0, 0, 0, time.UTC)),
		tx("Coffee", "Food", 5, domain.TransactionTypeExpense, time.Date(2025, time.April, 3, 9, 0, 0, 0, time.UTC)),
	}

	trend := NewService(storeWith(txs, nil)).SpendingTrend(2025, time.April)

	require.Len(t, trend, 30)
	assert.True(t, trend[2].Amount.Equal(decimal.NewFromInt(55)), "day 3 total")
	assert.True(t, trend[0].Amount.IsZero())
	assert.True(t, trend[29].Amount.IsZero())
}

func TestSmartInsights_OverspendPaceAndLimit(t *testing.T) {
	limit := decimal.NewFromInt(100)
	categories := []*domain.Category{
		{ID: uuid.New(), Name: "Food", Type: domain.CategoryTypeVariable, BudgetedAmount: &limit},
	}
	txs := []*domain.Transaction{
		tx("Salary", "Salary", 1000, domain.TransactionTypeIncome, reportToday.AddDate(0, 0, -9)),
		tx("Groceries", "Food", 600, domain.TransactionTypeExpense, reportToday.AddDate(0, 0, -2)),
	}

	insights := NewService(storeWith(txs, categories)).SmartInsights(reportToday)

	require.NotEmpty(t, insights)
	// 600 over 10 days -> 1800 projected > 1000 income.
	assert.Contains(t, insights[0], "more than your $1000.00 income")
	assert.Contains(t, insights[1], "over its $100.00 limit")
}

func TestSmartInsights_ZeroSpendStreak(t *testing.T) {
	txs := []*domain.Transaction{
		tx("Groceries", "Food", 50, domain.TransactionTypeExpense, reportToday.AddDate(0, 0, -4)),
	}

	insights := NewService(storeWith(txs, nil)).SmartInsights(reportToday)

	found := false
	for _, line := range insights {
		if line == "4 days in a row without spending. Keep it up!" {
			found = true
		}
	}
	assert.True(t, found, "expected streak insight, got %v", insights)
}
