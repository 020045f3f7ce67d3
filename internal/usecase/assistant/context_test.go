package assistant

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/pocketpilot/pocketpilot-backend/internal/adapter/snapshot"
	"github.com/pocketpilot/pocketpilot-backend/internal/domain"
)

var contextToday = time.Date(2025, time.April, 10, 12, 0, 0, 0, time.UTC)

func testExpense(title, category string, amount float64, date time.Time) *domain.Transaction {
	return &domain.Transaction{
		ID:       uuid.New(),
		Title:    title,
		Amount:   decimal.NewFromFloat(amount),
		Type:     domain.TransactionTypeExpense,
		Category: category,
		Date:     date,
	}
}

func hydrated(txs []*domain.Transaction, tasks []*domain.Task, categories []*domain.Category) *snapshot.Store {
	store := snapshot.NewStore()
	store.Hydrate(txs, tasks, nil, categories)
	return store
}

func TestBuildContext_SpendingSummaryAndProjection(t *testing.T) {
	// $100 over 10 days passed -> $10/day -> $300 projected for 30-day April.
	txs := []*domain.Transaction{
		testExpense("Groceries", "Food", 60, contextToday.AddDate(0, 0, -2)),
		testExpense("Cinema", "Fun", 40, contextToday.AddDate(0, 0, -5)),
	}

	out := BuildContext(hydrated(txs, nil, nil), contextToday)

	assert.Contains(t, out, "Spent this month: $100.00 over 10 days")
	assert.Contains(t, out, "Average daily spend: $10.00")
	assert.Contains(t, out, "Projected month-end spend: $300.00")
}

func TestBuildContext_CategoryBreakdownSortedWithLimits(t *testing.T) {
	limit := decimal.NewFromInt(200)
	categories := []*domain.Category{
		{ID: uuid.New(), Name: "Food", Type: domain.CategoryTypeVariable, BudgetedAmount: &limit},
		{ID: uuid.New(), Name: "Fun", Type: domain.CategoryTypeVariable},
	}
	txs := []*domain.Transaction{
		testExpense("Cinema", "Fun", 90, contextToday.AddDate(0, 0, -1)),
		testExpense("Groceries", "Food", 60, contextToday.AddDate(0, 0, -2)),
	}

	out := BuildContext(hydrated(txs, nil, categories), contextToday)

	funIdx := strings.Index(out, "Fun: $90.00")
	foodIdx := strings.Index(out, "Food: $60.00 (limit $200.00)")
	assert.Greater(t, funIdx, -1)
	assert.Greater(t, foodIdx, -1)
	assert.Less(t, funIdx, foodIdx, "categories should be sorted descending by amount")
}

func TestBuildContext_RecurringCandidates(t *testing.T) {
	txs := []*domain.Transaction{
		testExpense("Netflix", "Fun", 15, contextToday.AddDate(0, 0, -1)),
		testExpense("Netflix", "Fun", 15, contextToday.AddDate(0, -1, 0)),
		testExpense("Coffee", "Food", 4, contextToday.AddDate(0, 0, -3)),
	}

	out := BuildContext(hydrated(txs, nil, nil), contextToday)

	assert.Contains(t, out, "Netflix ($15.00) seen 2x")
	assert.NotContains(t, out, "Coffee ($4.00)")
}

func TestBuildContext_HardCaps(t *testing.T) {
	var txs []*domain.Transaction
	// 40 distinct recent transactions plus 8 recurring pairs.
	for i := 0; i < 40; i++ {
		txs = append(txs, testExpense(fmt.Sprintf("One-off %d", i), "Misc", float64(i+1), contextToday.AddDate(0, 0, -i)))
	}
	for i := 0; i < 8; i++ {
		for j := 0; j < 2; j++ {
			txs = append(txs, testExpense(fmt.Sprintf("Bill %d", i), "Bills", 10, contextToday.AddDate(0, -j, 0)))
		}
	}

	var tasks []*domain.Task
	for i := 0; i < 12; i++ {
		tasks = append(tasks, &domain.Task{
			ID:       uuid.New(),
			Title:    fmt.Sprintf("Task %d", i),
			Status:   domain.TaskStatusTodo,
			Priority: domain.TaskPriorityLow,
		})
	}

	out := BuildContext(hydrated(txs, tasks, nil), contextToday)

	assert.Equal(t, 5, strings.Count(out, "seen 2x"), "recurring candidates capped at 5")
	tasksSection := out[strings.Index(out, "=== PENDING TASKS ==="):]
	tasksSection = tasksSection[:strings.Index(tasksSection, "=== RECENT TRANSACTIONS ===")]
	assert.Equal(t, 5, strings.Count(tasksSection, "Task "), "pending tasks capped at 5")

	recentSection := out[strings.Index(out, "=== RECENT TRANSACTIONS ==="):]
	recentSection = recentSection[:strings.Index(recentSection, "INSTRUCTIONS")]
	lines := strings.Count(strings.TrimSpace(recentSection), "\n")
	assert.Equal(t, 10, lines, "recent transactions capped at 10")
}

func TestBuildContext_PendingTasksOnly(t *testing.T) {
	due := time.Date(2025, time.April, 20, 0, 0, 0, 0, time.UTC)
	amount := decimal.NewFromInt(800)
	tasks := []*domain.Task{
		{ID: uuid.New(), Title: "Pay rent", Status: domain.TaskStatusTodo, Priority: domain.TaskPriorityHigh, DueDate: &due, Amount: &amount},
		{ID: uuid.New(), Title: "Old chore", Status: domain.TaskStatusCompleted, Priority: domain.TaskPriorityLow},
	}

	out := BuildContext(hydrated(nil, tasks, nil), contextToday)

	assert.Contains(t, out, "Pay rent (due 2025-04-20) [$800.00]")
	assert.NotContains(t, out, "Old chore")
}

func TestBuildContext_EmptySnapshot(t *testing.T) {
	out := BuildContext(hydrated(nil, nil, nil), contextToday)

	assert.Contains(t, out, "=== SPENDING SUMMARY ===")
	assert.Contains(t, out, "No expenses recorded this month.")
	assert.Contains(t, out, "None detected.")
	assert.Contains(t, out, "INSTRUCTIONS:")
}

func TestBuildContext_IsDeterministic(t *testing.T) {
	txs := []*domain.Transaction{
		testExpense("Groceries", "Food", 60, contextToday.AddDate(0, 0, -2)),
		testExpense("Cinema", "Fun", 60, contextToday.AddDate(0, 0, -1)),
	}
	store := hydrated(txs, nil, nil)

	assert.Equal(t, BuildContext(store, contextToday), BuildContext(store, contextToday))
}
