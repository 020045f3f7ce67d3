package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pocketpilot/pocketpilot-backend/internal/domain"
	"github.com/pocketpilot/pocketpilot-backend/internal/usecase/ledger"
)

// fakeWriter records write calls and can be forced to fail
type fakeWriter struct {
	transactions []ledger.AddTransactionInput
	tasks        []ledger.CreateTaskInput
	failWith     error
}

func (f *fakeWriter) AddTransaction(_ context.Context, input ledger.AddTransactionInput) (*domain.Transaction, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.transactions = append(f.transactions, input)
	return &domain.Transaction{ID: uuid.New(), Title: input.Title, Amount: input.Amount, Type: input.Type, Date: input.Date}, nil
}

func (f *fakeWriter) CreateTask(_ context.Context, input ledger.CreateTaskInput) (*domain.Task, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.tasks = append(f.tasks, input)
	return &domain.Task{ID: uuid.New(), Title: input.Title, Status: domain.TaskStatusTodo}, nil
}

func TestExecutor_AddTransaction(t *testing.T) {
	writer := &fakeWriter{}
	executor := NewExecutor(writer)

	result := executor.Execute(context.Background(), ActionRequest{
		Name: ActionAddTransaction,
		Args: json.RawMessage(`{"title":"Lunch","amount":12,"category":"Food","type":"expense"}`),
	})

	assert.True(t, result.Success)
	assert.Equal(t, "Transaction added: Lunch", result.Message)
	require.Len(t, writer.transactions, 1)
	assert.Equal(t, "Lunch", writer.transactions[0].Title)
	assert.True(t, writer.transactions[0].Amount.Equal(decimal.NewFromInt(12)))
	assert.Equal(t, domain.TransactionTypeExpense, writer.transactions[0].Type)
	assert.False(t, writer.transactions[0].Date.IsZero(), "date should default to now")
}

func TestExecutor_AddTransactionWithExplicitDate(t *testing.T) {
	writer := &fakeWriter{}
	executor := NewExecutor(writer)

	result := executor.Execute(context.Background(), ActionRequest{
		Name: ActionAddTransaction,
		Args: json.RawMessage(`{"title":"Rent","amount":800,"category":"Housing","type":"expense","date":"2025-04-01"}`),
	})

	assert.True(t, result.Success)
	require.Len(t, writer.transactions, 1)
	assert.Equal(t, time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC), writer.transactions[0].Date)
}

func TestExecutor_AddTransactionValidation(t *testing.T) {
	tests := []struct {
		name   string
		args   string
		errMsg string
	}{
		{"missing title", `{"amount":5,"category":"Food","type":"expense"}`, "requires a title"},
		{"negative amount", `{"title":"x","amount":-5,"category":"Food","type":"expense"}`, "must not be negative"},
		{"bad type", `{"title":"x","amount":5,"category":"Food","type":"transfer"}`, "expense or income"},
		{"missing category", `{"title":"Lunch","amount":12,"type":"expense"}`, "requires a category"},
		{"bad date", `{"title":"x","amount":5,"category":"Food","type":"expense","date":"yesterday"}`, "invalid addTransaction date"},
		{"malformed json", `{"title":`, "invalid addTransaction arguments"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writer := &fakeWriter{}
			executor := NewExecutor(writer)

			result := executor.Execute(context.Background(), ActionRequest{
				Name: ActionAddTransaction,
				Args: json.RawMessage(tt.args),
			})

			assert.False(t, result.Success)
			assert.Contains(t, result.Message, "Error: ")
			assert.Contains(t, result.Message, tt.errMsg)
			assert.Empty(t, writer.transactions, "no write on validation failure")
		})
	}
}

func TestExecutor_CreateTask(t *testing.T) {
	writer := &fakeWriter{}
	executor := NewExecutor(writer)

	result := executor.Execute(context.Background(), ActionRequest{
		Name: ActionCreateTask,
		Args: json.RawMessage(`{"title":"Pay rent","amount":800,"dueDate":"2025-05-01","priority":"high"}`),
	})

	assert.True(t, result.Success)
	assert.Equal(t, "Task created: Pay rent", result.Message)
	require.Len(t, writer.tasks, 1)
	task := writer.tasks[0]
	assert.Equal(t, domain.TaskPriorityHigh, task.Priority)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC), *task.DueDate)
	require.NotNil(t, task.Amount)
	assert.True(t, task.Amount.Equal(decimal.NewFromInt(800)))
}

func TestExecutor_CreateTaskTitleOnly(t *testing.T) {
	writer := &fakeWriter{}
	executor := NewExecutor(writer)

	result := executor.Execute(context.Background(), ActionRequest{
		Name: ActionCreateTask,
		Args: json.RawMessage(`{"title":"Call the bank"}`),
	})

	assert.True(t, result.Success)
	require.Len(t, writer.tasks, 1)
	assert.Nil(t, writer.tasks[0].DueDate)
	assert.Nil(t, writer.tasks[0].Amount)
}

func TestExecutor_UnknownActionIsRejected(t *testing.T) {
	writer := &fakeWriter{}
	executor := NewExecutor(writer)

	result := executor.Execute(context.Background(), ActionRequest{
		Name: "deleteEverything",
		Args: json.RawMessage(`{}`),
	})

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, `unknown action "deleteEverything"`)
	assert.Empty(t, writer.transactions)
	assert.Empty(t, writer.tasks)
}

func TestExecutor_WriterErrorBecomesFailureResult(t *testing.T) {
	writer := &fakeWriter{failWith: errors.New("snapshot unavailable")}
	executor := NewExecutor(writer)

	result := executor.Execute(context.Background(), ActionRequest{
		Name: ActionAddTransaction,
		Args: json.RawMessage(`{"title":"Lunch","amount":12,"category":"Food","type":"expense"}`),
	})

	assert.False(t, result.Success)
	assert.Equal(t, "Error: snapshot unavailable", result.Message)
}
