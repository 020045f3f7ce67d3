package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pocketpilot/pocketpilot-backend/internal/domain"
	"github.com/pocketpilot/pocketpilot-backend/internal/usecase/ledger"
)

// The closed set of actions the model is permitted to request. Anything else
// is rejected as a structured failure, never executed.
const (
	ActionAddTransaction = "addTransaction"
	ActionCreateTask     = "createTask"
)

// ActionRequest is a structured instruction from the model naming an action
// and its JSON-encoded arguments. ID carries the provider's tool-call id so
// the result can be matched back to the request.
type ActionRequest struct {
	ID   string
	Name string
	Args json.RawMessage
}

// ActionResult is the success-or-failure payload fed back into the loop.
// Execution never propagates errors past this type.
type ActionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// AddTransactionArgs are the validated arguments for addTransaction
type AddTransactionArgs struct {
	Title    string  `json:"title"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category"` // Required, like title/amount/type
	Type     string  `json:"type"`
	Date     string  `json:"date,omitempty"` // Optional, defaults to now
}

// CreateTaskArgs are the validated arguments for createTask
type CreateTaskArgs struct {
	Title    string   `json:"title"`
	Amount   *float64 `json:"amount,omitempty"`
	DueDate  string   `json:"dueDate,omitempty"`
	Priority string   `json:"priority,omitempty"`
}

// RecordWriter is the slice of the ledger write path the executor uses.
// Actions go through the same optimistic-update path as manual UI writes.
type RecordWriter interface {
	AddTransaction(ctx context.Context, input ledger.AddTransactionInput) (*domain.Transaction, error)
	CreateTask(ctx context.Context, input ledger.CreateTaskInput) (*domain.Task, error)
}

// Executor runs requested actions against the ledger write path
type Executor struct {
	writer RecordWriter
	now    func() time.Time
}

// NewExecutor creates a new Executor instance
func NewExecutor(writer RecordWriter) *Executor {
	return &Executor{
		writer: writer,
		now:    time.Now,
	}
}

// Execute runs one requested action and always returns a result payload.
// Unknown action names and validation failures become failure results; no
// error ever escapes to the caller.
func (e *Executor) Execute(ctx context.Context, req ActionRequest) ActionResult {
	switch req.Name {
	case ActionAddTransaction:
		return e.addTransaction(ctx, req.Args)
	case ActionCreateTask:
		return e.createTask(ctx, req.Args)
	default:
		return failure(fmt.Sprintf("unknown action %q", req.Name))
	}
}

func (e *Executor) addTransaction(ctx context.Context, rawArgs json.RawMessage) ActionResult {
	var args AddTransactionArgs
	if err := json.Unmarshal(rawArgs, &args); err != nil {
		return failure("invalid addTransaction arguments: " + err.Error())
	}

	if args.Title == "" {
		return failure("addTransaction requires a title")
	}
	if args.Amount < 0 {
		return failure("addTransaction amount must not be negative")
	}

	txType := domain.TransactionType(args.Type)
	if txType != domain.TransactionTypeExpense && txType != domain.TransactionTypeIncome {
		return failure("addTransaction type must be expense or income")
	}

	if args.Category == "" {
		return failure("addTransaction requires a category")
	}

	date := e.now()
	if args.Date != "" {
		parsed, err := parseDate(args.Date)
		if err != nil {
			return failure("invalid addTransaction date: " + err.Error())
		}
		date = parsed
	}

	_, err := e.writer.AddTransaction(ctx, ledger.AddTransactionInput{
		Title:    args.Title,
		Amount:   decimal.NewFromFloat(args.Amount),
		Type:     txType,
		Category: args.Category,
		Date:     date,
	})
	if err != nil {
		return failure(err.Error())
	}

	return ActionResult{Success: true, Message: "Transaction added: " + args.Title}
}

func (e *Executor) createTask(ctx context.Context, rawArgs json.RawMessage) ActionResult {
	var args CreateTaskArgs
	if err := json.Unmarshal(rawArgs, &args); err != nil {
		return failure("invalid createTask arguments: " + err.Error())
	}

	if args.Title == "" {
		return failure("createTask requires a title")
	}

	input := ledger.CreateTaskInput{Title: args.Title}

	if args.Priority != "" {
		priority := domain.TaskPriority(args.Priority)
		switch priority {
		case domain.TaskPriorityLow, domain.TaskPriorityMedium, domain.TaskPriorityHigh:
			input.Priority = priority
		default:
			return failure("createTask priority must be low, medium or high")
		}
	}

	if args.DueDate != "" {
		due, err := parseDate(args.DueDate)
		if err != nil {
			return failure("invalid createTask dueDate: " + err.Error())
		}
		input.DueDate = &due
	}

	if args.Amount != nil {
		if *args.Amount < 0 {
			return failure("createTask amount must not be negative")
		}
		amount := decimal.NewFromFloat(*args.Amount)
		input.Amount = &amount
	}

	_, err := e.writer.CreateTask(ctx, input)
	if err != nil {
		return failure(err.Error())
	}

	return ActionResult{Success: true, Message: "Task created: " + args.Title}
}

// parseDate accepts the formats models actually emit for dates
func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format %q", s)
}

func failure(reason string) ActionResult {
	return ActionResult{Success: false, Message: "Error: " + reason}
}
