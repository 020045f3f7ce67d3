// Package ledger is the write path for the records snapshot: every mutation
// validates, applies to the in-memory snapshot first (optimistic update),
// then issues a best-effort remote write. Remote failures are logged and
// reported to an observer hook, never retried and never rolled back, so the
// snapshot may transiently diverge from the remote store.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pocketpilot/pocketpilot-backend/internal/adapter/snapshot"
	"github.com/pocketpilot/pocketpilot-backend/internal/domain"
)

// DefaultTaskCategory applies when a task is created without one
const DefaultTaskCategory = "General"

// ErrNotFound is returned when a referenced record is missing from the snapshot
var ErrNotFound = errors.New("record not found")

// AddTransactionInput represents the input for recording a transaction
type AddTransactionInput struct {
	Title         string
	Amount        decimal.Decimal
	Type          domain.TransactionType
	Category      string
	Date          time.Time // Zero value defaults to now
	PaymentMethod string
	ReceiptRef    string
}

// CreateTaskInput represents the input for creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	Priority    domain.TaskPriority // Empty defaults to medium
	DueDate     *time.Time
	Amount      *decimal.Decimal
	Category    string // Empty defaults to DefaultTaskCategory
	Tags        []string
	Recurring   bool
}

// BudgetPatch is a partial update of the budget settings. Nil fields keep
// their current value.
type BudgetPatch struct {
	MonthlySalary        *decimal.Decimal
	SavingsTargetPercent *decimal.Decimal
	FixedExpenses        *[]domain.BudgetLine
	VariableExpenses     *[]domain.BudgetLine
	EmergencyFund        *decimal.Decimal
}

// WriteFailureHook observes best-effort remote write failures so the failure
// path stays visible (metrics, retry queue) instead of a bare log line.
type WriteFailureHook func(operation string, err error)

// Service handles all record mutations
type Service struct {
	store      *snapshot.Store
	txRepo     domain.TransactionRepository
	taskRepo   domain.TaskRepository
	budgetRepo domain.BudgetSettingsRepository
	catRepo    domain.CategoryRepository
	now        func() time.Time
	onFailure  WriteFailureHook
}

// NewService creates a new ledger Service instance
func NewService(
	store *snapshot.Store,
	txRepo domain.TransactionRepository,
	taskRepo domain.TaskRepository,
	budgetRepo domain.BudgetSettingsRepository,
	catRepo domain.CategoryRepository,
) *Service {
	return &Service{
		store:      store,
		txRepo:     txRepo,
		taskRepo:   taskRepo,
		budgetRepo: budgetRepo,
		catRepo:    catRepo,
		now:        time.Now,
		onFailure:  func(string, error) {},
	}
}

// SetWriteFailureHook installs the remote-write failure observer
func (s *Service) SetWriteFailureHook(hook WriteFailureHook) {
	if hook != nil {
		s.onFailure = hook
	}
}

// SetClock overrides the wall clock, for tests
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Store exposes the snapshot for read paths (metrics, context, reports)
func (s *Service) Store() *snapshot.Store {
	return s.store
}

// AddTransaction validates and records a transaction.
// Logic:
//  1. Build and validate the domain entity
//  2. Apply to the snapshot (optimistic)
//  3. Best-effort remote write, failure logged not rolled back
func (s *Service) AddTransaction(ctx context.Context, input AddTransactionInput) (*domain.Transaction, error) {
	date := input.Date
	if date.IsZero() {
		date = s.now()
	}

	tx := &domain.Transaction{
		ID:            uuid.New(),
		Title:         input.Title,
		Amount:        input.Amount,
		Type:          input.Type,
		Category:      input.Category,
		Date:          date,
		PaymentMethod: input.PaymentMethod,
		ReceiptRef:    input.ReceiptRef,
	}

	if err := tx.Validate(); err != nil {
		return nil, err
	}

	s.store.AddTransaction(tx)
	s.persist(ctx, "transaction.create", func(ctx context.Context) error {
		return s.txRepo.Create(ctx, tx)
	})

	return tx, nil
}

// DeleteTransaction removes a transaction from the snapshot and remote store
func (s *Service) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	if !s.store.RemoveTransaction(id) {
		return fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}

	s.persist(ctx, "transaction.delete", func(ctx context.Context) error {
		return s.txRepo.Delete(ctx, id)
	})
	return nil
}

// CreateTask validates and records a task with status todo
func (s *Service) CreateTask(ctx context.Context, input CreateTaskInput) (*domain.Task, error) {
	priority := input.Priority
	if priority == "" {
		priority = domain.TaskPriorityMedium
	}

	category := input.Category
	if category == "" {
		category = DefaultTaskCategory
	}

	tags := input.Tags
	if tags == nil {
		tags = []string{}
	}

	task := &domain.Task{
		ID:          uuid.New(),
		Title:       input.Title,
		Description: input.Description,
		Status:      domain.TaskStatusTodo,
		Priority:    priority,
		DueDate:     input.DueDate,
		Recurring:   input.Recurring,
		Tags:        tags,
		Category:    category,
		Amount:      input.Amount,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	s.store.AddTask(task)
	s.persist(ctx, "task.create", func(ctx context.Context) error {
		return s.taskRepo.Create(ctx, task)
	})

	return task, nil
}

// UpdateTaskStatus applies a status transition, rejecting illegal ones
func (s *Service) UpdateTaskStatus(ctx context.Context, id uuid.UUID, next domain.TaskStatus) (*domain.Task, error) {
	current := s.store.TaskByID(id)
	if current == nil {
		return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}

	if !current.CanTransitionTo(next) {
		return nil, fmt.Errorf("illegal task status transition %s -> %s", current.Status, next)
	}

	updated := *current
	updated.Status = next
	s.store.ReplaceTask(&updated)

	s.persist(ctx, "task.update", func(ctx context.Context) error {
		return s.taskRepo.Update(ctx, &updated)
	})

	return &updated, nil
}

// DeleteTask removes a task from the snapshot and remote store
func (s *Service) DeleteTask(ctx context.Context, id uuid.UUID) error {
	if !s.store.RemoveTask(id) {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}

	s.persist(ctx, "task.delete", func(ctx context.Context) error {
		return s.taskRepo.Delete(ctx, id)
	})
	return nil
}

// GetBudgetSettings returns the settings, lazily creating zero defaults on
// first access
func (s *Service) GetBudgetSettings(ctx context.Context) *domain.BudgetSettings {
	if settings := s.store.Settings(); settings != nil {
		return settings
	}

	settings := domain.DefaultBudgetSettings()
	s.store.SetSettings(settings)
	s.persist(ctx, "budget.upsert", func(ctx context.Context) error {
		return s.budgetRepo.Upsert(ctx, settings)
	})
	return settings
}

// UpdateBudgetSettings applies a partial merge onto the current settings
func (s *Service) UpdateBudgetSettings(ctx context.Context, patch BudgetPatch) (*domain.BudgetSettings, error) {
	merged := *s.GetBudgetSettings(ctx)

	if patch.MonthlySalary != nil {
		merged.MonthlySalary = *patch.MonthlySalary
	}
	if patch.SavingsTargetPercent != nil {
		merged.SavingsTargetPercent = *patch.SavingsTargetPercent
	}
	if patch.FixedExpenses != nil {
		merged.FixedExpenses = *patch.FixedExpenses
	}
	if patch.VariableExpenses != nil {
		merged.VariableExpenses = *patch.VariableExpenses
	}
	if patch.EmergencyFund != nil {
		merged.EmergencyFund = *patch.EmergencyFund
	}

	if err := merged.Validate(); err != nil {
		return nil, err
	}

	s.store.SetSettings(&merged)
	s.persist(ctx, "budget.upsert", func(ctx context.Context) error {
		return s.budgetRepo.Upsert(ctx, &merged)
	})

	return &merged, nil
}

// CreateCategory validates and records a category with a unique name
func (s *Service) CreateCategory(ctx context.Context, category *domain.Category) error {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}

	if err := category.Validate(); err != nil {
		return err
	}

	if s.store.CategoryByName(category.Name) != nil {
		return fmt.Errorf("category %q already exists", category.Name)
	}

	s.store.AddCategory(category)
	s.persist(ctx, "category.create", func(ctx context.Context) error {
		return s.catRepo.Create(ctx, category)
	})
	return nil
}

// persist runs a best-effort remote write. Failures keep the optimistic
// local state: they are logged and handed to the observer hook only.
func (s *Service) persist(ctx context.Context, operation string, write func(context.Context) error) {
	if err := write(ctx); err != nil {
		log.Printf("remote write failed (%s), keeping local state: %v", operation, err)
		s.onFailure(operation, err)
	}
}
