package domain

import (
	"context"

	"github.com/google/uuid"
)

// TransactionRepository defines the interface for transaction persistence operations
type TransactionRepository interface {
	// Create persists a new transaction
	Create(ctx context.Context, tx *Transaction) error

	// List retrieves transactions ordered newest-first
	List(ctx context.Context, limit, offset int) ([]*Transaction, error)

	// Delete removes a transaction by its ID
	Delete(ctx context.Context, id uuid.UUID) error
}

// TaskRepository defines the interface for task persistence operations
type TaskRepository interface {
	// Create persists a new task
	Create(ctx context.Context, task *Task) error

	// Update replaces the stored task with the given state
	Update(ctx context.Context, task *Task) error

	// List retrieves all tasks for the user
	List(ctx context.Context) ([]*Task, error)

	// Delete removes a task by its ID
	Delete(ctx context.Context, id uuid.UUID) error
}

// BudgetSettingsRepository defines the interface for the per-user budget row.
// There is exactly one row per user; Upsert inserts or replaces it.
type BudgetSettingsRepository interface {
	// Get retrieves the budget settings, or nil if none exist yet
	Get(ctx context.Context) (*BudgetSettings, error)

	// Upsert inserts or replaces the budget settings row
	Upsert(ctx context.Context, settings *BudgetSettings) error
}

// CategoryRepository defines the interface for category persistence operations
type CategoryRepository interface {
	// Create persists a new category
	Create(ctx context.Context, category *Category) error

	// GetByName retrieves a category by its unique name
	GetByName(ctx context.Context, name string) (*Category, error)

	// List retrieves all categories for the user
	List(ctx context.Context) ([]*Category, error)
}
