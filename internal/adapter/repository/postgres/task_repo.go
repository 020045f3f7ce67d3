package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/pocketpilot/pocketpilot-backend/internal/domain"
)

// taskRepository implements domain.TaskRepository
type taskRepository struct {
	db *DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *DB) domain.TaskRepository {
	return &taskRepository{db: db}
}

// Create persists a new task
func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	query := `
		INSERT INTO tasks (id, title, description, status, priority, due_date, recurring, tags, category, amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		string(task.Status),
		string(task.Priority),
		task.DueDate,
		task.Recurring,
		pq.Array(task.Tags),
		task.Category,
		nullableAmount(task.Amount),
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}

	return nil
}

// Update replaces the stored task with the given state
func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	query := `
		UPDATE tasks
		SET title = $2, description = $3, status = $4, priority = $5,
		    due_date = $6, recurring = $7, tags = $8, category = $9, amount = $10
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		string(task.Status),
		string(task.Priority),
		task.DueDate,
		task.Recurring,
		pq.Array(task.Tags),
		task.Category,
		nullableAmount(task.Amount),
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("task %s not found", task.ID)
	}

	return nil
}

// List retrieves all tasks for the user
func (r *taskRepository) List(ctx context.Context) ([]*domain.Task, error) {
	query := `
		SELECT id, title, description, status, priority, due_date, recurring, tags, category, amount
		FROM tasks
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}

	return tasks, nil
}

// Delete removes a task by its ID
func (r *taskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("task %s not found", id)
	}

	return nil
}

func scanTask(rows *sql.Rows) (*domain.Task, error) {
	var task domain.Task
	var dueDate sql.NullTime
	var amountStr sql.NullString
	var tags pq.StringArray

	if err := rows.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.Priority,
		&dueDate,
		&task.Recurring,
		&tags,
		&task.Category,
		&amountStr,
	); err != nil {
		return nil, fmt.Errorf("failed to scan task: %w", err)
	}

	if dueDate.Valid {
		due := dueDate.Time
		task.DueDate = &due
	}

	task.Tags = []string(tags)
	if task.Tags == nil {
		task.Tags = []string{}
	}

	if amountStr.Valid {
		amount, err := decimal.NewFromString(amountStr.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse task amount: %w", err)
		}
		task.Amount = &amount
	}

	return &task, nil
}

// nullableAmount maps a nil amount to NULL
func nullableAmount(amount *decimal.Decimal) interface{} {
	if amount == nil {
		return nil
	}
	return amount.String()
}
