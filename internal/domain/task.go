package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TaskStatus represents the lifecycle state of a task
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// TaskPriority represents how urgent a task is
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// Task represents a to-do item owned by one user. Tasks created from the
// assistant or note extraction may carry an associated money amount.
type Task struct {
	ID          uuid.UUID
	Title       string
	Description string
	Status      TaskStatus
	Priority    TaskPriority
	DueDate     *time.Time
	Recurring   bool
	Tags        []string
	Category    string
	Amount      *decimal.Decimal // Optional associated amount (e.g. "pay rent")
}

// Validate ensures the task adheres to domain rules
func (t *Task) Validate() error {
	if t.Title == "" {
		return errors.New("task title cannot be empty")
	}

	switch t.Status {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusCompleted:
	default:
		return errors.New("task status must be todo, in-progress or completed")
	}

	switch t.Priority {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
	default:
		return errors.New("task priority must be low, medium or high")
	}

	if t.Amount != nil && t.Amount.IsNegative() {
		return errors.New("task amount must not be negative")
	}

	return nil
}

// CanTransitionTo reports whether a status change is legal.
// Allowed: todo -> in-progress -> completed, and any state back to todo.
func (t *Task) CanTransitionTo(next TaskStatus) bool {
	if next == TaskStatusTodo {
		return true
	}

	switch t.Status {
	case TaskStatusTodo:
		return next == TaskStatusInProgress
	case TaskStatusInProgress:
		return next == TaskStatusCompleted
	default:
		return false
	}
}

// IsPending reports whether the task still needs attention.
func (t *Task) IsPending() bool {
	return t.Status != TaskStatusCompleted
}
