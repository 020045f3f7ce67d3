package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestTask_Validate(t *testing.T) {
	tests := []struct {
		name    string
		task    Task
		wantErr bool
		errMsg  string
	}{
		{
			name: "Valid task should pass",
			task: Task{
				ID:       uuid.New(),
				Title:    "Pay rent",
				Status:   TaskStatusTodo,
				Priority: TaskPriorityHigh,
			},
			wantErr: false,
		},
		{
			name: "Empty title should fail",
			task: Task{
				ID:       uuid.New(),
				Status:   TaskStatusTodo,
				Priority: TaskPriorityLow,
			},
			wantErr: true,
			errMsg:  "title cannot be empty",
		},
		{
			name: "Unknown status should fail",
			task: Task{
				ID:       uuid.New(),
				Title:    "Pay rent",
				Status:   TaskStatus("done"),
				Priority: TaskPriorityLow,
			},
			wantErr: true,
			errMsg:  "status must be",
		},
		{
			name: "Unknown priority should fail",
			task: Task{
				ID:       uuid.New(),
				Title:    "Pay rent",
				Status:   TaskStatusTodo,
				Priority: TaskPriority("urgent"),
			},
			wantErr: true,
			errMsg:  "priority must be",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.task.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTask_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    TaskStatus
		to      TaskStatus
		allowed bool
	}{
		{"todo to in-progress", TaskStatusTodo, TaskStatusInProgress, true},
		{"in-progress to completed", TaskStatusInProgress, TaskStatusCompleted, true},
		{"todo straight to completed is not allowed", TaskStatusTodo, TaskStatusCompleted, false},
		{"completed back to todo (reopen)", TaskStatusCompleted, TaskStatusTodo, true},
		{"in-progress back to todo", TaskStatusInProgress, TaskStatusTodo, true},
		{"completed to in-progress is not allowed", TaskStatusCompleted, TaskStatusInProgress, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := Task{Status: tt.from}
			assert.Equal(t, tt.allowed, task.CanTransitionTo(tt.to))
		})
	}
}
