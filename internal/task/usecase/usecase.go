package usecase

import (
	"context"

	"taskflow-backend/internal/task/domain"
)

// TaskUsecase defines the interface for task business logic
type TaskUsecase interface {
	// CreateTask creates a new task owned by userID
	CreateTask(ctx context.Context, userID string, req CreateTaskRequest) (*domain.Task, error)

	// GetTaskByID retrieves a task by ID (with ownership check)
	GetTaskByID(ctx context.Context, userID, taskID string) (*domain.Task, error)

	// GetUserTasks retrieves all tasks for a user with optional status filter
	GetUserTasks(ctx context.Context, userID string, status *string, limit, offset int) ([]*domain.Task, error)

	// UpdateTask applies the non-nil fields of updates
	UpdateTask(ctx context.Context, userID, taskID string, updates TaskUpdateRequest) (*domain.Task, error)

	// DeleteTask deletes a task
	DeleteTask(ctx context.Context, userID, taskID string) error
}

// CreateTaskRequest is the payload for a new task. DueDate is RFC3339.
type CreateTaskRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Priority    string  `json:"priority"`
	Status      string  `json:"status"`
	DueDate     *string `json:"dueDate"`
}

// TaskUpdateRequest represents the fields that can be updated.
// A nil field is left unchanged; an empty DueDate clears it.
type TaskUpdateRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	DueDate     *string `json:"dueDate,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	Status      *string `json:"status,omitempty"`
}
