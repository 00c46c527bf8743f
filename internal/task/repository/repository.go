package repository

import (
	"context"
	"time"

	"taskflow-backend/internal/task/domain"
)

// DueQuery selects tasks whose reminder is owed.
type DueQuery struct {
	From time.Time
	To   time.Time
	// IncludeOverdue drops the lower bound so past-due, never-notified tasks are picked up.
	IncludeOverdue bool
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(ctx context.Context, task *domain.Task) error

	// FindByID returns domain.ErrTaskNotFound when no row matches
	FindByID(ctx context.Context, id string) (*domain.Task, error)

	// FindByUserID lists a user's tasks, newest first
	FindByUserID(ctx context.Context, userID string, status *domain.TaskStatus, limit, offset int) ([]*domain.Task, error)

	// Update writes all mutable fields if task.Version still matches the stored row,
	// then bumps task.Version. Returns domain.ErrVersionConflict otherwise.
	Update(ctx context.Context, task *domain.Task) error

	// Delete deletes a task by ID
	Delete(ctx context.Context, id string) error

	// FindDueForReminder returns open, not-yet-notified tasks due inside the query window
	FindDueForReminder(ctx context.Context, q DueQuery) ([]*domain.Task, error)

	// MarkReminderSent sets reminder_sent if the row is still at the given reminder
	// generation and unmarked. It reports false when the due date was changed or an
	// earlier mark got there first. Edits that keep the due date do not block it.
	MarkReminderSent(ctx context.Context, id string, generation int) (bool, error)
}
