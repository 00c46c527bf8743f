package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"taskflow-backend/internal/task/domain"
	"taskflow-backend/internal/task/repository"

	"go.uber.org/zap"
)

// taskUsecase implements TaskUsecase interface
type taskUsecase struct {
	taskRepo       repository.TaskRepository
	reminderOffset time.Duration
	logger         *zap.Logger
}

// NewTaskUsecase creates a new instance of taskUsecase.
// reminderOffset is how long before the due date the reminder fires.
func NewTaskUsecase(taskRepo repository.TaskRepository, reminderOffset time.Duration, logger *zap.Logger) TaskUsecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &taskUsecase{
		taskRepo:       taskRepo,
		reminderOffset: reminderOffset,
		logger:         logger,
	}
}

func (u *taskUsecase) CreateTask(ctx context.Context, userID string, req CreateTaskRequest) (*domain.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" || strings.TrimSpace(req.Priority) == "" {
		return nil, domain.ErrMissingRequiredFields
	}

	priority, err := domain.ParsePriority(req.Priority)
	if err != nil {
		return nil, err
	}

	status := domain.TaskStatusPending
	if req.Status != "" {
		if status, err = domain.ParseStatus(req.Status); err != nil {
			return nil, err
		}
	}

	task := &domain.Task{
		UserID:      userID,
		Title:       title,
		Description: req.Description,
		Priority:    priority,
		Status:      status,
	}

	due, err := parseDueDate(req.DueDate)
	if err != nil {
		return nil, err
	}
	task.SetDueDate(due, u.reminderOffset)

	if err := u.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (u *taskUsecase) GetTaskByID(ctx context.Context, userID, taskID string) (*domain.Task, error) {
	task, err := u.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.UserID != userID {
		return nil, domain.ErrNotAuthorized
	}
	return task, nil
}

func (u *taskUsecase) GetUserTasks(ctx context.Context, userID string, status *string, limit, offset int) ([]*domain.Task, error) {
	var statusFilter *domain.TaskStatus
	if status != nil && *status != "" {
		s, err := domain.ParseStatus(*status)
		if err != nil {
			return nil, err
		}
		statusFilter = &s
	}
	return u.taskRepo.FindByUserID(ctx, userID, statusFilter, limit, offset)
}

func (u *taskUsecase) UpdateTask(ctx context.Context, userID, taskID string, updates TaskUpdateRequest) (*domain.Task, error) {
	task, err := u.GetTaskByID(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	if updates.Title != nil {
		title := strings.TrimSpace(*updates.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", domain.ErrInvalidTask)
		}
		task.Title = title
	}
	if updates.Description != nil {
		task.Description = *updates.Description
	}
	if updates.Priority != nil {
		if task.Priority, err = domain.ParsePriority(*updates.Priority); err != nil {
			return nil, err
		}
	}
	if updates.Status != nil {
		if task.Status, err = domain.ParseStatus(*updates.Status); err != nil {
			return nil, err
		}
	}
	if updates.DueDate != nil {
		due, err := parseDueDate(updates.DueDate)
		if err != nil {
			return nil, err
		}
		if !sameInstant(task.DueDate, due) {
			task.SetDueDate(due, u.reminderOffset)
			u.logger.Debug("reminder generation reset",
				zap.String("task_id", task.ID),
				zap.String("state", string(task.ReminderState())))
		}
	}

	if err := u.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (u *taskUsecase) DeleteTask(ctx context.Context, userID, taskID string) error {
	task, err := u.GetTaskByID(ctx, userID, taskID)
	if err != nil {
		return err
	}
	return u.taskRepo.Delete(ctx, task.ID)
}

// parseDueDate treats nil and "" as "no due date".
func parseDueDate(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(*raw))
	if err != nil {
		return nil, fmt.Errorf("%w: dueDate must be RFC3339", domain.ErrInvalidTask)
	}
	return &t, nil
}

func sameInstant(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
