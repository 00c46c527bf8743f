package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskflow-backend/internal/task/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// gormTaskRepository implements TaskRepository using GORM
type gormTaskRepository struct {
	db *gorm.DB
}

// NewGormTaskRepository creates a new GORM-based TaskRepository
func NewGormTaskRepository(db *gorm.DB) TaskRepository {
	return &gormTaskRepository{db: db}
}

func (r *gormTaskRepository) Create(ctx context.Context, task *domain.Task) error {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now
	task.Version = 1
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *gormTaskRepository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	var task domain.Task
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return &task, nil
}

func (r *gormTaskRepository) FindByUserID(ctx context.Context, userID string, status *domain.TaskStatus, limit, offset int) ([]*domain.Task, error) {
	var tasks []*domain.Task

	query := r.db.WithContext(ctx).Model(&domain.Task{}).Where("user_id = ?", userID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (r *gormTaskRepository) Update(ctx context.Context, task *domain.Task) error {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&domain.Task{}).
		Where("id = ? AND version = ?", task.ID, task.Version).
		Updates(map[string]interface{}{
			"title":               task.Title,
			"description":         task.Description,
			"priority":            task.Priority,
			"status":              task.Status,
			"due_date":            task.DueDate,
			"reminder_time":       task.ReminderTime,
			"reminder_sent":       task.ReminderSent,
			"reminder_generation": task.ReminderGeneration,
			"version":             task.Version + 1,
			"updated_at":          now,
		})
	if res.Error != nil {
		return fmt.Errorf("update task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, task.ID); err != nil {
			return err
		}
		return domain.ErrVersionConflict
	}
	task.Version++
	task.UpdatedAt = now
	return nil
}

func (r *gormTaskRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&domain.Task{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *gormTaskRepository) FindDueForReminder(ctx context.Context, q DueQuery) ([]*domain.Task, error) {
	var tasks []*domain.Task

	query := r.db.WithContext(ctx).
		Where("due_date IS NOT NULL AND due_date <= ?", q.To.UTC()).
		Where("status <> ? AND reminder_sent = ?", domain.TaskStatusCompleted, false)
	if !q.IncludeOverdue {
		query = query.Where("due_date >= ?", q.From.UTC())
	}

	if err := query.Order("due_date ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("find due tasks: %w", err)
	}
	return tasks, nil
}

// MarkReminderSent still bumps version so a stale CRUD update cannot clear the flag.
func (r *gormTaskRepository) MarkReminderSent(ctx context.Context, id string, generation int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Task{}).
		Where("id = ? AND reminder_generation = ? AND reminder_sent = ?", id, generation, false).
		Updates(map[string]interface{}{
			"reminder_sent": true,
			"version":       gorm.Expr("version + 1"),
			"updated_at":    time.Now().UTC(),
		})
	if res.Error != nil {
		return false, fmt.Errorf("mark reminder sent: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}
