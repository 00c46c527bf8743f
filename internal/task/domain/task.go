package domain

import (
	"fmt"
	"strings"
	"time"
)

// Priority represents task priority level
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ParsePriority accepts only the closed set of priorities.
func ParsePriority(s string) (Priority, error) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return p, nil
	default:
		return "", fmt.Errorf("%w: unknown priority %q", ErrInvalidTask, s)
	}
}

// TaskStatus represents the current state of a task
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
)

// ParseStatus accepts only the closed set of statuses.
func ParseStatus(s string) (TaskStatus, error) {
	switch st := TaskStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case TaskStatusPending, TaskStatusCompleted:
		return st, nil
	default:
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidTask, s)
	}
}

// ReminderState is the reminder lifecycle of a single task.
type ReminderState string

const (
	ReminderNone      ReminderState = "none"
	ReminderScheduled ReminderState = "scheduled"
	ReminderNotified  ReminderState = "notified"
)

// Task is a user-owned to-do item. JSON names follow the web client's contract.
type Task struct {
	ID           string     `json:"_id" gorm:"primaryKey"`
	UserID       string     `json:"user" gorm:"index;not null"`
	Title        string     `json:"title" gorm:"not null"`
	Description  string     `json:"description"`
	Priority     Priority   `json:"priority" gorm:"type:varchar(16);not null"`
	Status       TaskStatus `json:"status" gorm:"type:varchar(16);not null;default:pending"`
	DueDate      *time.Time `json:"dueDate" gorm:"index"`
	ReminderTime *time.Time `json:"reminderTime"`
	ReminderSent bool       `json:"reminderSent" gorm:"not null;default:false"`
	// ReminderGeneration changes only with the due date; the scheduler's mark is guarded by it.
	ReminderGeneration int `json:"-" gorm:"not null;default:0"`
	// Version is bumped on every write and rejects stale updates.
	Version   int       `json:"version" gorm:"not null;default:1"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SetDueDate starts a new reminder generation. A nil due date clears the reminder.
func (t *Task) SetDueDate(due *time.Time, offset time.Duration) {
	t.ReminderSent = false
	t.ReminderGeneration++
	if due == nil {
		t.DueDate = nil
		t.ReminderTime = nil
		return
	}
	d := due.UTC()
	r := d.Add(-offset)
	t.DueDate = &d
	t.ReminderTime = &r
}

func (t *Task) ReminderState() ReminderState {
	switch {
	case t.DueDate == nil:
		return ReminderNone
	case t.ReminderSent:
		return ReminderNotified
	default:
		return ReminderScheduled
	}
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == TaskStatusCompleted
}
