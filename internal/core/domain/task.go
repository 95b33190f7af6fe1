package domain

import (
	"errors"
	"time"
)

// TaskStatus represents the lane a task sits in on the board.
type TaskStatus string

const (
	StatusTodo  TaskStatus = "todo"
	StatusDoing TaskStatus = "doing"
	StatusDone  TaskStatus = "done"
)

const (
	// MaxTitleLen and MaxDescriptionLen cap stored string lengths.
	MaxTitleLen       = 200
	MaxDescriptionLen = 1000
)

var (
	ErrTaskNotFound  = errors.New("task not found")
	ErrTitleRequired = errors.New("task title is required")
	ErrInvalidStatus = errors.New("invalid status, must be: todo, doing, or done")
	ErrInvalidTaskID = errors.New("invalid task id")
)

// Valid reports whether s is one of the three board lanes.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusDoing, StatusDone:
		return true
	}
	return false
}

// Task is a single board item owned by exactly one user.
type Task struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      TaskStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
