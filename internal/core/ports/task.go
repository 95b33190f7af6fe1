package ports

import (
	"context"

	"github.com/chamomile/taskboard/internal/core/domain"
)

// TaskUpdate carries a partial update: only non-nil fields are applied.
type TaskUpdate struct {
	Title       *string
	Description *string
	Status      *string
}

// Empty reports whether the update changes nothing.
func (u TaskUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Status == nil
}

// TaskRepository defines persistence operations for tasks. Every query takes
// the owner's id so a task is never visible outside its owner's scope.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	// ListByOwner returns the owner's tasks, newest first.
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.Task, error)
	FindByID(ctx context.Context, id, ownerID int64) (*domain.Task, error)
	// Update applies the non-nil fields and bumps updated_at. Returns
	// domain.ErrTaskNotFound when no task matched id+owner.
	Update(ctx context.Context, id, ownerID int64, update TaskUpdate) (*domain.Task, error)
	// Delete returns domain.ErrTaskNotFound when no task matched id+owner.
	Delete(ctx context.Context, id, ownerID int64) error
	// DeleteByOwner removes every task owned by ownerID (account cascade).
	DeleteByOwner(ctx context.Context, ownerID int64) error
}

// TaskService implements the board operations for one authenticated user.
type TaskService interface {
	List(ctx context.Context, ownerID int64) ([]domain.Task, error)
	Create(ctx context.Context, ownerID int64, title, description string) (*domain.Task, error)
	Update(ctx context.Context, ownerID, taskID int64, update TaskUpdate) (*domain.Task, error)
	Delete(ctx context.Context, ownerID, taskID int64) error
}
