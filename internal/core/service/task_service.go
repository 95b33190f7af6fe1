package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/chamomile/taskboard/internal/api/metrics"
	"github.com/chamomile/taskboard/internal/core/domain"
	"github.com/chamomile/taskboard/internal/core/ports"
)

// TaskService implements the board operations. Every call is scoped to the
// authenticated owner id taken from the verified token, never from the client.
type TaskService struct {
	repo   ports.TaskRepository
	logger zerolog.Logger
}

func NewTaskService(repo ports.TaskRepository, logger zerolog.Logger) *TaskService {
	return &TaskService{repo: repo, logger: logger}
}

func (s *TaskService) List(ctx context.Context, ownerID int64) ([]domain.Task, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// Create sanitizes the inputs and stores a new task in the todo lane.
func (s *TaskService) Create(ctx context.Context, ownerID int64, title, description string) (*domain.Task, error) {
	title = sanitize(title, domain.MaxTitleLen)
	if title == "" {
		return nil, domain.ErrTitleRequired
	}

	task := &domain.Task{
		UserID:      ownerID,
		Title:       title,
		Description: sanitize(description, domain.MaxDescriptionLen),
		Status:      domain.StatusTodo,
	}

	created, err := s.repo.Create(ctx, task)
	if err != nil {
		return nil, err
	}

	metrics.TasksCreatedTotal.Inc()
	s.logger.Info().Int64("task_id", created.ID).Int64("user_id", ownerID).Msg("task created")
	return created, nil
}

// Update applies the supplied fields only. An empty update returns the task
// unchanged apart from the updated_at bump.
func (s *TaskService) Update(ctx context.Context, ownerID, taskID int64, update ports.TaskUpdate) (*domain.Task, error) {
	if update.Status != nil && !domain.TaskStatus(*update.Status).Valid() {
		return nil, domain.ErrInvalidStatus
	}
	if update.Title != nil {
		t := sanitize(*update.Title, domain.MaxTitleLen)
		if t == "" {
			return nil, domain.ErrTitleRequired
		}
		update.Title = &t
	}
	if update.Description != nil {
		d := sanitize(*update.Description, domain.MaxDescriptionLen)
		update.Description = &d
	}

	updated, err := s.repo.Update(ctx, taskID, ownerID, update)
	if err != nil {
		return nil, err
	}

	if update.Status != nil {
		metrics.TaskStatusChangesTotal.WithLabelValues(*update.Status).Inc()
	}
	s.logger.Info().Int64("task_id", taskID).Int64("user_id", ownerID).Msg("task updated")
	return updated, nil
}

func (s *TaskService) Delete(ctx context.Context, ownerID, taskID int64) error {
	if err := s.repo.Delete(ctx, taskID, ownerID); err != nil {
		return err
	}
	metrics.TasksDeletedTotal.Inc()
	s.logger.Info().Int64("task_id", taskID).Int64("user_id", ownerID).Msg("task deleted")
	return nil
}

// sanitize trims surrounding whitespace and caps the length in runes.
func sanitize(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) > max {
		runes = runes[:max]
	}
	return strings.TrimSpace(string(runes))
}
