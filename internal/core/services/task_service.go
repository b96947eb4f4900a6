package services

import (
	"context"
	"time"

	"github.com/comitanigiacomo/goalmate-engine/internal/core/domain"
)

type TaskService struct {
	repo domain.TaskRepository
	now  func() time.Time
}

func NewTaskService(repo domain.TaskRepository) *TaskService {
	return &TaskService{
		repo: repo,
		now:  time.Now,
	}
}

type CreateTaskInput struct {
	UserID      string
	Title       string
	Description string
	Category    string
	Priority    string
	DueDate     *time.Time
	Completed   bool
}

type UpdateTaskInput struct {
	ID     string
	UserID string
	Patch  domain.TaskPatch
}

func (s *TaskService) Create(ctx context.Context, input CreateTaskInput) (*domain.Task, error) {
	task, err := domain.NewTask(input.UserID, input.Title, input.Description, input.Category, input.Priority, input.DueDate)
	if err != nil {
		return nil, err
	}

	if input.Completed {
		done := true
		if err := task.Apply(domain.TaskPatch{Completed: &done}, s.now()); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, err
	}

	return task, nil
}

func (s *TaskService) List(ctx context.Context, userID string) ([]*domain.Task, error) {
	if userID == "" {
		return nil, domain.ErrTaskInvalidUserID
	}
	return s.repo.ListByUserID(ctx, userID)
}

// Get hides tasks of other users behind ErrTaskNotFound.
func (s *TaskService) Get(ctx context.Context, id, userID string) (*domain.Task, error) {
	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if task.UserID != userID {
		return nil, domain.ErrTaskNotFound
	}

	return task, nil
}

func (s *TaskService) Update(ctx context.Context, input UpdateTaskInput) (*domain.Task, error) {
	task, err := s.Get(ctx, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}

	if err := task.Apply(input.Patch, s.now()); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}

	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.Get(ctx, id, userID); err != nil {
		return err
	}

	return s.repo.Delete(ctx, id)
}

func (s *TaskService) Summary(ctx context.Context, userID string) (domain.TaskSummary, error) {
	total, completed, err := s.repo.CountByUserID(ctx, userID)
	if err != nil {
		return domain.TaskSummary{}, err
	}
	return domain.NewTaskSummary(total, completed), nil
}
