package domain

import (
	"context"
	"time"
)

type TaskRepository interface {
	// Create persists a new task.
	Create(ctx context.Context, task *Task) error

	// GetByID retrieves a task by its unique identifier.
	GetByID(ctx context.Context, id string) (*Task, error)

	// ListByUserID retrieves all tasks owned by a user, newest first.
	ListByUserID(ctx context.Context, userID string) ([]*Task, error)

	// Update overwrites the mutable fields of an existing task.
	Update(ctx context.Context, task *Task) error

	// Delete permanently removes a task.
	Delete(ctx context.Context, id string) error

	// ListCompletedSince returns the user's completed tasks whose activity time
	// (completed_at, falling back to created_at) is at or after since.
	ListCompletedSince(ctx context.Context, userID string, since time.Time) ([]*Task, error)

	// CountByUserID returns the number of tasks and completed tasks of a user.
	CountByUserID(ctx context.Context, userID string) (total int, completed int, err error)
}
