package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/goalmate-engine/internal/core/domain"
)

const taskColumns = `id, user_id, title, description, category, due_date,
	completed, priority, completed_at, created_at, updated_at`

var _ domain.TaskRepository = (*PostgresTaskRepository)(nil)

type PostgresTaskRepository struct {
	db *sqlx.DB
}

func NewPostgresTaskRepository(db *sqlx.DB) *PostgresTaskRepository {
	return &PostgresTaskRepository{db: db}
}

func (r *PostgresTaskRepository) Create(ctx context.Context, t *domain.Task) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		INSERT INTO tasks (
			id, user_id, title, description, category, due_date,
			completed, priority, completed_at, created_at, updated_at
		) VALUES (
			:id, :user_id, :title, :description, :category, :due_date,
			:completed, :priority, :completed_at, :created_at, :updated_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, t); err != nil {
		return fmt.Errorf("repository: failed to insert task: %w", err)
	}

	return nil
}

func (r *PostgresTaskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE id = $1`, taskColumns)

	var t domain.Task
	if err := r.db.GetContext(ctx, &t, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("repository: get task failed: %w", err)
	}

	return &t, nil
}

func (r *PostgresTaskRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := fmt.Sprintf(`
		SELECT %s FROM tasks
		WHERE user_id = $1
		ORDER BY created_at DESC`, taskColumns)

	tasks := []*domain.Task{}
	if err := r.db.SelectContext(ctx, &tasks, query, userID); err != nil {
		return nil, fmt.Errorf("repository: list tasks failed: %w", err)
	}

	return tasks, nil
}

func (r *PostgresTaskRepository) Update(ctx context.Context, t *domain.Task) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		UPDATE tasks SET
			title = :title, description = :description, category = :category,
			due_date = :due_date, completed = :completed, priority = :priority,
			completed_at = :completed_at, updated_at = :updated_at
		WHERE id = :id`

	res, err := r.db.NamedExecContext(ctx, query, t)
	if err != nil {
		return fmt.Errorf("repository: update task failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("repository: update task rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrTaskNotFound
	}

	return nil
}

func (r *PostgresTaskRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: delete task failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrTaskNotFound
	}

	return nil
}

func (r *PostgresTaskRepository) ListCompletedSince(ctx context.Context, userID string, since time.Time) ([]*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := fmt.Sprintf(`
		SELECT %s FROM tasks
		WHERE user_id = $1
		  AND completed = TRUE
		  AND COALESCE(completed_at, created_at) >= $2
		ORDER BY COALESCE(completed_at, created_at) ASC`, taskColumns)

	tasks := []*domain.Task{}
	if err := r.db.SelectContext(ctx, &tasks, query, userID, since); err != nil {
		return nil, fmt.Errorf("repository: list completed tasks failed: %w", err)
	}

	return tasks, nil
}

func (r *PostgresTaskRepository) CountByUserID(ctx context.Context, userID string) (int, int, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT COUNT(*) AS total,
		       COUNT(*) FILTER (WHERE completed) AS completed
		FROM tasks
		WHERE user_id = $1`

	var counts struct {
		Total     int `db:"total"`
		Completed int `db:"completed"`
	}
	if err := r.db.GetContext(ctx, &counts, query, userID); err != nil {
		return 0, 0, fmt.Errorf("repository: count tasks failed: %w", err)
	}

	return counts.Total, counts.Completed, nil
}
