package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/goalmate-engine/internal/core/domain"
)

const (
	usersUsernameKey = "users_username_key"
	usersEmailKey    = "users_email_key"

	userColumns = `id, username, email, password_hash, is_verified,
		verification_token, reset_token, reset_token_expires, created_at, updated_at`
)

var _ domain.UserRepository = (*PostgresUserRepository)(nil)

type PostgresUserRepository struct {
	db *sqlx.DB
}

func NewPostgresUserRepository(db *sqlx.DB) *PostgresUserRepository {
	return &PostgresUserRepository{
		db: db,
	}
}

func mapUserWriteError(op string, err error) error {
	if constraint, ok := uniqueViolation(err); ok {
		switch constraint {
		case usersUsernameKey:
			return domain.ErrUsernameAlreadyExists
		case usersEmailKey:
			return domain.ErrEmailAlreadyExists
		}
	}
	return fmt.Errorf("repository: %s user failed: %w", op, err)
}

func (r *PostgresUserRepository) Create(ctx context.Context, user *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		INSERT INTO users (
			id, username, email, password_hash, is_verified,
			verification_token, reset_token, reset_token_expires, created_at, updated_at
		) VALUES (
			:id, :username, :email, :password_hash, :is_verified,
			:verification_token, :reset_token, :reset_token_expires, :created_at, :updated_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return mapUserWriteError("create", err)
	}

	return nil
}

func (r *PostgresUserRepository) getBy(ctx context.Context, column, value string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s = $1`, userColumns, column)

	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("repository: get user by %s failed: %w", column, err)
	}

	return &user, nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *PostgresUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getBy(ctx, "username", username)
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *PostgresUserRepository) GetByVerificationToken(ctx context.Context, token string) (*domain.User, error) {
	return r.getBy(ctx, "verification_token", token)
}

func (r *PostgresUserRepository) GetByResetToken(ctx context.Context, token string) (*domain.User, error) {
	return r.getBy(ctx, "reset_token", token)
}

func (r *PostgresUserRepository) Update(ctx context.Context, user *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		UPDATE users SET
			username = :username, email = :email, password_hash = :password_hash,
			is_verified = :is_verified, verification_token = :verification_token,
			reset_token = :reset_token, reset_token_expires = :reset_token_expires,
			updated_at = :updated_at
		WHERE id = :id`

	res, err := r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		return mapUserWriteError("update", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("repository: update user rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrUserNotFound
	}

	return nil
}
