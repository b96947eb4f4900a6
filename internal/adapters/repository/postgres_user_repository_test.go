package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/goalmate-engine/internal/core/domain"
)

var userRowColumns = []string{
	"id", "username", "email", "password_hash", "is_verified",
	"verification_token", "reset_token", "reset_token_expires", "created_at", "updated_at",
}

func TestPostgresUserRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	defer func() { _ = db.Close() }()

	repo := NewPostgresUserRepository(db)
	ctx := context.Background()

	user, err := domain.NewUser("user-1", "alice", "alice@goalmate.test")
	require.NoError(t, err)

	tests := []struct {
		name    string
		dbErr   error
		wantErr error
	}{
		{name: "success"},
		{
			name:    "duplicate username via pgx",
			dbErr:   &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"},
			wantErr: domain.ErrUsernameAlreadyExists,
		},
		{
			name:    "duplicate email via lib/pq",
			dbErr:   &pq.Error{Code: "23505", Constraint: "users_email_key"},
			wantErr: domain.ErrEmailAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp := mock.ExpectExec("INSERT INTO users")
			if tt.dbErr != nil {
				exp.WillReturnError(tt.dbErr)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(0, 1))
			}

			err := repo.Create(ctx, user)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}

	t.Run("other unique violation is not misreported", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO users").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_pkey"})

		err := repo.Create(ctx, user)

		assert.NotErrorIs(t, err, domain.ErrEmailAlreadyExists)
		assert.ErrorContains(t, err, "create user failed")
	})
}

func TestPostgresUserRepository_Lookups(t *testing.T) {
	db, mock := setupMockDB(t)
	defer func() { _ = db.Close() }()

	repo := NewPostgresUserRepository(db)
	ctx := context.Background()
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

	row := func() *sqlmock.Rows {
		return sqlmock.NewRows(userRowColumns).AddRow(
			"user-1", "alice", "alice@goalmate.test", "$2a$12$hash", true,
			nil, "reset-tok", now.Add(time.Hour), now, now,
		)
	}

	lookups := []struct {
		name   string
		column string
		value  string
		call   func() (*domain.User, error)
	}{
		{"by id", "id", "user-1", func() (*domain.User, error) { return repo.GetByID(ctx, "user-1") }},
		{"by username", "username", "alice", func() (*domain.User, error) { return repo.GetByUsername(ctx, "alice") }},
		{"by email", "email", "alice@goalmate.test", func() (*domain.User, error) { return repo.GetByEmail(ctx, "alice@goalmate.test") }},
		{"by reset token", "reset_token", "reset-tok", func() (*domain.User, error) { return repo.GetByResetToken(ctx, "reset-tok") }},
	}

	for _, tt := range lookups {
		t.Run(tt.name, func(t *testing.T) {
			mock.ExpectQuery("SELECT .* FROM users WHERE " + tt.column + " = \\$1").
				WithArgs(tt.value).
				WillReturnRows(row())

			user, err := tt.call()

			require.NoError(t, err)
			assert.Equal(t, "alice", user.Username)
			assert.True(t, user.IsVerified)
			assert.Nil(t, user.VerificationToken)
			require.NotNil(t, user.ResetToken)
			assert.Equal(t, "reset-tok", *user.ResetToken)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}

	t.Run("missing verification token", func(t *testing.T) {
		mock.ExpectQuery("SELECT .* FROM users WHERE verification_token").
			WithArgs("nope").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByVerificationToken(ctx, "nope")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresUserRepository_Update(t *testing.T) {
	db, mock := setupMockDB(t)
	defer func() { _ = db.Close() }()

	repo := NewPostgresUserRepository(db)
	ctx := context.Background()
	user := &domain.User{ID: "user-1", Username: "alice", Email: "alice@goalmate.test"}

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec("UPDATE users SET").WillReturnResult(sqlmock.NewResult(0, 1))
		assert.NoError(t, repo.Update(ctx, user))
	})

	t.Run("missing user", func(t *testing.T) {
		mock.ExpectExec("UPDATE users SET").WillReturnResult(sqlmock.NewResult(0, 0))
		assert.ErrorIs(t, repo.Update(ctx, user), domain.ErrUserNotFound)
	})

	t.Run("email taken", func(t *testing.T) {
		mock.ExpectExec("UPDATE users SET").
			WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})
		assert.ErrorIs(t, repo.Update(ctx, user), domain.ErrEmailAlreadyExists)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
