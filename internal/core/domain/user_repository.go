package domain

import "context"

type UserRepository interface {
	// Create persists a new user. Duplicate usernames or emails must be
	// reported as ErrUsernameAlreadyExists / ErrEmailAlreadyExists.
	Create(ctx context.Context, user *User) error

	GetByID(ctx context.Context, id string) (*User, error)

	GetByUsername(ctx context.Context, username string) (*User, error)

	GetByEmail(ctx context.Context, email string) (*User, error)

	GetByVerificationToken(ctx context.Context, token string) (*User, error)

	GetByResetToken(ctx context.Context, token string) (*User, error)

	// Update writes back profile, password and token fields.
	Update(ctx context.Context, user *User) error
}
