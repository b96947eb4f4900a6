package domain

import (
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserNotFound          = newError(KindNotFound, "user not found")
	ErrEmailAlreadyExists    = newError(KindConflict, "email already registered")
	ErrUsernameAlreadyExists = newError(KindConflict, "username already registered")
	ErrInvalidCredentials    = newError(KindUnauthenticated, "incorrect username or password")
	ErrInvalidEmail          = newError(KindValidation, "invalid email format")
	ErrInvalidUsername       = newError(KindValidation, "username must be 3-50 characters (letters, digits, '.', '_', '-')")
	ErrPasswordTooShort      = newError(KindValidation, "password must be at least 8 characters long")
	ErrEmailNotVerified      = newError(KindForbidden, "please verify your email first")
	ErrEmailAlreadyVerified  = newError(KindConflict, "email is already verified")
	ErrInvalidVerifyToken    = newError(KindValidation, "invalid verification token")
	ErrInvalidResetToken     = newError(KindValidation, "invalid reset token")
	ErrResetTokenExpired     = newError(KindValidation, "reset token has expired")
	ErrTokenRequired         = newError(KindValidation, "token is required")
	ErrInvalidToken          = newError(KindUnauthenticated, "invalid or expired token")
	ErrWrongPassword         = newError(KindValidation, "current password is incorrect")
	ErrSamePassword          = newError(KindValidation, "new password must differ from the current one")
)

const (
	MinPasswordLen = 8
	ResetTokenTTL  = time.Hour
	bcryptCost     = 12
)

var usernameRegex = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,50}$`)

type User struct {
	ID                string     `json:"id" db:"id"`
	Username          string     `json:"username" db:"username"`
	Email             string     `json:"email" db:"email"`
	PasswordHash      string     `json:"-" db:"password_hash"`
	IsVerified        bool       `json:"is_verified" db:"is_verified"`
	VerificationToken *string    `json:"-" db:"verification_token"`
	ResetToken        *string    `json:"-" db:"reset_token"`
	ResetTokenExpires *time.Time `json:"-" db:"reset_token_expires"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}

func NewUser(id, username, email string) (*User, error) {
	username = strings.TrimSpace(username)
	if !usernameRegex.MatchString(username) {
		return nil, ErrInvalidUsername
	}

	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &User{
		ID:        id,
		Username:  username,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// NormalizeEmail trims and lower-cases an address after checking its format.
func NormalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return "", ErrInvalidEmail
	}
	return strings.ToLower(email), nil
}

func ValidateUsername(username string) error {
	if !usernameRegex.MatchString(strings.TrimSpace(username)) {
		return ErrInvalidUsername
	}
	return nil
}

func (u *User) SetPassword(plainPassword string) error {
	if utf8.RuneCountInString(plainPassword) < MinPasswordLen {
		return ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plainPassword), bcryptCost)
	if err != nil {
		return err
	}

	u.PasswordHash = string(hash)
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (u *User) CheckPassword(plainPassword string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plainPassword)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

func (u *User) IssueVerificationToken(token string) {
	u.VerificationToken = &token
	u.UpdatedAt = time.Now().UTC()
}

func (u *User) MarkVerified() {
	u.IsVerified = true
	u.VerificationToken = nil
	u.UpdatedAt = time.Now().UTC()
}

func (u *User) IssueResetToken(token string, now time.Time) {
	expires := now.Add(ResetTokenTTL).UTC()
	u.ResetToken = &token
	u.ResetTokenExpires = &expires
	u.UpdatedAt = now.UTC()
}

// ResetTokenValid reports whether the stored reset token is still usable at now.
func (u *User) ResetTokenValid(now time.Time) error {
	if u.ResetToken == nil || u.ResetTokenExpires == nil {
		return ErrInvalidResetToken
	}
	if now.After(*u.ResetTokenExpires) {
		return ErrResetTokenExpired
	}
	return nil
}

func (u *User) ClearResetToken() {
	u.ResetToken = nil
	u.ResetTokenExpires = nil
	u.UpdatedAt = time.Now().UTC()
}
