package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/comitanigiacomo/goalmate-engine/internal/core/domain"
	"github.com/google/uuid"
)

const (
	verifyEmailPath   = "/verify-email"
	resetPasswordPath = "/reset-password"

	TokenTypeBearer = "bearer"
)

type TokenIssuer interface {
	GenerateToken(userID string) (string, error)
}

// MailQueue accepts emails for asynchronous delivery.
type MailQueue interface {
	Enqueue(email domain.Email) error
}

type AuthService struct {
	repo        domain.UserRepository
	tokens      TokenIssuer
	mail        MailQueue
	frontendURL string

	now         func() time.Time
	secureToken func() (string, error)
}

func NewAuthService(repo domain.UserRepository, tokens TokenIssuer, mail MailQueue, frontendURL string) *AuthService {
	return &AuthService{
		repo:        repo,
		tokens:      tokens,
		mail:        mail,
		frontendURL: frontendURL,
		now:         time.Now,
		secureToken: randomToken,
	}
}

// randomToken returns 32 random bytes, base64url encoded without padding.
func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("auth service: generating token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type LoginInput struct {
	Username string
	Password string
}

type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type UpdateProfileInput struct {
	UserID   string
	Username *string
	Email    *string
}

type ChangePasswordInput struct {
	UserID          string
	CurrentPassword string
	NewPassword     string
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	user, err := domain.NewUser(uuid.NewString(), input.Username, input.Email)
	if err != nil {
		return nil, err
	}

	if err := user.SetPassword(input.Password); err != nil {
		return nil, err
	}

	if err := s.ensureUsernameFree(ctx, user.Username); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, user.Email); err != nil {
		return nil, err
	}

	token, err := s.secureToken()
	if err != nil {
		return nil, err
	}
	user.IssueVerificationToken(token)

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("auth service: failed to create user: %w", err)
	}

	// Registration stands even if the mail cannot be queued; the user can
	// ask for it again via ResendVerification.
	_ = s.sendVerification(user, token)
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := s.repo.GetByUsername(ctx, strings.TrimSpace(input.Username))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("auth service: login lookup: %w", err)
	}

	if err := user.CheckPassword(input.Password); err != nil {
		return nil, err
	}

	if !user.IsVerified {
		return nil, domain.ErrEmailNotVerified
	}

	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, err
	}

	return &LoginResult{AccessToken: token, TokenType: TokenTypeBearer}, nil
}

func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.ErrTokenRequired
	}

	user, err := s.repo.GetByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrInvalidVerifyToken
		}
		return fmt.Errorf("auth service: verification lookup: %w", err)
	}

	user.MarkVerified()
	return s.repo.Update(ctx, user)
}

// ForgotPassword issues a one-hour reset token. Unknown addresses succeed
// silently so callers cannot probe which emails are registered.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.lookupByEmail(ctx, email)
	if err != nil || user == nil {
		return err
	}

	if !user.IsVerified {
		return domain.ErrEmailNotVerified
	}

	token, err := s.secureToken()
	if err != nil {
		return err
	}
	user.IssueResetToken(token, s.now())

	if err := s.repo.Update(ctx, user); err != nil {
		return fmt.Errorf("auth service: storing reset token: %w", err)
	}

	return s.enqueue(passwordResetEmail(user, frontendLink(s.frontendURL, resetPasswordPath, token)))
}

func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.ErrTokenRequired
	}

	user, err := s.repo.GetByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrInvalidResetToken
		}
		return fmt.Errorf("auth service: reset lookup: %w", err)
	}

	if err := user.ResetTokenValid(s.now()); err != nil {
		return err
	}

	if err := user.SetPassword(newPassword); err != nil {
		return err
	}
	user.ClearResetToken()

	return s.repo.Update(ctx, user)
}

func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	user, err := s.lookupByEmail(ctx, email)
	if err != nil || user == nil {
		return err
	}

	if user.IsVerified {
		return domain.ErrEmailAlreadyVerified
	}

	token, err := s.secureToken()
	if err != nil {
		return err
	}
	user.IssueVerificationToken(token)

	if err := s.repo.Update(ctx, user); err != nil {
		return fmt.Errorf("auth service: storing verification token: %w", err)
	}

	return s.sendVerification(user, token)
}

func (s *AuthService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.GetByID(ctx, userID)
}

// UpdateProfile renames the user and/or changes the address. A new address
// must be verified again before the next login.
func (s *AuthService) UpdateProfile(ctx context.Context, input UpdateProfileInput) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		if err := domain.ValidateUsername(username); err != nil {
			return nil, err
		}
		if username != user.Username {
			if err := s.ensureUsernameFree(ctx, username); err != nil {
				return nil, err
			}
			user.Username = username
		}
	}

	var newToken string
	if input.Email != nil {
		email, err := domain.NormalizeEmail(*input.Email)
		if err != nil {
			return nil, err
		}
		if email != user.Email {
			if err := s.ensureEmailFree(ctx, email); err != nil {
				return nil, err
			}
			if newToken, err = s.secureToken(); err != nil {
				return nil, err
			}
			user.Email = email
			user.IsVerified = false
			user.IssueVerificationToken(newToken)
		}
	}

	user.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	if newToken != "" {
		_ = s.sendVerification(user, newToken)
	}
	return user, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, input ChangePasswordInput) error {
	user, err := s.repo.GetByID(ctx, input.UserID)
	if err != nil {
		return err
	}

	if err := user.CheckPassword(input.CurrentPassword); err != nil {
		return domain.ErrWrongPassword
	}
	if input.CurrentPassword == input.NewPassword {
		return domain.ErrSamePassword
	}

	if err := user.SetPassword(input.NewPassword); err != nil {
		return err
	}

	return s.repo.Update(ctx, user)
}

// lookupByEmail returns (nil, nil) when the address is not registered.
func (s *AuthService) lookupByEmail(ctx context.Context, email string) (*domain.User, error) {
	normalized, err := domain.NormalizeEmail(email)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.GetByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("auth service: email lookup: %w", err)
	}
	return user, nil
}

func (s *AuthService) ensureUsernameFree(ctx context.Context, username string) error {
	_, err := s.repo.GetByUsername(ctx, username)
	switch {
	case err == nil:
		return domain.ErrUsernameAlreadyExists
	case errors.Is(err, domain.ErrUserNotFound):
		return nil
	default:
		return fmt.Errorf("auth service: username lookup: %w", err)
	}
}

func (s *AuthService) ensureEmailFree(ctx context.Context, email string) error {
	_, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return domain.ErrEmailAlreadyExists
	case errors.Is(err, domain.ErrUserNotFound):
		return nil
	default:
		return fmt.Errorf("auth service: email lookup: %w", err)
	}
}

func (s *AuthService) sendVerification(user *domain.User, token string) error {
	return s.enqueue(verificationEmail(user, frontendLink(s.frontendURL, verifyEmailPath, token)))
}

func (s *AuthService) enqueue(email domain.Email) error {
	if s.mail == nil {
		return nil
	}
	if err := s.mail.Enqueue(email); err != nil {
		log.Printf("[MAIL] could not queue %s email for %s: %v", email.Kind, email.ToAddress, err)
		return err
	}
	return nil
}
