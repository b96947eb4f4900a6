package services

import (
	"context"
	"time"

	"github.com/comitanigiacomo/goalmate-engine/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) userResult(args mock.Arguments) (*domain.User, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return m.userResult(m.Called(ctx, id))
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return m.userResult(m.Called(ctx, username))
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.userResult(m.Called(ctx, email))
}

func (m *MockUserRepository) GetByVerificationToken(ctx context.Context, token string) (*domain.User, error) {
	return m.userResult(m.Called(ctx, token))
}

func (m *MockUserRepository) GetByResetToken(ctx context.Context, token string) (*domain.User, error) {
	return m.userResult(m.Called(ctx, token))
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Create(ctx context.Context, task *domain.Task) error {
	return m.Called(ctx, task).Error(0)
}

func (m *MockTaskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Task, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Task), args.Error(1)
}

func (m *MockTaskRepository) Update(ctx context.Context, task *domain.Task) error {
	return m.Called(ctx, task).Error(0)
}

func (m *MockTaskRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockTaskRepository) ListCompletedSince(ctx context.Context, userID string, since time.Time) ([]*domain.Task, error) {
	args := m.Called(ctx, userID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Task), args.Error(1)
}

func (m *MockTaskRepository) CountByUserID(ctx context.Context, userID string) (int, int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Int(1), args.Error(2)
}

// recordingQueue keeps every enqueued email; failWith makes Enqueue fail.
type recordingQueue struct {
	sent     []domain.Email
	failWith error
}

func (q *recordingQueue) Enqueue(email domain.Email) error {
	if q.failWith != nil {
		return q.failWith
	}
	q.sent = append(q.sent, email)
	return nil
}

type stubTokens struct {
	token string
	err   error
}

func (s stubTokens) GenerateToken(userID string) (string, error) {
	return s.token, s.err
}
