package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/comitanigiacomo/goalmate-engine/internal/core/domain"
)

var (
	_ domain.TaskRepository = (*InMemoryTaskRepository)(nil)
	_ domain.UserRepository = (*InMemoryUserRepository)(nil)
)

// InMemoryTaskRepository stores copies, so callers never share state with
// the store.
type InMemoryTaskRepository struct {
	store map[string]domain.Task

	mu sync.RWMutex
}

func NewInMemoryTaskRepository() *InMemoryTaskRepository {
	return &InMemoryTaskRepository{
		store: make(map[string]domain.Task),
	}
}

func (r *InMemoryTaskRepository) Create(ctx context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.store[task.ID] = *task
	return nil
}

func (r *InMemoryTaskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, ok := r.store[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return &task, nil
}

func (r *InMemoryTaskRepository) filter(keep func(t *domain.Task) bool) []*domain.Task {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := []*domain.Task{}
	for _, t := range r.store {
		t := t
		if keep(&t) {
			tasks = append(tasks, &t)
		}
	}
	return tasks
}

func (r *InMemoryTaskRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Task, error) {
	tasks := r.filter(func(t *domain.Task) bool { return t.UserID == userID })

	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})

	return tasks, nil
}

func (r *InMemoryTaskRepository) ListCompletedSince(ctx context.Context, userID string, since time.Time) ([]*domain.Task, error) {
	tasks := r.filter(func(t *domain.Task) bool {
		return t.UserID == userID && t.Completed && !t.ActivityTime().Before(since)
	})

	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].ActivityTime().Before(tasks[j].ActivityTime())
	})

	return tasks, nil
}

func (r *InMemoryTaskRepository) CountByUserID(ctx context.Context, userID string) (int, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total, completed := 0, 0
	for _, t := range r.store {
		if t.UserID != userID {
			continue
		}
		total++
		if t.Completed {
			completed++
		}
	}
	return total, completed, nil
}

func (r *InMemoryTaskRepository) Update(ctx context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[task.ID]; !ok {
		return domain.ErrTaskNotFound
	}

	r.store[task.ID] = *task
	return nil
}

func (r *InMemoryTaskRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[id]; !ok {
		return domain.ErrTaskNotFound
	}

	delete(r.store, id)
	return nil
}

type InMemoryUserRepository struct {
	store map[string]domain.User

	mu sync.RWMutex
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		store: make(map[string]domain.User),
	}
}

// conflict mirrors the unique constraints of the users table.
func (r *InMemoryUserRepository) conflict(user *domain.User) error {
	for id, u := range r.store {
		if id == user.ID {
			continue
		}
		if u.Username == user.Username {
			return domain.ErrUsernameAlreadyExists
		}
		if u.Email == user.Email {
			return domain.ErrEmailAlreadyExists
		}
	}
	return nil
}

func (r *InMemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.conflict(user); err != nil {
		return err
	}

	r.store[user.ID] = *user
	return nil
}

func (r *InMemoryUserRepository) find(match func(u *domain.User) bool) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.store {
		u := u
		if match(&u) {
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *InMemoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.ID == id })
}

func (r *InMemoryUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Username == username })
}

func (r *InMemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Email == email })
}

func (r *InMemoryUserRepository) GetByVerificationToken(ctx context.Context, token string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool {
		return u.VerificationToken != nil && *u.VerificationToken == token
	})
}

func (r *InMemoryUserRepository) GetByResetToken(ctx context.Context, token string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool {
		return u.ResetToken != nil && *u.ResetToken == token
	})
}

func (r *InMemoryUserRepository) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	if err := r.conflict(user); err != nil {
		return err
	}

	r.store[user.ID] = *user
	return nil
}
