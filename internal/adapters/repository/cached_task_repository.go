package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/comitanigiacomo/goalmate-engine/internal/core/domain"
)

const DefaultCacheTTL = 30 * time.Minute

var _ domain.TaskRepository = (*CachedTaskRepository)(nil)

// CachedTaskRepository keeps each user's task list in Redis and drops it on
// every write to that user's tasks. Redis failures fall through to next.
type CachedTaskRepository struct {
	next  domain.TaskRepository
	cache *redis.Client
	ttl   time.Duration
}

func NewCachedTaskRepository(next domain.TaskRepository, cache *redis.Client, ttl time.Duration) *CachedTaskRepository {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedTaskRepository{
		next:  next,
		cache: cache,
		ttl:   ttl,
	}
}

func (r *CachedTaskRepository) cacheKey(userID string) string {
	return fmt.Sprintf("tasks:%s", userID)
}

func (r *CachedTaskRepository) invalidate(ctx context.Context, userID string) {
	if err := r.cache.Del(ctx, r.cacheKey(userID)).Err(); err != nil {
		log.Printf("[CACHE] Failed to invalidate for user %s: %v", userID, err)
	}
}

func (r *CachedTaskRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Task, error) {
	key := r.cacheKey(userID)

	val, err := r.cache.Get(ctx, key).Result()
	if err == nil {
		var tasks []*domain.Task
		if err := json.Unmarshal([]byte(val), &tasks); err == nil {
			return tasks, nil
		}

		log.Printf("[CACHE] Corrupted data for user %s, cleaning up key", userID)
		r.cache.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		log.Printf("[CACHE] Redis read error: %v", err)
	}

	tasks, err := r.next.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(tasks); err == nil {
		if setErr := r.cache.Set(ctx, key, data, r.ttl).Err(); setErr != nil {
			log.Printf("[CACHE] Redis set error: %v", setErr)
		}
	}

	return tasks, nil
}

func (r *CachedTaskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	return r.next.GetByID(ctx, id)
}

func (r *CachedTaskRepository) ListCompletedSince(ctx context.Context, userID string, since time.Time) ([]*domain.Task, error) {
	return r.next.ListCompletedSince(ctx, userID, since)
}

func (r *CachedTaskRepository) CountByUserID(ctx context.Context, userID string) (int, int, error) {
	return r.next.CountByUserID(ctx, userID)
}

func (r *CachedTaskRepository) Create(ctx context.Context, task *domain.Task) error {
	if err := r.next.Create(ctx, task); err != nil {
		return err
	}
	r.invalidate(ctx, task.UserID)
	return nil
}

func (r *CachedTaskRepository) Update(ctx context.Context, task *domain.Task) error {
	if err := r.next.Update(ctx, task); err != nil {
		return err
	}
	r.invalidate(ctx, task.UserID)
	return nil
}

func (r *CachedTaskRepository) Delete(ctx context.Context, id string) error {
	task, err := r.next.GetByID(ctx, id)
	if err == nil && task != nil {
		defer r.invalidate(ctx, task.UserID)
	}

	return r.next.Delete(ctx, id)
}
