package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/goalmate-engine/internal/core/domain"
)

// countingRepo counts how often the decorated repository is reached.
type countingRepo struct {
	*InMemoryTaskRepository
	listCalls int
}

func (c *countingRepo) ListByUserID(ctx context.Context, userID string) ([]*domain.Task, error) {
	c.listCalls++
	return c.InMemoryTaskRepository.ListByUserID(ctx, userID)
}

func setupCachedRepo(t *testing.T) (*CachedTaskRepository, *countingRepo, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	inner := &countingRepo{InMemoryTaskRepository: NewInMemoryTaskRepository()}
	return NewCachedTaskRepository(inner, rdb, time.Minute), inner, mr
}

func newTask(t *testing.T, userID, title string) *domain.Task {
	task, err := domain.NewTask(userID, title, "", "Work", "", nil)
	require.NoError(t, err)
	return task
}

func TestCachedTaskRepository_ListIsCached(t *testing.T) {
	repo, inner, mr := setupCachedRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTask(t, "user-1", "first")))

	first, err := repo.ListByUserID(ctx, "user-1")
	require.NoError(t, err)
	second, err := repo.ListByUserID(ctx, "user-1")
	require.NoError(t, err)

	assert.Equal(t, 1, inner.listCalls, "second read must be served from redis")
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.True(t, mr.Exists("tasks:user-1"))
	assert.Equal(t, time.Minute, mr.TTL("tasks:user-1"))
}

func TestCachedTaskRepository_WritesInvalidate(t *testing.T) {
	repo, inner, mr := setupCachedRepo(t)
	ctx := context.Background()

	task := newTask(t, "user-1", "first")
	require.NoError(t, repo.Create(ctx, task))
	_, _ = repo.ListByUserID(ctx, "user-1")
	require.True(t, mr.Exists("tasks:user-1"))

	done := true
	require.NoError(t, task.Apply(domain.TaskPatch{Completed: &done}, time.Now()))
	require.NoError(t, repo.Update(ctx, task))
	assert.False(t, mr.Exists("tasks:user-1"), "update must drop the cached list")

	tasks, err := repo.ListByUserID(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, tasks[0].Completed)

	require.NoError(t, repo.Delete(ctx, task.ID))
	assert.False(t, mr.Exists("tasks:user-1"), "delete must drop the cached list")

	tasks, err = repo.ListByUserID(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, tasks)
	assert.Equal(t, 3, inner.listCalls)
}

func TestCachedTaskRepository_CorruptedEntry(t *testing.T) {
	repo, inner, mr := setupCachedRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTask(t, "user-1", "first")))
	require.NoError(t, mr.Set("tasks:user-1", "{not json"))

	tasks, err := repo.ListByUserID(ctx, "user-1")

	require.NoError(t, err)
	assert.Len(t, tasks, 1)
	assert.Equal(t, 1, inner.listCalls)
}

func TestCachedTaskRepository_RedisDown(t *testing.T) {
	repo, inner, mr := setupCachedRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTask(t, "user-1", "first")))
	mr.Close()

	tasks, err := repo.ListByUserID(ctx, "user-1")

	require.NoError(t, err, "a cache outage must not fail reads")
	assert.Len(t, tasks, 1)
	assert.Equal(t, 1, inner.listCalls)
}
