package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/goalmate-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/goalmate-engine/internal/config"
	"github.com/comitanigiacomo/goalmate-engine/internal/core/domain"
	"github.com/comitanigiacomo/goalmate-engine/internal/core/services"
)

const testPassword = "superSecret123"

type recordingQueue struct {
	mu       sync.Mutex
	sent     []domain.Email
	failWith error
}

func (q *recordingQueue) Enqueue(email domain.Email) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.failWith != nil {
		return q.failWith
	}
	q.sent = append(q.sent, email)
	return nil
}

func (q *recordingQueue) kinds() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]string, 0, len(q.sent))
	for _, e := range q.sent {
		out = append(out, e.Kind)
	}
	return out
}

type testEnv struct {
	router *gin.Engine
	users  *repository.InMemoryUserRepository
	tasks  *repository.InMemoryTaskRepository
	mail   *recordingQueue
}

type envOption func(*RouterDependencies)

func withRedis(rdb *redis.Client, limit int) envOption {
	return func(d *RouterDependencies) {
		d.Redis = rdb
		d.RateLimit = config.RateLimitConfig{Requests: limit, Window: time.Minute}
	}
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		users: repository.NewInMemoryUserRepository(),
		tasks: repository.NewInMemoryTaskRepository(),
		mail:  &recordingQueue{},
	}

	tokens := services.NewTokenService("handler-test-secret", "goalmate-test", time.Hour, env.users)
	authService := services.NewAuthService(env.users, tokens, env.mail, "http://frontend.test")

	deps := RouterDependencies{
		AuthHandler:      NewAuthHandler(authService),
		ProfileHandler:   NewProfileHandler(authService),
		TaskHandler:      NewTaskHandler(services.NewTaskService(env.tasks)),
		AnalyticsHandler: NewAnalyticsHandler(services.NewAnalyticsService(env.tasks, env.users, time.UTC, domain.DefaultDailyGoal)),
		Tokens:           tokens,
		StartTime:        time.Now(),
	}
	for _, opt := range opts {
		opt(&deps)
	}

	env.router = NewRouter(deps)
	return env
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (e *testEnv) register(t *testing.T, username string) *httptest.ResponseRecorder {
	t.Helper()
	return e.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@goalmate.test",
		"password": testPassword,
	})
}

func (e *testEnv) storedUser(t *testing.T, username string) *domain.User {
	t.Helper()
	user, err := e.users.GetByUsername(context.Background(), username)
	require.NoError(t, err)
	return user
}

func (e *testEnv) login(t *testing.T, username, password string) *httptest.ResponseRecorder {
	t.Helper()
	return e.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
}

// verifiedUser registers, verifies and logs in a user, returning its id and
// access token.
func (e *testEnv) verifiedUser(t *testing.T, username string) (string, string) {
	t.Helper()

	require.Equal(t, http.StatusCreated, e.register(t, username).Code)

	user := e.storedUser(t, username)
	require.NotNil(t, user.VerificationToken)

	w := e.do(t, http.MethodPost, "/api/v1/auth/verify-email", "", map[string]string{"token": *user.VerificationToken})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = e.login(t, username, testPassword)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	return user.ID, decode[services.LoginResult](t, w).AccessToken
}
