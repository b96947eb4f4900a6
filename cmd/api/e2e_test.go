package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/goalmate-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/goalmate-engine/internal/config"
	"github.com/comitanigiacomo/goalmate-engine/internal/core/domain"
	"github.com/comitanigiacomo/goalmate-engine/migrations"
)

var tokenPattern = regexp.MustCompile(`token=([A-Za-z0-9_%\-]+)`)

type inbox struct {
	mu   sync.Mutex
	sent []domain.Email
}

func (i *inbox) Send(ctx context.Context, email domain.Email) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.sent = append(i.sent, email)
	return nil
}

// lastToken waits for an email of the given kind to reach addr and returns
// the token embedded in its link.
func (i *inbox) lastToken(t *testing.T, kind, addr string) string {
	t.Helper()
	var token string
	require.Eventually(t, func() bool {
		i.mu.Lock()
		defer i.mu.Unlock()
		for n := len(i.sent) - 1; n >= 0; n-- {
			e := i.sent[n]
			if e.Kind != kind || e.ToAddress != addr {
				continue
			}
			m := tokenPattern.FindStringSubmatch(e.PlainText)
			if m == nil {
				return false
			}
			token, _ = url.QueryUnescape(m[1])
			return true
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
	return token
}

func testConfig() *config.Config {
	return &config.Config{
		JWT:       config.JWTConfig{Secret: "e2e-secret", Issuer: "goalmate-e2e", TTL: time.Hour},
		Mail:      config.MailConfig{FrontendURL: "http://frontend.test", QueueSize: 10, MaxAttempts: 1},
		Analytics: config.AnalyticsConfig{Timezone: "UTC", DailyGoal: domain.DefaultDailyGoal},
	}
}

type client struct {
	router *gin.Engine
	token  string
}

func (c *client) call(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	return w
}

func runLifecycle(t *testing.T, st stores, in infra) {
	gin.SetMode(gin.TestMode)

	mailbox := &inbox{}
	app, err := buildApplication(testConfig(), st, mailbox, in)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	app.mail.Start(ctx)
	defer func() {
		cancel()
		<-app.mail.Done()
	}()

	c := &client{router: app.router}
	username := fmt.Sprintf("e2e_%d", time.Now().UnixNano()%1_000_000)
	email := username + "@goalmate.test"

	t.Run("1. Register", func(t *testing.T) {
		w := c.call(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
			"username": username, "email": email, "password": "superSecret123",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	})

	t.Run("2. Login before verification is refused", func(t *testing.T) {
		w := c.call(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"username": username, "password": "superSecret123"})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("3. Verify and login", func(t *testing.T) {
		token := mailbox.lastToken(t, domain.EmailKindVerification, email)
		w := c.call(t, http.MethodPost, "/api/v1/auth/verify-email", map[string]string{"token": token})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = c.call(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"username": username, "password": "superSecret123"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var login struct {
			AccessToken string `json:"access_token"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
		c.token = login.AccessToken
	})

	var taskID string

	t.Run("4. Create and complete tasks", func(t *testing.T) {
		require.NotEmpty(t, c.token, "login step failed")

		for _, title := range []string{"Run", "Read"} {
			w := c.call(t, http.MethodPost, "/api/v1/tasks", map[string]any{"title": title, "category": "Health", "completed": true})
			require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		}

		w := c.call(t, http.MethodPost, "/api/v1/tasks", map[string]any{"title": "Write", "category": "Work"})
		require.Equal(t, http.StatusCreated, w.Code)

		var task domain.Task
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &task))
		taskID = task.ID

		w = c.call(t, http.MethodPut, "/api/v1/tasks/"+taskID, map[string]any{"completed": true})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("5. Activity report", func(t *testing.T) {
		w := c.call(t, http.MethodGet, "/api/v1/analytics/activity", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var report domain.AnalyticsReport
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
		assert.Equal(t, 3, report.TodayCount)
		assert.Equal(t, 3, report.TotalTasks)
		assert.Equal(t, 1, report.CurrentStreak)
		assert.Equal(t, 5, report.DailyGoal)
		assert.Len(t, report.HeatmapData, 365)
	})

	t.Run("6. Summary and delete", func(t *testing.T) {
		w := c.call(t, http.MethodGet, "/api/v1/tasks/summary", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"total":3,"completed":3,"percent_completed":100}`, w.Body.String())

		w = c.call(t, http.MethodDelete, "/api/v1/tasks/"+taskID, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = c.call(t, http.MethodGet, "/api/v1/tasks", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), taskID)
	})

	t.Run("7. Password reset through the mail worker", func(t *testing.T) {
		w := c.call(t, http.MethodPost, "/api/v1/auth/forgot-password", map[string]string{"email": email})
		require.Equal(t, http.StatusOK, w.Code)

		token := mailbox.lastToken(t, domain.EmailKindPasswordReset, email)
		w = c.call(t, http.MethodPost, "/api/v1/auth/reset-password", map[string]string{"token": token, "new_password": "anotherSecret456"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = c.call(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"username": username, "password": "anotherSecret456"})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("8. Auth error", func(t *testing.T) {
		anon := &client{router: app.router}
		assert.Equal(t, http.StatusUnauthorized, anon.call(t, http.MethodGet, "/api/v1/tasks", nil).Code)
	})
}

func TestEndToEnd_InMemory(t *testing.T) {
	runLifecycle(t, stores{
		users: repository.NewInMemoryUserRepository(),
		tasks: repository.NewInMemoryTaskRepository(),
	}, infra{startTime: time.Now()})
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestEndToEnd_Postgres(t *testing.T) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		getEnv("GOALMATE_DB_USER", "goalmate"),
		getEnv("GOALMATE_DB_PASSWORD", "secret"),
		getEnv("GOALMATE_DB_HOST", "localhost"),
		getEnv("GOALMATE_DB_PORT", "5432"),
		getEnv("GOALMATE_DB_NAME", "goalmate_test"),
	)

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		t.Skipf("Skipping end-to-end test (Postgres down): %v", err)
	}
	defer func() { _ = db.Close() }()

	require.NoError(t, migrations.Apply(context.Background(), db))
	_, err = db.Exec("TRUNCATE TABLE users CASCADE")
	require.NoError(t, err, "Failed to truncate users table")

	runLifecycle(t, postgresStores(db, nil, 0), infra{db: db, startTime: time.Now()})
}
