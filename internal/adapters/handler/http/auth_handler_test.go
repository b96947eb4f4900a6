package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/goalmate-engine/internal/core/domain"
	"github.com/comitanigiacomo/goalmate-engine/internal/core/services"
)

func TestAuthHandler_Register(t *testing.T) {
	t.Run("Success: returns 201 without the password", func(t *testing.T) {
		env := newTestEnv(t)

		w := env.register(t, "mario")

		assert.Equal(t, http.StatusCreated, w.Code)
		resp := decode[userResponse](t, w)
		assert.NotEmpty(t, resp.ID)
		assert.Equal(t, "mario", resp.Username)
		assert.Equal(t, "mario@goalmate.test", resp.Email)
		assert.False(t, resp.IsVerified)
		assert.NotContains(t, w.Body.String(), "password")
		assert.Equal(t, []string{domain.EmailKindVerification}, env.mail.kinds())
	})

	t.Run("Succeeds even when the mail queue is full", func(t *testing.T) {
		env := newTestEnv(t)
		env.mail.failWith = domain.ErrMailQueueFull

		assert.Equal(t, http.StatusCreated, env.register(t, "mario").Code)
	})

	badBodies := []struct {
		name string
		body any
	}{
		{"invalid email", map[string]string{"username": "mario", "email": "not-an-email", "password": testPassword}},
		{"short password", map[string]string{"username": "mario", "email": "m@x.io", "password": "short"}},
		{"missing username", map[string]string{"email": "m@x.io", "password": testPassword}},
		{"malformed json", `{"username":`},
		{"username with spaces", map[string]string{"username": "mario rossi", "email": "m@x.io", "password": testPassword}},
	}
	for _, tt := range badBodies {
		t.Run("Fail: 400 for "+tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			w := env.do(t, http.MethodPost, "/api/v1/auth/register", "", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Empty(t, env.mail.kinds())
		})
	}

	t.Run("Fail: 409 for duplicate username or email", func(t *testing.T) {
		env := newTestEnv(t)
		require.Equal(t, http.StatusCreated, env.register(t, "mario").Code)

		w := env.register(t, "mario")
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "username already registered")

		w = env.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
			"username": "luigi",
			"email":    "MARIO@goalmate.test",
			"password": testPassword,
		})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "email already registered")
	})
}

func TestAuthHandler_Login(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusCreated, env.register(t, "mario").Code)

	t.Run("Unverified account is forbidden", func(t *testing.T) {
		w := env.login(t, "mario", testPassword)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "verify your email")
	})

	t.Run("Wrong password is unauthorized", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, env.login(t, "mario", "wrongPassword").Code)
	})

	t.Run("Unknown user is unauthorized", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, env.login(t, "nobody", testPassword).Code)
	})

	t.Run("Verified account gets a bearer token", func(t *testing.T) {
		user := env.storedUser(t, "mario")
		w := env.do(t, http.MethodPost, "/api/v1/auth/verify-email", "", map[string]string{"token": *user.VerificationToken})
		require.Equal(t, http.StatusOK, w.Code)

		w = env.login(t, "mario", testPassword)
		require.Equal(t, http.StatusOK, w.Code)

		result := decode[services.LoginResult](t, w)
		assert.NotEmpty(t, result.AccessToken)
		assert.Equal(t, services.TokenTypeBearer, result.TokenType)
	})
}

func TestAuthHandler_VerifyEmail(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/auth/verify-email", "", map[string]string{"token": "does-not-exist"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid verification token")

	w = env.do(t, http.MethodPost, "/api/v1/auth/verify-email", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_PasswordReset(t *testing.T) {
	env := newTestEnv(t)
	env.verifiedUser(t, "mario")

	t.Run("Unknown email gets the generic answer", func(t *testing.T) {
		before := len(env.mail.kinds())
		w := env.do(t, http.MethodPost, "/api/v1/auth/forgot-password", "", map[string]string{"email": "ghost@goalmate.test"})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), genericEmailMessage)
		assert.Len(t, env.mail.kinds(), before)
	})

	t.Run("Full queue is reported as unavailable", func(t *testing.T) {
		env.mail.failWith = domain.ErrMailQueueFull
		defer func() { env.mail.failWith = nil }()

		w := env.do(t, http.MethodPost, "/api/v1/auth/forgot-password", "", map[string]string{"email": "mario@goalmate.test"})
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("Reset token sets a new password", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/auth/forgot-password", "", map[string]string{"email": "mario@goalmate.test"})
		require.Equal(t, http.StatusOK, w.Code)

		kinds := env.mail.kinds()
		assert.Equal(t, domain.EmailKindPasswordReset, kinds[len(kinds)-1])

		user := env.storedUser(t, "mario")
		require.NotNil(t, user.ResetToken)

		w = env.do(t, http.MethodPost, "/api/v1/auth/reset-password", "", map[string]string{
			"token":        *user.ResetToken,
			"new_password": "brandNewPass456",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		assert.Equal(t, http.StatusUnauthorized, env.login(t, "mario", testPassword).Code)
		assert.Equal(t, http.StatusOK, env.login(t, "mario", "brandNewPass456").Code)

		w = env.do(t, http.MethodPost, "/api/v1/auth/reset-password", "", map[string]string{
			"token":        *user.ResetToken,
			"new_password": "anotherPass789",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code, "reset tokens are single use")
	})
}

func TestAuthHandler_ResendVerification(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusCreated, env.register(t, "pending").Code)
	env.verifiedUser(t, "done")

	w := env.do(t, http.MethodPost, "/api/v1/auth/resend-verification", "", map[string]string{"email": "pending@goalmate.test"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/auth/resend-verification", "", map[string]string{"email": "done@goalmate.test"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/auth/resend-verification", "", map[string]string{"email": "ghost@goalmate.test"})
	assert.Equal(t, http.StatusOK, w.Code)
}
