package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/goalmate-engine/internal/core/domain"
)

// ContextUserIDKey holds the authenticated user id on the gin context.
const ContextUserIDKey = "userID"

var (
	errMissingHeader = errors.New("authorization header required")
	errBadScheme     = errors.New("invalid authorization header format")
)

// TokenValidator resolves a bearer token to the id of an existing user.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (string, error)
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errMissingHeader
	}
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" || strings.ContainsAny(token, " \t") {
		return "", errBadScheme
	}
	return token, nil
}

func AuthMiddleware(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		userID, err := tokens.ValidateToken(c.Request.Context(), raw)
		switch {
		case err == nil:
			c.Set(ContextUserIDKey, userID)
			c.Next()
		case errors.Is(err, domain.ErrInvalidToken):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": domain.ErrInvalidToken.Message})
		default:
			log.Printf("[ERROR] auth middleware: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
	}
}

// GetUserID returns the id stored by AuthMiddleware.
func GetUserID(c *gin.Context) (string, bool) {
	id := c.GetString(ContextUserIDKey)
	return id, id != ""
}
