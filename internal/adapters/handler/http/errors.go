package http

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/goalmate-engine/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/goalmate-engine/internal/core/domain"
)

type errorResponse struct {
	Error string `json:"error" example:"task not found"`
}

type messageResponse struct {
	Message string `json:"message" example:"email verified"`
}

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindUnauthenticated:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError is the only place where service errors become HTTP responses.
func writeError(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	if kind == domain.KindInternal {
		log.Printf("[ERROR] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		_ = c.Error(err)
	}
	c.JSON(statusFor(kind), errorResponse{Error: domain.PublicMessage(err)})
}

func writeBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
}

// requireUserID reads the authenticated user id or answers 500 when the
// route was mounted without the auth middleware.
func requireUserID(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "user context missing"})
		return "", false
	}
	return userID, true
}
