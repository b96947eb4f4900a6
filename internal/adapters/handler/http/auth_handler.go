package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/goalmate-engine/internal/core/domain"
	"github.com/comitanigiacomo/goalmate-engine/internal/core/services"
)

const genericEmailMessage = "if the email is registered, a message has been sent"

type AuthHandler struct {
	service *services.AuthService
}

func NewAuthHandler(service *services.AuthService) *AuthHandler {
	return &AuthHandler{
		service: service,
	}
}

type registerRequest struct {
	Username string `json:"username" binding:"required" example:"mario_rossi"`
	Email    string `json:"email" binding:"required,email" example:"mario@example.com"`
	Password string `json:"password" binding:"required,min=8" example:"superSecret123"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tokenRequest struct {
	Token string `json:"token" binding:"required"`
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

type userResponse struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
}

func newUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
	}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/verify-email", h.VerifyEmail)
		authGroup.POST("/forgot-password", h.ForgotPassword)
		authGroup.POST("/reset-password", h.ResetPassword)
		authGroup.POST("/resend-verification", h.ResendVerification)
	}
}

// Register godoc
// @Summary      Create an account
// @Description  Stores an unverified user and queues the verification email.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account data"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	user, err := h.service.Register(c.Request.Context(), services.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newUserResponse(user))
}

// Login godoc
// @Summary      Exchange credentials for a bearer token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  services.LoginResult
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	result, err := h.service.Login(c.Request.Context(), services.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// VerifyEmail godoc
// @Summary  Confirm an email address
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body  body      tokenRequest  true  "Verification token"
// @Success  200   {object}  messageResponse
// @Failure  400   {object}  errorResponse
// @Router   /auth/verify-email [post]
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	if err := h.service.VerifyEmail(c.Request.Context(), req.Token); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: "email verified"})
}

// ForgotPassword godoc
// @Summary  Send a password reset link
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body  body      emailRequest  true  "Account email"
// @Success  200   {object}  messageResponse
// @Failure  403   {object}  errorResponse
// @Failure  503   {object}  errorResponse
// @Router   /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	if err := h.service.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: genericEmailMessage})
}

// ResetPassword godoc
// @Summary  Set a new password with a reset token
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body  body      resetPasswordRequest  true  "Token and new password"
// @Success  200   {object}  messageResponse
// @Failure  400   {object}  errorResponse
// @Router   /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: "password updated"})
}

// ResendVerification godoc
// @Summary  Send a new verification link
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body  body      emailRequest  true  "Account email"
// @Success  200   {object}  messageResponse
// @Failure  409   {object}  errorResponse
// @Router   /auth/resend-verification [post]
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	if err := h.service.ResendVerification(c.Request.Context(), req.Email); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: genericEmailMessage})
}
