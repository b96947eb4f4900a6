package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/goalmate-engine/internal/core/services"
)

type ProfileHandler struct {
	service *services.AuthService
}

func NewProfileHandler(service *services.AuthService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

type updateProfileRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email" binding:"omitempty,email"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

func (h *ProfileHandler) RegisterRoutes(router *gin.RouterGroup) {
	profile := router.Group("/profile")
	{
		profile.GET("", h.Get)
		profile.PUT("", h.Update)
		profile.PUT("/password", h.ChangePassword)
	}
}

// Get godoc
// @Summary   Current user profile
// @Tags      profile
// @Produce   json
// @Security  BearerAuth
// @Success   200  {object}  userResponse
// @Failure   401  {object}  errorResponse
// @Router    /profile [get]
func (h *ProfileHandler) Get(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	user, err := h.service.Profile(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user))
}

// Update godoc
// @Summary      Change username or email
// @Description  A new email resets verification and queues a new verification link.
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Fields to change"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /profile [put]
func (h *ProfileHandler) Update(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), services.UpdateProfileInput{
		UserID:   userID,
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user))
}

// ChangePassword godoc
// @Summary   Change the account password
// @Tags      profile
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body  body      changePasswordRequest  true  "Current and new password"
// @Success   200   {object}  messageResponse
// @Failure   400   {object}  errorResponse
// @Router    /profile/password [put]
func (h *ProfileHandler) ChangePassword(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	err := h.service.ChangePassword(c.Request.Context(), services.ChangePasswordInput{
		UserID:          userID,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: "password updated"})
}
