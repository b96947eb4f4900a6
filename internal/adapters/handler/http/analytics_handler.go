package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/goalmate-engine/internal/core/services"
)

type AnalyticsHandler struct {
	svc *services.AnalyticsService
}

func NewAnalyticsHandler(svc *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc}
}

func (h *AnalyticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/analytics/activity", h.Activity)
}

// Activity godoc
// @Summary      Streaks and 365-day heatmap
// @Description  Completed tasks are bucketed per calendar day in the server time zone.
// @Tags         analytics
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.AnalyticsReport
// @Failure      401  {object}  errorResponse
// @Router       /analytics/activity [get]
func (h *AnalyticsHandler) Activity(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	report, err := h.svc.Activity(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
