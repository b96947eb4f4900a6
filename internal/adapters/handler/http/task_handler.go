package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/goalmate-engine/internal/core/domain"
	"github.com/comitanigiacomo/goalmate-engine/internal/core/services"
)

type TaskHandler struct {
	svc *services.TaskService
}

func NewTaskHandler(svc *services.TaskService) *TaskHandler {
	return &TaskHandler{svc: svc}
}

type createTaskRequest struct {
	Title       string     `json:"title" binding:"required" example:"Write weekly report"`
	Description string     `json:"description"`
	Category    string     `json:"category" binding:"required" example:"Work"`
	Priority    string     `json:"priority" example:"High"`
	DueDate     *time.Time `json:"due_date"`
	Completed   bool       `json:"completed"`
}

type updateTaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Category    *string    `json:"category"`
	Priority    *string    `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
	Completed   *bool      `json:"completed"`
}

func (h *TaskHandler) RegisterRoutes(router *gin.RouterGroup) {
	tasks := router.Group("/tasks")
	{
		tasks.POST("", h.Create)
		tasks.GET("", h.List)
		tasks.GET("/summary", h.Summary)
		tasks.GET("/:id", h.Get)
		tasks.PUT("/:id", h.Update)
		tasks.DELETE("/:id", h.Delete)
	}
}

// Create godoc
// @Summary   Create a task
// @Tags      tasks
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body  body      createTaskRequest  true  "Task"
// @Success   201   {object}  domain.Task
// @Failure   400   {object}  errorResponse
// @Router    /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	task, err := h.svc.Create(c.Request.Context(), services.CreateTaskInput{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		Completed:   req.Completed,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

// List godoc
// @Summary   List the caller's tasks, newest first
// @Tags      tasks
// @Produce   json
// @Security  BearerAuth
// @Success   200  {array}   domain.Task
// @Router    /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	tasks, err := h.svc.List(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	if tasks == nil {
		tasks = []*domain.Task{}
	}
	c.JSON(http.StatusOK, tasks)
}

// Get godoc
// @Summary   Get one task
// @Tags      tasks
// @Produce   json
// @Security  BearerAuth
// @Param     id   path      string  true  "Task ID"
// @Success   200  {object}  domain.Task
// @Failure   404  {object}  errorResponse
// @Router    /tasks/{id} [get]
func (h *TaskHandler) Get(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	task, err := h.svc.Get(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// Update godoc
// @Summary      Partially update a task
// @Description  Setting completed stamps completed_at; clearing it removes the stamp.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Task ID"
// @Param        body  body      updateTaskRequest  true  "Fields to change"
// @Success      200   {object}  domain.Task
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	task, err := h.svc.Update(c.Request.Context(), services.UpdateTaskInput{
		ID:     c.Param("id"),
		UserID: userID,
		Patch: domain.TaskPatch{
			Title:       req.Title,
			Description: req.Description,
			Category:    req.Category,
			DueDate:     req.DueDate,
			Priority:    req.Priority,
			Completed:   req.Completed,
		},
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// Delete godoc
// @Summary   Delete a task
// @Tags      tasks
// @Security  BearerAuth
// @Param     id  path  string  true  "Task ID"
// @Success   204
// @Failure   404  {object}  errorResponse
// @Router    /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Summary godoc
// @Summary   Task totals and completion percentage
// @Tags      tasks
// @Produce   json
// @Security  BearerAuth
// @Success   200  {object}  domain.TaskSummary
// @Router    /tasks/summary [get]
func (h *TaskHandler) Summary(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	summary, err := h.svc.Summary(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
