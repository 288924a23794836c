package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-tracker-api/internal/dto"
	apierrors "github.com/yukikurage/task-tracker-api/internal/errors"
	"github.com/yukikurage/task-tracker-api/internal/middleware"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/services"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns the current user's tasks, optionally filtered by
// ?project_id=. The filter does not check the project itself.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	var (
		tasks []models.Task
		err   error
	)
	if raw := c.Query("project_id"); raw != "" {
		projectID, ok := parseUintParam(c, raw, "Invalid project_id")
		if !ok {
			return
		}
		tasks, err = h.taskService.ListByProject(c.Request.Context(), userID, projectID)
	} else {
		tasks, err = h.taskService.List(c.Request.Context(), userID)
	}
	if err != nil {
		respondResourceError(c, err)
		return
	}

	apierrors.OK(c, dto.ToTaskDTOs(tasks))
}

// ListProjectTasks returns the tasks of a project the current user owns
func (h *TaskHandler) ListProjectTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	projectID, ok := parseUintParam(c, c.Param("id"), "Invalid project ID")
	if !ok {
		return
	}

	tasks, err := h.taskService.ListByOwnedProject(c.Request.Context(), userID, projectID)
	if err != nil {
		respondResourceError(c, err)
		return
	}

	apierrors.OK(c, dto.ToTaskDTOs(tasks))
}

// GetTask returns the task loaded by RequireTaskAccess
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, exists := middleware.GetTask(c)
	if !exists {
		apierrors.NotFound(c, services.ErrTaskNotFound.Error())
		return
	}

	apierrors.OK(c, dto.ToTaskDTO(*task))
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	var req struct {
		Title       string  `json:"title"`
		Description *string `json:"description"`
		DueDate     string  `json:"due_date"`
		Priority    *int    `json:"priority"`
		ProjectID   *uint64 `json:"project_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.Create(c.Request.Context(), services.CreateTaskInput{
		OwnerID:     userID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Priority:    req.Priority,
		ProjectID:   req.ProjectID,
	})
	if err != nil {
		respondResourceError(c, err)
		return
	}

	apierrors.Created(c, dto.ToTaskDTO(*task))
}

// UpdateTask applies a partial update. Server controlled fields in the body
// are ignored.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	task, exists := middleware.GetTask(c)
	if !exists {
		apierrors.NotFound(c, services.ErrTaskNotFound.Error())
		return
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		DueDate     *string `json:"due_date"`
		Priority    *int    `json:"priority"`
		Completed   *bool   `json:"completed"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.taskService.Update(c.Request.Context(), userID, task.ID, services.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Priority:    req.Priority,
		Completed:   req.Completed,
	})
	if err != nil {
		respondResourceError(c, err)
		return
	}

	apierrors.OK(c, dto.ToTaskDTO(*updated))
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	task, exists := middleware.GetTask(c)
	if !exists {
		apierrors.NotFound(c, services.ErrTaskNotFound.Error())
		return
	}

	if err := h.taskService.Delete(c.Request.Context(), userID, task.ID); err != nil {
		respondResourceError(c, err)
		return
	}

	apierrors.RespondWithMessage(c, http.StatusOK, "Task deleted")
}

// SearchTasks matches ?q= against task titles
func (h *TaskHandler) SearchTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	tasks, err := h.taskService.Search(c.Request.Context(), userID, c.Query("q"))
	if err != nil {
		respondResourceError(c, err)
		return
	}

	apierrors.OK(c, dto.ToTaskDTOs(tasks))
}
