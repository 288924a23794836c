package middleware

import (
	"context"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-tracker-api/internal/constants"
	apierrors "github.com/yukikurage/task-tracker-api/internal/errors"
	"github.com/yukikurage/task-tracker-api/internal/logger"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/services"
)

// ProjectGetter loads a project owned by userID.
type ProjectGetter interface {
	Get(ctx context.Context, userID, id uint64) (*models.Project, error)
}

// TaskGetter loads a task owned by userID.
type TaskGetter interface {
	Get(ctx context.Context, userID, id uint64) (*models.Task, error)
}

// RequireProjectAccess loads the project named by :id. A project owned by
// someone else is reported as not found.
func RequireProjectAccess(projects ProjectGetter) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := parseIDParam(c, "id", "Invalid project ID")
		if !ok {
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		project, err := projects.Get(c.Request.Context(), userID, projectID)
		if err != nil {
			abortLookup(c, err, services.ErrProjectNotFound)
			return
		}

		c.Set(constants.ContextKeyProject, project)
		c.Next()
	}
}

// RequireTaskAccess loads the task named by :id. A task owned by someone
// else is reported as not found.
func RequireTaskAccess(tasks TaskGetter) gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, ok := parseIDParam(c, "id", "Invalid task ID")
		if !ok {
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		task, err := tasks.Get(c.Request.Context(), userID, taskID)
		if err != nil {
			abortLookup(c, err, services.ErrTaskNotFound)
			return
		}

		c.Set(constants.ContextKeyTask, task)
		c.Next()
	}
}

// GetProject returns the project loaded by RequireProjectAccess
func GetProject(c *gin.Context) (*models.Project, bool) {
	v, ok := c.Get(constants.ContextKeyProject)
	if !ok {
		return nil, false
	}
	project, ok := v.(*models.Project)
	return project, ok
}

// GetTask returns the task loaded by RequireTaskAccess
func GetTask(c *gin.Context) (*models.Task, bool) {
	v, ok := c.Get(constants.ContextKeyTask)
	if !ok {
		return nil, false
	}
	task, ok := v.(*models.Task)
	return task, ok
}

func parseIDParam(c *gin.Context, name, message string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		apierrors.BadRequest(c, message)
		c.Abort()
		return 0, false
	}
	return id, true
}

func abortLookup(c *gin.Context, err, notFound error) {
	if errors.Is(err, notFound) {
		apierrors.NotFound(c, notFound.Error())
	} else {
		logger.ErrorContext(c.Request.Context(), "Failed to load resource", "error", err)
		apierrors.InternalError(c)
	}
	c.Abort()
}
