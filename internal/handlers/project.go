package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-tracker-api/internal/dto"
	apierrors "github.com/yukikurage/task-tracker-api/internal/errors"
	"github.com/yukikurage/task-tracker-api/internal/middleware"
	"github.com/yukikurage/task-tracker-api/internal/services"
)

// ProjectHandler serves the /projects routes. Every route runs behind
// RequireAuth; the :id routes also run behind RequireProjectAccess.
type ProjectHandler struct {
	projectService *services.ProjectService
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// ListProjects returns the current user's projects
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	projects, err := h.projectService.List(c.Request.Context(), userID)
	if err != nil {
		respondResourceError(c, err)
		return
	}

	apierrors.OK(c, dto.ToProjectDTOs(projects))
}

// CreateProject creates a project owned by the current user
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.Create(c.Request.Context(), services.CreateProjectInput{
		OwnerID:     userID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondResourceError(c, err)
		return
	}

	apierrors.Created(c, dto.ToProjectDTO(*project))
}

// GetProject returns the project loaded by RequireProjectAccess
func (h *ProjectHandler) GetProject(c *gin.Context) {
	project, exists := middleware.GetProject(c)
	if !exists {
		apierrors.NotFound(c, services.ErrProjectNotFound.Error())
		return
	}

	apierrors.OK(c, dto.ToProjectDTO(*project))
}

// UpdateProject applies a partial update. Fields other than name and
// description are ignored.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	project, exists := middleware.GetProject(c)
	if !exists {
		apierrors.NotFound(c, services.ErrProjectNotFound.Error())
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.projectService.Update(c.Request.Context(), userID, project.ID, services.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondResourceError(c, err)
		return
	}

	apierrors.OK(c, dto.ToProjectDTO(*updated))
}

// DeleteProject deletes the project and its tasks
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	project, exists := middleware.GetProject(c)
	if !exists {
		apierrors.NotFound(c, services.ErrProjectNotFound.Error())
		return
	}

	if err := h.projectService.Delete(c.Request.Context(), userID, project.ID); err != nil {
		respondResourceError(c, err)
		return
	}

	apierrors.RespondWithMessage(c, http.StatusOK, "Project deleted")
}

// SearchProjects matches ?q= against project names
func (h *ProjectHandler) SearchProjects(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	projects, err := h.projectService.Search(c.Request.Context(), userID, c.Query("q"))
	if err != nil {
		respondResourceError(c, err)
		return
	}

	apierrors.OK(c, dto.ToProjectDTOs(projects))
}
