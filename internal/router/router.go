package router

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-tracker-api/internal/config"
	"github.com/yukikurage/task-tracker-api/internal/constants"
	apierrors "github.com/yukikurage/task-tracker-api/internal/errors"
	"github.com/yukikurage/task-tracker-api/internal/handlers"
	"github.com/yukikurage/task-tracker-api/internal/middleware"
	"github.com/yukikurage/task-tracker-api/internal/services"
	"github.com/yukikurage/task-tracker-api/internal/session"
)

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	AuthService    *services.AuthService
	ProjectService *services.ProjectService
	TaskService    *services.TaskService
	Sessions       *session.Manager
}

// New builds the gin engine with every route mounted.
func New(cfg *config.Config, deps Dependencies) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = false

	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())

	// The cookie only carries the session token; session state lives in
	// the session store.
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(constants.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	authHandler := handlers.NewAuthHandler(deps.AuthService, deps.Sessions)
	projectHandler := handlers.NewProjectHandler(deps.ProjectService)
	taskHandler := handlers.NewTaskHandler(deps.TaskService)

	requireAuth := middleware.RequireAuth(deps.Sessions)
	requireProject := middleware.RequireProjectAccess(deps.ProjectService)
	requireTask := middleware.RequireTaskAccess(deps.TaskService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		apierrors.RespondWithMessage(c, http.StatusOK, "Task Tracker API is running")
	})

	// Auth routes
	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)
	r.GET("/logout", requireAuth, authHandler.Logout)
	r.GET("/me", requireAuth, authHandler.GetCurrentUser)

	// Project routes (protected)
	projects := r.Group("/projects")
	projects.Use(requireAuth)
	{
		projects.GET("", projectHandler.ListProjects)
		projects.POST("", projectHandler.CreateProject)
		projects.GET("/search", projectHandler.SearchProjects)
		projects.GET("/:id", requireProject, projectHandler.GetProject)
		projects.PATCH("/:id", requireProject, projectHandler.UpdateProject)
		projects.DELETE("/:id", requireProject, projectHandler.DeleteProject)
	}

	// Task routes (protected)
	tasks := r.Group("/tasks")
	tasks.Use(requireAuth)
	{
		tasks.GET("", taskHandler.ListTasks)
		tasks.POST("", taskHandler.CreateTask)
		tasks.GET("/search", taskHandler.SearchTasks)
		tasks.GET("/project/:id", taskHandler.ListProjectTasks)
		tasks.GET("/:id", requireTask, taskHandler.GetTask)
		tasks.PATCH("/:id", requireTask, taskHandler.UpdateTask)
		tasks.DELETE("/:id", requireTask, taskHandler.DeleteTask)
	}

	r.NoRoute(func(c *gin.Context) {
		apierrors.NotFound(c, "Route not found")
	})

	return r
}
