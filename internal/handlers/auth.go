package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-tracker-api/internal/constants"
	"github.com/yukikurage/task-tracker-api/internal/dto"
	apierrors "github.com/yukikurage/task-tracker-api/internal/errors"
	"github.com/yukikurage/task-tracker-api/internal/logger"
	"github.com/yukikurage/task-tracker-api/internal/middleware"
	"github.com/yukikurage/task-tracker-api/internal/services"
	"github.com/yukikurage/task-tracker-api/internal/session"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
	sessions    *session.Manager
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, sessions *session.Manager) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
	}
}

// Register creates a new user.
func (h *AuthHandler) Register(c *gin.Context) {
	type RegisterRequest struct {
		FirstName            string `json:"first_name"`
		LastName             string `json:"last_name"`
		Username             string `json:"username"`
		Password             string `json:"password"`
		PasswordConfirmation string `json:"password_confirmation"`
		Email                string `json:"email"`
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.Register(c.Request.Context(), services.RegisterInput{
		FirstName:            req.FirstName,
		LastName:             req.LastName,
		Username:             req.Username,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
		Email:                req.Email,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	apierrors.Created(c, dto.ToUserDTO(*user))
}

// Login verifies credentials and opens a session.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Username and password are required")
		return
	}

	user, err := h.authService.Verify(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	sess, err := h.sessions.Login(c.Request.Context(), user, session.Metadata{
		ClientIP:  c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	cookie := sessions.Default(c)
	cookie.Set(constants.SessionKeyToken, sess.Token)
	if err := cookie.Save(); err != nil {
		logger.ErrorContext(c.Request.Context(), "Failed to save session cookie", "error", err)
		apierrors.InternalError(c)
		return
	}

	apierrors.OK(c, dto.LoginDTO{
		User:      dto.ToUserDTO(*user),
		Token:     sess.Token,
		ExpiresAt: sess.Expiry,
	})
}

// Logout revokes the current session and clears the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	if err := h.sessions.Logout(c.Request.Context(), userID, c.GetString(constants.ContextKeySessionToken)); err != nil {
		respondAuthError(c, err)
		return
	}

	cookie := sessions.Default(c)
	cookie.Clear()
	cookie.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := cookie.Save(); err != nil {
		logger.ErrorContext(c.Request.Context(), "Failed to clear session cookie", "error", err)
		apierrors.InternalError(c)
		return
	}

	apierrors.RespondWithMessage(c, http.StatusOK, "Logged out")
}

// GetCurrentUser returns the authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	user, exists := middleware.GetUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	apierrors.OK(c, dto.ToUserDTO(*user))
}

func respondAuthError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		apierrors.BadRequest(c, validationErr.Message)
	case errors.Is(err, services.ErrUsernameTaken):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.InvalidCredentials(c, "Incorrect password")
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, "User not found")
	case errors.Is(err, session.ErrUnauthenticated):
		apierrors.Unauthorized(c, "")
	default:
		logger.ErrorContext(c.Request.Context(), "Auth request failed", "error", err)
		apierrors.InternalError(c)
	}
}
