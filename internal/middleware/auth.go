package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-tracker-api/internal/constants"
	apierrors "github.com/yukikurage/task-tracker-api/internal/errors"
	"github.com/yukikurage/task-tracker-api/internal/logger"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/session"
)

// SessionResolver maps a session token to its user.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*models.User, error)
}

// RequireAuth resolves the session token from the cookie session or the
// Authorization header and aborts with 401 when neither is live. A dead
// cookie token does not shadow a live bearer token.
func RequireAuth(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, token := range SessionTokens(c) {
			user, err := resolver.Resolve(c.Request.Context(), token)
			if errors.Is(err, session.ErrUnauthenticated) {
				continue
			}
			if err != nil {
				logger.ErrorContext(c.Request.Context(), "Failed to resolve session", "error", err)
				apierrors.InternalError(c)
				c.Abort()
				return
			}

			// Store the principal in context for easy access in handlers
			c.Set(constants.ContextKeyUserID, user.ID)
			c.Set(constants.ContextKeyUser, user)
			c.Set(constants.ContextKeySessionToken, token)
			c.Next()
			return
		}

		apierrors.Unauthorized(c, "")
		c.Abort()
	}
}

// SessionTokens returns the candidate tokens of a request: the one carried by
// the cookie session first, then a bearer Authorization header.
func SessionTokens(c *gin.Context) []string {
	var tokens []string
	if _, ok := c.Get(sessions.DefaultKey); ok {
		if token, ok := sessions.Default(c).Get(constants.SessionKeyToken).(string); ok && token != "" {
			tokens = append(tokens, token)
		}
	}

	header := c.GetHeader("Authorization")
	if scheme, token, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
		token = strings.TrimSpace(token)
		if token != "" && (len(tokens) == 0 || tokens[0] != token) {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	switch v := userID.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}

// GetUser retrieves the current user from context
func GetUser(c *gin.Context) (*models.User, bool) {
	user, ok := c.Get(constants.ContextKeyUser)
	if !ok {
		return nil, false
	}
	u, ok := user.(*models.User)
	return u, ok
}
