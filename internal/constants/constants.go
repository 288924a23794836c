package constants

import "time"

// Session
const (
	SessionCookieName = "task_session"
	SessionKeyToken   = "session_token"
	SessionTTL        = 24 * time.Hour
	SessionTokenBytes = 32

	// ContextKeyUserID holds the authenticated user's id in the gin context.
	ContextKeyUserID = "user_id"
	// ContextKeyUser holds the authenticated *models.User in the gin context.
	ContextKeyUser = "user"
	// ContextKeySessionToken holds the resolved session token.
	ContextKeySessionToken = "session_token"

	ContextKeyProject = "project"
	ContextKeyTask    = "task"
)

// Tasks
const (
	MinTaskPriority = 1
	MaxTaskPriority = 3
)
