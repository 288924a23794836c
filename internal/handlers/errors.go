package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/task-tracker-api/internal/errors"
	"github.com/yukikurage/task-tracker-api/internal/logger"
	"github.com/yukikurage/task-tracker-api/internal/services"
)

// respondResourceError maps project and task service errors to envelopes.
func respondResourceError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		apierrors.BadRequest(c, validationErr.Message)
	case errors.Is(err, services.ErrProjectExists),
		errors.Is(err, services.ErrTaskExists):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		logger.ErrorContext(c.Request.Context(), "Request failed", "error", err)
		apierrors.InternalError(c)
	}
}

func parseUintParam(c *gin.Context, value, message string) (uint64, bool) {
	id, err := strconv.ParseUint(value, 10, 64)
	if err != nil || id == 0 {
		apierrors.BadRequest(c, message)
		return 0, false
	}
	return id, true
}
