package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/crm-api/internal/errors"
	"github.com/yukikurage/crm-api/internal/services"
)

// respondServiceError maps service errors onto API error responses.
func respondServiceError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		apierrors.ValidationFailed(c, validationErr.Fields)
	case errors.Is(err, services.ErrNotOrganizer),
		errors.Is(err, services.ErrNoRole):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrLeadNotFound),
		errors.Is(err, services.ErrAgentNotFound),
		errors.Is(err, services.ErrCategoryNotFound),
		errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrUsernameTaken):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.InvalidCredentials(c, err.Error())
	case errors.Is(err, services.ErrInvalidPasswordToken):
		apierrors.BadRequest(c, err.Error())
	default:
		// Surfaced to the request logger.
		_ = c.Error(err)
		apierrors.InternalError(c, "Internal server error")
	}
}

// parseIDParam reads a positive numeric path parameter.
func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		apierrors.BadRequest(c, "Invalid "+name)
		return 0, false
	}
	return id, true
}
