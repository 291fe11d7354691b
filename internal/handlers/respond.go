package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apierrors "github.com/yukikurage/task-insights-api/internal/errors"
	"github.com/yukikurage/task-insights-api/internal/logger"
	"github.com/yukikurage/task-insights-api/internal/services"
	"github.com/yukikurage/task-insights-api/internal/utils"
)

var notFoundErrors = []error{
	services.ErrUserNotFound,
	services.ErrCategoryNotFound,
	services.ErrTagNotFound,
	services.ErrTaskNotFound,
}

var conflictErrors = []error{
	services.ErrUsernameTaken,
	services.ErrEmailTaken,
	services.ErrCategoryNameTaken,
	services.ErrTagNameTaken,
}

var validationErrors = []error{
	services.ErrUsernameRequired,
	services.ErrEmailRequired,
	services.ErrInvalidUsername,
	services.ErrPasswordTooShort,
	services.ErrInvalidRole,
	services.ErrNameRequired,
	services.ErrTitleRequired,
	services.ErrDescriptionTooLong,
	services.ErrInvalidStatus,
	services.ErrInvalidDateRange,
	services.ErrDateRangeTooLong,
}

// respondServiceError maps service errors onto API errors. Anything
// unrecognised is logged and reported as a 500.
func respondServiceError(c *gin.Context, log *zap.Logger, err error) {
	switch {
	case isAny(err, notFoundErrors):
		apierrors.NotFound(c, err.Error())
	case isAny(err, conflictErrors):
		apierrors.Conflict(c, err.Error())
	case isAny(err, validationErrors):
		apierrors.BadRequest(c, err.Error())
	default:
		_ = c.Error(err)
		logger.WithRequestID(c.Request.Context(), log).Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		apierrors.InternalError(c, "")
	}
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// parseIDParam reads a numeric path parameter, answering 400 when it is malformed
func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		apierrors.BadRequest(c, "Invalid "+name)
		return 0, false
	}
	return id, true
}

// parseIDQuery reads a required numeric query parameter
func parseIDQuery(c *gin.Context, name string) (uint64, bool) {
	raw := c.Query(name)
	if raw == "" {
		apierrors.MissingField(c, name)
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		apierrors.BadRequest(c, "Invalid "+name)
		return 0, false
	}
	return id, true
}

// parseTimeQuery reads a required timestamp or date query parameter.
// Values without a zone are taken as UTC.
func parseTimeQuery(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		apierrors.MissingField(c, name)
		return time.Time{}, false
	}
	t, err := utils.ParseTime(raw, time.UTC)
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+name+": expected RFC3339 timestamp or YYYY-MM-DD date")
		return time.Time{}, false
	}
	return t, true
}

func deleted(c *gin.Context, what string) {
	c.JSON(http.StatusOK, gin.H{"message": what + " deleted successfully"})
}
