package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/AppLauncher/backend/internal/shared/types"
)

// statusOf maps domain errors onto HTTP status codes
func statusOf(err error) int {
	var verr *types.ValidationError
	switch {
	case errors.As(err, &verr):
		if verr.Field == "size" {
			return http.StatusRequestEntityTooLarge
		}
		return http.StatusBadRequest
	case errors.Is(err, types.ErrAppNotFound),
		errors.Is(err, types.ErrRepoNotFound),
		errors.Is(err, ErrUnknownContext):
		return http.StatusNotFound
	case errors.Is(err, ErrContextReleased):
		return http.StatusGone
	case errors.Is(err, types.ErrNoHTMLInArchive),
		errors.Is(err, types.ErrImportFormat),
		errors.Is(err, types.ErrNothingToLaunch):
		return http.StatusUnprocessableEntity
	case errors.Is(err, types.ErrInvalidSlot),
		errors.Is(err, types.ErrInvalidLayout):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrNetworkUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// fail records err on the context and writes the error envelope
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	body := gin.H{
		"success": false,
		"error":   err.Error(),
	}
	var verr *types.ValidationError
	if errors.As(err, &verr) {
		body["field"] = verr.Field
	}
	c.AbortWithStatusJSON(statusOf(err), body)
}

// badRequest rejects a malformed request body or parameter
func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   msg,
	})
}
