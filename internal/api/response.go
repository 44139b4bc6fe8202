package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/boardly/boardly-server/internal/models"
	"github.com/boardly/boardly-server/internal/service"
)

// respondError is the single place business errors become HTTP responses.
// Unknown errors are logged and returned as an opaque 500.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := "INTERNAL"
	message := "internal server error"

	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		status, code, message = http.StatusUnauthorized, "UNAUTHORIZED", err.Error()
	case errors.Is(err, service.ErrForbidden):
		status, code, message = http.StatusForbidden, "FORBIDDEN", err.Error()
	case errors.Is(err, service.ErrNotFound):
		status, code, message = http.StatusNotFound, "NOT_FOUND", err.Error()
	case errors.Is(err, service.ErrInvalidArgument):
		status, code, message = http.StatusBadRequest, "INVALID_ARGUMENT", err.Error()
	case errors.Is(err, service.ErrShareLinkExpired):
		status, code, message = http.StatusGone, "SHARE_LINK_EXPIRED", err.Error()
	case errors.Is(err, service.ErrConflict):
		status, code, message = http.StatusConflict, "CONFLICT", err.Error()
	default:
		h.logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}

	c.JSON(status, models.ErrorResponse{
		Status:  "error",
		Code:    code,
		Message: message,
	})
}

func (h *Handler) respondBindingError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Status:  "error",
		Code:    "INVALID_ARGUMENT",
		Message: err.Error(),
	})
}
