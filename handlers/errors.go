package handlers

import (
	"context"
	"errors"
	"net/http"

	"barberhive/domain"
	"barberhive/services/shop"
	"barberhive/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusFor maps core errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case domain.IsValidation(err):
		return http.StatusBadRequest
	case domain.IsNotFound(err):
		return http.StatusNotFound
	case domain.IsConflict(err):
		return http.StatusConflict
	case domain.IsInvalidTransition(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, shop.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrLockTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as a JSON error. Internal errors are logged with
// their cause and reported without it.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		getLogger(c).Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		msg := "Internal Server Error"
		if status == http.StatusServiceUnavailable {
			msg = "Service busy, please retry"
		}
		c.AbortWithStatusJSON(status, utils.ErrorResponse{Message: msg})
		return
	}
	c.AbortWithStatusJSON(status, utils.ErrorResponse{Message: err.Error()})
}

func badRequest(c *gin.Context, err error) {
	utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
}
