package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"accountsvc/internal/middleware"
	"accountsvc/internal/service"
)

const msgInternal = "internal server error"

// statusFor maps a service error to its HTTP status and client message.
func statusFor(err error) (int, string) {
	msg := service.Message(err)
	switch {
	case msg == "":
		return http.StatusInternalServerError, msgInternal
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized, msg
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound, msg
	case errors.Is(err, service.ErrEmailDelivery):
		return http.StatusInternalServerError, msg
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrDuplicateEmail),
		errors.Is(err, service.ErrMissingCredentials),
		errors.Is(err, service.ErrMissingFields),
		errors.Is(err, service.ErrSamePassword),
		errors.Is(err, service.ErrInvalidResetToken):
		return http.StatusBadRequest, msg
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

func (h HandlerSet) writeError(c *gin.Context, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		h.log.Error().
			Err(err).
			Str("path", c.FullPath()).
			Str("request_id", middleware.RequestIDFrom(c)).
			Msg("request failed")
	}
	c.JSON(status, gin.H{"message": msg})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"message": msg})
}

// bindJSON decodes the request body into dst. An empty body leaves dst zero
// so the services report which fields are missing.
func bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	badRequest(c, msgInvalidBody)
	return false
}
