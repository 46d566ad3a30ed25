package handlers

import (
	"errors"
	"net/http"
	"strings"

	"dentflow/models"
	"dentflow/services/booking"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusFor maps a scheduling error kind to its HTTP status.
func statusFor(kind booking.ErrorKind) int {
	switch kind {
	case booking.KindValidation, booking.KindInvalidTimeFormat:
		return http.StatusBadRequest
	case booking.KindNotFound:
		return http.StatusNotFound
	case booking.KindConflict:
		return http.StatusConflict
	case booking.KindInvalidTransition:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func respondOK(c *gin.Context, status int, data any, warnings ...string) {
	c.JSON(status, models.Ok(data, warnings...))
}

// respondError renders err in the failure envelope. Infrastructure errors are logged and hidden.
func respondError(c *gin.Context, err error) {
	var se *booking.SchedulingError
	if !errors.As(err, &se) {
		getLogger(c).Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.Fail("internal_error", "An unexpected error occurred. Please try again later."))
		return
	}
	msg := se.Message
	if len(se.Details) > 0 {
		msg += ": " + strings.Join(se.Details, "; ")
	}
	c.JSON(statusFor(se.Kind), models.Fail(string(se.Kind), msg))
}

// badRequest reports a payload that could not be bound.
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.Fail(string(booking.KindValidation), "invalid input: "+err.Error()))
}
