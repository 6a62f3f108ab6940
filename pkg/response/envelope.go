// Package response writes the JSON envelope every endpoint answers with
package response

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"taskmaster/task-api/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Fixed messages for flows where anything more specific would leak whether
// an account or token exists
const (
	MsgInvalidCredentials = "Invalid email or password"
	MsgResetRequested     = "If an account exists with that email, a password reset link has been sent"
	MsgInvalidResetToken  = "Password reset link is invalid or has expired"
	MsgInternal           = "Internal server error"
)

type Envelope struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Code      string `json:"code,omitempty"`
	Data      any    `json:"data,omitempty"`
	RequestID string `json:"requestID,omitempty"`
}

func OK(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Envelope{
		Success:   true,
		Message:   message,
		Data:      data,
		RequestID: c.GetString("requestID"),
	})
}

// Fail aborts the request with an error envelope
func Fail(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, Envelope{
		Success:   false,
		Message:   message,
		Code:      code,
		RequestID: c.GetString("requestID"),
	})
}

// FromError maps a service error to its status code and writes it. Anything
// unexpected is logged here and reported as a plain internal error.
func FromError(c *gin.Context, err error) {
	var (
		validation *service.ValidationError
		locked     *service.AccountLockedError
		unauth     *service.UnauthenticatedError
	)

	switch {
	case errors.As(err, &validation):
		Fail(c, http.StatusBadRequest, "validation_failed", capitalize(validation.Err.Error()))
	case errors.Is(err, service.ErrDuplicateEmail):
		Fail(c, http.StatusConflict, "email_taken", "This email is already registered. Please login or use a different email")
	case errors.Is(err, service.ErrInvalidCredentials):
		Fail(c, http.StatusUnauthorized, "invalid_credentials", MsgInvalidCredentials)
	case errors.As(err, &locked):
		retry := int(math.Ceil(locked.Remaining.Seconds()))

		c.Header("Retry-After", strconv.Itoa(retry))
		c.AbortWithStatusJSON(http.StatusLocked, Envelope{
			Success: false,
			Message: fmt.Sprintf("Account is temporarily locked. Try again in %d minutes", locked.RemainingMinutes()),
			Code:    "account_locked",
			Data: gin.H{
				"lockedUntil":       locked.Until,
				"retryAfterSeconds": retry,
			},
			RequestID: c.GetString("requestID"),
		})
	case errors.As(err, &unauth):
		Fail(c, http.StatusUnauthorized, unauth.Reason, capitalize(unauth.Error()))
	case errors.Is(err, service.ErrInvalidOrExpiredToken):
		Fail(c, http.StatusBadRequest, "invalid_reset_token", MsgInvalidResetToken)
	case errors.Is(err, service.ErrNotFound):
		Fail(c, http.StatusNotFound, "not_found", "Not found")
	default:
		zap.L().Error("Request failed",
			zap.Error(err),
			zap.String("requestID", c.GetString("requestID")),
			zap.String("path", c.FullPath()))

		Fail(c, http.StatusInternalServerError, "internal_error", MsgInternal)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}

	return s
}

// BadBody reports a request body that could not be decoded
func BadBody(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		Fail(c, http.StatusRequestEntityTooLarge, "body_too_large", "Request body size exceeds limit")
		return
	}

	zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", c.GetString("requestID")))
	Fail(c, http.StatusBadRequest, "validation_failed", "Invalid request body")
}
