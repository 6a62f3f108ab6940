package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskmaster/task-api/internal/service"
	"taskmaster/task-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func render(t *testing.T, err error) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set("requestID", "req-1")

	FromError(c, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))

	return w, env
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", &service.ValidationError{Err: validators.ErrNameEmpty}, http.StatusBadRequest, "validation_failed"},
		{"duplicate", service.ErrDuplicateEmail, http.StatusConflict, "email_taken"},
		{"credentials", service.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
		{"unauthenticated", &service.UnauthenticatedError{Reason: service.ReasonInvalidated}, http.StatusUnauthorized, "session_invalidated"},
		{"reset token", service.ErrInvalidOrExpiredToken, http.StatusBadRequest, "invalid_reset_token"},
		{"not found", service.ErrNotFound, http.StatusNotFound, "not_found"},
		{"internal", fmt.Errorf("%w: boom", service.ErrInternal), http.StatusInternalServerError, "internal_error"},
		{"unknown", errors.New("db exploded"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := render(t, tt.err)

			assert.Equal(t, tt.status, w.Code)
			assert.False(t, env.Success)
			assert.Equal(t, tt.code, env.Code)
			assert.Equal(t, "req-1", env.RequestID)
			assert.NotEmpty(t, env.Message)
		})
	}
}

func TestInternalErrorsHideDetails(t *testing.T) {
	_, env := render(t, errors.New("pq: connection refused to 10.0.0.3"))
	assert.Equal(t, MsgInternal, env.Message)
}

func TestAccountLockedCarriesRetry(t *testing.T) {
	until := time.Date(2025, 1, 1, 12, 30, 0, 0, time.UTC)
	w, env := render(t, &service.AccountLockedError{Until: until, Remaining: 29*time.Minute + 30*time.Second})

	assert.Equal(t, http.StatusLocked, w.Code)
	assert.Equal(t, "1770", w.Header().Get("Retry-After"))
	assert.Equal(t, "account_locked", env.Code)
	assert.Contains(t, env.Message, "30 minutes")

	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 1770, data["retryAfterSeconds"])
}

func TestOK(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	OK(c, http.StatusCreated, "Created", gin.H{"id": "abc"})

	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "Created", env.Message)
}
