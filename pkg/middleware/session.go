package middleware

import (
	"context"
	"taskmaster/task-api/internal/service"
	"taskmaster/task-api/pkg/response"

	"github.com/gin-gonic/gin"
)

type Authenticator interface {
	Authenticate(ctx context.Context, header string) (*service.Identity, error)
}

// NewSessionMiddleware guards protected routes. The credential is checked
// against the live user on every request, so a password change locks out old
// tokens right away.
func NewSessionMiddleware(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := a.Authenticate(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			response.FromError(c, err)
			return
		}

		c.Set("userID", id.UserID)
		c.Request = c.Request.WithContext(service.WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}
