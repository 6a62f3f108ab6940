package auth

import (
	"net/http"
	"taskmaster/task-api/internal"
	"taskmaster/task-api/pkg/response"

	"github.com/gin-gonic/gin"
)

// Logout only acknowledges. Sessions are stateless so the client drops its
// token and it expires on its own.
func Logout(c *gin.Context, d *internal.Deps) {
	if err := d.Auth.Logout(c.Request.Context()); err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, http.StatusOK, "Logged out", nil)
}
