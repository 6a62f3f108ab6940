package root

import (
	"net/http"
	"taskmaster/task-api/internal/service"
	"taskmaster/task-api/pkg/response"

	"github.com/gin-gonic/gin"
)

// Private lets a client check that its credential is still accepted
func Private(c *gin.Context) {
	id, ok := service.IdentityFrom(c.Request.Context())
	if !ok {
		response.FromError(c, &service.UnauthenticatedError{Reason: service.ReasonMissing})
		return
	}

	response.OK(c, http.StatusOK, "Welcome "+id.Name, gin.H{
		"userID": id.UserID,
		"email":  id.Email,
	})
}
