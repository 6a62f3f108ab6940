// Package root holds the endpoints that don't belong to any resource
package root

import (
	"net/http"
	"taskmaster/task-api/pkg/response"

	"github.com/gin-gonic/gin"
)

func Banner(c *gin.Context) {
	response.OK(c, http.StatusOK, "Task manager API is running", nil)
}
