// Package task holds the task endpoints. Every handler is scoped to the
// authenticated user, other people's tasks look like they don't exist.
package task

import (
	"net/http"
	"taskmaster/task-api/internal"
	"taskmaster/task-api/internal/service"
	"taskmaster/task-api/pkg/response"

	"github.com/gin-gonic/gin"
)

func Add(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	var data service.TaskInput
	if err := c.ShouldBindJSON(&data); err != nil {
		response.BadBody(c, err)
		return
	}

	t, err := d.Tasks.Add(c.Request.Context(), userID, data)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, http.StatusCreated, "Task created", t)
}
