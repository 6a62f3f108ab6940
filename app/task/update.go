package task

import (
	"net/http"
	"taskmaster/task-api/internal"
	"taskmaster/task-api/internal/service"
	"taskmaster/task-api/pkg/response"

	"github.com/gin-gonic/gin"
)

func Update(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	var data service.TaskPatch
	if err := c.ShouldBindJSON(&data); err != nil {
		response.BadBody(c, err)
		return
	}

	t, err := d.Tasks.Update(c.Request.Context(), userID, c.Param("id"), data)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, http.StatusOK, "Task updated", t)
}
