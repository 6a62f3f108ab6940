package task

import (
	"net/http"
	"taskmaster/task-api/internal"
	"taskmaster/task-api/pkg/response"

	"github.com/gin-gonic/gin"
)

func Delete(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	if err := d.Tasks.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, http.StatusOK, "Task deleted", nil)
}
