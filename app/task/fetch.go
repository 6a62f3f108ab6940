package task

import (
	"net/http"
	"taskmaster/task-api/internal"
	"taskmaster/task-api/pkg/response"

	"github.com/gin-gonic/gin"
)

func Fetch(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	tasks, err := d.Tasks.List(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, http.StatusOK, "Tasks fetched", tasks)
}
