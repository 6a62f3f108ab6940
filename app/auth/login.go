package auth

import (
	"net/http"
	"taskmaster/task-api/internal"
	"taskmaster/task-api/internal/service"
	"taskmaster/task-api/pkg/response"

	"github.com/gin-gonic/gin"
)

func Login(c *gin.Context, d *internal.Deps) {
	var data service.LoginInput
	if err := c.ShouldBindJSON(&data); err != nil {
		response.BadBody(c, err)
		return
	}

	s, err := d.Auth.Login(c.Request.Context(), data)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, http.StatusOK, "Logged in", s)
}
