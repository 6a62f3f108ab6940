package auth

import (
	"net/http"
	"taskmaster/task-api/internal"
	"taskmaster/task-api/internal/service"
	"taskmaster/task-api/pkg/response"

	"github.com/gin-gonic/gin"
)

func Profile(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	u, err := d.Auth.Profile(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, http.StatusOK, "Profile fetched", u)
}

func UpdateProfile(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	var data service.ProfileInput
	if err := c.ShouldBindJSON(&data); err != nil {
		response.BadBody(c, err)
		return
	}

	u, err := d.Auth.UpdateProfile(c.Request.Context(), userID, data)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, http.StatusOK, "Profile updated", u)
}
