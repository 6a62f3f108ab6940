package auth

import (
	"net/http"
	"taskmaster/task-api/internal"
	"taskmaster/task-api/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func DeleteAccount(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var data passwordBody
	if err := c.ShouldBindJSON(&data); err != nil {
		response.BadBody(c, err)
		return
	}

	if err := d.Auth.DeleteAccount(c.Request.Context(), userID, data.Password); err != nil {
		response.FromError(c, err)
		return
	}

	zap.L().Info("Account deleted", zap.String("userID", userID), zap.String("requestID", requestID))
	response.OK(c, http.StatusOK, "Account deleted", nil)
}
