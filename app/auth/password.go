package auth

import (
	"net/http"
	"taskmaster/task-api/internal"
	"taskmaster/task-api/internal/service"
	"taskmaster/task-api/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type passwordBody struct {
	Password string `json:"password"`
}

// ChangePassword answers with a fresh session since every older one stops
// working the moment the password changes
func ChangePassword(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var data service.ChangePasswordInput
	if err := c.ShouldBindJSON(&data); err != nil {
		response.BadBody(c, err)
		return
	}

	s, err := d.Auth.ChangePassword(c.Request.Context(), userID, data)
	if err != nil {
		response.FromError(c, err)
		return
	}

	zap.L().Info("Password changed", zap.String("userID", userID), zap.String("requestID", requestID))
	response.OK(c, http.StatusOK, "Password changed", s)
}

type forgotBody struct {
	Email string `json:"email"`
}

func ForgotPassword(c *gin.Context, d *internal.Deps) {
	var data forgotBody
	if err := c.ShouldBindJSON(&data); err != nil {
		response.BadBody(c, err)
		return
	}

	req, err := d.Auth.ForgotPassword(c.Request.Context(), data.Email)
	if err != nil {
		response.FromError(c, err)
		return
	}

	if req.Token == "" {
		response.OK(c, http.StatusOK, response.MsgResetRequested, nil)
		return
	}

	response.OK(c, http.StatusOK, response.MsgResetRequested, req)
}

func ResetPassword(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data passwordBody
	if err := c.ShouldBindJSON(&data); err != nil {
		response.BadBody(c, err)
		return
	}

	if err := d.Auth.ResetPassword(c.Request.Context(), c.Param("token"), data.Password); err != nil {
		response.FromError(c, err)
		return
	}

	zap.L().Info("Password reset through token", zap.String("requestID", requestID))
	response.OK(c, http.StatusOK, "Password has been reset, please log in", nil)
}
