// Package auth holds the account endpoints under /api/auth
package auth

import (
	"net/http"
	"taskmaster/task-api/internal"
	"taskmaster/task-api/internal/service"
	"taskmaster/task-api/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func Signup(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data service.SignupInput
	if err := c.ShouldBindJSON(&data); err != nil {
		response.BadBody(c, err)
		return
	}

	s, err := d.Auth.Signup(c.Request.Context(), data)
	if err != nil {
		response.FromError(c, err)
		return
	}

	zap.L().Info("New account created", zap.String("userID", s.User.ID), zap.String("requestID", requestID))
	response.OK(c, http.StatusCreated, "Account created", s)
}
