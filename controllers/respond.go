package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studycoach/studycoach-backend/services"
)

// currentEmail / currentRole lấy danh tính đã được IdentityMiddleware gắn vào
func currentEmail(c *gin.Context) string {
	return c.GetString("email")
}

func currentRole(c *gin.Context) string {
	return c.GetString("user_type")
}

// respondError ánh xạ lỗi nghiệp vụ sang mã HTTP
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrAuthorization):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrExternal):
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
