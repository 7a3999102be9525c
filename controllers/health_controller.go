package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/studycoach/studycoach-backend/config"
)

func HealthCheck(c *gin.Context) {
	// Mặc định trạng thái OK
	response := gin.H{
		"status":    "ok",
		"message":   "Service is healthy",
		"timestamp": time.Now().Unix(),
		"store":     "ok",
	}

	// Thử đọc hai document chính
	if _, err := config.Store.LoadUsers(); err != nil {
		response["store"] = "error: cannot read users document"
		response["status"] = "degraded"
		c.JSON(http.StatusInternalServerError, response)
		return
	}
	if _, err := config.Store.LoadClassrooms(); err != nil {
		response["store"] = "error: cannot read classrooms document"
		response["status"] = "degraded"
		c.JSON(http.StatusInternalServerError, response)
		return
	}

	// Trả về nếu mọi thứ ổn
	c.JSON(http.StatusOK, response)
}
