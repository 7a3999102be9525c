package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studycoach/studycoach-backend/config"
	"github.com/studycoach/studycoach-backend/models"
	"github.com/studycoach/studycoach-backend/services"
)

type chatRequest struct {
	Prompt      string `json:"prompt" binding:"required"`
	Personality string `json:"personality"`
	ClassCode   string `json:"class_code"`
}

// Chat xử lý một lượt hỏi đáp với trợ lý AI
func Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dữ liệu không hợp lệ: " + err.Error()})
		return
	}

	reply, err := config.Chat.Chat(c.Request.Context(), currentRole(c), currentEmail(c), req.ClassCode, req.Personality, req.Prompt)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reply": reply})
}

// ChatHistory trả về lịch sử hội thoại hiện tại.
// Học sinh mở trang AI cũng được tính là một hoạt động.
func ChatHistory(c *gin.Context) {
	role, email := currentRole(c), currentEmail(c)

	if role == models.RoleStudent {
		_ = services.RecordStudentActivity(config.Store, email)
	}

	c.JSON(http.StatusOK, gin.H{"history": config.Chat.History(role, email)})
}

// ResetChat xoá lịch sử hội thoại của người dùng hiện tại
func ResetChat(c *gin.Context) {
	config.Conversations.Reset(currentRole(c), currentEmail(c))
	c.JSON(http.StatusOK, gin.H{"message": "Đã xoá lịch sử hội thoại"})
}
