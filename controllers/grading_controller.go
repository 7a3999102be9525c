package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studycoach/studycoach-backend/config"
	"github.com/studycoach/studycoach-backend/services"
)

type gradeRequest struct {
	AssignmentID    string `json:"assignment_id" binding:"required"`
	StudentEmail    string `json:"student_email" binding:"required"`
	Grade           *int   `json:"grade" binding:"required"`
	Feedback        string `json:"feedback"`
	EnhanceFeedback bool   `json:"enhance_feedback"`
}

// GradeAssignment chấm tay một bài nộp
func GradeAssignment(c *gin.Context) {
	var req gradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dữ liệu không hợp lệ: " + err.Error()})
		return
	}

	submission, err := config.Grading.GradeAssignment(c.Request.Context(), currentEmail(c), services.GradeInput{
		AssignmentID:    req.AssignmentID,
		StudentEmail:    req.StudentEmail,
		Grade:           *req.Grade,
		Feedback:        req.Feedback,
		EnhanceFeedback: req.EnhanceFeedback,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Chấm bài thành công",
		"submission": submission,
	})
}

type aiGradeRequest struct {
	AssignmentID string `json:"assignment_id" binding:"required"`
	StudentEmail string `json:"student_email" binding:"required"`
}

// AIGradeAssignment chấm tự động bằng AI, model lỗi thì trả điểm fallback
// có cắm cờ chứ không trả lỗi
func AIGradeAssignment(c *gin.Context) {
	var req aiGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dữ liệu không hợp lệ: " + err.Error()})
		return
	}

	submission, err := config.Grading.AIGradeAssignment(c.Request.Context(), currentEmail(c), req.AssignmentID, req.StudentEmail)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Chấm bài bằng AI thành công",
		"submission": submission,
	})
}
