package controllers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studycoach/studycoach-backend/config"
	"github.com/studycoach/studycoach-backend/models"
	"github.com/studycoach/studycoach-backend/services"
)

// SubmitAssignment nhận bài nộp multipart: assignment_id + đúng một kênh
// nội dung (submission_text, submission_link hoặc file "submission_file")
func SubmitAssignment(c *gin.Context) {
	assignmentID := c.PostForm("assignment_id")
	if assignmentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Thiếu assignment_id"})
		return
	}

	payload := services.SubmissionPayload{
		Text: c.PostForm("submission_text"),
		Link: c.PostForm("submission_link"),
	}

	if header, err := c.FormFile("submission_file"); err == nil {
		if header.Size > services.MaxUploadSize {
			c.JSON(http.StatusBadRequest, gin.H{"error": "File vượt quá giới hạn 16MB"})
			return
		}
		file, err := header.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Không đọc được file đính kèm"})
			return
		}
		data, err := io.ReadAll(io.LimitReader(file, services.MaxUploadSize+1))
		file.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Không đọc được file đính kèm"})
			return
		}
		payload.FileName = header.Filename
		payload.FileData = data
	}

	submission, err := config.Submissions.Submit(currentEmail(c), assignmentID, payload)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Nộp bài thành công",
		"submission": submission,
	})
}

// UnsubmitAssignment rút lại bài nộp chưa chấm
func UnsubmitAssignment(c *gin.Context) {
	assignmentID := c.Param("assignment_id")

	if err := config.Submissions.Unsubmit(currentEmail(c), assignmentID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Đã rút lại bài nộp"})
}

// GetSubmission xem một bài nộp: học sinh xem bài của mình, giáo viên xem
// bài của học sinh trong lớp mình qua query student_email
func GetSubmission(c *gin.Context) {
	assignmentID := c.Param("assignment_id")

	studentEmail := currentEmail(c)
	if currentRole(c) == models.RoleTeacher {
		if q := c.Query("student_email"); q != "" {
			studentEmail = q
		}
	}

	submission, err := config.Submissions.GetSubmission(currentRole(c), currentEmail(c), assignmentID, studentEmail)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"submission": submission})
}
