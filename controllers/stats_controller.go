package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/studycoach/studycoach-backend/config"
	"github.com/studycoach/studycoach-backend/models"
	"github.com/studycoach/studycoach-backend/services"
)

// canViewStudent: học sinh chỉ xem chính mình, giáo viên chỉ xem học sinh
// có chung lớp với mình
func canViewStudent(c *gin.Context, classrooms *models.ClassroomsDocument, email string) bool {
	switch currentRole(c) {
	case models.RoleTeacher:
		return services.TeacherOverseesStudent(classrooms, currentEmail(c), email)
	default:
		return email == currentEmail(c)
	}
}

// GetPerformance tổng hợp điểm của một học sinh
func GetPerformance(c *gin.Context) {
	email := c.Param("email")

	classrooms, err := config.Store.LoadClassrooms()
	if err != nil {
		respondError(c, err)
		return
	}
	if !canViewStudent(c, classrooms, email) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Bạn không có quyền xem kết quả của học sinh này"})
		return
	}

	grades := services.StudentGrades(classrooms, email)
	c.JSON(http.StatusOK, gin.H{
		"email":       email,
		"performance": services.ComputePerformance(grades),
	})
}

// GetActivity trả về lần hoạt động cuối của học sinh ở dạng thô,
// dạng hiển thị và điểm hoạt động 0-100
func GetActivity(c *gin.Context) {
	email := c.Param("email")

	classrooms, err := config.Store.LoadClassrooms()
	if err != nil {
		respondError(c, err)
		return
	}
	if !canViewStudent(c, classrooms, email) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Bạn không có quyền xem hoạt động của học sinh này"})
		return
	}

	users, err := config.Store.LoadUsers()
	if err != nil {
		respondError(c, err)
		return
	}
	student := users.FindStudent(email)
	if student == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy học sinh " + email})
		return
	}

	now := time.Now().UTC()
	c.JSON(http.StatusOK, gin.H{
		"email":         email,
		"last_activity": student.LastActivity,
		"formatted":     services.FormatLastActivity(student.LastActivity, now),
		"score":         services.ActivityScore(student.LastActivity, now),
	})
}
