package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studycoach/studycoach-backend/config"
	"github.com/studycoach/studycoach-backend/models"
	"github.com/studycoach/studycoach-backend/services"
)

type createClassRequest struct {
	ClassName string `json:"class_name" binding:"required"`
	School    string `json:"school"`
}

// CreateClass tạo lớp mới, trả về mã tham gia cho giáo viên
func CreateClass(c *gin.Context) {
	var req createClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dữ liệu không hợp lệ: " + err.Error()})
		return
	}

	classroom, err := config.Classrooms.CreateClass(currentEmail(c), req.ClassName, req.School)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Tạo lớp thành công",
		"classroom": classroom,
	})
}

type joinClassRequest struct {
	ClassCode string `json:"class_code" binding:"required"`
}

// JoinClass cho học sinh tham gia lớp bằng mã
func JoinClass(c *gin.Context) {
	var req joinClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dữ liệu không hợp lệ: " + err.Error()})
		return
	}

	classroom, err := config.Classrooms.JoinClassAsStudent(currentEmail(c), req.ClassCode)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Tham gia lớp thành công",
		"classroom": classroom,
	})
}

// JoinClassAsTeacher thêm giáo viên hiện tại làm đồng giảng viên của lớp
func JoinClassAsTeacher(c *gin.Context) {
	var req joinClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dữ liệu không hợp lệ: " + err.Error()})
		return
	}

	if err := config.Classrooms.JoinClassAsTeacher(currentEmail(c), req.ClassCode); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Đã tham gia lớp với vai trò giáo viên"})
}

// MyClasses liệt kê các lớp của người dùng hiện tại.
// Học sinh mở dashboard cũng được tính là một hoạt động.
func MyClasses(c *gin.Context) {
	role, email := currentRole(c), currentEmail(c)

	classes, err := config.Classrooms.MyClasses(role, email)
	if err != nil {
		respondError(c, err)
		return
	}

	if role == models.RoleStudent {
		_ = services.RecordStudentActivity(config.Store, email)
	}

	if classes == nil {
		classes = []models.Classroom{}
	}
	c.JSON(http.StatusOK, gin.H{"classrooms": classes})
}
