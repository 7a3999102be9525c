package controllers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/studycoach/studycoach-backend/config"
	"github.com/studycoach/studycoach-backend/services"
	"github.com/studycoach/studycoach-backend/utils"
)

// AddRubric đăng rubric cho một lớp. Nội dung nhập tay qua form hoặc
// đính kèm file .txt/.pdf/.docx (field "rubric_file") để trích văn bản.
func AddRubric(c *gin.Context) {
	code := c.PostForm("class_code")
	title := c.PostForm("title")
	content := c.PostForm("content")

	if content == "" {
		extracted, err := readUploadedDocument(c, "rubric_file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		content = extracted
	}

	rubric, err := config.Classrooms.AddRubric(currentEmail(c), code, title, content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Đăng rubric thành công",
		"rubric":  rubric,
	})
}

// AddAssignment đăng bài tập mới. Nội dung và mô tả có thể đính kèm file
// (field "content_file" / "description_file") thay cho nhập tay.
func AddAssignment(c *gin.Context) {
	code := c.PostForm("class_code")

	in, err := assignmentInputFromForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	assignment, err := config.Classrooms.AddAssignment(currentEmail(c), code, in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Đăng bài tập thành công",
		"assignment": assignment,
	})
}

// EditAssignment sửa bài tập đã đăng, bài nộp hiện có không bị ảnh hưởng
func EditAssignment(c *gin.Context) {
	assignmentID := c.Param("id")

	in, err := assignmentInputFromForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	assignment, err := config.Classrooms.UpdateAssignment(currentEmail(c), assignmentID, in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Cập nhật bài tập thành công",
		"assignment": assignment,
	})
}

func assignmentInputFromForm(c *gin.Context) (services.AssignmentInput, error) {
	in := services.AssignmentInput{
		Title:       c.PostForm("title"),
		Content:     c.PostForm("content"),
		Description: c.PostForm("description"),
		RubricID:    c.PostForm("rubric_id"),
	}

	if in.Content == "" {
		extracted, err := readUploadedDocument(c, "content_file")
		if err != nil {
			return in, err
		}
		in.Content = extracted
	}
	if in.Description == "" {
		extracted, err := readUploadedDocument(c, "description_file")
		if err != nil {
			return in, err
		}
		in.Description = extracted
	}
	return in, nil
}

// readUploadedDocument trích văn bản từ file đính kèm của form.
// Không có file thì trả chuỗi rỗng, không phải lỗi.
func readUploadedDocument(c *gin.Context, field string) (string, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return "", nil
	}
	if header.Size > services.MaxUploadSize {
		return "", fmt.Errorf("%w: file %s exceeds the 16MB limit", services.ErrValidation, header.Filename)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	inputType, err := utils.GetInputTypeFromExt(ext)
	if err != nil {
		return "", err
	}

	file, err := header.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	return services.ExtractUploadedText(file, header.Size, inputType)
}
