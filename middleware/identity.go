package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/studycoach/studycoach-backend/models"
)

// IdentityMiddleware đọc danh tính từ header do web layer (đã đăng nhập)
// truyền xuống. Backend này chạy sau proxy tin cậy nên không tự xác thực lại.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		email := strings.TrimSpace(c.GetHeader("X-User-Email"))
		role := strings.TrimSpace(c.GetHeader("X-User-Role"))

		if email == "" || role == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Thiếu thông tin đăng nhập"})
			c.Abort()
			return
		}
		if role != models.RoleStudent && role != models.RoleTeacher {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Vai trò không hợp lệ"})
			c.Abort()
			return
		}

		c.Set("email", email)
		c.Set("user_type", role)
		c.Next()
	}
}

// RequireRoles cho phép chỉ định nhiều vai trò được quyền truy cập
func RequireRoles(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleValue, exists := c.Get("user_type")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Không xác định được vai trò người dùng"})
			c.Abort()
			return
		}

		role, ok := roleValue.(string)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi xử lý vai trò người dùng"})
			c.Abort()
			return
		}

		for _, allowed := range allowedRoles {
			if role == allowed {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{
			"error": "Bạn không có quyền truy cập tài nguyên này",
		})
		c.Abort()
	}
}
