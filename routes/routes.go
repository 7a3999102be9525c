package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/studycoach/studycoach-backend/controllers"
	"github.com/studycoach/studycoach-backend/middleware"
	"github.com/studycoach/studycoach-backend/models"
)

func SetupRouter(r *gin.Engine) *gin.Engine {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/health", controllers.HealthCheck)

	api := r.Group("/api")
	api.Use(middleware.IdentityMiddleware())

	// Route dùng chung cho cả hai vai trò
	api.GET("/classes", controllers.MyClasses)
	api.GET("/submissions/:assignment_id", controllers.GetSubmission)
	api.POST("/chat", controllers.Chat)
	api.GET("/chat/history", controllers.ChatHistory)
	api.DELETE("/chat/history", controllers.ResetChat)
	api.GET("/performance/:email", controllers.GetPerformance)
	api.GET("/activity/:email", controllers.GetActivity)

	student := api.Group("")
	{
		student.Use(middleware.RequireRoles(models.RoleStudent))

		student.POST("/classes/join", controllers.JoinClass)
		student.POST("/submissions", controllers.SubmitAssignment)
		student.DELETE("/submissions/:assignment_id", controllers.UnsubmitAssignment)
	}

	teacher := api.Group("")
	{
		teacher.Use(middleware.RequireRoles(models.RoleTeacher))

		// Quản lý lớp
		teacher.POST("/classes", controllers.CreateClass)
		teacher.POST("/classes/join_as_teacher", controllers.JoinClassAsTeacher)

		// Quản lý rubric và bài tập
		teacher.POST("/rubrics", controllers.AddRubric)
		teacher.POST("/assignments", controllers.AddAssignment)
		teacher.PUT("/assignments/:id", controllers.EditAssignment)

		// Chấm bài
		teacher.POST("/grades", controllers.GradeAssignment)
		teacher.POST("/grades/ai", controllers.AIGradeAssignment)
	}

	return r
}
