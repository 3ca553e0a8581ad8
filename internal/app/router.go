package app

import (
	"examhub_backend/internal/config"
	"examhub_backend/internal/middleware"
	"examhub_backend/internal/model"
	"examhub_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	// Swagger 文档
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Prometheus 指标
	router.GET("/metrics", monitoring.PrometheusHandler())

	router.GET("/health", c.health.HealthCheck)

	public := router.Group("/api")
	{
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
		// 学科参考数据公开可读，游客也能浏览
		public.GET("/subjects", middleware.TryAuthMiddleware(cfg), c.blueprint.ListSubjects)
	}

	auth := router.Group("/api")
	auth.Use(middleware.AuthMiddleware(cfg))
	auth.Use(middleware.ActivityMiddleware(repos.user))
	{
		auth.GET("/profile", c.auth.GetProfile)
	}

	teacher := auth.Group("/teacher")
	teacher.Use(middleware.RoleMiddleware(model.Teacher))
	{
		teacher.GET("/subjects", c.blueprint.ListSubjects)
		teacher.GET("/subjects/:id/chapters", c.blueprint.ListChapters)

		teacher.POST("/exam-blueprints", c.blueprint.Create)
		teacher.GET("/exam-blueprints", c.blueprint.List)
		teacher.GET("/exam-blueprints/:id", c.blueprint.Detail)

		teacher.POST("/questions", c.question.Create)
		teacher.GET("/questions", c.question.List)
		teacher.GET("/questions/:id", c.question.Get)
		teacher.PUT("/questions/:id", c.question.Update)
		teacher.DELETE("/questions/:id", c.question.Deactivate)

		teacher.POST("/assign-exam", c.assignment.Create)

		teacher.POST("/exams/:id/force-submit", c.examAdmin.ForceSubmit)
		teacher.GET("/exams/:id/analytics/chapters", c.examAdmin.ChapterAnalytics)
	}

	student := auth.Group("/student")
	student.Use(middleware.RoleMiddleware(model.Student))
	{
		student.GET("/exams/:examId/paper/:paperId", c.studentExam.GetPaper)
		student.POST("/submission/start", c.studentExam.Start)
		student.POST("/submission/:id/answer", c.studentExam.SaveAnswer)
		student.POST("/submission/:id/answers/batch", c.studentExam.SaveBulkAnswers)
		student.POST("/submission/:id/submit", c.studentExam.Submit)
	}
}
