package app

import (
	"learnhub_backend/internal/config"
	"learnhub_backend/internal/middleware"
	"learnhub_backend/internal/model"
	"learnhub_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/health", c.health.HealthCheck)

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
	}

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		registerAchievementRoutes(authGroup, c, a.eventLimiter(cfg))
		registerSubmissionRoutes(authGroup, c)
	}

	// 3. 管理员相关接口
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	{
		admin.PUT("/achievements/users/:userId/progress", c.achievement.UpdateProgress)
	}
}

func registerAchievementRoutes(rg *gin.RouterGroup, c *controllers, limit gin.HandlerFunc) {
	achievements := rg.Group("/achievements")
	{
		achievements.GET("", c.achievement.GetUserAchievements)
		achievements.GET("/stats", c.achievement.GetUserStats)
		achievements.GET("/unviewed", c.achievement.GetUnviewedAchievements)
		achievements.GET("/catalog", c.achievement.GetCatalog)
		achievements.POST("/visit", limit, c.achievement.RecordVisit)
		achievements.POST("/submission", limit, c.achievement.RecordSubmission)
		achievements.POST("/perfect-score", limit, c.achievement.RecordPerfectScore)
		achievements.POST("/topic-completion", limit, c.achievement.RecordTopicCompletion)
		achievements.POST("/helpful-comment", limit, c.achievement.RecordHelpfulComment)
		achievements.POST("/mark-viewed", limit, c.achievement.MarkViewed)
		achievements.POST("/mark-all-viewed", limit, c.achievement.MarkAllViewed)
	}
}

func registerSubmissionRoutes(rg *gin.RouterGroup, c *controllers) {
	submissions := rg.Group("/submissions")
	{
		submissions.POST("", c.submission.Submit)
		submissions.PUT("/:id/grade", middleware.RoleMiddleware(model.Teacher), c.submission.Grade)
	}
}
