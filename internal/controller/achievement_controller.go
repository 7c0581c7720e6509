package controller

import (
	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

type AchievementController struct {
	AchievementService *service.AchievementService
}

func NewAchievementController(achievementService *service.AchievementService) *AchievementController {
	return &AchievementController{AchievementService: achievementService}
}

type RecordSubmissionRequest struct {
	AssignmentID uint       `json:"assignment_id" binding:"required"`
	SubmittedAt  *time.Time `json:"submitted_at"`
}

type RecordTopicRequest struct {
	TopicID uint `json:"topic_id" binding:"required"`
}

type MarkViewedRequest struct {
	AchievementType string `json:"achievement_type" binding:"required"`
}

type UpdateProgressRequest struct {
	AchievementID string `json:"achievement_id" binding:"required"`
	Value         int    `json:"value"`
}

// @Summary 获取用户成就
// @Description 返回用户所有成就记录及进度百分比
// @Tags 成就系统
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/achievements [get]
func (c *AchievementController) GetUserAchievements(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	achievements, err := c.AchievementService.GetUserAchievements(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"achievements": achievements})
}

// @Summary 获取用户统计
// @Tags 成就系统
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/achievements/stats [get]
func (c *AchievementController) GetUserStats(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	stats, err := c.AchievementService.GetUserStats(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"stats": stats})
}

// @Summary 获取未查看的成就
// @Description 已完成但尚未展示给用户的成就
// @Tags 成就系统
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/achievements/unviewed [get]
func (c *AchievementController) GetUnviewedAchievements(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	achievements, err := c.AchievementService.GetUnviewedAchievements(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"achievements": achievements})
}

// @Summary 成就目录
// @Tags 成就系统
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/achievements/catalog [get]
func (c *AchievementController) GetCatalog(ctx *gin.Context) {
	util.Success(ctx, gin.H{"achievements": c.AchievementService.Catalog()})
}

// @Summary 记录访问
// @Tags 成就系统
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/achievements/visit [post]
func (c *AchievementController) RecordVisit(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	result, err := c.AchievementService.RecordDailyVisit(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary 记录作业提交
// @Tags 成就系统
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body RecordSubmissionRequest true "提交信息"
// @Success 200 {object} util.Response
// @Router /api/achievements/submission [post]
func (c *AchievementController) RecordSubmission(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req RecordSubmissionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "assignment_id is required")
		return
	}

	result, err := c.AchievementService.RecordAssignmentSubmission(ctx.Request.Context(), user.UserID, req.AssignmentID, req.SubmittedAt)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary 记录优秀成绩
// @Tags 成就系统
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/achievements/perfect-score [post]
func (c *AchievementController) RecordPerfectScore(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	result, err := c.AchievementService.RecordPerfectScore(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary 记录完成主题
// @Tags 成就系统
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body RecordTopicRequest true "主题"
// @Success 200 {object} util.Response
// @Router /api/achievements/topic-completion [post]
func (c *AchievementController) RecordTopicCompletion(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req RecordTopicRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "topic_id is required")
		return
	}

	result, err := c.AchievementService.RecordTopicCompletion(ctx.Request.Context(), user.UserID, req.TopicID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary 记录有用评论
// @Tags 成就系统
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/achievements/helpful-comment [post]
func (c *AchievementController) RecordHelpfulComment(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	result, err := c.AchievementService.RecordHelpfulComment(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary 标记成就已查看
// @Tags 成就系统
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body MarkViewedRequest true "成就类型"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/achievements/mark-viewed [post]
func (c *AchievementController) MarkViewed(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req MarkViewedRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "achievement_type is required")
		return
	}

	found, err := c.AchievementService.MarkAchievementViewed(ctx.Request.Context(), user.UserID, req.AchievementType)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	if !found {
		util.NotFoundWithMessage(ctx, util.ErrAchievementNotFound.Error())
		return
	}

	util.Success(ctx, nil)
}

// @Summary 标记全部成就已查看
// @Tags 成就系统
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/achievements/mark-all-viewed [post]
func (c *AchievementController) MarkAllViewed(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	count, err := c.AchievementService.MarkAllAchievementsViewed(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"count": count})
}

// @Summary 设置用户成就进度（管理员）
// @Tags 成就系统
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path int true "用户ID"
// @Param request body UpdateProgressRequest true "进度"
// @Success 200 {object} util.Response
// @Router /api/admin/achievements/users/{userId}/progress [put]
func (c *AchievementController) UpdateProgress(ctx *gin.Context) {
	userID, err := strconv.ParseUint(ctx.Param("userId"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid user id")
		return
	}

	var req UpdateProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	record, err := c.AchievementService.UpdateAchievementProgress(ctx.Request.Context(), uint(userID), req.AchievementID, req.Value)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	if record == nil {
		util.NotFoundWithMessage(ctx, util.ErrUnknownAchievement.Error())
		return
	}

	util.Success(ctx, record)
}
