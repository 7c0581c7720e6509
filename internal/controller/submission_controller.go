package controller

import (
	"errors"
	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type SubmissionController struct {
	SubmissionService *service.SubmissionService
}

func NewSubmissionController(submissionService *service.SubmissionService) *SubmissionController {
	return &SubmissionController{SubmissionService: submissionService}
}

// @Summary 提交作业
// @Description 每个学生每个作业只能提交一次，提交后更新成就进度
// @Tags 作业
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.SubmitRequest true "提交内容"
// @Success 201 {object} util.Response
// @Router /api/submissions [post]
func (c *SubmissionController) Submit(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.SubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	submission, err := c.SubmissionService.Submit(ctx.Request.Context(), user.UserID, req)
	switch {
	case errors.Is(err, util.ErrAssignmentNotFound):
		util.NotFoundWithMessage(ctx, err.Error())
		return
	case errors.Is(err, util.ErrSubmissionExists):
		util.Conflict(ctx, err.Error())
		return
	case err != nil:
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, submission)
}

// @Summary 作业评分
// @Description 教师评分，达到优秀阈值时记录优秀成绩，首次评分通知学生
// @Tags 作业
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "提交ID"
// @Param request body service.GradeRequest true "评分"
// @Success 200 {object} util.Response
// @Router /api/submissions/{id}/grade [put]
func (c *SubmissionController) Grade(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid submission id")
		return
	}

	var req service.GradeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	submission, err := c.SubmissionService.Grade(ctx.Request.Context(), user.UserID, uint(id), req)
	switch {
	case errors.Is(err, util.ErrSubmissionNotFound):
		util.NotFoundWithMessage(ctx, err.Error())
		return
	case errors.Is(err, util.ErrInvalidScore):
		util.BadRequest(ctx, err.Error())
		return
	case err != nil:
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, submission)
}
