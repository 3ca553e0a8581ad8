package controller

import (
	"examhub_backend/internal/model"
	"examhub_backend/internal/service"
	"examhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// ExamAdminController 教师端考试运维：强制交卷扫描与章节正确率报表
type ExamAdminController struct {
	SubmissionService *service.SubmissionService
	AnalyticsService  *service.AnalyticsService
}

func NewExamAdminController(submissionSvc *service.SubmissionService, analyticsSvc *service.AnalyticsService) *ExamAdminController {
	return &ExamAdminController{
		SubmissionService: submissionSvc,
		AnalyticsService:  analyticsSvc,
	}
}

// ForceSubmit godoc
// @Summary 强制交卷超时提交
// @Description 幂等：重复调用只影响仍在作答且仍超时的提交
// @Tags 考试
// @Produce json
// @Security BearerAuth
// @Param id path int true "考试ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/exams/{id}/force-submit [post]
func (c *ExamAdminController) ForceSubmit(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	examID := util.MustParseUint(ctx.Param("id"))
	if examID == 0 {
		util.BadRequest(ctx, "invalid exam id")
		return
	}

	forced, err := c.SubmissionService.ForceSubmitOverdue(user.UserID, user.Role == model.Admin, examID, "http")
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"forced": forced})
}

// ChapterAnalytics godoc
// @Summary 按章节统计正确率
// @Tags 考试
// @Produce json
// @Security BearerAuth
// @Param id path int true "考试ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/exams/{id}/analytics/chapters [get]
func (c *ExamAdminController) ChapterAnalytics(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	examID := util.MustParseUint(ctx.Param("id"))
	if examID == 0 {
		util.BadRequest(ctx, "invalid exam id")
		return
	}

	stats, err := c.AnalyticsService.ChapterAccuracy(user.UserID, user.Role == model.Admin, examID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}
