package controller

import (
	"examhub_backend/internal/service"
	"examhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type StudentExamController struct {
	Service *service.SubmissionService
}

func NewStudentExamController(svc *service.SubmissionService) *StudentExamController {
	return &StudentExamController{Service: svc}
}

// GetPaper godoc
// @Summary 学生取卷（答案已脱敏）
// @Tags 学生考试
// @Produce json
// @Security BearerAuth
// @Param examId path int true "考试ID"
// @Param paperId path int true "试卷ID"
// @Success 200 {object} util.Response
// @Router /api/student/exams/{examId}/paper/{paperId} [get]
func (c *StudentExamController) GetPaper(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	examID := util.MustParseUint(ctx.Param("examId"))
	paperID := util.MustParseUint(ctx.Param("paperId"))
	if examID == 0 || paperID == 0 {
		util.BadRequest(ctx, "invalid exam or paper id")
		return
	}

	paper, err := c.Service.GetPaper(user.UserID, examID, paperID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, paper)
}

type StartSubmissionRequest struct {
	ExamID  uint  `json:"examId" binding:"required"`
	PaperID *uint `json:"paperId"`
}

// Start godoc
// @Summary 开始作答（幂等续考）
// @Tags 学生考试
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body StartSubmissionRequest true "开考请求"
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response "次数用尽或无可用试卷"
// @Router /api/student/submission/start [post]
func (c *StudentExamController) Start(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req StartSubmissionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.Service.StartAttempt(user.UserID, req.ExamID, req.PaperID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

type SaveAnswerRequest struct {
	QuestionIndex int    `json:"questionIndex"`
	Response      string `json:"response"`
}

// SaveAnswer godoc
// @Summary 保存单题答案
// @Description 超时的保存会被拒绝并自动完卷，客户端应视为本次作答终止
// @Tags 学生考试
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "提交ID"
// @Param body body SaveAnswerRequest true "答案"
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response "已交卷或已超时"
// @Router /api/student/submission/{id}/answer [post]
func (c *StudentExamController) SaveAnswer(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	submissionID := util.MustParseUint(ctx.Param("id"))
	if submissionID == 0 {
		util.BadRequest(ctx, "invalid submission id")
		return
	}

	var req SaveAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.Service.SaveAnswer(user.UserID, submissionID, req.QuestionIndex, req.Response); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

type SaveBulkAnswersRequest struct {
	Answers []service.AnswerItem `json:"answers" binding:"required"`
}

// SaveBulkAnswers godoc
// @Summary 批量保存答案
// @Tags 学生考试
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "提交ID"
// @Param body body SaveBulkAnswersRequest true "答案列表"
// @Success 200 {object} util.Response
// @Router /api/student/submission/{id}/answers/batch [post]
func (c *StudentExamController) SaveBulkAnswers(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	submissionID := util.MustParseUint(ctx.Param("id"))
	if submissionID == 0 {
		util.BadRequest(ctx, "invalid submission id")
		return
	}

	var req SaveBulkAnswersRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.Service.SaveBulkAnswers(user.UserID, submissionID, req.Answers); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Submit godoc
// @Summary 交卷
// @Tags 学生考试
// @Produce json
// @Security BearerAuth
// @Param id path int true "提交ID"
// @Success 200 {object} util.Response
// @Router /api/student/submission/{id}/submit [post]
func (c *StudentExamController) Submit(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	submissionID := util.MustParseUint(ctx.Param("id"))
	if submissionID == 0 {
		util.BadRequest(ctx, "invalid submission id")
		return
	}

	if err := c.Service.SubmitExam(user.UserID, submissionID); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
