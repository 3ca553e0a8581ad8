package controller

import (
	"examhub_backend/internal/service"
	"examhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AssignmentController struct {
	Service *service.AssignmentService
}

func NewAssignmentController(svc *service.AssignmentService) *AssignmentController {
	return &AssignmentController{Service: svc}
}

// Create godoc
// @Summary 组卷并发布考试
// @Description 蓝图抽题或手工选题，事务性生成 考试+试卷+卷题
// @Tags 考试
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CreateAssignmentRequest true "组卷请求"
// @Success 201 {object} util.Response
// @Failure 422 {object} util.Response "题库存量不足"
// @Router /api/teacher/assign-exam [post]
func (c *AssignmentController) Create(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.CreateAssignmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	// 请求以登录教师身份组卷，不允许替他人建考试
	req.TeacherID = user.UserID

	result, err := c.Service.CreateAssignment(req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Created(ctx, result)
}
