package controller

import (
	"examhub_backend/internal/model"
	"examhub_backend/internal/service"
	"examhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type BlueprintController struct {
	Service *service.BlueprintService
}

func NewBlueprintController(svc *service.BlueprintService) *BlueprintController {
	return &BlueprintController{Service: svc}
}

// Create godoc
// @Summary 创建组卷蓝图
// @Tags 组卷蓝图
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CreateBlueprintRequest true "蓝图信息"
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response "校验失败，errors 为全部错误"
// @Router /api/teacher/exam-blueprints [post]
func (c *BlueprintController) Create(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.CreateBlueprintRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.Service.ValidateAndCreate(user.UserID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Created(ctx, result)
}

// List godoc
// @Summary 蓝图分页列表
// @Tags 组卷蓝图
// @Produce json
// @Security BearerAuth
// @Param keyword query string false "名称关键字"
// @Param subjectId query int false "学科ID"
// @Param page query int false "页码"
// @Param pageSize query int false "每页条数"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/teacher/exam-blueprints [get]
func (c *BlueprintController) List(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	page := util.ParseIntDefault(ctx.Query("page"), util.DefaultPage)
	pageSize := util.ParseIntDefault(ctx.Query("pageSize"), util.DefaultPageSize)
	keyword := ctx.Query("keyword")
	subjectID := util.MustParseUint(ctx.Query("subjectId"))

	isAdmin := user.Role == model.Admin
	bps, total, err := c.Service.List(ctx.Request.Context(), user.UserID, isAdmin, keyword, subjectID, page, pageSize)
	if err != nil {
		respondError(ctx, err)
		return
	}

	page, pageSize = util.ClampPage(page, pageSize)
	util.Success(ctx, util.PageResponse{List: bps, Total: total, Page: page, Limit: pageSize})
}

// Detail godoc
// @Summary 蓝图详情（含明细行）
// @Tags 组卷蓝图
// @Produce json
// @Security BearerAuth
// @Param id path int true "蓝图ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/exam-blueprints/{id} [get]
func (c *BlueprintController) Detail(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	id := util.MustParseUint(ctx.Param("id"))
	if id == 0 {
		util.BadRequest(ctx, "invalid id")
		return
	}

	bp, err := c.Service.GetDetail(user.UserID, user.Role == model.Admin, id)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, bp)
}

// ListSubjects godoc
// @Summary 学科参考数据
// @Tags 组卷蓝图
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/teacher/subjects [get]
func (c *BlueprintController) ListSubjects(ctx *gin.Context) {
	subjects, err := c.Service.ListSubjects(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, subjects)
}

// ListChapters godoc
// @Summary 学科章节及分难度可用题量
// @Tags 组卷蓝图
// @Produce json
// @Security BearerAuth
// @Param id path int true "学科ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/subjects/{id}/chapters [get]
func (c *BlueprintController) ListChapters(ctx *gin.Context) {
	subjectID := util.MustParseUint(ctx.Param("id"))
	if subjectID == 0 {
		util.BadRequest(ctx, "invalid subject id")
		return
	}

	chapters, err := c.Service.ListChapterAvailability(ctx.Request.Context(), subjectID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, chapters)
}
