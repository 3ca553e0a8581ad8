package controller

import (
	"examhub_backend/internal/model"
	"examhub_backend/internal/service"
	"examhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuestionController struct {
	Service *service.QuestionService
}

func NewQuestionController(svc *service.QuestionService) *QuestionController {
	return &QuestionController{Service: svc}
}

// Create godoc
// @Summary 新建题目
// @Tags 题库
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.QuestionRequest true "题目信息"
// @Success 201 {object} util.Response
// @Router /api/teacher/questions [post]
func (c *QuestionController) Create(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.Service.Create(user.UserID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, q)
}

// Update godoc
// @Summary 更新题目
// @Tags 题库
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Param body body service.QuestionRequest true "题目信息"
// @Success 200 {object} util.Response
// @Router /api/teacher/questions/{id} [put]
func (c *QuestionController) Update(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	if id == 0 {
		util.BadRequest(ctx, "invalid id")
		return
	}

	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.Service.Update(id, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

// Deactivate godoc
// @Summary 停用题目
// @Description 被试卷引用过的题不做物理删除，只停用
// @Tags 题库
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/questions/{id} [delete]
func (c *QuestionController) Deactivate(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	if id == 0 {
		util.BadRequest(ctx, "invalid id")
		return
	}

	if err := c.Service.SetStatus(id, model.QuestionInactive); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Get godoc
// @Summary 题目详情
// @Tags 题库
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/questions/{id} [get]
func (c *QuestionController) Get(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	if id == 0 {
		util.BadRequest(ctx, "invalid id")
		return
	}

	q, err := c.Service.Get(id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

// List godoc
// @Summary 题目分页列表
// @Tags 题库
// @Produce json
// @Security BearerAuth
// @Param chapterId query int false "章节ID"
// @Param difficulty query int false "难度 1-4"
// @Param status query int false "状态 0停用 1激活"
// @Param page query int false "页码"
// @Param pageSize query int false "每页条数"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/teacher/questions [get]
func (c *QuestionController) List(ctx *gin.Context) {
	page := util.ParseIntDefault(ctx.Query("page"), util.DefaultPage)
	pageSize := util.ParseIntDefault(ctx.Query("pageSize"), util.DefaultPageSize)
	chapterID := util.MustParseUint(ctx.Query("chapterId"))
	difficulty := util.ParseIntDefault(ctx.Query("difficulty"), 0)

	var status *model.QuestionStatus
	if raw := ctx.Query("status"); raw != "" {
		v := model.QuestionStatus(util.ParseIntDefault(raw, 1))
		status = &v
	}

	qs, total, err := c.Service.List(ctx.Request.Context(), chapterID, difficulty, status, page, pageSize)
	if err != nil {
		respondError(ctx, err)
		return
	}

	page, pageSize = util.ClampPage(page, pageSize)
	util.Success(ctx, util.PageResponse{List: qs, Total: total, Page: page, Limit: pageSize})
}
