package controller

import (
	"errors"
	"examhub_backend/internal/util"
	"net/http"

	"github.com/gin-gonic/gin"
)

// respondError 服务层错误到 HTTP 状态码的统一映射
func respondError(ctx *gin.Context, err error) {
	if ve, ok := util.AsValidationError(err); ok {
		util.ValidationFailed(ctx, ve.Errors)
		return
	}

	var insufficient *util.InsufficientQuestionsError
	if errors.As(err, &insufficient) {
		util.UnprocessableEntity(ctx, insufficient.Error())
		return
	}

	switch {
	case errors.Is(err, util.ErrSubjectNotFound),
		errors.Is(err, util.ErrChapterNotFound),
		errors.Is(err, util.ErrQuestionNotFound),
		errors.Is(err, util.ErrBlueprintNotFound),
		errors.Is(err, util.ErrClassNotFound),
		errors.Is(err, util.ErrExamNotFound),
		errors.Is(err, util.ErrPaperNotFound),
		errors.Is(err, util.ErrSubmissionNotFound),
		errors.Is(err, util.ErrUserNotFound):
		util.Error(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, util.ErrPermissionDenied),
		errors.Is(err, util.ErrNotEnrolled):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrMaxAttempts),
		errors.Is(err, util.ErrSubmissionClosed),
		errors.Is(err, util.ErrTimeExpired),
		errors.Is(err, util.ErrNoPapers),
		errors.Is(err, util.ErrVersionConflict):
		util.Conflict(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
