package util

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailRegistered    = errors.New("该邮箱已被注册")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrSubjectNotFound    = errors.New("subject not found")
	ErrChapterNotFound    = errors.New("chapter not found")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrBlueprintNotFound  = errors.New("exam blueprint not found")
	ErrClassNotFound      = errors.New("class not found")
	ErrExamNotFound       = errors.New("exam not found")
	ErrPaperNotFound      = errors.New("paper not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrNotEnrolled        = errors.New("student not enrolled in exam class")
	ErrNoPapers           = errors.New("exam has no papers")
	ErrMaxAttempts        = errors.New("max attempts reached")
	ErrSubmissionClosed   = errors.New("submission is not active")
	ErrTimeExpired        = errors.New("exam time expired, submission auto-completed")
	ErrVersionConflict    = errors.New("submission was modified concurrently")
)

// ValidationError 聚合一次请求中命中的全部校验错误，绝不只报第一条。
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

func NewValidationError(errs []string) *ValidationError {
	return &ValidationError{Errors: errs}
}

func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// InsufficientQuestionsError 题库存量不足，带上章节/难度上下文方便前端定位。
type InsufficientQuestionsError struct {
	ChapterID  uint
	Difficulty int
	Requested  int
	Available  int
}

func (e *InsufficientQuestionsError) Error() string {
	return fmt.Sprintf("insufficient active questions for chapter %d difficulty %d: requested %d, available %d",
		e.ChapterID, e.Difficulty, e.Requested, e.Available)
}
