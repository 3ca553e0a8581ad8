package service

import (
	"context"
	"encoding/json"
	"errors"
	"examhub_backend/internal/model"
	"examhub_backend/internal/repository"
	"examhub_backend/internal/util"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// 蓝图校验警告码
const (
	WarnTargetTotalMismatch   = "TARGET_TOTAL_MISMATCH"
	WarnInsufficientQuestions = "INSUFFICIENT_QUESTION_BANK"
)

const (
	blueprintNameMaxLen = 200
	blueprintDescMaxLen = 1000
)

// 学科可用量矩阵的缓存键和 TTL，题目写入时失效
const availabilityCacheTTL = 30 * time.Second

func availabilityCacheKey(subjectID uint) string {
	return fmt.Sprintf("examhub:availability:%d", subjectID)
}

type BlueprintService struct {
	Repo     *repository.BlueprintRepository
	BankRepo *repository.QuestionBankRepository
	Redis    *redis.Client
}

func NewBlueprintService(repo *repository.BlueprintRepository, bankRepo *repository.QuestionBankRepository, rdb *redis.Client) *BlueprintService {
	return &BlueprintService{Repo: repo, BankRepo: bankRepo, Redis: rdb}
}

type BlueprintRowRequest struct {
	ChapterID      uint `json:"chapterId"`
	Difficulty     int  `json:"difficulty"`
	TotalQuestions int  `json:"totalQuestions"`
}

type CreateBlueprintRequest struct {
	Name                 string                `json:"name"`
	Description          string                `json:"description"`
	SubjectID            uint                  `json:"subjectId"`
	TargetTotalQuestions int                   `json:"targetTotalQuestions"`
	TargetStatus         int                   `json:"targetStatus"`
	Rows                 []BlueprintRowRequest `json:"rows"`
}

type BlueprintWarning struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	ChapterID  uint   `json:"chapterId,omitempty"`
	Difficulty int    `json:"difficulty,omitempty"`
}

type CreateBlueprintResult struct {
	ExamBlueprintID uint               `json:"examBlueprintId"`
	Status          int                `json:"status"`
	StatusLabel     string             `json:"statusLabel"`
	UpdatedAtUtc    time.Time          `json:"updatedAtUtc"`
	Message         string             `json:"message"`
	Warnings        []BlueprintWarning `json:"warnings"`
}

// ValidateAndCreate 校验并落库一张蓝图。所有规则一次性收集，
// 绝不在第一条错误处短路；草稿态的缺口降级为警告，发布态全部硬卡。
func (s *BlueprintService) ValidateAndCreate(teacherID uint, req CreateBlueprintRequest) (*CreateBlueprintResult, error) {
	if _, err := s.BankRepo.FindSubjectByID(req.SubjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSubjectNotFound
		}
		return nil, err
	}

	var errs []string
	warnings := []BlueprintWarning{}

	if req.Name == "" {
		errs = append(errs, "name is required")
	} else if len([]rune(req.Name)) > blueprintNameMaxLen {
		errs = append(errs, fmt.Sprintf("name must be at most %d characters", blueprintNameMaxLen))
	}
	if len([]rune(req.Description)) > blueprintDescMaxLen {
		errs = append(errs, fmt.Sprintf("description must be at most %d characters", blueprintDescMaxLen))
	}
	if req.TargetTotalQuestions < 0 {
		errs = append(errs, "targetTotalQuestions must not be negative")
	}

	targetStatus := model.BlueprintStatus(req.TargetStatus)
	if targetStatus != model.BlueprintDraft && targetStatus != model.BlueprintPublished {
		errs = append(errs, fmt.Sprintf("targetStatus must be Draft(0) or Published(1), got %d", req.TargetStatus))
	}

	// 学科章节集合，用于行级归属校验
	chapters, err := s.BankRepo.ListChapters(context.Background(), req.SubjectID)
	if err != nil {
		return nil, err
	}
	chapterSet := make(map[uint]bool, len(chapters))
	for _, c := range chapters {
		chapterSet[c.ID] = true
	}

	// 可用量在一次请求内只统计一次，反映校验时刻的题库状态
	availability, err := s.BankRepo.AvailabilityBySubject(req.SubjectID)
	if err != nil {
		return nil, err
	}

	type rowKey struct {
		chapter    uint
		difficulty int
	}
	seen := make(map[rowKey]bool)
	sum := 0

	for i, row := range req.Rows {
		if !chapterSet[row.ChapterID] {
			errs = append(errs, fmt.Sprintf("row %d: chapter %d does not belong to subject %d", i+1, row.ChapterID, req.SubjectID))
		}
		if !model.Difficulty(row.Difficulty).Valid() {
			errs = append(errs, fmt.Sprintf("row %d: difficulty must be between 1 and 4, got %d", i+1, row.Difficulty))
		}
		if row.TotalQuestions < 0 {
			errs = append(errs, fmt.Sprintf("row %d: question count must not be negative", i+1))
		}

		key := rowKey{row.ChapterID, row.Difficulty}
		if seen[key] {
			errs = append(errs, fmt.Sprintf("duplicate row for chapter %d difficulty %d", row.ChapterID, row.Difficulty))
		}
		seen[key] = true
		sum += row.TotalQuestions
	}

	checkAvailability := func(hard bool) {
		for _, row := range req.Rows {
			if !chapterSet[row.ChapterID] || !model.Difficulty(row.Difficulty).Valid() {
				continue
			}
			available := availability[row.ChapterID][model.Difficulty(row.Difficulty)]
			if row.TotalQuestions > available {
				if hard {
					errs = append(errs, fmt.Sprintf("chapter %d difficulty %d: requested %d questions but only %d active available",
						row.ChapterID, row.Difficulty, row.TotalQuestions, available))
				} else {
					warnings = append(warnings, BlueprintWarning{
						Code:       WarnInsufficientQuestions,
						Message:    fmt.Sprintf("chapter %d difficulty %d: requested %d questions but only %d active available", row.ChapterID, row.Difficulty, row.TotalQuestions, available),
						ChapterID:  row.ChapterID,
						Difficulty: row.Difficulty,
					})
				}
			}
		}
	}

	switch targetStatus {
	case model.BlueprintDraft:
		if req.TargetTotalQuestions != sum {
			warnings = append(warnings, BlueprintWarning{
				Code:    WarnTargetTotalMismatch,
				Message: fmt.Sprintf("targetTotalQuestions is %d but rows sum to %d", req.TargetTotalQuestions, sum),
			})
		}
		checkAvailability(false)
	case model.BlueprintPublished:
		if len(req.Rows) == 0 {
			errs = append(errs, "a published blueprint requires at least one row")
		}
		if req.TargetTotalQuestions <= 0 {
			errs = append(errs, "a published blueprint requires targetTotalQuestions > 0")
		} else if req.TargetTotalQuestions != sum {
			errs = append(errs, fmt.Sprintf("targetTotalQuestions is %d but rows sum to %d", req.TargetTotalQuestions, sum))
		}
		for _, row := range req.Rows {
			if row.TotalQuestions == 0 {
				errs = append(errs, fmt.Sprintf("chapter %d difficulty %d: a published blueprint requires every row count > 0", row.ChapterID, row.Difficulty))
			}
		}
		checkAvailability(true)
	}

	if len(errs) > 0 {
		return nil, util.NewValidationError(errs)
	}

	bp := &model.ExamBlueprint{
		TeacherID:            teacherID,
		SubjectID:            req.SubjectID,
		Name:                 req.Name,
		Description:          req.Description,
		Status:               targetStatus,
		TargetTotalQuestions: req.TargetTotalQuestions,
		TotalQuestions:       sum,
	}
	rows := make([]model.BlueprintRow, len(req.Rows))
	for i, row := range req.Rows {
		rows[i] = model.BlueprintRow{
			ChapterID:  row.ChapterID,
			Difficulty: model.Difficulty(row.Difficulty),
			Count:      row.TotalQuestions,
		}
	}

	if err := s.Repo.CreateWithRows(bp, rows); err != nil {
		return nil, err
	}

	return &CreateBlueprintResult{
		ExamBlueprintID: bp.ID,
		Status:          int(bp.Status),
		StatusLabel:     bp.Status.Label(),
		UpdatedAtUtc:    bp.UpdatedAt.UTC(),
		Message:         "exam blueprint created",
		Warnings:        warnings,
	}, nil
}

// List 教师只能看到自己的蓝图，管理员不过滤
func (s *BlueprintService) List(ctx context.Context, callerID uint, isAdmin bool, keyword string, subjectID uint, page, pageSize int) ([]model.ExamBlueprint, int64, error) {
	page, pageSize = util.ClampPage(page, pageSize)
	teacherID := callerID
	if isAdmin {
		teacherID = 0
	}
	return s.Repo.List(ctx, teacherID, keyword, subjectID, page, pageSize)
}

func (s *BlueprintService) GetDetail(callerID uint, isAdmin bool, id uint) (*model.ExamBlueprint, error) {
	bp, err := s.Repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrBlueprintNotFound
		}
		return nil, err
	}
	if !isAdmin && bp.TeacherID != callerID {
		return nil, util.ErrPermissionDenied
	}
	return bp, nil
}

func (s *BlueprintService) ListSubjects(ctx context.Context) ([]model.Subject, error) {
	return s.BankRepo.ListSubjects(ctx)
}

// ChapterAvailability 章节及其按难度统计的可用题量
type ChapterAvailability struct {
	ChapterID    uint        `json:"chapterId"`
	Name         string      `json:"name"`
	ByDifficulty map[int]int `json:"byDifficulty"`
}

// ListChapterAvailability 组卷参考数据。矩阵查询短暂缓存在 redis 里，
// 题目写入时失效；redis 不可用时直接回源。
func (s *BlueprintService) ListChapterAvailability(ctx context.Context, subjectID uint) ([]ChapterAvailability, error) {
	if _, err := s.BankRepo.FindSubjectByID(subjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSubjectNotFound
		}
		return nil, err
	}

	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, availabilityCacheKey(subjectID)).Result(); err == nil {
			var result []ChapterAvailability
			if json.Unmarshal([]byte(cached), &result) == nil {
				return result, nil
			}
		}
	}

	chapters, err := s.BankRepo.ListChapters(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	availability, err := s.BankRepo.AvailabilityBySubject(subjectID)
	if err != nil {
		return nil, err
	}

	result := make([]ChapterAvailability, len(chapters))
	for i, c := range chapters {
		byDifficulty := make(map[int]int, 4)
		for d := model.DifficultyRecognize; d <= model.DifficultyAdvancedApply; d++ {
			byDifficulty[int(d)] = availability[c.ID][d]
		}
		result[i] = ChapterAvailability{
			ChapterID:    c.ID,
			Name:         c.Name,
			ByDifficulty: byDifficulty,
		}
	}

	if s.Redis != nil {
		if payload, err := json.Marshal(result); err == nil {
			s.Redis.Set(ctx, availabilityCacheKey(subjectID), payload, availabilityCacheTTL)
		}
	}

	return result, nil
}
