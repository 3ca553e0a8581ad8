package service

import (
	"errors"
	"examhub_backend/internal/model"
	"examhub_backend/internal/repository"
	"examhub_backend/internal/util"
	"examhub_backend/pkg/logger"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	GenerationModeBlueprint = "blueprint"
	GenerationModeManual    = "manual"
)

type AssignmentService struct {
	ExamRepo      *repository.ExamRepository
	BlueprintRepo *repository.BlueprintRepository
	BankRepo      *repository.QuestionBankRepository
	ClassRepo     *repository.ClassRepository
	UserRepo      *repository.UserRepository
}

func NewAssignmentService(
	examRepo *repository.ExamRepository,
	blueprintRepo *repository.BlueprintRepository,
	bankRepo *repository.QuestionBankRepository,
	classRepo *repository.ClassRepository,
	userRepo *repository.UserRepository,
) *AssignmentService {
	return &AssignmentService{
		ExamRepo:      examRepo,
		BlueprintRepo: blueprintRepo,
		BankRepo:      bankRepo,
		ClassRepo:     classRepo,
		UserRepo:      userRepo,
	}
}

type CreateAssignmentRequest struct {
	TeacherID           uint       `json:"teacherId"`
	Title               string     `json:"title"`
	Description         string     `json:"description"`
	Duration            int        `json:"duration"`
	MaxAttempts         int        `json:"maxAttempts"`
	VisibleFrom         *time.Time `json:"visibleFrom,omitempty"`
	OpenAt              *time.Time `json:"openAt,omitempty"`
	CloseAt             *time.Time `json:"closeAt,omitempty"`
	ShuffleQuestion     bool       `json:"shuffleQuestion"`
	AllowLateSubmission bool       `json:"allowLateSubmission"`
	ShowScore           bool       `json:"showScore"`
	ShowAnswer          bool       `json:"showAnswer"`
	ClassID             *uint      `json:"classId,omitempty"`
	GenerationMode      string     `json:"generationMode"`
	ExamBlueprintID     *uint      `json:"examBlueprintId,omitempty"`
	SubjectID           *uint      `json:"subjectId,omitempty"`
	QuestionIDs         []uint     `json:"questionIds"`
	PaperCode           int        `json:"paperCode"`
}

type CreateAssignmentResult struct {
	ExamID         uint `json:"examId"`
	PaperID        uint `json:"paperId"`
	TotalQuestions int  `json:"totalQuestions"`
}

// CreateAssignment 组卷：蓝图抽题或手工选题，生成 考试+试卷+卷题，
// 整个写入在一个事务里，半途失败不留任何残余。
func (s *AssignmentService) CreateAssignment(req CreateAssignmentRequest) (*CreateAssignmentResult, error) {
	var errs []string

	if req.Title == "" {
		errs = append(errs, "title is required")
	}
	if req.Duration <= 0 {
		errs = append(errs, "duration must be greater than 0")
	}
	if req.MaxAttempts <= 0 {
		errs = append(errs, "maxAttempts must be greater than 0")
	}
	if req.GenerationMode != GenerationModeBlueprint && req.GenerationMode != GenerationModeManual {
		errs = append(errs, fmt.Sprintf("generationMode must be %q or %q", GenerationModeBlueprint, GenerationModeManual))
	}
	// 时间窗约束只在两端都给出时校验
	if req.VisibleFrom != nil && req.OpenAt != nil && req.VisibleFrom.After(*req.OpenAt) {
		errs = append(errs, "visibleFrom must not be after openAt")
	}
	if req.OpenAt != nil && req.CloseAt != nil && !req.OpenAt.Before(*req.CloseAt) {
		errs = append(errs, "openAt must be before closeAt")
	}
	if len(errs) > 0 {
		return nil, util.NewValidationError(errs)
	}

	ok, err := s.UserRepo.IsActiveTeacher(req.TeacherID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, util.ErrUserNotFound
	}

	var questionIDs []uint
	var subjectID uint
	var blueprintID *uint

	switch req.GenerationMode {
	case GenerationModeBlueprint:
		questionIDs, subjectID, blueprintID, err = s.buildFromBlueprint(req)
	case GenerationModeManual:
		questionIDs, subjectID, err = s.buildFromManualList(req)
	}
	if err != nil {
		return nil, err
	}

	if req.ShuffleQuestion {
		// 洗牌用全局 PRNG，每次调用新鲜随机，不保证可复现
		rand.Shuffle(len(questionIDs), func(i, j int) {
			questionIDs[i], questionIDs[j] = questionIDs[j], questionIDs[i]
		})
	}

	var classID *uint
	if req.ClassID != nil {
		class, err := s.ClassRepo.FindByID(*req.ClassID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, util.ErrClassNotFound
			}
			return nil, err
		}
		if class.TeacherID != req.TeacherID {
			return nil, util.ErrPermissionDenied
		}
		if class.SubjectID != subjectID {
			return nil, util.NewValidationError([]string{
				fmt.Sprintf("class %d subject %d does not match exam subject %d", class.ID, class.SubjectID, subjectID),
			})
		}
		classID = req.ClassID
	}

	paperCode := req.PaperCode
	if paperCode == 0 {
		paperCode = 1
	}

	exam := &model.Exam{
		TeacherID:           req.TeacherID,
		ClassID:             classID,
		SubjectID:           subjectID,
		BlueprintID:         blueprintID,
		Title:               req.Title,
		Description:         req.Description,
		Duration:            req.Duration,
		MaxAttempts:         req.MaxAttempts,
		ShowScore:           req.ShowScore,
		ShowAnswer:          req.ShowAnswer,
		AllowLateSubmission: req.AllowLateSubmission,
		ShuffleQuestion:     req.ShuffleQuestion,
		VisibleFrom:         req.VisibleFrom,
		OpenAt:              req.OpenAt,
		CloseAt:             req.CloseAt,
		Status:              model.ExamPublished,
	}
	paper := &model.Paper{Code: paperCode}

	if err := s.ExamRepo.CreateExamWithPaper(exam, paper, questionIDs); err != nil {
		return nil, err
	}

	// 蓝图被真正用于组卷后推进为 InUse，状态只进不退。
	// 考试已落库，推进失败不回滚，但要留日志方便补救
	if blueprintID != nil {
		if err := s.BlueprintRepo.UpdateStatus(*blueprintID, model.BlueprintInUse); err != nil {
			logger.Log.Error("failed to promote blueprint to in-use",
				zap.Uint("blueprintId", *blueprintID), zap.Uint("examId", exam.ID), zap.Error(err))
		}
	}

	return &CreateAssignmentResult{
		ExamID:         exam.ID,
		PaperID:        paper.ID,
		TotalQuestions: len(questionIDs),
	}, nil
}

// buildFromBlueprint 按 (章节, 难度) 的行序抽题，行内按题目 id 升序，
// 保证不洗牌时两次组卷得到相同的题序。
func (s *AssignmentService) buildFromBlueprint(req CreateAssignmentRequest) ([]uint, uint, *uint, error) {
	if req.ExamBlueprintID == nil {
		return nil, 0, nil, util.NewValidationError([]string{"examBlueprintId is required in blueprint mode"})
	}
	bp, err := s.BlueprintRepo.FindByID(*req.ExamBlueprintID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, nil, util.ErrBlueprintNotFound
		}
		return nil, 0, nil, err
	}

	rows := make([]model.BlueprintRow, len(bp.Rows))
	copy(rows, bp.Rows)
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].ChapterID != rows[j].ChapterID {
			return rows[i].ChapterID < rows[j].ChapterID
		}
		return rows[i].Difficulty < rows[j].Difficulty
	})

	var questionIDs []uint
	expected := 0
	for _, row := range rows {
		if row.Count == 0 {
			continue
		}
		ids, err := s.BankRepo.SelectActiveQuestionIDs(row.ChapterID, row.Difficulty, row.Count)
		if err != nil {
			return nil, 0, nil, err
		}
		// 统计和抽取之间题目可能被并发停用，提交前必须复核数量，
		// 宁可报错也不下发缺题的卷子
		if len(ids) < row.Count {
			return nil, 0, nil, &util.InsufficientQuestionsError{
				ChapterID:  row.ChapterID,
				Difficulty: int(row.Difficulty),
				Requested:  row.Count,
				Available:  len(ids),
			}
		}
		questionIDs = append(questionIDs, ids...)
		expected += row.Count
	}

	if len(questionIDs) != expected {
		return nil, 0, nil, fmt.Errorf("selected %d questions but blueprint requires %d", len(questionIDs), expected)
	}

	return questionIDs, bp.SubjectID, &bp.ID, nil
}

// buildFromManualList 手选模式：所有题必须存在、激活且同属一个学科，
// 任何一题不合法就整单拒绝。
func (s *AssignmentService) buildFromManualList(req CreateAssignmentRequest) ([]uint, uint, error) {
	if len(req.QuestionIDs) == 0 {
		return nil, 0, util.NewValidationError([]string{"questionIds must not be empty in manual mode"})
	}

	questions, err := s.BankRepo.FindQuestionsByIDs(req.QuestionIDs)
	if err != nil {
		return nil, 0, err
	}

	byID := make(map[uint]*model.Question, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}

	var errs []string
	subjects := make(map[uint]bool)
	for _, id := range req.QuestionIDs {
		q, ok := byID[id]
		if !ok {
			errs = append(errs, fmt.Sprintf("question %d does not exist", id))
			continue
		}
		if q.Status != model.QuestionActive {
			errs = append(errs, fmt.Sprintf("question %d is not active", id))
			continue
		}
		chapter, err := s.BankRepo.FindChapterByID(q.ChapterID)
		if err != nil {
			return nil, 0, err
		}
		subjects[chapter.SubjectID] = true
	}
	if len(errs) > 0 {
		return nil, 0, util.NewValidationError(errs)
	}

	if len(subjects) != 1 {
		return nil, 0, util.NewValidationError([]string{
			fmt.Sprintf("manual question list spans %d subjects, all questions must belong to exactly one subject", len(subjects)),
		})
	}
	var subjectID uint
	for sid := range subjects {
		subjectID = sid
	}
	if req.SubjectID != nil && *req.SubjectID != subjectID {
		return nil, 0, util.NewValidationError([]string{
			fmt.Sprintf("requested subject %d does not match resolved subject %d", *req.SubjectID, subjectID),
		})
	}

	ids := make([]uint, len(req.QuestionIDs))
	copy(ids, req.QuestionIDs)
	return ids, subjectID, nil
}
