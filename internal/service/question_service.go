package service

import (
	"context"
	"errors"
	"examhub_backend/internal/model"
	"examhub_backend/internal/repository"
	"examhub_backend/internal/util"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// QuestionService 教师端题库维护。任何写入都会让对应学科的
// 可用量缓存失效，保证蓝图校验看到的是新鲜数据。
type QuestionService struct {
	BankRepo *repository.QuestionBankRepository
	Redis    *redis.Client
}

func NewQuestionService(bankRepo *repository.QuestionBankRepository, rdb *redis.Client) *QuestionService {
	return &QuestionService{BankRepo: bankRepo, Redis: rdb}
}

type QuestionRequest struct {
	ChapterID  uint               `json:"chapterId" binding:"required"`
	Type       model.QuestionType `json:"type" binding:"required"`
	Content    string             `json:"content" binding:"required"`
	AnswerKey  string             `json:"answerKey"`
	Difficulty int                `json:"difficulty"`
}

func (s *QuestionService) validate(req QuestionRequest) ([]string, *model.Chapter, error) {
	var errs []string

	chapter, err := s.BankRepo.FindChapterByID(req.ChapterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, util.ErrChapterNotFound
		}
		return nil, nil, err
	}

	switch req.Type {
	case model.MultipleChoice, model.StepByStep, model.ShortAnswer, model.OtherQuestion:
	default:
		errs = append(errs, "unknown question type")
	}
	if !model.Difficulty(req.Difficulty).Valid() {
		errs = append(errs, "difficulty must be between 1 and 4")
	}
	return errs, chapter, nil
}

func (s *QuestionService) invalidateAvailability(subjectID uint) {
	if s.Redis == nil {
		return
	}
	s.Redis.Del(context.Background(), availabilityCacheKey(subjectID))
}

func (s *QuestionService) Create(creatorID uint, req QuestionRequest) (*model.Question, error) {
	errs, chapter, err := s.validate(req)
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, util.NewValidationError(errs)
	}

	q := &model.Question{
		ChapterID:  req.ChapterID,
		CreatorID:  creatorID,
		Type:       req.Type,
		Content:    req.Content,
		AnswerKey:  req.AnswerKey,
		Difficulty: model.Difficulty(req.Difficulty),
		Status:     model.QuestionActive,
	}
	if err := s.BankRepo.CreateQuestion(q); err != nil {
		return nil, err
	}
	s.invalidateAvailability(chapter.SubjectID)
	return q, nil
}

func (s *QuestionService) Update(id uint, req QuestionRequest) (*model.Question, error) {
	q, err := s.BankRepo.FindQuestionByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}

	errs, chapter, err := s.validate(req)
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, util.NewValidationError(errs)
	}

	q.ChapterID = req.ChapterID
	q.Type = req.Type
	q.Content = req.Content
	q.AnswerKey = req.AnswerKey
	q.Difficulty = model.Difficulty(req.Difficulty)
	if err := s.BankRepo.UpdateQuestion(q); err != nil {
		return nil, err
	}
	s.invalidateAvailability(chapter.SubjectID)
	return q, nil
}

// SetStatus 停用/启用。被试卷引用的题不做物理删除，停用即可。
func (s *QuestionService) SetStatus(id uint, status model.QuestionStatus) error {
	q, err := s.BankRepo.FindQuestionByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrQuestionNotFound
		}
		return err
	}
	if err := s.BankRepo.SetQuestionStatus(id, status); err != nil {
		return err
	}
	if chapter, err := s.BankRepo.FindChapterByID(q.ChapterID); err == nil {
		s.invalidateAvailability(chapter.SubjectID)
	}
	return nil
}

func (s *QuestionService) Get(id uint) (*model.Question, error) {
	q, err := s.BankRepo.FindQuestionByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}
	return q, nil
}

func (s *QuestionService) List(ctx context.Context, chapterID uint, difficulty int, status *model.QuestionStatus, page, pageSize int) ([]model.Question, int64, error) {
	page, pageSize = util.ClampPage(page, pageSize)
	return s.BankRepo.ListQuestions(ctx, chapterID, model.Difficulty(difficulty), status, page, pageSize)
}
