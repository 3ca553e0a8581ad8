package repository

import (
	"examhub_backend/internal/model"

	"gorm.io/gorm"
)

type ExamRepository struct {
	DB *gorm.DB
}

func NewExamRepository(db *gorm.DB) *ExamRepository {
	return &ExamRepository{DB: db}
}

// CreateExamWithPaper 按 考试 -> 试卷 -> 卷题 的顺序在一个事务里落库，
// 半途失败整体回滚，不留残卷。
func (r *ExamRepository) CreateExamWithPaper(exam *model.Exam, paper *model.Paper, questionIDs []uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(exam).Error; err != nil {
			return err
		}
		paper.ExamID = exam.ID
		if err := tx.Create(paper).Error; err != nil {
			return err
		}
		pqs := make([]model.PaperQuestion, len(questionIDs))
		for i, qid := range questionIDs {
			pqs[i] = model.PaperQuestion{
				PaperID:    paper.ID,
				QuestionID: qid,
				Index:      i + 1,
			}
		}
		if len(pqs) > 0 {
			if err := tx.Create(&pqs).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *ExamRepository) FindExamByID(id uint) (*model.Exam, error) {
	var e model.Exam
	err := r.DB.First(&e, id).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *ExamRepository) FindPaperByID(id uint) (*model.Paper, error) {
	var p model.Paper
	err := r.DB.First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ExamRepository) ListPapersByExam(examID uint) ([]model.Paper, error) {
	var papers []model.Paper
	err := r.DB.Where("exam_id = ?", examID).Order("code asc").Find(&papers).Error
	return papers, err
}

// GetPaperQuestions 冻结的有序题目列表，按卷内序号升序
func (r *ExamRepository) GetPaperQuestions(paperID uint) ([]model.PaperQuestion, error) {
	var pqs []model.PaperQuestion
	err := r.DB.Preload("Question").
		Where("paper_id = ?", paperID).
		Order("`index` asc").
		Find(&pqs).Error
	return pqs, err
}
