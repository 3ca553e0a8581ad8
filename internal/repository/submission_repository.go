package repository

import (
	"errors"
	"examhub_backend/internal/model"

	"gorm.io/gorm"
)

type SubmissionRepository struct {
	DB *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: db}
}

func (r *SubmissionRepository) Create(s *model.Submission) error {
	return r.DB.Create(s).Error
}

func (r *SubmissionRepository) FindByID(id uint) (*model.Submission, error) {
	var s model.Submission
	err := r.DB.First(&s, id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// FindActiveByStudentAndPaper 用于幂等续考：刷新页面重复开考时返回原提交
func (r *SubmissionRepository) FindActiveByStudentAndPaper(studentID, paperID uint) (*model.Submission, error) {
	var s model.Submission
	err := r.DB.Where("student_id = ? AND paper_id = ? AND status = ?", studentID, paperID, model.SubmissionActive).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CountByStudentAndExam 统计学生在该考试所有试卷下的全部提交（不分状态），
// 一次提交即一次 attempt。
func (r *SubmissionRepository) CountByStudentAndExam(studentID, examID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Submission{}).
		Joins("JOIN papers ON papers.id = submissions.paper_id AND papers.deleted_at IS NULL").
		Where("submissions.student_id = ? AND papers.exam_id = ?", studentID, examID).
		Count(&count).Error
	return count, err
}

func (r *SubmissionRepository) ListActiveByExam(examID uint) ([]model.Submission, error) {
	var subs []model.Submission
	err := r.DB.
		Joins("JOIN papers ON papers.id = submissions.paper_id AND papers.deleted_at IS NULL").
		Where("papers.exam_id = ? AND submissions.status = ?", examID, model.SubmissionActive).
		Find(&subs).Error
	return subs, err
}

// ListExamIDsWithActive 后台扫描入口：仍有未交卷提交的考试集合
func (r *SubmissionRepository) ListExamIDsWithActive() ([]uint, error) {
	var examIDs []uint
	err := r.DB.Model(&model.Submission{}).
		Joins("JOIN papers ON papers.id = submissions.paper_id AND papers.deleted_at IS NULL").
		Where("submissions.status = ?", model.SubmissionActive).
		Distinct().
		Pluck("papers.exam_id", &examIDs).Error
	return examIDs, err
}

func (r *SubmissionRepository) ListSubmittedByExam(examID uint) ([]model.Submission, error) {
	var subs []model.Submission
	err := r.DB.
		Joins("JOIN papers ON papers.id = submissions.paper_id AND papers.deleted_at IS NULL").
		Where("papers.exam_id = ? AND submissions.status = ?", examID, model.SubmissionSubmitted).
		Find(&subs).Error
	return subs, err
}

// MarkSubmitted 带版本校验的条件更新：强制交卷扫描和学生保存都走这里，
// 版本不匹配说明对方先动了手，返回冲突由调用方决定重试或放弃。
func (r *SubmissionRepository) MarkSubmitted(s *model.Submission) error {
	result := r.DB.Model(&model.Submission{}).
		Where("id = ? AND version = ?", s.ID, s.Version).
		Updates(map[string]interface{}{
			"status":  model.SubmissionSubmitted,
			"version": gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleSubmission
	}
	s.Status = model.SubmissionSubmitted
	s.Version++
	return nil
}

var ErrStaleSubmission = errors.New("submission version changed")

// UpsertAnswer 每 (submission, questionIndex) 至多一行，后写覆盖先写
func (r *SubmissionRepository) UpsertAnswer(submissionID uint, questionIndex int, response string) error {
	return r.upsertAnswer(r.DB, submissionID, questionIndex, response)
}

// UpsertAnswers 批量保存在一个事务里完成，整批要么全部写入要么全部回滚
func (r *SubmissionRepository) UpsertAnswers(submissionID uint, answers map[int]string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		for index, response := range answers {
			if err := r.upsertAnswer(tx, submissionID, index, response); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *SubmissionRepository) upsertAnswer(tx *gorm.DB, submissionID uint, questionIndex int, response string) error {
	var existing model.StudentAnswer
	err := tx.Where("submission_id = ? AND question_index = ?", submissionID, questionIndex).
		First(&existing).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if existing.ID == 0 {
		return tx.Create(&model.StudentAnswer{
			SubmissionID:  submissionID,
			QuestionIndex: questionIndex,
			Response:      response,
		}).Error
	}
	existing.Response = response
	return tx.Save(&existing).Error
}

func (r *SubmissionRepository) GetAnswers(submissionID uint) ([]model.StudentAnswer, error) {
	var answers []model.StudentAnswer
	err := r.DB.Where("submission_id = ?", submissionID).Order("question_index asc").Find(&answers).Error
	return answers, err
}
