package repository

import (
	"context"
	"examhub_backend/internal/model"

	"gorm.io/gorm"
)

// QuestionBankRepository 题库只读视图 + 教师端题目维护。
// 可用量统计必须反映校验时刻的实时状态，这里不加任何锁，
// 与并发的题目编辑之间的竞态由调用方在提交前复核兜底。
type QuestionBankRepository struct {
	DB *gorm.DB
}

func NewQuestionBankRepository(db *gorm.DB) *QuestionBankRepository {
	return &QuestionBankRepository{DB: db}
}

func (r *QuestionBankRepository) ListSubjects(ctx context.Context) ([]model.Subject, error) {
	var subjects []model.Subject
	err := r.DB.WithContext(ctx).Order("id asc").Find(&subjects).Error
	return subjects, err
}

func (r *QuestionBankRepository) FindSubjectByID(id uint) (*model.Subject, error) {
	var s model.Subject
	err := r.DB.First(&s, id).Error
	return &s, err
}

func (r *QuestionBankRepository) ListChapters(ctx context.Context, subjectID uint) ([]model.Chapter, error) {
	var chapters []model.Chapter
	err := r.DB.WithContext(ctx).Where("subject_id = ?", subjectID).Order("`order` asc, id asc").Find(&chapters).Error
	return chapters, err
}

func (r *QuestionBankRepository) FindChapterByID(id uint) (*model.Chapter, error) {
	var c model.Chapter
	err := r.DB.First(&c, id).Error
	return &c, err
}

func (r *QuestionBankRepository) CreateQuestion(q *model.Question) error {
	return r.DB.Create(q).Error
}

func (r *QuestionBankRepository) FindQuestionByID(id uint) (*model.Question, error) {
	var q model.Question
	err := r.DB.First(&q, id).Error
	return &q, err
}

func (r *QuestionBankRepository) UpdateQuestion(q *model.Question) error {
	q.Version++
	return r.DB.Save(q).Error
}

// SetQuestionStatus 软状态切换。被试卷引用的题从不物理删除，只停用。
func (r *QuestionBankRepository) SetQuestionStatus(id uint, status model.QuestionStatus) error {
	return r.DB.Model(&model.Question{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "version": gorm.Expr("version + 1")}).Error
}

func (r *QuestionBankRepository) ListQuestions(ctx context.Context, chapterID uint, difficulty model.Difficulty, status *model.QuestionStatus, page, limit int) ([]model.Question, int64, error) {
	var qs []model.Question
	var total int64

	query := r.DB.WithContext(ctx).Model(&model.Question{})
	if chapterID > 0 {
		query = query.Where("chapter_id = ?", chapterID)
	}
	if difficulty > 0 {
		query = query.Where("difficulty = ?", difficulty)
	}
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("updated_at desc, id desc").Offset(offset).Limit(limit).Find(&qs).Error
	return qs, total, err
}

// AvailabilityCell 某 (章节, 难度) 下当前可用的激活题数
type AvailabilityCell struct {
	ChapterID  uint             `json:"chapterId"`
	Difficulty model.Difficulty `json:"difficulty"`
	Count      int              `json:"count"`
}

// AvailabilityBySubject 一次查询统计整个学科的可用量矩阵
func (r *QuestionBankRepository) AvailabilityBySubject(subjectID uint) (map[uint]map[model.Difficulty]int, error) {
	var cells []AvailabilityCell
	err := r.DB.Model(&model.Question{}).
		Select("questions.chapter_id, questions.difficulty, COUNT(*) as count").
		Joins("JOIN chapters ON chapters.id = questions.chapter_id AND chapters.deleted_at IS NULL").
		Where("chapters.subject_id = ? AND questions.status = ?", subjectID, model.QuestionActive).
		Group("questions.chapter_id, questions.difficulty").
		Scan(&cells).Error
	if err != nil {
		return nil, err
	}

	matrix := make(map[uint]map[model.Difficulty]int)
	for _, c := range cells {
		if matrix[c.ChapterID] == nil {
			matrix[c.ChapterID] = make(map[model.Difficulty]int)
		}
		matrix[c.ChapterID][c.Difficulty] = c.Count
	}
	return matrix, nil
}

// SelectActiveQuestionIDs 按题目 id 升序取指定数量的激活题，
// 固定排序保证不洗牌时组卷结果可复现。
func (r *QuestionBankRepository) SelectActiveQuestionIDs(chapterID uint, difficulty model.Difficulty, limit int) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.Question{}).
		Where("chapter_id = ? AND difficulty = ? AND status = ?", chapterID, difficulty, model.QuestionActive).
		Order("id asc").
		Limit(limit).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *QuestionBankRepository) FindQuestionsByIDs(ids []uint) ([]model.Question, error) {
	var qs []model.Question
	if len(ids) == 0 {
		return qs, nil
	}
	err := r.DB.Where("id IN ?", ids).Find(&qs).Error
	return qs, err
}
