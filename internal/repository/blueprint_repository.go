package repository

import (
	"context"
	"examhub_backend/internal/model"

	"gorm.io/gorm"
)

type BlueprintRepository struct {
	DB *gorm.DB
}

func NewBlueprintRepository(db *gorm.DB) *BlueprintRepository {
	return &BlueprintRepository{DB: db}
}

// CreateWithRows 蓝图表头和明细行在同一事务内落库，
// 任何一行插入失败都会回滚表头。
func (r *BlueprintRepository) CreateWithRows(bp *model.ExamBlueprint, rows []model.BlueprintRow) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(bp).Error; err != nil {
			return err
		}
		for i := range rows {
			rows[i].BlueprintID = bp.ID
		}
		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *BlueprintRepository) FindByID(id uint) (*model.ExamBlueprint, error) {
	var bp model.ExamBlueprint
	err := r.DB.Preload("Rows").Preload("Subject").First(&bp, id).Error
	if err != nil {
		return nil, err
	}
	return &bp, nil
}

// List 教师范围内的分页查询，teacherID 为 0 时表示管理员视角不过滤
func (r *BlueprintRepository) List(ctx context.Context, teacherID uint, keyword string, subjectID uint, page, limit int) ([]model.ExamBlueprint, int64, error) {
	var bps []model.ExamBlueprint
	var total int64

	query := r.DB.WithContext(ctx).Model(&model.ExamBlueprint{})
	if teacherID > 0 {
		query = query.Where("teacher_id = ?", teacherID)
	}
	if subjectID > 0 {
		query = query.Where("subject_id = ?", subjectID)
	}
	if keyword != "" {
		query = query.Where("name LIKE ?", "%"+keyword+"%")
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Preload("Subject").Order("updated_at desc").Offset(offset).Limit(limit).Find(&bps).Error
	return bps, total, err
}

func (r *BlueprintRepository) UpdateStatus(id uint, status model.BlueprintStatus) error {
	return r.DB.Model(&model.ExamBlueprint{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "version": gorm.Expr("version + 1")}).Error
}
