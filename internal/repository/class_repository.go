package repository

import (
	"examhub_backend/internal/model"

	"gorm.io/gorm"
)

type ClassRepository struct {
	DB *gorm.DB
}

func NewClassRepository(db *gorm.DB) *ClassRepository {
	return &ClassRepository{DB: db}
}

func (r *ClassRepository) Create(class *model.Class) error {
	return r.DB.Create(class).Error
}

func (r *ClassRepository) FindByID(id uint) (*model.Class, error) {
	var c model.Class
	err := r.DB.First(&c, id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ClassRepository) Enroll(classID, studentID uint) error {
	return r.DB.Create(&model.ClassEnrollment{ClassID: classID, StudentID: studentID}).Error
}

func (r *ClassRepository) IsEnrolled(classID, studentID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.ClassEnrollment{}).
		Where("class_id = ? AND student_id = ?", classID, studentID).
		Count(&count).Error
	return count > 0, err
}
