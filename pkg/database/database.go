package database

import (
	"examhub_backend/internal/config"
	"examhub_backend/internal/model"
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	seedReferenceData(db)

	return db, nil
}

// Migrate 建表/迁移，测试环境用 sqlite 时复用同一份模型清单
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Subject{},
		&model.Chapter{},
		&model.Class{},
		&model.ClassEnrollment{},
		&model.Question{},
		&model.ExamBlueprint{},
		&model.BlueprintRow{},
		&model.Exam{},
		&model.Paper{},
		&model.PaperQuestion{},
		&model.Submission{},
		&model.StudentAnswer{},
	)
}

// 默认学科参考数据：仅在空库时插入
func seedReferenceData(db *gorm.DB) {
	var count int64
	db.Model(&model.Subject{}).Count(&count)
	if count > 0 {
		return
	}

	defaultSubjects := []struct {
		subject  model.Subject
		chapters []string
	}{
		{model.Subject{Name: "数学", Code: "MATH"}, []string{"集合与逻辑", "函数", "数列", "立体几何", "概率统计"}},
		{model.Subject{Name: "物理", Code: "PHYS"}, []string{"运动学", "力学", "电磁学"}},
		{model.Subject{Name: "英语", Code: "ENG"}, []string{"词汇", "语法", "阅读理解"}},
	}

	for _, s := range defaultSubjects {
		subject := s.subject
		if err := db.Create(&subject).Error; err != nil {
			continue
		}
		for i, name := range s.chapters {
			db.Create(&model.Chapter{SubjectID: subject.ID, Name: name, Order: i + 1})
		}
	}
}
