package service

import (
	"examhub_backend/internal/model"
	"examhub_backend/internal/repository"
	"examhub_backend/pkg/database"
	"examhub_backend/pkg/logger"
	"fmt"
	"testing"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ---------- 初始化测试环境 ----------

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	logger.Log = zap.NewNop()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("init db failed: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return db
}

var userCounter = 0

func createTestUser(t *testing.T, db *gorm.DB, role model.UserRole) *model.User {
	t.Helper()
	userCounter++
	u := &model.User{
		Name:     fmt.Sprintf("User%d", userCounter),
		Email:    fmt.Sprintf("u%d@example.com", userCounter),
		Password: "pwd",
		Role:     role,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return u
}

func createTestSubject(t *testing.T, db *gorm.DB, name string) *model.Subject {
	t.Helper()
	s := &model.Subject{Name: name, Code: fmt.Sprintf("%s-%d", name, userCounter)}
	userCounter++
	if err := db.Create(s).Error; err != nil {
		t.Fatalf("create subject failed: %v", err)
	}
	return s
}

func createTestChapter(t *testing.T, db *gorm.DB, subjectID uint, name string) *model.Chapter {
	t.Helper()
	c := &model.Chapter{SubjectID: subjectID, Name: name}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("create chapter failed: %v", err)
	}
	return c
}

// createTestQuestions 批量造题，返回按 id 升序的题目 id
func createTestQuestions(t *testing.T, db *gorm.DB, chapterID uint, difficulty model.Difficulty, n int) []uint {
	t.Helper()
	ids := make([]uint, 0, n)
	for i := 0; i < n; i++ {
		q := &model.Question{
			ChapterID:  chapterID,
			Type:       model.ShortAnswer,
			Content:    fmt.Sprintf("question %d", i+1),
			AnswerKey:  "42",
			Difficulty: difficulty,
			Status:     model.QuestionActive,
		}
		if err := db.Create(q).Error; err != nil {
			t.Fatalf("create question failed: %v", err)
		}
		ids = append(ids, q.ID)
	}
	return ids
}

func newBlueprintService(db *gorm.DB) *BlueprintService {
	return NewBlueprintService(repository.NewBlueprintRepository(db), repository.NewQuestionBankRepository(db), nil)
}

func newAssignmentService(db *gorm.DB) *AssignmentService {
	return NewAssignmentService(
		repository.NewExamRepository(db),
		repository.NewBlueprintRepository(db),
		repository.NewQuestionBankRepository(db),
		repository.NewClassRepository(db),
		repository.NewUserRepository(db),
	)
}

func newSubmissionService(db *gorm.DB) *SubmissionService {
	return NewSubmissionService(
		repository.NewSubmissionRepository(db),
		repository.NewExamRepository(db),
		repository.NewClassRepository(db),
	)
}
