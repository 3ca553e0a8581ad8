package controller

import (
	"bytes"
	"encoding/json"
	"examhub_backend/internal/model"
	"examhub_backend/internal/repository"
	"examhub_backend/internal/service"
	"examhub_backend/internal/util"
	"examhub_backend/pkg/database"
	"examhub_backend/pkg/logger"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ---------- 初始化测试环境 ----------

func setupControllerTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
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
	return gin.New(), db
}

// 伪造登录态：把 JWT 声明直接注入上下文
func fakeAuth(userID uint, role model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user", &util.Claims{UserID: userID, Role: role})
		c.Next()
	}
}

func seedTeacherAndSubject(t *testing.T, db *gorm.DB) (*model.User, *model.Subject, *model.Chapter) {
	t.Helper()
	teacher := &model.User{Name: "张老师", Email: "zhang@example.com", Password: "pwd", Role: model.Teacher}
	if err := db.Create(teacher).Error; err != nil {
		t.Fatalf("create teacher failed: %v", err)
	}
	subject := &model.Subject{Name: "数学", Code: "MATH"}
	if err := db.Create(subject).Error; err != nil {
		t.Fatalf("create subject failed: %v", err)
	}
	chapter := &model.Chapter{SubjectID: subject.ID, Name: "函数"}
	if err := db.Create(chapter).Error; err != nil {
		t.Fatalf("create chapter failed: %v", err)
	}
	return teacher, subject, chapter
}

func TestBlueprintCreateEndpoint_ValidationErrors(t *testing.T) {
	router, db := setupControllerTest(t)
	teacher, subject, chapter := seedTeacherAndSubject(t, db)

	svc := service.NewBlueprintService(repository.NewBlueprintRepository(db), repository.NewQuestionBankRepository(db), nil)
	ctrl := NewBlueprintController(svc)
	router.POST("/exam-blueprints", fakeAuth(teacher.ID, model.Teacher), ctrl.Create)

	// 发布态 + 空名称 + 题库为空：全部错误一次返回
	body, _ := json.Marshal(service.CreateBlueprintRequest{
		Name:                 "",
		SubjectID:            subject.ID,
		TargetTotalQuestions: 3,
		TargetStatus:         1,
		Rows: []service.BlueprintRowRequest{
			{ChapterID: chapter.ID, Difficulty: 2, TotalQuestions: 3},
		},
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/exam-blueprints", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp util.Response
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "validation failed", resp.Message)
	assert.GreaterOrEqual(t, len(resp.Errors), 2)
}

func TestBlueprintCreateEndpoint_Created(t *testing.T) {
	router, db := setupControllerTest(t)
	teacher, subject, chapter := seedTeacherAndSubject(t, db)

	for i := 0; i < 3; i++ {
		q := &model.Question{
			ChapterID:  chapter.ID,
			Type:       model.ShortAnswer,
			Content:    "q",
			AnswerKey:  "a",
			Difficulty: model.DifficultyUnderstand,
			Status:     model.QuestionActive,
		}
		if err := db.Create(q).Error; err != nil {
			t.Fatalf("create question failed: %v", err)
		}
	}

	svc := service.NewBlueprintService(repository.NewBlueprintRepository(db), repository.NewQuestionBankRepository(db), nil)
	ctrl := NewBlueprintController(svc)
	router.POST("/exam-blueprints", fakeAuth(teacher.ID, model.Teacher), ctrl.Create)

	body, _ := json.Marshal(service.CreateBlueprintRequest{
		Name:                 "单元卷",
		SubjectID:            subject.ID,
		TargetTotalQuestions: 3,
		TargetStatus:         1,
		Rows: []service.BlueprintRowRequest{
			{ChapterID: chapter.ID, Difficulty: 2, TotalQuestions: 3},
		},
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/exam-blueprints", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp util.Response
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "Published", data["statusLabel"])
	assert.NotNil(t, data["warnings"])
}

func TestBlueprintDetailEndpoint_NotFound(t *testing.T) {
	router, db := setupControllerTest(t)
	teacher, _, _ := seedTeacherAndSubject(t, db)

	svc := service.NewBlueprintService(repository.NewBlueprintRepository(db), repository.NewQuestionBankRepository(db), nil)
	ctrl := NewBlueprintController(svc)
	router.GET("/exam-blueprints/:id", fakeAuth(teacher.ID, model.Teacher), ctrl.Detail)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/exam-blueprints/424242", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEndpointWithoutLogin(t *testing.T) {
	router, db := setupControllerTest(t)

	svc := service.NewBlueprintService(repository.NewBlueprintRepository(db), repository.NewQuestionBankRepository(db), nil)
	ctrl := NewBlueprintController(svc)
	router.POST("/exam-blueprints", ctrl.Create)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/exam-blueprints", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
