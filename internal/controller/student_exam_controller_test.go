package controller

import (
	"bytes"
	"encoding/json"
	"examhub_backend/internal/model"
	"examhub_backend/internal/repository"
	"examhub_backend/internal/service"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func seedExamForController(t *testing.T, db *gorm.DB) (*model.Exam, *model.Paper) {
	t.Helper()
	_, _, chapter := seedTeacherAndSubject(t, db)

	q := &model.Question{
		ChapterID:  chapter.ID,
		Type:       model.MultipleChoice,
		Content:    "1+1=?",
		AnswerKey:  `{"options":["1","2"],"correct":"2"}`,
		Difficulty: model.DifficultyRecognize,
		Status:     model.QuestionActive,
	}
	if err := db.Create(q).Error; err != nil {
		t.Fatalf("create question failed: %v", err)
	}

	exam := &model.Exam{
		TeacherID:   1,
		SubjectID:   chapter.SubjectID,
		Title:       "小测",
		Duration:    30,
		MaxAttempts: 1,
		Status:      model.ExamPublished,
	}
	paper := &model.Paper{Code: 1}
	if err := repository.NewExamRepository(db).CreateExamWithPaper(exam, paper, []uint{q.ID}); err != nil {
		t.Fatalf("seed exam failed: %v", err)
	}
	return exam, paper
}

func newStudentExamController(db *gorm.DB) *StudentExamController {
	svc := service.NewSubmissionService(
		repository.NewSubmissionRepository(db),
		repository.NewExamRepository(db),
		repository.NewClassRepository(db),
	)
	return NewStudentExamController(svc)
}

func TestStartSubmissionEndpoint_MaxAttemptsConflict(t *testing.T) {
	router, db := setupControllerTest(t)
	exam, paper := seedExamForController(t, db)

	student := &model.User{Name: "小王", Email: "wang@example.com", Password: "pwd", Role: model.Student}
	if err := db.Create(student).Error; err != nil {
		t.Fatalf("create student failed: %v", err)
	}

	ctrl := newStudentExamController(db)
	router.POST("/submission/start", fakeAuth(student.ID, model.Student), ctrl.Start)
	router.POST("/submission/:id/submit", fakeAuth(student.ID, model.Student), ctrl.Submit)

	start := func() *httptest.ResponseRecorder {
		body, _ := json.Marshal(StartSubmissionRequest{ExamID: exam.ID, PaperID: &paper.ID})
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/submission/start", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		return w
	}

	w := start()
	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data struct {
			SubmissionID uint `json:"submissionId"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	// 交卷后次数用尽，再开考返回 409
	w2 := httptest.NewRecorder()
	req := httptest.NewRequest("POST", fmt.Sprintf("/submission/%d/submit", resp.Data.SubmissionID), nil)
	router.ServeHTTP(w2, req)
	assert.Equal(t, http.StatusOK, w2.Code)

	w3 := start()
	assert.Equal(t, http.StatusConflict, w3.Code)
}

func TestGetPaperEndpoint_Sanitized(t *testing.T) {
	router, db := setupControllerTest(t)
	exam, paper := seedExamForController(t, db)

	student := &model.User{Name: "小李", Email: "li@example.com", Password: "pwd", Role: model.Student}
	if err := db.Create(student).Error; err != nil {
		t.Fatalf("create student failed: %v", err)
	}

	ctrl := newStudentExamController(db)
	router.GET("/exams/:examId/paper/:paperId", fakeAuth(student.ID, model.Student), ctrl.GetPaper)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", fmt.Sprintf("/exams/%d/paper/%d", exam.ID, paper.ID), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `"correct"`)
	assert.Contains(t, w.Body.String(), `"options"`)
}
