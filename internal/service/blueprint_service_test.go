package service

import (
	"context"
	"examhub_backend/internal/model"
	"examhub_backend/internal/util"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateBlueprint_PublishedExactFill(t *testing.T) {
	db := setupTestDB(t)
	svc := newBlueprintService(db)

	teacher := createTestUser(t, db, model.Teacher)
	subject := createTestSubject(t, db, "数学")
	ch1 := createTestChapter(t, db, subject.ID, "函数")
	ch2 := createTestChapter(t, db, subject.ID, "数列")
	createTestQuestions(t, db, ch1.ID, model.DifficultyUnderstand, 5)
	createTestQuestions(t, db, ch2.ID, model.DifficultyApply, 3)

	result, err := svc.ValidateAndCreate(teacher.ID, CreateBlueprintRequest{
		Name:                 "期中卷蓝图",
		SubjectID:            subject.ID,
		TargetTotalQuestions: 8,
		TargetStatus:         int(model.BlueprintPublished),
		Rows: []BlueprintRowRequest{
			{ChapterID: ch1.ID, Difficulty: 2, TotalQuestions: 5},
			{ChapterID: ch2.ID, Difficulty: 3, TotalQuestions: 3},
		},
	})
	assert.NoError(t, err)
	assert.NotZero(t, result.ExamBlueprintID)
	assert.Equal(t, "Published", result.StatusLabel)
	assert.Empty(t, result.Warnings)

	var rowCount int64
	db.Model(&model.BlueprintRow{}).Count(&rowCount)
	assert.Equal(t, int64(2), rowCount)
}

func TestCreateBlueprint_PublishedMismatchNotPersisted(t *testing.T) {
	db := setupTestDB(t)
	svc := newBlueprintService(db)

	teacher := createTestUser(t, db, model.Teacher)
	subject := createTestSubject(t, db, "数学")
	ch := createTestChapter(t, db, subject.ID, "函数")
	createTestQuestions(t, db, ch.ID, model.DifficultyUnderstand, 10)

	// 行和为 5，目标为 8：发布态必须硬卡
	_, err := svc.ValidateAndCreate(teacher.ID, CreateBlueprintRequest{
		Name:                 "口径不一致",
		SubjectID:            subject.ID,
		TargetTotalQuestions: 8,
		TargetStatus:         int(model.BlueprintPublished),
		Rows:                 []BlueprintRowRequest{{ChapterID: ch.ID, Difficulty: 2, TotalQuestions: 5}},
	})
	ve, ok := util.AsValidationError(err)
	assert.True(t, ok)
	assert.NotEmpty(t, ve.Errors)

	var count int64
	db.Model(&model.ExamBlueprint{}).Count(&count)
	assert.Equal(t, int64(0), count, "校验失败时不应有任何落库")
}

func TestCreateBlueprint_DraftMismatchIsWarning(t *testing.T) {
	db := setupTestDB(t)
	svc := newBlueprintService(db)

	teacher := createTestUser(t, db, model.Teacher)
	subject := createTestSubject(t, db, "物理")
	ch := createTestChapter(t, db, subject.ID, "力学")
	createTestQuestions(t, db, ch.ID, model.DifficultyRecognize, 10)

	result, err := svc.ValidateAndCreate(teacher.ID, CreateBlueprintRequest{
		Name:                 "还在改的草稿",
		SubjectID:            subject.ID,
		TargetTotalQuestions: 8,
		TargetStatus:         int(model.BlueprintDraft),
		Rows:                 []BlueprintRowRequest{{ChapterID: ch.ID, Difficulty: 1, TotalQuestions: 5}},
	})
	assert.NoError(t, err)
	assert.Equal(t, "Draft", result.StatusLabel)

	codes := make([]string, 0, len(result.Warnings))
	for _, w := range result.Warnings {
		codes = append(codes, w.Code)
	}
	assert.Contains(t, codes, WarnTargetTotalMismatch)
}

func TestCreateBlueprint_InsufficientBank(t *testing.T) {
	db := setupTestDB(t)
	svc := newBlueprintService(db)

	teacher := createTestUser(t, db, model.Teacher)
	subject := createTestSubject(t, db, "英语")
	ch := createTestChapter(t, db, subject.ID, "语法")
	createTestQuestions(t, db, ch.ID, model.DifficultyApply, 2)

	req := CreateBlueprintRequest{
		Name:                 "缺题蓝图",
		SubjectID:            subject.ID,
		TargetTotalQuestions: 5,
		Rows:                 []BlueprintRowRequest{{ChapterID: ch.ID, Difficulty: 3, TotalQuestions: 5}},
	}

	// 草稿态：缺口降级为警告
	req.TargetStatus = int(model.BlueprintDraft)
	result, err := svc.ValidateAndCreate(teacher.ID, req)
	assert.NoError(t, err)
	found := false
	for _, w := range result.Warnings {
		if w.Code == WarnInsufficientQuestions {
			found = true
			assert.Equal(t, ch.ID, w.ChapterID)
			assert.Equal(t, 3, w.Difficulty)
		}
	}
	assert.True(t, found, "草稿态应产生题库不足的警告")

	// 发布态：同样的缺口必须拒绝
	req.Name = "缺题蓝图2"
	req.TargetStatus = int(model.BlueprintPublished)
	_, err = svc.ValidateAndCreate(teacher.ID, req)
	_, ok := util.AsValidationError(err)
	assert.True(t, ok)
}

func TestCreateBlueprint_DuplicateRowAlwaysFails(t *testing.T) {
	db := setupTestDB(t)
	svc := newBlueprintService(db)

	teacher := createTestUser(t, db, model.Teacher)
	subject := createTestSubject(t, db, "数学")
	ch := createTestChapter(t, db, subject.ID, "集合")
	createTestQuestions(t, db, ch.ID, model.DifficultyUnderstand, 10)

	for _, status := range []model.BlueprintStatus{model.BlueprintDraft, model.BlueprintPublished} {
		_, err := svc.ValidateAndCreate(teacher.ID, CreateBlueprintRequest{
			Name:                 "重复行",
			SubjectID:            subject.ID,
			TargetTotalQuestions: 4,
			TargetStatus:         int(status),
			Rows: []BlueprintRowRequest{
				{ChapterID: ch.ID, Difficulty: 2, TotalQuestions: 2},
				{ChapterID: ch.ID, Difficulty: 2, TotalQuestions: 2},
			},
		})
		ve, ok := util.AsValidationError(err)
		assert.True(t, ok, "status=%d 时重复行必须报错", status)
		hit := false
		for _, msg := range ve.Errors {
			if strings.Contains(msg, "duplicate") {
				hit = true
			}
		}
		assert.True(t, hit)
	}
}

func TestCreateBlueprint_CollectsAllErrors(t *testing.T) {
	db := setupTestDB(t)
	svc := newBlueprintService(db)

	teacher := createTestUser(t, db, model.Teacher)
	subject := createTestSubject(t, db, "数学")
	other := createTestSubject(t, db, "物理")
	foreign := createTestChapter(t, db, other.ID, "电磁学")

	// 空名称 + 外学科章节 + 非法难度 + 负数数量，一次请求全部报出
	_, err := svc.ValidateAndCreate(teacher.ID, CreateBlueprintRequest{
		Name:                 "",
		SubjectID:            subject.ID,
		TargetTotalQuestions: 3,
		TargetStatus:         int(model.BlueprintDraft),
		Rows: []BlueprintRowRequest{
			{ChapterID: foreign.ID, Difficulty: 9, TotalQuestions: -1},
		},
	})
	ve, ok := util.AsValidationError(err)
	assert.True(t, ok)
	assert.GreaterOrEqual(t, len(ve.Errors), 4)
}

func TestCreateBlueprint_UnknownSubject(t *testing.T) {
	db := setupTestDB(t)
	svc := newBlueprintService(db)
	teacher := createTestUser(t, db, model.Teacher)

	_, err := svc.ValidateAndCreate(teacher.ID, CreateBlueprintRequest{
		Name:      "无此学科",
		SubjectID: 9999,
	})
	assert.ErrorIs(t, err, util.ErrSubjectNotFound)
}

func TestBlueprintDetail_Ownership(t *testing.T) {
	db := setupTestDB(t)
	svc := newBlueprintService(db)

	owner := createTestUser(t, db, model.Teacher)
	stranger := createTestUser(t, db, model.Teacher)
	subject := createTestSubject(t, db, "数学")
	ch := createTestChapter(t, db, subject.ID, "函数")
	createTestQuestions(t, db, ch.ID, model.DifficultyUnderstand, 3)

	result, err := svc.ValidateAndCreate(owner.ID, CreateBlueprintRequest{
		Name:         "私有蓝图",
		SubjectID:    subject.ID,
		TargetStatus: int(model.BlueprintDraft),
		Rows:         []BlueprintRowRequest{{ChapterID: ch.ID, Difficulty: 2, TotalQuestions: 3}},
	})
	assert.NoError(t, err)

	_, err = svc.GetDetail(stranger.ID, false, result.ExamBlueprintID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	// 管理员不受归属限制
	bp, err := svc.GetDetail(stranger.ID, true, result.ExamBlueprintID)
	assert.NoError(t, err)
	assert.Len(t, bp.Rows, 1)
}

func TestListChapterAvailability(t *testing.T) {
	db := setupTestDB(t)
	svc := newBlueprintService(db)

	subject := createTestSubject(t, db, "数学")
	ch := createTestChapter(t, db, subject.ID, "概率统计")
	createTestQuestions(t, db, ch.ID, model.DifficultyUnderstand, 4)
	ids := createTestQuestions(t, db, ch.ID, model.DifficultyApply, 2)

	// 停用一道题后可用量应实时减少
	db.Model(&model.Question{}).Where("id = ?", ids[0]).Update("status", model.QuestionInactive)

	result, err := svc.ListChapterAvailability(context.Background(), subject.ID)
	assert.NoError(t, err)
	assert.Len(t, result, 1)
	assert.Equal(t, 4, result[0].ByDifficulty[2])
	assert.Equal(t, 1, result[0].ByDifficulty[3])
	assert.Equal(t, 0, result[0].ByDifficulty[1])
}
