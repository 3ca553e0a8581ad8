package model

import "time"

type ExamStatus int

const (
	ExamDraft     ExamStatus = 0
	ExamPublished ExamStatus = 1
	ExamClosed    ExamStatus = 2
)

// Exam 一场考试的配置。ClassID 为空表示公开考试，不限班级。
// 可见性窗口满足 visibleFrom <= openAt < closeAt（各项均可为空）。
// swagger:model Exam
type Exam struct {
	BaseModel
	TeacherID           uint       `gorm:"index;type:bigint unsigned;not null" json:"teacherId"`
	ClassID             *uint      `gorm:"index;type:bigint unsigned" json:"classId,omitempty"`
	SubjectID           uint       `gorm:"index;type:bigint unsigned;not null" json:"subjectId"`
	BlueprintID         *uint      `gorm:"index;type:bigint unsigned" json:"blueprintId,omitempty"`
	Title               string     `gorm:"size:255;not null" json:"title"`
	Description         string     `gorm:"type:text" json:"description"`
	Duration            int        `gorm:"not null" json:"duration"` // 分钟
	MaxAttempts         int        `gorm:"default:1" json:"maxAttempts"`
	ShowScore           bool       `gorm:"default:true" json:"showScore"`
	ShowAnswer          bool       `gorm:"default:false" json:"showAnswer"`
	AllowLateSubmission bool       `gorm:"default:false" json:"allowLateSubmission"`
	ShuffleQuestion     bool       `gorm:"default:false" json:"shuffleQuestion"`
	VisibleFrom         *time.Time `json:"visibleFrom,omitempty"`
	OpenAt              *time.Time `json:"openAt,omitempty"`
	CloseAt             *time.Time `json:"closeAt,omitempty"`
	Status              ExamStatus `gorm:"default:1;index" json:"status"`
}

func (Exam) TableName() string {
	return "exams"
}

// Paper 同一场考试的一套平行卷，Code 区分 A/B 卷等变体。
type Paper struct {
	BaseModel
	ExamID    uint            `gorm:"index;type:bigint unsigned;not null" json:"examId"`
	Code      int             `gorm:"default:1" json:"code"`
	Questions []PaperQuestion `gorm:"foreignKey:PaperID" json:"questions,omitempty"`
}

func (Paper) TableName() string {
	return "papers"
}

// PaperQuestion 冻结后的有序题目列表，Index 从 1 开始。
type PaperQuestion struct {
	BaseModel
	PaperID    uint      `gorm:"index:idx_paper_index,unique;type:bigint unsigned;not null" json:"paperId"`
	QuestionID uint      `gorm:"index;type:bigint unsigned;not null" json:"questionId"`
	Question   *Question `gorm:"foreignKey:QuestionID" json:"question,omitempty"`
	Index      int       `gorm:"index:idx_paper_index,unique;not null" json:"index"`
}

func (PaperQuestion) TableName() string {
	return "paper_questions"
}
