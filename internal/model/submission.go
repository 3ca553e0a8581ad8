package model

type SubmissionStatus int

const (
	SubmissionActive    SubmissionStatus = 1
	SubmissionSubmitted SubmissionStatus = 2
)

// Submission 一名学生对一套卷的一次作答（即一次 attempt）。
// CreatedAt 即开考时间，时间预算从它起算。Version 用于
// 强制交卷扫描与学生保存之间的乐观锁校验。
// swagger:model Submission
type Submission struct {
	VersionedModel
	StudentID   uint             `gorm:"index;type:bigint unsigned;not null" json:"studentId"`
	PaperID     uint             `gorm:"index;type:bigint unsigned;not null" json:"paperId"`
	Paper       *Paper           `gorm:"foreignKey:PaperID" json:"paper,omitempty"`
	Status      SubmissionStatus `gorm:"default:1;index" json:"status"`
	TotalPoints *int             `json:"totalPoints,omitempty"`
}

func (Submission) TableName() string {
	return "submissions"
}

// StudentAnswer 每 (submission, questionIndex) 至多一条，后写覆盖先写。
type StudentAnswer struct {
	BaseModel
	SubmissionID  uint   `gorm:"index:idx_submission_qindex,unique;type:bigint unsigned;not null" json:"submissionId"`
	QuestionIndex int    `gorm:"index:idx_submission_qindex,unique;not null" json:"questionIndex"`
	Response      string `gorm:"type:text" json:"response"`
}

func (StudentAnswer) TableName() string {
	return "student_answers"
}
