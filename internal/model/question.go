package model

// QuestionType 封闭的题型枚举，答案脱敏逻辑按题型穷举处理。
type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	StepByStep     QuestionType = "step_by_step"
	ShortAnswer    QuestionType = "short_answer"
	OtherQuestion  QuestionType = "other"
)

// Difficulty 难度等级 1=识记 2=理解 3=应用 4=综合应用
type Difficulty int

const (
	DifficultyRecognize     Difficulty = 1
	DifficultyUnderstand    Difficulty = 2
	DifficultyApply         Difficulty = 3
	DifficultyAdvancedApply Difficulty = 4
)

func (d Difficulty) Valid() bool {
	return d >= DifficultyRecognize && d <= DifficultyAdvancedApply
}

type QuestionStatus int

const (
	QuestionActive   QuestionStatus = 1
	QuestionInactive QuestionStatus = 0
)

// Question 题库中的一道题。被试卷引用过的题只停用，不做物理删除。
// AnswerKey 的结构依题型而定：
//   - multiple_choice: JSON 对象，含 correct 字段
//   - step_by_step:    JSON 数组，每步含 a/answer 字段
//   - short_answer:    纯文本参考答案
//
// swagger:model Question
type Question struct {
	VersionedModel
	ChapterID  uint           `gorm:"index;type:bigint unsigned;not null" json:"chapterId"`
	Chapter    *Chapter       `gorm:"foreignKey:ChapterID" json:"chapter,omitempty"`
	CreatorID  uint           `gorm:"index;type:bigint unsigned" json:"creatorId"`
	Type       QuestionType   `gorm:"size:50;not null" json:"type"`
	Content    string         `gorm:"type:text;not null" json:"content"`
	AnswerKey  string         `gorm:"type:text" json:"answerKey"`
	Difficulty Difficulty     `gorm:"not null;default:1" json:"difficulty"`
	Status     QuestionStatus `gorm:"default:1;index" json:"status"`
}

func (Question) TableName() string {
	return "questions"
}
