package model

// BlueprintStatus 状态单向推进：Draft -> Published -> InUse -> Archived
type BlueprintStatus int

const (
	BlueprintDraft     BlueprintStatus = 0
	BlueprintPublished BlueprintStatus = 1
	BlueprintInUse     BlueprintStatus = 2
	BlueprintArchived  BlueprintStatus = 3
)

func (s BlueprintStatus) Label() string {
	switch s {
	case BlueprintDraft:
		return "Draft"
	case BlueprintPublished:
		return "Published"
	case BlueprintInUse:
		return "InUse"
	case BlueprintArchived:
		return "Archived"
	default:
		return "Unknown"
	}
}

// ExamBlueprint 组卷蓝图：按 (章节, 难度) 声明抽题数量的矩阵。
// swagger:model ExamBlueprint
type ExamBlueprint struct {
	VersionedModel
	TeacherID            uint            `gorm:"index;type:bigint unsigned;not null" json:"teacherId"`
	SubjectID            uint            `gorm:"index;type:bigint unsigned;not null" json:"subjectId"`
	Subject              *Subject        `gorm:"foreignKey:SubjectID" json:"subject,omitempty"`
	Name                 string          `gorm:"size:200;not null" json:"name"`
	Description          string          `gorm:"size:1000" json:"description"`
	Status               BlueprintStatus `gorm:"default:0;index" json:"status"`
	TargetTotalQuestions int             `gorm:"default:0" json:"targetTotalQuestions"`
	TotalQuestions       int             `gorm:"default:0" json:"totalQuestions"`
	Rows                 []BlueprintRow  `gorm:"foreignKey:BlueprintID" json:"rows,omitempty"`
}

func (ExamBlueprint) TableName() string {
	return "exam_blueprints"
}

// BlueprintRow 蓝图中的一行，(blueprint, chapter, difficulty) 唯一。
type BlueprintRow struct {
	BaseModel
	BlueprintID uint       `gorm:"index:idx_bp_chapter_diff,unique;type:bigint unsigned;not null" json:"blueprintId"`
	ChapterID   uint       `gorm:"index:idx_bp_chapter_diff,unique;type:bigint unsigned;not null" json:"chapterId"`
	Difficulty  Difficulty `gorm:"index:idx_bp_chapter_diff,unique;not null" json:"difficulty"`
	Count       int        `gorm:"not null;default:0" json:"count"`
}

func (BlueprintRow) TableName() string {
	return "exam_blueprint_rows"
}
