package model

// Subject 不可变的参考数据，由管理员或种子数据维护。
// swagger:model Subject
type Subject struct {
	BaseModel
	Name string `gorm:"size:100;not null" json:"name"`
	Code string `gorm:"size:50;unique;not null" json:"code"`
}

func (Subject) TableName() string {
	return "subjects"
}

// swagger:model Chapter
type Chapter struct {
	BaseModel
	SubjectID uint     `gorm:"index;type:bigint unsigned;not null" json:"subjectId"`
	Subject   *Subject `gorm:"foreignKey:SubjectID" json:"subject,omitempty"`
	Name      string   `gorm:"size:200;not null" json:"name"`
	Order     int      `gorm:"default:0" json:"order"`
}

func (Chapter) TableName() string {
	return "chapters"
}
