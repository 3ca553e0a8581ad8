package model

// Class 教师开设的班级，一个班级绑定一门学科。
type Class struct {
	BaseModel
	TeacherID uint     `gorm:"index;type:bigint unsigned;not null" json:"teacherId"`
	SubjectID uint     `gorm:"index;type:bigint unsigned;not null" json:"subjectId"`
	Subject   *Subject `gorm:"foreignKey:SubjectID" json:"subject,omitempty"`
	Name      string   `gorm:"size:100;not null" json:"name"`
}

func (Class) TableName() string {
	return "classes"
}

type ClassEnrollment struct {
	BaseModel
	ClassID   uint `gorm:"index:idx_class_student,unique;type:bigint unsigned;not null" json:"classId"`
	StudentID uint `gorm:"index:idx_class_student,unique;type:bigint unsigned;not null" json:"studentId"`
}

func (ClassEnrollment) TableName() string {
	return "class_enrollments"
}
