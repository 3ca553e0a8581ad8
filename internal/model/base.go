package model

import (
	"time"

	"gorm.io/gorm"
)

// swagger:model
type BaseModel struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// VersionedModel 在 BaseModel 基础上增加乐观锁版本号，
// 用于存在并发写入的表（题目、提交等）。
type VersionedModel struct {
	BaseModel
	Version int `gorm:"default:1" json:"version"`
}

// BeforeCreate 保证新纪录的内存副本和库里看到的版本号一致
func (m *VersionedModel) BeforeCreate(tx *gorm.DB) error {
	if m.Version == 0 {
		m.Version = 1
	}
	return nil
}