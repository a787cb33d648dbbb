package model

import "gorm.io/datatypes"

// Store 门店
type Store struct {
	BaseModel
	Name              string                      `gorm:"size:128;not null" json:"name"`
	IsActive          bool                        `gorm:"not null;index" json:"is_active"`
	GenerationEnabled bool                        `gorm:"not null;comment:是否参与每周自动排班" json:"generation_enabled"`
	Departments       datatypes.JSONSlice[string] `gorm:"type:json;comment:部门列表" json:"departments"`
}

func (Store) TableName() string {
	return "stores"
}
