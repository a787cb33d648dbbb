package model

import "time"

const (
	// 生成批次状态
	RunStatusPending   = "pending"
	RunStatusCompleted = "completed"
	RunStatusPublished = "published"
	RunStatusArchived  = "archived"
	RunStatusFailed    = "failed"

	// DepartmentAll 表示一次生成覆盖门店全部部门
	DepartmentAll = "all"
)

// PublishableRunStatuses 可以被发布的批次状态
var PublishableRunStatuses = []string{RunStatusPending, RunStatusCompleted}

// GenerationRun 一次排班生成记录，由外部生成器写入
type GenerationRun struct {
	BaseModel
	StoreID      string     `gorm:"size:36;not null;index;comment:门店ID" json:"store_id"`
	Department   string     `gorm:"size:64;not null;default:all;comment:部门" json:"department"`
	WeekStart    string     `gorm:"size:10;not null;index;comment:周一日期" json:"week_start"`
	WeekEnd      string     `gorm:"size:10;not null;comment:周日日期" json:"week_end"`
	Status       string     `gorm:"size:16;not null;index;comment:状态" json:"status"`
	CreatedBy    string     `gorm:"size:36;comment:创建人" json:"created_by"`
	CompletedAt  *time.Time `gorm:"comment:完成/发布时间" json:"completed_at"`
	Notes        string     `gorm:"type:text;comment:备注" json:"notes"`
	ErrorMessage string     `gorm:"size:1024;comment:错误信息" json:"error_message"`
}

func (GenerationRun) TableName() string {
	return "generation_runs"
}
