package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// 审计动作
const (
	AuditActionRunPublished   = "generation_run.published"
	AuditActionPatchApproved  = "shift_patch.approved"
	AuditActionShiftsArchived = "shifts.archived"
	AuditActionRunsArchived   = "generation_run.archived"

	AuditEntityGenerationRun = "generation_run"
	AuditEntityShift         = "shift"
	AuditEntityBalance       = "balance"

	// SystemActorID 定时任务写入审计时使用的操作人
	SystemActorID   = "system"
	SystemActorName = "cron"
)

// AuditLog 审计日志，只追加不修改
type AuditLog struct {
	ID         string            `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt  time.Time         `gorm:"index" json:"created_at"`
	UserID     string            `gorm:"size:36;index" json:"user_id"`
	UserName   string            `gorm:"size:128" json:"user_name"`
	Action     string            `gorm:"size:64;not null;index" json:"action"`
	EntityType string            `gorm:"size:64;not null" json:"entity_type"`
	EntityID   string            `gorm:"size:64;not null;index" json:"entity_id"`
	StoreID    string            `gorm:"size:36;index" json:"store_id"`
	Details    datatypes.JSONMap `gorm:"type:json" json:"details"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
