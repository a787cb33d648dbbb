package model

import (
	"errors"

	"gorm.io/gorm"
)

// ==================== 状态常量 ====================

const (
	// 班次状态，只允许 draft -> published -> archived
	ShiftStatusDraft     = "draft"
	ShiftStatusPublished = "published"
	ShiftStatusArchived  = "archived"
)

// shiftTransitions 合法的状态流转
var shiftTransitions = map[string]string{
	ShiftStatusDraft:     ShiftStatusPublished,
	ShiftStatusPublished: ShiftStatusArchived,
}

// CanShiftTransition 检查班次状态流转是否合法（不可跳级、不可回退）
func CanShiftTransition(from, to string) bool {
	next, ok := shiftTransitions[from]
	return ok && next == to
}

// ==================== 数据库模型 ====================

// Shift 排班记录
type Shift struct {
	BaseModel
	StoreID         string  `gorm:"size:36;not null;index:idx_shifts_store_date;comment:门店ID" json:"store_id"`
	UserID          string  `gorm:"size:36;not null;index;comment:员工ID" json:"user_id"`
	Date            string  `gorm:"size:10;not null;index:idx_shifts_store_date;comment:日期 YYYY-MM-DD" json:"date"`
	StartTime       *string `gorm:"size:8;comment:开始时间 HH:MM" json:"start_time"`
	EndTime         *string `gorm:"size:8;comment:结束时间 HH:MM" json:"end_time"`
	Department      string  `gorm:"size:64;comment:部门" json:"department"`
	IsDayOff        bool    `gorm:"not null;comment:是否休息日" json:"is_day_off"`
	Status          string  `gorm:"size:16;not null;index;comment:状态" json:"status"`
	GenerationRunID *string `gorm:"size:36;index;comment:生成批次ID" json:"generation_run_id"`

	// 最近一次条件更新写入的批次标记，用于回读本次真正发生流转的行
	TransitionBatch *string `gorm:"size:36;index;comment:流转批次" json:"-"`
}

func (Shift) TableName() string {
	return "shifts"
}

// BeforeCreate 写入前校验，休息日带时间的行直接拒绝
func (s *Shift) BeforeCreate(tx *gorm.DB) error {
	if err := s.Validate(); err != nil {
		return err
	}
	return s.BaseModel.BeforeCreate(tx)
}

// ==================== 辅助方法 ====================

// Validate 校验休息日与时间字段的一致性
func (s *Shift) Validate() error {
	if s.StoreID == "" || s.UserID == "" {
		return errors.New("门店和员工不能为空")
	}
	if s.Date == "" {
		return errors.New("日期不能为空")
	}
	if s.IsDayOff && (s.StartTime != nil || s.EndTime != nil) {
		return errors.New("休息日不能设置上下班时间")
	}
	return nil
}

// IsWorkShift 是否为计工时的班次：非休息日且上下班时间齐全
func (s *Shift) IsWorkShift() bool {
	return !s.IsDayOff && s.StartTime != nil && s.EndTime != nil
}
