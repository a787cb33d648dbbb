package dto

import "time"

// ==================== 请求 DTO ====================

// ApprovePatchRequest 审批补丁请求
type ApprovePatchRequest struct {
	WeekStart string   `json:"week_start" binding:"required,date_ymd"`
	RunIDs    []string `json:"run_ids" binding:"omitempty,dive,uuid"`
}

// ArchiveWeekRequest 手动触发归档，as_of 为空使用当前日期
type ArchiveWeekRequest struct {
	AsOf string `json:"as_of" binding:"omitempty,date_ymd"`
}

// WeeklyGenerationRequest 手动触发生成，now 为空使用当前时间
type WeeklyGenerationRequest struct {
	Now string `json:"now" binding:"omitempty,date_ymd"`
}

// ListNotificationsRequest 通知列表请求
type ListNotificationsRequest struct {
	UnreadOnly bool `form:"unread_only"`
	Limit      int  `form:"limit,default=20" binding:"min=1,max=100"`
}

// ==================== 结果 DTO ====================

// PublishResult 发布结果
type PublishResult struct {
	RunID               string `json:"run_id"`
	PublishedCount      int64  `json:"published_count"`
	AffectedEmployees   int    `json:"affected_employees"`
	NotificationsSent   int    `json:"notifications_sent"`
	NotificationsFailed int    `json:"notifications_failed"`
	Message             string `json:"message"`
}

// PatchResult 补丁审批结果
type PatchResult struct {
	StoreID             string   `json:"store_id"`
	WeekStart           string   `json:"week_start"`
	WeekEnd             string   `json:"week_end"`
	PublishedCount      int64    `json:"published_count"`
	AffectedEmployees   int      `json:"affected_employees"`
	RunsPublished       int64    `json:"runs_published"`
	RunIDs              []string `json:"run_ids,omitempty"`
	NotificationsSent   int      `json:"notifications_sent"`
	NotificationsFailed int      `json:"notifications_failed"`
	Message             string   `json:"message"`
}

// ArchiveResult 周归档结果
type ArchiveResult struct {
	WeekStart        string   `json:"week_start"`
	WeekEnd          string   `json:"week_end"`
	ArchivedCount    int64    `json:"archived_count"`
	EmployeesUpdated int      `json:"employees_updated"`
	FailedGroups     int      `json:"failed_groups"`
	RunsArchived     int      `json:"runs_archived"`
	Errors           []string `json:"errors,omitempty"`
}

// 单店生成状态
const (
	GenerationSkipped = "skipped"
	GenerationSuccess = "success"
	GenerationFailed  = "failed"
)

// StoreGenerationResult 单个门店的生成结果
type StoreGenerationResult struct {
	StoreID        string         `json:"store_id"`
	StoreName      string         `json:"store_name"`
	Status         string         `json:"status"`
	RunID          string         `json:"run_id,omitempty"`
	ShiftsCreated  int            `json:"shifts_created"`
	DaysOffCreated int            `json:"days_off_created"`
	Uncovered      map[string]int `json:"uncovered,omitempty"`
	TotalUncovered int            `json:"total_uncovered"`
	AdminsNotified int            `json:"admins_notified"`
	Error          string         `json:"error,omitempty"`
}

// GenerationSummary 每周生成汇总
type GenerationSummary struct {
	WeekStart string                  `json:"week_start"`
	WeekEnd   string                  `json:"week_end"`
	Total     int                     `json:"total"`
	Succeeded int                     `json:"succeeded"`
	Failed    int                     `json:"failed"`
	Skipped   int                     `json:"skipped"`
	Stores    []StoreGenerationResult `json:"stores"`
}

// ==================== 查询响应 ====================

// RunDetailResponse 生成批次详情
type RunDetailResponse struct {
	ID          string           `json:"id"`
	StoreID     string           `json:"store_id"`
	Department  string           `json:"department"`
	WeekStart   string           `json:"week_start"`
	WeekEnd     string           `json:"week_end"`
	Status      string           `json:"status"`
	CompletedAt *time.Time       `json:"completed_at"`
	ShiftCounts map[string]int64 `json:"shift_counts"`
}

// BalanceVO 员工工时余额
type BalanceVO struct {
	UserID         string    `json:"user_id"`
	StoreID        string    `json:"store_id"`
	CurrentBalance string    `json:"current_balance"`
	UpdatedAt      time.Time `json:"updated_at"`
}
