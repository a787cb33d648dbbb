package task

import (
	"time"

	"storeshift_v1_202610/internal/logger"
	"storeshift_v1_202610/pkg/cache"
)

// ==================== TaskManager 后台任务管理器 ====================

// TaskManager 统一管理进程内定时任务
// 默认关闭，生产环境由外部 cron 调用 HTTP 接口触发
type TaskManager struct {
	schedule *ScheduleTask
}

// TaskManagerDeps 任务管理器依赖
type TaskManagerDeps struct {
	Generation WeeklyGenerator
	Archival   WeekArchiver
	Locker     *cache.Locker
}

// TaskManagerConfig 任务管理器配置
type TaskManagerConfig struct {
	Enabled        bool
	GenerationSpec string
	ArchivalSpec   string
	Location       *time.Location
}

// DefaultConfig 默认配置
func DefaultConfig() *TaskManagerConfig {
	return &TaskManagerConfig{
		Enabled:        false,
		GenerationSpec: "0 0 6 * * 4",
		ArchivalSpec:   "0 0 2 * * 1",
		Location:       time.UTC,
	}
}

// NewTaskManager 创建任务管理器
func NewTaskManager(deps *TaskManagerDeps, cfg *TaskManagerConfig) *TaskManager {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	tm := &TaskManager{}
	if cfg.Enabled && (deps.Generation != nil || deps.Archival != nil) {
		tm.schedule = NewScheduleTask(deps.Generation, deps.Archival, deps.Locker,
			cfg.GenerationSpec, cfg.ArchivalSpec, cfg.Location)
	}
	return tm
}

// ==================== 生命周期管理 ====================

// Start 启动所有任务
func (tm *TaskManager) Start() error {
	if tm.schedule == nil {
		logger.GetLogger().Info("[TaskManager] 进程内调度未开启，等待外部 cron 触发")
		return nil
	}
	return tm.schedule.Start()
}

// Stop 停止所有任务
func (tm *TaskManager) Stop() {
	if tm.schedule != nil {
		tm.schedule.Stop()
	}
}
