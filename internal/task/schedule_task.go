package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"storeshift_v1_202610/internal/api/dto"
	"storeshift_v1_202610/internal/logger"
	"storeshift_v1_202610/pkg/cache"
)

// 锁键与超时
const (
	generationLockKey = "storeshift:lock:weekly-generation"
	archivalLockKey   = "storeshift:lock:archive-week"

	generationTimeout = 30 * time.Minute
	archivalTimeout   = 10 * time.Minute
)

// WeeklyGenerator 每周生成
type WeeklyGenerator interface {
	RunWeeklyGeneration(ctx context.Context, now time.Time) (*dto.GenerationSummary, error)
}

// WeekArchiver 周归档
type WeekArchiver interface {
	ArchiveWeek(ctx context.Context, asOf time.Time) (*dto.ArchiveResult, error)
}

// ScheduleTask 进程内的周生成/周归档调度
// 多副本部署时靠 redis 锁保证同一时刻只有一个实例执行
type ScheduleTask struct {
	generator WeeklyGenerator
	archiver  WeekArchiver
	locker    *cache.Locker

	Cron           *cron.Cron
	generationSpec string
	archivalSpec   string
	loc            *time.Location
	now            func() time.Time
}

// NewScheduleTask 创建调度任务，spec 为六段式（含秒）
func NewScheduleTask(generator WeeklyGenerator, archiver WeekArchiver, locker *cache.Locker, generationSpec, archivalSpec string, loc *time.Location) *ScheduleTask {
	if loc == nil {
		loc = time.UTC
	}
	return &ScheduleTask{
		generator:      generator,
		archiver:       archiver,
		locker:         locker,
		Cron:           cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		generationSpec: generationSpec,
		archivalSpec:   archivalSpec,
		loc:            loc,
		now:            time.Now,
	}
}

func (t *ScheduleTask) log() *logrus.Entry {
	return logger.GetLogger().WithField("module", "schedule_task")
}

// Start 注册并启动定时任务
func (t *ScheduleTask) Start() error {
	if t.generator != nil && t.generationSpec != "" {
		if _, err := t.Cron.AddFunc(t.generationSpec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), generationTimeout)
			defer cancel()
			_ = t.RunGeneration(ctx)
		}); err != nil {
			return fmt.Errorf("注册生成任务失败 %q: %w", t.generationSpec, err)
		}
	}

	if t.archiver != nil && t.archivalSpec != "" {
		if _, err := t.Cron.AddFunc(t.archivalSpec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), archivalTimeout)
			defer cancel()
			_ = t.RunArchival(ctx)
		}); err != nil {
			return fmt.Errorf("注册归档任务失败 %q: %w", t.archivalSpec, err)
		}
	}

	t.Cron.Start()
	t.log().WithFields(logrus.Fields{
		"generation": t.generationSpec,
		"archival":   t.archivalSpec,
		"tz":         t.loc.String(),
	}).Info("[Schedule] 定时任务已启动")
	return nil
}

// Stop 停止调度并等待正在执行的任务结束
func (t *ScheduleTask) Stop() {
	<-t.Cron.Stop().Done()
	t.log().Info("[Schedule] 定时任务已停止")
}

// RunGeneration 加锁执行一次每周生成
func (t *ScheduleTask) RunGeneration(ctx context.Context) error {
	err := t.locker.WithLock(ctx, generationLockKey, generationTimeout, func(ctx context.Context) error {
		summary, err := t.generator.RunWeeklyGeneration(ctx, t.now().In(t.loc))
		if err != nil {
			return err
		}
		t.log().WithFields(logrus.Fields{
			"week_start": summary.WeekStart,
			"succeeded":  summary.Succeeded,
			"failed":     summary.Failed,
			"skipped":    summary.Skipped,
		}).Info("[Schedule] 每周生成完成")
		return nil
	})
	return t.report("weekly-generation", err)
}

// RunArchival 加锁执行一次周归档
func (t *ScheduleTask) RunArchival(ctx context.Context) error {
	err := t.locker.WithLock(ctx, archivalLockKey, archivalTimeout, func(ctx context.Context) error {
		result, err := t.archiver.ArchiveWeek(ctx, t.now().In(t.loc))
		if err != nil {
			return err
		}
		entry := t.log().WithFields(logrus.Fields{
			"week_start":    result.WeekStart,
			"archived":      result.ArchivedCount,
			"employees":     result.EmployeesUpdated,
			"failed_groups": result.FailedGroups,
			"runs_archived": result.RunsArchived,
		})
		if result.FailedGroups > 0 {
			entry.Warn("[Schedule] 周归档部分失败，批次保持已发布")
		} else {
			entry.Info("[Schedule] 周归档完成")
		}
		return nil
	})
	return t.report("archive-week", err)
}

// report 其他实例持锁时只记录不报错
func (t *ScheduleTask) report(job string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, cache.ErrLocked):
		t.log().WithField("job", job).Info("[Schedule] 其他实例正在执行，跳过")
		return nil
	default:
		logger.LogError("schedule_task", job, "job failed", nil, err)
		return err
	}
}
