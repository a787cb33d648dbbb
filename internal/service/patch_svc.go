package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"storeshift_v1_202610/internal/api/dto"
	"storeshift_v1_202610/internal/logger"
	"storeshift_v1_202610/internal/model"
	"storeshift_v1_202610/internal/repository"
	"storeshift_v1_202610/pkg/utils"
)

// ==================== 补丁审批 ====================

// PatchApprovalService 审批门店某周的全部草稿（包括手工修补的班次）
type PatchApprovalService struct {
	uow   *repository.ScheduleUnitOfWork
	batch *batchNotifier
	now   func() time.Time
}

// NewPatchApprovalService 创建补丁审批服务
func NewPatchApprovalService(
	uow *repository.ScheduleUnitOfWork,
	directory *DirectoryService,
	notifier *NotificationService,
	appBaseURL string,
) *PatchApprovalService {
	return &PatchApprovalService{
		uow:   uow,
		batch: newBatchNotifier(uow.Shifts, directory, notifier, appBaseURL),
		now:   time.Now,
	}
}

// ApprovePatch 发布门店 weekStart 所在周的全部草稿，并把 runIDs 标记为已发布
// 只通知本次真正发生流转的员工
func (s *PatchApprovalService) ApprovePatch(ctx context.Context, actor Actor, storeID, weekStart string, runIDs []string) (*dto.PatchResult, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	storeID = strings.TrimSpace(storeID)
	if storeID == "" {
		return nil, fmt.Errorf("%w: 门店ID不能为空", ErrValidation)
	}
	day, err := utils.ParseDate(weekStart)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	for _, id := range runIDs {
		if _, err := uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("%w: 无效批次ID %q", ErrValidation, id)
		}
	}

	week := utils.WeekOf(day)
	result := &dto.PatchResult{
		StoreID:   storeID,
		WeekStart: week.Start,
		WeekEnd:   week.End,
		RunIDs:    runIDs,
	}

	if err := s.checkRunsBelong(ctx, storeID, week, runIDs); err != nil {
		return nil, err
	}

	drafts, err := s.uow.Shifts.CountDraftByStoreRange(ctx, storeID, week.Start, week.End)
	if err != nil {
		return nil, fmt.Errorf("统计草稿失败: %w", err)
	}
	if drafts == 0 {
		return nil, fmt.Errorf("%w: 门店 %s 在 %s 没有草稿", ErrNotFound, storeID, week)
	}

	batch := uuid.NewString()
	now := s.now()

	err = s.uow.Transaction(ctx, func(tx *repository.ScheduleUnitOfWork) error {
		n, err := tx.Shifts.PublishByStoreRange(ctx, storeID, week.Start, week.End, batch)
		if err != nil {
			return fmt.Errorf("发布班次失败: %w", err)
		}
		if n == 0 {
			// 并发审批已抢先发布
			return ErrNoOp
		}
		result.PublishedCount = n

		runs, err := tx.Runs.MarkPublishedInStoreWeek(ctx, runIDs, storeID, week.Start, now)
		if err != nil {
			return fmt.Errorf("更新批次状态失败: %w", err)
		}
		result.RunsPublished = runs

		return tx.Audits.Create(ctx, &model.AuditLog{
			UserID:     actor.UserID,
			UserName:   actor.UserName,
			Action:     model.AuditActionPatchApproved,
			EntityType: model.AuditEntityShift,
			EntityID:   storeID + ":" + week.Start,
			StoreID:    storeID,
			Details: datatypes.JSONMap{
				"published_count": n,
				"week_start":      week.Start,
				"week_end":        week.End,
				"run_ids":         runIDs,
				"batch":           batch,
			},
		})
	})
	if errors.Is(err, ErrNoOp) {
		result.Message = "draft shifts were already approved"
		logger.GetLogger().Infof("[Patch] 门店 %s %s 已被其他审批发布", storeID, week)
		return result, ErrNoOp
	}
	if err != nil {
		return nil, err
	}

	logger.GetLogger().Infof("[Patch] 门店 %s %s 发布 %d 个班次", storeID, week, result.PublishedCount)

	affected, fan := s.batch.notify(ctx, batch, storeID, week.Start, "Schedule updated")
	result.AffectedEmployees = affected
	result.NotificationsSent, result.NotificationsFailed = fan.Sent, fan.Failed
	result.Message = fmt.Sprintf("approved %d shifts for %d employees", result.PublishedCount, result.AffectedEmployees)
	return result, nil
}

// checkRunsBelong 拒绝不属于该门店该周的批次ID
func (s *PatchApprovalService) checkRunsBelong(ctx context.Context, storeID string, week utils.WeekRange, runIDs []string) error {
	if len(runIDs) == 0 {
		return nil
	}
	runs, err := s.uow.Runs.ListByStoreWeek(ctx, storeID, week.Start)
	if err != nil {
		return fmt.Errorf("查询生成批次失败: %w", err)
	}
	owned := make(map[string]bool, len(runs))
	for _, r := range runs {
		owned[r.ID] = true
	}
	for _, id := range runIDs {
		if !owned[id] {
			return fmt.Errorf("%w: 批次 %s 不属于门店 %s 的 %s", ErrValidation, id, storeID, week)
		}
	}
	return nil
}
