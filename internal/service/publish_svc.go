package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"storeshift_v1_202610/internal/api/dto"
	"storeshift_v1_202610/internal/logger"
	"storeshift_v1_202610/internal/model"
	"storeshift_v1_202610/internal/repository"
)

// ==================== 发布协调 ====================

// PublicationService 按生成批次发布草稿班次
type PublicationService struct {
	uow   *repository.ScheduleUnitOfWork
	batch *batchNotifier
	now   func() time.Time
}

// NewPublicationService 创建发布服务
func NewPublicationService(
	uow *repository.ScheduleUnitOfWork,
	directory *DirectoryService,
	notifier *NotificationService,
	appBaseURL string,
) *PublicationService {
	return &PublicationService{
		uow:   uow,
		batch: newBatchNotifier(uow.Shifts, directory, notifier, appBaseURL),
		now:   time.Now,
	}
}

// Publish 发布批次下全部草稿
// 先校验角色再查批次；没有草稿可发布时返回 ErrNoOp 和零计数结果
func (s *PublicationService) Publish(ctx context.Context, actor Actor, runID string) (*dto.PublishResult, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(runID); err != nil {
		return nil, fmt.Errorf("%w: 无效批次ID %q", ErrValidation, runID)
	}

	run, err := s.uow.Runs.GetByID(ctx, runID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: 生成批次 %s", ErrNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("查询生成批次失败: %w", err)
	}

	result := &dto.PublishResult{RunID: runID}
	batch := uuid.NewString()
	now := s.now()
	var runMarked int64

	err = s.uow.Transaction(ctx, func(tx *repository.ScheduleUnitOfWork) error {
		n, err := tx.Shifts.PublishByRun(ctx, runID, batch)
		if err != nil {
			return fmt.Errorf("发布班次失败: %w", err)
		}
		if n == 0 {
			return ErrNoOp
		}
		result.PublishedCount = n

		runMarked, err = tx.Runs.MarkPublished(ctx, []string{runID}, now)
		if err != nil {
			return fmt.Errorf("更新批次状态失败: %w", err)
		}

		return tx.Audits.Create(ctx, &model.AuditLog{
			UserID:     actor.UserID,
			UserName:   actor.UserName,
			Action:     model.AuditActionRunPublished,
			EntityType: model.AuditEntityGenerationRun,
			EntityID:   runID,
			StoreID:    run.StoreID,
			Details: datatypes.JSONMap{
				"published_count": n,
				"week_start":      run.WeekStart,
				"week_end":        run.WeekEnd,
				"batch":           batch,
			},
		})
	})
	if errors.Is(err, ErrNoOp) {
		result.Message = "no draft shifts left to publish"
		logger.GetLogger().Infof("[Publish] 批次 %s 无草稿可发布", runID)
		return result, ErrNoOp
	}
	if err != nil {
		return nil, err
	}

	logger.GetLogger().Infof("[Publish] 批次 %s 发布 %d 个班次", runID, result.PublishedCount)

	// 通知失败只记录，不影响已提交的发布
	affected, fan := s.batch.notify(ctx, batch, run.StoreID, run.WeekStart, "Schedule published")
	result.AffectedEmployees = affected
	result.NotificationsSent, result.NotificationsFailed = fan.Sent, fan.Failed
	result.Message = fmt.Sprintf("published %d shifts for %d employees", result.PublishedCount, result.AffectedEmployees)
	// 失败批次的草稿照常发布，批次本身保持原状态
	if runMarked == 0 {
		logger.GetLogger().Warnf("[Publish] 批次 %s 状态为 %s，未标记为已发布", runID, run.Status)
		result.Message += fmt.Sprintf("; run status %s left unchanged", run.Status)
	}
	return result, nil
}
