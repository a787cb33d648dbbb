package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"storeshift_v1_202610/internal/api/dto"
	"storeshift_v1_202610/internal/model"
	"storeshift_v1_202610/internal/repository"
)

// ScheduleQueryService 只读查询
type ScheduleQueryService struct {
	runs          repository.GenerationRunRepository
	shifts        repository.ShiftRepository
	balances      repository.BalanceRepository
	notifications repository.NotificationRepository
}

// NewScheduleQueryService 创建查询服务
func NewScheduleQueryService(
	runs repository.GenerationRunRepository,
	shifts repository.ShiftRepository,
	balances repository.BalanceRepository,
	notifications repository.NotificationRepository,
) *ScheduleQueryService {
	return &ScheduleQueryService{runs: runs, shifts: shifts, balances: balances, notifications: notifications}
}

// requireStaff 管理员或店长
func requireStaff(actor Actor) error {
	if actor.UserID == "" {
		return ErrUnauthorized
	}
	if !model.IsAdminRole(actor.Role) && actor.Role != model.RoleManager {
		return ErrForbidden
	}
	return nil
}

// GetRun 批次详情及各状态班次数
func (s *ScheduleQueryService) GetRun(ctx context.Context, actor Actor, runID string) (*dto.RunDetailResponse, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(runID); err != nil {
		return nil, fmt.Errorf("%w: run_id 格式错误", ErrValidation)
	}
	run, err := s.runs.GetByID(ctx, runID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: 生成批次 %s", ErrNotFound, runID)
	}
	if err != nil {
		return nil, err
	}
	counts, err := s.shifts.CountByRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("统计班次失败: %w", err)
	}
	return &dto.RunDetailResponse{
		ID:          run.ID,
		StoreID:     run.StoreID,
		Department:  run.Department,
		WeekStart:   run.WeekStart,
		WeekEnd:     run.WeekEnd,
		Status:      run.Status,
		CompletedAt: run.CompletedAt,
		ShiftCounts: counts,
	}, nil
}

// ListBalances 门店员工工时余额
func (s *ScheduleQueryService) ListBalances(ctx context.Context, actor Actor, storeID string) ([]dto.BalanceVO, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	balances, err := s.balances.ListByStore(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("查询余额失败: %w", err)
	}
	list := make([]dto.BalanceVO, 0, len(balances))
	for _, b := range balances {
		list = append(list, dto.BalanceVO{
			UserID:         b.UserID,
			StoreID:        b.StoreID,
			CurrentBalance: b.CurrentBalance.StringFixed(2),
			UpdatedAt:      b.UpdatedAt,
		})
	}
	return list, nil
}

// ListNotifications 当前用户的站内通知
func (s *ScheduleQueryService) ListNotifications(ctx context.Context, actor Actor, unreadOnly bool, limit int) ([]model.Notification, error) {
	if actor.UserID == "" {
		return nil, ErrUnauthorized
	}
	return s.notifications.ListByUser(ctx, actor.UserID, unreadOnly, limit)
}
