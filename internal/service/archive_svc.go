package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/datatypes"

	"storeshift_v1_202610/internal/api/dto"
	"storeshift_v1_202610/internal/logger"
	"storeshift_v1_202610/internal/model"
	"storeshift_v1_202610/internal/repository"
	"storeshift_v1_202610/pkg/utils"
)

// errGroupEmpty 分组在本次调用中已被其他归档处理
var errGroupEmpty = errors.New("group already archived")

// ==================== 周归档 ====================

// ArchivalService 归档上一周已发布班次并结算工时余额
type ArchivalService struct {
	uow       *repository.ScheduleUnitOfWork
	directory *DirectoryService
}

// NewArchivalService 创建归档服务
func NewArchivalService(uow *repository.ScheduleUnitOfWork, directory *DirectoryService) *ArchivalService {
	return &ArchivalService{uow: uow, directory: directory}
}

// groupOutcome 单个 (员工, 门店) 的结算结果
type groupOutcome struct {
	archived int64
	applied  decimal.Decimal
}

// ArchiveWeek 归档截止 asOf 的最近一个完整周
// 每个 (员工, 门店) 单独一个事务，失败回滚后继续处理其他分组，错误汇总在结果里
func (s *ArchivalService) ArchiveWeek(ctx context.Context, asOf time.Time) (*dto.ArchiveResult, error) {
	week := utils.ArchiveWeek(asOf)
	result := &dto.ArchiveResult{WeekStart: week.Start, WeekEnd: week.End}

	groups, err := s.uow.Shifts.ListPublishedGroups(ctx, week.Start, week.End)
	if err != nil {
		return nil, fmt.Errorf("查询待归档分组失败: %w", err)
	}
	logger.GetLogger().Infof("[Archive] %s 待归档分组 %d 个", week, len(groups))

	var errs error
	for i, group := range groups {
		if err := ctx.Err(); err != nil {
			// 剩余分组保持已发布，下次调用重试
			errs = multierr.Append(errs, err)
			result.FailedGroups += len(groups) - i
			break
		}

		outcome, err := s.settleGroup(ctx, group, week)
		if errors.Is(err, errGroupEmpty) {
			continue
		}
		if err != nil {
			result.FailedGroups++
			wrapped := fmt.Errorf("员工 %s 门店 %s: %w", group.UserID, group.StoreID, err)
			errs = multierr.Append(errs, wrapped)
			logger.LogError("archive", "ArchiveWeek", "settle group", group, err)
			continue
		}

		result.ArchivedCount += outcome.archived
		result.EmployeesUpdated++
	}

	for _, e := range multierr.Errors(errs) {
		result.Errors = append(result.Errors, e.Error())
	}

	// 有分组失败时批次保持已发布，下次调用重试
	if result.FailedGroups == 0 {
		archivedRuns, err := s.uow.Runs.ArchivePublishedInRange(ctx, week.Start, week.End)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("归档生成批次失败: %v", err))
			logger.LogError("archive", "ArchiveWeek", "archive runs", week, err)
		} else {
			result.RunsArchived = len(archivedRuns)
			if len(archivedRuns) > 0 {
				s.auditRuns(ctx, week, archivedRuns)
			}
		}
	}

	logger.GetLogger().Infof("[Archive] %s 完成: 归档 %d 个班次, 结算 %d 人, 失败 %d 组, 批次 %d 个",
		week, result.ArchivedCount, result.EmployeesUpdated, result.FailedGroups, result.RunsArchived)
	return result, nil
}

// settleGroup 单个分组：条件归档 + 回读 + 计算工时 + 写余额/结算/审计
func (s *ArchivalService) settleGroup(ctx context.Context, group repository.ShiftGroup, week utils.WeekRange) (groupOutcome, error) {
	// 合同工时在事务外读取
	contract, err := s.directory.ContractHours(ctx, group.UserID)
	if err != nil {
		return groupOutcome{}, fmt.Errorf("读取合同工时失败: %w", err)
	}

	var outcome groupOutcome
	batch := uuid.NewString()

	err = s.uow.Transaction(ctx, func(tx *repository.ScheduleUnitOfWork) error {
		n, err := tx.Shifts.ArchiveGroup(ctx, group, week.Start, week.End, batch)
		if err != nil {
			return fmt.Errorf("归档班次失败: %w", err)
		}
		if n == 0 {
			return errGroupEmpty
		}
		outcome.archived = n

		shifts, err := tx.Shifts.ListByBatch(ctx, batch)
		if err != nil {
			return fmt.Errorf("回读归档班次失败: %w", err)
		}
		worked, err := SumWorkedHours(shifts)
		if err != nil {
			return err
		}

		applied, settlement, err := s.applySettlement(ctx, tx, group, week.Start, worked, contract)
		if err != nil {
			return err
		}
		outcome.applied = applied

		return tx.Audits.Create(ctx, &model.AuditLog{
			UserID:     model.SystemActorID,
			UserName:   model.SystemActorName,
			Action:     model.AuditActionShiftsArchived,
			EntityType: model.AuditEntityBalance,
			EntityID:   group.UserID,
			StoreID:    group.StoreID,
			Details: datatypes.JSONMap{
				"week_start":     week.Start,
				"week_end":       week.End,
				"archived_count": n,
				"worked_hours":   settlement.WorkedHours.String(),
				"contract_hours": contract.String(),
				"week_delta":     settlement.Delta.String(),
				"applied_delta":  applied.String(),
				"batch":          batch,
			},
		})
	})
	return outcome, err
}

// applySettlement 每个 (员工, 门店, 周) 只有一个受限差值
// 已结算过的周（迟到的班次）按新总工时重算，只补差额
func (s *ArchivalService) applySettlement(
	ctx context.Context,
	tx *repository.ScheduleUnitOfWork,
	group repository.ShiftGroup,
	weekStart string,
	worked, contract decimal.Decimal,
) (decimal.Decimal, *model.BalanceSettlement, error) {
	settlement, err := tx.Balances.GetSettlement(ctx, group.UserID, group.StoreID, weekStart)
	if err != nil {
		return decimal.Zero, nil, fmt.Errorf("查询结算记录失败: %w", err)
	}

	var applied decimal.Decimal
	if settlement == nil {
		settlement = &model.BalanceSettlement{
			UserID:        group.UserID,
			StoreID:       group.StoreID,
			WeekStart:     weekStart,
			WorkedHours:   worked,
			ContractHours: contract,
			Delta:         ClampDelta(worked, contract),
		}
		applied = settlement.Delta
	} else {
		total := settlement.WorkedHours.Add(worked)
		newDelta := ClampDelta(total, settlement.ContractHours)
		applied = newDelta.Sub(settlement.Delta)
		settlement.WorkedHours = total
		settlement.Delta = newDelta
	}

	if err := tx.Balances.SaveSettlement(ctx, settlement); err != nil {
		return decimal.Zero, nil, fmt.Errorf("保存结算记录失败: %w", err)
	}
	if err := tx.Balances.ApplyDelta(ctx, group.UserID, group.StoreID, applied); err != nil {
		return decimal.Zero, nil, fmt.Errorf("更新余额失败: %w", err)
	}
	return applied, settlement, nil
}

// auditRuns 批次归档审计，失败只记录
func (s *ArchivalService) auditRuns(ctx context.Context, week utils.WeekRange, runIDs []string) {
	for _, id := range runIDs {
		err := s.uow.Audits.Create(ctx, &model.AuditLog{
			UserID:     model.SystemActorID,
			UserName:   model.SystemActorName,
			Action:     model.AuditActionRunsArchived,
			EntityType: model.AuditEntityGenerationRun,
			EntityID:   id,
			Details: datatypes.JSONMap{
				"week_start": week.Start,
				"week_end":   week.End,
			},
		})
		if err != nil {
			logger.LogError("archive", "auditRuns", "create audit", id, err)
		}
	}
}
