package service

import (
	"context"
	"fmt"
	"time"

	"storeshift_v1_202610/internal/api/dto"
	"storeshift_v1_202610/internal/logger"
	"storeshift_v1_202610/internal/model"
	"storeshift_v1_202610/internal/repository"
	"storeshift_v1_202610/pkg/utils"
)

// ==================== 每周生成 ====================

// GenerationService 每周为启用自动排班的门店生成下周草稿
type GenerationService struct {
	stores     repository.StoreRepository
	runs       repository.GenerationRunRepository
	generator  Generator
	directory  *DirectoryService
	notifier   *NotificationService
	appBaseURL string
}

// NewGenerationService 创建生成服务
func NewGenerationService(
	stores repository.StoreRepository,
	runs repository.GenerationRunRepository,
	generator Generator,
	directory *DirectoryService,
	notifier *NotificationService,
	appBaseURL string,
) *GenerationService {
	return &GenerationService{
		stores:     stores,
		runs:       runs,
		generator:  generator,
		directory:  directory,
		notifier:   notifier,
		appBaseURL: appBaseURL,
	}
}

// RunWeeklyGeneration 逐店生成 now 之后下一周的排班
// 单店失败不影响其他门店，不在本轮内重试
func (s *GenerationService) RunWeeklyGeneration(ctx context.Context, now time.Time) (*dto.GenerationSummary, error) {
	week := utils.WeekOf(utils.NextMonday(now))
	summary := &dto.GenerationSummary{WeekStart: week.Start, WeekEnd: week.End}

	stores, err := s.stores.ListGenerationEnabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("查询门店失败: %w", err)
	}
	logger.GetLogger().Infof("[Generation] %s 待生成门店 %d 个", week, len(stores))

	for _, store := range stores {
		res := s.generateStore(ctx, store, week)

		switch res.Status {
		case dto.GenerationSuccess:
			summary.Succeeded++
		case dto.GenerationFailed:
			summary.Failed++
		case dto.GenerationSkipped:
			summary.Skipped++
		}

		if res.Status != dto.GenerationSkipped {
			res.AdminsNotified = s.emailAdmins(ctx, res, week)
		}
		summary.Stores = append(summary.Stores, res)
	}
	summary.Total = len(stores)

	logger.GetLogger().Infof("[Generation] %s 完成: 成功 %d, 失败 %d, 跳过 %d",
		week, summary.Succeeded, summary.Failed, summary.Skipped)
	return summary, nil
}

// generateStore 单店生成，panic 也按失败处理
func (s *GenerationService) generateStore(ctx context.Context, store model.Store, week utils.WeekRange) (res dto.StoreGenerationResult) {
	res = dto.StoreGenerationResult{StoreID: store.ID, StoreName: store.Name}

	if len(store.Departments) == 0 {
		res.Status = dto.GenerationSkipped
		logger.GetLogger().Infof("[Generation] 门店 %s 未配置部门，跳过", store.Name)
		return res
	}

	defer func() {
		if r := recover(); r != nil {
			res.Status = dto.GenerationFailed
			res.Error = fmt.Sprintf("generator panic: %v", r)
			logger.LogError("generation", "generateStore", "generator panic", store.ID, fmt.Errorf("%v", r))
		}
	}()

	outcome, err := s.generator.Generate(ctx, store, model.DepartmentAll, week.Start)
	if err != nil {
		res.Status = dto.GenerationFailed
		res.Error = err.Error()
		logger.LogError("generation", "generateStore", "generate", store.ID, err)
		// 生成器已建批次但中途失败，批次标记为失败，避免被当作可发布
		if outcome != nil && outcome.RunID != "" {
			res.RunID = outcome.RunID
			if markErr := s.runs.MarkFailed(ctx, outcome.RunID, err.Error()); markErr != nil {
				logger.LogError("generation", "generateStore", "mark run failed", outcome.RunID, markErr)
			}
		}
		return res
	}

	res.Status = dto.GenerationSuccess
	res.RunID = outcome.RunID
	res.ShiftsCreated = outcome.ShiftsCreated
	res.DaysOffCreated = outcome.DaysOffCreated
	res.Uncovered = outcome.UncoveredByDepartment()
	for _, n := range res.Uncovered {
		res.TotalUncovered += n
	}
	return res
}

// emailAdmins 给门店管理员发汇总邮件，返回成功发送数
func (s *GenerationService) emailAdmins(ctx context.Context, res dto.StoreGenerationResult, week utils.WeekRange) int {
	admins, err := s.directory.StoreAdmins(ctx, res.StoreID)
	if err != nil {
		logger.LogError("generation", "emailAdmins", "list admins", res.StoreID, err)
		return 0
	}

	emails := make([]string, 0, len(admins))
	for _, a := range admins {
		if a.Email != "" {
			emails = append(emails, a.Email)
		}
	}
	if len(emails) == 0 {
		return 0
	}

	subject, html, err := RenderDigest(res, week, scheduleLink(s.appBaseURL, res.StoreID, week.Start))
	if err != nil {
		logger.LogError("generation", "emailAdmins", "render digest", res.StoreID, err)
		return 0
	}
	return s.notifier.EmailAll(ctx, emails, subject, html).Sent
}
