package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"storeshift_v1_202610/internal/model"
)

// GenerationRunRepository 生成批次仓储接口
type GenerationRunRepository interface {
	Create(ctx context.Context, run *model.GenerationRun) error
	GetByID(ctx context.Context, id string) (*model.GenerationRun, error)
	ListByStoreWeek(ctx context.Context, storeID, weekStart string) ([]model.GenerationRun, error)

	MarkPublished(ctx context.Context, ids []string, at time.Time) (int64, error)
	// MarkPublishedInStoreWeek 只流转属于该门店该周的批次
	MarkPublishedInStoreWeek(ctx context.Context, ids []string, storeID, weekStart string, at time.Time) (int64, error)
	ArchivePublishedInRange(ctx context.Context, from, to string) ([]string, error)
	MarkFailed(ctx context.Context, id, errMsg string) error
}

type generationRunRepo struct {
	db *gorm.DB
}

// NewGenerationRunRepository 创建生成批次仓储
func NewGenerationRunRepository(db *gorm.DB) GenerationRunRepository {
	return &generationRunRepo{db: db}
}

func (r *generationRunRepo) Create(ctx context.Context, run *model.GenerationRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *generationRunRepo) GetByID(ctx context.Context, id string) (*model.GenerationRun, error) {
	var run model.GenerationRun
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&run).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *generationRunRepo) ListByStoreWeek(ctx context.Context, storeID, weekStart string) ([]model.GenerationRun, error) {
	var runs []model.GenerationRun
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND week_start = ?", storeID, weekStart).
		Order("created_at DESC").
		Find(&runs).Error
	return runs, err
}

// MarkPublished 将待发布的批次标记为已发布，已发布/已归档的批次不受影响
func (r *generationRunRepo) MarkPublished(ctx context.Context, ids []string, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&model.GenerationRun{}).
		Where("id IN ? AND status IN ?", ids, model.PublishableRunStatuses).
		Updates(map[string]interface{}{
			"status":       model.RunStatusPublished,
			"completed_at": at,
			"updated_at":   at,
		})
	return result.RowsAffected, result.Error
}

func (r *generationRunRepo) MarkPublishedInStoreWeek(ctx context.Context, ids []string, storeID, weekStart string, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&model.GenerationRun{}).
		Where("id IN ? AND store_id = ? AND week_start = ? AND status IN ?", ids, storeID, weekStart, model.PublishableRunStatuses).
		Updates(map[string]interface{}{
			"status":       model.RunStatusPublished,
			"completed_at": at,
			"updated_at":   at,
		})
	return result.RowsAffected, result.Error
}

// ArchivePublishedInRange 归档 week_start 落在区间内的已发布批次，返回被归档的批次ID
func (r *generationRunRepo) ArchivePublishedInRange(ctx context.Context, from, to string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.GenerationRun{}).
		Where("week_start >= ? AND week_start <= ? AND status = ?", from, to, model.RunStatusPublished).
		Pluck("id", &ids).Error
	if err != nil || len(ids) == 0 {
		return nil, err
	}

	// 条件更新，并发归档时只有一方能真正流转
	var archived []string
	for _, id := range ids {
		result := r.db.WithContext(ctx).
			Model(&model.GenerationRun{}).
			Where("id = ? AND status = ?", id, model.RunStatusPublished).
			Updates(map[string]interface{}{
				"status":     model.RunStatusArchived,
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return archived, result.Error
		}
		if result.RowsAffected > 0 {
			archived = append(archived, id)
		}
	}
	return archived, nil
}

// MarkFailed 生成失败的待定批次，其他状态不受影响
func (r *generationRunRepo) MarkFailed(ctx context.Context, id, errMsg string) error {
	return r.db.WithContext(ctx).
		Model(&model.GenerationRun{}).
		Where("id = ? AND status = ?", id, model.RunStatusPending).
		Updates(map[string]interface{}{
			"status":        model.RunStatusFailed,
			"error_message": errMsg,
		}).Error
}
