package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"storeshift_v1_202610/internal/model"
)

// ==================== 仓储接口 ====================

// ShiftRepository 班次仓储接口
// 所有状态流转都是带状态条件的单条 UPDATE，返回实际影响行数
type ShiftRepository interface {
	CreateBatch(ctx context.Context, shifts []model.Shift) error
	GetByID(ctx context.Context, id string) (*model.Shift, error)
	ListByRun(ctx context.Context, runID string) ([]model.Shift, error)
	ListByBatch(ctx context.Context, batch string) ([]model.Shift, error)
	ListByStoreRange(ctx context.Context, storeID, from, to string) ([]model.Shift, error)
	CountByRun(ctx context.Context, runID string) (map[string]int64, error)
	CountDraftByStoreRange(ctx context.Context, storeID, from, to string) (int64, error)

	// 条件流转
	PublishByRun(ctx context.Context, runID, batch string) (int64, error)
	PublishByStoreRange(ctx context.Context, storeID, from, to, batch string) (int64, error)
	ListPublishedGroups(ctx context.Context, from, to string) ([]ShiftGroup, error)
	ArchiveGroup(ctx context.Context, group ShiftGroup, from, to, batch string) (int64, error)
}

// ShiftGroup 归档结算的分组键
type ShiftGroup struct {
	UserID  string `json:"user_id"`
	StoreID string `json:"store_id"`
}

// ==================== 仓储实现 ====================

type shiftRepo struct {
	db *gorm.DB
}

// NewShiftRepository 创建班次仓储
func NewShiftRepository(db *gorm.DB) ShiftRepository {
	return &shiftRepo{db: db}
}

func (r *shiftRepo) CreateBatch(ctx context.Context, shifts []model.Shift) error {
	if len(shifts) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&shifts).Error
}

func (r *shiftRepo) GetByID(ctx context.Context, id string) (*model.Shift, error) {
	var shift model.Shift
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&shift).Error; err != nil {
		return nil, err
	}
	return &shift, nil
}

func (r *shiftRepo) ListByRun(ctx context.Context, runID string) ([]model.Shift, error) {
	var shifts []model.Shift
	err := r.db.WithContext(ctx).
		Where("generation_run_id = ?", runID).
		Order("date ASC, user_id ASC").
		Find(&shifts).Error
	return shifts, err
}

// ListByBatch 回读某次条件更新实际流转的行
func (r *shiftRepo) ListByBatch(ctx context.Context, batch string) ([]model.Shift, error) {
	var shifts []model.Shift
	err := r.db.WithContext(ctx).
		Where("transition_batch = ?", batch).
		Order("user_id ASC, date ASC").
		Find(&shifts).Error
	return shifts, err
}

func (r *shiftRepo) ListByStoreRange(ctx context.Context, storeID, from, to string) ([]model.Shift, error) {
	var shifts []model.Shift
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND date >= ? AND date <= ?", storeID, from, to).
		Order("date ASC, user_id ASC").
		Find(&shifts).Error
	return shifts, err
}

func (r *shiftRepo) CountByRun(ctx context.Context, runID string) (map[string]int64, error) {
	var rows []struct {
		Status string
		Total  int64
	}
	err := r.db.WithContext(ctx).Model(&model.Shift{}).
		Select("status, COUNT(*) as total").
		Where("generation_run_id = ?", runID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

func (r *shiftRepo) CountDraftByStoreRange(ctx context.Context, storeID, from, to string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Shift{}).
		Where("store_id = ? AND date >= ? AND date <= ? AND status = ?", storeID, from, to, model.ShiftStatusDraft).
		Count(&count).Error
	return count, err
}

// PublishByRun 发布某个生成批次下的全部草稿
func (r *shiftRepo) PublishByRun(ctx context.Context, runID, batch string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Shift{}).
		Where("generation_run_id = ? AND status = ?", runID, model.ShiftStatusDraft).
		Updates(map[string]interface{}{
			"status":           model.ShiftStatusPublished,
			"transition_batch": batch,
			"updated_at":       time.Now(),
		})
	return result.RowsAffected, result.Error
}

// PublishByStoreRange 发布门店某日期区间内全部草稿（不限生成批次）
func (r *shiftRepo) PublishByStoreRange(ctx context.Context, storeID, from, to, batch string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Shift{}).
		Where("store_id = ? AND date >= ? AND date <= ? AND status = ?", storeID, from, to, model.ShiftStatusDraft).
		Updates(map[string]interface{}{
			"status":           model.ShiftStatusPublished,
			"transition_batch": batch,
			"updated_at":       time.Now(),
		})
	return result.RowsAffected, result.Error
}

// ListPublishedGroups 区间内仍为已发布状态的 (员工, 门店) 组合
func (r *shiftRepo) ListPublishedGroups(ctx context.Context, from, to string) ([]ShiftGroup, error) {
	var groups []ShiftGroup
	err := r.db.WithContext(ctx).Model(&model.Shift{}).
		Distinct("user_id", "store_id").
		Where("date >= ? AND date <= ? AND status = ?", from, to, model.ShiftStatusPublished).
		Order("store_id ASC, user_id ASC").
		Scan(&groups).Error
	return groups, err
}

// ArchiveGroup 归档某员工在某门店区间内的已发布班次
func (r *shiftRepo) ArchiveGroup(ctx context.Context, group ShiftGroup, from, to, batch string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Shift{}).
		Where("user_id = ? AND store_id = ? AND date >= ? AND date <= ? AND status = ?",
			group.UserID, group.StoreID, from, to, model.ShiftStatusPublished).
		Updates(map[string]interface{}{
			"status":           model.ShiftStatusArchived,
			"transition_batch": batch,
			"updated_at":       time.Now(),
		})
	return result.RowsAffected, result.Error
}
