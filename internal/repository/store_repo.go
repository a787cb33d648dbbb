package repository

import (
	"context"

	"gorm.io/gorm"

	"storeshift_v1_202610/internal/model"
)

// StoreRepository 门店仓储接口
type StoreRepository interface {
	Create(ctx context.Context, store *model.Store) error
	GetByID(ctx context.Context, id string) (*model.Store, error)
	ListGenerationEnabled(ctx context.Context) ([]model.Store, error)
}

type storeRepo struct {
	db *gorm.DB
}

// NewStoreRepository 创建门店仓储
func NewStoreRepository(db *gorm.DB) StoreRepository {
	return &storeRepo{db: db}
}

func (r *storeRepo) Create(ctx context.Context, store *model.Store) error {
	return r.db.WithContext(ctx).Create(store).Error
}

func (r *storeRepo) GetByID(ctx context.Context, id string) (*model.Store, error) {
	var store model.Store
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// ListGenerationEnabled 启用中且开启自动排班的门店
func (r *storeRepo) ListGenerationEnabled(ctx context.Context) ([]model.Store, error) {
	var stores []model.Store
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND generation_enabled = ?", true, true).
		Order("name ASC").
		Find(&stores).Error
	return stores, err
}
