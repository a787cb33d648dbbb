package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storeshift_v1_202610/internal/model"
)

// BalanceRepository 工时余额仓储接口
type BalanceRepository interface {
	Get(ctx context.Context, userID, storeID string) (*model.EmployeeBalance, error)
	ListByStore(ctx context.Context, storeID string) ([]model.EmployeeBalance, error)

	// ApplyDelta 在原余额上累加增量，不存在时以增量创建
	ApplyDelta(ctx context.Context, userID, storeID string, delta decimal.Decimal) error

	// 周结算流水
	GetSettlement(ctx context.Context, userID, storeID, weekStart string) (*model.BalanceSettlement, error)
	SaveSettlement(ctx context.Context, settlement *model.BalanceSettlement) error
}

type balanceRepo struct {
	db *gorm.DB
}

// NewBalanceRepository 创建余额仓储
func NewBalanceRepository(db *gorm.DB) BalanceRepository {
	return &balanceRepo{db: db}
}

// Get 不存在时返回 nil, nil
func (r *balanceRepo) Get(ctx context.Context, userID, storeID string) (*model.EmployeeBalance, error) {
	var balance model.EmployeeBalance
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND store_id = ?", userID, storeID).
		First(&balance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &balance, nil
}

func (r *balanceRepo) ListByStore(ctx context.Context, storeID string) ([]model.EmployeeBalance, error) {
	var balances []model.EmployeeBalance
	err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("user_id ASC").
		Find(&balances).Error
	return balances, err
}

// ApplyDelta 单条 upsert，累加在数据库内完成
func (r *balanceRepo) ApplyDelta(ctx context.Context, userID, storeID string, delta decimal.Decimal) error {
	now := time.Now()
	row := &model.EmployeeBalance{
		UserID:         userID,
		StoreID:        storeID,
		CurrentBalance: delta,
		UpdatedAt:      now,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "store_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"current_balance": gorm.Expr("employee_balances.current_balance + excluded.current_balance"),
				"updated_at":      now,
			}),
		}).
		Create(row).Error
}

// GetSettlement 不存在时返回 nil, nil
func (r *balanceRepo) GetSettlement(ctx context.Context, userID, storeID, weekStart string) (*model.BalanceSettlement, error) {
	var settlement model.BalanceSettlement
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND store_id = ? AND week_start = ?", userID, storeID, weekStart).
		First(&settlement).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &settlement, nil
}

func (r *balanceRepo) SaveSettlement(ctx context.Context, settlement *model.BalanceSettlement) error {
	return r.db.WithContext(ctx).Save(settlement).Error
}
