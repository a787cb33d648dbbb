package repository

import (
	"context"

	"gorm.io/gorm"
)

// ==================== 事务支持 ====================

// ScheduleUnitOfWork 排班工作单元（事务）
type ScheduleUnitOfWork struct {
	db       *gorm.DB
	Shifts   ShiftRepository
	Runs     GenerationRunRepository
	Balances BalanceRepository
	Audits   AuditLogRepository
}

// NewScheduleUnitOfWork 创建工作单元
func NewScheduleUnitOfWork(db *gorm.DB) *ScheduleUnitOfWork {
	return &ScheduleUnitOfWork{
		db:       db,
		Shifts:   NewShiftRepository(db),
		Runs:     NewGenerationRunRepository(db),
		Balances: NewBalanceRepository(db),
		Audits:   NewAuditLogRepository(db),
	}
}

// Transaction 执行事务，fn 内只能使用 txUow 上的仓储
func (u *ScheduleUnitOfWork) Transaction(ctx context.Context, fn func(txUow *ScheduleUnitOfWork) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txUow := &ScheduleUnitOfWork{
			db:       tx,
			Shifts:   NewShiftRepository(tx),
			Runs:     NewGenerationRunRepository(tx),
			Balances: NewBalanceRepository(tx),
			Audits:   NewAuditLogRepository(tx),
		}
		return fn(txUow)
	})
}
