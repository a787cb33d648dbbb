package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// EmployeeBalance 员工在门店的累计工时偏差（加班为正，欠班为负）
// 只有周归档任务会修改，每个 (员工, 门店, 周) 仅计入一次有界增量
type EmployeeBalance struct {
	UserID         string          `gorm:"primaryKey;size:36" json:"user_id"`
	StoreID        string          `gorm:"primaryKey;size:36" json:"store_id"`
	CurrentBalance decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"current_balance"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (EmployeeBalance) TableName() string {
	return "employee_balances"
}

// BalanceSettlement 每周结算流水，保证同一周只计入一次增量
type BalanceSettlement struct {
	BaseModel
	UserID        string          `gorm:"size:36;not null;uniqueIndex:idx_settlement_week" json:"user_id"`
	StoreID       string          `gorm:"size:36;not null;uniqueIndex:idx_settlement_week" json:"store_id"`
	WeekStart     string          `gorm:"size:10;not null;uniqueIndex:idx_settlement_week" json:"week_start"`
	WorkedHours   decimal.Decimal `gorm:"type:decimal(6,2);not null;comment:实际工时" json:"worked_hours"`
	ContractHours decimal.Decimal `gorm:"type:decimal(6,2);not null;comment:合同工时" json:"contract_hours"`
	Delta         decimal.Decimal `gorm:"type:decimal(6,2);not null;comment:本周计入增量" json:"delta"`
}

func (BalanceSettlement) TableName() string {
	return "balance_settlements"
}
