package model

import "github.com/shopspring/decimal"

// 系统角色
// 注意：角色由外部认证体系维护，这里只读
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RoleEmployee   = "employee"
)

// DefaultContractHours 未设置合同工时时的默认每周工时
var DefaultContractHours = decimal.NewFromInt(40)

// Employee 员工目录（只读）
type Employee struct {
	BaseModel
	StoreID             string              `gorm:"size:36;index;comment:所属门店" json:"store_id"`
	FullName            string              `gorm:"size:128;not null" json:"full_name"`
	Email               string              `gorm:"size:255;index" json:"email"`
	Role                string              `gorm:"size:20;not null;index" json:"role"`
	WeeklyContractHours decimal.NullDecimal `gorm:"type:decimal(5,2);comment:每周合同工时" json:"weekly_contract_hours"`
	IsActive            bool                `gorm:"not null" json:"is_active"`
}

func (Employee) TableName() string {
	return "employees"
}

// IsAdminRole 是否具有排班发布权限
func IsAdminRole(role string) bool {
	return role == RoleAdmin || role == RoleSuperAdmin
}
