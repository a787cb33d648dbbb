package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"storeshift_v1_202610/internal/model"
)

// EmployeeRepository 员工目录仓储接口（只读为主）
type EmployeeRepository interface {
	Create(ctx context.Context, employee *model.Employee) error
	GetByID(ctx context.Context, id string) (*model.Employee, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.Employee, error)
	ListStoreAdmins(ctx context.Context, storeID string) ([]model.Employee, error)
}

type employeeRepo struct {
	db *gorm.DB
}

// NewEmployeeRepository 创建员工仓储
func NewEmployeeRepository(db *gorm.DB) EmployeeRepository {
	return &employeeRepo{db: db}
}

func (r *employeeRepo) Create(ctx context.Context, employee *model.Employee) error {
	return r.db.WithContext(ctx).Create(employee).Error
}

// GetByID 不存在时返回 nil, nil
func (r *employeeRepo) GetByID(ctx context.Context, id string) (*model.Employee, error) {
	var employee model.Employee
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&employee).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *employeeRepo) ListByIDs(ctx context.Context, ids []string) ([]model.Employee, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var employees []model.Employee
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&employees).Error
	return employees, err
}

// ListStoreAdmins 门店管理员 + 全部超级管理员
func (r *employeeRepo) ListStoreAdmins(ctx context.Context, storeID string) ([]model.Employee, error) {
	var employees []model.Employee
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where(r.db.Where("role = ? AND store_id = ?", model.RoleAdmin, storeID).
			Or("role = ?", model.RoleSuperAdmin)).
		Order("full_name ASC").
		Find(&employees).Error
	return employees, err
}
