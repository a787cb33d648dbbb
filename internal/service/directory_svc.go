package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"storeshift_v1_202610/internal/logger"
	"storeshift_v1_202610/internal/model"
	"storeshift_v1_202610/internal/repository"
	"storeshift_v1_202610/pkg/cache"
)

const (
	employeeCacheKeyPrefix = "employee:profile:"
	employeeCacheTTL       = 10 * time.Minute
)

// DirectoryService 员工目录查询，可选 Redis 缓存
type DirectoryService struct {
	employees repository.EmployeeRepository
	cache     *cache.Store
}

// NewDirectoryService 创建目录服务，store 可为 nil
func NewDirectoryService(employees repository.EmployeeRepository, store *cache.Store) *DirectoryService {
	return &DirectoryService{employees: employees, cache: store}
}

func employeeCacheKey(id string) string {
	return employeeCacheKeyPrefix + id
}

// Get 单个员工，不存在返回 nil, nil
func (s *DirectoryService) Get(ctx context.Context, id string) (*model.Employee, error) {
	found, err := s.Lookup(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	return found[id], nil
}

// Lookup 批量查询员工，缺失的 id 不出现在结果中
func (s *DirectoryService) Lookup(ctx context.Context, ids []string) (map[string]*model.Employee, error) {
	result := make(map[string]*model.Employee, len(ids))
	var missing []string

	for _, id := range ids {
		if _, seen := result[id]; seen {
			continue
		}
		var e model.Employee
		hit, err := s.cache.GetObject(ctx, employeeCacheKey(id), &e)
		if err != nil {
			// 缓存故障不影响主流程
			logger.GetLogger().Warnf("[Directory] 读取缓存失败 %s: %v", id, err)
		}
		if hit {
			result[id] = &e
			continue
		}
		missing = append(missing, id)
	}

	if len(missing) == 0 {
		return result, nil
	}

	employees, err := s.employees.ListByIDs(ctx, missing)
	if err != nil {
		return nil, fmt.Errorf("查询员工失败: %w", err)
	}
	for i := range employees {
		e := &employees[i]
		result[e.ID] = e
		if err := s.cache.SetObject(ctx, employeeCacheKey(e.ID), e, employeeCacheTTL); err != nil {
			logger.GetLogger().Warnf("[Directory] 写入缓存失败 %s: %v", e.ID, err)
		}
	}
	return result, nil
}

// ContractHours 员工每周合同工时，未知员工或未设置按 40
func (s *DirectoryService) ContractHours(ctx context.Context, userID string) (decimal.Decimal, error) {
	e, err := s.Get(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return ContractHoursOf(e), nil
}

// StoreAdmins 门店管理员及超级管理员
func (s *DirectoryService) StoreAdmins(ctx context.Context, storeID string) ([]model.Employee, error) {
	return s.employees.ListStoreAdmins(ctx, storeID)
}

// ==================== 角色解析 ====================

// ResolveActor 按用户 ID 读取角色，未知或停用的用户视为未认证
// 权限判断直接读库不走缓存，降级或停用立即生效，同时刷新缓存中的资料
func (s *DirectoryService) ResolveActor(ctx context.Context, userID string) (Actor, error) {
	if userID == "" {
		return Actor{}, ErrUnauthorized
	}
	e, err := s.employees.GetByID(ctx, userID)
	if err != nil {
		return Actor{}, fmt.Errorf("查询员工失败: %w", err)
	}
	if e == nil || !e.IsActive {
		if err := s.cache.Delete(ctx, employeeCacheKey(userID)); err != nil {
			logger.GetLogger().Warnf("[Directory] 清理缓存失败 %s: %v", userID, err)
		}
		return Actor{}, ErrUnauthorized
	}
	if err := s.cache.SetObject(ctx, employeeCacheKey(e.ID), e, employeeCacheTTL); err != nil {
		logger.GetLogger().Warnf("[Directory] 写入缓存失败 %s: %v", e.ID, err)
	}
	return Actor{UserID: e.ID, UserName: e.FullName, Role: e.Role}, nil
}

// ResolveRole 供认证中间件使用
func (s *DirectoryService) ResolveRole(ctx context.Context, userID string) (string, string, error) {
	actor, err := s.ResolveActor(ctx, userID)
	if err != nil {
		return "", "", err
	}
	return actor.Role, actor.UserName, nil
}
