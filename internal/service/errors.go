package service

import (
	"errors"
	"net/http"

	"storeshift_v1_202610/internal/model"
)

// ==================== 错误分类 ====================

var (
	// ErrValidation 入参格式错误
	ErrValidation = errors.New("validation failed")
	// ErrUnauthorized 未识别调用者
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden 角色不足
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound 没有可操作的对象
	ErrNotFound = errors.New("not found")
	// ErrNoOp 条件更新命中 0 行，调用方按成功处理
	ErrNoOp = errors.New("nothing to transition")
)

// HTTPStatus 错误到 HTTP 状态码的映射
func HTTPStatus(err error) int {
	switch {
	case err == nil, errors.Is(err, ErrNoOp):
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// ==================== 调用者 ====================

// Actor 发起操作的用户，由认证层解析后显式传入
type Actor struct {
	UserID   string
	UserName string
	Role     string
}

// SystemActor 定时任务使用的系统身份
func SystemActor() Actor {
	return Actor{UserID: model.SystemActorID, UserName: model.SystemActorName, Role: model.RoleSuperAdmin}
}

// requireAdmin 校验发布权限，在查库之前调用，避免暴露资源是否存在
func requireAdmin(actor Actor) error {
	if actor.UserID == "" {
		return ErrUnauthorized
	}
	if !model.IsAdminRole(actor.Role) {
		return ErrForbidden
	}
	return nil
}
