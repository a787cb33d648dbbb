package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storeshift_v1_202610/internal/logger"
	"storeshift_v1_202610/internal/middleware"
	"storeshift_v1_202610/internal/service"
)

// actorFrom 从认证中间件写入的上下文构造调用者
func actorFrom(c *gin.Context) service.Actor {
	return service.Actor{
		UserID:   middleware.GetUserID(c),
		UserName: middleware.GetUsername(c),
		Role:     middleware.GetUserRole(c),
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"code":    400,
		"message": "参数错误: " + err.Error(),
	})
}

// respond 统一响应，NoOp 按 200 返回零计数结果
func respond(c *gin.Context, data any, err error) {
	if err == nil || errors.Is(err, service.ErrNoOp) {
		message := "success"
		if err != nil {
			message = "noop"
		}
		c.JSON(http.StatusOK, gin.H{
			"code":    0,
			"message": message,
			"data":    data,
		})
		return
	}

	status := service.HTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.LogError("controller", c.FullPath(), "internal error", nil, err)
		message = "服务内部错误"
	}
	c.JSON(status, gin.H{
		"code":    status,
		"message": message,
	})
}
