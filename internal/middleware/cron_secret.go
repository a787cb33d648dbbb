package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CronSecretHeader 外部调度器携带的密钥头
const CronSecretHeader = "X-Cron-Secret"

// CronSecret 校验外部调度器密钥，未配置密钥时拒绝所有请求
func CronSecret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader(CronSecretHeader)
		if secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			abortJSON(c, http.StatusUnauthorized, "cron 密钥无效")
			return
		}
		c.Next()
	}
}
