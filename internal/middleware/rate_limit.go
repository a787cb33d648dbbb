package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// ==================== TriggerLimiter 手动触发限流器 ====================

// TriggerLimiter 防止手动重复触发重操作（如每周生成会创建新的生成批次）
type TriggerLimiter struct {
	locks sync.Map // key -> *lockEntry
}

type lockEntry struct {
	lastTime time.Time
	mu       sync.Mutex
}

// NewTriggerLimiter 创建限流器
func NewTriggerLimiter() *TriggerLimiter {
	return &TriggerLimiter{}
}

// CheckResult 检查结果
type CheckResult struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Check 检查并占用，冷却期内返回 Allowed=false
func (r *TriggerLimiter) Check(key string, interval time.Duration) CheckResult {
	actual, _ := r.locks.LoadOrStore(key, &lockEntry{})
	entry := actual.(*lockEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	elapsed := time.Since(entry.lastTime)
	if elapsed < interval {
		return CheckResult{Allowed: false, RetryAfter: interval - elapsed}
	}

	entry.lastTime = time.Now()
	return CheckResult{Allowed: true}
}

// ==================== 中间件 ====================

// TriggerCooldown 同一操作在 interval 内只允许触发一次
func TriggerCooldown(limiter *TriggerLimiter, operation string, interval time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		result := limiter.Check("trigger:"+operation, interval)
		if !result.Allowed {
			retry := int(result.RetryAfter.Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(retry))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"code":    http.StatusTooManyRequests,
				"message": fmt.Sprintf("操作过于频繁，请 %d 秒后重试", retry),
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
