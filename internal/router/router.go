package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"storeshift_v1_202610/internal/api/dto"
	"storeshift_v1_202610/internal/controller"
	"storeshift_v1_202610/internal/middleware"
)

// generationCooldown 手动触发每周生成的最小间隔
const generationCooldown = 5 * time.Minute

// Controllers 路由依赖的控制器
type Controllers struct {
	Schedule     *controller.ScheduleController
	Cron         *controller.CronController
	Notification *controller.NotificationController
}

// Deps 中间件依赖
type Deps struct {
	Roles      middleware.RoleResolver
	CronSecret string
	Limiter    *middleware.TriggerLimiter
}

// RegisterValidators 把自定义校验规则注册到 gin 的 binding 引擎
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return dto.RegisterValidators(v)
}

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine, ctrls Controllers, deps Deps) {
	if deps.Limiter == nil {
		deps.Limiter = middleware.NewTriggerLimiter()
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"code": 0, "message": "ok"})
	})

	api := r.Group("/api")
	{
		// 需要登录的接口，角色以员工目录为准
		authed := api.Group("", middleware.JWTAuth(), middleware.ResolveRole(deps.Roles), middleware.AuditContext())

		schedule := authed.Group("/schedule")
		{
			// POST /api/schedule/runs/:run_id/publish
			schedule.POST("/runs/:run_id/publish", ctrls.Schedule.Publish)
			schedule.GET("/runs/:run_id", ctrls.Schedule.GetRun)
			// POST /api/schedule/stores/:store_id/approve-patch
			schedule.POST("/stores/:store_id/approve-patch", ctrls.Schedule.ApprovePatch)
		}
		authed.GET("/balances/stores/:store_id", ctrls.Schedule.ListStoreBalances)
		authed.GET("/notifications", ctrls.Notification.List)

		// 外部 cron 调用
		cron := api.Group("/cron", middleware.CronSecret(deps.CronSecret))
		{
			cron.POST("/archive-week", ctrls.Cron.ArchiveWeek)
			cron.POST("/weekly-generation",
				middleware.TriggerCooldown(deps.Limiter, "weekly-generation", generationCooldown),
				ctrls.Cron.WeeklyGeneration)
		}
	}
}
