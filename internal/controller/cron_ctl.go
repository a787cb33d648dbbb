package controller

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"storeshift_v1_202610/internal/api/dto"
	"storeshift_v1_202610/internal/service"
	"storeshift_v1_202610/pkg/utils"
)

// CronController 外部定时任务入口，由 X-Cron-Secret 保护
type CronController struct {
	archival   *service.ArchivalService
	generation *service.GenerationService
	loc        *time.Location
	now        func() time.Time
}

// NewCronController 创建定时任务控制器
func NewCronController(archival *service.ArchivalService, generation *service.GenerationService, loc *time.Location) *CronController {
	if loc == nil {
		loc = time.UTC
	}
	return &CronController{archival: archival, generation: generation, loc: loc, now: time.Now}
}

// resolveDay 解析可选日期参数，为空时取当前时间
func (ctrl *CronController) resolveDay(day string) (time.Time, error) {
	if day == "" {
		return ctrl.now().In(ctrl.loc), nil
	}
	return utils.ParseDate(day)
}

// bindOptional 请求体可以为空
func bindOptional(c *gin.Context, obj any) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	return c.ShouldBindJSON(obj)
}

// ArchiveWeek 归档上一周已发布班次并结算工时余额
// @Summary 周归档
// @Tags Cron
// @Param X-Cron-Secret header string true "定时任务密钥"
// @Success 200 {object} dto.ArchiveResult
// @Router /api/cron/archive-week [post]
func (ctrl *CronController) ArchiveWeek(c *gin.Context) {
	var req dto.ArchiveWeekRequest
	if err := bindOptional(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	asOf, err := ctrl.resolveDay(req.AsOf)
	if err != nil {
		badRequest(c, fmt.Errorf("as_of: %w", err))
		return
	}

	result, err := ctrl.archival.ArchiveWeek(c.Request.Context(), asOf)
	respond(c, result, err)
}

// WeeklyGeneration 为全部启用门店生成下周排班
// @Summary 周生成
// @Tags Cron
// @Param X-Cron-Secret header string true "定时任务密钥"
// @Success 200 {object} dto.GenerationSummary
// @Router /api/cron/weekly-generation [post]
func (ctrl *CronController) WeeklyGeneration(c *gin.Context) {
	var req dto.WeeklyGenerationRequest
	if err := bindOptional(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	now, err := ctrl.resolveDay(req.Now)
	if err != nil {
		badRequest(c, fmt.Errorf("now: %w", err))
		return
	}

	result, err := ctrl.generation.RunWeeklyGeneration(c.Request.Context(), now)
	respond(c, result, err)
}
