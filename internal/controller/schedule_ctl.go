package controller

import (
	"github.com/gin-gonic/gin"

	"storeshift_v1_202610/internal/api/dto"
	"storeshift_v1_202610/internal/service"
)

// ScheduleController 排班发布相关接口
type ScheduleController struct {
	publication *service.PublicationService
	patches     *service.PatchApprovalService
	query       *service.ScheduleQueryService
}

// NewScheduleController 创建排班控制器
func NewScheduleController(
	publication *service.PublicationService,
	patches *service.PatchApprovalService,
	query *service.ScheduleQueryService,
) *ScheduleController {
	return &ScheduleController{publication: publication, patches: patches, query: query}
}

// Publish 发布生成批次
// @Summary 发布一次排班生成的全部草稿班次
// @Tags Schedule
// @Param run_id path string true "生成批次ID"
// @Success 200 {object} dto.PublishResult
// @Router /api/schedule/runs/{run_id}/publish [post]
func (ctrl *ScheduleController) Publish(c *gin.Context) {
	result, err := ctrl.publication.Publish(c.Request.Context(), actorFrom(c), c.Param("run_id"))
	respond(c, result, err)
}

// ApprovePatch 审批门店某周的补丁草稿
// @Summary 审批补丁
// @Tags Schedule
// @Param store_id path string true "门店ID"
// @Param body body dto.ApprovePatchRequest true "周与批次"
// @Success 200 {object} dto.PatchResult
// @Router /api/schedule/stores/{store_id}/approve-patch [post]
func (ctrl *ScheduleController) ApprovePatch(c *gin.Context) {
	var req dto.ApprovePatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := ctrl.patches.ApprovePatch(c.Request.Context(), actorFrom(c), c.Param("store_id"), req.WeekStart, req.RunIDs)
	respond(c, result, err)
}

// GetRun 批次详情
func (ctrl *ScheduleController) GetRun(c *gin.Context) {
	result, err := ctrl.query.GetRun(c.Request.Context(), actorFrom(c), c.Param("run_id"))
	respond(c, result, err)
}

// ListStoreBalances 门店工时余额
func (ctrl *ScheduleController) ListStoreBalances(c *gin.Context) {
	result, err := ctrl.query.ListBalances(c.Request.Context(), actorFrom(c), c.Param("store_id"))
	respond(c, result, err)
}
