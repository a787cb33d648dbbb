package controller

import (
	"github.com/gin-gonic/gin"

	"storeshift_v1_202610/internal/api/dto"
	"storeshift_v1_202610/internal/service"
)

type NotificationController struct {
	query *service.ScheduleQueryService
}

func NewNotificationController(query *service.ScheduleQueryService) *NotificationController {
	return &NotificationController{query: query}
}

// List 当前用户的站内通知
func (ctrl *NotificationController) List(c *gin.Context) {
	var req dto.ListNotificationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}

	list, err := ctrl.query.ListNotifications(c.Request.Context(), actorFrom(c), req.UnreadOnly, req.Limit)
	respond(c, gin.H{"list": list, "total": len(list)}, err)
}
