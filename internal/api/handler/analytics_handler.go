package handler

import (
	"github.com/gin-gonic/gin"

	"gso-office/backend/internal/service"
	"gso-office/backend/pkg/response"
)

// AnalyticsHandler 统计看板 HTTP 处理器
type AnalyticsHandler struct {
	analyticsSvc service.AnalyticsService
}

// NewAnalyticsHandler 创建 AnalyticsHandler
func NewAnalyticsHandler(analyticsSvc service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsSvc: analyticsSvc}
}

// Get 申请与库存计数
// GET /api/v1/analytics
func (h *AnalyticsHandler) Get(c *gin.Context) {
	stats, err := h.analyticsSvc.Get(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, stats)
}
