package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"gso-office/backend/internal/dto"
	"gso-office/backend/internal/service"
	"gso-office/backend/pkg/response"
)

// RollupHandler 月度汇总（IPMT）HTTP 处理器
type RollupHandler struct {
	rollupSvc service.RollupService
	exportSvc service.ExportService
}

// NewRollupHandler 创建 RollupHandler
func NewRollupHandler(rollupSvc service.RollupService, exportSvc service.ExportService) *RollupHandler {
	return &RollupHandler{rollupSvc: rollupSvc, exportSvc: exportSvc}
}

// Preview 汇总预览（不落库）
// GET /api/v1/rollups/preview?period=2025-09&unit=Maintenance&personnel=jdelacruz
func (h *RollupHandler) Preview(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var q dto.RollupQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	preview, err := h.rollupSvc.Aggregate(c.Request.Context(), caller, &q)
	if err != nil {
		h.handleRollupError(c, err)
		return
	}

	response.OK(c, preview)
}

// Save 保存汇总行（按 人员/单元/月份/指标 幂等写入）
// POST /api/v1/rollups
func (h *RollupHandler) Save(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.SaveRollupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.rollupSvc.Upsert(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleRollupError(c, err)
		return
	}

	response.OK(c, result)
}

// ListEntries 已保存的汇总行
// GET /api/v1/rollups?period=2025-09&unit=Maintenance
func (h *RollupHandler) ListEntries(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var q dto.RollupEntryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, err := h.rollupSvc.ListEntries(c.Request.Context(), caller, &q)
	if err != nil {
		h.handleRollupError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// Export 导出 IPMT Excel
// POST /api/v1/rollups/export
func (h *RollupHandler) Export(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.ExportRollupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	buf, filename, err := h.exportSvc.ExportRollup(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleRollupError(c, err)
		return
	}

	response.XLSX(c, filename, buf)
}

func (h *RollupHandler) handleRollupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidPeriod):
		response.BadRequest(c, 16001, "月份格式无效，应为 YYYY-MM")
	case errors.Is(err, service.ErrUnitNotFound):
		response.NotFound(c, 12001, "服务单元不存在")
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(c, 10003, "无权操作该服务单元")
	default:
		response.InternalError(c)
	}
}
