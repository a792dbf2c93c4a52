package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"gso-office/backend/internal/dto"
	"gso-office/backend/internal/service"
	"gso-office/backend/pkg/response"
)

// AccomplishmentHandler 工作记录（WAR）HTTP 处理器
type AccomplishmentHandler struct {
	accSvc service.AccomplishmentService
}

// NewAccomplishmentHandler 创建 AccomplishmentHandler
func NewAccomplishmentHandler(accSvc service.AccomplishmentService) *AccomplishmentHandler {
	return &AccomplishmentHandler{accSvc: accSvc}
}

// ListReports 已完成申请与工作记录的统一列表
// GET /api/v1/accomplishments?q=&unit=
func (h *AccomplishmentHandler) ListReports(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.ReportListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, err := h.accSvc.ListReports(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleAccomplishmentError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// GetDescription 查询描述；仍在生成时 pending=true
// GET /api/v1/accomplishments/:id/description
func (h *AccomplishmentHandler) GetDescription(c *gin.Context) {
	desc, err := h.accSvc.GetDescription(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleAccomplishmentError(c, err)
		return
	}

	response.OK(c, desc)
}

// UpdateIndicator 修改工作记录的绩效指标
// PUT /api/v1/accomplishments/:id/indicator
func (h *AccomplishmentHandler) UpdateIndicator(c *gin.Context) {
	var req dto.UpdateRecordIndicatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	report, err := h.accSvc.UpdateIndicator(c.Request.Context(), caller, c.Param("id"), req.IndicatorID)
	if err != nil {
		h.handleAccomplishmentError(c, err)
		return
	}

	response.OK(c, report)
}

// UpdateDescription 手工修改描述
// PUT /api/v1/accomplishments/:id/description
func (h *AccomplishmentHandler) UpdateDescription(c *gin.Context) {
	var req dto.UpdateDescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	report, err := h.accSvc.UpdateDescription(c.Request.Context(), caller, c.Param("id"), req.Description)
	if err != nil {
		h.handleAccomplishmentError(c, err)
		return
	}

	response.OK(c, report)
}

func (h *AccomplishmentHandler) handleAccomplishmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRecordNotFound):
		response.NotFound(c, 15001, "工作记录不存在")
	case errors.Is(err, service.ErrEmptyDescription):
		response.BadRequest(c, 15002, "描述不能为空")
	case errors.Is(err, service.ErrIndicatorNotFound):
		response.NotFound(c, 12002, "绩效指标不存在")
	case errors.Is(err, service.ErrIndicatorUnitMismatch):
		response.BadRequest(c, 12004, "绩效指标不属于该单元")
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(c, 10003, "无权限访问")
	default:
		response.InternalError(c)
	}
}
