package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"gso-office/backend/internal/dto"
	"gso-office/backend/internal/service"
	"gso-office/backend/pkg/response"
)

// CatalogHandler 单元 / 部门 / 人员 / 绩效指标 HTTP 处理器
type CatalogHandler struct {
	catalogSvc service.CatalogService
}

// NewCatalogHandler 创建 CatalogHandler
func NewCatalogHandler(catalogSvc service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogSvc: catalogSvc}
}

// ListUnits 获取服务单元列表
// GET /api/v1/units
func (h *CatalogHandler) ListUnits(c *gin.Context) {
	units, err := h.catalogSvc.ListUnits(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": units})
}

// ListDepartments 获取申请部门列表
// GET /api/v1/departments
func (h *CatalogHandler) ListDepartments(c *gin.Context) {
	depts, err := h.catalogSvc.ListDepartments(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": depts})
}

// ListPersonnel 获取单元人员（附带忙碌标记）
// GET /api/v1/units/:id/personnel
func (h *CatalogHandler) ListPersonnel(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "单元ID不能为空")
		return
	}

	people, err := h.catalogSvc.ListPersonnel(c.Request.Context(), id)
	if err != nil {
		h.handleCatalogError(c, err)
		return
	}

	response.OK(c, gin.H{"list": people})
}

// ListIndicators 获取单元的绩效指标
// GET /api/v1/indicators?unit_id=xxx&active_only=true
func (h *CatalogHandler) ListIndicators(c *gin.Context) {
	var req dto.IndicatorListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, err := h.catalogSvc.ListIndicators(c.Request.Context(), &req)
	if err != nil {
		h.handleCatalogError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// CreateIndicator 创建绩效指标
// POST /api/v1/indicators
func (h *CatalogHandler) CreateIndicator(c *gin.Context) {
	var req dto.CreateIndicatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	ind, err := h.catalogSvc.CreateIndicator(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleCatalogError(c, err)
		return
	}

	response.Created(c, ind)
}

// UpdateIndicator 更新绩效指标（编码 / 描述 / 启用状态）
// PUT /api/v1/indicators/:id
func (h *CatalogHandler) UpdateIndicator(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "指标ID不能为空")
		return
	}

	var req dto.UpdateIndicatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	ind, err := h.catalogSvc.UpdateIndicator(c.Request.Context(), caller, id, &req)
	if err != nil {
		h.handleCatalogError(c, err)
		return
	}

	response.OK(c, ind)
}

// handleCatalogError 统一处理目录模块业务错误
func (h *CatalogHandler) handleCatalogError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnitNotFound):
		response.NotFound(c, 12001, "服务单元不存在")
	case errors.Is(err, service.ErrIndicatorNotFound):
		response.NotFound(c, 12002, "绩效指标不存在")
	case errors.Is(err, service.ErrIndicatorCodeExists):
		response.BadRequest(c, 12003, "该单元下指标编码已存在")
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(c, 10003, "无权限访问")
	default:
		response.InternalError(c)
	}
}
