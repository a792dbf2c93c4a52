package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"gso-office/backend/internal/dto"
	"gso-office/backend/internal/service"
	"gso-office/backend/pkg/response"
)

// InventoryHandler 库存模块 HTTP 处理器
type InventoryHandler struct {
	inventorySvc service.InventoryService
}

// NewInventoryHandler 创建 InventoryHandler
func NewInventoryHandler(inventorySvc service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventorySvc: inventorySvc}
}

// ListItems 获取单元物料列表
// GET /api/v1/inventory?unit_id=xxx&q=
func (h *InventoryHandler) ListItems(c *gin.Context) {
	var req dto.InventoryListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	items, err := h.inventorySvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleInventoryError(c, err)
		return
	}

	response.OK(c, gin.H{"list": items})
}

// CreateItem 新增物料
// POST /api/v1/inventory
func (h *InventoryHandler) CreateItem(c *gin.Context) {
	var req dto.CreateInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	item, err := h.inventorySvc.Create(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleInventoryError(c, err)
		return
	}

	response.Created(c, item)
}

// UpdateItem 更新物料
// PUT /api/v1/inventory/:id
func (h *InventoryHandler) UpdateItem(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "物料ID不能为空")
		return
	}

	var req dto.UpdateInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	item, err := h.inventorySvc.Update(c.Request.Context(), caller, id, &req)
	if err != nil {
		h.handleInventoryError(c, err)
		return
	}

	response.OK(c, item)
}

// DeleteItem 停用物料（软删除）
// DELETE /api/v1/inventory/:id
func (h *InventoryHandler) DeleteItem(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "物料ID不能为空")
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.inventorySvc.Deactivate(c.Request.Context(), caller, id); err != nil {
		h.handleInventoryError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleInventoryError 统一处理库存模块业务错误
func (h *InventoryHandler) handleInventoryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrItemNotFound):
		response.NotFound(c, 13001, "物料不存在")
	case errors.Is(err, service.ErrUnitNotFound):
		response.NotFound(c, 13002, "服务单元不存在")
	case errors.Is(err, service.ErrNegativeQuantity):
		response.BadRequest(c, 13003, "库存数量不能为负数")
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(c, 10003, "无权限访问")
	default:
		response.InternalError(c)
	}
}
