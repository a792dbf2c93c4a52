package dto

// ── 库存模块 DTO ──

// InventoryListRequest 库存列表查询参数
type InventoryListRequest struct {
	UnitID string `form:"unit_id" binding:"required,uuid"`
	Query  string `form:"q"`
}

// CreateInventoryRequest 新增物料
type CreateInventoryRequest struct {
	UnitID            string `json:"unit_id"             binding:"required,uuid"`
	Name              string `json:"name"                binding:"required,max=255"`
	Description       string `json:"description"         binding:"omitempty,max=2000"`
	Quantity          int    `json:"quantity"            binding:"min=0"`
	UnitOfMeasurement string `json:"unit_of_measurement" binding:"omitempty,max=50"`
	Category          string `json:"category"            binding:"omitempty,max=100"`
}

// UpdateInventoryRequest 更新物料
type UpdateInventoryRequest struct {
	Name              *string `json:"name"                binding:"omitempty,min=1,max=255"`
	Description       *string `json:"description"         binding:"omitempty,max=2000"`
	Quantity          *int    `json:"quantity"            binding:"omitempty,min=0"`
	UnitOfMeasurement *string `json:"unit_of_measurement" binding:"omitempty,max=50"`
	Category          *string `json:"category"            binding:"omitempty,max=100"`
}

// InventoryItemResponse 物料响应
type InventoryItemResponse struct {
	ID                string `json:"id"`
	UnitID            string `json:"unit_id"`
	Name              string `json:"name"`
	Description       string `json:"description"`
	Quantity          int    `json:"quantity"`
	UnitOfMeasurement string `json:"unit_of_measurement"`
	Category          string `json:"category"`
	IsActive          bool   `json:"is_active"`
}
