package dto

import "time"

// ── 工作记录模块 DTO ──

// ReportListRequest 工作记录列表查询参数
type ReportListRequest struct {
	Query string `form:"q"`
	Unit  string `form:"unit"` // 单元名称
}

// NormalizedReport 服务申请与工作记录的统一投影
type NormalizedReport struct {
	ID                 string    `json:"id"`
	Kind               string    `json:"kind"`   // service_request | accomplishment
	Source             string    `json:"source"` // Live | Migrated
	RequestingOffice   string    `json:"requesting_office"`
	ActivityName       string    `json:"activity_name"`
	Description        string    `json:"description"`
	DescriptionPending bool      `json:"description_pending"`
	Unit               string    `json:"unit"`
	Date               time.Time `json:"date"`
	Personnel          []string  `json:"personnel"`
	Status             string    `json:"status"`
	Indicator          string    `json:"indicator"`
	TotalCost          string    `json:"total_cost,omitempty"`
}

// UpdateRecordIndicatorRequest 修改工作记录的绩效指标
type UpdateRecordIndicatorRequest struct {
	IndicatorID string `json:"indicator_id" binding:"required,uuid"`
}

// UpdateDescriptionRequest 修改工作记录描述
type UpdateDescriptionRequest struct {
	Description string `json:"description" binding:"required,max=5000"`
}

// DescriptionResponse 描述查询响应；Pending 表示仍在后台生成
type DescriptionResponse struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Pending     bool   `json:"pending"`
}
