package dto

// ── 单元 / 人员 / 绩效指标 DTO ──

// UnitResponse 服务单元响应
type UnitResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	HeadID   string `json:"head_id,omitempty"`
	HeadName string `json:"head_name,omitempty"`
}

// PersonnelResponse 单元人员响应
type PersonnelResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email,omitempty"`
	Busy     bool   `json:"busy"` // 仍有未完成任务
}

// IndicatorListRequest 指标列表查询参数
type IndicatorListRequest struct {
	UnitID     string `form:"unit_id"     binding:"required,uuid"`
	ActiveOnly bool   `form:"active_only"`
}

// CreateIndicatorRequest 创建指标请求
type CreateIndicatorRequest struct {
	UnitID      string `json:"unit_id"     binding:"required,uuid"`
	Code        string `json:"code"        binding:"required,max=100"`
	Description string `json:"description" binding:"omitempty,max=2000"`
}

// UpdateIndicatorRequest 更新指标请求
type UpdateIndicatorRequest struct {
	Code        *string `json:"code"        binding:"omitempty,min=1,max=100"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	IsActive    *bool   `json:"is_active"`
}

// IndicatorResponse 指标响应
type IndicatorResponse struct {
	ID          string `json:"id"`
	UnitID      string `json:"unit_id"`
	Code        string `json:"code"`
	Description string `json:"description"`
	IsActive    bool   `json:"is_active"`
}
