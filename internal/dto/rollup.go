package dto

// ── 月度汇总（IPMT）模块 DTO ──

// RollupQuery 汇总预览查询参数
type RollupQuery struct {
	Period    string   `form:"period"    binding:"required"`
	Unit      string   `form:"unit"      binding:"required"`
	Personnel []string `form:"personnel"`
}

// RollupRow 一条汇总行（一个人员 × 一个指标分组）
type RollupRow struct {
	PersonnelID string   `json:"personnel_id,omitempty"`
	Indicator   string   `json:"indicator"`
	Description string   `json:"description"`
	Remarks     string   `json:"remarks"`
	SourceIDs   []string `json:"source_ids,omitempty"`
}

// PersonnelRollup 单个人员的汇总结果
type PersonnelRollup struct {
	PersonnelID   string      `json:"personnel_id"`
	PersonnelName string      `json:"personnel_name"`
	Rows          []RollupRow `json:"rows"`
}

// RollupPreviewResponse 汇总预览响应
type RollupPreviewResponse struct {
	Period      string            `json:"period"`
	PeriodLabel string            `json:"period_label"`
	Unit        string            `json:"unit"`
	Personnel   []PersonnelRollup `json:"personnel"`
	Unresolved  []string          `json:"unresolved,omitempty"`
}

// SaveRollupRequest 保存汇总行
type SaveRollupRequest struct {
	Period    string      `json:"period"    binding:"required"`
	Unit      string      `json:"unit"      binding:"required"`
	Personnel []string    `json:"personnel"`
	Rows      []RollupRow `json:"rows"      binding:"required"`
}

// SaveRollupResponse 保存结果：逐行失败不影响其余行
type SaveRollupResponse struct {
	Saved      int      `json:"saved"`
	Skipped    int      `json:"skipped"`
	Errors     []string `json:"errors,omitempty"`
	Unresolved []string `json:"unresolved,omitempty"`
}

// ExportRollupRequest 导出请求；Rows 非空时按提交内容导出
type ExportRollupRequest struct {
	Period    string      `json:"period"    binding:"required"`
	Unit      string      `json:"unit"      binding:"required"`
	Personnel []string    `json:"personnel"`
	Rows      []RollupRow `json:"rows"`
}

// RollupEntryQuery 已保存汇总查询参数
type RollupEntryQuery struct {
	Period string `form:"period" binding:"required"`
	Unit   string `form:"unit"   binding:"required"`
}

// RollupEntryResponse 已保存的汇总行
type RollupEntryResponse struct {
	ID             string   `json:"id"`
	PersonnelID    string   `json:"personnel_id"`
	PersonnelName  string   `json:"personnel_name"`
	Indicator      string   `json:"indicator"`
	Accomplishment string   `json:"accomplishment"`
	Remarks        string   `json:"remarks"`
	SourceIDs      []string `json:"source_ids"`
}
