package dto

// ImportRequest Excel 迁移表单参数（文件字段名 file）
type ImportRequest struct {
	MigrationType string `form:"migration_type" binding:"required,oneof=WORK_REPORT INVENTORY SERVICE_REQUEST IPMT"`
	UnitID        string `form:"unit_id"        binding:"omitempty,uuid"`
}

// ImportResult Excel 迁移结果
type ImportResult struct {
	BatchID  string   `json:"batch_id,omitempty"`
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
	Message  string   `json:"message"`
}

// AnalyticsResponse 统计看板
type AnalyticsResponse struct {
	TotalRequests  int64            `json:"total_requests"`
	Completed      int64            `json:"completed"`
	Pending        int64            `json:"pending"`
	InProgress     int64            `json:"in_progress"`
	ByStatus       map[string]int64 `json:"by_status"`
	TotalMaterials int64            `json:"total_materials"`
	LowStock       int64            `json:"low_stock"`
	OutOfStock     int64            `json:"out_of_stock"`
}
