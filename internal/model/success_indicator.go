package model

// PendingReviewCode 完成时未选择指标的工作记录挂到该占位指标下
const (
	PendingReviewCode        = "Pending Review"
	PendingReviewDescription = "To be defined by assigned personnel or GSO office."
)

// SuccessIndicator 绩效指标 — 对应 success_indicators
// 同一单元内 code 约定唯一，但数据库不强制；查询按 (unit_id, lower(code)) 取第一条
type SuccessIndicator struct {
	IndicatorID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"indicator_id"`
	UnitID      string `gorm:"type:uuid;not null;index"                       json:"unit_id"`
	Code        string `gorm:"type:varchar(100);not null"                     json:"code"`
	Description string `gorm:"type:text;not null;default:''"                  json:"description"`
	IsActive    bool   `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel

	// 关联
	Unit *Unit `gorm:"foreignKey:UnitID;references:UnitID" json:"unit,omitempty"`
}

// TableName 指定表名
func (SuccessIndicator) TableName() string { return "success_indicators" }
