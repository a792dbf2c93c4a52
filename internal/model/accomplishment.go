package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AccomplishmentStatusCompleted 工作记录默认状态
const AccomplishmentStatusCompleted = "Completed"

// AccomplishmentRecord 工作完成报告（WAR）— 对应 accomplishment_records
//
// 来源有两种：由已完成的服务申请生成（RequestID 非空），或由 Excel 迁移导入。
// 导入记录没有人员关联时使用 PersonnelNames（逗号分隔）兜底。
// 不变量：TotalCost = MaterialCost + LaborCost，每次保存前重新计算。
type AccomplishmentRecord struct {
	RecordID             string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"     json:"record_id"`
	UnitID               string          `gorm:"type:uuid;not null;index"                           json:"unit_id"`
	RequestID            *string         `gorm:"type:uuid;uniqueIndex"                              json:"request_id,omitempty"`
	RequestingOfficeName string          `gorm:"type:varchar(255);not null;default:''"              json:"requesting_office_name"`
	PersonnelNames       string          `gorm:"type:text;not null;default:''"                      json:"personnel_names"`
	DateStarted          time.Time       `gorm:"type:date;not null;index"                           json:"date_started"`
	DateCompleted        *time.Time      `gorm:"type:date"                                          json:"date_completed,omitempty"`
	ActivityName         string          `gorm:"type:varchar(255);not null;default:''"              json:"activity_name"`
	Description          string          `gorm:"type:text;not null;default:''"                      json:"description"`
	IndicatorID          *string         `gorm:"type:uuid"                                          json:"indicator_id,omitempty"`
	Status               string          `gorm:"type:varchar(50);not null;default:'Completed'"      json:"status"`
	MaterialCost         decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"              json:"material_cost"`
	LaborCost            decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"              json:"labor_cost"`
	TotalCost            decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"              json:"total_cost"`
	ControlNumber        *string         `gorm:"type:varchar(100);uniqueIndex"                      json:"control_number,omitempty"`
	BaseModel

	// 关联
	Unit      *Unit             `gorm:"foreignKey:UnitID;references:UnitID"                                               json:"unit,omitempty"`
	Request   *ServiceRequest   `gorm:"foreignKey:RequestID;references:RequestID"                                         json:"request,omitempty"`
	Indicator *SuccessIndicator `gorm:"foreignKey:IndicatorID;references:IndicatorID"                                     json:"indicator,omitempty"`
	Personnel []User            `gorm:"many2many:accomplishment_personnel;joinForeignKey:RecordID;joinReferences:UserID" json:"personnel,omitempty"`
}

// TableName 指定表名
func (AccomplishmentRecord) TableName() string { return "accomplishment_records" }

// BeforeSave GORM 钩子：各成本按列精度取两位小数后重算总成本，
// 保证落库后 total_cost = material_cost + labor_cost
func (r *AccomplishmentRecord) BeforeSave(tx *gorm.DB) error {
	r.MaterialCost = r.MaterialCost.Round(2)
	r.LaborCost = r.LaborCost.Round(2)
	r.TotalCost = TotalCost(r.MaterialCost, r.LaborCost)
	return nil
}

// TotalCost 两项成本各自保留两位小数后求和
func TotalCost(material, labor decimal.Decimal) decimal.Decimal {
	return material.Round(2).Add(labor.Round(2))
}

// HasPersonnel 判断用户是否在关联人员中
func (r *AccomplishmentRecord) HasPersonnel(userID string) bool {
	for i := range r.Personnel {
		if r.Personnel[i].UserID == userID {
			return true
		}
	}
	return false
}

// IndicatorCode 指标编码，未关联时为空串
func (r *AccomplishmentRecord) IndicatorCode() string {
	if r.Indicator != nil {
		return r.Indicator.Code
	}
	return ""
}
