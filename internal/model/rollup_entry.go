package model

// RollupEntry 月度个人绩效汇总行（IPMT）— 对应 rollup_entries
// 唯一键 (personnel_id, unit_id, period, indicator_id)，Period 格式为 YYYY-MM
type RollupEntry struct {
	EntryID        string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"  json:"entry_id"`
	PersonnelID    string `gorm:"type:uuid;not null;uniqueIndex:uq_rollup_key"    json:"personnel_id"`
	UnitID         string `gorm:"type:uuid;not null;uniqueIndex:uq_rollup_key"    json:"unit_id"`
	Period         string `gorm:"type:varchar(7);not null;uniqueIndex:uq_rollup_key" json:"period"`
	IndicatorID    string `gorm:"type:uuid;not null;uniqueIndex:uq_rollup_key"    json:"indicator_id"`
	Accomplishment string `gorm:"type:text;not null;default:''"                   json:"accomplishment"`
	Remarks        string `gorm:"type:text;not null;default:''"                   json:"remarks"`
	BaseModel

	// 关联
	Personnel *User                  `gorm:"foreignKey:PersonnelID;references:UserID"                                      json:"personnel,omitempty"`
	Unit      *Unit                  `gorm:"foreignKey:UnitID;references:UnitID"                                           json:"unit,omitempty"`
	Indicator *SuccessIndicator      `gorm:"foreignKey:IndicatorID;references:IndicatorID"                                 json:"indicator,omitempty"`
	Records   []AccomplishmentRecord `gorm:"many2many:rollup_entry_records;joinForeignKey:EntryID;joinReferences:RecordID" json:"records,omitempty"`
}

// TableName 指定表名
func (RollupEntry) TableName() string { return "rollup_entries" }
