package model

// Unit 服务单元（如 Maintenance、Electrical）— 对应 units
type Unit struct {
	UnitID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"unit_id"`
	Name   string  `gorm:"type:varchar(100);not null;uniqueIndex"         json:"name"`
	HeadID *string `gorm:"type:uuid"                                      json:"head_id,omitempty"`
	BaseModel

	// 关联
	Head *User `gorm:"foreignKey:HeadID;references:UserID" json:"head,omitempty"`
}

// TableName 指定表名
func (Unit) TableName() string { return "units" }
