package model

// InventoryItem 单元物料库存 — 对应 inventory_items
type InventoryItem struct {
	ItemID            string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"item_id"`
	Name              string `gorm:"type:varchar(255);not null"                     json:"name"`
	Description       string `gorm:"type:text;not null;default:''"                  json:"description"`
	Quantity          int    `gorm:"not null;default:0"                             json:"quantity"`
	UnitOfMeasurement string `gorm:"type:varchar(50);not null;default:'pcs'"        json:"unit_of_measurement"`
	Category          string `gorm:"type:varchar(100);not null;default:''"          json:"category"`
	UnitID            string `gorm:"type:uuid;not null;index"                       json:"unit_id"`
	IsActive          bool   `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel

	// 关联
	Unit *Unit `gorm:"foreignKey:UnitID;references:UnitID" json:"unit,omitempty"`
}

// TableName 指定表名
func (InventoryItem) TableName() string { return "inventory_items" }
