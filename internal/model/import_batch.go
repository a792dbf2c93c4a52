package model

// ── 迁移导入类型 ──

const (
	ImportInventory      = "INVENTORY"
	ImportServiceRequest = "SERVICE_REQUEST"
	ImportWorkReport     = "WORK_REPORT"
	ImportRollup         = "IPMT"
)

// ImportBatch Excel 迁移批次 — 对应 import_batches
type ImportBatch struct {
	BatchID       string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"batch_id"`
	MigrationType string  `gorm:"type:varchar(30);not null"                      json:"migration_type"`
	UnitID        *string `gorm:"type:uuid"                                      json:"unit_id,omitempty"`
	UploadedBy    *string `gorm:"type:uuid"                                      json:"uploaded_by,omitempty"`
	FileName      string  `gorm:"type:varchar(255);not null;default:''"          json:"file_name"`
	Imported      int     `gorm:"not null;default:0"                             json:"imported"`
	Failed        int     `gorm:"not null;default:0"                             json:"failed"`
	ResultMessage string  `gorm:"type:text;not null;default:''"                  json:"result_message"`
	Processed     bool    `gorm:"not null;default:false"                         json:"processed"`
	BaseModel
}

// TableName 指定表名
func (ImportBatch) TableName() string { return "import_batches" }
