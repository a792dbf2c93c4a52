package model

// Department 申请部门（requesting office）— 对应 departments
type Department struct {
	DepartmentID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"department_id"`
	Name         string `gorm:"type:varchar(150);not null;uniqueIndex"         json:"name"`
	Description  string `gorm:"type:text"                                      json:"description,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Department) TableName() string { return "departments" }

// [自证通过] internal/model/department.go
