package model

import "time"

// ── 申请状态 ──

const (
	RequestPending       = "Pending"
	RequestApproved      = "Approved"
	RequestInProgress    = "In Progress"
	RequestDoneForReview = "Done for Review"
	RequestCompleted     = "Completed"
	RequestCancelled     = "Cancelled"
	RequestEmergency     = "Emergency"
)

// ServiceRequest 服务申请 — 对应 service_requests
type ServiceRequest struct {
	RequestID       string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"request_id"`
	RequestorID     *string    `gorm:"type:uuid"                                      json:"requestor_id,omitempty"`
	UnitID          string     `gorm:"type:uuid;not null;index"                       json:"unit_id"`
	DepartmentID    *string    `gorm:"type:uuid"                                      json:"department_id,omitempty"`
	CustomFullName  string     `gorm:"type:varchar(255);not null;default:''"          json:"custom_full_name,omitempty"`
	CustomEmail     string     `gorm:"type:varchar(255);not null;default:''"          json:"custom_email,omitempty"`
	CustomContact   string     `gorm:"type:varchar(50);not null;default:''"           json:"custom_contact,omitempty"`
	IsEmergency     bool       `gorm:"not null;default:false"                         json:"is_emergency"`
	ScheduleStart   *time.Time `json:"schedule_start,omitempty"`
	ScheduleEnd     *time.Time `json:"schedule_end,omitempty"`
	ScheduleRemarks string     `gorm:"type:text;not null;default:''"                  json:"schedule_remarks,omitempty"`
	ActivityName    string     `gorm:"type:varchar(255);not null;default:''"          json:"activity_name"`
	Description     string     `gorm:"type:text;not null;default:''"                  json:"description"`
	Status          string     `gorm:"type:varchar(20);not null;default:'Pending';index" json:"status"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	IndicatorID     *string    `gorm:"type:uuid"                                      json:"indicator_id,omitempty"`
	VersionedModel

	// 关联
	Requestor  *User             `gorm:"foreignKey:RequestorID;references:UserID"                                   json:"requestor,omitempty"`
	Unit       *Unit             `gorm:"foreignKey:UnitID;references:UnitID"                                        json:"unit,omitempty"`
	Department *Department       `gorm:"foreignKey:DepartmentID;references:DepartmentID"                            json:"department,omitempty"`
	Indicator  *SuccessIndicator `gorm:"foreignKey:IndicatorID;references:IndicatorID"                              json:"indicator,omitempty"`
	Personnel  []User            `gorm:"many2many:request_personnel;joinForeignKey:RequestID;joinReferences:UserID" json:"personnel,omitempty"`
	Materials  []RequestMaterial `gorm:"foreignKey:RequestID"                                                       json:"materials,omitempty"`
	Reports    []TaskReport      `gorm:"foreignKey:RequestID"                                                       json:"reports,omitempty"`
}

// TableName 指定表名
func (ServiceRequest) TableName() string { return "service_requests" }

// RequestingOffice 申请部门名称，无部门时为空
func (r *ServiceRequest) RequestingOffice() string {
	if r.Department != nil {
		return r.Department.Name
	}
	return ""
}

// HasPersonnel 判断用户是否在指派人员中
func (r *ServiceRequest) HasPersonnel(userID string) bool {
	for i := range r.Personnel {
		if r.Personnel[i].UserID == userID {
			return true
		}
	}
	return false
}

// RequestMaterial 申请占用的物料 — 对应 request_materials
type RequestMaterial struct {
	AllocationID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"allocation_id"`
	RequestID    string `gorm:"type:uuid;not null;index"                       json:"request_id"`
	ItemID       string `gorm:"type:uuid;not null"                             json:"item_id"`
	Quantity     int    `gorm:"not null"                                       json:"quantity"`
	BaseModel

	// 关联
	Item *InventoryItem `gorm:"foreignKey:ItemID;references:ItemID" json:"item,omitempty"`
}

// TableName 指定表名
func (RequestMaterial) TableName() string { return "request_materials" }

// TaskReport 人员执行记录 — 对应 task_reports
type TaskReport struct {
	ReportID    string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"report_id"`
	RequestID   string    `gorm:"type:uuid;not null;index"                       json:"request_id"`
	PersonnelID string    `gorm:"type:uuid;not null"                             json:"personnel_id"`
	ReportText  string    `gorm:"type:text;not null"                             json:"report_text"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	// 关联
	Personnel *User `gorm:"foreignKey:PersonnelID;references:UserID" json:"personnel,omitempty"`
}

// TableName 指定表名
func (TaskReport) TableName() string { return "task_reports" }
