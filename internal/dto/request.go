package dto

import "time"

// ── 服务申请模块 DTO ──

// CreateServiceRequestRequest 提交服务申请
type CreateServiceRequestRequest struct {
	UnitID          string     `json:"unit_id"          binding:"required,uuid"`
	DepartmentID    string     `json:"department_id"    binding:"omitempty,uuid"`
	ActivityName    string     `json:"activity_name"    binding:"required,max=255"`
	Description     string     `json:"description"      binding:"omitempty,max=5000"`
	CustomFullName  string     `json:"custom_full_name" binding:"omitempty,max=255"`
	CustomEmail     string     `json:"custom_email"     binding:"omitempty,email"`
	CustomContact   string     `json:"custom_contact"   binding:"omitempty,max=50"`
	IsEmergency     bool       `json:"is_emergency"`
	ScheduleStart   *time.Time `json:"schedule_start"`
	ScheduleEnd     *time.Time `json:"schedule_end"`
	ScheduleRemarks string     `json:"schedule_remarks" binding:"omitempty,max=1000"`
}

// RequestListRequest 申请列表查询参数
type RequestListRequest struct {
	Query  string `form:"q"`
	UnitID string `form:"unit_id" binding:"omitempty,uuid"`
	Status string `form:"status"`
	PaginationRequest
}

// AssignPersonnelRequest 指派人员（全量替换）
type AssignPersonnelRequest struct {
	UserIDs []string `json:"user_ids" binding:"omitempty,dive,uuid"`
}

// AssignPersonnelResponse 指派结果，BusyWarnings 列出仍有未完成任务的人员
type AssignPersonnelResponse struct {
	Request      *ServiceRequestResponse `json:"request"`
	BusyWarnings []string                `json:"busy_warnings,omitempty"`
}

// MaterialAllocation 单项物料占用
type MaterialAllocation struct {
	ItemID   string `json:"item_id"  binding:"required,uuid"`
	Quantity int    `json:"quantity"`
}

// AssignMaterialsRequest 物料占用（全量替换）
type AssignMaterialsRequest struct {
	Materials []MaterialAllocation `json:"materials" binding:"dive"`
}

// TaskReportRequest 人员执行记录
type TaskReportRequest struct {
	ReportText string `json:"report_text" binding:"required,max=5000"`
}

// MarkDoneRequest 人员标记完成，可同时选择绩效指标
type MarkDoneRequest struct {
	IndicatorID string `json:"indicator_id" binding:"omitempty,uuid"`
}

// SelectIndicatorRequest 选择绩效指标
type SelectIndicatorRequest struct {
	IndicatorID string `json:"indicator_id" binding:"required,uuid"`
}

// PersonnelRef 人员简要信息
type PersonnelRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MaterialRef 物料占用信息
type MaterialRef struct {
	ItemID            string `json:"item_id"`
	Name              string `json:"name"`
	Quantity          int    `json:"quantity"`
	UnitOfMeasurement string `json:"unit_of_measurement"`
}

// TaskReportResponse 执行记录响应
type TaskReportResponse struct {
	ID            string `json:"id"`
	PersonnelID   string `json:"personnel_id"`
	PersonnelName string `json:"personnel_name"`
	ReportText    string `json:"report_text"`
	CreatedAt     string `json:"created_at"`
}

// ServiceRequestResponse 服务申请响应
type ServiceRequestResponse struct {
	ID               string               `json:"id"`
	UnitID           string               `json:"unit_id"`
	UnitName         string               `json:"unit_name,omitempty"`
	RequestingOffice string               `json:"requesting_office,omitempty"`
	RequestorID      string               `json:"requestor_id,omitempty"`
	RequestorName    string               `json:"requestor_name,omitempty"`
	ActivityName     string               `json:"activity_name"`
	Description      string               `json:"description"`
	Status           string               `json:"status"`
	IsEmergency      bool                 `json:"is_emergency"`
	ScheduleStart    string               `json:"schedule_start,omitempty"`
	ScheduleEnd      string               `json:"schedule_end,omitempty"`
	IndicatorID      string               `json:"indicator_id,omitempty"`
	IndicatorCode    string               `json:"indicator_code,omitempty"`
	Personnel        []PersonnelRef       `json:"personnel"`
	Materials        []MaterialRef        `json:"materials,omitempty"`
	Reports          []TaskReportResponse `json:"reports,omitempty"`
	Version          int                  `json:"version"`
	CreatedAt        string               `json:"created_at"`
	CompletedAt      string               `json:"completed_at,omitempty"`
}
