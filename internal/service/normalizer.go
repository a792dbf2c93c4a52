package service

import (
	"strings"
	"time"

	"gso-office/backend/internal/dto"
	"gso-office/backend/internal/model"
)

// ═══════════════════════════════════════════════════════════
// 工作记录归一化
//
// 已完成的服务申请与工作记录（含 Excel 迁移数据）投影为同一结构
// dto.NormalizedReport，供列表展示与月度汇总使用。
//
// 设计说明：
//   - 人员：多对多关联优先 → 逗号分隔的 personnel_names → "Unassigned"
//   - 日期：申请时间戳本身带时区，原样透传；工作记录的 date 列没有
//     时区语义，按业务时区重新解释墙上时间（仅日期则为当地零点）
//   - 描述为空时投影携带占位文本，由 DescriptionGenerator 后台补全
// ═══════════════════════════════════════════════════════════

const (
	KindServiceRequest = "service_request"
	KindAccomplishment = "accomplishment"

	SourceLive     = "Live"
	SourceMigrated = "Migrated"

	UnassignedPersonnel    = "Unassigned"
	DescriptionPlaceholder = "Description is being generated."
)

// ReportSource 归一化输入：服务申请或工作记录二选一
type ReportSource struct {
	request *model.ServiceRequest
	record  *model.AccomplishmentRecord
}

// FromRequest 以已完成的服务申请为来源
func FromRequest(r *model.ServiceRequest) ReportSource {
	return ReportSource{request: r}
}

// FromAccomplishment 以工作记录为来源
func FromAccomplishment(r *model.AccomplishmentRecord) ReportSource {
	return ReportSource{record: r}
}

// Kind 来源类型
func (s ReportSource) Kind() string {
	if s.request != nil {
		return KindServiceRequest
	}
	return KindAccomplishment
}

// ID 来源记录主键
func (s ReportSource) ID() string {
	if s.request != nil {
		return s.request.RequestID
	}
	return s.record.RecordID
}

// Key 后台生成任务的去重键
func (s ReportSource) Key() string {
	return s.Kind() + ":" + s.ID()
}

// Description 当前描述（已去除首尾空白）
func (s ReportSource) Description() string {
	if s.request != nil {
		return strings.TrimSpace(s.request.Description)
	}
	return strings.TrimSpace(s.record.Description)
}

// Normalize 生成统一投影；描述为空时填入占位文本并置 DescriptionPending
func Normalize(src ReportSource, loc *time.Location) dto.NormalizedReport {
	var out dto.NormalizedReport
	if src.request != nil {
		out = normalizeRequest(src.request)
	} else {
		out = normalizeRecord(src.record, loc)
	}

	if out.Description == "" {
		out.Description = DescriptionPlaceholder
		out.DescriptionPending = true
	}
	return out
}

func normalizeRequest(r *model.ServiceRequest) dto.NormalizedReport {
	out := dto.NormalizedReport{
		ID:               r.RequestID,
		Kind:             KindServiceRequest,
		Source:           SourceLive,
		RequestingOffice: r.RequestingOffice(),
		ActivityName:     r.ActivityName,
		Description:      strings.TrimSpace(r.Description),
		Date:             r.CreatedAt,
		Personnel:        resolvePersonnel(r.Personnel, ""),
		Status:           r.Status,
	}
	if r.Unit != nil {
		out.Unit = r.Unit.Name
	}
	if r.Indicator != nil {
		out.Indicator = r.Indicator.Code
	}
	return out
}

func normalizeRecord(r *model.AccomplishmentRecord, loc *time.Location) dto.NormalizedReport {
	out := dto.NormalizedReport{
		ID:               r.RecordID,
		Kind:             KindAccomplishment,
		Source:           SourceMigrated,
		RequestingOffice: r.RequestingOfficeName,
		ActivityName:     r.ActivityName,
		Description:      strings.TrimSpace(r.Description),
		Date:             NormalizeDate(r.DateStarted, true, loc),
		Personnel:        resolvePersonnel(r.Personnel, r.PersonnelNames),
		Status:           r.Status,
		Indicator:        r.IndicatorCode(),
		TotalCost:        r.TotalCost.StringFixed(2),
	}
	if r.RequestID != nil {
		out.Source = SourceLive
		if r.Request != nil && r.Request.Department != nil {
			out.RequestingOffice = r.Request.Department.Name
		}
	}
	if r.Unit != nil {
		out.Unit = r.Unit.Name
	}
	if out.Status == "" {
		out.Status = model.AccomplishmentStatusCompleted
	}
	return out
}

// resolvePersonnel 人员解析：关联优先，其次逗号分隔的文本，最后 "Unassigned"
func resolvePersonnel(users []model.User, fallback string) []string {
	if len(users) > 0 {
		names := make([]string, 0, len(users))
		for i := range users {
			names = append(names, users[i].FullName())
		}
		return names
	}

	var names []string
	for _, part := range strings.Split(fallback, ",") {
		if p := strings.TrimSpace(part); p != "" {
			names = append(names, p)
		}
	}
	if len(names) > 0 {
		return names
	}
	return []string{UnassignedPersonnel}
}

// NormalizeDate 日期归一化
// naive 为 true 表示 t 只是墙上时间（date 列或无时区的时间），
// 以相同的年月日时分秒在 loc 中重建；否则 t 已带时区，原样返回。
func NormalizeDate(t time.Time, naive bool, loc *time.Location) time.Time {
	if !naive {
		return t
	}
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}
