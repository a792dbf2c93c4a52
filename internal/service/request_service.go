package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"gso-office/backend/internal/dto"
	"gso-office/backend/internal/model"
	"gso-office/backend/internal/repository"
)

// ── 服务申请模块业务错误 ──

var (
	ErrRequestNotFound     = errors.New("服务申请不存在")
	ErrInvalidTransition   = errors.New("当前状态不允许该操作")
	ErrUnknownAction       = errors.New("未知操作")
	ErrPersonnelNotInUnit  = errors.New("指派人员必须是该单元的在职人员")
	ErrNotAssigned         = errors.New("仅指派人员可执行该操作")
	ErrEmptyReport         = errors.New("执行记录不能为空")
	ErrRequestClosed       = errors.New("申请已结束，不可修改")
	ErrDepartmentNotFound  = errors.New("申请部门不存在")
	ErrInvalidScheduleSpan = errors.New("计划结束时间早于开始时间")
)

// ── 状态流转动作 ──

const (
	ActionApprove          = "approve"
	ActionCancel           = "cancel"
	ActionStart            = "start"
	ActionSetEmergency     = "set_emergency"
	ActionUnsetEmergency   = "unset_emergency"
	ActionRejectCompletion = "reject_completion"
)

// DefaultActivityName 申请未填写活动名称时工作记录使用的名称
const DefaultActivityName = "General Task"

// transition 一条状态流转规则
type transition struct {
	from    []string
	to      string
	allowed func(c Caller, r *model.ServiceRequest) bool
	fields  func(r *model.ServiceRequest) map[string]interface{}
}

var openStatuses = []string{
	model.RequestPending, model.RequestApproved, model.RequestInProgress,
	model.RequestDoneForReview, model.RequestEmergency,
}

var transitions = map[string]transition{
	ActionApprove: {
		from:    []string{model.RequestPending, model.RequestEmergency},
		to:      model.RequestApproved,
		allowed: func(c Caller, _ *model.ServiceRequest) bool { return c.IsAdmin() },
	},
	ActionCancel: {
		from: []string{model.RequestPending, model.RequestApproved},
		to:   model.RequestCancelled,
		allowed: func(c Caller, r *model.ServiceRequest) bool {
			return c.IsAdmin() || (r.RequestorID != nil && *r.RequestorID == c.UserID)
		},
	},
	ActionStart: {
		from:    []string{model.RequestApproved},
		to:      model.RequestInProgress,
		allowed: func(c Caller, r *model.ServiceRequest) bool { return r.HasPersonnel(c.UserID) },
	},
	ActionSetEmergency: {
		from:    openStatuses,
		to:      model.RequestEmergency,
		allowed: func(c Caller, r *model.ServiceRequest) bool { return c.CanManageUnit(r.UnitID) },
		fields: func(*model.ServiceRequest) map[string]interface{} {
			return map[string]interface{}{"is_emergency": true}
		},
	},
	ActionUnsetEmergency: {
		from:    []string{model.RequestEmergency},
		to:      model.RequestPending,
		allowed: func(c Caller, r *model.ServiceRequest) bool { return c.CanManageUnit(r.UnitID) },
		fields: func(*model.ServiceRequest) map[string]interface{} {
			return map[string]interface{}{"is_emergency": false}
		},
	},
	ActionRejectCompletion: {
		from:    []string{model.RequestDoneForReview},
		to:      model.RequestInProgress,
		allowed: func(c Caller, r *model.ServiceRequest) bool { return c.CanManageUnit(r.UnitID) },
	},
}

// RequestService 服务申请业务接口
type RequestService interface {
	Create(ctx context.Context, caller Caller, req *dto.CreateServiceRequestRequest) (*dto.ServiceRequestResponse, error)
	GetByID(ctx context.Context, caller Caller, id string) (*dto.ServiceRequestResponse, error)
	List(ctx context.Context, caller Caller, req *dto.RequestListRequest) ([]dto.ServiceRequestResponse, int64, error)
	// ListMyTasks 当前人员被指派的未结束任务
	ListMyTasks(ctx context.Context, caller Caller) ([]dto.ServiceRequestResponse, error)
	// Transition 执行简单状态流转（approve/cancel/start/set_emergency/unset_emergency/reject_completion）
	Transition(ctx context.Context, caller Caller, id, action string) (*dto.ServiceRequestResponse, error)
	// MarkDone 人员标记完成，可同时选择绩效指标
	MarkDone(ctx context.Context, caller Caller, id, indicatorID string) (*dto.ServiceRequestResponse, error)
	// ApproveCompletion 单元负责人确认完成：状态置为 Completed 并生成工作记录
	ApproveCompletion(ctx context.Context, caller Caller, id string) (*dto.ServiceRequestResponse, error)
	AssignPersonnel(ctx context.Context, caller Caller, id string, userIDs []string) (*dto.AssignPersonnelResponse, error)
	// AssignMaterials 单事务内归还旧占用、校验并扣减新占用；任一物料不足则整体回滚
	AssignMaterials(ctx context.Context, caller Caller, id string, allocations []dto.MaterialAllocation) (*dto.ServiceRequestResponse, error)
	AddReport(ctx context.Context, caller Caller, id, text string) (*dto.TaskReportResponse, error)
	SelectIndicator(ctx context.Context, caller Caller, id, indicatorID string) (*dto.ServiceRequestResponse, error)
}

type requestService struct {
	repo   *repository.Repository
	gen    *DescriptionGenerator
	loc    *time.Location
	logger *zap.Logger
	now    func() time.Time
}

// NewRequestService 创建 RequestService 实例
func NewRequestService(repo *repository.Repository, gen *DescriptionGenerator, loc *time.Location, logger *zap.Logger) RequestService {
	return &requestService{repo: repo, gen: gen, loc: loc, logger: logger, now: time.Now}
}

// ────────────────────── Create ──────────────────────

func (s *requestService) Create(ctx context.Context, caller Caller, req *dto.CreateServiceRequestRequest) (*dto.ServiceRequestResponse, error) {
	if _, err := s.repo.Unit.GetByID(ctx, req.UnitID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnitNotFound
		}
		s.logger.Error("查询单元失败", zap.String("unit_id", req.UnitID), zap.Error(err))
		return nil, err
	}
	if req.DepartmentID != "" {
		if _, err := s.repo.Department.GetByID(ctx, req.DepartmentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrDepartmentNotFound
			}
			return nil, err
		}
	}
	if req.ScheduleStart != nil && req.ScheduleEnd != nil && req.ScheduleEnd.Before(*req.ScheduleStart) {
		return nil, ErrInvalidScheduleSpan
	}

	sr := &model.ServiceRequest{
		UnitID:          req.UnitID,
		CustomFullName:  strings.TrimSpace(req.CustomFullName),
		CustomEmail:     strings.TrimSpace(req.CustomEmail),
		CustomContact:   strings.TrimSpace(req.CustomContact),
		IsEmergency:     req.IsEmergency,
		ScheduleStart:   req.ScheduleStart,
		ScheduleEnd:     req.ScheduleEnd,
		ScheduleRemarks: strings.TrimSpace(req.ScheduleRemarks),
		ActivityName:    strings.TrimSpace(req.ActivityName),
		Description:     strings.TrimSpace(req.Description),
		Status:          model.RequestPending,
	}
	if req.IsEmergency {
		sr.Status = model.RequestEmergency
	}
	if caller.UserID != "" {
		sr.RequestorID = &caller.UserID
	}
	if req.DepartmentID != "" {
		sr.DepartmentID = &req.DepartmentID
	}

	if err := s.repo.Request.Create(ctx, sr); err != nil {
		s.logger.Error("创建服务申请失败", zap.Error(err))
		return nil, err
	}

	return s.reload(ctx, sr.RequestID)
}

// ────────────────────── Query ──────────────────────

func (s *requestService) GetByID(ctx context.Context, caller Caller, id string) (*dto.ServiceRequestResponse, error) {
	sr, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(caller, sr) {
		return nil, ErrForbidden
	}
	return toRequestResponse(sr), nil
}

func canView(c Caller, r *model.ServiceRequest) bool {
	return c.CanManageUnit(r.UnitID) ||
		r.HasPersonnel(c.UserID) ||
		(r.RequestorID != nil && *r.RequestorID == c.UserID)
}

func (s *requestService) List(ctx context.Context, caller Caller, req *dto.RequestListRequest) ([]dto.ServiceRequestResponse, int64, error) {
	filter := repository.RequestFilter{
		UnitID: req.UnitID,
		Query:  strings.TrimSpace(req.Query),
	}
	if req.Status != "" {
		filter.Statuses = []string{req.Status}
	}

	// 按角色收窄可见范围
	switch {
	case caller.IsAdmin():
	case caller.Role == model.RoleUnitHead:
		filter.UnitID = caller.UnitID
	case caller.Role == model.RolePersonnel:
		filter.PersonnelID = caller.UserID
	default:
		filter.RequestorID = caller.UserID
	}

	filter.Offset = req.GetOffset()
	filter.Limit = req.GetPageSize()

	list, total, err := s.repo.Request.List(ctx, filter)
	if err != nil {
		s.logger.Error("列出服务申请失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.ServiceRequestResponse, 0, len(list))
	for i := range list {
		result = append(result, *toRequestResponse(&list[i]))
	}
	return result, total, nil
}

func (s *requestService) ListMyTasks(ctx context.Context, caller Caller) ([]dto.ServiceRequestResponse, error) {
	list, _, err := s.repo.Request.List(ctx, repository.RequestFilter{
		PersonnelID: caller.UserID,
		Statuses:    []string{model.RequestApproved, model.RequestInProgress, model.RequestDoneForReview, model.RequestEmergency},
	})
	if err != nil {
		s.logger.Error("列出人员任务失败", zap.String("user_id", caller.UserID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.ServiceRequestResponse, 0, len(list))
	for i := range list {
		result = append(result, *toRequestResponse(&list[i]))
	}
	return result, nil
}

// ────────────────────── Transition ──────────────────────

func (s *requestService) Transition(ctx context.Context, caller Caller, id, action string) (*dto.ServiceRequestResponse, error) {
	t, ok := transitions[action]
	if !ok {
		return nil, ErrUnknownAction
	}

	sr, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.allowed(caller, sr) {
		return nil, ErrForbidden
	}
	if !containsStatus(t.from, sr.Status) {
		return nil, ErrInvalidTransition
	}

	fields := map[string]interface{}{"status": t.to}
	if t.fields != nil {
		for k, v := range t.fields(sr) {
			fields[k] = v
		}
	}
	if err := s.repo.Request.UpdateFields(ctx, id, sr.Version, fields); err != nil {
		s.logger.Error("更新申请状态失败", zap.String("id", id), zap.String("action", action), zap.Error(err))
		return nil, err
	}

	s.logger.Info("申请状态变更",
		zap.String("id", id),
		zap.String("from", sr.Status),
		zap.String("to", t.to),
		zap.String("by", caller.UserID),
	)
	return s.reload(ctx, id)
}

func containsStatus(list []string, status string) bool {
	for _, st := range list {
		if st == status {
			return true
		}
	}
	return false
}

// ────────────────────── MarkDone ──────────────────────

func (s *requestService) MarkDone(ctx context.Context, caller Caller, id, indicatorID string) (*dto.ServiceRequestResponse, error) {
	sr, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sr.HasPersonnel(caller.UserID) {
		return nil, ErrNotAssigned
	}
	if sr.Status != model.RequestInProgress {
		return nil, ErrInvalidTransition
	}

	fields := map[string]interface{}{"status": model.RequestDoneForReview}
	if indicatorID != "" {
		ind, err := s.unitIndicator(ctx, sr.UnitID, indicatorID)
		if err != nil {
			return nil, err
		}
		fields["indicator_id"] = ind.IndicatorID
	}

	if err := s.repo.Request.UpdateFields(ctx, id, sr.Version, fields); err != nil {
		s.logger.Error("标记完成失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.reload(ctx, id)
}

// ────────────────────── ApproveCompletion ──────────────────────

func (s *requestService) ApproveCompletion(ctx context.Context, caller Caller, id string) (*dto.ServiceRequestResponse, error) {
	sr, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.CanManageUnit(sr.UnitID) {
		return nil, ErrForbidden
	}
	if sr.Status != model.RequestDoneForReview {
		return nil, ErrInvalidTransition
	}

	now := s.now()
	var rec *model.AccomplishmentRecord
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Request.UpdateFields(ctx, id, sr.Version, map[string]interface{}{
			"status":       model.RequestCompleted,
			"completed_at": now,
		}); err != nil {
			return err
		}

		var err error
		rec, err = s.recordFromRequest(ctx, tx, sr, now)
		return err
	})
	if err != nil {
		s.logger.Error("确认完成失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("申请已完成并生成工作记录", zap.String("request_id", id), zap.String("record_id", rec.RecordID))
	if strings.TrimSpace(rec.Description) == "" {
		s.gen.Dispatch(FromAccomplishment(rec))
	}
	return s.reload(ctx, id)
}

// recordFromRequest 按申请获取或创建工作记录（事务内）
func (s *requestService) recordFromRequest(ctx context.Context, tx *repository.Repository, sr *model.ServiceRequest, now time.Time) (*model.AccomplishmentRecord, error) {
	existing, err := tx.Accomplishment.GetByRequestID(ctx, sr.RequestID)
	if err == nil {
		if sr.IndicatorID != nil && (existing.IndicatorID == nil || *existing.IndicatorID != *sr.IndicatorID) {
			if err := tx.Accomplishment.UpdateColumns(ctx, existing.RecordID, map[string]interface{}{"indicator_id": *sr.IndicatorID}); err != nil {
				return nil, err
			}
			existing.IndicatorID = sr.IndicatorID
		}
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	indicatorID := sr.IndicatorID
	if indicatorID == nil {
		pending, err := resolveIndicator(ctx, tx, sr.UnitID, model.PendingReviewCode, model.PendingReviewDescription)
		if err != nil {
			return nil, fmt.Errorf("获取待定指标失败: %w", err)
		}
		indicatorID = &pending.IndicatorID
	}

	activity := strings.TrimSpace(sr.ActivityName)
	if activity == "" {
		activity = DefaultActivityName
	}
	names := make([]string, 0, len(sr.Personnel))
	for i := range sr.Personnel {
		names = append(names, sr.Personnel[i].FullName())
	}
	completed := localDay(now, s.loc)

	rec := &model.AccomplishmentRecord{
		UnitID:               sr.UnitID,
		RequestID:            &sr.RequestID,
		RequestingOfficeName: sr.RequestingOffice(),
		PersonnelNames:       strings.Join(names, ", "),
		DateStarted:          localDay(sr.CreatedAt, s.loc),
		DateCompleted:        &completed,
		ActivityName:         activity,
		IndicatorID:          indicatorID,
		Status:               model.AccomplishmentStatusCompleted,
		Personnel:            sr.Personnel,
	}
	if err := tx.Accomplishment.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// localDay 取 t 在 loc 中的日历日，以 UTC 零点表示（写入 date 列）
func localDay(t time.Time, loc *time.Location) time.Time {
	if loc != nil {
		t = t.In(loc)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ────────────────────── AssignPersonnel ──────────────────────

func (s *requestService) AssignPersonnel(ctx context.Context, caller Caller, id string, userIDs []string) (*dto.AssignPersonnelResponse, error) {
	sr, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.CanManageUnit(sr.UnitID) {
		return nil, ErrForbidden
	}
	if isClosed(sr.Status) {
		return nil, ErrRequestClosed
	}

	ids := dedupe(userIDs)
	users, err := s.repo.User.ListByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("查询指派人员失败", zap.Error(err))
		return nil, err
	}
	if len(users) != len(ids) {
		return nil, ErrUserNotFound
	}
	for i := range users {
		u := &users[i]
		if u.Role != model.RolePersonnel || !u.IsActive() || u.UnitID == nil || *u.UnitID != sr.UnitID {
			return nil, ErrPersonnelNotInUnit
		}
	}

	if err := s.repo.Request.ReplacePersonnel(ctx, sr, users); err != nil {
		s.logger.Error("指派人员失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	busy, err := s.repo.Request.BusyPersonnel(ctx, ids, id)
	if err != nil {
		s.logger.Warn("查询人员忙碌状态失败", zap.Error(err))
		busy = map[string]int64{}
	}
	var warnings []string
	for i := range users {
		if n := busy[users[i].UserID]; n > 0 {
			warnings = append(warnings, fmt.Sprintf("%s is currently busy with %d task(s).", users[i].FullName(), n))
		}
	}

	resp, err := s.reload(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.AssignPersonnelResponse{Request: resp, BusyWarnings: warnings}, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func isClosed(status string) bool {
	return status == model.RequestCompleted || status == model.RequestCancelled
}

// ────────────────────── AssignMaterials ──────────────────────

func (s *requestService) AssignMaterials(ctx context.Context, caller Caller, id string, allocations []dto.MaterialAllocation) (*dto.ServiceRequestResponse, error) {
	sr, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.CanManageUnit(sr.UnitID) && !sr.HasPersonnel(caller.UserID) {
		return nil, ErrForbidden
	}
	if isClosed(sr.Status) {
		return nil, ErrRequestClosed
	}

	// 同一物料合并，数量 <= 0 的条目忽略
	wanted := make(map[string]int)
	var order []string
	for _, a := range allocations {
		if a.Quantity <= 0 {
			continue
		}
		if _, ok := wanted[a.ItemID]; !ok {
			order = append(order, a.ItemID)
		}
		wanted[a.ItemID] += a.Quantity
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		old, err := tx.Request.LockMaterials(ctx, id)
		if err != nil {
			return err
		}

		ids := append([]string(nil), order...)
		for _, m := range old {
			if _, ok := wanted[m.ItemID]; !ok {
				ids = append(ids, m.ItemID)
			}
		}
		items, err := tx.Inventory.LockByIDs(ctx, ids)
		if err != nil {
			return err
		}
		byID := make(map[string]*model.InventoryItem, len(items))
		stock := make(map[string]int, len(items))
		for i := range items {
			byID[items[i].ItemID] = &items[i]
			stock[items[i].ItemID] = items[i].Quantity
		}

		// 先在内存中完成归还与扣减校验，全部通过后才写库
		for _, m := range old {
			stock[m.ItemID] += m.Quantity
		}
		for _, itemID := range order {
			item, ok := byID[itemID]
			if !ok {
				return ErrItemNotFound
			}
			if item.UnitID != sr.UnitID || !item.IsActive {
				return fmt.Errorf("%w: %s", ErrItemNotOwned, item.Name)
			}
			if stock[itemID] < wanted[itemID] {
				return fmt.Errorf("%w: %s (available %d, requested %d)", ErrInsufficientStock, item.Name, stock[itemID], wanted[itemID])
			}
			stock[itemID] -= wanted[itemID]
		}

		for itemID, qty := range stock {
			if item := byID[itemID]; item != nil && item.Quantity != qty {
				if err := tx.Inventory.SetQuantity(ctx, itemID, qty); err != nil {
					return err
				}
			}
		}
		if err := tx.Request.DeleteMaterials(ctx, id); err != nil {
			return err
		}
		rows := make([]model.RequestMaterial, 0, len(order))
		for _, itemID := range order {
			rows = append(rows, model.RequestMaterial{RequestID: id, ItemID: itemID, Quantity: wanted[itemID]})
		}
		return tx.Request.CreateMaterials(ctx, rows)
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientStock) || errors.Is(err, ErrItemNotOwned) || errors.Is(err, ErrItemNotFound) {
			return nil, err
		}
		s.logger.Error("物料占用失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.reload(ctx, id)
}

// ────────────────────── AddReport ──────────────────────

func (s *requestService) AddReport(ctx context.Context, caller Caller, id, text string) (*dto.TaskReportResponse, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyReport
	}

	sr, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sr.HasPersonnel(caller.UserID) {
		return nil, ErrNotAssigned
	}

	report := &model.TaskReport{
		RequestID:   id,
		PersonnelID: caller.UserID,
		ReportText:  text,
		CreatedAt:   s.now(),
	}
	if err := s.repo.Request.AddReport(ctx, report); err != nil {
		s.logger.Error("保存执行记录失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	name := caller.UserID
	for i := range sr.Personnel {
		if sr.Personnel[i].UserID == caller.UserID {
			name = sr.Personnel[i].FullName()
		}
	}
	return &dto.TaskReportResponse{
		ID:            report.ReportID,
		PersonnelID:   caller.UserID,
		PersonnelName: name,
		ReportText:    report.ReportText,
		CreatedAt:     report.CreatedAt.Format(time.RFC3339),
	}, nil
}

// ────────────────────── SelectIndicator ──────────────────────

func (s *requestService) SelectIndicator(ctx context.Context, caller Caller, id, indicatorID string) (*dto.ServiceRequestResponse, error) {
	sr, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.CanManageUnit(sr.UnitID) && !sr.HasPersonnel(caller.UserID) {
		return nil, ErrForbidden
	}

	ind, err := s.unitIndicator(ctx, sr.UnitID, indicatorID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Request.UpdateFields(ctx, id, sr.Version, map[string]interface{}{"indicator_id": ind.IndicatorID}); err != nil {
		s.logger.Error("选择绩效指标失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.reload(ctx, id)
}

// ── 内部辅助 ──

func (s *requestService) get(ctx context.Context, id string) (*model.ServiceRequest, error) {
	sr, err := s.repo.Request.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		s.logger.Error("查询服务申请失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return sr, nil
}

func (s *requestService) reload(ctx context.Context, id string) (*dto.ServiceRequestResponse, error) {
	sr, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toRequestResponse(sr), nil
}

func (s *requestService) unitIndicator(ctx context.Context, unitID, indicatorID string) (*model.SuccessIndicator, error) {
	ind, err := s.repo.Indicator.GetByID(ctx, indicatorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIndicatorNotFound
		}
		return nil, err
	}
	if ind.UnitID != unitID {
		return nil, ErrIndicatorUnitMismatch
	}
	return ind, nil
}

func toRequestResponse(r *model.ServiceRequest) *dto.ServiceRequestResponse {
	resp := &dto.ServiceRequestResponse{
		ID:               r.RequestID,
		UnitID:           r.UnitID,
		RequestingOffice: r.RequestingOffice(),
		ActivityName:     r.ActivityName,
		Description:      r.Description,
		Status:           r.Status,
		IsEmergency:      r.IsEmergency,
		Personnel:        make([]dto.PersonnelRef, 0, len(r.Personnel)),
		Version:          r.Version,
		CreatedAt:        r.CreatedAt.Format(time.RFC3339),
	}
	if r.Unit != nil {
		resp.UnitName = r.Unit.Name
	}
	if r.RequestorID != nil {
		resp.RequestorID = *r.RequestorID
	}
	if r.Requestor != nil {
		resp.RequestorName = r.Requestor.FullName()
	} else if r.CustomFullName != "" {
		resp.RequestorName = r.CustomFullName
	}
	if r.ScheduleStart != nil {
		resp.ScheduleStart = r.ScheduleStart.Format(time.RFC3339)
	}
	if r.ScheduleEnd != nil {
		resp.ScheduleEnd = r.ScheduleEnd.Format(time.RFC3339)
	}
	if r.CompletedAt != nil {
		resp.CompletedAt = r.CompletedAt.Format(time.RFC3339)
	}
	if r.IndicatorID != nil {
		resp.IndicatorID = *r.IndicatorID
	}
	if r.Indicator != nil {
		resp.IndicatorCode = r.Indicator.Code
	}
	for i := range r.Personnel {
		resp.Personnel = append(resp.Personnel, dto.PersonnelRef{ID: r.Personnel[i].UserID, Name: r.Personnel[i].FullName()})
	}
	for _, m := range r.Materials {
		ref := dto.MaterialRef{ItemID: m.ItemID, Quantity: m.Quantity}
		if m.Item != nil {
			ref.Name = m.Item.Name
			ref.UnitOfMeasurement = m.Item.UnitOfMeasurement
		}
		resp.Materials = append(resp.Materials, ref)
	}
	for _, rep := range r.Reports {
		item := dto.TaskReportResponse{
			ID:          rep.ReportID,
			PersonnelID: rep.PersonnelID,
			ReportText:  rep.ReportText,
			CreatedAt:   rep.CreatedAt.Format(time.RFC3339),
		}
		if rep.Personnel != nil {
			item.PersonnelName = rep.Personnel.FullName()
		}
		resp.Reports = append(resp.Reports, item)
	}
	return resp
}
