package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gso-office/backend/internal/dto"
	"gso-office/backend/internal/model"
	"gso-office/backend/internal/repository"
)

// ── 迁移导入模块业务错误 ──

var (
	ErrUnsupportedMigration = errors.New("不支持的迁移类型")
	ErrInvalidWorkbook      = errors.New("无法读取 Excel 文件")
	ErrEmptyWorkbook        = errors.New("Excel 文件没有数据行")
	ErrImportUnitRequired   = errors.New("缺少目标单元")
)

// 空白文本字段的默认值
const notApplicable = "N/A"

// ImportService Excel 迁移业务接口
//
// 设计说明：
//   - 读取第一个 Sheet，首行为表头；表头去空白、转小写、空格换成下划线
//   - 每行一个事务，单行失败记录为 "Row N: 原因" 并继续处理后续行
//   - 数值解析失败按 0 处理，空白文本默认 "N/A"（描述类字段默认空串）
//   - 导入结果写入 import_batches
type ImportService interface {
	Import(ctx context.Context, caller Caller, req *dto.ImportRequest, fileName string, r io.Reader) (*dto.ImportResult, error)
}

type importService struct {
	repo   *repository.Repository
	loc    *time.Location
	logger *zap.Logger
}

// NewImportService 创建 ImportService 实例
func NewImportService(repo *repository.Repository, loc *time.Location, logger *zap.Logger) ImportService {
	return &importService{repo: repo, loc: loc, logger: logger}
}

// errSkipRow 行被跳过（不计入成功或失败）
var errSkipRow = errors.New("skip")

// importRun 单次导入的上下文：目标单元与按名称缓存的单元
type importRun struct {
	caller Caller
	target *model.Unit
	units  map[string]*model.Unit
	people map[string][]model.User
}

type rowHandler func(ctx context.Context, tx *repository.Repository, run *importRun, row excelRow) error

func (s *importService) handler(migrationType string) rowHandler {
	switch migrationType {
	case model.ImportInventory:
		return s.importInventory
	case model.ImportServiceRequest:
		return s.importServiceRequest
	case model.ImportWorkReport:
		return s.importWorkReport
	case model.ImportRollup:
		return s.importRollup
	}
	return nil
}

// ═══════════════════════════════════════════════════════════
// Import — Excel 迁移入口
// ═══════════════════════════════════════════════════════════

func (s *importService) Import(ctx context.Context, caller Caller, req *dto.ImportRequest, fileName string, r io.Reader) (*dto.ImportResult, error) {
	handle := s.handler(req.MigrationType)
	if handle == nil {
		return nil, ErrUnsupportedMigration
	}
	if !caller.IsAdmin() && caller.Role != model.RoleUnitHead {
		return nil, ErrForbidden
	}

	run := &importRun{
		caller: caller,
		units:  make(map[string]*model.Unit),
		people: make(map[string][]model.User),
	}
	unitID := req.UnitID
	if caller.Role == model.RoleUnitHead {
		if unitID != "" && unitID != caller.UnitID {
			return nil, ErrForbidden
		}
		unitID = caller.UnitID
	}
	if unitID != "" {
		unit, err := resolveUnit(ctx, s.repo, unitID)
		if err != nil {
			return nil, err
		}
		run.target = unit
	}

	rows, err := readSheet(r)
	if err != nil {
		return nil, err
	}

	batch := &model.ImportBatch{
		MigrationType: req.MigrationType,
		FileName:      fileName,
	}
	if run.target != nil {
		batch.UnitID = &run.target.UnitID
	}
	if caller.UserID != "" {
		batch.UploadedBy = &caller.UserID
	}
	if err := s.repo.ImportBatch.Create(ctx, batch); err != nil {
		s.logger.Error("创建导入批次失败", zap.Error(err))
		return nil, err
	}

	result := &dto.ImportResult{BatchID: batch.BatchID}
	for i, row := range rows {
		err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
			return handle(ctx, tx, run, row)
		})
		switch {
		case err == nil:
			result.Imported++
		case errors.Is(err, errSkipRow):
			result.Skipped++
		default:
			// 首行为表头，数据行从第 2 行开始
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+2, err))
		}
	}

	result.Message = fmt.Sprintf("%d records imported successfully.", result.Imported)
	if n := len(result.Errors); n > 0 {
		result.Message += fmt.Sprintf(" %d rows failed to import.", n)
	}

	batch.Imported = result.Imported
	batch.Failed = len(result.Errors)
	batch.ResultMessage = result.Message
	batch.Processed = true
	if err := s.repo.ImportBatch.Update(ctx, batch); err != nil {
		s.logger.Warn("更新导入批次失败", zap.String("batch_id", batch.BatchID), zap.Error(err))
	}

	s.logger.Info("Excel 迁移完成",
		zap.String("type", req.MigrationType),
		zap.String("file", fileName),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", len(result.Errors)),
	)
	return result, nil
}

// ────────────────────── INVENTORY ──────────────────────

func (s *importService) importInventory(ctx context.Context, tx *repository.Repository, run *importRun, row excelRow) error {
	name := row.optText("name", "item_name")
	if name == "" {
		return errors.New("name is required")
	}
	unit, err := s.rowUnit(ctx, tx, run, row)
	if err != nil {
		return err
	}

	qty := row.integer("quantity")
	if qty < 0 {
		return ErrNegativeQuantity
	}
	return tx.Inventory.Create(ctx, &model.InventoryItem{
		Name:              name,
		Description:       row.optText("description"),
		Quantity:          qty,
		UnitOfMeasurement: row.text("unit_of_measurement", "uom"),
		Category:          row.text("category"),
		UnitID:            unit.UnitID,
		IsActive:          true,
	})
}

// ────────────────────── SERVICE_REQUEST ──────────────────────

var requestStatuses = []string{
	model.RequestPending, model.RequestApproved, model.RequestInProgress, model.RequestDoneForReview,
	model.RequestCompleted, model.RequestCancelled, model.RequestEmergency,
}

func (s *importService) importServiceRequest(ctx context.Context, tx *repository.Repository, run *importRun, row excelRow) error {
	unit, err := s.rowUnit(ctx, tx, run, row)
	if err != nil {
		return err
	}

	status := model.RequestPending
	if raw := row.optText("status"); raw != "" {
		status = ""
		for _, st := range requestStatuses {
			if strings.EqualFold(st, raw) {
				status = st
			}
		}
		if status == "" {
			return fmt.Errorf("invalid status %q", raw)
		}
	}

	sr := &model.ServiceRequest{
		UnitID:          unit.UnitID,
		CustomFullName:  row.optText("custom_full_name", "full_name"),
		CustomEmail:     row.optText("custom_email", "email"),
		CustomContact:   row.optText("custom_contact", "contact"),
		IsEmergency:     row.boolean("is_emergency"),
		ScheduleRemarks: row.optText("schedule_remarks"),
		ActivityName:    row.text("activity_name"),
		Description:     row.optText("description"),
		Status:          status,
	}
	if username := row.optText("requestor", "username"); username != "" {
		u, err := tx.User.GetByUsername(ctx, username)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("requestor %q not found", username)
			}
			return err
		}
		sr.RequestorID = &u.UserID
	}
	if dept := row.optText("department", "requesting_office"); dept != "" {
		d, err := tx.Department.FirstOrCreate(ctx, dept)
		if err != nil {
			return err
		}
		sr.DepartmentID = &d.DepartmentID
	}
	if t, ok := row.date("schedule_start", s.loc); ok {
		sr.ScheduleStart = &t
	}
	if t, ok := row.date("schedule_end", s.loc); ok {
		sr.ScheduleEnd = &t
	}
	if status == model.RequestCompleted {
		if t, ok := row.date("completed_at", s.loc); ok {
			sr.CompletedAt = &t
		}
	}
	return tx.Request.Create(ctx, sr)
}

// ────────────────────── WORK_REPORT ──────────────────────

func (s *importService) importWorkReport(ctx context.Context, tx *repository.Repository, run *importRun, row excelRow) error {
	activity := row.optText("activity_name", "activity")
	description := row.optText("description")
	if activity == "" && description == "" {
		return errSkipRow
	}

	unit, err := s.rowUnit(ctx, tx, run, row)
	if err != nil {
		return err
	}
	started, ok := row.date("date_started", nil)
	if !ok {
		return errors.New("invalid or missing date_started")
	}
	started = time.Date(started.Year(), started.Month(), started.Day(), 0, 0, 0, 0, time.UTC)

	names := row.optText("personnel_names", "personnel")
	if names == "" {
		names = UnassignedPersonnel
	}
	office := row.optText("requesting_office", "requesting_office_name", "department")
	if office == "" {
		office = unit.Name
	}
	if activity == "" {
		activity = notApplicable
	}

	rec := &model.AccomplishmentRecord{
		UnitID:               unit.UnitID,
		RequestingOfficeName: office,
		PersonnelNames:       names,
		DateStarted:          started,
		ActivityName:         activity,
		Description:          description,
		Status:               row.optText("status"),
		MaterialCost:         row.decimal("material_cost"),
		LaborCost:            row.decimal("labor_cost"),
	}
	if rec.Status == "" {
		rec.Status = model.AccomplishmentStatusCompleted
	}
	if t, ok := row.date("date_completed", nil); ok {
		d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		rec.DateCompleted = &d
	}
	if cn := row.optText("control_number", "control_no"); cn != "" {
		rec.ControlNumber = &cn
	}
	if code := row.optText("success_indicator", "indicator"); code != "" {
		ind, err := resolveIndicator(ctx, tx, unit.UnitID, code, "")
		if err != nil {
			return err
		}
		rec.IndicatorID = &ind.IndicatorID
	}

	// 能匹配到单元人员的姓名同时写入关联，其余仅保留在 personnel_names
	if names != UnassignedPersonnel {
		users, err := s.unitPeople(ctx, tx, run, unit.UnitID)
		if err != nil {
			return err
		}
		selected, _ := selectPersonnel(users, []string{names})
		rec.Personnel = selected
	}
	return tx.Accomplishment.Create(ctx, rec)
}

// ────────────────────── IPMT ──────────────────────

func (s *importService) importRollup(ctx context.Context, tx *repository.Repository, run *importRun, row excelRow) error {
	unit, err := s.rowUnit(ctx, tx, run, row)
	if err != nil {
		return err
	}

	period, err := parseImportPeriod(row.optText("month", "period"))
	if err != nil {
		return err
	}

	token := row.optText("personnel", "username")
	if token == "" {
		return errors.New("personnel is required")
	}
	users, err := s.unitPeople(ctx, tx, run, unit.UnitID)
	if err != nil {
		return err
	}
	person := matchPerson(users, token)
	if person == nil {
		return fmt.Errorf("personnel %q not found in unit", token)
	}

	accomplishment := row.optText("accomplishment")
	var ind *model.SuccessIndicator
	if id := row.optText("indicator_id"); id != "" {
		ind, err = tx.Indicator.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("indicator %s not found", id)
			}
			return err
		}
		if ind.UnitID != unit.UnitID {
			return ErrIndicatorUnitMismatch
		}
	} else {
		code := row.optText("success_indicator", "indicator")
		if code == "" {
			return errors.New("success_indicator is required")
		}
		if ind, err = resolveIndicator(ctx, tx, unit.UnitID, code, accomplishment); err != nil {
			return err
		}
	}

	remarks := row.optText("remarks")
	if remarks == "" {
		remarks = accomplishment
	}
	return tx.Rollup.Upsert(ctx, &model.RollupEntry{
		PersonnelID:    person.UserID,
		UnitID:         unit.UnitID,
		Period:         period.Label(),
		IndicatorID:    ind.IndicatorID,
		Accomplishment: accomplishment,
		Remarks:        remarks,
	}, nil)
}

// parseImportPeriod 支持 "2025-09" 与 "September 2025"
func parseImportPeriod(s string) (Period, error) {
	if p, err := ParsePeriod(s); err == nil {
		return p, nil
	}
	for _, layout := range []string{"January 2006", "Jan 2006", "01/2006"} {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return Period{Year: t.Year(), Month: t.Month()}, nil
		}
	}
	return Period{}, ErrInvalidPeriod
}

// ── 行级辅助 ──

// rowUnit 目标单元优先，否则按 unit 列的名称查找
func (s *importService) rowUnit(ctx context.Context, tx *repository.Repository, run *importRun, row excelRow) (*model.Unit, error) {
	if run.target != nil {
		return run.target, nil
	}
	name := row.optText("unit", "unit_name")
	if name == "" {
		return nil, ErrImportUnitRequired
	}
	key := strings.ToLower(name)
	if u, ok := run.units[key]; ok {
		return u, nil
	}
	u, err := resolveUnit(ctx, tx, name)
	if err != nil {
		if errors.Is(err, ErrUnitNotFound) {
			return nil, fmt.Errorf("unit %q not found", name)
		}
		return nil, err
	}
	if !run.caller.CanManageUnit(u.UnitID) {
		return nil, ErrForbidden
	}
	run.units[key] = u
	return u, nil
}

func (s *importService) unitPeople(ctx context.Context, tx *repository.Repository, run *importRun, unitID string) ([]model.User, error) {
	if users, ok := run.people[unitID]; ok {
		return users, nil
	}
	users, err := tx.User.ListByUnit(ctx, unitID, model.RolePersonnel, false)
	if err != nil {
		return nil, err
	}
	run.people[unitID] = users
	return users, nil
}

// ═══════════════════════════════════════════════════════════
// Excel 读取
// ═══════════════════════════════════════════════════════════

// excelRow 以规范化表头为键的一行数据
type excelRow map[string]string

// readSheet 读取第一个 Sheet，跳过全空行
func readSheet(r io.Reader) ([]excelRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyWorkbook
	}
	raw, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}
	if len(raw) < 2 {
		return nil, ErrEmptyWorkbook
	}

	headers := make([]string, len(raw[0]))
	for i, h := range raw[0] {
		headers[i] = NormalizeHeader(h)
	}

	rows := make([]excelRow, 0, len(raw)-1)
	for _, cells := range raw[1:] {
		row := make(excelRow, len(headers))
		empty := true
		for i, h := range headers {
			if h == "" || i >= len(cells) {
				continue
			}
			v := strings.TrimSpace(cells[i])
			if v != "" {
				empty = false
			}
			row[h] = v
		}
		if !empty {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// NormalizeHeader 表头规范化：去空白、转小写、空格换成下划线
func NormalizeHeader(h string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(h))), "_")
}

// optText 取第一个非空列，均为空时返回空串
func (r excelRow) optText(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(r[k]); v != "" {
			return v
		}
	}
	return ""
}

// text 同 optText，均为空时返回 "N/A"
func (r excelRow) text(keys ...string) string {
	if v := r.optText(keys...); v != "" {
		return v
	}
	return notApplicable
}

func (r excelRow) decimal(key string) decimal.Decimal {
	v := strings.ReplaceAll(r.optText(key), ",", "")
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero
	}
	return d.Round(2)
}

func (r excelRow) integer(key string) int {
	v := strings.ReplaceAll(r.optText(key), ",", "")
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return int(f)
	}
	return 0
}

func (r excelRow) boolean(key string) bool {
	switch strings.ToLower(r.optText(key)) {
	case "1", "true", "yes", "y":
		return true
	}
	return false
}

var dateLayouts = []string{
	time.DateOnly,
	time.DateTime,
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01-02-06",
	"1/2/06",
	"January 2, 2006",
	"Jan 2, 2006",
}

// date 解析日期；无时区的值在 loc 中解释（loc 为 nil 时按 UTC），
// 纯数字按 Excel 序列日期处理
func (r excelRow) date(key string, loc *time.Location) (time.Time, bool) {
	v := r.optText(key)
	if v == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			return t, true
		}
	}
	if serial, err := strconv.ParseFloat(v, 64); err == nil {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return NormalizeDate(t, true, loc), true
		}
	}
	return time.Time{}, false
}
