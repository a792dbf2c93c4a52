package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"gso-office/backend/internal/model"
	"gso-office/backend/internal/repository"
	"gso-office/backend/internal/worker"
	pkgerrors "gso-office/backend/pkg/errors"
)

// ═══════════════════════════════════════════════════════════
// 内存版 Repository
//
// 所有 mock 共享同一个 memStore，返回值均为副本，模拟数据库读写边界。
// ═══════════════════════════════════════════════════════════

type memStore struct {
	seq int

	units       []*model.Unit
	departments []*model.Department
	users       []*model.User
	indicators  []*model.SuccessIndicator
	items       []*model.InventoryItem
	requests    []*model.ServiceRequest
	materials   []model.RequestMaterial
	reports     []model.TaskReport
	records     []*model.AccomplishmentRecord
	entries     []*model.RollupEntry
	batches     []*model.ImportBatch
}

func (s *memStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%03d", prefix, s.seq)
}

func (s *memStore) unit(id string) *model.Unit {
	for _, u := range s.units {
		if u.UnitID == id {
			return u
		}
	}
	return nil
}

func (s *memStore) user(id string) *model.User {
	for _, u := range s.users {
		if u.UserID == id {
			return u
		}
	}
	return nil
}

func (s *memStore) indicator(id *string) *model.SuccessIndicator {
	if id == nil {
		return nil
	}
	for _, ind := range s.indicators {
		if ind.IndicatorID == *id {
			cp := *ind
			return &cp
		}
	}
	return nil
}

func (s *memStore) item(id string) *model.InventoryItem {
	for _, it := range s.items {
		if it.ItemID == id {
			return it
		}
	}
	return nil
}

// newTestRepo 组装内存版 Repository 聚合（未绑定 *gorm.DB，Transaction 直接执行）
func newTestRepo() (*repository.Repository, *memStore) {
	st := &memStore{}
	repo := &repository.Repository{
		Unit:           &mockUnitRepo{st},
		Department:     &mockDeptRepo{st},
		User:           &mockUserRepo{st},
		Indicator:      &mockIndicatorRepo{st},
		Inventory:      &mockInventoryRepo{st},
		Request:        &mockRequestRepo{st},
		Accomplishment: &mockAccomplishmentRepo{st},
		Rollup:         &mockRollupRepo{st},
		ImportBatch:    &mockImportBatchRepo{st},
	}
	return repo, st
}

// ── 测试数据构造 ──

func (s *memStore) addUnit(name string) *model.Unit {
	u := &model.Unit{UnitID: s.nextID("unit"), Name: name}
	s.units = append(s.units, u)
	return u
}

func (s *memStore) addUser(username, first, last, role string, unitID string) *model.User {
	u := &model.User{
		UserID:        s.nextID("user"),
		Username:      username,
		FirstName:     first,
		LastName:      last,
		Role:          role,
		AccountStatus: model.AccountActive,
	}
	if unitID != "" {
		u.UnitID = &unitID
	}
	s.users = append(s.users, u)
	return u
}

func (s *memStore) addIndicator(unitID, code string) *model.SuccessIndicator {
	ind := &model.SuccessIndicator{IndicatorID: s.nextID("ind"), UnitID: unitID, Code: code, IsActive: true}
	s.indicators = append(s.indicators, ind)
	return ind
}

func (s *memStore) addItem(unitID, name string, qty int) *model.InventoryItem {
	it := &model.InventoryItem{ItemID: s.nextID("item"), UnitID: unitID, Name: name, Quantity: qty, UnitOfMeasurement: "pcs", IsActive: true}
	s.items = append(s.items, it)
	return it
}

func (s *memStore) addRecord(unitID string, day time.Time, desc string, ind *model.SuccessIndicator, people ...*model.User) *model.AccomplishmentRecord {
	rec := &model.AccomplishmentRecord{
		RecordID:     s.nextID("rec"),
		UnitID:       unitID,
		DateStarted:  day,
		ActivityName: "Task",
		Description:  desc,
		Status:       model.AccomplishmentStatusCompleted,
	}
	if ind != nil {
		rec.IndicatorID = &ind.IndicatorID
	}
	for _, p := range people {
		rec.Personnel = append(rec.Personnel, *p)
	}
	rec.CreatedAt = time.Now()
	s.records = append(s.records, rec)
	return rec
}

func (s *memStore) addRequest(unitID, status string, requestor *model.User, people ...*model.User) *model.ServiceRequest {
	sr := &model.ServiceRequest{
		RequestID:    s.nextID("req"),
		UnitID:       unitID,
		ActivityName: "Fix aircon",
		Description:  "Aircon in room 101 is leaking",
		Status:       status,
	}
	sr.Version = 1
	sr.CreatedAt = time.Date(2025, 9, 14, 18, 30, 0, 0, time.UTC)
	if requestor != nil {
		sr.RequestorID = &requestor.UserID
	}
	for _, p := range people {
		sr.Personnel = append(sr.Personnel, *p)
	}
	s.requests = append(s.requests, sr)
	return sr
}

// ── Mock UnitRepository ──

type mockUnitRepo struct{ st *memStore }

func (m *mockUnitRepo) Create(_ context.Context, unit *model.Unit) error {
	if unit.UnitID == "" {
		unit.UnitID = m.st.nextID("unit")
	}
	cp := *unit
	m.st.units = append(m.st.units, &cp)
	return nil
}

func (m *mockUnitRepo) GetByID(_ context.Context, id string) (*model.Unit, error) {
	if u := m.st.unit(id); u != nil {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUnitRepo) GetByName(_ context.Context, name string) (*model.Unit, error) {
	for _, u := range m.st.units {
		if strings.EqualFold(u.Name, name) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUnitRepo) List(_ context.Context) ([]model.Unit, error) {
	var result []model.Unit
	for _, u := range m.st.units {
		result = append(result, *u)
	}
	return result, nil
}

// ── Mock DepartmentRepository ──

type mockDeptRepo struct{ st *memStore }

func (m *mockDeptRepo) GetByID(_ context.Context, id string) (*model.Department, error) {
	for _, d := range m.st.departments {
		if d.DepartmentID == id {
			cp := *d
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDeptRepo) FirstOrCreate(_ context.Context, name string) (*model.Department, error) {
	for _, d := range m.st.departments {
		if d.Name == name {
			cp := *d
			return &cp, nil
		}
	}
	d := &model.Department{DepartmentID: m.st.nextID("dept"), Name: name}
	m.st.departments = append(m.st.departments, d)
	cp := *d
	return &cp, nil
}

func (m *mockDeptRepo) List(_ context.Context) ([]model.Department, error) {
	var result []model.Department
	for _, d := range m.st.departments {
		result = append(result, *d)
	}
	return result, nil
}

// ── Mock UserRepository ──

type mockUserRepo struct{ st *memStore }

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = m.st.nextID("user")
	}
	cp := *user
	m.st.users = append(m.st.users, &cp)
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u := m.st.user(id); u != nil {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.st.users {
		if strings.EqualFold(u.Username, username) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) ListByIDs(_ context.Context, ids []string) ([]model.User, error) {
	var result []model.User
	for _, id := range ids {
		if u := m.st.user(id); u != nil {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (m *mockUserRepo) ListByUnit(_ context.Context, unitID, role string, activeOnly bool) ([]model.User, error) {
	var result []model.User
	for _, u := range m.st.users {
		if u.UnitID == nil || *u.UnitID != unitID {
			continue
		}
		if role != "" && u.Role != role {
			continue
		}
		if activeOnly && !u.IsActive() {
			continue
		}
		result = append(result, *u)
	}
	return result, nil
}

// ── Mock IndicatorRepository ──

type mockIndicatorRepo struct{ st *memStore }

func (m *mockIndicatorRepo) Create(_ context.Context, ind *model.SuccessIndicator) error {
	if ind.IndicatorID == "" {
		ind.IndicatorID = m.st.nextID("ind")
	}
	cp := *ind
	m.st.indicators = append(m.st.indicators, &cp)
	return nil
}

func (m *mockIndicatorRepo) GetByID(_ context.Context, id string) (*model.SuccessIndicator, error) {
	if ind := m.st.indicator(&id); ind != nil {
		return ind, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockIndicatorRepo) FindByCode(_ context.Context, unitID, code string) (*model.SuccessIndicator, error) {
	for _, ind := range m.st.indicators {
		if ind.UnitID == unitID && strings.EqualFold(ind.Code, code) {
			cp := *ind
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockIndicatorRepo) ListByUnit(_ context.Context, unitID string, activeOnly bool) ([]model.SuccessIndicator, error) {
	var result []model.SuccessIndicator
	for _, ind := range m.st.indicators {
		if ind.UnitID == unitID && (!activeOnly || ind.IsActive) {
			result = append(result, *ind)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

func (m *mockIndicatorRepo) Update(_ context.Context, ind *model.SuccessIndicator) error {
	for i, existing := range m.st.indicators {
		if existing.IndicatorID == ind.IndicatorID {
			cp := *ind
			m.st.indicators[i] = &cp
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// ── Mock InventoryRepository ──

type mockInventoryRepo struct{ st *memStore }

func (m *mockInventoryRepo) Create(_ context.Context, item *model.InventoryItem) error {
	if item.ItemID == "" {
		item.ItemID = m.st.nextID("item")
	}
	cp := *item
	m.st.items = append(m.st.items, &cp)
	return nil
}

func (m *mockInventoryRepo) GetByID(_ context.Context, id string) (*model.InventoryItem, error) {
	if it := m.st.item(id); it != nil {
		cp := *it
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockInventoryRepo) ListByUnit(_ context.Context, unitID, query string) ([]model.InventoryItem, error) {
	var result []model.InventoryItem
	for _, it := range m.st.items {
		if it.UnitID != unitID || !it.IsActive {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(it.Name+" "+it.Category+" "+it.Description), strings.ToLower(query)) {
			continue
		}
		result = append(result, *it)
	}
	return result, nil
}

func (m *mockInventoryRepo) Update(_ context.Context, item *model.InventoryItem) error {
	for i, it := range m.st.items {
		if it.ItemID == item.ItemID {
			cp := *item
			m.st.items[i] = &cp
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockInventoryRepo) LockByIDs(_ context.Context, ids []string) ([]model.InventoryItem, error) {
	var result []model.InventoryItem
	for _, id := range ids {
		if it := m.st.item(id); it != nil {
			result = append(result, *it)
		}
	}
	return result, nil
}

func (m *mockInventoryRepo) SetQuantity(_ context.Context, id string, quantity int) error {
	if it := m.st.item(id); it != nil {
		it.Quantity = quantity
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (m *mockInventoryRepo) Stats(_ context.Context, lowThreshold int) (*repository.InventoryStats, error) {
	var stats repository.InventoryStats
	for _, it := range m.st.items {
		if !it.IsActive {
			continue
		}
		stats.Total++
		if it.Quantity <= lowThreshold {
			stats.LowStock++
		}
		if it.Quantity == 0 {
			stats.OutOfStock++
		}
	}
	return &stats, nil
}

// ── Mock RequestRepository ──

type mockRequestRepo struct{ st *memStore }

func (m *mockRequestRepo) find(id string) *model.ServiceRequest {
	for _, r := range m.st.requests {
		if r.RequestID == id {
			return r
		}
	}
	return nil
}

// hydrate 返回带关联的副本
func (m *mockRequestRepo) hydrate(r *model.ServiceRequest) *model.ServiceRequest {
	cp := *r
	cp.Personnel = append([]model.User(nil), r.Personnel...)
	if u := m.st.unit(r.UnitID); u != nil {
		uc := *u
		cp.Unit = &uc
	}
	if r.RequestorID != nil {
		cp.Requestor = m.st.user(*r.RequestorID)
	}
	cp.Indicator = m.st.indicator(r.IndicatorID)
	cp.Materials = nil
	for _, mat := range m.st.materials {
		if mat.RequestID == r.RequestID {
			if it := m.st.item(mat.ItemID); it != nil {
				ic := *it
				mat.Item = &ic
			}
			cp.Materials = append(cp.Materials, mat)
		}
	}
	cp.Reports = nil
	for _, rep := range m.st.reports {
		if rep.RequestID == r.RequestID {
			rep.Personnel = m.st.user(rep.PersonnelID)
			cp.Reports = append(cp.Reports, rep)
		}
	}
	return &cp
}

func (m *mockRequestRepo) Create(_ context.Context, req *model.ServiceRequest) error {
	if req.RequestID == "" {
		req.RequestID = m.st.nextID("req")
	}
	req.Version = 1
	req.CreatedAt = time.Now()
	cp := *req
	m.st.requests = append(m.st.requests, &cp)
	return nil
}

func (m *mockRequestRepo) GetByID(_ context.Context, id string) (*model.ServiceRequest, error) {
	if r := m.find(id); r != nil {
		return m.hydrate(r), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRequestRepo) List(_ context.Context, filter repository.RequestFilter) ([]model.ServiceRequest, int64, error) {
	var result []model.ServiceRequest
	for _, r := range m.st.requests {
		if filter.UnitID != "" && r.UnitID != filter.UnitID {
			continue
		}
		if filter.RequestorID != "" && (r.RequestorID == nil || *r.RequestorID != filter.RequestorID) {
			continue
		}
		if filter.PersonnelID != "" && !r.HasPersonnel(filter.PersonnelID) {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, r.Status) {
			continue
		}
		result = append(result, *m.hydrate(r))
	}
	total := int64(len(result))
	if filter.Limit > 0 {
		end := filter.Offset + filter.Limit
		if filter.Offset > len(result) {
			filter.Offset = len(result)
		}
		if end > len(result) {
			end = len(result)
		}
		result = result[filter.Offset:end]
	}
	return result, total, nil
}

func (m *mockRequestRepo) UpdateFields(_ context.Context, id string, version int, fields map[string]interface{}) error {
	r := m.find(id)
	if r == nil || r.Version != version {
		return pkgerrors.ErrOptimisticLock
	}
	for k, v := range fields {
		switch k {
		case "status":
			r.Status = v.(string)
		case "is_emergency":
			r.IsEmergency = v.(bool)
		case "description":
			r.Description = v.(string)
		case "indicator_id":
			s := v.(string)
			r.IndicatorID = &s
		case "completed_at":
			t := v.(time.Time)
			r.CompletedAt = &t
		}
	}
	r.Version++
	return nil
}

func (m *mockRequestRepo) ReplacePersonnel(_ context.Context, req *model.ServiceRequest, users []model.User) error {
	r := m.find(req.RequestID)
	if r == nil {
		return gorm.ErrRecordNotFound
	}
	r.Personnel = append([]model.User(nil), users...)
	return nil
}

func (m *mockRequestRepo) BusyPersonnel(_ context.Context, userIDs []string, excludeRequestID string) (map[string]int64, error) {
	busy := make(map[string]int64)
	open := []string{model.RequestPending, model.RequestApproved, model.RequestInProgress}
	for _, r := range m.st.requests {
		if r.RequestID == excludeRequestID || !containsStatus(open, r.Status) {
			continue
		}
		for _, id := range userIDs {
			if r.HasPersonnel(id) {
				busy[id]++
			}
		}
	}
	return busy, nil
}

func (m *mockRequestRepo) LockMaterials(_ context.Context, requestID string) ([]model.RequestMaterial, error) {
	var result []model.RequestMaterial
	for _, mat := range m.st.materials {
		if mat.RequestID == requestID {
			result = append(result, mat)
		}
	}
	return result, nil
}

func (m *mockRequestRepo) DeleteMaterials(_ context.Context, requestID string) error {
	kept := m.st.materials[:0]
	for _, mat := range m.st.materials {
		if mat.RequestID != requestID {
			kept = append(kept, mat)
		}
	}
	m.st.materials = kept
	return nil
}

func (m *mockRequestRepo) CreateMaterials(_ context.Context, materials []model.RequestMaterial) error {
	for _, mat := range materials {
		mat.AllocationID = m.st.nextID("alloc")
		m.st.materials = append(m.st.materials, mat)
	}
	return nil
}

func (m *mockRequestRepo) AddReport(_ context.Context, report *model.TaskReport) error {
	report.ReportID = m.st.nextID("report")
	m.st.reports = append(m.st.reports, *report)
	return nil
}

func (m *mockRequestRepo) ListCompletedWithoutRecord(_ context.Context, unitID string) ([]model.ServiceRequest, error) {
	var result []model.ServiceRequest
	for _, r := range m.st.requests {
		if r.Status != model.RequestCompleted || (unitID != "" && r.UnitID != unitID) {
			continue
		}
		linked := false
		for _, rec := range m.st.records {
			if rec.RequestID != nil && *rec.RequestID == r.RequestID {
				linked = true
			}
		}
		if !linked {
			result = append(result, *m.hydrate(r))
		}
	}
	return result, nil
}

func (m *mockRequestRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, r := range m.st.requests {
		counts[r.Status]++
	}
	return counts, nil
}

// ── Mock AccomplishmentRepository ──

type mockAccomplishmentRepo struct{ st *memStore }

func (m *mockAccomplishmentRepo) hydrate(r *model.AccomplishmentRecord) *model.AccomplishmentRecord {
	cp := *r
	cp.Personnel = append([]model.User(nil), r.Personnel...)
	cp.Indicator = m.st.indicator(r.IndicatorID)
	if u := m.st.unit(r.UnitID); u != nil {
		uc := *u
		cp.Unit = &uc
	}
	if r.RequestID != nil {
		for _, req := range m.st.requests {
			if req.RequestID == *r.RequestID {
				cp.Request = (&mockRequestRepo{m.st}).hydrate(req)
			}
		}
	}
	return &cp
}

func (m *mockAccomplishmentRepo) Create(_ context.Context, rec *model.AccomplishmentRecord) error {
	if rec.RecordID == "" {
		rec.RecordID = m.st.nextID("rec")
	}
	_ = rec.BeforeSave(nil)
	rec.CreatedAt = time.Now()
	cp := *rec
	cp.Personnel = append([]model.User(nil), rec.Personnel...)
	m.st.records = append(m.st.records, &cp)
	return nil
}

func (m *mockAccomplishmentRepo) GetByID(_ context.Context, id string) (*model.AccomplishmentRecord, error) {
	for _, r := range m.st.records {
		if r.RecordID == id {
			return m.hydrate(r), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAccomplishmentRepo) GetByRequestID(_ context.Context, requestID string) (*model.AccomplishmentRecord, error) {
	for _, r := range m.st.records {
		if r.RequestID != nil && *r.RequestID == requestID {
			return m.hydrate(r), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAccomplishmentRepo) Save(_ context.Context, rec *model.AccomplishmentRecord) error {
	_ = rec.BeforeSave(nil)
	for i, r := range m.st.records {
		if r.RecordID == rec.RecordID {
			cp := *rec
			cp.Personnel = r.Personnel
			m.st.records[i] = &cp
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockAccomplishmentRepo) UpdateColumns(_ context.Context, id string, fields map[string]interface{}) error {
	for _, r := range m.st.records {
		if r.RecordID != id {
			continue
		}
		for k, v := range fields {
			switch k {
			case "description":
				r.Description = v.(string)
			case "indicator_id":
				s := v.(string)
				r.IndicatorID = &s
			}
		}
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (m *mockAccomplishmentRepo) List(_ context.Context, filter repository.AccomplishmentFilter) ([]model.AccomplishmentRecord, error) {
	var result []model.AccomplishmentRecord
	for _, r := range m.st.records {
		if filter.UnitID != "" && r.UnitID != filter.UnitID {
			continue
		}
		result = append(result, *m.hydrate(r))
	}
	return result, nil
}

func (m *mockAccomplishmentRepo) ListByUnitPeriod(_ context.Context, unitID string, from, to time.Time) ([]model.AccomplishmentRecord, error) {
	var result []model.AccomplishmentRecord
	for _, r := range m.st.records {
		if r.UnitID == unitID && !r.DateStarted.Before(from) && r.DateStarted.Before(to) {
			result = append(result, *m.hydrate(r))
		}
	}
	return result, nil
}

func (m *mockAccomplishmentRepo) ListByPersonnel(_ context.Context, personnelID, unitID string, ids []string) ([]model.AccomplishmentRecord, error) {
	var result []model.AccomplishmentRecord
	for _, r := range m.st.records {
		if r.UnitID != unitID || !r.HasPersonnel(personnelID) {
			continue
		}
		if len(ids) > 0 && !containsStatus(ids, r.RecordID) {
			continue
		}
		result = append(result, *r)
	}
	return result, nil
}

// ── Mock RollupRepository ──

type mockRollupRepo struct {
	st *memStore
}

func (m *mockRollupRepo) Upsert(_ context.Context, entry *model.RollupEntry, records []model.AccomplishmentRecord) error {
	for _, e := range m.st.entries {
		if e.PersonnelID == entry.PersonnelID && e.UnitID == entry.UnitID &&
			e.Period == entry.Period && e.IndicatorID == entry.IndicatorID {
			e.Accomplishment = entry.Accomplishment
			e.Remarks = entry.Remarks
			e.Records = append([]model.AccomplishmentRecord(nil), records...)
			entry.EntryID = e.EntryID
			return nil
		}
	}
	entry.EntryID = m.st.nextID("entry")
	cp := *entry
	cp.Records = append([]model.AccomplishmentRecord(nil), records...)
	m.st.entries = append(m.st.entries, &cp)
	return nil
}

func (m *mockRollupRepo) ListByUnitPeriod(_ context.Context, unitID, period string) ([]model.RollupEntry, error) {
	var result []model.RollupEntry
	for _, e := range m.st.entries {
		if e.UnitID != unitID || e.Period != period {
			continue
		}
		cp := *e
		cp.Personnel = m.st.user(e.PersonnelID)
		cp.Indicator = m.st.indicator(&e.IndicatorID)
		result = append(result, cp)
	}
	return result, nil
}

// ── Mock ImportBatchRepository ──

type mockImportBatchRepo struct{ st *memStore }

func (m *mockImportBatchRepo) Create(_ context.Context, batch *model.ImportBatch) error {
	batch.BatchID = m.st.nextID("batch")
	cp := *batch
	m.st.batches = append(m.st.batches, &cp)
	return nil
}

func (m *mockImportBatchRepo) Update(_ context.Context, batch *model.ImportBatch) error {
	for i, b := range m.st.batches {
		if b.BatchID == batch.BatchID {
			cp := *batch
			m.st.batches[i] = &cp
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// ═══════════════════════════════════════════════════════════
// 外部协作方桩
// ═══════════════════════════════════════════════════════════

// stubSummarizer 记录收到的提示词，按 reply 生成结果
type stubSummarizer struct {
	mu      sync.Mutex
	prompts []string
	reply   func(prompt string) string
}

func (s *stubSummarizer) Generate(_ context.Context, prompt string) string {
	s.mu.Lock()
	s.prompts = append(s.prompts, prompt)
	s.mu.Unlock()
	if s.reply == nil {
		return "generated text"
	}
	return s.reply(prompt)
}

func (s *stubSummarizer) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

// stubQueue 只记录投递的任务，不执行
type stubQueue struct {
	mu   sync.Mutex
	jobs []worker.Job
	keys map[string]bool
}

func (q *stubQueue) Submit(job worker.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.keys == nil {
		q.keys = make(map[string]bool)
	}
	if q.keys[job.Key] {
		return worker.ErrDuplicate
	}
	q.keys[job.Key] = true
	q.jobs = append(q.jobs, job)
	return nil
}

// stubLocker 内存锁
type stubLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func (l *stubLocker) AcquireLock(_ context.Context, key string, _ time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held == nil {
		l.held = make(map[string]bool)
	}
	if l.held[key] {
		return false, nil
	}
	l.held[key] = true
	return true, nil
}

func (l *stubLocker) ReleaseLock(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
	return nil
}
