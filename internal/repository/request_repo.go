package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gso-office/backend/internal/model"
	pkgerrors "gso-office/backend/pkg/errors"
)

// RequestFilter 服务申请列表过滤条件
type RequestFilter struct {
	UnitID      string
	RequestorID string
	PersonnelID string
	Statuses    []string
	Query       string
	Offset      int
	Limit       int
}

// RequestRepository 服务申请数据访问接口
type RequestRepository interface {
	Create(ctx context.Context, req *model.ServiceRequest) error
	// GetByID 加载申请及其单元、部门、人员、物料、执行记录
	GetByID(ctx context.Context, id string) (*model.ServiceRequest, error)
	List(ctx context.Context, filter RequestFilter) ([]model.ServiceRequest, int64, error)
	// UpdateFields 乐观锁更新：version 不匹配返回 ErrOptimisticLock
	UpdateFields(ctx context.Context, id string, version int, fields map[string]interface{}) error
	ReplacePersonnel(ctx context.Context, req *model.ServiceRequest, users []model.User) error
	// BusyPersonnel 统计人员未完成任务（Pending/Approved/In Progress）数量，排除指定申请
	BusyPersonnel(ctx context.Context, userIDs []string, excludeRequestID string) (map[string]int64, error)

	// ── 物料占用 ──
	LockMaterials(ctx context.Context, requestID string) ([]model.RequestMaterial, error)
	DeleteMaterials(ctx context.Context, requestID string) error
	CreateMaterials(ctx context.Context, materials []model.RequestMaterial) error

	AddReport(ctx context.Context, report *model.TaskReport) error
	// ListCompletedWithoutRecord 已完成但尚未生成工作记录的申请
	ListCompletedWithoutRecord(ctx context.Context, unitID string) ([]model.ServiceRequest, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

type requestRepo struct {
	db *gorm.DB
}

// NewRequestRepo 创建 RequestRepository 实例
func NewRequestRepo(db *gorm.DB) RequestRepository {
	return &requestRepo{db: db}
}

func (r *requestRepo) Create(ctx context.Context, req *model.ServiceRequest) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(req).Error
}

func (r *requestRepo) GetByID(ctx context.Context, id string) (*model.ServiceRequest, error) {
	var req model.ServiceRequest
	err := r.db.WithContext(ctx).
		Preload("Requestor").
		Preload("Unit").
		Preload("Department").
		Preload("Indicator").
		Preload("Personnel").
		Preload("Materials.Item").
		Preload("Reports", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Reports.Personnel").
		Where("request_id = ?", id).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepo) List(ctx context.Context, filter RequestFilter) ([]model.ServiceRequest, int64, error) {
	var list []model.ServiceRequest
	var total int64

	db := r.db.WithContext(ctx).Model(&model.ServiceRequest{})
	if filter.UnitID != "" {
		db = db.Where("unit_id = ?", filter.UnitID)
	}
	if filter.RequestorID != "" {
		db = db.Where("requestor_id = ?", filter.RequestorID)
	}
	if filter.PersonnelID != "" {
		db = db.Where("request_id IN (?)",
			r.db.Table("request_personnel").Select("request_id").Where("user_id = ?", filter.PersonnelID))
	}
	if len(filter.Statuses) > 0 {
		db = db.Where("status IN ?", filter.Statuses)
	}
	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		db = db.Where("activity_name ILIKE ? OR description ILIKE ? OR custom_full_name ILIKE ?", like, like, like)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit > 0 {
		db = db.Offset(filter.Offset).Limit(filter.Limit)
	}
	err := db.
		Preload("Unit").
		Preload("Department").
		Preload("Personnel").
		Order("is_emergency DESC, created_at DESC").
		Find(&list).Error
	return list, total, err
}

func (r *requestRepo) UpdateFields(ctx context.Context, id string, version int, fields map[string]interface{}) error {
	fields["version"] = gorm.Expr("version + 1")
	fields["updated_at"] = time.Now()

	result := r.db.WithContext(ctx).
		Model(&model.ServiceRequest{}).
		Where("request_id = ? AND version = ?", id, version).
		UpdateColumns(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}

func (r *requestRepo) ReplacePersonnel(ctx context.Context, req *model.ServiceRequest, users []model.User) error {
	assoc := r.db.WithContext(ctx).Model(req).Association("Personnel")
	if len(users) == 0 {
		return assoc.Clear()
	}
	return assoc.Replace(users)
}

func (r *requestRepo) BusyPersonnel(ctx context.Context, userIDs []string, excludeRequestID string) (map[string]int64, error) {
	busy := make(map[string]int64)
	if len(userIDs) == 0 {
		return busy, nil
	}

	var rows []struct {
		UserID string
		Count  int64
	}
	db := r.db.WithContext(ctx).
		Table("request_personnel rp").
		Select("rp.user_id AS user_id, COUNT(*) AS count").
		Joins("JOIN service_requests sr ON sr.request_id = rp.request_id").
		Where("rp.user_id IN ?", userIDs).
		Where("sr.status IN ?", []string{model.RequestPending, model.RequestApproved, model.RequestInProgress})
	if excludeRequestID != "" {
		db = db.Where("sr.request_id <> ?", excludeRequestID)
	}
	if err := db.Group("rp.user_id").Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		busy[row.UserID] = row.Count
	}
	return busy, nil
}

func (r *requestRepo) LockMaterials(ctx context.Context, requestID string) ([]model.RequestMaterial, error) {
	var list []model.RequestMaterial
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("request_id = ?", requestID).
		Find(&list).Error
	return list, err
}

func (r *requestRepo) DeleteMaterials(ctx context.Context, requestID string) error {
	return r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Delete(&model.RequestMaterial{}).Error
}

func (r *requestRepo) CreateMaterials(ctx context.Context, materials []model.RequestMaterial) error {
	if len(materials) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(&materials).Error
}

func (r *requestRepo) AddReport(ctx context.Context, report *model.TaskReport) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(report).Error
}

func (r *requestRepo) ListCompletedWithoutRecord(ctx context.Context, unitID string) ([]model.ServiceRequest, error) {
	var list []model.ServiceRequest
	db := r.db.WithContext(ctx).
		Where("status = ?", model.RequestCompleted).
		Where("NOT EXISTS (SELECT 1 FROM accomplishment_records ar WHERE ar.request_id = service_requests.request_id)")
	if unitID != "" {
		db = db.Where("unit_id = ?", unitID)
	}
	err := db.
		Preload("Unit").
		Preload("Department").
		Preload("Personnel").
		Preload("Indicator").
		Preload("Reports").
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

func (r *requestRepo) CountByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.ServiceRequest{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
