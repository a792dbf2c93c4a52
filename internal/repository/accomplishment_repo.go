package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gso-office/backend/internal/model"
)

// AccomplishmentFilter 工作记录列表过滤条件
type AccomplishmentFilter struct {
	UnitID string
	Query  string
}

// AccomplishmentRepository 工作记录（WAR）数据访问接口
type AccomplishmentRepository interface {
	// Create 同时写入人员关联
	Create(ctx context.Context, rec *model.AccomplishmentRecord) error
	GetByID(ctx context.Context, id string) (*model.AccomplishmentRecord, error)
	GetByRequestID(ctx context.Context, requestID string) (*model.AccomplishmentRecord, error)
	// Save 全量保存标量字段（触发成本重算钩子），不处理关联
	Save(ctx context.Context, rec *model.AccomplishmentRecord) error
	// UpdateColumns 局部更新，不触发钩子
	UpdateColumns(ctx context.Context, id string, fields map[string]interface{}) error
	List(ctx context.Context, filter AccomplishmentFilter) ([]model.AccomplishmentRecord, error)
	// ListByUnitPeriod date_started ∈ [from, to)
	ListByUnitPeriod(ctx context.Context, unitID string, from, to time.Time) ([]model.AccomplishmentRecord, error)
	// ListByPersonnel 关联了该人员的单元内记录；ids 非空时进一步限定
	ListByPersonnel(ctx context.Context, personnelID, unitID string, ids []string) ([]model.AccomplishmentRecord, error)
}

type accomplishmentRepo struct {
	db *gorm.DB
}

// NewAccomplishmentRepo 创建 AccomplishmentRepository 实例
func NewAccomplishmentRepo(db *gorm.DB) AccomplishmentRepository {
	return &accomplishmentRepo{db: db}
}

func (r *accomplishmentRepo) Create(ctx context.Context, rec *model.AccomplishmentRecord) error {
	return r.db.WithContext(ctx).Omit("Unit", "Request", "Indicator").Create(rec).Error
}

// preloadAll 读取工作记录时需要的全部关联
func preloadAll(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Unit").
		Preload("Indicator").
		Preload("Personnel").
		Preload("Request").
		Preload("Request.Department").
		Preload("Request.Reports")
}

func (r *accomplishmentRepo) GetByID(ctx context.Context, id string) (*model.AccomplishmentRecord, error) {
	var rec model.AccomplishmentRecord
	err := preloadAll(r.db.WithContext(ctx)).
		Where("record_id = ?", id).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *accomplishmentRepo) GetByRequestID(ctx context.Context, requestID string) (*model.AccomplishmentRecord, error) {
	var rec model.AccomplishmentRecord
	err := preloadAll(r.db.WithContext(ctx)).
		Where("request_id = ?", requestID).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *accomplishmentRepo) Save(ctx context.Context, rec *model.AccomplishmentRecord) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(rec).Error
}

func (r *accomplishmentRepo) UpdateColumns(ctx context.Context, id string, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()
	result := r.db.WithContext(ctx).
		Model(&model.AccomplishmentRecord{}).
		Where("record_id = ?", id).
		UpdateColumns(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *accomplishmentRepo) List(ctx context.Context, filter AccomplishmentFilter) ([]model.AccomplishmentRecord, error) {
	var list []model.AccomplishmentRecord
	db := preloadAll(r.db.WithContext(ctx))
	if filter.UnitID != "" {
		db = db.Where("unit_id = ?", filter.UnitID)
	}
	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		db = db.Where("activity_name ILIKE ? OR description ILIKE ? OR personnel_names ILIKE ? OR requesting_office_name ILIKE ?",
			like, like, like, like)
	}
	err := db.Order("date_started DESC").Find(&list).Error
	return list, err
}

func (r *accomplishmentRepo) ListByUnitPeriod(ctx context.Context, unitID string, from, to time.Time) ([]model.AccomplishmentRecord, error) {
	var list []model.AccomplishmentRecord
	err := r.db.WithContext(ctx).
		Preload("Indicator").
		Preload("Personnel").
		Where("unit_id = ? AND date_started >= ? AND date_started < ?",
			unitID, from.Format(time.DateOnly), to.Format(time.DateOnly)).
		Order("date_started ASC, created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *accomplishmentRepo) ListByPersonnel(ctx context.Context, personnelID, unitID string, ids []string) ([]model.AccomplishmentRecord, error) {
	var list []model.AccomplishmentRecord
	db := r.db.WithContext(ctx).
		Where("unit_id = ?", unitID).
		Where("record_id IN (?)",
			r.db.Table("accomplishment_personnel").Select("record_id").Where("user_id = ?", personnelID))
	if len(ids) > 0 {
		db = db.Where("record_id IN ?", ids)
	}
	err := db.Find(&list).Error
	return list, err
}
