package repository

import (
	"context"

	"gorm.io/gorm"

	"gso-office/backend/internal/model"
)

// IndicatorRepository 绩效指标数据访问接口
type IndicatorRepository interface {
	Create(ctx context.Context, indicator *model.SuccessIndicator) error
	GetByID(ctx context.Context, id string) (*model.SuccessIndicator, error)
	// FindByCode 单元内按编码查找（不区分大小写），多条时取最早创建的一条
	FindByCode(ctx context.Context, unitID, code string) (*model.SuccessIndicator, error)
	ListByUnit(ctx context.Context, unitID string, activeOnly bool) ([]model.SuccessIndicator, error)
	Update(ctx context.Context, indicator *model.SuccessIndicator) error
}

type indicatorRepo struct {
	db *gorm.DB
}

// NewIndicatorRepo 创建 IndicatorRepository 实例
func NewIndicatorRepo(db *gorm.DB) IndicatorRepository {
	return &indicatorRepo{db: db}
}

func (r *indicatorRepo) Create(ctx context.Context, indicator *model.SuccessIndicator) error {
	return r.db.WithContext(ctx).Create(indicator).Error
}

func (r *indicatorRepo) GetByID(ctx context.Context, id string) (*model.SuccessIndicator, error) {
	var ind model.SuccessIndicator
	err := r.db.WithContext(ctx).Where("indicator_id = ?", id).First(&ind).Error
	if err != nil {
		return nil, err
	}
	return &ind, nil
}

func (r *indicatorRepo) FindByCode(ctx context.Context, unitID, code string) (*model.SuccessIndicator, error) {
	var ind model.SuccessIndicator
	err := r.db.WithContext(ctx).
		Where("unit_id = ? AND lower(code) = lower(?)", unitID, code).
		Order("created_at ASC").
		First(&ind).Error
	if err != nil {
		return nil, err
	}
	return &ind, nil
}

func (r *indicatorRepo) ListByUnit(ctx context.Context, unitID string, activeOnly bool) ([]model.SuccessIndicator, error) {
	var list []model.SuccessIndicator
	db := r.db.WithContext(ctx).Where("unit_id = ?", unitID)
	if activeOnly {
		db = db.Where("is_active = ?", true)
	}
	err := db.Order("code ASC").Find(&list).Error
	return list, err
}

func (r *indicatorRepo) Update(ctx context.Context, indicator *model.SuccessIndicator) error {
	return r.db.WithContext(ctx).Save(indicator).Error
}
