package repository

import (
	"context"

	"gorm.io/gorm"

	"gso-office/backend/internal/model"
)

// UnitRepository 服务单元数据访问接口
type UnitRepository interface {
	Create(ctx context.Context, unit *model.Unit) error
	GetByID(ctx context.Context, id string) (*model.Unit, error)
	GetByName(ctx context.Context, name string) (*model.Unit, error)
	List(ctx context.Context) ([]model.Unit, error)
}

type unitRepo struct {
	db *gorm.DB
}

// NewUnitRepo 创建 UnitRepository 实例
func NewUnitRepo(db *gorm.DB) UnitRepository {
	return &unitRepo{db: db}
}

func (r *unitRepo) Create(ctx context.Context, unit *model.Unit) error {
	return r.db.WithContext(ctx).Create(unit).Error
}

func (r *unitRepo) GetByID(ctx context.Context, id string) (*model.Unit, error) {
	var unit model.Unit
	err := r.db.WithContext(ctx).
		Preload("Head").
		Where("unit_id = ?", id).
		First(&unit).Error
	if err != nil {
		return nil, err
	}
	return &unit, nil
}

// GetByName 按名称查找（不区分大小写）
func (r *unitRepo) GetByName(ctx context.Context, name string) (*model.Unit, error) {
	var unit model.Unit
	err := r.db.WithContext(ctx).
		Where("lower(name) = lower(?)", name).
		First(&unit).Error
	if err != nil {
		return nil, err
	}
	return &unit, nil
}

func (r *unitRepo) List(ctx context.Context) ([]model.Unit, error) {
	var units []model.Unit
	err := r.db.WithContext(ctx).
		Preload("Head").
		Order("name ASC").
		Find(&units).Error
	return units, err
}
