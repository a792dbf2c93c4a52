package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gso-office/backend/internal/model"
)

// InventoryStats 库存统计
type InventoryStats struct {
	Total      int64 `json:"total"`
	LowStock   int64 `json:"low_stock"`
	OutOfStock int64 `json:"out_of_stock"`
}

// InventoryRepository 库存数据访问接口
type InventoryRepository interface {
	Create(ctx context.Context, item *model.InventoryItem) error
	GetByID(ctx context.Context, id string) (*model.InventoryItem, error)
	// ListByUnit 单元库存，query 非空时按名称/分类/描述模糊匹配
	ListByUnit(ctx context.Context, unitID, query string) ([]model.InventoryItem, error)
	Update(ctx context.Context, item *model.InventoryItem) error
	// LockByIDs SELECT ... FOR UPDATE，必须在事务内调用
	LockByIDs(ctx context.Context, ids []string) ([]model.InventoryItem, error)
	// SetQuantity 直接写入库存数量（调用方已持有行锁并完成校验）
	SetQuantity(ctx context.Context, id string, quantity int) error
	Stats(ctx context.Context, lowThreshold int) (*InventoryStats, error)
}

type inventoryRepo struct {
	db *gorm.DB
}

// NewInventoryRepo 创建 InventoryRepository 实例
func NewInventoryRepo(db *gorm.DB) InventoryRepository {
	return &inventoryRepo{db: db}
}

func (r *inventoryRepo) Create(ctx context.Context, item *model.InventoryItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *inventoryRepo) GetByID(ctx context.Context, id string) (*model.InventoryItem, error) {
	var item model.InventoryItem
	err := r.db.WithContext(ctx).Where("item_id = ?", id).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *inventoryRepo) ListByUnit(ctx context.Context, unitID, query string) ([]model.InventoryItem, error) {
	var items []model.InventoryItem
	db := r.db.WithContext(ctx).Where("unit_id = ? AND is_active = ?", unitID, true)
	if query != "" {
		like := "%" + query + "%"
		db = db.Where("name ILIKE ? OR category ILIKE ? OR description ILIKE ?", like, like, like)
	}
	err := db.Order("name ASC").Find(&items).Error
	return items, err
}

func (r *inventoryRepo) Update(ctx context.Context, item *model.InventoryItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *inventoryRepo) LockByIDs(ctx context.Context, ids []string) ([]model.InventoryItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []model.InventoryItem
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("item_id IN ?", ids).
		Order("item_id").
		Find(&items).Error
	return items, err
}

func (r *inventoryRepo) SetQuantity(ctx context.Context, id string, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&model.InventoryItem{}).
		Where("item_id = ?", id).
		Update("quantity", quantity).Error
}

func (r *inventoryRepo) Stats(ctx context.Context, lowThreshold int) (*InventoryStats, error) {
	var stats InventoryStats
	err := r.db.WithContext(ctx).
		Model(&model.InventoryItem{}).
		Select(
			"COUNT(*) AS total, "+
				"COUNT(*) FILTER (WHERE quantity <= ?) AS low_stock, "+
				"COUNT(*) FILTER (WHERE quantity = 0) AS out_of_stock", lowThreshold).
		Where("is_active = ?", true).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
