package repository

import (
	"context"

	"gorm.io/gorm"

	"gso-office/backend/internal/model"
)

// ImportBatchRepository 迁移批次数据访问接口
type ImportBatchRepository interface {
	Create(ctx context.Context, batch *model.ImportBatch) error
	Update(ctx context.Context, batch *model.ImportBatch) error
}

type importBatchRepo struct {
	db *gorm.DB
}

// NewImportBatchRepo 创建 ImportBatchRepository 实例
func NewImportBatchRepo(db *gorm.DB) ImportBatchRepository {
	return &importBatchRepo{db: db}
}

func (r *importBatchRepo) Create(ctx context.Context, batch *model.ImportBatch) error {
	return r.db.WithContext(ctx).Create(batch).Error
}

func (r *importBatchRepo) Update(ctx context.Context, batch *model.ImportBatch) error {
	return r.db.WithContext(ctx).Save(batch).Error
}
