package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gso-office/backend/internal/model"
)

// RollupRepository 月度汇总行（IPMT）数据访问接口
type RollupRepository interface {
	// Upsert 按 (personnel_id, unit_id, period, indicator_id) 插入或更新，
	// 随后以 records 全量替换关联的工作记录。应在事务内调用。
	Upsert(ctx context.Context, entry *model.RollupEntry, records []model.AccomplishmentRecord) error
	ListByUnitPeriod(ctx context.Context, unitID, period string) ([]model.RollupEntry, error)
}

type rollupRepo struct {
	db *gorm.DB
}

// NewRollupRepo 创建 RollupRepository 实例
func NewRollupRepo(db *gorm.DB) RollupRepository {
	return &rollupRepo{db: db}
}

func (r *rollupRepo) Upsert(ctx context.Context, entry *model.RollupEntry, records []model.AccomplishmentRecord) error {
	db := r.db.WithContext(ctx)

	err := db.Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "personnel_id"}, {Name: "unit_id"}, {Name: "period"}, {Name: "indicator_id"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"accomplishment", "remarks", "updated_at"}),
		}).
		Create(entry).Error
	if err != nil {
		return err
	}

	// 冲突更新时 RETURNING 的主键不可靠，按唯一键回读
	var saved model.RollupEntry
	err = db.Where("personnel_id = ? AND unit_id = ? AND period = ? AND indicator_id = ?",
		entry.PersonnelID, entry.UnitID, entry.Period, entry.IndicatorID).
		First(&saved).Error
	if err != nil {
		return err
	}
	entry.EntryID = saved.EntryID
	entry.CreatedAt = saved.CreatedAt

	assoc := db.Model(entry).Association("Records")
	if len(records) == 0 {
		return assoc.Clear()
	}
	return assoc.Replace(records)
}

func (r *rollupRepo) ListByUnitPeriod(ctx context.Context, unitID, period string) ([]model.RollupEntry, error) {
	var list []model.RollupEntry
	err := r.db.WithContext(ctx).
		Preload("Personnel").
		Preload("Indicator").
		Preload("Records").
		Where("unit_id = ? AND period = ?", unitID, period).
		Order("personnel_id, created_at").
		Find(&list).Error
	return list, err
}
