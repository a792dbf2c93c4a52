package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"gso-office/backend/internal/dto"
	"gso-office/backend/internal/model"
	"gso-office/backend/internal/repository"
)

// ── 库存模块业务错误 ──

var (
	ErrItemNotFound      = errors.New("物料不存在")
	ErrNegativeQuantity  = errors.New("库存数量不能为负数")
	ErrInsufficientStock = errors.New("库存不足")
	ErrItemNotOwned      = errors.New("物料不属于该申请的服务单元")
)

// InventoryService 库存业务接口
type InventoryService interface {
	List(ctx context.Context, req *dto.InventoryListRequest) ([]dto.InventoryItemResponse, error)
	Create(ctx context.Context, caller Caller, req *dto.CreateInventoryRequest) (*dto.InventoryItemResponse, error)
	Update(ctx context.Context, caller Caller, id string, req *dto.UpdateInventoryRequest) (*dto.InventoryItemResponse, error)
	Deactivate(ctx context.Context, caller Caller, id string) error
}

type inventoryService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewInventoryService 创建 InventoryService 实例
func NewInventoryService(repo *repository.Repository, logger *zap.Logger) InventoryService {
	return &inventoryService{repo: repo, logger: logger}
}

func (s *inventoryService) List(ctx context.Context, req *dto.InventoryListRequest) ([]dto.InventoryItemResponse, error) {
	items, err := s.repo.Inventory.ListByUnit(ctx, req.UnitID, strings.TrimSpace(req.Query))
	if err != nil {
		s.logger.Error("列出库存失败", zap.String("unit_id", req.UnitID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.InventoryItemResponse, 0, len(items))
	for i := range items {
		result = append(result, toInventoryResponse(&items[i]))
	}
	return result, nil
}

func (s *inventoryService) Create(ctx context.Context, caller Caller, req *dto.CreateInventoryRequest) (*dto.InventoryItemResponse, error) {
	if !caller.CanManageUnit(req.UnitID) {
		return nil, ErrForbidden
	}
	if req.Quantity < 0 {
		return nil, ErrNegativeQuantity
	}
	if _, err := s.repo.Unit.GetByID(ctx, req.UnitID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnitNotFound
		}
		return nil, err
	}

	uom := strings.TrimSpace(req.UnitOfMeasurement)
	if uom == "" {
		uom = "pcs"
	}
	item := &model.InventoryItem{
		Name:              strings.TrimSpace(req.Name),
		Description:       strings.TrimSpace(req.Description),
		Quantity:          req.Quantity,
		UnitOfMeasurement: uom,
		Category:          strings.TrimSpace(req.Category),
		UnitID:            req.UnitID,
		IsActive:          true,
	}
	if err := s.repo.Inventory.Create(ctx, item); err != nil {
		s.logger.Error("新增物料失败", zap.Error(err))
		return nil, err
	}

	resp := toInventoryResponse(item)
	return &resp, nil
}

func (s *inventoryService) Update(ctx context.Context, caller Caller, id string, req *dto.UpdateInventoryRequest) (*dto.InventoryItemResponse, error) {
	item, err := s.getItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.CanManageUnit(item.UnitID) {
		return nil, ErrForbidden
	}

	if req.Quantity != nil {
		if *req.Quantity < 0 {
			return nil, ErrNegativeQuantity
		}
		item.Quantity = *req.Quantity
	}
	if req.Name != nil {
		item.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		item.Description = strings.TrimSpace(*req.Description)
	}
	if req.UnitOfMeasurement != nil {
		item.UnitOfMeasurement = strings.TrimSpace(*req.UnitOfMeasurement)
	}
	if req.Category != nil {
		item.Category = strings.TrimSpace(*req.Category)
	}

	if err := s.repo.Inventory.Update(ctx, item); err != nil {
		s.logger.Error("更新物料失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := toInventoryResponse(item)
	return &resp, nil
}

func (s *inventoryService) Deactivate(ctx context.Context, caller Caller, id string) error {
	item, err := s.getItem(ctx, id)
	if err != nil {
		return err
	}
	if !caller.CanManageUnit(item.UnitID) {
		return ErrForbidden
	}

	item.IsActive = false
	if err := s.repo.Inventory.Update(ctx, item); err != nil {
		s.logger.Error("停用物料失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *inventoryService) getItem(ctx context.Context, id string) (*model.InventoryItem, error) {
	item, err := s.repo.Inventory.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		s.logger.Error("查询物料失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return item, nil
}

func toInventoryResponse(item *model.InventoryItem) dto.InventoryItemResponse {
	return dto.InventoryItemResponse{
		ID:                item.ItemID,
		UnitID:            item.UnitID,
		Name:              item.Name,
		Description:       item.Description,
		Quantity:          item.Quantity,
		UnitOfMeasurement: item.UnitOfMeasurement,
		Category:          item.Category,
		IsActive:          item.IsActive,
	}
}
