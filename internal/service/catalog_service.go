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

// ── 目录模块业务错误 ──

var ErrIndicatorCodeExists = errors.New("该单元下指标编码已存在")

// CatalogService 单元、人员、绩效指标的查询与维护
type CatalogService interface {
	ListUnits(ctx context.Context) ([]dto.UnitResponse, error)
	ListDepartments(ctx context.Context) ([]dto.DepartmentResponse, error)
	// ListPersonnel 单元内启用的人员，附带是否仍有未完成任务
	ListPersonnel(ctx context.Context, unitID string) ([]dto.PersonnelResponse, error)
	ListIndicators(ctx context.Context, req *dto.IndicatorListRequest) ([]dto.IndicatorResponse, error)
	CreateIndicator(ctx context.Context, caller Caller, req *dto.CreateIndicatorRequest) (*dto.IndicatorResponse, error)
	UpdateIndicator(ctx context.Context, caller Caller, id string, req *dto.UpdateIndicatorRequest) (*dto.IndicatorResponse, error)
}

type catalogService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCatalogService 创建 CatalogService 实例
func NewCatalogService(repo *repository.Repository, logger *zap.Logger) CatalogService {
	return &catalogService{repo: repo, logger: logger}
}

func (s *catalogService) ListUnits(ctx context.Context) ([]dto.UnitResponse, error) {
	units, err := s.repo.Unit.List(ctx)
	if err != nil {
		s.logger.Error("列出单元失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.UnitResponse, 0, len(units))
	for _, u := range units {
		item := dto.UnitResponse{ID: u.UnitID, Name: u.Name}
		if u.Head != nil {
			item.HeadID = u.Head.UserID
			item.HeadName = u.Head.FullName()
		}
		result = append(result, item)
	}
	return result, nil
}

func (s *catalogService) ListDepartments(ctx context.Context) ([]dto.DepartmentResponse, error) {
	depts, err := s.repo.Department.List(ctx)
	if err != nil {
		s.logger.Error("列出申请部门失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.DepartmentResponse, 0, len(depts))
	for _, d := range depts {
		result = append(result, dto.DepartmentResponse{ID: d.DepartmentID, Name: d.Name, Description: d.Description})
	}
	return result, nil
}

func (s *catalogService) ListPersonnel(ctx context.Context, unitID string) ([]dto.PersonnelResponse, error) {
	if _, err := s.repo.Unit.GetByID(ctx, unitID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnitNotFound
		}
		s.logger.Error("查询单元失败", zap.String("unit_id", unitID), zap.Error(err))
		return nil, err
	}

	users, err := s.repo.User.ListByUnit(ctx, unitID, model.RolePersonnel, true)
	if err != nil {
		s.logger.Error("列出单元人员失败", zap.String("unit_id", unitID), zap.Error(err))
		return nil, err
	}

	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.UserID)
	}
	busy, err := s.repo.Request.BusyPersonnel(ctx, ids, "")
	if err != nil {
		s.logger.Warn("查询人员忙碌状态失败，按空闲处理", zap.Error(err))
		busy = map[string]int64{}
	}

	result := make([]dto.PersonnelResponse, 0, len(users))
	for i := range users {
		u := &users[i]
		result = append(result, dto.PersonnelResponse{
			ID:       u.UserID,
			Username: u.Username,
			FullName: u.FullName(),
			Email:    u.Email,
			Busy:     busy[u.UserID] > 0,
		})
	}
	return result, nil
}

func (s *catalogService) ListIndicators(ctx context.Context, req *dto.IndicatorListRequest) ([]dto.IndicatorResponse, error) {
	list, err := s.repo.Indicator.ListByUnit(ctx, req.UnitID, req.ActiveOnly)
	if err != nil {
		s.logger.Error("列出绩效指标失败", zap.String("unit_id", req.UnitID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.IndicatorResponse, 0, len(list))
	for i := range list {
		result = append(result, toIndicatorResponse(&list[i]))
	}
	return result, nil
}

func (s *catalogService) CreateIndicator(ctx context.Context, caller Caller, req *dto.CreateIndicatorRequest) (*dto.IndicatorResponse, error) {
	if !caller.CanManageUnit(req.UnitID) {
		return nil, ErrForbidden
	}
	if _, err := s.repo.Unit.GetByID(ctx, req.UnitID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnitNotFound
		}
		return nil, err
	}

	code := strings.TrimSpace(req.Code)
	existing, err := s.repo.Indicator.FindByCode(ctx, req.UnitID, code)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询绩效指标失败", zap.Error(err))
		return nil, err
	}
	if existing != nil {
		return nil, ErrIndicatorCodeExists
	}

	ind := &model.SuccessIndicator{
		UnitID:      req.UnitID,
		Code:        code,
		Description: strings.TrimSpace(req.Description),
		IsActive:    true,
	}
	if err := s.repo.Indicator.Create(ctx, ind); err != nil {
		s.logger.Error("创建绩效指标失败", zap.Error(err))
		return nil, err
	}

	resp := toIndicatorResponse(ind)
	return &resp, nil
}

// UpdateIndicator 修改指标；编码改名后已保存的汇总行仍按指标 ID 关联
func (s *catalogService) UpdateIndicator(ctx context.Context, caller Caller, id string, req *dto.UpdateIndicatorRequest) (*dto.IndicatorResponse, error) {
	ind, err := s.repo.Indicator.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIndicatorNotFound
		}
		s.logger.Error("查询绩效指标失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if !caller.CanManageUnit(ind.UnitID) {
		return nil, ErrForbidden
	}

	if req.Code != nil {
		code := strings.TrimSpace(*req.Code)
		if !strings.EqualFold(code, ind.Code) {
			existing, err := s.repo.Indicator.FindByCode(ctx, ind.UnitID, code)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			if existing != nil && existing.IndicatorID != ind.IndicatorID {
				return nil, ErrIndicatorCodeExists
			}
		}
		ind.Code = code
	}
	if req.Description != nil {
		ind.Description = strings.TrimSpace(*req.Description)
	}
	if req.IsActive != nil {
		ind.IsActive = *req.IsActive
	}

	if err := s.repo.Indicator.Update(ctx, ind); err != nil {
		s.logger.Error("更新绩效指标失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := toIndicatorResponse(ind)
	return &resp, nil
}

func toIndicatorResponse(ind *model.SuccessIndicator) dto.IndicatorResponse {
	return dto.IndicatorResponse{
		ID:          ind.IndicatorID,
		UnitID:      ind.UnitID,
		Code:        ind.Code,
		Description: ind.Description,
		IsActive:    ind.IsActive,
	}
}
