package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"gso-office/backend/internal/dto"
	"gso-office/backend/internal/model"
	"gso-office/backend/internal/repository"
)

// ── 工作记录模块业务错误 ──

var (
	ErrIndicatorNotFound     = errors.New("绩效指标不存在")
	ErrIndicatorUnitMismatch = errors.New("绩效指标不属于该单元")
	ErrEmptyDescription      = errors.New("描述不能为空")
)

// AccomplishmentService 工作记录业务接口
type AccomplishmentService interface {
	// ListReports 已完成但未生成记录的申请 + 全部工作记录，按日期倒序
	ListReports(ctx context.Context, caller Caller, req *dto.ReportListRequest) ([]dto.NormalizedReport, error)
	GetReport(ctx context.Context, id string) (*dto.NormalizedReport, error)
	UpdateIndicator(ctx context.Context, caller Caller, id, indicatorID string) (*dto.NormalizedReport, error)
	UpdateDescription(ctx context.Context, caller Caller, id, description string) (*dto.NormalizedReport, error)
	GetDescription(ctx context.Context, id string) (*dto.DescriptionResponse, error)
}

type accomplishmentService struct {
	repo   *repository.Repository
	gen    *DescriptionGenerator
	loc    *time.Location
	logger *zap.Logger
}

// NewAccomplishmentService 创建 AccomplishmentService 实例
func NewAccomplishmentService(repo *repository.Repository, gen *DescriptionGenerator, loc *time.Location, logger *zap.Logger) AccomplishmentService {
	return &accomplishmentService{repo: repo, gen: gen, loc: loc, logger: logger}
}

// ────────────────────── ListReports ──────────────────────

func (s *accomplishmentService) ListReports(ctx context.Context, caller Caller, req *dto.ReportListRequest) ([]dto.NormalizedReport, error) {
	unitID := ""
	if name := strings.TrimSpace(req.Unit); name != "" {
		unit, err := s.repo.Unit.GetByName(ctx, name)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return []dto.NormalizedReport{}, nil
			}
			s.logger.Error("查询单元失败", zap.String("unit", name), zap.Error(err))
			return nil, err
		}
		unitID = unit.UnitID
	}

	// 非管理员只能查看本单元
	if !caller.IsAdmin() {
		switch {
		case caller.UnitID == "":
			return []dto.NormalizedReport{}, nil
		case unitID == "":
			unitID = caller.UnitID
		case unitID != caller.UnitID:
			return nil, ErrForbidden
		}
	}

	requests, err := s.repo.Request.ListCompletedWithoutRecord(ctx, unitID)
	if err != nil {
		s.logger.Error("查询已完成申请失败", zap.Error(err))
		return nil, err
	}
	records, err := s.repo.Accomplishment.List(ctx, repository.AccomplishmentFilter{UnitID: unitID, Query: req.Query})
	if err != nil {
		s.logger.Error("查询工作记录失败", zap.Error(err))
		return nil, err
	}

	query := strings.ToLower(strings.TrimSpace(req.Query))
	result := make([]dto.NormalizedReport, 0, len(requests)+len(records))
	for i := range requests {
		r := s.normalize(FromRequest(&requests[i]))
		if query == "" || matchesQuery(r, query) {
			result = append(result, r)
		}
	}
	for i := range records {
		result = append(result, s.normalize(FromAccomplishment(&records[i])))
	}

	sort.SliceStable(result, func(i, j int) bool { return result[i].Date.After(result[j].Date) })
	return result, nil
}

func matchesQuery(r dto.NormalizedReport, q string) bool {
	fields := append([]string{r.ActivityName, r.Description, r.RequestingOffice, r.Unit}, r.Personnel...)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// normalize 归一化并在描述为空时投递后台生成
func (s *accomplishmentService) normalize(src ReportSource) dto.NormalizedReport {
	out := Normalize(src, s.loc)
	if out.DescriptionPending {
		s.gen.Dispatch(src)
	}
	return out
}

// ────────────────────── GetReport ──────────────────────

func (s *accomplishmentService) GetReport(ctx context.Context, id string) (*dto.NormalizedReport, error) {
	rec, err := s.getRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	out := s.normalize(FromAccomplishment(rec))
	return &out, nil
}

// ────────────────────── UpdateIndicator ──────────────────────

func (s *accomplishmentService) UpdateIndicator(ctx context.Context, caller Caller, id, indicatorID string) (*dto.NormalizedReport, error) {
	rec, err := s.getRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canEdit(caller, rec) {
		return nil, ErrForbidden
	}

	ind, err := s.repo.Indicator.GetByID(ctx, indicatorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIndicatorNotFound
		}
		s.logger.Error("查询绩效指标失败", zap.String("id", indicatorID), zap.Error(err))
		return nil, err
	}
	if ind.UnitID != rec.UnitID {
		return nil, ErrIndicatorUnitMismatch
	}

	if err := s.repo.Accomplishment.UpdateColumns(ctx, id, map[string]interface{}{"indicator_id": ind.IndicatorID}); err != nil {
		s.logger.Error("更新工作记录指标失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	rec.IndicatorID = &ind.IndicatorID
	rec.Indicator = ind
	out := s.normalize(FromAccomplishment(rec))
	return &out, nil
}

// ────────────────────── UpdateDescription ──────────────────────

func (s *accomplishmentService) UpdateDescription(ctx context.Context, caller Caller, id, description string) (*dto.NormalizedReport, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, ErrEmptyDescription
	}

	rec, err := s.getRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canEdit(caller, rec) {
		return nil, ErrForbidden
	}

	if err := s.repo.Accomplishment.UpdateColumns(ctx, id, map[string]interface{}{"description": description}); err != nil {
		s.logger.Error("更新工作记录描述失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	rec.Description = description
	out := Normalize(FromAccomplishment(rec), s.loc)
	return &out, nil
}

// ────────────────────── GetDescription ──────────────────────

func (s *accomplishmentService) GetDescription(ctx context.Context, id string) (*dto.DescriptionResponse, error) {
	rec, err := s.getRecord(ctx, id)
	if err != nil {
		return nil, err
	}

	out := s.normalize(FromAccomplishment(rec))
	return &dto.DescriptionResponse{
		ID:          rec.RecordID,
		Description: out.Description,
		Pending:     out.DescriptionPending,
	}, nil
}

// ── 内部辅助 ──

func (s *accomplishmentService) getRecord(ctx context.Context, id string) (*model.AccomplishmentRecord, error) {
	rec, err := s.repo.Accomplishment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		s.logger.Error("查询工作记录失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return rec, nil
}

// canEdit 管理员、单元负责人或记录关联的人员可编辑
func (s *accomplishmentService) canEdit(caller Caller, rec *model.AccomplishmentRecord) bool {
	return caller.CanManageUnit(rec.UnitID) || rec.HasPersonnel(caller.UserID)
}
