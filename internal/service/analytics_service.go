package service

import (
	"context"

	"go.uber.org/zap"

	"gso-office/backend/internal/dto"
	"gso-office/backend/internal/model"
	"gso-office/backend/internal/repository"
)

// AnalyticsService 统计看板
type AnalyticsService interface {
	Get(ctx context.Context) (*dto.AnalyticsResponse, error)
}

type analyticsService struct {
	repo              *repository.Repository
	lowStockThreshold int
	logger            *zap.Logger
}

// NewAnalyticsService 创建 AnalyticsService 实例
func NewAnalyticsService(repo *repository.Repository, lowStockThreshold int, logger *zap.Logger) AnalyticsService {
	return &analyticsService{repo: repo, lowStockThreshold: lowStockThreshold, logger: logger}
}

func (s *analyticsService) Get(ctx context.Context) (*dto.AnalyticsResponse, error) {
	counts, err := s.repo.Request.CountByStatus(ctx)
	if err != nil {
		s.logger.Error("统计申请状态失败", zap.Error(err))
		return nil, err
	}
	stats, err := s.repo.Inventory.Stats(ctx, s.lowStockThreshold)
	if err != nil {
		s.logger.Error("统计库存失败", zap.Error(err))
		return nil, err
	}

	resp := &dto.AnalyticsResponse{
		Completed:      counts[model.RequestCompleted],
		Pending:        counts[model.RequestPending],
		InProgress:     counts[model.RequestInProgress],
		ByStatus:       counts,
		TotalMaterials: stats.Total,
		LowStock:       stats.LowStock,
		OutOfStock:     stats.OutOfStock,
	}
	for _, n := range counts {
		resp.TotalRequests += n
	}
	return resp, nil
}
