package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"gso-office/backend/internal/repository"
	"gso-office/backend/internal/worker"
	"gso-office/backend/pkg/summarizer"
)

// DescriptionGenerator 空描述的后台补全
//
// Dispatch 只负责投递任务，从不等待生成结果；任务执行时重新读取来源记录，
// 描述已被填写则直接结束。生成失败不落库，下一次读取会再次投递。
// 单实例内由任务池按 Key 去重，多实例间由 Redis 锁互斥。
type DescriptionGenerator struct {
	repo       *repository.Repository
	summarizer Summarizer
	queue      TaskQueue
	locker     Locker
	lockTTL    time.Duration
	logger     *zap.Logger
}

// NewDescriptionGenerator 创建生成器；queue 为 nil 时不做后台补全
func NewDescriptionGenerator(
	repo *repository.Repository,
	summ Summarizer,
	queue TaskQueue,
	locker Locker,
	lockTTL time.Duration,
	logger *zap.Logger,
) *DescriptionGenerator {
	if lockTTL <= 0 {
		lockTTL = 5 * time.Minute
	}
	return &DescriptionGenerator{
		repo:       repo,
		summarizer: summ,
		queue:      queue,
		locker:     locker,
		lockTTL:    lockTTL,
		logger:     logger,
	}
}

// Dispatch 投递描述生成任务，已在队列中的同一来源视为成功
func (g *DescriptionGenerator) Dispatch(src ReportSource) bool {
	if g == nil || g.queue == nil || g.summarizer == nil {
		return false
	}

	kind, id := src.Kind(), src.ID()
	err := g.queue.Submit(worker.Job{
		Key: src.Key(),
		Run: func(ctx context.Context) error {
			return g.Generate(ctx, kind, id)
		},
	})
	switch {
	case err == nil, errors.Is(err, worker.ErrDuplicate):
		return true
	default:
		g.logger.Warn("投递描述生成任务失败", zap.String("key", src.Key()), zap.Error(err))
		return false
	}
}

// Generate 同步生成并回写描述（任务体）
func (g *DescriptionGenerator) Generate(ctx context.Context, kind, id string) error {
	key := kind + ":" + id
	if g.locker != nil {
		ok, err := g.locker.AcquireLock(ctx, "desc:"+key, g.lockTTL)
		switch {
		case err != nil:
			g.logger.Warn("获取描述生成锁失败，继续执行", zap.String("key", key), zap.Error(err))
		case !ok:
			return nil
		default:
			defer func() {
				if err := g.locker.ReleaseLock(context.WithoutCancel(ctx), "desc:"+key); err != nil {
					g.logger.Warn("释放描述生成锁失败", zap.String("key", key), zap.Error(err))
				}
			}()
		}
	}

	switch kind {
	case KindAccomplishment:
		return g.generateForRecord(ctx, id)
	case KindServiceRequest:
		return g.generateForRequest(ctx, id)
	default:
		return fmt.Errorf("未知来源类型: %s", kind)
	}
}

func (g *DescriptionGenerator) generateForRecord(ctx context.Context, id string) error {
	rec, err := g.repo.Accomplishment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if strings.TrimSpace(rec.Description) != "" {
		return nil
	}

	base := rec.ActivityName
	var reports []string
	if rec.Request != nil {
		base = rec.Request.Description
		for _, r := range rec.Request.Reports {
			reports = append(reports, r.ReportText)
		}
	}

	text := g.summarizer.Generate(ctx, summarizer.DescriptionPrompt(base, reports))
	if summarizer.IsFailure(text) {
		return fmt.Errorf("工作记录描述生成失败: %s", text)
	}

	if err := g.repo.Accomplishment.UpdateColumns(ctx, id, map[string]interface{}{"description": text}); err != nil {
		return fmt.Errorf("回写工作记录描述失败: %w", err)
	}
	g.logger.Info("工作记录描述已生成", zap.String("record_id", id))
	return nil
}

func (g *DescriptionGenerator) generateForRequest(ctx context.Context, id string) error {
	req, err := g.repo.Request.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if strings.TrimSpace(req.Description) != "" {
		return nil
	}

	reports := make([]string, 0, len(req.Reports))
	for _, r := range req.Reports {
		reports = append(reports, r.ReportText)
	}

	text := g.summarizer.Generate(ctx, summarizer.DescriptionPrompt(req.ActivityName, reports))
	if summarizer.IsFailure(text) {
		return fmt.Errorf("申请描述生成失败: %s", text)
	}

	if err := g.repo.Request.UpdateFields(ctx, id, req.Version, map[string]interface{}{"description": text}); err != nil {
		return fmt.Errorf("回写申请描述失败: %w", err)
	}
	g.logger.Info("申请描述已生成", zap.String("request_id", id))
	return nil
}
