package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"gso-office/backend/internal/dto"
	"gso-office/backend/internal/model"
	"gso-office/backend/internal/repository"
	"gso-office/backend/pkg/summarizer"
)

// UnspecifiedIndicator 未关联绩效指标的工作记录所在分组
const UnspecifiedIndicator = "Unspecified Indicator"

// RollupService 月度个人绩效汇总（IPMT）业务接口
type RollupService interface {
	// Aggregate 按人员、指标分组汇总当月工作记录，不落库
	Aggregate(ctx context.Context, caller Caller, q *dto.RollupQuery) (*dto.RollupPreviewResponse, error)
	// Upsert 逐行写入汇总结果，单行失败不影响其余行
	Upsert(ctx context.Context, caller Caller, req *dto.SaveRollupRequest) (*dto.SaveRollupResponse, error)
	ListEntries(ctx context.Context, caller Caller, q *dto.RollupEntryQuery) ([]dto.RollupEntryResponse, error)
}

type rollupService struct {
	repo           *repository.Repository
	summarizer     Summarizer
	maxConcurrency int
	logger         *zap.Logger
}

// NewRollupService 创建 RollupService 实例
func NewRollupService(repo *repository.Repository, summ Summarizer, maxConcurrency int, logger *zap.Logger) RollupService {
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}
	return &rollupService{repo: repo, summarizer: summ, maxConcurrency: maxConcurrency, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// Aggregate — 汇总预览
// ═══════════════════════════════════════════════════════════
//
// 设计说明：
//   - 记录范围：单元内 date_started 落在当月的全部工作记录
//   - 每个人员只看关联了自己的记录，按指标编码分组，组顺序即首次出现顺序
//   - 单条记录的组直接使用其描述；多条记录的组调用生成服务合并，
//     多个组并发调用，并发数受 summarizer.max_concurrency 限制
//   - 生成服务失败时失败文本原样作为描述，不报错

func (s *rollupService) Aggregate(ctx context.Context, caller Caller, q *dto.RollupQuery) (*dto.RollupPreviewResponse, error) {
	period, err := ParsePeriod(q.Period)
	if err != nil {
		return nil, err
	}
	unit, err := resolveManagedUnit(ctx, s.repo, caller, q.Unit)
	if err != nil {
		return nil, err
	}

	users, err := s.repo.User.ListByUnit(ctx, unit.UnitID, model.RolePersonnel, true)
	if err != nil {
		s.logger.Error("查询单元人员失败", zap.String("unit_id", unit.UnitID), zap.Error(err))
		return nil, err
	}
	people, unresolved := selectPersonnel(users, q.Personnel)

	from, to := period.Range()
	records, err := s.repo.Accomplishment.ListByUnitPeriod(ctx, unit.UnitID, from, to)
	if err != nil {
		s.logger.Error("查询当月工作记录失败", zap.String("unit_id", unit.UnitID), zap.String("period", period.Label()), zap.Error(err))
		return nil, err
	}

	result := make([]dto.PersonnelRollup, 0, len(people))
	var pending []summaryJob
	for i := range people {
		p := &people[i]
		groups := groupByIndicator(p.UserID, records)

		pr := dto.PersonnelRollup{
			PersonnelID:   p.UserID,
			PersonnelName: p.FullName(),
			Rows:          make([]dto.RollupRow, len(groups)),
		}
		for gi, g := range groups {
			row := &pr.Rows[gi]
			row.PersonnelID = p.UserID
			row.Indicator = g.indicator
			for _, r := range g.records {
				row.SourceIDs = append(row.SourceIDs, r.RecordID)
			}
			if len(g.records) == 1 {
				row.Description = strings.TrimSpace(g.records[0].Description)
				row.Remarks = row.Description
				continue
			}
			pending = append(pending, summaryJob{person: i, row: gi, group: g})
		}
		result = append(result, pr)
	}

	s.summarize(ctx, result, pending)

	return &dto.RollupPreviewResponse{
		Period:      period.Label(),
		PeriodLabel: period.Display(),
		Unit:        unit.Name,
		Personnel:   result,
		Unresolved:  unresolved,
	}, nil
}

type indicatorGroup struct {
	indicator string
	records   []*model.AccomplishmentRecord
}

type summaryJob struct {
	person int
	row    int
	group  indicatorGroup
}

// groupByIndicator 取关联了该人员的记录并按指标编码分组，保持首次出现顺序
func groupByIndicator(personnelID string, records []model.AccomplishmentRecord) []indicatorGroup {
	var groups []indicatorGroup
	index := make(map[string]int)
	for i := range records {
		rec := &records[i]
		if !rec.HasPersonnel(personnelID) {
			continue
		}
		code := rec.IndicatorCode()
		if code == "" {
			code = UnspecifiedIndicator
		}
		gi, ok := index[code]
		if !ok {
			gi = len(groups)
			index[code] = gi
			groups = append(groups, indicatorGroup{indicator: code})
		}
		groups[gi].records = append(groups[gi].records, rec)
	}
	return groups
}

// summarize 并发生成多记录组的合并描述，结果按下标写回，不改变行顺序
func (s *rollupService) summarize(ctx context.Context, result []dto.PersonnelRollup, jobs []summaryJob) {
	if len(jobs) == 0 {
		return
	}

	var g errgroup.Group
	g.SetLimit(s.maxConcurrency)
	for _, job := range jobs {
		job := job
		g.Go(func() error {
			text := s.summarizeGroup(ctx, job.group)
			row := &result[job.person].Rows[job.row]
			row.Description = text
			row.Remarks = text
			return nil
		})
	}
	_ = g.Wait()
}

func (s *rollupService) summarizeGroup(ctx context.Context, g indicatorGroup) string {
	descs := make([]string, 0, len(g.records))
	for _, r := range g.records {
		if d := strings.TrimSpace(r.Description); d != "" {
			descs = append(descs, d)
		}
	}
	if len(descs) == 0 {
		return summarizer.EmptyIndicatorText(g.indicator)
	}
	if s.summarizer == nil {
		return summarizer.FailureText(errors.New("summarizer not configured"))
	}

	text := s.summarizer.Generate(ctx, summarizer.SummaryPrompt(g.indicator, descs))
	if summarizer.IsFailure(text) {
		s.logger.Warn("指标汇总生成失败", zap.String("indicator", g.indicator), zap.String("result", text))
	}
	return text
}

// ═══════════════════════════════════════════════════════════
// Upsert — 写入汇总行
// ═══════════════════════════════════════════════════════════
//
// 设计说明：
//   - 无指标的行跳过；行带 personnel_id 时只写该人员，否则写入全部选中人员
//   - 与预览不同，人员列表为空时不选中任何人，只有 "all" 表示全部人员
//   - 指标按 (单元, 编码) 查找，不存在时创建
//   - 关联记录：该人员在单元内的全部工作记录，行带 source_ids 时进一步限定
//   - 每个 (人员, 行) 一个事务：键控 upsert 后全量替换关联记录，重复调用结果一致

func (s *rollupService) Upsert(ctx context.Context, caller Caller, req *dto.SaveRollupRequest) (*dto.SaveRollupResponse, error) {
	period, err := ParsePeriod(req.Period)
	if err != nil {
		return nil, err
	}
	unit, err := resolveManagedUnit(ctx, s.repo, caller, req.Unit)
	if err != nil {
		return nil, err
	}

	users, err := s.repo.User.ListByUnit(ctx, unit.UnitID, model.RolePersonnel, false)
	if err != nil {
		s.logger.Error("查询单元人员失败", zap.String("unit_id", unit.UnitID), zap.Error(err))
		return nil, err
	}
	active := make([]model.User, 0, len(users))
	byID := make(map[string]*model.User, len(users))
	for i := range users {
		byID[users[i].UserID] = &users[i]
		if users[i].IsActive() {
			active = append(active, users[i])
		}
	}
	var (
		people     []model.User
		unresolved []string
	)
	if len(splitTokens(req.Personnel)) > 0 {
		people, unresolved = selectPersonnel(active, req.Personnel)
	}

	resp := &dto.SaveRollupResponse{Unresolved: unresolved}
	for n, row := range req.Rows {
		code := strings.TrimSpace(row.Indicator)
		if code == "" {
			resp.Skipped++
			continue
		}

		targets := people
		if row.PersonnelID != "" {
			u, ok := byID[row.PersonnelID]
			if !ok {
				resp.Errors = append(resp.Errors, fmt.Sprintf("Row %d: personnel %s not found in unit", n+1, row.PersonnelID))
				continue
			}
			targets = []model.User{*u}
		}
		if len(targets) == 0 {
			resp.Errors = append(resp.Errors, fmt.Sprintf("Row %d: no personnel selected", n+1))
			continue
		}

		for i := range targets {
			p := &targets[i]
			if err := s.upsertRow(ctx, unit.UnitID, period.Label(), p.UserID, code, row); err != nil {
				s.logger.Warn("写入汇总行失败",
					zap.String("personnel_id", p.UserID),
					zap.String("indicator", code),
					zap.Error(err),
				)
				resp.Errors = append(resp.Errors, fmt.Sprintf("Row %d (%s): %v", n+1, p.FullName(), err))
				continue
			}
			resp.Saved++
		}
	}

	s.logger.Info("汇总行已保存",
		zap.String("unit", unit.Name),
		zap.String("period", period.Label()),
		zap.Int("saved", resp.Saved),
		zap.Int("skipped", resp.Skipped),
		zap.Int("failed", len(resp.Errors)),
	)
	return resp, nil
}

func (s *rollupService) upsertRow(ctx context.Context, unitID, period, personnelID, code string, row dto.RollupRow) error {
	accomplishment := strings.TrimSpace(row.Description)
	remarks := strings.TrimSpace(row.Remarks)
	if remarks == "" {
		remarks = accomplishment
	}

	return s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		ind, err := resolveIndicator(ctx, tx, unitID, code, accomplishment)
		if err != nil {
			return err
		}
		records, err := tx.Accomplishment.ListByPersonnel(ctx, personnelID, unitID, row.SourceIDs)
		if err != nil {
			return err
		}
		return tx.Rollup.Upsert(ctx, &model.RollupEntry{
			PersonnelID:    personnelID,
			UnitID:         unitID,
			Period:         period,
			IndicatorID:    ind.IndicatorID,
			Accomplishment: accomplishment,
			Remarks:        remarks,
		}, records)
	})
}

// ────────────────────── ListEntries ──────────────────────

func (s *rollupService) ListEntries(ctx context.Context, caller Caller, q *dto.RollupEntryQuery) ([]dto.RollupEntryResponse, error) {
	period, err := ParsePeriod(q.Period)
	if err != nil {
		return nil, err
	}
	unit, err := resolveManagedUnit(ctx, s.repo, caller, q.Unit)
	if err != nil {
		return nil, err
	}

	entries, err := s.repo.Rollup.ListByUnitPeriod(ctx, unit.UnitID, period.Label())
	if err != nil {
		s.logger.Error("查询汇总行失败", zap.String("unit_id", unit.UnitID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.RollupEntryResponse, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		item := dto.RollupEntryResponse{
			ID:             e.EntryID,
			PersonnelID:    e.PersonnelID,
			Accomplishment: e.Accomplishment,
			Remarks:        e.Remarks,
			SourceIDs:      make([]string, 0, len(e.Records)),
		}
		if e.Personnel != nil {
			item.PersonnelName = e.Personnel.FullName()
		}
		if e.Indicator != nil {
			item.Indicator = e.Indicator.Code
		}
		for _, r := range e.Records {
			item.SourceIDs = append(item.SourceIDs, r.RecordID)
		}
		result = append(result, item)
	}
	return result, nil
}

// ── 共用辅助 ──

// resolveUnit 按 ID 或名称（不区分大小写）查找单元
func resolveUnit(ctx context.Context, repo *repository.Repository, ref string) (*model.Unit, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ErrUnitNotFound
	}

	var (
		unit *model.Unit
		err  error
	)
	if _, perr := uuid.Parse(ref); perr == nil {
		unit, err = repo.Unit.GetByID(ctx, ref)
	} else {
		unit, err = repo.Unit.GetByName(ctx, ref)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnitNotFound
		}
		return nil, err
	}
	return unit, nil
}

// resolveManagedUnit 查找单元并校验调用方可管理该单元
func resolveManagedUnit(ctx context.Context, repo *repository.Repository, caller Caller, ref string) (*model.Unit, error) {
	unit, err := resolveUnit(ctx, repo, ref)
	if err != nil {
		return nil, err
	}
	if !caller.CanManageUnit(unit.UnitID) {
		return nil, ErrForbidden
	}
	return unit, nil
}

// resolveIndicator 按 (单元, 编码) 查找指标，不存在时以启用状态创建
func resolveIndicator(ctx context.Context, repo *repository.Repository, unitID, code, description string) (*model.SuccessIndicator, error) {
	ind, err := repo.Indicator.FindByCode(ctx, unitID, code)
	if err == nil {
		return ind, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	ind = &model.SuccessIndicator{
		UnitID:      unitID,
		Code:        code,
		Description: description,
		IsActive:    true,
	}
	if err := repo.Indicator.Create(ctx, ind); err != nil {
		return nil, fmt.Errorf("创建绩效指标失败: %w", err)
	}
	return ind, nil
}
