package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"gso-office/backend/internal/dto"
	"gso-office/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

const maxSheetTitle = 30

// ExportService 导出业务接口
//
// 设计说明：
//   - 导出 IPMT 为 Excel (.xlsx)，每个人员一个 Sheet
//   - 调用方提交了编辑后的行时按原样导出到单个 Sheet，否则现场汇总
//   - 以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	ExportRollup(ctx context.Context, caller Caller, req *dto.ExportRollupRequest) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	rollup RollupService
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, rollup RollupService, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, rollup: rollup, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportRollup — 导出 IPMT
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet 名为人员姓名（不超过 30 字符，重名追加序号）
//   - 第 1 行表头：Success Indicator | Accomplishment | Remarks
//   - E1~E3：Month / Personnel / Unit
//   - 没有记录的人员输出一行 N/A | No reports | 空
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportRollup(ctx context.Context, caller Caller, req *dto.ExportRollupRequest) (*bytes.Buffer, string, error) {
	period, err := ParsePeriod(req.Period)
	if err != nil {
		return nil, "", err
	}

	var (
		sheets   []dto.PersonnelRollup
		unitName string
	)
	if len(req.Rows) > 0 {
		unit, err := resolveManagedUnit(ctx, s.repo, caller, req.Unit)
		if err != nil {
			return nil, "", err
		}
		unitName = unit.Name
		name := strings.Join(splitTokens(req.Personnel), ", ")
		if name == "" {
			name = "All Personnel"
		}
		sheets = []dto.PersonnelRollup{{PersonnelName: name, Rows: req.Rows}}
	} else {
		preview, err := s.rollup.Aggregate(ctx, caller, &dto.RollupQuery{
			Period:    req.Period,
			Unit:      req.Unit,
			Personnel: req.Personnel,
		})
		if err != nil {
			return nil, "", err
		}
		unitName = preview.Unit
		sheets = preview.Personnel
	}

	buf, err := writeRollupWorkbook(period, unitName, sheets)
	if err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("IPMT_%s_%s.xlsx", strings.ReplaceAll(unitName, " ", "_"), period.Label())
	return buf, filename, nil
}

func writeRollupWorkbook(period Period, unitName string, sheets []dto.PersonnelRollup) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}
	wrapStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
	})
	if err != nil {
		return nil, err
	}

	if len(sheets) == 0 {
		sheets = []dto.PersonnelRollup{{PersonnelName: "IPMT"}}
	}

	used := make(map[string]bool)
	for i, p := range sheets {
		name := sheetTitle(p.PersonnelName, used)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}

		f.SetColWidth(name, "A", "A", 30)
		f.SetColWidth(name, "B", "C", 60)
		f.SetColWidth(name, "E", "E", 30)

		f.SetCellValue(name, "A1", "Success Indicator")
		f.SetCellValue(name, "B1", "Accomplishment")
		f.SetCellValue(name, "C1", "Remarks")
		f.SetCellStyle(name, "A1", "C1", headerStyle)

		f.SetCellValue(name, "E1", "Month: "+period.Display())
		f.SetCellValue(name, "E2", "Personnel: "+p.PersonnelName)
		f.SetCellValue(name, "E3", "Unit: "+unitName)

		rows := p.Rows
		if len(rows) == 0 {
			rows = []dto.RollupRow{{Indicator: "N/A", Description: "No reports"}}
		}
		for r, row := range rows {
			line := r + 2
			f.SetCellValue(name, cell("A", line), row.Indicator)
			f.SetCellValue(name, cell("B", line), row.Description)
			f.SetCellValue(name, cell("C", line), row.Remarks)
		}
		f.SetCellStyle(name, "A2", cell("C", len(rows)+1), wrapStyle)
	}
	f.SetActiveSheet(0)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// sheetTitle 生成合法且不重复的 Sheet 名
func sheetTitle(name string, used map[string]bool) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" {
		name = "Personnel"
	}
	base := truncateRunes(name, maxSheetTitle)

	title := base
	for n := 2; used[strings.ToLower(title)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		title = truncateRunes(base, maxSheetTitle-len(suffix)) + suffix
	}
	used[strings.ToLower(title)] = true
	return title
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

// ── 辅助函数 ──

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
