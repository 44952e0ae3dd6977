package exporter

import (
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"

	"lineutil/internal/model"
)

// 结果工作簿的 Sheet 名
const (
	SheetSummary    = "Resumen"
	sheetYearPrefix = "Resultados_"
)

// Export 将计算结果写成工作簿：Resumen 汇总页 + 每年一页明细
func Export(result *model.PlanResult) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := writeSummarySheet(f, result); err != nil {
		_ = f.Close()
		return nil, err
	}
	for _, yr := range result.YearResults {
		if err := writeYearSheet(f, yr); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

func writeSummarySheet(f *excelize.File, result *model.PlanResult) error {
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("创建汇总页失败: %w", err)
	}

	w := newSheetWriter(f, SheetSummary)
	w.row("产能规划结果")
	w.row("版本", result.Metadata.Version)
	w.row("生成时间", result.Metadata.Timestamp)
	w.row("计算耗时 (ms)", result.Metadata.ExecutionTimeMs)
	w.row("计算年份数", result.Metadata.YearsProcessed)
	w.row("产线总数", result.OverallSummary.TotalLinesAnalyzed)
	w.row("全年份平均利用率 (%)", round2(result.OverallSummary.AverageUtilizationAllYears))
	w.blank()

	w.row("年份", "平均利用率 (%)", "履约率 (%)", "超载产线", "均衡产线", "低载产线", "全年未满足 (件)")
	for _, yr := range result.YearResults {
		s := yr.Summary
		w.row(yr.Year, round2(s.AverageUtilization), round2(s.DemandFulfillmentPercent),
			s.OverloadedLines, s.BalancedLines, s.UnderutilizedLines, round2(s.UnfulfilledUnitsYearly))
	}

	if len(result.Issues) > 0 {
		w.blank()
		w.row("输入校验问题")
		for _, issue := range result.Issues {
			w.row(issue.Type, issue.Message)
		}
	}

	if w.err != nil {
		return fmt.Errorf("写入汇总页失败: %w", w.err)
	}
	return autoWidth(f, SheetSummary)
}

func writeYearSheet(f *excelize.File, yr model.YearResult) error {
	sheet := fmt.Sprintf("%s%d", sheetYearPrefix, yr.Year)
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("创建年份页失败: %w", err)
	}

	w := newSheetWriter(f, sheet)

	w.row("产线结果")
	w.row("产线", "区域", "类型", "可用时间 (s)", "生产时间 (s)", "换型时间 (s)",
		"利用率-生产 (%)", "利用率-含换型 (%)", "换型影响 (pp)", "HHI", "型号数", "收敛")
	for _, line := range yr.Lines {
		hhi, distinct, converged := 0.0, 0, ""
		if line.Changeover != nil {
			hhi = line.Changeover.HHI
			distinct = line.Changeover.DistinctModels
			if line.Changeover.Enabled {
				converged = boolText(line.Changeover.Converged)
			}
		}
		w.row(line.LineName, line.Area, string(line.Kind),
			round2(line.TimeAvailableDaily), round2(line.TimeUsedProduction), round2(line.TimeUsedChangeover),
			round2(line.UtilizationProductionOnly), round2(line.UtilizationWithChangeover),
			round2(line.ChangeoverImpactPercent), round4(hhi), distinct, converged)
	}
	w.blank()

	w.row("型号分配")
	w.row("产线", "型号", "日需求 (件)", "日分配 (件)", "占用时间 (s)", "优先级", "履约率 (%)")
	for _, line := range yr.Lines {
		for _, a := range line.Assignments {
			w.row(line.LineName, a.ModelName, round2(a.DemandUnitsDaily), round2(a.AllocatedUnitsDaily),
				round2(a.TimeRequiredSeconds), a.Priority, round2(a.FulfillmentPercent))
		}
	}
	w.blank()

	w.row("区域汇总")
	w.row("区域", "产线数", "平均利用率 (%)", "满负荷产线", "日需求 (件)", "日分配 (件)", "日未满足 (件)", "履约率 (%)", "状态")
	for _, area := range yr.Areas {
		w.row(area.Area, area.TotalLines, round2(area.AverageUtilization), area.LinesAtCapacity,
			round2(area.DemandUnitsDaily), round2(area.AllocatedUnitsDaily),
			round2(area.TotalUnfulfilledUnitsDaily), round2(area.FulfillmentPercent), area.FulfillmentStatus)
	}
	w.blank()

	if len(yr.Unfulfilled) > 0 {
		w.row("未满足需求")
		w.row("区域", "型号", "日需求 (件)", "日未满足 (件)", "履约率 (%)")
		for _, uf := range yr.Unfulfilled {
			w.row(uf.Area, uf.ModelName, round2(uf.DemandUnitsDaily),
				round2(uf.UnfulfilledUnitsDaily), round2(uf.FulfillmentPercent))
		}
		w.blank()
	}

	if yr.Constraint != nil {
		c := yr.Constraint
		w.row("系统瓶颈")
		w.row("区域", c.Area)
		w.row("判定依据", c.Reason)
		w.row("约束类型", c.ConstraintType)
		w.row("平均利用率 (%)", round2(c.AverageUtilization))
		w.row("日未满足 (件)", round2(c.TotalUnfulfilledUnitsDaily))
		w.row("约束产线", "类型", "利用率 (%)", "关联未满足 (件)")
		for _, line := range c.Lines {
			w.row(line.LineName, string(line.Kind),
				round2(line.UtilizationWithChangeover), round2(line.UnfulfilledUnitsDaily))
		}
	}

	if w.err != nil {
		return fmt.Errorf("写入年份页失败: %w", w.err)
	}
	return autoWidth(f, sheet)
}

// sheetWriter 逐行写入，第一处错误后静默跳过
type sheetWriter struct {
	f     *excelize.File
	sheet string
	next  int
	err   error
}

func newSheetWriter(f *excelize.File, sheet string) *sheetWriter {
	return &sheetWriter{f: f, sheet: sheet, next: 1}
}

func (w *sheetWriter) row(values ...any) {
	if w.err != nil {
		return
	}
	cellRef, err := excelize.CoordinatesToCellName(1, w.next)
	if err != nil {
		w.err = err
		return
	}
	if err := w.f.SetSheetRow(w.sheet, cellRef, &values); err != nil {
		w.err = err
		return
	}
	w.next++
}

func (w *sheetWriter) blank() {
	if w.err == nil {
		w.next++
	}
}

// autoWidth 按内容长度调整列宽
func autoWidth(f *excelize.File, sheet string) error {
	cols, err := f.GetCols(sheet)
	if err != nil {
		return fmt.Errorf("读取列失败: %w", err)
	}
	for i, col := range cols {
		width := 10.0
		for _, value := range col {
			if w := float64(len(value)) + 4; w > width {
				width = w
			}
		}
		if width > 60 {
			width = 60
		}
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, name, name, width); err != nil {
			return fmt.Errorf("设置列宽失败: %w", err)
		}
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func boolText(b bool) string {
	if b {
		return "是"
	}
	return "否"
}
