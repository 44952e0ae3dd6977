package importer

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"lineutil/internal/model"
)

// 工作簿的固定 Sheet 名（沿用工厂侧的西语命名）
const (
	SheetLines      = "Lineas_Produccion"
	SheetModels     = "Modelos"
	SheetVolumes    = "Volumenes_Produccion"
	SheetCompat     = "Compatibilidades"
	SheetChangeover = "Cambios_Modelo" // 可选
)

// Result 导入结果。行级问题记录在 Issues 中，不中断导入。
type Result struct {
	Plan   *model.PlanInput
	Issues []string
}

// Importer 产能数据工作簿解析器
type Importer struct {
	file   *excelize.File
	issues []string
}

// Parse 从 Reader 解析工作簿
func Parse(r io.Reader) (*Result, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("无法读取 Excel 文件: %w", err)
	}
	defer file.Close()
	return parseFile(file)
}

// ParseFile 从路径解析工作簿
func ParseFile(path string) (*Result, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("无法打开 Excel 文件: %w", err)
	}
	defer file.Close()
	return parseFile(file)
}

func parseFile(file *excelize.File) (*Result, error) {
	imp := &Importer{file: file}

	plan := &model.PlanInput{}
	var err error

	if plan.Lines, err = imp.parseLines(); err != nil {
		return nil, err
	}
	if plan.Models, err = imp.parseModels(); err != nil {
		return nil, err
	}
	if plan.Volumes, plan.SelectedYears, err = imp.parseVolumes(); err != nil {
		return nil, err
	}
	if plan.Compatibilities, err = imp.parseCompatibilities(); err != nil {
		return nil, err
	}
	plan.Changeover = imp.parseChangeover()

	return &Result{Plan: plan, Issues: imp.issues}, nil
}

func (imp *Importer) addIssue(sheet string, rowNo int, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	imp.issues = append(imp.issues, fmt.Sprintf("%s 第 %d 行: %s", sheet, rowNo, msg))
}

// parseLines 解析产线 Sheet
// 列: ID | Nombre | Area | Tipo | Tiempo_Disponible | Cambios
func (imp *Importer) parseLines() ([]model.Line, error) {
	rows, err := imp.file.GetRows(SheetLines)
	if err != nil {
		return nil, fmt.Errorf("缺少 %s 工作表: %w", SheetLines, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s 工作表没有数据行", SheetLines)
	}

	var lines []model.Line
	for rowIdx := 1; rowIdx < len(rows); rowIdx++ {
		row := rows[rowIdx]
		id := cell(row, 0)
		name := cell(row, 1)
		area := cell(row, 2)
		if id == "" && name == "" {
			continue // 空行
		}
		if id == "" || area == "" {
			imp.addIssue(SheetLines, rowIdx+1, "缺少产线 ID 或区域，已跳过")
			continue
		}
		if name == "" {
			name = id
		}

		line := model.Line{
			ID:                 id,
			Name:               name,
			Area:               area,
			Kind:               parseLineKind(cell(row, 3)),
			TimeAvailableDaily: parseFloat(cell(row, 4)),
		}
		// 产线级换型开关：留空跟随全局，si/no 为显式覆盖
		switch strings.ToLower(cell(row, 5)) {
		case "si", "sí", "yes", "1", "true":
			line.ChangeoverEnabled = true
			line.ChangeoverExplicit = true
		case "no", "0", "false":
			line.ChangeoverEnabled = false
			line.ChangeoverExplicit = true
		}

		lines = append(lines, line)
	}
	return lines, nil
}

// parseModels 解析型号 Sheet
// 列: ID | Nombre | Cliente | Programa | Familia
func (imp *Importer) parseModels() ([]model.Model, error) {
	rows, err := imp.file.GetRows(SheetModels)
	if err != nil {
		return nil, fmt.Errorf("缺少 %s 工作表: %w", SheetModels, err)
	}

	var models []model.Model
	for rowIdx := 1; rowIdx < len(rows); rowIdx++ {
		row := rows[rowIdx]
		id := cell(row, 0)
		if id == "" {
			continue
		}
		name := cell(row, 1)
		if name == "" {
			name = id
		}
		models = append(models, model.Model{
			ID:       id,
			Name:     name,
			Customer: cell(row, 2),
			Program:  cell(row, 3),
			Family:   cell(row, 4),
		})
	}
	return models, nil
}

// parseVolumes 解析年度产量 Sheet。
// 列: Modelo_ID | Nombre | Dias_Operacion | <年份列…>，年份取自表头。
func (imp *Importer) parseVolumes() ([]model.Volume, []int, error) {
	rows, err := imp.file.GetRows(SheetVolumes)
	if err != nil {
		return nil, nil, fmt.Errorf("缺少 %s 工作表: %w", SheetVolumes, err)
	}
	if len(rows) < 1 {
		return nil, nil, fmt.Errorf("%s 工作表没有表头", SheetVolumes)
	}

	headers := rows[0]
	years := make([]int, 0, len(headers))
	yearCols := make([]int, 0, len(headers))
	for colIdx := 3; colIdx < len(headers); colIdx++ {
		year := parseInt(headers[colIdx])
		if year < 1900 || year > 2200 {
			imp.addIssue(SheetVolumes, 1, "表头第 %d 列不是有效年份 (%q)，整列忽略", colIdx+1, headers[colIdx])
			continue
		}
		years = append(years, year)
		yearCols = append(yearCols, colIdx)
	}

	var volumes []model.Volume
	for rowIdx := 1; rowIdx < len(rows); rowIdx++ {
		row := rows[rowIdx]
		modelID := cell(row, 0)
		if modelID == "" {
			continue
		}
		opsDays := parseInt(cell(row, 2))

		for i, colIdx := range yearCols {
			raw := cell(row, colIdx)
			if raw == "" {
				continue
			}
			volumes = append(volumes, model.Volume{
				ModelID:   modelID,
				ModelName: cell(row, 1),
				Year:      years[i],
				Volume:    parseFloat(raw),
				OpsDays:   opsDays,
			})
		}
	}
	return volumes, years, nil
}

// parseCompatibilities 解析兼容关系 Sheet
// 列: Linea_ID | Modelo_ID | Tiempo_Ciclo | Eficiencia | Prioridad
func (imp *Importer) parseCompatibilities() ([]model.Compatibility, error) {
	rows, err := imp.file.GetRows(SheetCompat)
	if err != nil {
		return nil, fmt.Errorf("缺少 %s 工作表: %w", SheetCompat, err)
	}

	var edges []model.Compatibility
	for rowIdx := 1; rowIdx < len(rows); rowIdx++ {
		row := rows[rowIdx]
		lineID := cell(row, 0)
		modelID := cell(row, 1)
		if lineID == "" && modelID == "" {
			continue
		}
		if lineID == "" || modelID == "" {
			imp.addIssue(SheetCompat, rowIdx+1, "缺少产线或型号 ID，已跳过")
			continue
		}
		edges = append(edges, model.Compatibility{
			LineID:     lineID,
			ModelID:    modelID,
			CycleTime:  parseFloat(cell(row, 2)),
			Efficiency: parseFloat(cell(row, 3)),
			Priority:   parseInt(cell(row, 4)),
		})
	}
	return edges, nil
}

// parseChangeover 解析可选的换型配置 Sheet。
// 列: Tipo | Linea_ID | De | A | Minutos
//   - global:  只读 Minutos（全局默认时间）
//   - familia: De/A 为家族名（有方向）
//   - linea:   Linea_ID + De/A 为型号 ID
//
// Sheet 存在即视为启用换型；不存在返回 nil。
func (imp *Importer) parseChangeover() *model.ChangeoverConfig {
	rows, err := imp.file.GetRows(SheetChangeover)
	if err != nil {
		return nil
	}

	cfg := &model.ChangeoverConfig{Enabled: true}
	for rowIdx := 1; rowIdx < len(rows); rowIdx++ {
		row := rows[rowIdx]
		kind := strings.ToLower(cell(row, 0))
		if kind == "" {
			continue
		}
		minutes := parseFloat(cell(row, 4))

		switch kind {
		case "global":
			cfg.DefaultMinutes = minutes
		case "familia":
			from, to := cell(row, 2), cell(row, 3)
			if from == "" || to == "" {
				imp.addIssue(SheetChangeover, rowIdx+1, "家族默认缺少 De/A，已跳过")
				continue
			}
			cfg.FamilyDefaults = append(cfg.FamilyDefaults, model.FamilyChangeover{
				FromFamily: from,
				ToFamily:   to,
				Minutes:    minutes,
			})
		case "linea":
			lineID, from, to := cell(row, 1), cell(row, 2), cell(row, 3)
			if lineID == "" || from == "" || to == "" {
				imp.addIssue(SheetChangeover, rowIdx+1, "产线覆盖缺少产线或型号 ID，已跳过")
				continue
			}
			cfg.LineOverrides = append(cfg.LineOverrides, model.LineChangeover{
				LineID:      lineID,
				FromModelID: from,
				ToModelID:   to,
				Minutes:     minutes,
			})
		default:
			imp.addIssue(SheetChangeover, rowIdx+1, "未知配置类型 %q，已跳过", kind)
		}
	}
	return cfg
}

func parseLineKind(s string) model.LineKind {
	switch strings.ToLower(s) {
	case "dedicada", "dedicated":
		return model.LineKindDedicated
	default:
		return model.LineKindShared
	}
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseInt 安全转换为整数
func parseInt(s string) int {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "") // 移除千分位
	i, _ := strconv.Atoi(s)
	if i == 0 {
		// Excel 可能把整数格式化成 "2026.0"
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			i = int(f)
		}
	}
	return i
}

// parseFloat 安全转换为浮点数
func parseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "") // 移除千分位
	s = strings.ReplaceAll(s, "%", "")
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
