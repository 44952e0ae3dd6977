package engine

import (
	"errors"
	"sort"
	"sync"
	"time"

	"lineutil/internal/model"
)

// Version 结果契约版本号
const Version = "1.0"

// Engine 产能规划计算引擎。
// 无状态：每次 Run 都基于输入快照全量计算，相同输入产出相同结果。
type Engine struct {
	defaultMethod string
}

// NewEngine 创建引擎。defaultMethod 为空时使用概率加权方法。
func NewEngine(defaultMethod string) *Engine {
	return &Engine{defaultMethod: defaultMethod}
}

// DefaultMethod 引擎级默认换型估算方法 ID（输入未指定方法时生效）
func (e *Engine) DefaultMethod() string {
	if e.defaultMethod == "" {
		return DefaultMethodID
	}
	return e.defaultMethod
}

// Run 对输入快照中选定的各年份执行完整计算。
// 各年互相独立、无共享可变状态，并行扇出后按年份序归并。
func (e *Engine) Run(in *model.PlanInput) (*model.PlanResult, error) {
	if in == nil {
		return nil, errors.New("输入快照为空")
	}

	start := time.Now()
	v := ValidateInput(in)

	methodID := e.defaultMethod
	if in.Changeover != nil && in.Changeover.Method != "" {
		methodID = in.Changeover.Method
	}
	method, err := MethodByID(methodID)
	if err != nil {
		return nil, err
	}

	resolver := NewResolver(in.Changeover, v.Models)
	globalEnabled := in.Changeover != nil && in.Changeover.Enabled
	refiner := NewRefiner(resolver, method, globalEnabled)

	years := uniqueSortedYears(in.SelectedYears)
	volumesByYear := indexVolumes(v.Volumes)
	names := modelNames(v.Models, v.Volumes)

	// 各年写入各自的结果槽位，经典扇出/扇入
	yearResults := make([]model.YearResult, len(years))
	var wg sync.WaitGroup
	for i, year := range years {
		wg.Add(1)
		go func(slot int, year int) {
			defer wg.Done()
			yearResults[slot] = e.runYear(year, v, volumesByYear[year], refiner, names)
		}(i, year)
	}
	wg.Wait()

	utilSum := 0.0
	for _, yr := range yearResults {
		utilSum += yr.Summary.AverageUtilization
	}
	avgUtil := 0.0
	if len(yearResults) > 0 {
		avgUtil = utilSum / float64(len(yearResults))
	}

	return &model.PlanResult{
		Metadata: model.Metadata{
			Version:         Version,
			Timestamp:       start.UTC().Format(time.RFC3339),
			InputYears:      years,
			YearsProcessed:  len(years),
			ExecutionTimeMs: time.Since(start).Milliseconds(),
		},
		YearResults: yearResults,
		OverallSummary: model.OverallSummary{
			YearsProcessed:             len(yearResults),
			AverageUtilizationAllYears: avgUtil,
			TotalLinesAnalyzed:         len(v.Lines),
		},
		Issues: v.Issues,
	}, nil
}

// runYear 计算单个年份：日需求 → 逐区域精化 → 区域汇总 → 瓶颈分类 → 年度汇总。
// 每个区域独立处理完整需求（产品依次经过所有工艺区域），
// 剩余需求按区域跟踪而非全局。
func (e *Engine) runYear(year int, v *ValidatedInput, volumes map[string]model.Volume, refiner *Refiner, names map[string]string) model.YearResult {
	demand := make(map[string]float64, len(volumes))
	opsDays := make(map[string]int, len(volumes))
	for modelID, vol := range volumes {
		daily := vol.DailyDemand()
		if daily <= 0 {
			continue
		}
		demand[modelID] = daily
		opsDays[modelID] = vol.OpsDays
	}

	linesByArea := groupLinesByArea(v.Lines)
	areaNames := sortedAreaNames(linesByArea)
	edgesByArea := groupEdgesByArea(v.Edges, v.Lines)

	result := model.YearResult{
		Year:        year,
		Lines:       []model.LineResult{},
		Areas:       []model.AreaSummary{},
		Unfulfilled: []model.UnfulfilledDemand{},
	}

	lineResultsByArea := make(map[string][]model.LineResult, len(areaNames))
	remainingByArea := make(map[string]map[string]float64, len(areaNames))

	for _, area := range areaNames {
		areaResult := refiner.RefineArea(linesByArea[area], edgesByArea[area], demand)
		lineResultsByArea[area] = areaResult.Lines
		remainingByArea[area] = areaResult.Remaining

		result.Lines = append(result.Lines, areaResult.Lines...)
		result.Areas = append(result.Areas, SummarizeArea(area, areaResult.Lines, demand, areaResult.Remaining))
		result.Unfulfilled = append(result.Unfulfilled, BuildUnfulfilled(area, demand, areaResult.Remaining, names)...)
	}

	result.Constraint = Classify(result.Areas, lineResultsByArea, remainingByArea, v.Edges, names)
	result.Summary = summarizeYear(result, demand, opsDays, remainingByArea)

	return result
}

// summarizeYear 年度汇总：100%/70% 阈值的产线负载分布、
// 型号分配覆盖、全年未满足量（日未满足 × 运营天数）。
func summarizeYear(yr model.YearResult, demand map[string]float64, opsDays map[string]int, remainingByArea map[string]map[string]float64) model.YearSummary {
	summary := model.YearSummary{
		TotalLines:  len(yr.Lines),
		TotalAreas:  len(yr.Areas),
		TotalModels: len(demand),
	}

	utilSum := 0.0
	assigned := make(map[string]bool)
	for _, line := range yr.Lines {
		utilSum += line.UtilizationWithChangeover
		switch {
		case line.UtilizationWithChangeover > 100:
			summary.OverloadedLines++
		case line.UtilizationWithChangeover >= 70:
			summary.BalancedLines++
		default:
			summary.UnderutilizedLines++
		}
		for _, a := range line.Assignments {
			if a.AllocatedUnitsDaily > 0 {
				assigned[a.ModelID] = true
				summary.TotalAllocatedUnits += a.AllocatedUnitsDaily
			}
		}
	}
	if len(yr.Lines) > 0 {
		summary.AverageUtilization = utilSum / float64(len(yr.Lines))
	}

	summary.AssignedModels = len(assigned)
	summary.UnassignedModels = summary.TotalModels - summary.AssignedModels

	fulfillmentSum := 0.0
	for _, area := range yr.Areas {
		fulfillmentSum += area.FulfillmentPercent
	}
	if len(yr.Areas) > 0 {
		summary.DemandFulfillmentPercent = fulfillmentSum / float64(len(yr.Areas))
	} else {
		summary.DemandFulfillmentPercent = 100
	}

	for _, remaining := range remainingByArea {
		for modelID, units := range remaining {
			summary.UnfulfilledUnitsYearly += units * float64(opsDays[modelID])
		}
	}

	return summary
}

func uniqueSortedYears(years []int) []int {
	seen := make(map[int]bool, len(years))
	result := make([]int, 0, len(years))
	for _, y := range years {
		if !seen[y] {
			seen[y] = true
			result = append(result, y)
		}
	}
	sort.Ints(result)
	return result
}

// indexVolumes 按 (年份, 型号) 索引产量
func indexVolumes(volumes []model.Volume) map[int]map[string]model.Volume {
	byYear := make(map[int]map[string]model.Volume)
	for _, vol := range volumes {
		if byYear[vol.Year] == nil {
			byYear[vol.Year] = make(map[string]model.Volume)
		}
		byYear[vol.Year][vol.ModelID] = vol
	}
	return byYear
}

// modelNames 型号名查找表，产量行中的名字作兜底
func modelNames(models []model.Model, volumes []model.Volume) map[string]string {
	names := make(map[string]string, len(models))
	for _, vol := range volumes {
		if vol.ModelName != "" {
			names[vol.ModelID] = vol.ModelName
		}
	}
	for _, m := range models {
		if m.Name != "" {
			names[m.ID] = m.Name
		}
	}
	return names
}

func groupLinesByArea(lines []model.Line) map[string][]model.Line {
	byArea := make(map[string][]model.Line)
	for _, line := range lines {
		byArea[line.Area] = append(byArea[line.Area], line)
	}
	for area := range byArea {
		group := byArea[area]
		sort.Slice(group, func(i, j int) bool {
			if group[i].Name != group[j].Name {
				return group[i].Name < group[j].Name
			}
			return group[i].ID < group[j].ID
		})
	}
	return byArea
}

func sortedAreaNames(byArea map[string][]model.Line) []string {
	names := make([]string, 0, len(byArea))
	for area := range byArea {
		names = append(names, area)
	}
	sort.Strings(names)
	return names
}

// groupEdgesByArea 兼容边按其产线所属区域分组；指向未知产线的边被忽略
func groupEdgesByArea(edges []model.Compatibility, lines []model.Line) map[string][]model.Compatibility {
	areaByLine := make(map[string]string, len(lines))
	for _, line := range lines {
		areaByLine[line.ID] = line.Area
	}

	byArea := make(map[string][]model.Compatibility)
	for _, edge := range edges {
		area, ok := areaByLine[edge.LineID]
		if !ok {
			continue
		}
		byArea[area] = append(byArea[area], edge)
	}
	return byArea
}
