package engine

import (
	"sort"

	"lineutil/internal/model"
)

// topUnfulfilledModels 每条约束产线报告的未满足型号数
const topUnfulfilledModels = 5

// Classify 选出系统瓶颈区域并分类。
//
// 选择顺序：存在未满足需求的区域中取未满足总量最大者
// (reason = unfulfilled_demand)；否则取平均利用率最高的区域
// (reason = highest_utilization)。并列时按区域名升序取首个。
func Classify(
	areas []model.AreaSummary,
	linesByArea map[string][]model.LineResult,
	remainingByArea map[string]map[string]float64,
	edges []model.Compatibility,
	names map[string]string,
) *model.SystemConstraint {
	if len(areas) == 0 {
		return nil
	}

	selected := areas[0]
	reason := model.ReasonHighestUtilization
	for _, a := range areas[1:] {
		if a.AverageUtilization > selected.AverageUtilization {
			selected = a
		}
	}
	for _, a := range areas {
		if a.TotalUnfulfilledUnitsDaily <= 0 {
			continue
		}
		if reason != model.ReasonUnfulfilledDemand || a.TotalUnfulfilledUnitsDaily > selected.TotalUnfulfilledUnitsDaily {
			selected = a
			reason = model.ReasonUnfulfilledDemand
		}
	}

	remaining := remainingByArea[selected.Area]
	lines := linesByArea[selected.Area]

	// 型号 → 兼容产线，用于把未满足需求归因到具体产线
	modelsByLine := make(map[string][]string)
	for _, e := range edges {
		modelsByLine[e.LineID] = append(modelsByLine[e.LineID], e.ModelID)
	}

	constrained := buildConstrainedLines(lines, remaining, modelsByLine, names, true)
	if len(constrained) == 0 {
		// 没有产线命中约束条件（如未满足型号在该区域无任何兼容产线），
		// 按区域全部产线分类，避免空结论
		constrained = buildConstrainedLines(lines, remaining, modelsByLine, names, false)
	}

	constraintType := classifyKinds(constrained)

	return &model.SystemConstraint{
		Area:                       selected.Area,
		Reason:                     reason,
		ConstraintType:             constraintType,
		AverageUtilization:         selected.AverageUtilization,
		TotalUnfulfilledUnitsDaily: selected.TotalUnfulfilledUnitsDaily,
		Lines:                      constrained,
	}
}

// buildConstrainedLines 构建约束产线明细。
// onlyConstrained 为 true 时仅保留利用率 >= 95% 或关联未满足需求的产线。
func buildConstrainedLines(
	lines []model.LineResult,
	remaining map[string]float64,
	modelsByLine map[string][]string,
	names map[string]string,
	onlyConstrained bool,
) []model.ConstrainedLine {
	var result []model.ConstrainedLine

	for _, line := range lines {
		lineModels := modelsByLine[line.LineID]

		lineUnfulfilled := 0.0
		perModel := make(map[string]float64)
		for _, modelID := range lineModels {
			if units := remaining[modelID]; units > 0 {
				if _, seen := perModel[modelID]; !seen {
					perModel[modelID] = units
					lineUnfulfilled += units
				}
			}
		}

		atCapacity := line.UtilizationWithChangeover >= capacityThresholdPercent
		if onlyConstrained && !atCapacity && lineUnfulfilled <= 0 {
			continue
		}

		top := make([]model.ConstrainedModel, 0, len(perModel))
		for modelID, units := range perModel {
			percent := 0.0
			if lineUnfulfilled > 0 {
				percent = units / lineUnfulfilled * 100
			}
			top = append(top, model.ConstrainedModel{
				ModelID:                  modelID,
				ModelName:                names[modelID],
				UnfulfilledUnitsDaily:    units,
				PercentOfLineUnfulfilled: percent,
			})
		}
		sort.Slice(top, func(i, j int) bool {
			if top[i].UnfulfilledUnitsDaily != top[j].UnfulfilledUnitsDaily {
				return top[i].UnfulfilledUnitsDaily > top[j].UnfulfilledUnitsDaily
			}
			return top[i].ModelID < top[j].ModelID
		})
		if len(top) > topUnfulfilledModels {
			top = top[:topUnfulfilledModels]
		}

		result = append(result, model.ConstrainedLine{
			LineID:                    line.LineID,
			LineName:                  line.LineName,
			Kind:                      line.Kind,
			UtilizationWithChangeover: line.UtilizationWithChangeover,
			UnfulfilledUnitsDaily:     lineUnfulfilled,
			TopModels:                 top,
		})
	}

	return result
}

// classifyKinds 根据约束产线的容量类型分类瓶颈
func classifyKinds(lines []model.ConstrainedLine) string {
	allDedicated := true
	allShared := true
	for _, line := range lines {
		switch line.Kind {
		case model.LineKindDedicated:
			allShared = false
		case model.LineKindShared:
			allDedicated = false
		default:
			allDedicated = false
			allShared = false
		}
	}
	switch {
	case len(lines) > 0 && allDedicated:
		return model.ConstraintDedicated
	case len(lines) > 0 && allShared:
		return model.ConstraintShared
	default:
		return model.ConstraintMixed
	}
}
