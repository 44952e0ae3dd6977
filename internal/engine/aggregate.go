package engine

import (
	"sort"

	"lineutil/internal/model"
)

// capacityThresholdPercent 产线视为满负荷的利用率阈值
const capacityThresholdPercent = 95.0

// fulfillmentTolerance 履约状态判定的浮点容差（百分点）
const fulfillmentTolerance = 0.01

// SummarizeArea 将产线结果汇总为区域摘要。
// 展示用履约率截断到 [0,100]；原始分配量/需求量单独保留，
// 供独立口径的产量记录对账（可能出现 over 状态）。
func SummarizeArea(area string, lines []model.LineResult, demand map[string]float64, remaining map[string]float64) model.AreaSummary {
	summary := model.AreaSummary{
		Area:       area,
		TotalLines: len(lines),
	}

	utilSum := 0.0
	for _, line := range lines {
		utilSum += line.UtilizationWithChangeover
		if line.UtilizationWithChangeover >= capacityThresholdPercent {
			summary.LinesAtCapacity++
		}
		for _, a := range line.Assignments {
			summary.AllocatedUnitsDaily += a.AllocatedUnitsDaily
		}
	}
	if len(lines) > 0 {
		summary.AverageUtilization = utilSum / float64(len(lines))
	}

	for _, units := range demand {
		summary.DemandUnitsDaily += units
	}
	for _, units := range remaining {
		summary.TotalUnfulfilledUnitsDaily += units
	}

	raw := 100.0
	if summary.DemandUnitsDaily > 0 {
		raw = summary.AllocatedUnitsDaily / summary.DemandUnitsDaily * 100
	}
	switch {
	case raw > 100+fulfillmentTolerance:
		summary.FulfillmentStatus = model.FulfillmentOver
	case raw < 100-fulfillmentTolerance:
		summary.FulfillmentStatus = model.FulfillmentUnder
	default:
		summary.FulfillmentStatus = model.FulfillmentBalanced
	}

	clamped := raw
	if clamped > 100 {
		clamped = 100
	}
	if clamped < 0 {
		clamped = 0
	}
	summary.FulfillmentPercent = clamped

	return summary
}

// BuildUnfulfilled 生成区域未满足需求明细（按未满足量降序）
func BuildUnfulfilled(area string, demand map[string]float64, remaining map[string]float64, names map[string]string) []model.UnfulfilledDemand {
	result := make([]model.UnfulfilledDemand, 0, len(remaining))
	for modelID, units := range remaining {
		if units <= 0 {
			continue
		}
		total := demand[modelID]
		fulfillment := 0.0
		if total > 0 {
			fulfillment = (total - units) / total * 100
		}
		result = append(result, model.UnfulfilledDemand{
			Area:                  area,
			ModelID:               modelID,
			ModelName:             names[modelID],
			DemandUnitsDaily:      total,
			UnfulfilledUnitsDaily: units,
			FulfillmentPercent:    fulfillment,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].UnfulfilledUnitsDaily != result[j].UnfulfilledUnitsDaily {
			return result[i].UnfulfilledUnitsDaily > result[j].UnfulfilledUnitsDaily
		}
		return result[i].ModelID < result[j].ModelID
	})

	return result
}
