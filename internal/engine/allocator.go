package engine

import (
	"sort"

	"lineutil/internal/model"
)

// Allocation 区域分配结果
type Allocation struct {
	Assignments map[string][]model.Assignment // lineID → 分配记录（按分配顺序）
	TimeUsed    map[string]float64            // lineID → 生产用时（秒/日）
	Remaining   map[string]float64            // modelID → 未满足日需求
}

// Allocate 优先级贪心分配。
//
// 兼容边按 (priority 升序, lineID, modelID) 排序后单次遍历：
// 每条边最多分配 min(剩余需求, 剩余时间/有效节拍) 件。
// 这是刻意的单遍贪心——优先级顺序本身就是分配策略，不做再平衡。
// 无效边（节拍 <= 0、效率越界）已在校验阶段剔除。
func Allocate(edges []model.Compatibility, demand map[string]float64, available map[string]float64) *Allocation {
	alloc := &Allocation{
		Assignments: make(map[string][]model.Assignment),
		TimeUsed:    make(map[string]float64),
		Remaining:   make(map[string]float64, len(demand)),
	}

	remainingDemand := make(map[string]float64, len(demand))
	for id, units := range demand {
		remainingDemand[id] = units
	}

	remainingTime := make(map[string]float64, len(available))
	for id, seconds := range available {
		remainingTime[id] = seconds
	}

	sorted := make([]model.Compatibility, len(edges))
	copy(sorted, edges)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Priority != sorted[j].Priority {
			return sorted[i].Priority < sorted[j].Priority
		}
		if sorted[i].LineID != sorted[j].LineID {
			return sorted[i].LineID < sorted[j].LineID
		}
		return sorted[i].ModelID < sorted[j].ModelID
	})

	for _, edge := range sorted {
		lineTime, ok := remainingTime[edge.LineID]
		if !ok || lineTime <= 0 {
			continue
		}
		modelDemand := remainingDemand[edge.ModelID]
		if modelDemand <= 0 {
			continue
		}

		// 有效节拍 = 节拍 / (效率/100)
		effectiveCycle := edge.CycleTime / (edge.Efficiency / 100)
		units := lineTime / effectiveCycle
		if units > modelDemand {
			units = modelDemand
		}
		if units <= 0 {
			continue
		}

		timeUsed := units * effectiveCycle
		remainingDemand[edge.ModelID] -= units
		remainingTime[edge.LineID] -= timeUsed
		alloc.TimeUsed[edge.LineID] += timeUsed

		fullDemand := demand[edge.ModelID]
		fulfillment := 100.0
		if fullDemand > 0 {
			fulfillment = units / fullDemand * 100
		}

		alloc.Assignments[edge.LineID] = append(alloc.Assignments[edge.LineID], model.Assignment{
			ModelID:             edge.ModelID,
			ModelName:           edge.ModelName,
			AllocatedUnitsDaily: units,
			DemandUnitsDaily:    fullDemand,
			TimeRequiredSeconds: timeUsed,
			CycleTime:           edge.CycleTime,
			Efficiency:          edge.Efficiency,
			Priority:            edge.Priority,
			FulfillmentPercent:  fulfillment,
		})
	}

	for id := range demand {
		if rest := remainingDemand[id]; rest > 0 {
			alloc.Remaining[id] = rest
		}
	}

	return alloc
}

// assignedModelSet 产线上有分配量的型号集合，用于不动点收敛判断
func assignedModelSet(assignments []model.Assignment) map[string]bool {
	set := make(map[string]bool, len(assignments))
	for _, a := range assignments {
		if a.AllocatedUnitsDaily > 0 {
			set[a.ModelID] = true
		}
	}
	return set
}

func sameModelSet(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for id := range a {
		if !b[id] {
			return false
		}
	}
	return true
}
