package engine

import (
	"sort"

	"lineutil/internal/model"
)

// Mix 产线型号组合统计
type Mix struct {
	Shares         map[string]float64 // modelID → 分配份额
	Names          map[string]string  // modelID → 型号名
	HHI            float64            // Σ share²，1 表示单一型号
	DistinctModels int                // 有分配量的型号数
}

// ModelIDs 返回有份额的型号 ID（升序，保证遍历确定性）
func (m Mix) ModelIDs() []string {
	ids := make([]string, 0, len(m.Shares))
	for id := range m.Shares {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// AnalyzeMix 计算产线分配结果的型号份额与 HHI。
// 总分配量为 0 时返回空份额、HHI 为 0。
func AnalyzeMix(assignments []model.Assignment) Mix {
	mix := Mix{
		Shares: make(map[string]float64),
		Names:  make(map[string]string),
	}

	allocated := make(map[string]float64)
	total := 0.0
	for _, a := range assignments {
		if a.AllocatedUnitsDaily <= 0 {
			continue
		}
		allocated[a.ModelID] += a.AllocatedUnitsDaily
		mix.Names[a.ModelID] = a.ModelName
		total += a.AllocatedUnitsDaily
	}

	if total <= 0 {
		return Mix{Shares: map[string]float64{}, Names: map[string]string{}}
	}

	for id, units := range allocated {
		share := units / total
		mix.Shares[id] = share
		mix.HHI += share * share
	}
	mix.DistinctModels = len(mix.Shares)

	return mix
}
