package engine

import (
	"fmt"
	"sort"

	"lineutil/internal/model"
)

// maxRefineIterations 不动点迭代上限。换型时间相对可用时间很小，
// 振荡可忽略；达到上限不是错误，接受最后一次结果并在结果中标记。
const maxRefineIterations = 5

// topTransitionCount 结果中保留的换型过渡分析条数
const topTransitionCount = 10

// Refiner 换型精化器：交替执行优先级分配与换型时间估算，
// 直至各产线的分配型号集合不再变化。
type Refiner struct {
	resolver      *Resolver
	method        Method
	globalEnabled bool
}

// NewRefiner 创建精化器
func NewRefiner(resolver *Resolver, method Method, globalEnabled bool) *Refiner {
	return &Refiner{
		resolver:      resolver,
		method:        method,
		globalEnabled: globalEnabled,
	}
}

// AreaResult 区域精化结果
type AreaResult struct {
	Lines     []model.LineResult // 按产线名排序
	Remaining map[string]float64 // modelID → 未满足日需求
}

// lineEstimate 单条产线一轮迭代的换型估算
type lineEstimate struct {
	timeUsedChangeover float64
	expectedSeconds    float64
	changeoverCount    int
	mix                Mix
	transitions        []model.Transition
	warnings           []string
}

// effectiveEnabled 产线换型开关的两级覆盖：
// 显式设置时以产线自身开关为准（可在全局关闭时强制开启，反之亦然），
// 否则跟随全局开关。该语义是产品行为，不可折叠成单个布尔值。
func (r *Refiner) effectiveEnabled(line model.Line) bool {
	if line.ChangeoverExplicit {
		return line.ChangeoverEnabled
	}
	return r.globalEnabled
}

// RefineArea 对单个区域执行分配-换型不动点迭代。
// 第 0 轮按全部可用时间分配；之后每轮扣除上一轮估算的换型时间。
func (r *Refiner) RefineArea(lines []model.Line, edges []model.Compatibility, demand map[string]float64) *AreaResult {
	available := make(map[string]float64, len(lines))
	for _, line := range lines {
		available[line.ID] = line.TimeAvailableDaily
	}

	var (
		alloc      *Allocation
		estimates  map[string]lineEstimate
		prevSets   map[string]map[string]bool
		iterations int
		converged  bool
	)

	for iter := 1; iter <= maxRefineIterations; iter++ {
		iterations = iter
		alloc = Allocate(edges, demand, available)
		estimates = make(map[string]lineEstimate, len(lines))

		sets := make(map[string]map[string]bool, len(lines))
		for _, line := range lines {
			sets[line.ID] = assignedModelSet(alloc.Assignments[line.ID])
			estimates[line.ID] = r.estimateLine(line, alloc.Assignments[line.ID])
		}

		if prevSets != nil {
			converged = true
			for _, line := range lines {
				if !sameModelSet(sets[line.ID], prevSets[line.ID]) {
					converged = false
					break
				}
			}
			if converged {
				break
			}
		}
		prevSets = sets

		for _, line := range lines {
			next := line.TimeAvailableDaily - estimates[line.ID].timeUsedChangeover
			if next < 0 {
				next = 0
			}
			available[line.ID] = next
		}
	}

	result := &AreaResult{Remaining: alloc.Remaining}
	for _, line := range lines {
		result.Lines = append(result.Lines, r.buildLineResult(line, alloc, estimates[line.ID], iterations, converged))
	}
	sort.Slice(result.Lines, func(i, j int) bool {
		if result.Lines[i].LineName != result.Lines[j].LineName {
			return result.Lines[i].LineName < result.Lines[j].LineName
		}
		return result.Lines[i].LineID < result.Lines[j].LineID
	})

	return result
}

// estimateLine 估算单条产线本轮的换型时间
func (r *Refiner) estimateLine(line model.Line, assignments []model.Assignment) lineEstimate {
	mix := AnalyzeMix(assignments)
	est := lineEstimate{mix: mix}

	if !r.effectiveEnabled(line) {
		return est
	}

	// 预计换型次数 = max(0, 型号数 - 1)
	if mix.DistinctModels > 1 {
		est.changeoverCount = mix.DistinctModels - 1
	}

	resolve := func(from, to string) (float64, error) {
		return r.resolver.Resolve(line.ID, from, to)
	}
	estimate, err := r.method.Estimate(mix, resolve)
	if err != nil {
		// 缺家族型号已在校验阶段剔除，此处仅防御性兜底
		est.warnings = append(est.warnings, fmt.Sprintf("换型估算失败，按 0 处理: %v", err))
		return est
	}

	est.expectedSeconds = estimate.ExpectedSeconds
	est.transitions = estimate.Transitions
	est.warnings = append(est.warnings, estimate.Warnings...)
	est.timeUsedChangeover = float64(est.changeoverCount) * est.expectedSeconds

	if est.timeUsedChangeover > line.TimeAvailableDaily {
		est.timeUsedChangeover = line.TimeAvailableDaily
		est.warnings = append(est.warnings, "换型时间超过产线每日可用时间，已截断")
	}

	return est
}

// buildLineResult 汇总产线结果。收敛状态下
// 生产时间 + 换型时间 <= 每日可用时间（浮点容差内）。
func (r *Refiner) buildLineResult(line model.Line, alloc *Allocation, est lineEstimate, iterations int, converged bool) model.LineResult {
	production := alloc.TimeUsed[line.ID]

	utilProduction := 0.0
	utilWithChangeover := 0.0
	if line.TimeAvailableDaily > 0 {
		utilProduction = production / line.TimeAvailableDaily * 100
		utilWithChangeover = (production + est.timeUsedChangeover) / line.TimeAvailableDaily * 100
	}

	transitions := est.transitions
	if len(transitions) > topTransitionCount {
		transitions = transitions[:topTransitionCount]
	}

	assignments := alloc.Assignments[line.ID]
	if assignments == nil {
		assignments = []model.Assignment{}
	}

	return model.LineResult{
		LineID:                    line.ID,
		LineName:                  line.Name,
		Area:                      line.Area,
		Kind:                      line.Kind,
		TimeAvailableDaily:        line.TimeAvailableDaily,
		TimeUsedProduction:        production,
		TimeUsedChangeover:        est.timeUsedChangeover,
		UtilizationProductionOnly: utilProduction,
		UtilizationWithChangeover: utilWithChangeover,
		ChangeoverImpactPercent:   utilWithChangeover - utilProduction,
		Assignments:               assignments,
		Changeover: &model.ChangeoverResult{
			Method:                    r.method.ID(),
			Enabled:                   r.effectiveEnabled(line),
			TimeUsedChangeover:        est.timeUsedChangeover,
			ExpectedChangeoverSeconds: est.expectedSeconds,
			EstimatedChangeoverCount:  est.changeoverCount,
			HHI:                       est.mix.HHI,
			DistinctModels:            est.mix.DistinctModels,
			TopTransitions:            transitions,
			Iterations:                iterations,
			Converged:                 converged,
			Warnings:                  est.warnings,
		},
	}
}
