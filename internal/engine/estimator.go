package engine

import (
	"fmt"
	"sort"

	"lineutil/internal/model"
)

// DefaultMethodID 默认换型估算方法
const DefaultMethodID = "probability_weighted"

// ResolveFunc 解析有序型号对的换型时间（秒）
type ResolveFunc func(fromModelID, toModelID string) (float64, error)

// Estimate 单次换型期望时间的估算结果
type Estimate struct {
	ExpectedSeconds float64
	Transitions     []model.Transition
	Warnings        []string
}

// Method 换型时间估算方法。策略模式：方法可通过配置切换，
// 调用方（Refiner）不感知具体算法。
type Method interface {
	ID() string
	Name() string
	Description() string
	Estimate(mix Mix, resolve ResolveFunc) (Estimate, error)
}

// MethodInfo 方法元信息（供 API 列表使用）
type MethodInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var methodRegistry = map[string]Method{
	"probability_weighted": probabilityWeighted{},
	"hhi_normalized":       hhiNormalized{},
	"simple_average":       simpleAverage{},
	"worst_case":           worstCase{},
}

// MethodByID 按 ID 查找估算方法，空 ID 返回默认方法
func MethodByID(id string) (Method, error) {
	if id == "" {
		id = DefaultMethodID
	}
	m, ok := methodRegistry[id]
	if !ok {
		return nil, fmt.Errorf("未知的换型估算方法: %s", id)
	}
	return m, nil
}

// ListMethods 列出所有已注册方法（按 ID 排序）
func ListMethods() []MethodInfo {
	infos := make([]MethodInfo, 0, len(methodRegistry))
	for _, m := range methodRegistry {
		infos = append(infos, MethodInfo{ID: m.ID(), Name: m.Name(), Description: m.Description()})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// pairwiseTransitions 枚举有份额型号的全部有序对 (i≠j)，
// 计算概率加权贡献。各方法共用。
func pairwiseTransitions(mix Mix, resolve ResolveFunc) ([]model.Transition, float64, error) {
	ids := mix.ModelIDs()

	var transitions []model.Transition
	weightedSum := 0.0

	for _, from := range ids {
		for _, to := range ids {
			if from == to {
				continue
			}
			seconds, err := resolve(from, to)
			if err != nil {
				return nil, 0, err
			}
			probability := mix.Shares[from] * mix.Shares[to]
			contribution := probability * seconds
			weightedSum += contribution

			transitions = append(transitions, model.Transition{
				FromModelID:          from,
				FromModelName:        mix.Names[from],
				ToModelID:            to,
				ToModelName:          mix.Names[to],
				ChangeoverSeconds:    seconds,
				Probability:          probability,
				WeightedContribution: contribution,
			})
		}
	}

	finishTransitions(transitions)
	return transitions, weightedSum, nil
}

// finishTransitions 回填占比并按贡献降序排序
func finishTransitions(transitions []model.Transition) {
	total := 0.0
	for _, t := range transitions {
		total += t.WeightedContribution
	}
	if total > 0 {
		for i := range transitions {
			transitions[i].PercentOfTotal = transitions[i].WeightedContribution / total * 100
		}
	}
	sort.Slice(transitions, func(i, j int) bool {
		if transitions[i].WeightedContribution != transitions[j].WeightedContribution {
			return transitions[i].WeightedContribution > transitions[j].WeightedContribution
		}
		if transitions[i].FromModelID != transitions[j].FromModelID {
			return transitions[i].FromModelID < transitions[j].FromModelID
		}
		return transitions[i].ToModelID < transitions[j].ToModelID
	})
}

// probabilityWeighted 概率加权估算（默认方法）。
// 单次换型期望时间 = Σ_{i≠j} share(i) × share(j) × time(i,j)。
type probabilityWeighted struct{}

func (probabilityWeighted) ID() string   { return "probability_weighted" }
func (probabilityWeighted) Name() string { return "概率加权" }
func (probabilityWeighted) Description() string {
	return "按需求组合份额加权各有序型号对的换型时间"
}

func (probabilityWeighted) Estimate(mix Mix, resolve ResolveFunc) (Estimate, error) {
	if mix.DistinctModels < 2 {
		return Estimate{}, nil
	}
	transitions, weightedSum, err := pairwiseTransitions(mix, resolve)
	if err != nil {
		return Estimate{}, err
	}
	return Estimate{ExpectedSeconds: weightedSum, Transitions: transitions}, nil
}

// hhiNormalized 概率加权 + (1-HHI) 归一化。
// 以"发生了一次不同型号间的转换"为条件求期望，
// 组合高度集中 (HHI >= 0.99) 时换型时间视为 0。
type hhiNormalized struct{}

func (hhiNormalized) ID() string   { return "hhi_normalized" }
func (hhiNormalized) Name() string { return "HHI 归一化" }
func (hhiNormalized) Description() string {
	return "概率加权后除以 (1-HHI)，修正同型号转换与组合集中度"
}

func (hhiNormalized) Estimate(mix Mix, resolve ResolveFunc) (Estimate, error) {
	if mix.DistinctModels < 2 {
		return Estimate{}, nil
	}
	transitions, weightedSum, err := pairwiseTransitions(mix, resolve)
	if err != nil {
		return Estimate{}, err
	}

	normalization := 1 - mix.HHI
	if normalization <= 0.01 {
		return Estimate{
			Transitions: transitions,
			Warnings:    []string{"HHI >= 0.99: 产线由单一型号主导，换型时间按 0 处理"},
		}, nil
	}
	return Estimate{ExpectedSeconds: weightedSum / normalization, Transitions: transitions}, nil
}

// simpleAverage 简单平均估算：全部有序型号对换型时间的算术平均，
// 转换概率按均匀分布 1/(n(n-1)) 计，不依赖需求组合份额。
type simpleAverage struct{}

func (simpleAverage) ID() string   { return "simple_average" }
func (simpleAverage) Name() string { return "简单平均" }
func (simpleAverage) Description() string {
	return "全部有序型号对换型时间的算术平均，不考虑需求组合份额"
}

func (simpleAverage) Estimate(mix Mix, resolve ResolveFunc) (Estimate, error) {
	if mix.DistinctModels < 2 {
		return Estimate{}, nil
	}

	ids := mix.ModelIDs()
	pairs := float64(len(ids) * (len(ids) - 1))
	uniform := 1 / pairs
	totalSeconds := 0.0
	var transitions []model.Transition
	for _, from := range ids {
		for _, to := range ids {
			if from == to {
				continue
			}
			seconds, err := resolve(from, to)
			if err != nil {
				return Estimate{}, err
			}
			totalSeconds += seconds
			transitions = append(transitions, model.Transition{
				FromModelID:          from,
				FromModelName:        mix.Names[from],
				ToModelID:            to,
				ToModelName:          mix.Names[to],
				ChangeoverSeconds:    seconds,
				Probability:          uniform,
				WeightedContribution: seconds * uniform,
			})
		}
	}

	if totalSeconds > 0 {
		for i := range transitions {
			transitions[i].PercentOfTotal = transitions[i].ChangeoverSeconds / totalSeconds * 100
		}
	}
	sort.Slice(transitions, func(i, j int) bool {
		if transitions[i].ChangeoverSeconds != transitions[j].ChangeoverSeconds {
			return transitions[i].ChangeoverSeconds > transitions[j].ChangeoverSeconds
		}
		if transitions[i].FromModelID != transitions[j].FromModelID {
			return transitions[i].FromModelID < transitions[j].FromModelID
		}
		return transitions[i].ToModelID < transitions[j].ToModelID
	})

	return Estimate{ExpectedSeconds: totalSeconds / pairs, Transitions: transitions}, nil
}

// worstCase 最差情况估算：所有转换按最长换型时间计，用于风险分析。
type worstCase struct{}

func (worstCase) ID() string   { return "worst_case" }
func (worstCase) Name() string { return "最差情况" }
func (worstCase) Description() string {
	return "全部转换按矩阵中最长的换型时间估算，保守的产能缓冲口径"
}

func (worstCase) Estimate(mix Mix, resolve ResolveFunc) (Estimate, error) {
	if mix.DistinctModels < 2 {
		return Estimate{}, nil
	}

	ids := mix.ModelIDs()
	maxSeconds := 0.0
	var transitions []model.Transition
	for _, from := range ids {
		for _, to := range ids {
			if from == to {
				continue
			}
			seconds, err := resolve(from, to)
			if err != nil {
				return Estimate{}, err
			}
			if seconds > maxSeconds {
				maxSeconds = seconds
			}
			transitions = append(transitions, model.Transition{
				FromModelID:       from,
				FromModelName:     mix.Names[from],
				ToModelID:         to,
				ToModelName:       mix.Names[to],
				ChangeoverSeconds: seconds,
			})
		}
	}

	for i := range transitions {
		if transitions[i].ChangeoverSeconds == maxSeconds {
			transitions[i].Probability = 1
		}
		transitions[i].WeightedContribution = transitions[i].ChangeoverSeconds
		if maxSeconds > 0 {
			transitions[i].PercentOfTotal = transitions[i].ChangeoverSeconds / maxSeconds * 100
		}
	}
	sort.Slice(transitions, func(i, j int) bool {
		if transitions[i].ChangeoverSeconds != transitions[j].ChangeoverSeconds {
			return transitions[i].ChangeoverSeconds > transitions[j].ChangeoverSeconds
		}
		if transitions[i].FromModelID != transitions[j].FromModelID {
			return transitions[i].FromModelID < transitions[j].FromModelID
		}
		return transitions[i].ToModelID < transitions[j].ToModelID
	})

	return Estimate{ExpectedSeconds: maxSeconds, Transitions: transitions}, nil
}
