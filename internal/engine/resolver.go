package engine

import (
	"fmt"

	"lineutil/internal/model"
)

type familyPair struct {
	from string
	to   string
}

type lineTransition struct {
	lineID      string
	fromModelID string
	toModelID   string
}

// Resolver 换型时间解析器。
// 级联严格按首个命中生效：产线覆盖 → 家族默认 → 全局默认，
// 各层之间不做任何平均或混合。
type Resolver struct {
	defaultSeconds float64
	familyDefaults map[familyPair]float64
	lineOverrides  map[lineTransition]float64
	familyByModel  map[string]string
}

// NewResolver 创建解析器。分钟在此处统一换算为秒。
func NewResolver(cfg *model.ChangeoverConfig, models []model.Model) *Resolver {
	r := &Resolver{
		familyDefaults: make(map[familyPair]float64),
		lineOverrides:  make(map[lineTransition]float64),
		familyByModel:  make(map[string]string),
	}

	for _, m := range models {
		r.familyByModel[m.ID] = m.Family
	}

	if cfg == nil {
		return r
	}

	r.defaultSeconds = cfg.DefaultMinutes * 60

	// 家族默认值有方向：A→B 与 B→A 独立配置
	for _, fd := range cfg.FamilyDefaults {
		r.familyDefaults[familyPair{from: fd.FromFamily, to: fd.ToFamily}] = fd.Minutes * 60
	}

	for _, lo := range cfg.LineOverrides {
		key := lineTransition{lineID: lo.LineID, fromModelID: lo.FromModelID, toModelID: lo.ToModelID}
		r.lineOverrides[key] = lo.Minutes * 60
	}

	return r
}

// Resolve 解析有序型号对在指定产线上的换型时间（秒）。
// 同型号转换恒为 0，不可覆盖。型号缺少家族且没有产线覆盖可兜底时
// 视为配置错误返回（校验阶段已剔除此类型号，这里仅作防御）。
func (r *Resolver) Resolve(lineID, fromModelID, toModelID string) (float64, error) {
	if fromModelID == toModelID {
		return 0, nil
	}

	key := lineTransition{lineID: lineID, fromModelID: fromModelID, toModelID: toModelID}
	if seconds, ok := r.lineOverrides[key]; ok {
		return seconds, nil
	}

	fromFamily, ok := r.familyByModel[fromModelID]
	if !ok || fromFamily == "" {
		return 0, fmt.Errorf("型号 %s 缺少家族，无法解析换型时间", fromModelID)
	}
	toFamily, ok := r.familyByModel[toModelID]
	if !ok || toFamily == "" {
		return 0, fmt.Errorf("型号 %s 缺少家族，无法解析换型时间", toModelID)
	}

	if seconds, ok := r.familyDefaults[familyPair{from: fromFamily, to: toFamily}]; ok {
		return seconds, nil
	}

	return r.defaultSeconds, nil
}
