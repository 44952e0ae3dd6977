package engine

import (
	"fmt"

	"lineutil/internal/model"
)

// ValidatedInput 清洗后的输入。无效行逐条记录在 Issues 中并被剔除，
// 其余数据照常参与计算，不中断整体运行。
type ValidatedInput struct {
	Lines   []model.Line
	Models  []model.Model
	Volumes []model.Volume
	Edges   []model.Compatibility
	Issues  []model.ValidationIssue
}

// ValidateInput 输入校验。
// 原始行级校验（Excel 解析、查重、跨表引用）由外部导入子系统负责，
// 这里只做引擎自身依赖的配置检查。
func ValidateInput(in *model.PlanInput) *ValidatedInput {
	v := &ValidatedInput{}

	for _, line := range in.Lines {
		if line.TimeAvailableDaily < 0 {
			v.Issues = append(v.Issues, model.ValidationIssue{
				Type:    model.IssueInvalidLineTime,
				Message: fmt.Sprintf("产线 %s 每日可用时间为负 (%.2f)，已剔除", line.Name, line.TimeAvailableDaily),
				LineID:  line.ID,
			})
			continue
		}
		v.Lines = append(v.Lines, line)
	}

	// 换型配置存在时，缺少家族的型号无法解析换型时间，
	// 属于配置错误：上报并剔除该型号（含其产量与兼容边）
	excludedModels := make(map[string]bool)
	familyRequired := in.Changeover != nil
	for _, m := range in.Models {
		if familyRequired && m.Family == "" {
			v.Issues = append(v.Issues, model.ValidationIssue{
				Type:    model.IssueMissingFamily,
				Message: fmt.Sprintf("型号 %s 缺少家族，无法参与换型计算，已剔除", m.Name),
				ModelID: m.ID,
			})
			excludedModels[m.ID] = true
			continue
		}
		v.Models = append(v.Models, m)
	}

	for _, vol := range in.Volumes {
		if excludedModels[vol.ModelID] {
			continue
		}
		if vol.OpsDays <= 0 {
			v.Issues = append(v.Issues, model.ValidationIssue{
				Type:    model.IssueInvalidOpsDays,
				Message: fmt.Sprintf("型号 %s 在 %d 年的运营天数无效 (%d)，已剔除", vol.ModelName, vol.Year, vol.OpsDays),
				ModelID: vol.ModelID,
				Year:    vol.Year,
			})
			continue
		}
		v.Volumes = append(v.Volumes, vol)
	}

	for _, edge := range in.Compatibilities {
		if excludedModels[edge.ModelID] {
			continue
		}
		if edge.CycleTime <= 0 {
			v.Issues = append(v.Issues, model.ValidationIssue{
				Type:    model.IssueInvalidCycleTime,
				Message: fmt.Sprintf("兼容关系 %s × %s 节拍无效 (%.2f)，已剔除", edge.LineName, edge.ModelName, edge.CycleTime),
				LineID:  edge.LineID,
				ModelID: edge.ModelID,
			})
			continue
		}
		if edge.Efficiency <= 0 || edge.Efficiency > 100 {
			v.Issues = append(v.Issues, model.ValidationIssue{
				Type:    model.IssueInvalidEfficiency,
				Message: fmt.Sprintf("兼容关系 %s × %s 效率越界 (%.2f)，已剔除", edge.LineName, edge.ModelName, edge.Efficiency),
				LineID:  edge.LineID,
				ModelID: edge.ModelID,
			})
			continue
		}
		v.Edges = append(v.Edges, edge)
	}

	return v
}
