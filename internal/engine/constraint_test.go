package engine

import (
	"testing"

	"lineutil/internal/model"
)

// TestClassifyUnfulfilledWins 测试存在未满足需求时优先于高利用率
func TestClassifyUnfulfilledWins(t *testing.T) {
	areas := []model.AreaSummary{
		{Area: "ICT", AverageUtilization: 99},
		{Area: "SMT", AverageUtilization: 80, TotalUnfulfilledUnitsDaily: 320},
	}
	linesByArea := map[string][]model.LineResult{
		"SMT": {{LineID: "l2", LineName: "L2", Kind: model.LineKindShared, UtilizationWithChangeover: 100}},
		"ICT": {{LineID: "l9", LineName: "L9", Kind: model.LineKindDedicated, UtilizationWithChangeover: 99}},
	}
	remainingByArea := map[string]map[string]float64{
		"SMT": {"m2": 320},
	}
	edges := []model.Compatibility{
		{LineID: "l2", ModelID: "m2"},
	}

	constraint := Classify(areas, linesByArea, remainingByArea, edges, map[string]string{"m2": "Model 2"})

	if constraint == nil {
		t.Fatal("constraint should not be nil")
	}
	if constraint.Area != "SMT" {
		t.Errorf("area = %s, want SMT", constraint.Area)
	}
	if constraint.Reason != model.ReasonUnfulfilledDemand {
		t.Errorf("reason = %s, want %s", constraint.Reason, model.ReasonUnfulfilledDemand)
	}
	if constraint.ConstraintType != model.ConstraintShared {
		t.Errorf("type = %s, want %s", constraint.ConstraintType, model.ConstraintShared)
	}
	if len(constraint.Lines) != 1 || constraint.Lines[0].LineID != "l2" {
		t.Fatalf("constrained lines = %+v, want [l2]", constraint.Lines)
	}
	top := constraint.Lines[0].TopModels
	if len(top) != 1 || top[0].ModelID != "m2" || top[0].UnfulfilledUnitsDaily != 320 {
		t.Errorf("top models = %+v, want m2 with 320", top)
	}
}

// TestClassifyHighestUtilization 测试需求全满足时取最高利用率区域
func TestClassifyHighestUtilization(t *testing.T) {
	areas := []model.AreaSummary{
		{Area: "SMT", AverageUtilization: 70},
		{Area: "ICT", AverageUtilization: 97},
	}
	linesByArea := map[string][]model.LineResult{
		"SMT": {{LineID: "l1", Kind: model.LineKindDedicated, UtilizationWithChangeover: 70}},
		"ICT": {{LineID: "l9", Kind: model.LineKindDedicated, UtilizationWithChangeover: 97}},
	}

	constraint := Classify(areas, linesByArea, nil, nil, nil)

	if constraint.Area != "ICT" {
		t.Errorf("area = %s, want ICT", constraint.Area)
	}
	if constraint.Reason != model.ReasonHighestUtilization {
		t.Errorf("reason = %s, want %s", constraint.Reason, model.ReasonHighestUtilization)
	}
	if constraint.ConstraintType != model.ConstraintDedicated {
		t.Errorf("type = %s, want %s", constraint.ConstraintType, model.ConstraintDedicated)
	}
}

// TestClassifyUnfulfilledTieBreak 测试未满足量并列时取区域名升序首个
func TestClassifyUnfulfilledTieBreak(t *testing.T) {
	// 输入按区域名升序，严格大于才替换，并列保持首个
	areas := []model.AreaSummary{
		{Area: "ICT", AverageUtilization: 50, TotalUnfulfilledUnitsDaily: 100},
		{Area: "SMT", AverageUtilization: 90, TotalUnfulfilledUnitsDaily: 100},
	}
	linesByArea := map[string][]model.LineResult{
		"ICT": {{LineID: "l9", Kind: model.LineKindShared, UtilizationWithChangeover: 100}},
		"SMT": {{LineID: "l1", Kind: model.LineKindShared, UtilizationWithChangeover: 100}},
	}

	constraint := Classify(areas, linesByArea, nil, nil, nil)

	if constraint.Area != "ICT" {
		t.Errorf("area = %s, want ICT (name ascending)", constraint.Area)
	}
}

// TestClassifyMixedKind 测试专用与共用产线并存时为 mixed
func TestClassifyMixedKind(t *testing.T) {
	areas := []model.AreaSummary{
		{Area: "SMT", AverageUtilization: 99},
	}
	linesByArea := map[string][]model.LineResult{
		"SMT": {
			{LineID: "l1", Kind: model.LineKindDedicated, UtilizationWithChangeover: 99},
			{LineID: "l2", Kind: model.LineKindShared, UtilizationWithChangeover: 98},
		},
	}

	constraint := Classify(areas, linesByArea, nil, nil, nil)

	if constraint.ConstraintType != model.ConstraintMixed {
		t.Errorf("type = %s, want %s", constraint.ConstraintType, model.ConstraintMixed)
	}
}

// TestClassifyFallbackAllLines 测试无产线命中约束条件时退回全区域产线
func TestClassifyFallbackAllLines(t *testing.T) {
	// 未满足型号在该区域没有任何兼容边，且产线利用率均低于 95%
	areas := []model.AreaSummary{
		{Area: "SMT", AverageUtilization: 40, TotalUnfulfilledUnitsDaily: 500},
	}
	linesByArea := map[string][]model.LineResult{
		"SMT": {{LineID: "l1", Kind: model.LineKindDedicated, UtilizationWithChangeover: 40}},
	}
	remainingByArea := map[string]map[string]float64{
		"SMT": {"m9": 500},
	}

	constraint := Classify(areas, linesByArea, remainingByArea, nil, nil)

	if len(constraint.Lines) != 1 {
		t.Fatalf("fallback should include all area lines, got %d", len(constraint.Lines))
	}
	if constraint.Reason != model.ReasonUnfulfilledDemand {
		t.Errorf("reason = %s, want %s", constraint.Reason, model.ReasonUnfulfilledDemand)
	}
}

// TestClassifyEmpty 测试无区域时返回 nil
func TestClassifyEmpty(t *testing.T) {
	if constraint := Classify(nil, nil, nil, nil, nil); constraint != nil {
		t.Errorf("constraint = %+v, want nil", constraint)
	}
}
