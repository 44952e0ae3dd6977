package engine

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"

	"lineutil/internal/model"
)

// scenarioInput 两线两型号的基准场景：
// L1 专用线只产 M1（需求 2000 件/日），L2 共用线只产 M2（需求 3200 件/日），
// 节拍均为 10 秒、效率 100%，每日可用 28800 秒。
func scenarioInput() *model.PlanInput {
	return &model.PlanInput{
		Lines: []model.Line{
			{ID: "l1", Name: "L1", Area: "SMT", Kind: model.LineKindDedicated, TimeAvailableDaily: 28800},
			{ID: "l2", Name: "L2", Area: "SMT", Kind: model.LineKindShared, TimeAvailableDaily: 28800},
		},
		Models: []model.Model{
			{ID: "m1", Name: "Model 1", Family: "FamA"},
			{ID: "m2", Name: "Model 2", Family: "FamB"},
		},
		Volumes: []model.Volume{
			{ModelID: "m1", ModelName: "Model 1", Year: 2026, Volume: 500000, OpsDays: 250},
			{ModelID: "m2", ModelName: "Model 2", Year: 2026, Volume: 800000, OpsDays: 250},
		},
		Compatibilities: []model.Compatibility{
			{LineID: "l1", LineName: "L1", ModelID: "m1", ModelName: "Model 1", CycleTime: 10, Efficiency: 100, Priority: 1},
			{LineID: "l2", LineName: "L2", ModelID: "m2", ModelName: "Model 2", CycleTime: 10, Efficiency: 100, Priority: 1},
		},
		SelectedYears: []int{2026},
	}
}

// TestRunScenario 测试基准场景的端到端结果：
// L1 利用率 69.44%、L2 满负荷 100%、M2 欠产 320 件/日，
// 瓶颈为共用产能约束
func TestRunScenario(t *testing.T) {
	result, err := NewEngine("").Run(scenarioInput())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(result.YearResults) != 1 {
		t.Fatalf("years = %d, want 1", len(result.YearResults))
	}
	yr := result.YearResults[0]
	if yr.Year != 2026 {
		t.Errorf("year = %d, want 2026", yr.Year)
	}

	byLine := map[string]model.LineResult{}
	for _, lr := range yr.Lines {
		byLine[lr.LineID] = lr
	}

	l1 := byLine["l1"]
	if l1.Assignments[0].AllocatedUnitsDaily != 2000 {
		t.Errorf("l1 allocated = %v, want 2000", l1.Assignments[0].AllocatedUnitsDaily)
	}
	if math.Abs(l1.UtilizationWithChangeover-20000.0/28800*100) > 1e-9 {
		t.Errorf("l1 utilization = %v, want 69.44", l1.UtilizationWithChangeover)
	}

	l2 := byLine["l2"]
	if l2.Assignments[0].AllocatedUnitsDaily != 2880 {
		t.Errorf("l2 allocated = %v, want 2880", l2.Assignments[0].AllocatedUnitsDaily)
	}
	if math.Abs(l2.UtilizationWithChangeover-100) > 1e-9 {
		t.Errorf("l2 utilization = %v, want 100", l2.UtilizationWithChangeover)
	}

	if len(yr.Unfulfilled) != 1 {
		t.Fatalf("unfulfilled = %+v, want one entry", yr.Unfulfilled)
	}
	uf := yr.Unfulfilled[0]
	if uf.ModelID != "m2" || math.Abs(uf.UnfulfilledUnitsDaily-320) > 1e-9 {
		t.Errorf("unfulfilled = %+v, want m2 with 320", uf)
	}
	if math.Abs(uf.FulfillmentPercent-90) > 1e-9 {
		t.Errorf("m2 fulfillment = %v, want 90", uf.FulfillmentPercent)
	}

	if yr.Constraint == nil {
		t.Fatal("constraint should be identified")
	}
	if yr.Constraint.Area != "SMT" || yr.Constraint.Reason != model.ReasonUnfulfilledDemand {
		t.Errorf("constraint = %s/%s, want SMT/%s",
			yr.Constraint.Area, yr.Constraint.Reason, model.ReasonUnfulfilledDemand)
	}
	// 只有 L2 命中约束条件（满负荷且关联欠产），为共用线
	if yr.Constraint.ConstraintType != model.ConstraintShared {
		t.Errorf("constraint type = %s, want %s", yr.Constraint.ConstraintType, model.ConstraintShared)
	}
	if len(yr.Constraint.Lines) != 1 || yr.Constraint.Lines[0].LineID != "l2" {
		t.Errorf("constrained lines = %+v, want [l2]", yr.Constraint.Lines)
	}

	// 年度汇总：L1 < 70% 低载，L2 = 100% 均衡，无超载；
	// 全年欠产 = 320 × 250 运营日
	s := yr.Summary
	if s.OverloadedLines != 0 || s.BalancedLines != 1 || s.UnderutilizedLines != 1 {
		t.Errorf("load split = %d/%d/%d, want 0/1/1",
			s.OverloadedLines, s.BalancedLines, s.UnderutilizedLines)
	}
	if s.AssignedModels != 2 || s.UnassignedModels != 0 {
		t.Errorf("models = %d assigned / %d unassigned, want 2/0", s.AssignedModels, s.UnassignedModels)
	}
	if math.Abs(s.UnfulfilledUnitsYearly-320*250) > 1e-6 {
		t.Errorf("yearly unfulfilled = %v, want %v", s.UnfulfilledUnitsYearly, 320.0*250)
	}

	if result.OverallSummary.TotalLinesAnalyzed != 2 {
		t.Errorf("TotalLinesAnalyzed = %d, want 2", result.OverallSummary.TotalLinesAnalyzed)
	}
}

// TestRunIdempotent 测试相同输入的计算载荷字节级一致
func TestRunIdempotent(t *testing.T) {
	engine := NewEngine("")

	first, err := engine.Run(scenarioInput())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	second, err := engine.Run(scenarioInput())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	a, _ := json.Marshal(first.YearResults)
	b, _ := json.Marshal(second.YearResults)
	if string(a) != string(b) {
		t.Error("year results differ across runs of the same input")
	}
	if !reflect.DeepEqual(first.OverallSummary, second.OverallSummary) {
		t.Errorf("overall summary differs: %+v vs %+v", first.OverallSummary, second.OverallSummary)
	}
}

// TestRunMultiYear 测试多年份并行计算按年份升序归并、去重
func TestRunMultiYear(t *testing.T) {
	in := scenarioInput()
	in.Volumes = append(in.Volumes,
		model.Volume{ModelID: "m1", ModelName: "Model 1", Year: 2027, Volume: 250000, OpsDays: 250},
	)
	in.SelectedYears = []int{2027, 2026, 2027}

	result, err := NewEngine("").Run(in)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(result.YearResults) != 2 {
		t.Fatalf("years = %d, want 2 (duplicates removed)", len(result.YearResults))
	}
	if result.YearResults[0].Year != 2026 || result.YearResults[1].Year != 2027 {
		t.Errorf("year order = [%d, %d], want [2026, 2027]",
			result.YearResults[0].Year, result.YearResults[1].Year)
	}
	if result.Metadata.YearsProcessed != 2 {
		t.Errorf("YearsProcessed = %d, want 2", result.Metadata.YearsProcessed)
	}

	// 2027 只有 m1 有产量：1000 件/日全部满足
	yr2027 := result.YearResults[1]
	if yr2027.Summary.TotalModels != 1 {
		t.Errorf("2027 models = %d, want 1", yr2027.Summary.TotalModels)
	}
	if len(yr2027.Unfulfilled) != 0 {
		t.Errorf("2027 unfulfilled = %+v, want none", yr2027.Unfulfilled)
	}
}

// TestRunMethodFromConfig 测试输入中的换型方法覆盖引擎默认值
func TestRunMethodFromConfig(t *testing.T) {
	in := scenarioInput()
	in.Changeover = &model.ChangeoverConfig{
		Enabled:        true,
		DefaultMinutes: 10,
		Method:         "worst_case",
	}

	result, err := NewEngine("probability_weighted").Run(in)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for _, lr := range result.YearResults[0].Lines {
		if lr.Changeover.Method != "worst_case" {
			t.Errorf("method = %s, want worst_case", lr.Changeover.Method)
		}
	}
}

// TestRunUnknownMethod 测试未知换型方法直接报错
func TestRunUnknownMethod(t *testing.T) {
	in := scenarioInput()
	in.Changeover = &model.ChangeoverConfig{Enabled: true, Method: "monte_carlo"}

	if _, err := NewEngine("").Run(in); err == nil {
		t.Error("Run should fail for unknown changeover method")
	}
}

// TestRunNilInput 测试空输入报错
func TestRunNilInput(t *testing.T) {
	if _, err := NewEngine("").Run(nil); err == nil {
		t.Error("Run should fail for nil input")
	}
}

// TestRunEmptyInput 测试空快照正常返回空结果
func TestRunEmptyInput(t *testing.T) {
	result, err := NewEngine("").Run(&model.PlanInput{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(result.YearResults) != 0 {
		t.Errorf("year results = %d, want 0", len(result.YearResults))
	}
	if result.Metadata.Version != Version {
		t.Errorf("version = %s, want %s", result.Metadata.Version, Version)
	}
}

// TestRunValidationIssuesSurfaced 测试校验问题随结果返回且不中断计算
func TestRunValidationIssuesSurfaced(t *testing.T) {
	in := scenarioInput()
	in.Compatibilities = append(in.Compatibilities,
		model.Compatibility{LineID: "l1", ModelID: "m2", CycleTime: -1, Efficiency: 100},
	)

	result, err := NewEngine("").Run(in)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(result.Issues) != 1 || result.Issues[0].Type != model.IssueInvalidCycleTime {
		t.Errorf("issues = %+v, want one %s", result.Issues, model.IssueInvalidCycleTime)
	}
	if len(result.YearResults) != 1 {
		t.Error("computation should proceed despite validation issues")
	}
}
