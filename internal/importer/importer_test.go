package importer

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"lineutil/internal/model"
)

// buildWorkbook 构造测试工作簿
func buildWorkbook(t *testing.T, withChangeover bool) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", SheetLines)
	writeRows(t, f, SheetLines, [][]any{
		{"ID", "Nombre", "Area", "Tipo", "Tiempo_Disponible", "Cambios"},
		{"l1", "L1", "SMT", "dedicada", 28800, ""},
		{"l2", "L2", "SMT", "compartida", 28800, "no"},
	})

	f.NewSheet(SheetModels)
	writeRows(t, f, SheetModels, [][]any{
		{"ID", "Nombre", "Cliente", "Programa", "Familia"},
		{"m1", "Model 1", "ACME", "P1", "FamA"},
		{"m2", "Model 2", "ACME", "P1", "FamB"},
	})

	f.NewSheet(SheetVolumes)
	writeRows(t, f, SheetVolumes, [][]any{
		{"Modelo_ID", "Nombre", "Dias_Operacion", 2026, 2027},
		{"m1", "Model 1", 250, 500000, 550000},
		{"m2", "Model 2", 250, 800000, ""},
	})

	f.NewSheet(SheetCompat)
	writeRows(t, f, SheetCompat, [][]any{
		{"Linea_ID", "Modelo_ID", "Tiempo_Ciclo", "Eficiencia", "Prioridad"},
		{"l1", "m1", 10, 100, 1},
		{"l2", "m2", 12.5, 95, 2},
	})

	if withChangeover {
		f.NewSheet(SheetChangeover)
		writeRows(t, f, SheetChangeover, [][]any{
			{"Tipo", "Linea_ID", "De", "A", "Minutos"},
			{"global", "", "", "", 10},
			{"familia", "", "FamA", "FamB", 20},
			{"linea", "l2", "m1", "m2", 30},
		})
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer failed: %v", err)
	}
	return buf
}

func writeRows(t *testing.T, f *excelize.File, sheet string, rows [][]any) {
	t.Helper()
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("CoordinatesToCellName failed: %v", err)
		}
		if err := f.SetSheetRow(sheet, cellRef, &row); err != nil {
			t.Fatalf("SetSheetRow failed: %v", err)
		}
	}
}

// TestParseWorkbook 测试完整工作簿解析
func TestParseWorkbook(t *testing.T) {
	result, err := Parse(buildWorkbook(t, true))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(result.Issues) != 0 {
		t.Errorf("issues = %v, want none", result.Issues)
	}

	plan := result.Plan
	if len(plan.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(plan.Lines))
	}
	l1 := plan.Lines[0]
	if l1.ID != "l1" || l1.Area != "SMT" || l1.Kind != model.LineKindDedicated || l1.TimeAvailableDaily != 28800 {
		t.Errorf("l1 = %+v", l1)
	}
	if l1.ChangeoverExplicit {
		t.Error("l1 changeover flag should follow global (no explicit value)")
	}
	l2 := plan.Lines[1]
	if l2.Kind != model.LineKindShared || !l2.ChangeoverExplicit || l2.ChangeoverEnabled {
		t.Errorf("l2 = %+v, want shared with explicit-off changeover", l2)
	}

	if len(plan.Models) != 2 || plan.Models[0].Family != "FamA" || plan.Models[1].Customer != "ACME" {
		t.Errorf("models = %+v", plan.Models)
	}

	// m1 两年 + m2 一年（2027 空单元格跳过）
	if len(plan.Volumes) != 3 {
		t.Fatalf("volumes = %d, want 3", len(plan.Volumes))
	}
	v := plan.Volumes[0]
	if v.ModelID != "m1" || v.Year != 2026 || v.Volume != 500000 || v.OpsDays != 250 {
		t.Errorf("volume = %+v", v)
	}
	if len(plan.SelectedYears) != 2 || plan.SelectedYears[0] != 2026 || plan.SelectedYears[1] != 2027 {
		t.Errorf("years = %v, want [2026 2027]", plan.SelectedYears)
	}

	if len(plan.Compatibilities) != 2 {
		t.Fatalf("edges = %d, want 2", len(plan.Compatibilities))
	}
	e := plan.Compatibilities[1]
	if e.LineID != "l2" || e.CycleTime != 12.5 || e.Efficiency != 95 || e.Priority != 2 {
		t.Errorf("edge = %+v", e)
	}
}

// TestParseChangeoverConfig 测试换型配置 Sheet 解析
func TestParseChangeoverConfig(t *testing.T) {
	result, err := Parse(buildWorkbook(t, true))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	cfg := result.Plan.Changeover
	if cfg == nil {
		t.Fatal("changeover config should be parsed")
	}
	if !cfg.Enabled || cfg.DefaultMinutes != 10 {
		t.Errorf("cfg = %+v, want enabled with default 10", cfg)
	}
	if len(cfg.FamilyDefaults) != 1 || cfg.FamilyDefaults[0].FromFamily != "FamA" || cfg.FamilyDefaults[0].Minutes != 20 {
		t.Errorf("family defaults = %+v", cfg.FamilyDefaults)
	}
	if len(cfg.LineOverrides) != 1 || cfg.LineOverrides[0].LineID != "l2" || cfg.LineOverrides[0].Minutes != 30 {
		t.Errorf("line overrides = %+v", cfg.LineOverrides)
	}
}

// TestParseWithoutChangeoverSheet 测试无换型 Sheet 时配置为 nil
func TestParseWithoutChangeoverSheet(t *testing.T) {
	result, err := Parse(buildWorkbook(t, false))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if result.Plan.Changeover != nil {
		t.Errorf("changeover = %+v, want nil", result.Plan.Changeover)
	}
}

// TestParseMissingSheet 测试缺少必需 Sheet 时报错
func TestParseMissingSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer failed: %v", err)
	}

	if _, err := Parse(buf); err == nil {
		t.Error("Parse should fail without required sheets")
	}
}

// TestParseRowIssues 测试坏行记录问题且不中断
func TestParseRowIssues(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", SheetLines)
	writeRows(t, f, SheetLines, [][]any{
		{"ID", "Nombre", "Area", "Tipo", "Tiempo_Disponible"},
		{"l1", "L1", "", "compartida", 28800}, // 缺区域
		{"l2", "L2", "SMT", "compartida", 28800},
	})
	f.NewSheet(SheetModels)
	writeRows(t, f, SheetModels, [][]any{
		{"ID", "Nombre"},
		{"m1", "Model 1"},
	})
	f.NewSheet(SheetVolumes)
	writeRows(t, f, SheetVolumes, [][]any{
		{"Modelo_ID", "Nombre", "Dias_Operacion", 2026, "总计"}, // 非年份列
		{"m1", "Model 1", 250, 100000, 100000},
	})
	f.NewSheet(SheetCompat)
	writeRows(t, f, SheetCompat, [][]any{
		{"Linea_ID", "Modelo_ID", "Tiempo_Ciclo", "Eficiencia", "Prioridad"},
		{"l2", "", 10, 100, 1}, // 缺型号
		{"l2", "m1", 10, 100, 1},
	})

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer failed: %v", err)
	}

	result, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(result.Issues) != 3 {
		t.Errorf("issues = %v, want 3 (bad line, bad year column, bad edge)", result.Issues)
	}
	if len(result.Plan.Lines) != 1 || result.Plan.Lines[0].ID != "l2" {
		t.Errorf("lines = %+v, want only l2", result.Plan.Lines)
	}
	if len(result.Plan.Volumes) != 1 || result.Plan.Volumes[0].Year != 2026 {
		t.Errorf("volumes = %+v, want one 2026 row", result.Plan.Volumes)
	}
	if len(result.Plan.Compatibilities) != 1 {
		t.Errorf("edges = %+v, want one valid edge", result.Plan.Compatibilities)
	}
}
