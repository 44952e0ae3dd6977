package model

// 约束选择原因
const (
	ReasonUnfulfilledDemand  = "unfulfilled_demand"
	ReasonHighestUtilization = "highest_utilization"
)

// 约束类型
const (
	ConstraintDedicated = "dedicated_line_bottleneck"
	ConstraintShared    = "shared_capacity_constraint"
	ConstraintMixed     = "mixed_constraint"
)

// 履约状态
const (
	FulfillmentUnder    = "under"
	FulfillmentBalanced = "balanced"
	FulfillmentOver     = "over"
)

// Assignment 型号在产线上的分配结果
type Assignment struct {
	ModelID             string  `json:"modelId"`
	ModelName           string  `json:"modelName"`
	AllocatedUnitsDaily float64 `json:"allocatedUnitsDaily"`
	DemandUnitsDaily    float64 `json:"demandUnitsDaily"`
	TimeRequiredSeconds float64 `json:"timeRequiredSeconds"`
	CycleTime           float64 `json:"cycleTime"`
	Efficiency          float64 `json:"efficiency"`
	Priority            int     `json:"priority"`
	FulfillmentPercent  float64 `json:"fulfillmentPercent"`
}

// Transition 换型过渡分析（SMED 改善优先级依据）
type Transition struct {
	FromModelID          string  `json:"fromModelId"`
	FromModelName        string  `json:"fromModelName"`
	ToModelID            string  `json:"toModelId"`
	ToModelName          string  `json:"toModelName"`
	ChangeoverSeconds    float64 `json:"changeoverSeconds"`
	Probability          float64 `json:"probability"`
	WeightedContribution float64 `json:"weightedContribution"`
	PercentOfTotal       float64 `json:"percentOfTotal"`
}

// ChangeoverResult 产线换型子结果
type ChangeoverResult struct {
	Method                    string       `json:"method"`
	Enabled                   bool         `json:"enabled"`
	TimeUsedChangeover        float64      `json:"timeUsedChangeover"`        // 秒/日
	ExpectedChangeoverSeconds float64      `json:"expectedChangeoverSeconds"` // 单次换型期望时间
	EstimatedChangeoverCount  int          `json:"estimatedChangeoverCount"`
	HHI                       float64      `json:"hhi"`
	DistinctModels            int          `json:"distinctModels"`
	TopTransitions            []Transition `json:"topTransitions,omitempty"`
	Iterations                int          `json:"iterations"`
	Converged                 bool         `json:"converged"`
	Warnings                  []string     `json:"warnings,omitempty"`
}

// LineResult 产线结果。由所属 (年份, 区域) 计算独占产出，产出后不可变。
type LineResult struct {
	LineID                    string            `json:"lineId"`
	LineName                  string            `json:"lineName"`
	Area                      string            `json:"area"`
	Kind                      LineKind          `json:"kind"`
	TimeAvailableDaily        float64           `json:"timeAvailableDaily"`
	TimeUsedProduction        float64           `json:"timeUsedProduction"`
	TimeUsedChangeover        float64           `json:"timeUsedChangeover"`
	UtilizationProductionOnly float64           `json:"utilizationProductionOnly"`
	UtilizationWithChangeover float64           `json:"utilizationWithChangeover"`
	ChangeoverImpactPercent   float64           `json:"changeoverImpactPercent"`
	Assignments               []Assignment      `json:"assignments"`
	Changeover                *ChangeoverResult `json:"changeover,omitempty"`
}

// UnfulfilledDemand 未满足需求明细（按区域×型号）
type UnfulfilledDemand struct {
	Area                  string  `json:"area"`
	ModelID               string  `json:"modelId"`
	ModelName             string  `json:"modelName"`
	DemandUnitsDaily      float64 `json:"demandUnitsDaily"`
	UnfulfilledUnitsDaily float64 `json:"unfulfilledUnitsDaily"`
	FulfillmentPercent    float64 `json:"fulfillmentPercent"`
}

// AreaSummary 区域汇总
type AreaSummary struct {
	Area                       string  `json:"area"`
	TotalLines                 int     `json:"totalLines"`
	AverageUtilization         float64 `json:"averageUtilization"`
	LinesAtCapacity            int     `json:"linesAtCapacity"` // 利用率 >= 95% 的产线数
	AllocatedUnitsDaily        float64 `json:"allocatedUnitsDaily"`
	DemandUnitsDaily           float64 `json:"demandUnitsDaily"`
	TotalUnfulfilledUnitsDaily float64 `json:"totalUnfulfilledUnitsDaily"`
	FulfillmentPercent         float64 `json:"fulfillmentPercent"` // 展示用，截断到 [0,100]
	FulfillmentStatus          string  `json:"fulfillmentStatus"`  // under/balanced/over
}

// ConstrainedModel 约束产线上的未满足型号
type ConstrainedModel struct {
	ModelID                  string  `json:"modelId"`
	ModelName                string  `json:"modelName"`
	UnfulfilledUnitsDaily    float64 `json:"unfulfilledUnitsDaily"`
	PercentOfLineUnfulfilled float64 `json:"percentOfLineUnfulfilled"`
}

// ConstrainedLine 约束产线明细
type ConstrainedLine struct {
	LineID                    string             `json:"lineId"`
	LineName                  string             `json:"lineName"`
	Kind                      LineKind           `json:"kind"`
	UtilizationWithChangeover float64            `json:"utilizationWithChangeover"`
	UnfulfilledUnitsDaily     float64            `json:"unfulfilledUnitsDaily"`
	TopModels                 []ConstrainedModel `json:"topModels,omitempty"`
}

// SystemConstraint 系统瓶颈（每年唯一）
type SystemConstraint struct {
	Area                       string            `json:"area"`
	Reason                     string            `json:"reason"`
	ConstraintType             string            `json:"constraintType"`
	AverageUtilization         float64           `json:"averageUtilization"`
	TotalUnfulfilledUnitsDaily float64           `json:"totalUnfulfilledUnitsDaily"`
	Lines                      []ConstrainedLine `json:"lines"`
}

// YearSummary 年度汇总
type YearSummary struct {
	TotalLines               int     `json:"totalLines"`
	TotalAreas               int     `json:"totalAreas"`
	AverageUtilization       float64 `json:"averageUtilization"`
	OverloadedLines          int     `json:"overloadedLines"`    // > 100%
	BalancedLines            int     `json:"balancedLines"`      // 70% ~ 100%
	UnderutilizedLines       int     `json:"underutilizedLines"` // < 70%
	TotalModels              int     `json:"totalModels"`
	AssignedModels           int     `json:"assignedModels"`
	UnassignedModels         int     `json:"unassignedModels"`
	TotalAllocatedUnits      float64 `json:"totalAllocatedUnits"`
	DemandFulfillmentPercent float64 `json:"demandFulfillmentPercent"`
	UnfulfilledUnitsYearly   float64 `json:"unfulfilledUnitsYearly"`
}

// YearResult 单年结果（各年独立计算，互不共享状态）
type YearResult struct {
	Year        int                 `json:"year"`
	Lines       []LineResult        `json:"lines"`
	Areas       []AreaSummary       `json:"areas"`
	Unfulfilled []UnfulfilledDemand `json:"unfulfilled"`
	Constraint  *SystemConstraint   `json:"constraint,omitempty"`
	Summary     YearSummary         `json:"summary"`
}

// Metadata 结果元信息。时间相关字段仅存在于此，
// 计算载荷对相同输入保持字节级稳定。
type Metadata struct {
	Version         string `json:"version"`
	Timestamp       string `json:"timestamp"`
	InputYears      []int  `json:"inputYears"`
	YearsProcessed  int    `json:"yearsProcessed"`
	ExecutionTimeMs int64  `json:"executionTimeMs"`
}

// OverallSummary 全局汇总
type OverallSummary struct {
	YearsProcessed             int     `json:"yearsProcessed"`
	AverageUtilizationAllYears float64 `json:"averageUtilizationAllYears"`
	TotalLinesAnalyzed         int     `json:"totalLinesAnalyzed"`
}

// PlanResult 引擎完整输出
type PlanResult struct {
	Metadata       Metadata          `json:"metadata"`
	YearResults    []YearResult      `json:"yearResults"`
	OverallSummary OverallSummary    `json:"overallSummary"`
	Issues         []ValidationIssue `json:"issues,omitempty"`
}
