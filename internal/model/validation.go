package model

// 配置错误类型：逐行上报，剔除出本次计算，不中断整体运行
const (
	IssueInvalidCycleTime  = "invalid_cycle_time"      // 兼容关系 cycleTime <= 0
	IssueInvalidEfficiency = "invalid_efficiency"      // 兼容关系 efficiency <= 0 或 > 100
	IssueInvalidOpsDays    = "invalid_operations_days" // 产量行运营天数 <= 0
	IssueInvalidLineTime   = "invalid_line_time"       // 产线每日可用时间 < 0
	IssueMissingFamily     = "missing_family"          // 启用换型配置时型号缺少家族
)

// ValidationIssue 输入校验问题（对应一条被剔除的输入行）
type ValidationIssue struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	LineID  string `json:"lineId,omitempty"`
	ModelID string `json:"modelId,omitempty"`
	Year    int    `json:"year,omitempty"`
}
