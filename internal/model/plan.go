package model

// LineKind 产线容量类型
type LineKind string

const (
	// LineKindDedicated 专用线：负载不能转移到其他线/区域
	LineKindDedicated LineKind = "dedicated"
	// LineKindShared 共享线：可以承接转移过来的负载
	LineKindShared LineKind = "shared"
)

// Line 产线
type Line struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Area string   `json:"area"` // 工艺区域 (如 SMT、ICT、Assembly)
	Kind LineKind `json:"kind"`

	// TimeAvailableDaily 每日可用时间（秒），必须 >= 0
	TimeAvailableDaily float64 `json:"timeAvailableDaily"`

	// 换型开关：explicit 为 true 时 own 覆盖全局开关，否则跟随全局
	ChangeoverEnabled  bool `json:"changeoverEnabled"`
	ChangeoverExplicit bool `json:"changeoverExplicit"`
}

// Model 产品型号
type Model struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Customer string `json:"customer"`
	Program  string `json:"program"`
	Family   string `json:"family"` // 换型默认值按家族分组
}

// Volume 年度产量
type Volume struct {
	ModelID   string  `json:"modelId"`
	ModelName string  `json:"modelName"`
	Year      int     `json:"year"`
	Volume    float64 `json:"volume"`         // 年产量（件）
	OpsDays   int     `json:"operationsDays"` // 年运营天数，必须 > 0
}

// DailyDemand 日需求 = 年产量 / 运营天数
func (v Volume) DailyDemand() float64 {
	if v.OpsDays <= 0 {
		return 0
	}
	return v.Volume / float64(v.OpsDays)
}

// Compatibility 产线-型号兼容关系
type Compatibility struct {
	LineID     string  `json:"lineId"`
	LineName   string  `json:"lineName"`
	ModelID    string  `json:"modelId"`
	ModelName  string  `json:"modelName"`
	CycleTime  float64 `json:"cycleTime"`  // 秒/件，必须 > 0
	Efficiency float64 `json:"efficiency"` // 0 < e <= 100
	Priority   int     `json:"priority"`   // 越小越优先
}

// FamilyChangeover 家族级换型默认值（有方向，from→to 不对称）
type FamilyChangeover struct {
	FromFamily string  `json:"fromFamily"`
	ToFamily   string  `json:"toFamily"`
	Minutes    float64 `json:"minutes"`
}

// LineChangeover 产线级换型覆盖（精确到有序型号对）
type LineChangeover struct {
	LineID      string  `json:"lineId"`
	FromModelID string  `json:"fromModelId"`
	ToModelID   string  `json:"toModelId"`
	Minutes     float64 `json:"minutes"`
}

// ChangeoverConfig 换型配置
type ChangeoverConfig struct {
	Enabled        bool               `json:"enabled"`        // 全局开关
	DefaultMinutes float64            `json:"defaultMinutes"` // 全局默认换型时间（分钟）
	Method         string             `json:"method"`         // 估算方法 ID，空值使用默认方法
	FamilyDefaults []FamilyChangeover `json:"familyDefaults"`
	LineOverrides  []LineChangeover   `json:"lineOverrides"`
}

// PlanInput 规划输入快照（引擎的完整输入，导入管线或 API 提供）
type PlanInput struct {
	Lines           []Line            `json:"lines"`
	Models          []Model           `json:"models"`
	Volumes         []Volume          `json:"volumes"`
	Compatibilities []Compatibility   `json:"compatibilities"`
	SelectedYears   []int             `json:"selectedYears"`
	Changeover      *ChangeoverConfig `json:"changeover,omitempty"`
}
