package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lineutil/internal/engine"
	"lineutil/internal/model"
)

// OptimizeRequest 计算请求。
// plan 内联快照可选：缺省时使用当前导入的快照。
type OptimizeRequest struct {
	Plan   *model.PlanInput `json:"plan,omitempty"`
	Years  []int            `json:"years,omitempty"`  // 覆盖快照的选中年份
	Method string           `json:"method,omitempty"` // 覆盖换型估算方法
}

// OptimizeResponse 计算响应
type OptimizeResponse struct {
	RunID  string            `json:"runId,omitempty"`
	Result *model.PlanResult `json:"result"`
}

// Optimize 执行产能规划计算
// POST /api/optimize
func (h *Handler) Optimize(c *gin.Context) {
	var req OptimizeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "无效的计算请求: " + err.Error()})
			return
		}
	}

	plan := req.Plan
	if plan == nil {
		stored, err := h.mem.GetPlan()
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		plan = stored
	}

	// 请求级覆盖作用于快照副本，不改动存储中的输入
	run := *plan
	if req.Years != nil {
		run.SelectedYears = req.Years
	}
	if req.Method != "" {
		cfg := model.ChangeoverConfig{}
		if run.Changeover != nil {
			cfg = *run.Changeover
		}
		cfg.Method = req.Method
		run.Changeover = &cfg
	}

	result, err := h.engine.Run(&run)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 内联快照的计算不落到工作状态
	if req.Plan == nil {
		h.mem.SetLastResult(result)
	}

	method := h.engine.DefaultMethod()
	if run.Changeover != nil && run.Changeover.Method != "" {
		method = run.Changeover.Method
	}
	runID, err := h.db.SaveRun(method, result)
	if err != nil {
		// 历史记录失败不影响本次结果
		runID = ""
	}

	c.JSON(http.StatusOK, OptimizeResponse{
		RunID:  runID,
		Result: result,
	})
}

// ListChangeoverMethods 列出可用的换型估算方法
// GET /api/changeover/methods
func (h *Handler) ListChangeoverMethods(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"default": engine.DefaultMethodID,
		"methods": engine.ListMethods(),
	})
}
