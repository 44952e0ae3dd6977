package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"lineutil/internal/model"
	servicestore "lineutil/internal/service/store"
)

// GetPlan 获取当前规划输入快照
// GET /api/plan
func (h *Handler) GetPlan(c *gin.Context) {
	plan, err := h.mem.GetPlan()
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, plan)
}

// PutPlan 整体替换规划输入快照
// PUT /api/plan
func (h *Handler) PutPlan(c *gin.Context) {
	var plan model.PlanInput
	if err := c.ShouldBindJSON(&plan); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的规划输入: " + err.Error()})
		return
	}

	info := &servicestore.ImportInfo{
		Filename:        "api",
		ImportedAt:      time.Now().UTC().Format(time.RFC3339),
		Lines:           len(plan.Lines),
		Models:          len(plan.Models),
		Volumes:         len(plan.Volumes),
		Compatibilities: len(plan.Compatibilities),
	}

	h.mem.SetPlan(&plan, info)
	if err := h.db.SavePlan(&plan); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存规划输入失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// PutChangeover 更新换型配置
// PUT /api/plan/changeover
func (h *Handler) PutChangeover(c *gin.Context) {
	var cfg model.ChangeoverConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的换型配置: " + err.Error()})
		return
	}

	if err := h.mem.UpdateChangeover(&cfg); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	h.persistSettings(c)
}

// PutSelectedYears 更新参与计算的年份
// PUT /api/plan/years
func (h *Handler) PutSelectedYears(c *gin.Context) {
	var req struct {
		Years []int `json:"years"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的年份列表: " + err.Error()})
		return
	}

	if err := h.mem.UpdateSelectedYears(req.Years); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	h.persistSettings(c)
}

func (h *Handler) persistSettings(c *gin.Context) {
	plan, err := h.mem.GetPlan()
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err := h.db.SaveSettings(plan); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存设置失败: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
