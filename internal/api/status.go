package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	servicestore "lineutil/internal/service/store"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	Initialized     bool                     `json:"initialized"`     // 是否已有规划输入
	HasResult       bool                     `json:"hasResult"`       // 是否已有计算结果
	Lines           int                      `json:"lines"`           // 产线数
	Models          int                      `json:"models"`          // 型号数
	Volumes         int                      `json:"volumes"`         // 产量行数
	Compatibilities int                      `json:"compatibilities"` // 兼容关系数
	Years           []int                    `json:"years"`           // 选中年份
	Import          *servicestore.ImportInfo `json:"import,omitempty"`
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	plan, err := h.mem.GetPlan()
	if err != nil {
		c.JSON(http.StatusOK, StatusResponse{
			Initialized: false,
			Years:       []int{},
		})
		return
	}

	_, resultErr := h.mem.GetLastResult()

	years := plan.SelectedYears
	if years == nil {
		years = []int{}
	}

	c.JSON(http.StatusOK, StatusResponse{
		Initialized:     true,
		HasResult:       resultErr == nil,
		Lines:           len(plan.Lines),
		Models:          len(plan.Models),
		Volumes:         len(plan.Volumes),
		Compatibilities: len(plan.Compatibilities),
		Years:           years,
		Import:          h.mem.GetImportInfo(),
	})
}
