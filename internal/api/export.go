package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"lineutil/internal/exporter"
	"lineutil/internal/model"
	"lineutil/internal/store"
)

// ExportRequest 导出请求。runId 可选：缺省时导出最近一次计算结果。
type ExportRequest struct {
	RunID string `json:"runId,omitempty"`
}

// Export 导出结果工作簿
// POST /api/export
func (h *Handler) Export(c *gin.Context) {
	var req ExportRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "无效的导出请求: " + err.Error()})
			return
		}
	}

	var result *model.PlanResult
	var err error
	if req.RunID != "" {
		result, err = h.db.GetRun(req.RunID)
		if errors.Is(err, store.ErrRunNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "运行记录不存在"})
			return
		}
	} else {
		result, err = h.mem.GetLastResult()
	}
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	f, err := exporter.Export(result)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "生成工作簿失败: " + err.Error()})
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("resultados_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := f.Write(c.Writer); err != nil {
		// 响应头已发出，只能记录在上下文错误里
		_ = c.Error(err)
	}
}
