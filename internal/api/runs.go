package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"lineutil/internal/store"
)

// ListRuns 运行历史列表
// GET /api/runs?limit=50
func (h *Handler) ListRuns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	runs, err := h.db.ListRuns(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取运行历史失败: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// GetRun 取回单次运行的完整结果
// GET /api/runs/:id
func (h *Handler) GetRun(c *gin.Context) {
	result, err := h.db.GetRun(c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrRunNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "运行记录不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取运行记录失败: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// DeleteRun 删除运行记录
// DELETE /api/runs/:id
func (h *Handler) DeleteRun(c *gin.Context) {
	if err := h.db.DeleteRun(c.Param("id")); err != nil {
		if errors.Is(err, store.ErrRunNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "运行记录不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "删除运行记录失败: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
