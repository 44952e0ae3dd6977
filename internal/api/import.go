package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"lineutil/internal/importer"
	servicestore "lineutil/internal/service/store"
)

// ImportResponse 导入结果响应
type ImportResponse struct {
	Import *servicestore.ImportInfo `json:"import"`
	Issues []string                 `json:"issues,omitempty"`
}

// Import 导入产能数据工作簿
// POST /api/import (multipart, 字段 file)
func (h *Handler) Import(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未找到上传文件"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无法读取上传文件"})
		return
	}
	defer f.Close()

	result, err := importer.Parse(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	info := &servicestore.ImportInfo{
		Filename:        fileHeader.Filename,
		ImportedAt:      time.Now().UTC().Format(time.RFC3339),
		Lines:           len(result.Plan.Lines),
		Models:          len(result.Plan.Models),
		Volumes:         len(result.Plan.Volumes),
		Compatibilities: len(result.Plan.Compatibilities),
	}

	h.mem.SetPlan(result.Plan, info)
	if err := h.db.SavePlan(result.Plan); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存规划输入失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, ImportResponse{
		Import: info,
		Issues: result.Issues,
	})
}
