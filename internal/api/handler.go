package api

import (
	"github.com/gin-gonic/gin"

	"lineutil/internal/engine"
	servicestore "lineutil/internal/service/store"
	"lineutil/internal/store"
)

// Handler API 处理器
type Handler struct {
	mem    *servicestore.MemoryStore
	db     *store.Store
	engine *engine.Engine
}

// NewHandler 创建 API 处理器
func NewHandler(mem *servicestore.MemoryStore, db *store.Store, eng *engine.Engine) *Handler {
	return &Handler{
		mem:    mem,
		db:     db,
		engine: eng,
	}
}

// RegisterRoutes 注册 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)

	// 数据导入
	router.POST("/import", h.Import)

	// 规划输入
	router.GET("/plan", h.GetPlan)
	router.PUT("/plan", h.PutPlan)
	router.PUT("/plan/changeover", h.PutChangeover)
	router.PUT("/plan/years", h.PutSelectedYears)

	// 计算
	router.POST("/optimize", h.Optimize)
	router.GET("/changeover/methods", h.ListChangeoverMethods)

	// 运行历史
	router.GET("/runs", h.ListRuns)
	router.GET("/runs/:id", h.GetRun)
	router.DELETE("/runs/:id", h.DeleteRun)

	// 结果导出
	router.POST("/export", h.Export)
}
