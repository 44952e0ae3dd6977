package server

import (
	"log"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"lineutil/internal/api"
	"lineutil/internal/config"
	"lineutil/internal/engine"
	servicestore "lineutil/internal/service/store"
	"lineutil/internal/store"
)

// Server HTTP服务器
type Server struct {
	router *gin.Engine
	db     *store.Store
	mem    *servicestore.MemoryStore
}

// NewServer 创建服务器
func NewServer(cfg *config.AppConfig) *Server {
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化 SQLite Store
	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		dataDir = cfg.Data.DataDir
	}
	dbPath := filepath.Join(dataDir, "lineutil.db")

	db, err := store.New(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	mem := servicestore.NewMemoryStore()

	// 启动时恢复上次的规划输入，重启不丢工作快照
	if plan, err := db.LoadPlan(); err != nil {
		log.Printf("恢复规划输入失败: %v", err)
	} else if plan != nil {
		mem.SetPlan(plan, nil)
	}

	eng := engine.NewEngine(cfg.Engine.ChangeoverMethod)
	handler := api.NewHandler(mem, db, eng)

	s := &Server{
		router: gin.Default(),
		db:     db,
		mem:    mem,
	}

	s.setupRoutes(handler)

	return s
}

// setupRoutes 设置路由
func (s *Server) setupRoutes(handler *api.Handler) {
	// CORS（桌面端与本地工具跨源访问）
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	apiGroup := s.router.Group("/api")
	{
		handler.RegisterRoutes(apiGroup)
	}
}

// Run 启动服务器
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Close 释放资源
func (s *Server) Close() error {
	return s.db.Close()
}
