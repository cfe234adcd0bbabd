package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	v1 "github.com/hocordovaesquen/blushnominas/internal/api/v1"
	"github.com/hocordovaesquen/blushnominas/internal/calculator"
	"github.com/hocordovaesquen/blushnominas/internal/config"
	"github.com/hocordovaesquen/blushnominas/internal/exporter"
	"github.com/hocordovaesquen/blushnominas/internal/importer"
	"github.com/hocordovaesquen/blushnominas/internal/store"
)

// Version 版本号（构建时可通过 -ldflags 覆盖）
var Version = "dev"

//go:embed all:dist
var staticFiles embed.FS

// Server HTTP服务器
type Server struct {
	cfg         *config.AppConfig
	dataDir     string
	router      *gin.Engine
	mu          sync.Mutex
	httpServer  *http.Server
	store       *store.Store
	coordinator *importer.Coordinator
	exporter    *exporter.Exporter
	v1          *v1.Handler
}

// NewServer 创建服务器
func NewServer(cfg *config.AppConfig) (*Server, error) {
	devMode := cfg.Server.DevMode
	if !devMode {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// 初始化 SQLite Store
	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "blush.db")

	sqliteStore, err := store.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// 提成规则表：未配置时使用内置规则
	rules, err := calculator.LoadRuleConfig(cfg.Commission.RulesPath)
	if err != nil {
		_ = sqliteStore.Close()
		return nil, err
	}

	coordinator, err := importer.NewCoordinator(importer.Options{
		Store:           sqliteStore,
		Rules:           rules,
		Ingest:          cfg.IngestOptions(),
		SheetKeywords:   cfg.Ingest.SheetKeywords,
		DefaultSettings: cfg.DefaultSettings(),
		TTL:             time.Duration(cfg.Cache.TTLSeconds) * time.Second,
	})
	if err != nil {
		_ = sqliteStore.Close()
		return nil, err
	}

	exp := exporter.NewExporter(nil)

	s := &Server{
		cfg:         cfg,
		dataDir:     dataDir,
		router:      gin.Default(),
		store:       sqliteStore,
		coordinator: coordinator,
		exporter:    exp,
		v1:          v1.NewHandler(coordinator, exp, sqliteStore, Version),
	}

	s.setupRoutes(devMode)

	return s, nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes(devMode bool) {
	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// 上传大小限制（multipart 解析时使用）
	s.router.MaxMultipartMemory = v1.MaxUploadBytes

	// V1 API 路由（/api 与 /api/v1 均可访问）
	s.v1.RegisterRoutes(s.router.Group("/api"))
	s.v1.RegisterRoutes(s.router.Group("/api/v1"))

	// 静态资源
	if devMode {
		// 开发模式：代理到前端开发服务器
		s.router.NoRoute(func(c *gin.Context) {
			c.Redirect(http.StatusTemporaryRedirect, "http://localhost:5173"+c.Request.URL.Path)
		})
		return
	}

	// 生产模式：使用embed的静态资源
	sub, _ := fs.Sub(staticFiles, "dist")

	// 静态资源 - assets 目录
	assetsSub, _ := fs.Sub(sub, "assets")
	s.router.StaticFS("/assets", http.FS(assetsSub))

	// favicon
	s.router.GET("/favicon.svg", func(c *gin.Context) {
		data, err := fs.ReadFile(sub, "favicon.svg")
		if err != nil {
			c.Status(http.StatusNotFound)
			return
		}
		c.Data(http.StatusOK, "image/svg+xml", data)
	})

	// 首页
	s.router.GET("/", func(c *gin.Context) {
		data, _ := fs.ReadFile(sub, "index.html")
		c.Data(http.StatusOK, "text/html; charset=utf-8", data)
	})

	// SPA 路由 fallback
	s.router.NoRoute(func(c *gin.Context) {
		data, _ := fs.ReadFile(sub, "index.html")
		c.Data(http.StatusOK, "text/html; charset=utf-8", data)
	})
}

// Handler 路由（用于测试）
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run 启动服务器，阻塞直到关闭
func (s *Server) Run(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// StartWatcher 启用收件目录监听（watch.enabled 为 false 时不做任何事）
func (s *Server) StartWatcher(ctx context.Context) error {
	if !s.cfg.Watch.Enabled {
		return nil
	}
	w, err := importer.NewWatcher(s.coordinator, s.exporter, importer.WatchOptions{
		InboxDir:  filepath.Join(s.dataDir, "inbox"),
		ExportDir: filepath.Join(s.dataDir, "exports"),
		Debounce:  time.Duration(s.cfg.Watch.DebounceMS) * time.Millisecond,
	})
	if err != nil {
		return err
	}
	go func() {
		if err := w.Run(ctx); err != nil {
			log.Printf("收件目录监听停止: %v", err)
		}
	}()
	return nil
}

// Shutdown 停止服务并关闭数据库
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()
	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.store.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// DataDir 数据目录
func (s *Server) DataDir() string {
	return s.dataDir
}
