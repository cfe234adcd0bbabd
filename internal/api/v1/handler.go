package v1

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hocordovaesquen/blushnominas/internal/exporter"
	"github.com/hocordovaesquen/blushnominas/internal/importer"
	"github.com/hocordovaesquen/blushnominas/internal/store"
)

// MaxUploadBytes 上传文件大小上限
const MaxUploadBytes = 20 << 20

// Handler V1 API 处理器
type Handler struct {
	coordinator *importer.Coordinator
	exporter    *exporter.Exporter
	store       *store.Store // 可为空
	downloads   *exportDownloadStore
	version     string
	startedAt   time.Time
}

// NewHandler 创建 V1 API 处理器
func NewHandler(coordinator *importer.Coordinator, exp *exporter.Exporter, st *store.Store, version string) *Handler {
	return &Handler{
		coordinator: coordinator,
		exporter:    exp,
		store:       st,
		downloads:   newExportDownloadStore(nil),
		version:     version,
		startedAt:   time.Now(),
	}
}

// RegisterRoutes 注册 V1 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)
	router.GET("/imports", h.ListImports)

	// 提成设置
	router.GET("/settings", h.GetSettings)
	router.PATCH("/settings", h.UpdateSettings)
	router.GET("/rules", h.ListRules)

	// 销售明细导入
	router.POST("/import", h.Import)

	// 结果查询
	router.GET("/runs/:id/summary", h.GetRunSummary)
	router.GET("/runs/:id/records", h.ListRunRecords)

	// 工资表导出
	router.POST("/export", h.Export)
	router.POST("/export/stream", h.ExportStream)
	router.GET("/export/download/:token", h.DownloadExport)
}
