package v1

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hocordovaesquen/blushnominas/internal/model"
	"github.com/hocordovaesquen/blushnominas/internal/store"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	Version    string           `json:"version"`
	Uptime     string           `json:"uptime"`
	CachedRuns int              `json:"cachedRuns"` // 内存中可导出的结果数
	Settings   model.Settings   `json:"settings"`
	LastImport *store.ImportLog `json:"lastImport,omitempty"`
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	settings, err := h.coordinator.Settings()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取设置失败"})
		return
	}

	resp := StatusResponse{
		Version:    h.version,
		Uptime:     time.Since(h.startedAt).Round(time.Second).String(),
		CachedRuns: h.coordinator.CachedRuns(),
		Settings:   settings,
	}

	if h.store != nil {
		logs, err := h.store.ListImportLogs(1)
		if err != nil {
			log.Printf("status: %v", err)
		} else if len(logs) > 0 {
			resp.LastImport = &logs[0]
		}
	}

	c.JSON(http.StatusOK, resp)
}

// ListImports 最近的导入记录
// GET /api/imports?limit=20
func (h *Handler) ListImports(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusOK, gin.H{"items": []store.ImportLog{}})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 || limit > 200 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit 参数无效"})
		return
	}

	logs, err := h.store.ListImportLogs(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取导入记录失败"})
		return
	}
	if logs == nil {
		logs = []store.ImportLog{}
	}
	c.JSON(http.StatusOK, gin.H{"items": logs})
}
