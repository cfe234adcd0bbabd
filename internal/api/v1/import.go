package v1

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hocordovaesquen/blushnominas/internal/importer"
	"github.com/hocordovaesquen/blushnominas/internal/model"
	"github.com/hocordovaesquen/blushnominas/internal/parser"
)

// ImportResponse 导入结果
type ImportResponse struct {
	FileID    string                           `json:"fileId"`
	Filename  string                           `json:"filename"`
	Sheet     string                           `json:"sheet"`
	HeaderRow int                              `json:"headerRow"`
	Columns   map[model.CanonicalColumn]string `json:"columns"`
	Stats     parser.IngestStats               `json:"stats"`
	Empty     bool                             `json:"empty"`
	Summary   model.Summary                    `json:"summary"`
	Settings  model.Settings                   `json:"settings"`
}

func newImportResponse(run *importer.Run) ImportResponse {
	resp := ImportResponse{
		FileID:   run.ID,
		Filename: run.Filename,
		Sheet:    run.Sheet,
		Empty:    run.Empty(),
		Summary:  run.Summary,
		Settings: run.Settings,
	}
	if run.Ingest != nil {
		resp.HeaderRow = run.Ingest.HeaderRow
		resp.Columns = run.Ingest.Columns
		resp.Stats = run.Ingest.Stats
	}
	if resp.Summary.Employees == nil {
		resp.Summary.Employees = []model.EmployeeSummary{}
	}
	return resp
}

// Import 导入销售明细
// POST /api/import        JSON 响应
// POST /api/import?stream=1  SSE 流式进度
func (h *Handler) Import(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未找到上传文件"})
		return
	}
	if fh.Size > MaxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "文件过大"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "读取上传文件失败"})
		return
	}
	data, err := io.ReadAll(io.LimitReader(f, MaxUploadBytes+1))
	_ = f.Close()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "读取上传文件失败"})
		return
	}

	input := importer.ImportInput{Filename: fh.Filename, Data: data}

	if c.Query("stream") == "1" {
		h.importStream(c, input)
		return
	}

	run, err := h.coordinator.Run(c.Request.Context(), input)
	if err != nil {
		writeImportError(c, err)
		return
	}
	c.JSON(http.StatusOK, newImportResponse(run))
}

func (h *Handler) importStream(c *gin.Context, input importer.ImportInput) {
	// 设置 SSE 响应头
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "不支持流式响应"})
		return
	}

	for event := range h.coordinator.Import(c.Request.Context(), input) {
		if run, ok := event.Data.(*importer.Run); ok {
			event.Data = newImportResponse(run)
		}

		eventData, err := json.Marshal(event)
		if err != nil {
			continue
		}

		// SSE 格式: data: {json}\n\n
		fmt.Fprintf(c.Writer, "data: %s\n\n", eventData)
		flusher.Flush()
	}
}

// writeImportError 解析诊断返回 422，其余为 500
func writeImportError(c *gin.Context, err error) {
	if ie, ok := parser.AsIngestError(err); ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   ie.Message,
			"kind":    ie.Kind,
			"columns": ie.Columns,
		})
		return
	}
	log.Printf("import failed: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "导入失败: " + err.Error()})
}
