package v1

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hocordovaesquen/blushnominas/internal/importer"
	"github.com/hocordovaesquen/blushnominas/internal/model"
	"github.com/hocordovaesquen/blushnominas/internal/util"
)

// runExpiredMessage 结果已过期时的提示
const runExpiredMessage = "El resultado ya no está disponible, vuelva a cargar el archivo."

func (h *Handler) lookupRun(c *gin.Context, id string) (*importer.Run, bool) {
	run, err := h.coordinator.Lookup(id)
	if err != nil {
		if errors.Is(err, importer.ErrRunNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": runExpiredMessage})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	return run, true
}

// GetRunSummary 获取汇总
// GET /api/runs/:id/summary
func (h *Handler) GetRunSummary(c *gin.Context) {
	run, ok := h.lookupRun(c, c.Param("id"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newImportResponse(run))
}

// ListRunRecords 分页查询明细
// GET /api/runs/:id/records?employee=&kind=producto|servicio&offset=0&limit=100
func (h *Handler) ListRunRecords(c *gin.Context) {
	run, ok := h.lookupRun(c, c.Param("id"))
	if !ok {
		return
	}

	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "offset 参数无效"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit <= 0 || limit > 1000 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit 参数无效"})
		return
	}

	employee := util.FoldUpper(c.Query("employee"))
	kind := strings.ToUpper(strings.TrimSpace(c.Query("kind")))

	filtered := make([]model.SaleRecord, 0, len(run.Records))
	for _, r := range run.Records {
		if employee != "" && util.FoldUpper(r.Employee) != employee {
			continue
		}
		if kind != "" && r.Kind() != kind {
			continue
		}
		filtered = append(filtered, r)
	}

	total := len(filtered)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	c.JSON(http.StatusOK, gin.H{
		"fileId": run.ID,
		"total":  total,
		"offset": offset,
		"limit":  limit,
		"items":  filtered[offset:end],
	})
}
