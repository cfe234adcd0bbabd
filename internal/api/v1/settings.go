package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hocordovaesquen/blushnominas/internal/importer"
	"github.com/hocordovaesquen/blushnominas/internal/model"
)

// UpdateSettingsRequest 设置更新请求（未提供的字段保持不变）
type UpdateSettingsRequest struct {
	Mode        *string  `json:"commission_mode"`
	FlatPercent *float64 `json:"flat_percent"`
}

// GetSettings 获取提成设置
// GET /api/settings
func (h *Handler) GetSettings(c *gin.Context) {
	settings, err := h.coordinator.Settings()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取设置失败"})
		return
	}
	c.JSON(http.StatusOK, settingsResponse(settings))
}

// UpdateSettings 更新提成设置
// PATCH /api/settings
func (h *Handler) UpdateSettings(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误"})
		return
	}

	settings, err := h.coordinator.Settings()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取设置失败"})
		return
	}
	if req.Mode != nil {
		settings.Mode = model.CommissionMode(*req.Mode)
	}
	if req.FlatPercent != nil {
		settings.FlatPercent = *req.FlatPercent
	}

	if err := h.coordinator.UpdateSettings(settings); err != nil {
		if errors.Is(err, importer.ErrInvalidSettings) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存设置失败"})
		return
	}

	c.JSON(http.StatusOK, settingsResponse(settings))
}

// ListRules 当前规则表（按优先级）
// GET /api/rules
func (h *Handler) ListRules(c *gin.Context) {
	type ruleView struct {
		Label     string  `json:"label"`
		Rate      float64 `json:"rate"`
		IsProduct bool    `json:"isProduct"`
	}
	rules := h.coordinator.Rules()
	out := make([]ruleView, 0, len(rules))
	for _, r := range rules {
		out = append(out, ruleView{Label: r.Label, Rate: r.Rate, IsProduct: r.IsProduct})
	}
	c.JSON(http.StatusOK, gin.H{"rules": out})
}

func settingsResponse(s model.Settings) gin.H {
	return gin.H{
		"commission_mode": s.Mode,
		"flat_percent":    s.FlatPercent,
	}
}
