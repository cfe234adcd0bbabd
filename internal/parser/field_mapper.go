package parser

import (
	"regexp"
	"strings"

	"github.com/hocordovaesquen/blushnominas/internal/model"
)

// columnRule 同义词规则：包含任一关键词且不包含任一排除词
type columnRule struct {
	column   model.CanonicalColumn
	keywords []string
	pattern  *regexp.Regexp // 可选：需要词边界的短标记
	exclude  []string
}

// columnRules 按顺序匹配，第一条命中的规则生效
var columnRules = []columnRule{
	{column: model.ColumnItem, keywords: []string{"PRODUCTO", "SERVICIO", "DESCRIPCION", "ITEM"}},
	{column: model.ColumnEmployee, keywords: []string{"EMPLEADO", "ESTILISTA", "COLABORADOR", "VENDEDOR", "PERSONAL"}},
	// 只认 TV 整词；ESTADO 等列记录的是单据状态而不是有效标记
	{column: model.ColumnValidity, pattern: regexp.MustCompile(`(^|[^A-Z])TV([^A-Z]|$)`)},
	// TOTAL COMPROBANTE / SUBTOTAL 不是金额列
	{column: model.ColumnAmount, keywords: []string{"TOTAL", "IMPORTE", "MONTO"}, exclude: []string{"COMP", "SUB"}},
	{column: model.ColumnDate, keywords: []string{"FECHA"}},
	{column: model.ColumnClass, keywords: []string{"CLASE", "CATEGOR", "TIPO"}},
	{column: model.ColumnClient, keywords: []string{"CLIENTE"}},
	{column: model.ColumnOrderID, keywords: []string{"COMPROBANTE", "TICKET", "DOCUMENTO", "NRO", "ORDEN"}, exclude: []string{"TOTAL"}},
}

// CanonicalizeHeader 将单个表头映射为规范列
func CanonicalizeHeader(label string) (model.CanonicalColumn, bool) {
	col := NormalizeColumnName(label)
	if col == "" {
		return "", false
	}
	for _, r := range columnRules {
		if ContainsAny(col, r.exclude) {
			continue
		}
		if ContainsAny(col, r.keywords) || (r.pattern != nil && r.pattern.MatchString(col)) {
			return r.column, true
		}
	}
	return "", false
}

// ColumnMap 表头映射结果
type ColumnMap struct {
	Index    map[model.CanonicalColumn]int // 规范列 -> 列索引
	Labels   []string                      // 规范化后的表头
	Unmapped []string                      // 未映射或重复的表头
}

// MapColumns 自左向右映射表头
// 每个规范列只绑定第一个命中的表头，后续重复命中记入 Unmapped
func MapColumns(headers []string) ColumnMap {
	m := ColumnMap{
		Index:  make(map[model.CanonicalColumn]int),
		Labels: make([]string, len(headers)),
	}
	for i, h := range headers {
		label := NormalizeColumnName(h)
		m.Labels[i] = label
		if label == "" {
			continue
		}
		col, ok := CanonicalizeHeader(label)
		if !ok {
			m.Unmapped = append(m.Unmapped, label)
			continue
		}
		if _, taken := m.Index[col]; taken {
			m.Unmapped = append(m.Unmapped, label)
			continue
		}
		m.Index[col] = i
	}
	return m
}

// Has 是否识别出该列
func (m ColumnMap) Has(col model.CanonicalColumn) bool {
	_, ok := m.Index[col]
	return ok
}

// Missing 返回未识别出的列
func (m ColumnMap) Missing(cols ...model.CanonicalColumn) []model.CanonicalColumn {
	var out []model.CanonicalColumn
	for _, c := range cols {
		if !m.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// Detected 非空表头列表（用于诊断信息）
func (m ColumnMap) Detected() []string {
	out := make([]string, 0, len(m.Labels))
	for _, l := range m.Labels {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}

// Renamed 规范化后的列名：已映射的列替换为规范名，其余保留原样
func (m ColumnMap) Renamed() []string {
	out := append([]string(nil), m.Labels...)
	for col, idx := range m.Index {
		out[idx] = string(col)
	}
	return out
}

// Sources 规范列 -> 原始列名
func (m ColumnMap) Sources() map[model.CanonicalColumn]string {
	out := make(map[model.CanonicalColumn]string, len(m.Index))
	for col, idx := range m.Index {
		out[col] = m.Labels[idx]
	}
	return out
}
