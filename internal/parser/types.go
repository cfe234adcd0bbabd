package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hocordovaesquen/blushnominas/internal/model"
)

// ErrorKind 导入错误类型
type ErrorKind string

const (
	KindHeaderNotFound        ErrorKind = "header_not_found"
	KindRequiredColumnMissing ErrorKind = "required_column_missing"
	KindEmptyWorkbook         ErrorKind = "empty_workbook"
	KindUnreadableWorkbook    ErrorKind = "unreadable_workbook"
)

// IngestError 可直接展示给用户的导入诊断
type IngestError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Columns []string  `json:"columns,omitempty"` // 实际识别到的列名
	Err     error     `json:"-"`
}

func (e *IngestError) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

func (e *IngestError) Unwrap() error {
	return e.Err
}

// Is 按错误类型比较，便于 errors.Is(err, ErrHeaderNotFound)
func (e *IngestError) Is(target error) bool {
	t, ok := target.(*IngestError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrHeaderNotFound        = &IngestError{Kind: KindHeaderNotFound}
	ErrRequiredColumnMissing = &IngestError{Kind: KindRequiredColumnMissing}
	ErrEmptyWorkbook         = &IngestError{Kind: KindEmptyWorkbook}
	ErrUnreadableWorkbook    = &IngestError{Kind: KindUnreadableWorkbook}
)

// AsIngestError 提取 IngestError
func AsIngestError(err error) (*IngestError, bool) {
	var ie *IngestError
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}

func newHeaderNotFound(cfg HeaderConfig) *IngestError {
	return &IngestError{
		Kind: KindHeaderNotFound,
		Message: fmt.Sprintf(
			"No se encontró la fila de encabezados en las primeras %d filas. Verifica que el Excel tenga columnas %s.",
			cfg.ScanRows, strings.Join(cfg.Required, ", ")),
	}
}

func newRequiredColumnMissing(missing []model.CanonicalColumn, detected []string) *IngestError {
	names := make([]string, 0, len(missing))
	for _, c := range missing {
		names = append(names, string(c))
	}
	return &IngestError{
		Kind: KindRequiredColumnMissing,
		Message: fmt.Sprintf("Faltan columnas obligatorias: %s. Columnas detectadas: %s",
			strings.Join(names, ", "), strings.Join(detected, " | ")),
		Columns: detected,
	}
}

// NewUnreadableWorkbook 文件无法作为 Excel 打开
func NewUnreadableWorkbook(err error) *IngestError {
	return &IngestError{
		Kind:    KindUnreadableWorkbook,
		Message: fmt.Sprintf("Error al procesar el archivo: %v", err),
		Err:     err,
	}
}

// NewEmptyWorkbook 工作簿没有可用的工作表
func NewEmptyWorkbook() *IngestError {
	return &IngestError{
		Kind:    KindEmptyWorkbook,
		Message: "El archivo no contiene hojas con datos.",
	}
}

// HeaderConfig 表头识别配置
type HeaderConfig struct {
	ScanRows int      `json:"scanRows"` // 扫描行数上限
	Required []string `json:"required"` // 必须全部命中的关键词（每项可为正则“或”）
}

// Options 导入选项
type Options struct {
	Header      HeaderConfig
	Denylist    []string // 非数据行标记（如报表合计行、重复表头）
	ValidMarker string   // 有效销售标记
	Unassigned  string   // 员工为空时的占位名称
}

const (
	DefaultScanRows    = 30
	DefaultValidMarker = "V"
)

// DefaultRequiredKeywords 默认表头关键词：商品/服务 + 金额
var DefaultRequiredKeywords = []string{
	"PRODUCTO|SERVICIO",
	"TOTAL|IMPORTE|MONTO",
}

// DefaultDenylist 默认非数据行标记
var DefaultDenylist = []string{
	"TOTAL",
	"SUBTOTAL",
	"RESUMEN",
	"PRODUCTO / SERVICIO",
	"REGISTRO VENTA DETALLE",
}

// DefaultOptions 默认导入选项
func DefaultOptions() Options {
	return Options{
		Header: HeaderConfig{
			ScanRows: DefaultScanRows,
			Required: append([]string(nil), DefaultRequiredKeywords...),
		},
		Denylist:    append([]string(nil), DefaultDenylist...),
		ValidMarker: DefaultValidMarker,
		Unassigned:  model.UnassignedEmployee,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Header.ScanRows <= 0 {
		o.Header.ScanRows = def.Header.ScanRows
	}
	if len(o.Header.Required) == 0 {
		o.Header.Required = def.Header.Required
	}
	if o.Denylist == nil {
		o.Denylist = def.Denylist
	}
	if strings.TrimSpace(o.ValidMarker) == "" {
		o.ValidMarker = def.ValidMarker
	}
	if strings.TrimSpace(o.Unassigned) == "" {
		o.Unassigned = def.Unassigned
	}
	return o
}

// IngestStats 行过滤统计
type IngestStats struct {
	DataRows        int `json:"dataRows"`        // 表头之后的行数
	Kept            int `json:"kept"`            // 保留行数
	BlankItem       int `json:"blankItem"`       // 商品/服务为空
	NonData         int `json:"nonData"`         // 合计行/重复表头
	Invalid         int `json:"invalid"`         // 非有效销售
	CoercedAmounts  int `json:"coercedAmounts"`  // 金额无法解析，按 0 处理
	UnassignedNames int `json:"unassignedNames"` // 员工为空
}

// Result 导入结果
type Result struct {
	HeaderRow int                              `json:"headerRow"` // 表头所在行（从 0 开始）
	Columns   map[model.CanonicalColumn]string `json:"columns"`   // 规范列 -> 原始列名
	Detected  []string                         `json:"detected"`  // 规范化后的全部表头
	Lines     []model.SaleLine                 `json:"lines"`
	Stats     IngestStats                      `json:"stats"`
}

// Empty 过滤后没有任何数据行（合法结果，不是错误）
func (r *Result) Empty() bool {
	return r == nil || len(r.Lines) == 0
}
