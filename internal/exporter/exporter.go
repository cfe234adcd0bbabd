package exporter

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/hocordovaesquen/blushnominas/internal/model"
)

const (
	SummarySheet = "Resumen Nómina"
	DetailSheet  = "Detalle Operaciones"

	headerColor    = "#E91E63"
	currencyFormat = `"S/ "#,##0.00`
)

// SummaryHeaders 汇总表表头（A-L）
var SummaryHeaders = []string{
	"EMPLEADO",
	"CANT. SERVICIOS",
	"PRODUCCIÓN SERVICIOS",
	"COMISIÓN SERVICIOS",
	"PRODUCCIÓN PRODUCTOS",
	"COMISIÓN PRODUCTOS",
	"PRODUCCIÓN TOTAL",
	"COMISIÓN TOTAL",
	"DESCUENTOS",
	"EXTRAS",
	"MONTO A PAGAR",
	"% PARTICIPACIÓN",
}

// DetailHeaders 明细表表头（A-I）
var DetailHeaders = []string{
	"FECHA",
	"EMPLEADO",
	"PRODUCTO / SERVICIO",
	"CLASIFICACIÓN",
	"TOTAL",
	"REGLA",
	"% COMISIÓN",
	"COMISIÓN",
	"CLIENTE",
}

// Payroll 导出数据
type Payroll struct {
	Summary model.Summary
	Records []model.SaleRecord
}

// ExportOptions 导出选项
type ExportOptions struct {
	Adjustments map[string]model.Adjustment // 员工 -> 扣款/奖励
	Progress    func(ProgressEvent)
}

// Exporter 工资表导出器
//
// 输出两个工作表：汇总表中的合计、应付金额与占比均为公式，明细表的提成列为公式，
// 下载后修改比例或扣款，结果会自动重算。
type Exporter struct {
	now func() time.Time
}

// NewExporter 创建导出器；now 为空时使用 time.Now
func NewExporter(now func() time.Time) *Exporter {
	if now == nil {
		now = time.Now
	}
	return &Exporter{now: now}
}

// FileName 下载文件名
func (e *Exporter) FileName() string {
	return FileName(e.now())
}

// FileName 按日期生成文件名
func FileName(t time.Time) string {
	return fmt.Sprintf("Nomina_Blush_%s.xlsx", t.Format("2006-01-02"))
}

// Export 导出 Excel
func (e *Exporter) Export(p Payroll, opts ExportOptions) (*excelize.File, error) {
	f := excelize.NewFile()

	reportProgress(opts.Progress, 5, "准备工作簿")

	styles, err := newStyleSet(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("创建样式失败: %w", err)
	}

	// 默认 Sheet1 改名为汇总表
	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		_ = f.Close()
		return nil, err
	}

	reportProgress(opts.Progress, 20, "写入汇总表")
	if err := writeSummarySheet(f, styles, p.Summary, opts.Adjustments); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("写入 %s 失败: %w", SummarySheet, err)
	}

	reportProgress(opts.Progress, 60, "写入明细表")
	if _, err := f.NewSheet(DetailSheet); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := writeDetailSheet(f, styles, p.Records); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("写入 %s 失败: %w", DetailSheet, err)
	}

	f.SetActiveSheet(0)
	reportProgress(opts.Progress, 100, "完成")
	return f, nil
}

// WriteFile 导出并保存到指定路径（先写临时文件再重命名）
func (e *Exporter) WriteFile(path string, p Payroll, opts ExportOptions) error {
	f, err := e.Export(p, opts)
	if err != nil {
		return err
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return err
	}
	return writeBytesAtomic(path, buf.Bytes())
}

func writeBytesAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

type styleSet struct {
	header       int
	text         int
	integer      int
	currency     int
	currencyBold int
	percent      int
	totalLabel   int
	totalMoney   int
}

func newStyleSet(f *excelize.File) (*styleSet, error) {
	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	currency := currencyFormat
	percent := "0.0%"

	var s styleSet
	specs := []struct {
		dst   *int
		style *excelize.Style
	}{
		{&s.header, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
			Fill:      excelize.Fill{Type: "pattern", Color: []string{headerColor}, Pattern: 1},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
			Border:    border,
		}},
		{&s.text, &excelize.Style{Border: border}},
		{&s.integer, &excelize.Style{Border: border, NumFmt: 1}},
		{&s.currency, &excelize.Style{Border: border, CustomNumFmt: &currency}},
		{&s.currencyBold, &excelize.Style{Border: border, CustomNumFmt: &currency, Font: &excelize.Font{Bold: true}}},
		{&s.percent, &excelize.Style{Border: border, CustomNumFmt: &percent}},
		{&s.totalLabel, &excelize.Style{Border: border, Font: &excelize.Font{Bold: true}}},
		{&s.totalMoney, &excelize.Style{
			Border:       border,
			CustomNumFmt: &currency,
			Font:         &excelize.Font{Bold: true},
			Fill:         excelize.Fill{Type: "pattern", Color: []string{"#FCE4EC"}, Pattern: 1},
		}},
	}
	for _, spec := range specs {
		id, err := f.NewStyle(spec.style)
		if err != nil {
			return nil, err
		}
		*spec.dst = id
	}
	return &s, nil
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) error {
	values := make([]interface{}, len(headers))
	for i, h := range headers {
		values[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &values); err != nil {
		return err
	}
	last, _ := excelize.ColumnNumberToName(len(headers))
	if err := f.SetCellStyle(sheet, "A1", last+"1", style); err != nil {
		return err
	}
	return f.SetRowHeight(sheet, 1, 30)
}

// writeSummarySheet 汇总表：每名员工一行，最后一行为合计
func writeSummarySheet(f *excelize.File, s *styleSet, summary model.Summary, adjustments map[string]model.Adjustment) error {
	sheet := SummarySheet
	if err := writeHeader(f, sheet, SummaryHeaders, s.header); err != nil {
		return err
	}

	first := 2
	last := first + len(summary.Employees) - 1
	totalRow := first + len(summary.Employees)

	for i, emp := range summary.Employees {
		r := first + i
		adj := adjustments[emp.Employee]

		cells := []struct {
			col   string
			value interface{}
			style int
		}{
			{"A", emp.Employee, s.text},
			{"B", emp.TransactionCount, s.integer},
			{"C", emp.ServiceProduction, s.currency},
			{"D", emp.ServiceCommission, s.currency},
			{"E", emp.ProductProduction, s.currency},
			{"F", emp.ProductCommission, s.currency},
			{"I", adj.Deductions, s.currency},
			{"J", adj.Extras, s.currency},
		}
		for _, c := range cells {
			cell := fmt.Sprintf("%s%d", c.col, r)
			if err := f.SetCellValue(sheet, cell, c.value); err != nil {
				return err
			}
			if err := f.SetCellStyle(sheet, cell, cell, c.style); err != nil {
				return err
			}
		}

		formulas := []struct {
			col     string
			formula string
			style   int
		}{
			{"G", fmt.Sprintf("C%d+E%d", r, r), s.currency},
			{"H", fmt.Sprintf("D%d+F%d", r, r), s.currencyBold},
			{"K", fmt.Sprintf("H%d-I%d+J%d", r, r, r), s.currencyBold},
			{"L", fmt.Sprintf("IF($G$%d=0,0,G%d/$G$%d)", totalRow, r, totalRow), s.percent},
		}
		for _, fm := range formulas {
			cell := fmt.Sprintf("%s%d", fm.col, r)
			if err := f.SetCellFormula(sheet, cell, fm.formula); err != nil {
				return err
			}
			if err := f.SetCellStyle(sheet, cell, cell, fm.style); err != nil {
				return err
			}
		}
	}

	// 合计行
	label := fmt.Sprintf("A%d", totalRow)
	if err := f.SetCellValue(sheet, label, "TOTAL"); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, label, label, s.totalLabel); err != nil {
		return err
	}
	for _, col := range []string{"B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L"} {
		cell := fmt.Sprintf("%s%d", col, totalRow)
		formula := "0"
		if len(summary.Employees) > 0 {
			formula = fmt.Sprintf("SUM(%s%d:%s%d)", col, first, col, last)
		}
		if err := f.SetCellFormula(sheet, cell, formula); err != nil {
			return err
		}
		style := s.totalMoney
		switch col {
		case "B":
			style = s.totalLabel
		case "L":
			style = s.percent
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(sheet, "A", "A", 24); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", "L", 16); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

// writeDetailSheet 明细表：每条销售一行，提成 = 金额 × 比例
func writeDetailSheet(f *excelize.File, s *styleSet, records []model.SaleRecord) error {
	sheet := DetailSheet
	if err := writeHeader(f, sheet, DetailHeaders, s.header); err != nil {
		return err
	}

	for i, rec := range records {
		r := i + 2
		values := []interface{}{
			rec.Date,
			rec.Employee,
			rec.Item,
			rec.Kind(),
			rec.Amount,
			rec.CommissionRule,
			rec.CommissionRate,
			nil,
			rec.Client,
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", r), &values); err != nil {
			return err
		}
		if err := f.SetCellFormula(sheet, fmt.Sprintf("H%d", r), fmt.Sprintf("ROUND(E%d*G%d,2)", r, r)); err != nil {
			return err
		}
	}

	if n := len(records); n > 0 {
		lastRow := n + 1
		ranges := []struct {
			from, to string
			style    int
		}{
			{"A", "D", s.text},
			{"E", "E", s.currency},
			{"F", "F", s.text},
			{"G", "G", s.percent},
			{"H", "H", s.currency},
			{"I", "I", s.text},
		}
		for _, rg := range ranges {
			if err := f.SetCellStyle(sheet, rg.from+"2", fmt.Sprintf("%s%d", rg.to, lastRow), rg.style); err != nil {
				return err
			}
		}
	}

	widths := map[string]float64{"A": 12, "B": 20, "C": 40, "D": 16, "E": 14, "F": 22, "G": 12, "H": 14, "I": 24}
	for col, w := range widths {
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}
	return f.AutoFilter(sheet, fmt.Sprintf("A1:I%d", len(records)+1), nil)
}
