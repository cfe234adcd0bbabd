package parser

import (
	"fmt"
	"strings"

	"github.com/hocordovaesquen/blushnominas/internal/model"
)

// tableRow 按规范列取值的一行数据
type tableRow struct {
	rowNo int
	cells map[model.CanonicalColumn]string
}

// Ingest 将原始工作表行解析为清洗后的销售明细
//
// 处理顺序：定位表头 -> 列名映射 -> 空白归一 -> 向下填充 -> 过滤 -> 类型转换。
// 向下填充必须在任何过滤之前完成，否则同一订单的后续行会丢失锚点值。
func Ingest(rows [][]string, opts Options) (*Result, error) {
	opts = opts.withDefaults()

	required, err := CompilePatterns(headerKeywords(opts.Header))
	if err != nil {
		return nil, fmt.Errorf("header keywords: %w", err)
	}
	headerRow, ok := locateHeader(rows, opts.Header.ScanRows, required)
	if !ok {
		return nil, newHeaderNotFound(opts.Header)
	}

	columns := MapColumns(rows[headerRow])
	if missing := columns.Missing(model.RequiredColumns...); len(missing) > 0 {
		return nil, newRequiredColumnMissing(missing, columns.Detected())
	}

	table := buildTable(rows[headerRow+1:], headerRow+2, columns)

	var fill []model.CanonicalColumn
	for _, col := range model.FillDownColumns {
		if columns.Has(col) {
			fill = append(fill, col)
		}
	}
	fillDown(table, fill)

	result := &Result{
		HeaderRow: headerRow,
		Columns:   columns.Sources(),
		Detected:  columns.Detected(),
		Lines:     []model.SaleLine{},
	}
	result.Stats.DataRows = len(table)

	denylist := buildDenylist(opts.Denylist, columns.Labels[columns.Index[model.ColumnItem]])
	hasValidity := columns.Has(model.ColumnValidity)

	for _, r := range table {
		item := r.cells[model.ColumnItem]
		if item == "" {
			result.Stats.BlankItem++
			continue
		}
		if _, deny := denylist[NormalizeColumnName(item)]; deny {
			result.Stats.NonData++
			continue
		}
		if hasValidity && !strings.EqualFold(r.cells[model.ColumnValidity], opts.ValidMarker) {
			result.Stats.Invalid++
			continue
		}

		line := model.SaleLine{
			RowNo:    r.rowNo,
			Date:     r.cells[model.ColumnDate],
			Employee: r.cells[model.ColumnEmployee],
			Item:     item,
			Class:    r.cells[model.ColumnClass],
			Client:   r.cells[model.ColumnClient],
			OrderID:  r.cells[model.ColumnOrderID],
		}

		amount, ok := ParseAmount(r.cells[model.ColumnAmount])
		if !ok {
			result.Stats.CoercedAmounts++
		}
		line.Amount = amount

		if line.Employee == "" {
			line.Employee = opts.Unassigned
			result.Stats.UnassignedNames++
		}

		result.Lines = append(result.Lines, line)
	}
	result.Stats.Kept = len(result.Lines)

	return result, nil
}

// buildTable 按列映射取出每行的规范列值，空白单元格归一为缺失（空字符串）
func buildTable(rows [][]string, firstRowNo int, columns ColumnMap) []*tableRow {
	table := make([]*tableRow, 0, len(rows))
	for i, row := range rows {
		r := &tableRow{
			rowNo: firstRowNo + i,
			cells: make(map[model.CanonicalColumn]string, len(columns.Index)),
		}
		for col, idx := range columns.Index {
			if v := cellAt(row, idx); v != "" {
				r.cells[col] = v
			}
		}
		table = append(table, r)
	}
	return table
}

// fillDown 将各列最近一个非空值向下填充到后续空白单元格
func fillDown(table []*tableRow, cols []model.CanonicalColumn) {
	for _, col := range cols {
		last := ""
		for _, r := range table {
			if v := r.cells[col]; v != "" {
				last = v
				continue
			}
			if last != "" {
				r.cells[col] = last
			}
		}
	}
}

func buildDenylist(entries []string, itemHeader string) map[string]struct{} {
	out := make(map[string]struct{}, len(entries)+1)
	for _, e := range entries {
		if n := NormalizeColumnName(e); n != "" {
			out[n] = struct{}{}
		}
	}
	if itemHeader != "" {
		out[itemHeader] = struct{}{}
	}
	return out
}
