package parser

import (
	"regexp"
	"strings"
)

// DefaultSheetKeywords 优先选择的工作表名关键词
var DefaultSheetKeywords = []string{"VENTA", "SALES", "SHEET1", "HOJA1"}

// PickSheet 选择要解析的工作表
// 名称包含关键词的优先，否则取第一个；没有工作表时返回空字符串
func PickSheet(sheetNames []string, keywords []string) string {
	if len(sheetNames) == 0 {
		return ""
	}
	if len(keywords) == 0 {
		keywords = DefaultSheetKeywords
	}
	for _, name := range sheetNames {
		upper := strings.ReplaceAll(NormalizeColumnName(name), " ", "")
		for _, kw := range keywords {
			if strings.Contains(upper, strings.ReplaceAll(NormalizeColumnName(kw), " ", "")) {
				return name
			}
		}
	}
	return sheetNames[0]
}

// LocateHeader 在前 ScanRows 行中查找表头行
//
// 每行的单元格文本以空格拼接并转大写，必须命中全部 Required 关键词（不区分大小写与重音）。
// 自上而下扫描，第一行命中即返回；未命中或关键词非法时返回 false，不做任何默认猜测。
func LocateHeader(rows [][]string, cfg HeaderConfig) (int, bool) {
	required, err := CompilePatterns(headerKeywords(cfg))
	if err != nil {
		return -1, false
	}
	return locateHeader(rows, cfg.ScanRows, required)
}

func headerKeywords(cfg HeaderConfig) []string {
	if len(cfg.Required) == 0 {
		return DefaultRequiredKeywords
	}
	return cfg.Required
}

func locateHeader(rows [][]string, limit int, required []*regexp.Regexp) (int, bool) {
	if limit <= 0 {
		limit = DefaultScanRows
	}
	if limit > len(rows) {
		limit = len(rows)
	}

	for i := 0; i < limit; i++ {
		text := rowText(rows[i])
		if text == "" {
			continue
		}
		if matchesAll(text, required) {
			return i, true
		}
	}
	return -1, false
}

func rowText(row []string) string {
	parts := make([]string, 0, len(row))
	for _, cell := range row {
		if isBlank(cell) {
			continue
		}
		parts = append(parts, NormalizeColumnName(cell))
	}
	return strings.Join(parts, " ")
}

func matchesAll(text string, patterns []*regexp.Regexp) bool {
	for _, re := range patterns {
		if !re.MatchString(text) {
			return false
		}
	}
	return true
}
