package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hocordovaesquen/blushnominas/internal/util"
)

// NormalizeColumnName 规范化列名：去除换行/制表符、压缩空白、去重音、转大写
func NormalizeColumnName(name string) string {
	name = strings.ReplaceAll(name, "\n", " ")
	name = strings.ReplaceAll(name, "\r", " ")
	name = strings.ReplaceAll(name, "\t", " ")
	return util.FoldUpper(name)
}

// ContainsAny 检查字符串是否包含任意一个关键词
func ContainsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// CompilePatterns 编译表头关键词正则
// 关键词去重音后按不区分大小写编译，空关键词或非法正则返回错误
func CompilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, fmt.Errorf("empty header keyword")
		}
		re, err := regexp.Compile("(?i)" + util.FoldAccents(p))
		if err != nil {
			return nil, fmt.Errorf("invalid header keyword %q: %w", p, err)
		}
		out = append(out, re)
	}
	return out, nil
}

// isBlank 空白单元格视为缺失值
func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
