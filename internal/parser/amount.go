package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var currencyMarks = []string{"S/.", "S/", "PEN", "USD", "$", "€", " ", "\u00a0"}

// plainNumber 规范化后只接受普通十进制数，排除指数与十六进制写法
var plainNumber = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

// ParseAmount 解析金额单元格
//
// 支持货币符号、千分位、逗号小数与括号负数；无法解析时返回 (0, false)。
// 单个分隔符后跟 1-2 位数字视为小数点，后跟 3 位数字（整数部分非 0）视为千分位。
func ParseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ToUpper(s))
	if s == "" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}
	for _, m := range currencyMarks {
		s = strings.ReplaceAll(s, m, "")
	}
	if s == "" {
		return 0, false
	}

	s = normalizeDecimalSeparator(s)
	if !plainNumber.MatchString(s) {
		return 0, false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if negative {
		f = -f
	}
	return f, true
}

// normalizeDecimalSeparator 统一为 "." 小数点、去除千分位
func normalizeDecimalSeparator(s string) string {
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			// 1.234,50
			s = strings.ReplaceAll(s, ".", "")
			return strings.Replace(s, ",", ".", 1)
		}
		// 1,234.50
		return strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			return strings.ReplaceAll(s, ",", "")
		}
		if isThousandsGroup(s[:lastComma], s[lastComma+1:]) {
			return strings.Replace(s, ",", "", 1)
		}
		return strings.Replace(s, ",", ".", 1)
	case lastDot >= 0:
		if strings.Count(s, ".") > 1 {
			// 1.234.567
			return strings.ReplaceAll(s, ".", "")
		}
		if isThousandsGroup(s[:lastDot], s[lastDot+1:]) {
			return strings.Replace(s, ".", "", 1)
		}
	}
	return s
}

// isThousandsGroup 分隔符后恰好 3 位数字且整数部分不为 0
func isThousandsGroup(intPart, frac string) bool {
	if len(frac) != 3 {
		return false
	}
	intPart = strings.TrimLeft(intPart, "+-")
	return strings.Trim(intPart, "0") != ""
}
