package util

import (
	"fmt"
	"math"
	"strings"
)

// FormatCurrency 格式化为索尔金额（千分位，两位小数），如 S/ 1,234.50
func FormatCurrency(value float64) string {
	sign := ""
	if value < 0 {
		sign = "-"
		value = -value
	}
	cents := int64(math.Round(value * 100))
	whole := fmt.Sprintf("%d", cents/100)

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return fmt.Sprintf("%sS/ %s.%02d", sign, b.String(), cents%100)
}
