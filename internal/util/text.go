package util

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FoldAccents 去除重音符号（Ó -> O，Ñ -> N）
func FoldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// FoldUpper 去除首尾空白、压缩连续空白、去重音并转大写
func FoldUpper(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.ToUpper(FoldAccents(s))
}
