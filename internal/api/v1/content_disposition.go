package v1

import (
	"fmt"
	"net/url"
	"strings"
)

// buildContentDisposition 附件下载头；filename 为 ASCII 兜底，filename* 保留原名
func buildContentDisposition(name string) string {
	fallback := strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7e || r == '"' || r == '\\' {
			return '_'
		}
		return r
	}, name)
	return fmt.Sprintf("attachment; filename=\"%s\"; filename*=UTF-8''%s", fallback, strings.ReplaceAll(url.QueryEscape(name), "+", "%20"))
}
