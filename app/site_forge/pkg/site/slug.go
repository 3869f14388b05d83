package site

import (
	"regexp"
	"strings"
)

// DefaultSlug 商户名清洗后为空时使用的目录名
const DefaultSlug = "business"

var (
	nonWordRe   = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)
	separatorRe = regexp.MustCompile(`[-\s]+`)
)

// Slugify 把商户名转换为目录名：小写，去掉非单词字符，空白和连字符合并为单个连字符
func Slugify(name string) string {
	s := strings.ToLower(name)
	s = nonWordRe.ReplaceAllString(s, "")
	s = separatorRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return DefaultSlug
	}
	return s
}

var jsEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	`'`, `\'`,
	"\n", `\n`,
	"\r", "",
)

// EscapeJS 转义嵌入 JS/TS 字符串字面量的文本
func EscapeJS(s string) string {
	return jsEscaper.Replace(s)
}
