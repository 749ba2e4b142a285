package tokens

import "regexp"

var (
	hexColorPattern  = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
	unitValuePattern = regexp.MustCompile(`^-?(?:\d+\.?\d*|\.\d+)(?:px|rem|em|%|vh|vw)$`)
)

var literalKeywords = map[string]struct{}{
	"transparent": {},
	"none":        {},
	"inherit":     {},
	"auto":        {},
	"initial":     {},
	"unset":       {},
}

// IsLiteral 判断 s 是否已是具体 CSS 值（十六进制颜色、带单位的数字或保留关键字），
// 这类字符串不会去 token 表查找。
//
// 与这些形态冲突的 token 路径（例如名为 "auto" 的分组）永远无法被引用；现有主题数据依赖这一判定规则。
func IsLiteral(s string) bool {
	if _, ok := literalKeywords[s]; ok {
		return true
	}
	return hexColorPattern.MatchString(s) || unitValuePattern.MatchString(s)
}
