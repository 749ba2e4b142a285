package tokens

import (
	"fmt"
	"strings"
)

// ColorKind 区分具体颜色与 token 引用。
type ColorKind int

const (
	ColorLiteral ColorKind = iota
	ColorReference
)

// 编辑器取色器使用的颜色来源。
const (
	SourceTheme  = "theme"
	SourceCustom = "custom"
)

// ColorValue 是识别形态后的颜色属性。编辑器可能存裸字符串，
// 也可能存 {"type": "theme"|"custom", "value": "..."}，两种形态都解析为该类型。
type ColorValue struct {
	Kind   ColorKind
	Source string
	Value  string
}

// ParseColor 识别原始属性值；不含颜色的值返回 false。
func ParseColor(raw any) (ColorValue, bool) {
	switch v := raw.(type) {
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return ColorValue{}, false
		}
		if IsLiteral(s) {
			return ColorValue{Kind: ColorLiteral, Source: SourceCustom, Value: s}, true
		}
		return ColorValue{Kind: ColorReference, Source: SourceTheme, Value: s}, true
	case map[string]any:
		value := strings.TrimSpace(fmt.Sprint(v["value"]))
		if v["value"] == nil || value == "" {
			return ColorValue{}, false
		}
		source, _ := v["type"].(string)
		if strings.EqualFold(source, SourceCustom) || IsLiteral(value) {
			return ColorValue{Kind: ColorLiteral, Source: SourceCustom, Value: value}, true
		}
		return ColorValue{Kind: ColorReference, Source: SourceTheme, Value: value}, true
	default:
		return ColorValue{}, false
	}
}

// CSS 返回颜色的具体 CSS 文本。无法解析的引用原样返回路径，与 Resolver 的容错行为一致。
func (c ColorValue) CSS(r Resolver, table map[string]any) string {
	if c.Kind == ColorLiteral {
		return c.Value
	}
	return fmt.Sprint(r.ResolveString(c.Value, table))
}
