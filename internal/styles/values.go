package styles

import (
	"fmt"
	"strconv"
	"strings"
)

// responsive 是按断点展开的属性值，未设置的档位继承最近的较小档位。
type responsive struct {
	values [len(breakpointKeys)]string
	set    [len(breakpointKeys)]bool
}

type formatter func(any) (string, bool)

// parseResponsive 接受 {"mobile": v, "tablet": v, "desktop": v} 或普通值；普通值作用于 mobile，因而对所有档位生效。
func parseResponsive(raw any, format formatter) responsive {
	var r responsive
	if raw == nil {
		return r
	}
	if m, ok := raw.(map[string]any); ok && isResponsiveMap(m) {
		for _, bp := range allBreakpoints {
			v, present := m[bp.String()]
			if !present {
				continue
			}
			if s, ok := format(v); ok {
				r.values[bp] = s
				r.set[bp] = true
			}
		}
		return r
	}
	if s, ok := format(raw); ok {
		r.values[Mobile] = s
		r.set[Mobile] = true
	}
	return r
}

func isResponsiveMap(m map[string]any) bool {
	for _, key := range breakpointKeys {
		if _, ok := m[key]; ok {
			return true
		}
	}
	return false
}

// at 返回 bp 处生效的值。
func (r responsive) at(bp Breakpoint) (string, bool) {
	for i := bp; i >= Mobile; i-- {
		if r.set[i] {
			return r.values[i], true
		}
	}
	return "", false
}

func (r responsive) hasAny() bool {
	for _, ok := range r.set {
		if ok {
			return true
		}
	}
	return false
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	}
	return 0, false
}

// keyword 处理 "flex"、"center" 这类普通字符串值。
func keyword(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		s = strings.TrimSpace(s)
		return s, s != ""
	case bool:
		return "", false
	}
	if n, ok := toNumber(v); ok {
		return formatNumber(n), true
	}
	return "", false
}

// length 把数字格式化为像素，字符串（带单位、calc()、auto）保持不变。
func length(v any) (string, bool) {
	return lengthIn("px")(v)
}

func lengthIn(unit string) formatter {
	return func(v any) (string, bool) {
		if n, ok := toNumber(v); ok {
			if n == 0 {
				return "0", true
			}
			return formatNumber(n) + unit, true
		}
		s, ok := v.(string)
		if !ok {
			return "", false
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return "", false
		}
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			if n == 0 {
				return "0", true
			}
			return formatNumber(n) + unit, true
		}
		return s, true
	}
}

// unitless 输出不带单位的数字（如 line-height）。
func unitless(v any) (string, bool) {
	return keyword(v)
}

// boxSides 把 {top, right, bottom, left, unit} 格式化为简写，全零时输出 "0"。
func boxSides(v any) (string, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return length(v)
	}

	unit := "px"
	if u, ok := m["unit"].(string); ok && strings.TrimSpace(u) != "" {
		unit = strings.TrimSpace(u)
	}
	format := lengthIn(unit)

	var sides [4]string
	found := false
	for i, key := range [...]string{"top", "right", "bottom", "left"} {
		sides[i] = "0"
		raw, present := m[key]
		if !present {
			continue
		}
		if s, ok := format(raw); ok {
			sides[i] = s
			found = true
		}
	}
	if !found {
		return "", false
	}

	top, right, bottom, left := sides[0], sides[1], sides[2], sides[3]
	switch {
	case top == right && right == bottom && bottom == left:
		return top, true
	case top == bottom && right == left:
		return top + " " + right, true
	case right == left:
		return top + " " + right + " " + bottom, true
	default:
		return fmt.Sprintf("%s %s %s %s", top, right, bottom, left), true
	}
}

// gridColumns 把列数转换为轨道列表，字符串原样使用。
func gridColumns(v any) (string, bool) {
	if n, ok := toNumber(v); ok {
		if n < 1 {
			return "", false
		}
		return fmt.Sprintf("repeat(%s, minmax(0, 1fr))", formatNumber(n)), true
	}
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if n, err := strconv.Atoi(s); err == nil {
			return gridColumns(float64(n))
		}
		return s, s != ""
	}
	return "", false
}

func imageURL(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		if m, isMap := v.(map[string]any); isMap {
			s, ok = m["url"].(string)
		}
	}
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if strings.EqualFold(s, "none") {
		return "none", true
	}
	if strings.HasPrefix(s, "url(") || strings.Contains(s, "gradient(") {
		return s, true
	}
	return `url("` + strings.ReplaceAll(s, `"`, `\"`) + `")`, true
}
