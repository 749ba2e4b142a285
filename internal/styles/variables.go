package styles

import (
	"fmt"
	"sort"
	"strings"

	"cmsTheme/internal/tokens"
)

// VariablesCSS 把 token 表展开为单个 :root 块，每个叶子一条自定义属性，
// 名称为键路径用短横线连接；键保持原样并按字典序输出。空表返回 ":root {}"。
// 指向其他 token 的别名叶子写入解析后的值。
func VariablesCSS(table map[string]any) string {
	r := tokens.Resolver{}
	var lines []string
	flatten(r, table, nil, table, &lines)
	if len(lines) == 0 {
		return ":root {}"
	}

	var sb strings.Builder
	sb.WriteString(":root {\n")
	for _, line := range lines {
		sb.WriteString("  ")
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	sb.WriteString("}")
	return sb.String()
}

func flatten(r tokens.Resolver, table map[string]any, path []string, node map[string]any, lines *[]string) {
	keys := make([]string, 0, len(node))
	for key := range node {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		next := append(append([]string(nil), path...), key)
		switch v := node[key].(type) {
		case map[string]any:
			flatten(r, table, next, v, lines)
		case nil:
		default:
			if s, ok := v.(string); ok {
				v = r.ResolveString(strings.TrimSpace(s), table)
			}
			value, ok := leafValue(v)
			if !ok {
				continue
			}
			*lines = append(*lines, fmt.Sprintf("--%s: %s;", strings.Join(next, "-"), value))
		}
	}
}

func leafValue(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		val = strings.TrimSpace(val)
		return val, val != ""
	case bool:
		return fmt.Sprint(val), true
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := leafValue(item); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", "), len(parts) > 0
	}
	if n, ok := toNumber(v); ok {
		return formatNumber(n), true
	}
	return fmt.Sprint(v), true
}
