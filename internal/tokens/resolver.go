// Package tokens 解析组件 props 中嵌入的设计 token 引用。
//
// props 树是 Puck 组件解码后的 JSON（map[string]any、[]any、string、float64、bool 或 nil）。
// 不像具体 CSS 值的字符串叶子都视为主题 token 表中的点分路径。
package tokens

import "strings"

// DefaultMaxDepth 限制别名链长度（token 的值是另一个 token 路径）。
const DefaultMaxDepth = 10

// Reason 说明引用为何保持原样。
type Reason string

const (
	ReasonUnresolved    Reason = "unresolved"
	ReasonDepthExceeded Reason = "depth_exceeded"
)

// Observer 在引用回退为原文时收到通知。解析本身不会失败，调用方借此记录数据问题。
type Observer func(path string, reason Reason)

// Resolver 用 token 表中的值替换引用，零值即可使用。
type Resolver struct {
	MaxDepth int
	Observer Observer
}

// Resolve 以默认设置解析 value。
func Resolve(value any, table map[string]any) any {
	return Resolver{}.Resolve(value, table)
}

// Resolve 递归遍历 value：map 与 slice 会复制，键保持原样，非字符串叶子直接透传，不修改输入。
func (r Resolver) Resolve(value any, table map[string]any) any {
	switch v := value.(type) {
	case string:
		return r.ResolveString(v, table)
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = r.Resolve(item, table)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = r.Resolve(item, table)
		}
		return out
	default:
		return value
	}
}

// ResolveString 解析单个字符串。字面量形态的字符串原样返回；路径不存在或指向分组而非值时也原样返回。
// 别名会一直跟随到字面量、非字符串值或无法解析的字符串为止；超过 MaxDepth 时返回原始字符串。
func (r Resolver) ResolveString(s string, table map[string]any) any {
	if IsLiteral(s) {
		return s
	}

	current := s
	for depth := 0; ; depth++ {
		if depth >= r.maxDepth() {
			r.notify(s, ReasonDepthExceeded)
			return s
		}

		found, ok := lookupLeaf(table, current)
		if !ok {
			if depth == 0 {
				r.notify(s, ReasonUnresolved)
			}
			return current
		}

		next, isString := found.(string)
		if !isString {
			return found
		}
		if IsLiteral(next) {
			return next
		}
		current = next
	}
}

// Lookup 沿点分路径查找 table。
func Lookup(table map[string]any, path string) (any, bool) {
	if len(table) == 0 || path == "" {
		return nil, false
	}

	var node any = table
	for _, segment := range strings.Split(path, ".") {
		m, ok := node.(map[string]any)
		if !ok {
			return nil, false
		}
		next, ok := m[segment]
		if !ok {
			return nil, false
		}
		node = next
	}
	return node, true
}

// lookupLeaf 只接受标量值，分组与 null 不算命中。
func lookupLeaf(table map[string]any, path string) (any, bool) {
	found, ok := Lookup(table, path)
	if !ok {
		return nil, false
	}
	switch found.(type) {
	case nil, map[string]any, []any:
		return nil, false
	}
	return found, true
}

func (r Resolver) maxDepth() int {
	if r.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return r.MaxDepth
}

func (r Resolver) notify(path string, reason Reason) {
	if r.Observer != nil {
		r.Observer(path, reason)
	}
}
