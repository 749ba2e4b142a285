// Package styles 把组件 props 转换为静态 CSS，并把主题 token 展开为自定义属性。
package styles

import (
	"regexp"
	"strings"

	"cmsTheme/internal/puck"
	"cmsTheme/internal/tokens"
)

var classUnsafe = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// ClassName 返回组件的选择器类名（小写类型-id），没有 id 时返回 ""。
func ClassName(componentType, id string) string {
	id = strings.Trim(classUnsafe.ReplaceAllString(strings.TrimSpace(id), "-"), "-")
	if id == "" {
		return ""
	}
	typ := strings.Trim(classUnsafe.ReplaceAllString(strings.ToLower(strings.TrimSpace(componentType)), "-"), "-")
	if typ == "" {
		typ = "component"
	}
	return typ + "-" + id
}

// Extractor 为每个组件生成 CSS。Tokens 是主题快照，用于仍带引用的 props；已解析的 props 原样透传。
type Extractor struct {
	Breakpoints Breakpoints
	Resolver    tokens.Resolver
	Tokens      map[string]any
}

// NewExtractor 使用默认断点。
func NewExtractor(table map[string]any) *Extractor {
	return &Extractor{Breakpoints: DefaultBreakpoints(), Tokens: table}
}

// ComponentCSS 生成单个组件的规则。缺失或格式错误的属性会被跳过，结果总是合法 CSS（可能为空）。
func (e *Extractor) ComponentCSS(componentType, id string, props map[string]any) string {
	class := ClassName(componentType, id)
	if class == "" || len(props) == 0 {
		return ""
	}
	resolved, _ := e.Resolver.Resolve(props, e.Tokens).(map[string]any)

	display := planDisplay(resolved)
	tracks := e.tracks(resolved, display)

	rs := newRuleSet()
	for _, bp := range allBreakpoints {
		if display.write[bp] {
			rs.add(bp, "display", display.emit[bp])
		}
		for i, t := range tracks {
			if t.when != nil && !t.when(bp) {
				continue
			}
			value, ok := t.values.at(bp)
			if !ok {
				// 切换布局模式后，另一模式写入的同名属性回到初始值。
				if rs.ownedByOther(t.property, i) {
					rs.set(bp, t.property, t.initial(), t.def, i)
				}
				continue
			}
			rs.set(bp, t.property, value, t.def, i)
		}
	}
	if rs.empty() {
		return ""
	}
	return rs.render("."+class, e.bps())
}

// TreeCSS 拼接 content、嵌套 slot 以及 zone 中所有节点的 CSS。
func (e *Extractor) TreeCSS(tree puck.Tree) string {
	var parts []string
	e.collect(tree.Content, &parts)
	for _, zone := range tree.ZoneKeys() {
		if nodes, ok := tree.Zones[zone].([]any); ok {
			e.collect(nodes, &parts)
		}
	}
	return strings.Join(parts, "\n")
}

func (e *Extractor) collect(nodes []any, parts *[]string) {
	for _, n := range nodes {
		typ, props, ok := puck.AsNode(n)
		if !ok {
			continue
		}
		if css := e.ComponentCSS(typ, puck.NodeID(props), props); css != "" {
			*parts = append(*parts, css)
		}
		for _, key := range puck.SortedKeys(props) {
			if puck.IsNodeList(props[key]) {
				e.collect(props[key].([]any), parts)
			}
		}
	}
}

func (e *Extractor) bps() Breakpoints {
	if e.Breakpoints.TabletPx <= 0 || e.Breakpoints.DesktopPx <= 0 {
		return DefaultBreakpoints()
	}
	return e.Breakpoints
}

// themed 处理裸字符串或 {type, value} 颜色对象。
func (e *Extractor) themed(v any) (string, bool) {
	c, ok := tokens.ParseColor(v)
	if !ok {
		if n, isNum := toNumber(v); isNum {
			return formatNumber(n), true
		}
		return "", false
	}
	return c.CSS(e.Resolver, e.Tokens), true
}
