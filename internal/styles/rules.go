package styles

import (
	"fmt"
	"strings"
)

// Breakpoint 是响应式断点的序号，从小到大。
type Breakpoint int

const (
	Mobile Breakpoint = iota
	Tablet
	Desktop
)

var breakpointKeys = [...]string{"mobile", "tablet", "desktop"}

var allBreakpoints = [...]Breakpoint{Mobile, Tablet, Desktop}

func (b Breakpoint) String() string {
	return breakpointKeys[b]
}

// Breakpoints 是 tablet 与 desktop 规则生效的最小宽度（px）；mobile 规则不包媒体查询。
type Breakpoints struct {
	TabletPx  int
	DesktopPx int
}

// DefaultBreakpoints 与编辑器的视口预设一致。
func DefaultBreakpoints() Breakpoints {
	return Breakpoints{TabletPx: 768, DesktopPx: 1024}
}

func (b Breakpoints) minWidth(bp Breakpoint) int {
	switch bp {
	case Tablet:
		return b.TabletPx
	case Desktop:
		return b.DesktopPx
	default:
		return 0
	}
}

type declaration struct {
	property string
	value    string
}

// ruleSet 按断点收集声明，并记录每个属性当前在层叠中生效的值以及写入它的 track，
// 相同的值不会重复写入。
type ruleSet struct {
	blocks  [len(breakpointKeys)][]declaration
	current map[string]string
	owner   map[string]int
}

const noOwner = -1

func newRuleSet() *ruleSet {
	return &ruleSet{current: make(map[string]string), owner: make(map[string]int)}
}

func (r *ruleSet) add(bp Breakpoint, property, value string) {
	r.blocks[bp] = append(r.blocks[bp], declaration{property: property, value: value})
	r.current[property] = value
	r.owner[property] = noOwner
}

// set 在 bp 写入 value，层叠结果已是该值时跳过。def 是该属性尚未写入时的生效值。
func (r *ruleSet) set(bp Breakpoint, property, value, def string, owner int) {
	cur, written := r.current[property]
	if !written {
		cur = def
	}
	if value == cur {
		if written {
			r.owner[property] = owner
		}
		return
	}
	r.add(bp, property, value)
	r.owner[property] = owner
}

// ownedByOther 判断属性的当前值是否由另一个 track 写入（例如 grid 的 gap 在 flex 断点上仍生效）。
func (r *ruleSet) ownedByOther(property string, owner int) bool {
	o, ok := r.owner[property]
	return ok && o != noOwner && o != owner
}

func (r *ruleSet) empty() bool {
	for _, block := range r.blocks {
		if len(block) > 0 {
			return false
		}
	}
	return true
}

func (r *ruleSet) render(selector string, bps Breakpoints) string {
	var sb strings.Builder
	for _, bp := range allBreakpoints {
		decls := r.blocks[bp]
		if len(decls) == 0 {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		indent := ""
		if bp != Mobile {
			fmt.Fprintf(&sb, "@media (min-width: %dpx) {\n", bps.minWidth(bp))
			indent = "  "
		}
		fmt.Fprintf(&sb, "%s%s {\n", indent, selector)
		for _, d := range decls {
			fmt.Fprintf(&sb, "%s  %s: %s;\n", indent, d.property, d.value)
		}
		fmt.Fprintf(&sb, "%s}\n", indent)
		if bp != Mobile {
			sb.WriteString("}\n")
		}
	}
	return sb.String()
}
