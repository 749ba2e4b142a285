package styles

import "strings"

const defaultDisplay = "block"

// displayState 按断点合并 display 属性与可见性控制。
type displayState struct {
	mode  [len(breakpointKeys)]string
	emit  [len(breakpointKeys)]string
	write [len(breakpointKeys)]bool
}

// planDisplay 决定每个断点需要的 display 声明。隐藏的档位写 display: none；
// 重新可见的档位恢复组件自身的 display，自身为 block 时写 revert。结果与上一档相同时不写。
func planDisplay(props map[string]any) displayState {
	var st displayState
	display := parseResponsive(props["display"], keyword)
	visibility := parseResponsive(props["visibility"], keyword)

	prevWanted := defaultDisplay
	prevHidden := false
	for _, bp := range allBreakpoints {
		mode, ok := display.at(bp)
		if !ok {
			mode = defaultDisplay
		}
		mode = strings.ToLower(mode)
		st.mode[bp] = mode

		vis, _ := visibility.at(bp)
		hidden := strings.EqualFold(vis, "hidden")

		wanted := mode
		if hidden {
			wanted = "none"
		}
		if wanted != prevWanted {
			value := wanted
			if !hidden && prevHidden && mode == defaultDisplay {
				value = "revert"
			}
			st.emit[bp] = value
			st.write[bp] = true
		}
		prevWanted = wanted
		prevHidden = hidden
	}
	return st
}

func (st displayState) flex(bp Breakpoint) bool {
	return st.mode[bp] == "flex" || st.mode[bp] == "inline-flex"
}

func (st displayState) grid(bp Breakpoint) bool {
	return st.mode[bp] == "grid" || st.mode[bp] == "inline-grid"
}
