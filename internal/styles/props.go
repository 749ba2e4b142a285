package styles

// track 把一个 CSS 属性绑定到响应式属性值。def 是未写入时生效的值，
// 只有在覆盖较小档位时才会输出。
type track struct {
	property string
	def      string
	values   responsive
	when     func(Breakpoint) bool
}

// initial 是属性的 CSS 初始值，用于覆盖另一布局模式遗留的声明。
func (t track) initial() string {
	if t.def != "" {
		return t.def
	}
	return "normal"
}

func (e *Extractor) tracks(props map[string]any, display displayState) []track {
	var out []track
	out = append(out, layoutTracks(props, display)...)
	out = append(out, sizeTracks(props)...)
	out = append(out, spacingTracks(props)...)
	out = append(out, e.typographyTracks(props)...)
	out = append(out, e.colorTracks(props)...)
	out = append(out, e.backgroundTracks(props)...)
	out = append(out, e.borderTracks(props)...)
	out = append(out, imageTracks(props)...)
	return out
}

// layoutTracks 只在使用对应布局模式的档位生效；某档位从 flex 切到 block 后不会残留 flex 声明。
func layoutTracks(props map[string]any, display displayState) []track {
	flex := display.flex
	grid := display.grid
	return []track{
		{property: "flex-direction", def: "row", values: parseResponsive(props["flexDirection"], keyword), when: flex},
		{property: "flex-wrap", def: "nowrap", values: parseResponsive(props["flexWrap"], keyword), when: flex},
		{property: "justify-content", def: "flex-start", values: parseResponsive(props["justifyContent"], keyword), when: flex},
		{property: "align-items", def: "stretch", values: parseResponsive(props["alignItems"], keyword), when: flex},
		{property: "gap", values: parseResponsive(props["gap"], length), when: flex},
		{property: "grid-template-columns", values: parseResponsive(props["gridColumns"], gridColumns), when: grid},
		{property: "gap", values: parseResponsive(props["gridGap"], length), when: grid},
		{property: "align-items", def: "stretch", values: parseResponsive(props["gridAlignItems"], keyword), when: grid},
	}
}

func sizeTracks(props map[string]any) []track {
	return []track{
		{property: "width", def: "auto", values: parseResponsive(props["width"], length)},
		{property: "max-width", def: "none", values: parseResponsive(props["maxWidth"], length)},
		{property: "height", def: "auto", values: parseResponsive(props["height"], length)},
		{property: "min-height", def: "auto", values: parseResponsive(props["minHeight"], length)},
	}
}

func spacingTracks(props map[string]any) []track {
	return []track{
		{property: "padding", def: "0", values: parseResponsive(props["padding"], boxSides)},
		{property: "margin", def: "0", values: parseResponsive(props["margin"], boxSides)},
	}
}

func (e *Extractor) typographyTracks(props map[string]any) []track {
	return []track{
		{property: "font-family", values: parseResponsive(props["fontFamily"], e.themed)},
		{property: "font-size", values: parseResponsive(props["fontSize"], length)},
		{property: "font-weight", def: "normal", values: parseResponsive(props["fontWeight"], unitless)},
		{property: "line-height", def: "normal", values: parseResponsive(props["lineHeight"], unitless)},
		{property: "letter-spacing", def: "normal", values: parseResponsive(props["letterSpacing"], length)},
		{property: "text-align", values: parseResponsive(props["textAlign"], keyword)},
		{property: "text-transform", def: "none", values: parseResponsive(props["textTransform"], keyword)},
		{property: "text-decoration", def: "none", values: parseResponsive(props["textDecoration"], keyword)},
		{property: "text-decoration-style", def: "solid", values: parseResponsive(props["textDecorationStyle"], keyword)},
	}
}

func (e *Extractor) colorTracks(props map[string]any) []track {
	return []track{
		{property: "color", values: parseResponsive(props["color"], e.themed)},
		{property: "opacity", def: "1", values: parseResponsive(props["opacity"], unitless)},
	}
}

// backgroundTracks 只在有背景图生效的档位写 size、position 与 repeat。
func (e *Extractor) backgroundTracks(props map[string]any) []track {
	image := parseResponsive(props["backgroundImage"], imageURL)
	hasImage := func(bp Breakpoint) bool {
		v, ok := image.at(bp)
		return ok && v != "none"
	}
	return []track{
		{property: "background-color", def: "transparent", values: parseResponsive(props["backgroundColor"], e.themed)},
		{property: "background-image", def: "none", values: image},
		{property: "background-size", def: "auto", values: parseResponsive(props["backgroundSize"], keyword), when: hasImage},
		{property: "background-position", def: "0% 0%", values: parseResponsive(props["backgroundPosition"], keyword), when: hasImage},
		{property: "background-repeat", def: "repeat", values: parseResponsive(props["backgroundRepeat"], keyword), when: hasImage},
	}
}

func (e *Extractor) borderTracks(props map[string]any) []track {
	width := parseResponsive(props["borderWidth"], length)
	style := parseResponsive(props["borderStyle"], keyword)
	if width.hasAny() && !style.hasAny() {
		style = parseResponsive("solid", keyword)
	}
	return []track{
		{property: "border-width", values: width},
		{property: "border-style", def: "none", values: style},
		{property: "border-color", values: parseResponsive(props["borderColor"], e.themed)},
		{property: "border-radius", def: "0", values: parseResponsive(props["borderRadius"], length)},
		{property: "box-shadow", def: "none", values: parseResponsive(props["shadow"], e.themed)},
	}
}

// imageTracks 以图片组件的默认值为基准。
func imageTracks(props map[string]any) []track {
	return []track{
		{property: "object-fit", def: "cover", values: parseResponsive(props["objectFit"], keyword)},
		{property: "object-position", def: "center", values: parseResponsive(props["objectPosition"], keyword)},
		{property: "aspect-ratio", def: "auto", values: parseResponsive(props["aspectRatio"], keyword)},
	}
}
