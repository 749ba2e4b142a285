// Package compiler 基于同一份主题快照解析 Puck 树中的设计 token，并按值嵌入被引用的实体，
// 生成自包含的编译结果。
package compiler

import (
	"context"
	"fmt"
	"log/slog"

	"cmsTheme/internal/puck"
	"cmsTheme/internal/tokens"
)

// ThemeSnapshot 是某一时刻作用域内激活主题的 token 表。
// 租户与中心站都没有激活主题时 ThemeID 为 0。
type ThemeSnapshot struct {
	ThemeID  uint
	TenantID *uint
	Tokens   map[string]any
}

// ThemeSource 查找租户的激活主题，依次回退到中心站主题（tenant 为 nil）和空快照。
type ThemeSource interface {
	ActiveTheme(ctx context.Context, tenantID *uint) (ThemeSnapshot, error)
}

// PageInput 是待编译的页面；设置 Header、Footer 时，其内容包裹在页面内容两侧。
type PageInput struct {
	TenantID *uint
	Raw      puck.Tree
	Header   *puck.Tree
	Footer   *puck.Tree
}

// Compiler 在调用之间无状态，每次编译只读取一次激活主题。
type Compiler struct {
	source    ThemeSource
	resolver  tokens.Resolver
	embedders map[string]Embedder
	log       *slog.Logger
}

type Option func(*Compiler)

// WithEmbedder 注册或替换某组件类型的嵌入器。
func WithEmbedder(componentType string, e Embedder) Option {
	return func(c *Compiler) {
		c.embedders[componentType] = e
	}
}

// WithMaxAliasDepth 限制 token 表中别名链的长度。
func WithMaxAliasDepth(depth int) Option {
	return func(c *Compiler) {
		c.resolver.MaxDepth = depth
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(c *Compiler) {
		c.log = log
	}
}

func New(source ThemeSource, opts ...Option) *Compiler {
	c := &Compiler{
		source:    source,
		embedders: make(map[string]Embedder),
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.resolver.Observer = func(path string, reason tokens.Reason) {
		if reason == tokens.ReasonDepthExceeded {
			c.log.Warn("token alias chain too deep, keeping reference", slog.String("path", path))
		}
	}
	return c
}

// Snapshot 读取租户作用域的激活主题。
func (c *Compiler) Snapshot(ctx context.Context, tenantID *uint) (ThemeSnapshot, error) {
	snap, err := c.source.ActiveTheme(ctx, tenantID)
	if err != nil {
		return ThemeSnapshot{}, fmt.Errorf("load active theme: %w", err)
	}
	if snap.Tokens == nil {
		snap.Tokens = map[string]any{}
	}
	return snap, nil
}

// CompilePage 编译页面。带页眉或页脚时，内容依次为页眉、页面、页脚，全部基于同一份快照。
func (c *Compiler) CompilePage(ctx context.Context, page PageInput) (puck.Tree, error) {
	snap, err := c.Snapshot(ctx, page.TenantID)
	if err != nil {
		return puck.Tree{}, err
	}

	body, err := c.CompileWith(ctx, snap, page.Raw)
	if err != nil {
		return puck.Tree{}, err
	}
	if page.Header == nil && page.Footer == nil {
		return body, nil
	}

	out := puck.Empty()
	out.Root = body.Root
	out.Metadata = body.Metadata

	var header, footer puck.Tree
	if page.Header != nil {
		if header, err = c.CompileWith(ctx, snap, *page.Header); err != nil {
			return puck.Tree{}, fmt.Errorf("compile header: %w", err)
		}
	}
	if page.Footer != nil {
		if footer, err = c.CompileWith(ctx, snap, *page.Footer); err != nil {
			return puck.Tree{}, fmt.Errorf("compile footer: %w", err)
		}
	}

	out.Content = append(out.Content, header.Content...)
	out.Content = append(out.Content, body.Content...)
	out.Content = append(out.Content, footer.Content...)
	for _, part := range []puck.Tree{header, footer, body} {
		for key, zone := range part.Zones {
			out.Zones[key] = zone
		}
	}
	return out, nil
}

// CompileThemePart 单独编译页眉、页脚或模板部件。
func (c *Compiler) CompileThemePart(ctx context.Context, tenantID *uint, raw puck.Tree) (puck.Tree, error) {
	snap, err := c.Snapshot(ctx, tenantID)
	if err != nil {
		return puck.Tree{}, err
	}
	return c.CompileWith(ctx, snap, raw)
}

// CompileWith 基于指定快照编译 raw，元数据原样透传。
func (c *Compiler) CompileWith(ctx context.Context, snap ThemeSnapshot, raw puck.Tree) (puck.Tree, error) {
	raw = raw.Normalize()
	out := puck.Empty()

	content, err := c.compileNodes(ctx, snap, raw.Content)
	if err != nil {
		return puck.Tree{}, err
	}
	out.Content = content

	if root, ok := c.resolver.Resolve(raw.Root, snap.Tokens).(map[string]any); ok {
		out.Root = root
	}

	for _, key := range raw.ZoneKeys() {
		nodes, isList := raw.Zones[key].([]any)
		if !isList {
			out.Zones[key] = c.resolver.Resolve(raw.Zones[key], snap.Tokens)
			continue
		}
		compiled, err := c.compileNodes(ctx, snap, nodes)
		if err != nil {
			return puck.Tree{}, fmt.Errorf("zone %q: %w", key, err)
		}
		out.Zones[key] = compiled
	}

	for key, value := range raw.Metadata {
		out.Metadata[key] = value
	}
	return out, nil
}

func (c *Compiler) compileNodes(ctx context.Context, snap ThemeSnapshot, nodes []any) ([]any, error) {
	out := make([]any, 0, len(nodes))
	for _, item := range nodes {
		typ, props, ok := puck.AsNode(item)
		if !ok {
			out = append(out, c.resolver.Resolve(item, snap.Tokens))
			continue
		}
		node, err := c.compileNode(ctx, snap, item.(map[string]any), typ, props)
		if err != nil {
			return nil, err
		}
		out = append(out, node)
	}
	return out, nil
}

func (c *Compiler) compileNode(ctx context.Context, snap ThemeSnapshot, raw map[string]any, typ string, props map[string]any) (map[string]any, error) {
	compiled := make(map[string]any, len(props)+1)
	for _, key := range puck.SortedKeys(props) {
		value := props[key]
		if puck.IsNodeList(value) {
			children, err := c.compileNodes(ctx, snap, value.([]any))
			if err != nil {
				return nil, err
			}
			compiled[key] = children
			continue
		}
		compiled[key] = c.resolver.Resolve(value, snap.Tokens)
	}

	if e, ok := c.embedders[typ]; ok {
		data, err := c.embed(ctx, typ, e, props)
		if err != nil {
			return nil, err
		}
		compiled[e.DataProp] = data
	}

	node := make(map[string]any, len(raw))
	for key, value := range raw {
		node[key] = value
	}
	node["props"] = compiled
	return node, nil
}
