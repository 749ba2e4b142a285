// Package puck 描述页面搭建器的内容树：root、有序的组件节点列表以及命名的 zone。
// 节点形如 {"type": "...", "props": {...}}，props 中可以嵌套节点列表（slot）。
package puck

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Tree 是编辑器文档，编码时所有字段都会输出。
type Tree struct {
	Content  []any          `json:"content"`
	Root     map[string]any `json:"root"`
	Zones    map[string]any `json:"zones"`
	Metadata map[string]any `json:"metadata"`
}

// Empty 返回集合均已初始化的空树。
func Empty() Tree {
	return Tree{
		Content:  []any{},
		Root:     map[string]any{},
		Zones:    map[string]any{},
		Metadata: map[string]any{},
	}
}

// Parse 解码编辑器 JSON。空输入、null、{} 与 {"content": []} 都得到空树；形态不对的字段视为缺失。
func Parse(raw []byte) (Tree, error) {
	tree := Empty()
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return tree, nil
	}

	var doc map[string]any
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return Tree{}, fmt.Errorf("decode puck data: %w", err)
	}
	return FromMap(doc), nil
}

// FromMap 由已解码的文档构建树。
func FromMap(doc map[string]any) Tree {
	tree := Empty()
	if content, ok := doc["content"].([]any); ok {
		tree.Content = content
	}
	if root, ok := doc["root"].(map[string]any); ok {
		tree.Root = root
	}
	if zones, ok := doc["zones"].(map[string]any); ok {
		tree.Zones = zones
	}
	if metadata, ok := doc["metadata"].(map[string]any); ok {
		tree.Metadata = metadata
	}
	return tree
}

// Normalize 替换 nil 集合，保证编码结果不含 null。
func (t Tree) Normalize() Tree {
	if t.Content == nil {
		t.Content = []any{}
	}
	if t.Root == nil {
		t.Root = map[string]any{}
	}
	if t.Zones == nil {
		t.Zones = map[string]any{}
	}
	if t.Metadata == nil {
		t.Metadata = map[string]any{}
	}
	return t
}

// Marshal 编码树。encoding/json 会对 map 键排序，相同的树得到相同的字节。
func (t Tree) Marshal() ([]byte, error) {
	data, err := json.Marshal(t.Normalize())
	if err != nil {
		return nil, fmt.Errorf("encode puck data: %w", err)
	}
	return data, nil
}

// ZoneKeys 按稳定顺序返回 zone 名称。
func (t Tree) ZoneKeys() []string {
	keys := make([]string, 0, len(t.Zones))
	for key := range t.Zones {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// AsNode 判断 v 是否为组件节点并返回其组成部分；没有 props 的节点得到空 map。
func AsNode(v any) (typ string, props map[string]any, ok bool) {
	m, isMap := v.(map[string]any)
	if !isMap {
		return "", nil, false
	}
	typ, ok = m["type"].(string)
	if !ok || typ == "" {
		return "", nil, false
	}
	props, _ = m["props"].(map[string]any)
	if props == nil {
		props = map[string]any{}
	}
	return typ, props, true
}

// IsNodeList 判断 v 是否为仅由节点组成的非空 slice。
func IsNodeList(v any) bool {
	list, ok := v.([]any)
	if !ok || len(list) == 0 {
		return false
	}
	for _, item := range list {
		if _, _, ok := AsNode(item); !ok {
			return false
		}
	}
	return true
}

// NodeID 以字符串形式返回节点的 props.id。
func NodeID(props map[string]any) string {
	switch id := props["id"].(type) {
	case string:
		return id
	case float64:
		return fmt.Sprintf("%.0f", id)
	default:
		return ""
	}
}

// SortedKeys 返回排序后的 m 的键。
func SortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
