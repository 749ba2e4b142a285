package puck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_EmptyForms(t *testing.T) {
	for _, raw := range []string{"", "  ", "null", "{}", `{"content": []}`} {
		tree, err := Parse([]byte(raw))
		require.NoError(t, err, raw)
		assert.Empty(t, tree.Content, raw)
		assert.NotNil(t, tree.Root, raw)
		assert.NotNil(t, tree.Zones, raw)
		assert.NotNil(t, tree.Metadata, raw)
	}
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte(`{"content": [`))
	assert.Error(t, err)
}

func TestParse_WrongShapesTreatedAsAbsent(t *testing.T) {
	tree, err := Parse([]byte(`{"content": {"a": 1}, "root": [], "zones": "x"}`))
	require.NoError(t, err)
	assert.Equal(t, Empty(), tree)
}

func TestMarshal_NeverNull(t *testing.T) {
	data, err := Tree{}.Marshal()
	require.NoError(t, err)
	assert.JSONEq(t, `{"content":[],"root":{},"zones":{},"metadata":{}}`, string(data))
}

func TestMarshal_RoundTrip(t *testing.T) {
	raw := `{"content":[{"type":"Heading","props":{"id":"h1","text":"Hi"}}],"root":{"props":{"title":"Home"}},"zones":{"h1:side":[]},"metadata":{"source":"editor"}}`
	tree, err := Parse([]byte(raw))
	require.NoError(t, err)

	data, err := tree.Marshal()
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(data))
}

func TestAsNode(t *testing.T) {
	typ, props, ok := AsNode(map[string]any{"type": "Text"})
	require.True(t, ok)
	assert.Equal(t, "Text", typ)
	assert.NotNil(t, props)

	_, _, ok = AsNode(map[string]any{"props": map[string]any{}})
	assert.False(t, ok)
	_, _, ok = AsNode("Text")
	assert.False(t, ok)
}

func TestIsNodeList(t *testing.T) {
	node := map[string]any{"type": "Text", "props": map[string]any{}}
	assert.True(t, IsNodeList([]any{node, node}))
	assert.False(t, IsNodeList([]any{}))
	assert.False(t, IsNodeList([]any{node, "x"}))
	assert.False(t, IsNodeList([]any{"a", "b"}))
	assert.False(t, IsNodeList(node))
}

func TestNodeIDAndKeys(t *testing.T) {
	assert.Equal(t, "abc", NodeID(map[string]any{"id": "abc"}))
	assert.Equal(t, "12", NodeID(map[string]any{"id": float64(12)}))
	assert.Equal(t, "", NodeID(map[string]any{}))

	tree := Empty()
	tree.Zones["b:main"] = []any{}
	tree.Zones["a:main"] = []any{}
	assert.Equal(t, []string{"a:main", "b:main"}, tree.ZoneKeys())
	assert.Equal(t, []string{"a", "b", "c"}, SortedKeys(map[string]any{"c": 1, "a": 2, "b": 3}))
}
