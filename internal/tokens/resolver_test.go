package tokens

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() map[string]any {
	return map[string]any{
		"colors": map[string]any{
			"primary": map[string]any{
				"500": "#3B82F6",
			},
			"brand":  "colors.primary.500",
			"accent": "colors.brand",
		},
		"typography": map[string]any{
			"fontFamily": map[string]any{
				"heading": "Inter, sans-serif",
			},
		},
		"spacing": map[string]any{
			"md":   "16px",
			"unit": float64(4),
		},
		"loop": map[string]any{
			"a": "loop.b",
			"b": "loop.a",
		},
	}
}

func TestResolve_RoundTripExamples(t *testing.T) {
	table := map[string]any{"colors": map[string]any{"primary": map[string]any{"500": "#3B82F6"}}}

	assert.Equal(t, "#3B82F6", Resolve("colors.primary.500", table))
	assert.Equal(t, "#FF0000", Resolve("#FF0000", table))
	assert.Equal(t, "colors.primary.999", Resolve("colors.primary.999", table))
}

func TestResolve_LiteralPreservation(t *testing.T) {
	// A table that would resolve every literal if they were looked up.
	table := map[string]any{
		"auto": "WRONG", "none": "WRONG", "transparent": "WRONG", "inherit": "WRONG",
		"initial": "WRONG", "unset": "WRONG", "#fff": "WRONG", "10px": "WRONG",
	}
	literals := []string{
		"#fff", "#ffff", "#ffffff", "#ffffff80", "#ABCDEF",
		"10px", "1.5rem", "2em", "50%", "100vh", "100vw", "-4px", ".5em",
		"transparent", "none", "inherit", "auto", "initial", "unset",
	}
	for _, lit := range literals {
		assert.True(t, IsLiteral(lit), lit)
		assert.Equal(t, lit, Resolve(lit, table), lit)
	}
}

func TestIsLiteral_RejectsNearMisses(t *testing.T) {
	for _, s := range []string{"#ff", "#fffff", "#ggg", "10", "10pt", "px", "Auto", "colors.primary.500", ""} {
		assert.False(t, IsLiteral(s), s)
	}
}

func TestResolve_FollowsAliases(t *testing.T) {
	table := sampleTable()

	assert.Equal(t, "#3B82F6", Resolve("colors.brand", table))
	assert.Equal(t, "#3B82F6", Resolve("colors.accent", table))
	assert.Equal(t, "Inter, sans-serif", Resolve("typography.fontFamily.heading", table))
}

func TestResolve_CycleHitsDepthGuard(t *testing.T) {
	var reasons []Reason
	r := Resolver{Observer: func(_ string, reason Reason) { reasons = append(reasons, reason) }}

	assert.Equal(t, "loop.a", r.Resolve("loop.a", sampleTable()))
	assert.Equal(t, []Reason{ReasonDepthExceeded}, reasons)
}

func TestResolve_CustomDepth(t *testing.T) {
	r := Resolver{MaxDepth: 1}
	// colors.accent -> colors.brand needs a second lookup.
	assert.Equal(t, "colors.accent", r.Resolve("colors.accent", sampleTable()))
	assert.Equal(t, "#3B82F6", r.Resolve("colors.primary.500", sampleTable()))
}

func TestResolve_GroupPathIsUnresolved(t *testing.T) {
	var paths []string
	r := Resolver{Observer: func(path string, reason Reason) {
		if reason == ReasonUnresolved {
			paths = append(paths, path)
		}
	}}

	assert.Equal(t, "colors.primary", r.Resolve("colors.primary", sampleTable()))
	assert.Equal(t, "colors.primary.500.x", r.Resolve("colors.primary.500.x", sampleTable()))
	assert.Equal(t, []string{"colors.primary", "colors.primary.500.x"}, paths)
}

func TestResolve_NonStringLeafPassesThrough(t *testing.T) {
	assert.Equal(t, float64(4), Resolve("spacing.unit", sampleTable()))
	assert.Equal(t, float64(12), Resolve(float64(12), sampleTable()))
	assert.Equal(t, true, Resolve(true, sampleTable()))
	assert.Nil(t, Resolve(nil, sampleTable()))
}

func TestResolve_NestedTreeKeepsKeysAndDoesNotMutate(t *testing.T) {
	props := map[string]any{
		"colors.primary.500": "keys are never resolved",
		"style": map[string]any{
			"color":   "colors.primary.500",
			"padding": []any{"spacing.md", "8px", float64(2)},
		},
		"label": "Hello world",
	}

	out := Resolve(props, sampleTable()).(map[string]any)

	assert.Equal(t, "keys are never resolved", out["colors.primary.500"])
	style := out["style"].(map[string]any)
	assert.Equal(t, "#3B82F6", style["color"])
	assert.Equal(t, []any{"16px", "8px", float64(2)}, style["padding"])
	assert.Equal(t, "Hello world", out["label"])

	original := props["style"].(map[string]any)
	assert.Equal(t, "colors.primary.500", original["color"])
}

func TestResolve_Idempotent(t *testing.T) {
	props := map[string]any{
		"color":   "colors.accent",
		"font":    "typography.fontFamily.heading",
		"missing": "colors.nope",
		"nested":  []any{map[string]any{"gap": "spacing.md"}},
	}
	once := Resolve(props, sampleTable())
	twice := Resolve(once, sampleTable())
	require.Equal(t, once, twice)
}

func TestResolve_EmptyTable(t *testing.T) {
	assert.Equal(t, "colors.primary.500", Resolve("colors.primary.500", nil))
	assert.Equal(t, "", Resolve("", sampleTable()))
}

func TestLookup(t *testing.T) {
	v, ok := Lookup(sampleTable(), "colors.primary")
	require.True(t, ok)
	assert.IsType(t, map[string]any{}, v)

	_, ok = Lookup(sampleTable(), "colors..primary")
	assert.False(t, ok)
}
