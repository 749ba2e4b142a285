package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVariablesCSS_Empty(t *testing.T) {
	assert.Equal(t, ":root {}", VariablesCSS(nil))
	assert.Equal(t, ":root {}", VariablesCSS(map[string]any{}))
	assert.Equal(t, ":root {}", VariablesCSS(map[string]any{"colors": map[string]any{}}))
}

func TestVariablesCSS_FlattensSortedPaths(t *testing.T) {
	table := map[string]any{
		"colors": map[string]any{
			"primary": map[string]any{"500": "#3B82F6"},
			"Accent":  "#f00",
		},
		"spacing": map[string]any{"md": "16px"},
		"radius":  float64(4),
		"fonts":   []any{"Inter", "sans-serif"},
		"unset":   nil,
	}

	expected := ":root {\n" +
		"  --colors-Accent: #f00;\n" +
		"  --colors-primary-500: #3B82F6;\n" +
		"  --fonts: Inter, sans-serif;\n" +
		"  --radius: 4;\n" +
		"  --spacing-md: 16px;\n" +
		"}"
	assert.Equal(t, expected, VariablesCSS(table))
}

func TestVariablesCSS_Deterministic(t *testing.T) {
	table := themeTable()
	assert.Equal(t, VariablesCSS(table), VariablesCSS(table))
}

func TestVariablesCSS_ResolvesAliases(t *testing.T) {
	table := map[string]any{
		"colors": map[string]any{
			"primary": map[string]any{"500": "#3B82F6"},
			"brand":   "colors.primary.500",
			"link":    "colors.brand",
			"ghost":   "colors.missing",
		},
		"spacing": map[string]any{"base": float64(8), "gutter": "spacing.base"},
	}

	expected := ":root {\n" +
		"  --colors-brand: #3B82F6;\n" +
		"  --colors-ghost: colors.missing;\n" +
		"  --colors-link: #3B82F6;\n" +
		"  --colors-primary-500: #3B82F6;\n" +
		"  --spacing-base: 8;\n" +
		"  --spacing-gutter: 8;\n" +
		"}"
	assert.Equal(t, expected, VariablesCSS(table))
}
