package compiler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cmsTheme/internal/puck"
)

func menus(data map[uint]any) LookupFunc {
	return func(_ context.Context, id uint) (any, bool, error) {
		v, ok := data[id]
		return v, ok, nil
	}
}

func TestEmbed_InjectsDataByValue(t *testing.T) {
	menu := []any{map[string]any{"label": "Home", "url": "/"}}
	c := New(&switchingSource{themes: []ThemeSnapshot{{}}},
		WithLogger(quietLogger()),
		WithEmbedder("Navigation", NavigationEmbedder(menus(map[uint]any{4: menu}))),
	)

	raw := puck.Empty()
	raw.Content = []any{
		node("Navigation", map[string]any{"id": "n1", "navigationId": float64(4)}),
		node("Navigation", map[string]any{"id": "n2", "navigationId": "4"}),
	}

	out, err := c.CompilePage(context.Background(), PageInput{Raw: raw})
	require.NoError(t, err)
	for _, item := range out.Content {
		props := propsOf(t, item)
		assert.Equal(t, menu, props["navigationData"])
	}
}

func TestEmbed_MissingEntityYieldsNull(t *testing.T) {
	c := New(&switchingSource{themes: []ThemeSnapshot{{}}},
		WithLogger(quietLogger()),
		WithEmbedder("Navigation", NavigationEmbedder(menus(map[uint]any{}))),
	)

	raw := puck.Empty()
	raw.Content = []any{
		node("Navigation", map[string]any{"id": "n1", "navigationId": float64(99)}),
		node("Navigation", map[string]any{"id": "n2"}),
	}

	out, err := c.CompilePage(context.Background(), PageInput{Raw: raw})
	require.NoError(t, err)
	for _, item := range out.Content {
		props := propsOf(t, item)
		require.Contains(t, props, "navigationData")
		assert.Nil(t, props["navigationData"])
	}

	data, err := out.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"navigationData":null`)
}

func TestEmbed_LookupErrorPropagates(t *testing.T) {
	failing := func(context.Context, uint) (any, bool, error) { return nil, false, errors.New("timeout") }
	c := New(&switchingSource{themes: []ThemeSnapshot{{}}},
		WithLogger(quietLogger()),
		WithEmbedder("Navigation", NavigationEmbedder(failing)),
	)

	raw := puck.Empty()
	raw.Content = []any{node("Navigation", map[string]any{"navigationId": float64(1)})}

	_, err := c.CompilePage(context.Background(), PageInput{Raw: raw})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
}

func TestParseID(t *testing.T) {
	cases := []struct {
		in   any
		want uint
		ok   bool
	}{
		{float64(3), 3, true},
		{float64(3.5), 0, false},
		{float64(0), 0, false},
		{float64(-1), 0, false},
		{"12", 12, true},
		{" 7 ", 7, true},
		{"abc", 0, false},
		{nil, 0, false},
		{true, 0, false},
	}
	for _, tc := range cases {
		got, ok := parseID(tc.in)
		assert.Equal(t, tc.ok, ok, "%v", tc.in)
		assert.Equal(t, tc.want, got, "%v", tc.in)
	}
}
