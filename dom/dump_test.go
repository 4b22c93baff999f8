package dom

import (
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumpNode(t *testing.T) {
	frag, err := ParseFragment(strings.NewReader(
		`<ul id="nav" class="menu top"><li data-k="v">one</li></ul>tail`,
	))
	require.NoError(t, err)

	got := DumpNode(frag)
	require.Len(t, got, 2)

	assert.Equal(t, "ul", got[0].Tag)
	assert.Equal(t, "nav", got[0].ID)
	assert.Equal(t, []string{"menu", "top"}, got[0].Classes)
	require.Len(t, got[0].Children, 1)
	assert.Equal(t, map[string]string{"data-k": "v"}, got[0].Children[0].Attrs)
	assert.Equal(t, "one", got[0].Children[0].Children[0].Text)
	assert.Equal(t, "tail", got[1].Text)
}

func TestMarshalYAML(t *testing.T) {
	frag, err := ParseFragment(strings.NewReader(`<p class="x">hi</p>`))
	require.NoError(t, err)

	data, err := MarshalYAML(frag)
	require.NoError(t, err)

	var back []Dump
	require.NoError(t, yaml.Unmarshal(data, &back))
	require.Len(t, back, 1)
	assert.Equal(t, "p", back[0].Tag)
	assert.Equal(t, []string{"x"}, back[0].Classes)
	assert.Equal(t, "hi", back[0].Children[0].Text)
}

func TestComponent(t *testing.T) {
	frag, err := ParseFragment(strings.NewReader(
		`<form><input type="checkbox" checked><a href="/x?a=1&amp;b=2">go &amp; see</a></form>`,
	))
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, Component(frag).Render(&sb))

	out := sb.String()
	assert.Contains(t, out, `<form>`)
	assert.Contains(t, out, ` checked`)
	assert.Contains(t, out, `href="/x?a=1&amp;b=2"`)
	assert.Contains(t, out, `go &amp; see`)
}
