package repl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_AddAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)
	h := NewHistory(path)

	require.NoError(t, h.Load())
	require.NoError(t, h.Add("  ul>li  ", modeExpand))
	require.NoError(t, h.Add("ul>li", modeExpand))
	require.NoError(t, h.Add("list", modeCtrl))
	require.NoError(t, h.Add("", modeCtrl))

	assert.Equal(t, []HistoryEntry{
		{Line: "ul>li", Mode: modeExpand},
		{Line: "list", Mode: modeCtrl},
	}, h.Entries())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "X:ul>li\nC:list\n", string(data))

	reloaded := NewHistory(path)
	require.NoError(t, reloaded.Load())
	assert.Equal(t, h.Entries(), reloaded.Entries())
}

func TestHistory_DuplicateMovesToEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)
	h := NewHistory(path)

	require.NoError(t, h.Add("a", modeExpand))
	require.NoError(t, h.Add("b", modeExpand))
	require.NoError(t, h.Add("a", modeCtrl))
	require.NoError(t, h.Add("a", modeExpand))

	assert.Equal(t, []HistoryEntry{
		{Line: "b", Mode: modeExpand},
		{Line: "a", Mode: modeCtrl},
		{Line: "a", Mode: modeExpand},
	}, h.Entries())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "X:b\nC:a\nX:a\n", string(data))
}

func TestHistory_LoadUnprefixedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)
	require.NoError(t, os.WriteFile(path, []byte("div\n\nC:quit\nX:p\n"), 0o600))

	h := NewHistory(path)
	require.NoError(t, h.Load())

	assert.Equal(t, []HistoryEntry{
		{Line: "div", Mode: modeExpand},
		{Line: "quit", Mode: modeCtrl},
		{Line: "p", Mode: modeExpand},
	}, h.Entries())
}

func TestHistory_Entry(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), baseHistory))
	require.NoError(t, h.Add("p", modeExpand))

	e, err := h.Entry(0)
	require.NoError(t, err)
	assert.Equal(t, "p", e.Line)

	_, err = h.Entry(1)
	require.ErrorIs(t, err, ErrOutOfBounds)

	_, err = h.Entry(-1)
	require.ErrorIs(t, err, ErrOutOfBounds)
}
