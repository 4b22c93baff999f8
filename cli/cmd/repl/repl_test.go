package repl

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/ardnew/haiku/bind"
	"github.com/ardnew/haiku/dom"
	"github.com/ardnew/haiku/lang"
	"github.com/ardnew/haiku/log"
)

var ansiEscape = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// containsPlain reports whether s contains sub once styling is removed.
func containsPlain(s, sub string) bool {
	return strings.Contains(ansiEscape.ReplaceAllString(s, ""), sub)
}

func testModel(t *testing.T, record any) model {
	t.Helper()

	reg := bind.NewRegistry()
	require.NoError(t, reg.AddTemplate("card", "div.card>h3{$name;}"))
	require.NoError(t, reg.AddTemplate("cart", "ul[data-children-binding=items,data-template=row]"))
	require.NoError(t, reg.AddTemplate("row", "li{%self}"))

	binder := bind.New(lang.New[*html.Node](dom.HTML{}), reg)
	history := NewHistory(filepath.Join(t.TempDir(), baseHistory))

	return newModel(context.Background(), binder, record, history, log.Logger{})
}

func TestModel_Evaluate(t *testing.T) {
	m := testModel(t, map[string]any{
		"name":  "Ada",
		"items": []any{"x", "y"},
	})

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"expression", "p{$name;}", "<p>Ada</p>"},
		{"bound expression", "span[data-binding=name]", `<span data-binding="name">Ada</span>`},
		{"template", "@card", `<div class="card"><h3>Ada</h3></div>`},
		{"template with children", "@ cart", `<ul data-children-binding="items" data-template="row"><li>x</li><li>y</li></ul>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.evaluate(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := m.evaluate("@missing")
	require.ErrorIs(t, err, bind.ErrTemplateNotFound)
}

func TestModel_ExecuteInputRecordsHistory(t *testing.T) {
	m := testModel(t, nil)

	m.input.SetValue("p{hi}")

	m, cmd := m.executeInput()
	assert.NotNil(t, cmd)
	assert.Empty(t, m.input.Value())
	require.Equal(t, 1, m.history.Len())

	entry, err := m.history.Entry(0)
	require.NoError(t, err)
	assert.Equal(t, HistoryEntry{Line: "p{hi}", Mode: modeExpand}, entry)
	assert.Equal(t, 1, m.historyIdx)
}

func TestModel_Commands(t *testing.T) {
	m := testModel(t, map[string]any{"name": "Ada"})

	path := filepath.Join(t.TempDir(), "record.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: Bo\nitems: [a, b]\n"), 0o600))

	m, _ = m.executeCommand("load " + path)
	assert.Equal(t, map[string]any{"name": "Bo", "items": []any{"a", "b"}}, m.record)

	m, _ = m.executeCommand("load")
	assert.Equal(t, "Bo", m.record.(map[string]any)["name"])

	m, _ = m.executeCommand("load " + filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Equal(t, "Bo", m.record.(map[string]any)["name"])

	assert.Contains(t, m.showRecord(), "name: Bo")

	list := m.listTemplates()
	assert.True(t, containsPlain(list, "@card"))
	assert.True(t, containsPlain(list, "div.card>h3{$name;}"))

	m, _ = m.executeCommand("quit")
	assert.True(t, m.quitting)
	assert.Empty(t, m.View())
}

func TestModel_ShowEmptyRecord(t *testing.T) {
	m := testModel(t, nil)

	assert.True(t, containsPlain(m.showRecord(), "(no record)"))
}

func TestModel_HistoryNavigation(t *testing.T) {
	m := testModel(t, nil)

	require.NoError(t, m.history.Add("p", modeExpand))
	require.NoError(t, m.history.Add("list", modeCtrl))
	require.NoError(t, m.history.Add("div", modeExpand))
	m.historyIdx = m.history.Len()

	m, ok := m.seek(-1, anyEntry)
	require.True(t, ok)
	assert.Equal(t, "div", m.input.Value())

	m, ok = m.seek(-1, anyEntry)
	require.True(t, ok)
	assert.Equal(t, "list", m.input.Value())
	assert.Equal(t, modeCtrl, m.mode)

	m, ok = m.seek(-1, func(e HistoryEntry) bool { return e.Mode == modeCtrl })
	assert.False(t, ok)

	m = m.switchToMode(modeExpand)
	m, ok = m.seek(-1, m.sameMode)
	require.True(t, ok)
	assert.Equal(t, "p", m.input.Value())

	m.historyIdx = m.history.Len() - 1
	m = m.clearHistoryView()
	assert.Equal(t, m.history.Len(), m.historyIdx)
	assert.Empty(t, m.input.Value())
}

func TestModel_HistoryCtrlRestores(t *testing.T) {
	m := testModel(t, nil)

	require.NoError(t, m.history.Add("help", modeCtrl))
	m.historyIdx = m.history.Len()
	m.input.SetValue("ul>li")

	m = m.historyCtrl(-1)
	assert.Equal(t, modeCtrl, m.mode)
	assert.Equal(t, "help", m.input.Value())

	m = m.historyCtrl(-1)
	assert.False(t, m.altNavActive)
	assert.Equal(t, modeExpand, m.mode)
	assert.Equal(t, "ul>li", m.input.Value())
}

func TestModel_SwitchModePreservesInput(t *testing.T) {
	m := testModel(t, nil)

	m.input.SetValue("ul>li")
	m = m.switchToMode(modeCtrl)
	assert.Empty(t, m.input.Value())

	m.input.SetValue("he")
	m = m.switchToMode(modeExpand)
	assert.Equal(t, "ul>li", m.input.Value())

	m = m.switchToMode(modeCtrl)
	assert.Equal(t, "he", m.input.Value())
}

func TestModel_Cycle(t *testing.T) {
	m := testModel(t, nil)

	m.input.SetValue("@")
	m.input.SetCursor(1)
	refreshMatches(&m, false)
	require.Len(t, m.matches, 3)

	m = m.cycle(+1)
	assert.True(t, m.tabActive)
	assert.Equal(t, "@card", m.input.Value())

	m = m.cycle(+1)
	assert.Equal(t, "@cart", m.input.Value())

	m = m.cycle(-1)
	m = m.cycle(-1)
	assert.Equal(t, "@row", m.input.Value())
}

func TestRun_NoBinder(t *testing.T) {
	err := Run(context.Background(), nil, nil, t.TempDir(), log.Logger{})
	require.ErrorIs(t, err, ErrNoBinder)
}
