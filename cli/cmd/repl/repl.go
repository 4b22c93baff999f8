package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/klauspost/readahead"
	"github.com/sahilm/fuzzy"
	"golang.org/x/net/html"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/haiku/bind"
	"github.com/ardnew/haiku/dom"
	"github.com/ardnew/haiku/log"
)

// editRecordMsg is sent when editing produced a new record.
type editRecordMsg struct{ record any }

// editCancelledMsg is sent when the user cleared the editor content.
type editCancelledMsg struct{}

// editDeclinedMsg is sent when the user declined to re-edit after a decode
// error.
type editDeclinedMsg struct{}

// editErrorMsg is sent when the edit process fails for any other reason.
type editErrorMsg struct{ err error }

const (
	expandPrompt = "➜ "
	ctrlPrompt   = " :"

	// templatePrefix marks an input line naming a template to bind.
	templatePrefix = "@"

	previewWidth = 40
)

func helpMessage() string {
	return `
: Commands (press Esc to toggle mode):

  help         Print this cruft
  list         List templates and conditional maps
  data         Print the data record
  edit         Edit the data record in external $EDITOR
  load FILE    Replace the data record with a YAML or JSON file
  clear        Clear screen
  quit         Exit REPL

Usage:
  Type an expression to expand and bind it against the data record
  Type @id to bind the registered template id
  Completions appear automatically as you type:
    tag names at the start of a token, template ids after @,
    record fields after $
  Press Tab / Shift-Tab to cycle through candidates
  Press Space to accept the current candidate
  Press Esc to toggle between expand and command modes
  Use Up/Down arrows for history navigation (mode switches automatically)
  Use Shift+Up/Shift+Down for history navigation within current mode only
  Use Alt+Up/Alt+Down to navigate command history
    (restores original mode when reaching end of history)
  Press Ctrl+C on empty line or Ctrl+D to exit
`
}

// inputMode represents the current input mode.
type inputMode int

const (
	modeExpand inputMode = iota
	modeCtrl
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	matchStyle      = lipgloss.NewStyle().
			Foreground(lipgloss.Color("4")).
			Bold(true)
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
	selectedMatchStyle = selectedStyle.Bold(true)
)

// formatCommand formats the echo line of a submitted input.
func formatCommand(mode inputMode, input string) string {
	if mode == modeCtrl {
		return ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input)
	}

	return promptStyle.Render(expandPrompt) + inputStyle.Render(input)
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc          func() context.Context
	input            textinput.Model
	binder           *bind.Binder[*html.Node]
	record           any
	logger           log.Logger
	history          *History
	historyIdx       int
	matches          fuzzy.Matches // current fuzzy match results
	candidates       []string      // backing candidate list
	wordStart        int           // byte offset of current word start
	wordEnd          int           // byte offset of current word end
	suggIdx          int           // selected candidate index
	tabActive        bool          // whether user is tab-cycling
	preTabText       string        // input text before tab-cycling began
	preTabCursor     int           // cursor position before tab-cycling began
	altNavActive     bool          // whether user is in Alt+Up/Down navigation
	altNavOrigMode   inputMode     // original mode before Alt navigation
	altNavOrigText   string        // original text before Alt navigation
	altNavOrigCursor int           // original cursor position before Alt navigation
	width            int           // terminal width for ellipsization
	quitting         bool
	mode             inputMode
	saved            [2]struct {
		text   string
		cursor int
	} // input of the inactive mode
}

// Run starts the REPL over the templates of binder and the given data
// record. History is kept in cacheDir.
func Run(
	ctx context.Context,
	binder *bind.Binder[*html.Node],
	record any,
	cacheDir string,
	logger log.Logger,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger.TraceContext(
		ctx,
		"repl start",
		slog.String("cache_dir", cacheDir),
		slog.Bool("has_record", record != nil),
	)

	if binder == nil {
		return ErrNoBinder
	}

	history := NewHistory(filepath.Join(cacheDir, baseHistory))
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "could not load history", slog.Any("error", err))
	}

	logger.TraceContext(
		ctx,
		"repl history loaded",
		slog.Int("entry_count", history.Len()),
		slog.Int("template_count", len(binder.Registry().TemplateIDs())),
	)

	m := newModel(ctx, binder, record, history, logger)

	_, err = tea.NewProgram(m, tea.WithContext(ctx)).Run()

	return err
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	binder *bind.Binder[*html.Node],
	record any,
	history *History,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(expandPrompt)
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = defaultWidth

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		binder:     binder,
		record:     record,
		logger:     logger,
		history:    history,
		historyIdx: history.Len(),
		suggIdx:    -1,
		width:      defaultWidth,
		mode:       modeExpand,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(expandPrompt) - 2

		return m, nil

	case editRecordMsg:
		m.record = msg.record
		m.logger.TraceContext(m.ctxFunc(), "repl edit complete")

		return m, tea.Println(resultStyle.Render("✔ — record updated"))

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("🗴 — edit cancelled."))

	case editDeclinedMsg:
		m.quitting = true

		return m, tea.Quit

	case editErrorMsg:
		return m, tea.Println(
			errorStyle.Render("🗴 — error: " + msg.err.Error()),
		)
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.hintLine())
	b.WriteString("\n")

	return b.String()
}

// hintLine renders the line below the input: the history position, a usage
// hint, the completion bar, or the spec of the token under the cursor.
func (m model) hintLine() string {
	input := m.input.Value()

	switch {
	case m.historyIdx < m.history.Len():
		return hintStyle.Render(fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len()))

	case strings.TrimSpace(input) == "":
		if m.mode == modeExpand {
			return hintStyle.Render("Type an expression or @template, or press Esc for commands")
		}

		return hintStyle.Render("Type: " + strings.Join(ctrlCommands, ", ") + " (press Esc to return)")

	case len(m.matches) > 0:
		return renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width)

	case m.mode == modeExpand && !strings.HasPrefix(input, templatePrefix):
		return renderSpecHint(input, m.input.Position())

	default:
		return ""
	}
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(
		m.ctxFunc(),
		"repl keypress",
		slog.String("key", msg.String()),
		slog.Int("type", int(msg.Type)),
	)

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.altNavActive = false
		m.historyIdx = m.history.Len()
		refreshMatches(&m, false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		m.altNavActive = false

		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}

		// Lock in the current tab candidate without executing.
		m.tabActive = false
		refreshMatches(&m, true)

		return m, nil

	case tea.KeyTab:
		return m.cycle(+1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		if msg.Alt {
			return m.historyCtrl(-1), nil
		}

		m, _ = m.seek(-1, anyEntry)

		return m, nil

	case tea.KeyDown:
		if msg.Alt {
			return m.historyCtrl(+1), nil
		}

		if next, ok := m.seek(+1, anyEntry); ok {
			return next, nil
		}

		return m.clearHistoryView(), nil

	case tea.KeyShiftUp:
		m, _ = m.seek(-1, m.sameMode)

		return m, nil

	case tea.KeyShiftDown:
		if next, ok := m.seek(+1, m.sameMode); ok {
			return next, nil
		}

		return m.clearHistoryView(), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			refreshMatches(&m, false)

			return m, nil
		}

		m.altNavActive = false

		return m.switchToMode(1 - m.mode), nil

	case tea.KeyRunes:
		// Space accepts the current candidate while tab-cycling.
		if m.tabActive && msg.String() == " " {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		refreshMatches(&m, true)

		return m, cmd
	}

	// Any other key edits or moves without auto-confirming a completion.
	var cmd tea.Cmd

	m.tabActive = false
	m.altNavActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, false)

	return m, cmd
}

// cycle moves the tab selection by step, wrapping around. A single
// candidate is completed and confirmed immediately.
func (m model) cycle(step int) model {
	n := len(m.matches)

	switch {
	case n == 0:
		return m

	case n == 1:
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m

	case m.tabActive:
		m.suggIdx = (m.suggIdx + step + n) % n

	default:
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()
		m.suggIdx = 0

		if step < 0 {
			m.suggIdx = n - 1
		}
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m
}

// replaceCurrentWord replaces the current word with replacement and moves
// the cursor after it.
func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()
	cursor := m.wordStart + len(replacement)

	m.input.SetValue(input[:m.wordStart] + replacement + input[m.wordEnd:])
	m.input.SetCursor(cursor)

	m.wordEnd = cursor
}

// refreshMatches recomputes fuzzy matches for the current input. With
// autoConfirm, a sole candidate equal to the typed word is accepted.
// Deletions and cursor movement pass false so editing never completes
// unexpectedly.
func refreshMatches(m *model, autoConfirm bool) {
	m.matches, m.candidates, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	if candidate := m.matches[0].Str; m.input.Value()[m.wordStart:m.wordEnd] == candidate {
		replaceCurrentWord(m, candidate)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil
	}
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	m.saved = [2]struct {
		text   string
		cursor int
	}{}
	m.input.SetValue("")

	if err := m.history.Add(input, m.mode); err != nil {
		m.logger.DebugContext(m.ctxFunc(), "history write failed", slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	if m.mode == modeCtrl {
		m.logger.TraceContext(m.ctxFunc(), "repl command", slog.String("input", input))

		return m.executeCommand(input)
	}

	m.logger.TraceContext(m.ctxFunc(), "repl expand", slog.String("input", input))

	echo := tea.Println(formatCommand(modeExpand, input))

	markup, err := m.evaluate(input)
	if err != nil {
		m.logger.TraceContext(m.ctxFunc(), "repl expand failed", slog.Any("error", err))

		return m, tea.Sequence(echo, tea.Println(errorStyle.Render("error: "+err.Error())))
	}

	return m, tea.Sequence(echo, tea.Println(resultStyle.Render(markup)))
}

// evaluate expands and binds an input line against the record and returns
// the resulting markup. A line starting with "@" names a template.
func (m model) evaluate(input string) (string, error) {
	ctx := m.ctxFunc()

	var (
		root *html.Node
		err  error
	)

	if id, ok := strings.CutPrefix(input, templatePrefix); ok {
		root, err = m.binder.BindTemplate(ctx, strings.TrimSpace(id), m.record)
	} else {
		root, err = m.binder.Expander().Expand(ctx, input, m.record)
		if err == nil {
			err = m.binder.Bind(ctx, root, m.record)
		}
	}

	if err != nil {
		return "", err
	}

	return dom.HTML{}.RenderString(root)
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	echo := tea.Println(formatCommand(modeCtrl, input))

	cmd, args := parts[0], parts[1:]

	m.logger.TraceContext(
		m.ctxFunc(),
		"repl exec command",
		slog.String("command", cmd),
		slog.Any("args", args),
	)

	switch cmd {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echo, tea.Println(helpMessage()))

	case "l", "list":
		return m, tea.Sequence(echo, tea.Println(m.listTemplates()))

	case "d", "data":
		return m, tea.Sequence(echo, tea.Println(m.showRecord()))

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		return m, tea.Sequence(echo, m.editRecord())

	case "load":
		if len(args) != 1 {
			return m, tea.Sequence(echo, tea.Println(errorStyle.Render("usage: load FILE")))
		}

		record, err := loadRecordFile(m.ctxFunc(), args[0])
		if err != nil {
			return m, tea.Sequence(echo, tea.Println(errorStyle.Render("error: "+err.Error())))
		}

		m.record = record

		return m, tea.Sequence(echo, tea.Println(resultStyle.Render("✔ — record loaded")))

	default:
		return m, tea.Println(
			errorStyle.Render("Unknown command: " + cmd + " (try 'help')"),
		)
	}
}

func (m model) editRecord() tea.Cmd {
	cmd := &editRecordCommand{
		record:  m.record,
		ctxFunc: m.ctxFunc,
		logger:  m.logger,
	}

	return tea.Exec(cmd, func(err error) tea.Msg {
		switch {
		case errors.Is(err, ErrEditDeclined):
			return editDeclinedMsg{}
		case err != nil:
			return editErrorMsg{err: err}
		case cmd.cleared:
			return editCancelledMsg{}
		default:
			return editRecordMsg{record: cmd.newRecord}
		}
	})
}

// loadRecordFile decodes the record document in the named file.
func loadRecordFile(ctx context.Context, name string) (any, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, ErrLoadRecord.Wrap(err).With(slog.String("file", name))
	}
	defer f.Close()

	ra := readahead.NewReader(f)
	defer ra.Close()

	record, err := decodeRecord(ctx, ra)
	if err != nil {
		return nil, err
	}

	return record, nil
}

func (m model) listTemplates() string {
	var b strings.Builder

	reg := m.binder.Registry()

	for _, id := range reg.TemplateIDs() {
		body, _ := reg.Template(id)
		fmt.Fprintf(&b, "  @%s %s\n", id, hintStyle.Render(preview(body)))
	}

	for _, id := range reg.ConditionalIDs() {
		cm, _ := reg.ConditionalsMap(id)

		selector := cm.Field
		if cm.Expr != "" {
			selector = cm.Expr
		}

		fmt.Fprintf(&b, "  ?%s %s\n", id, hintStyle.Render(preview(selector)))
	}

	if b.Len() == 0 {
		return hintStyle.Render("  (no templates)")
	}

	return b.String()
}

func (m model) showRecord() string {
	if m.record == nil {
		return hintStyle.Render("  (no record)")
	}

	out, err := marshalRecord(m.ctxFunc(), m.record)
	if err != nil {
		return errorStyle.Render("error: " + err.Error())
	}

	return strings.TrimRight(string(out), "\n")
}

// preview shortens s to a single line of at most previewWidth bytes.
func preview(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > previewWidth {
		return s[:previewWidth-3] + "..."
	}

	return s
}

func anyEntry(HistoryEntry) bool { return true }

func (m model) sameMode(e HistoryEntry) bool { return e.Mode == m.mode }

// seek moves from the current history index by step to the nearest entry
// accepted by keep, switching to that entry's mode. It reports false when
// no such entry exists.
func (m model) seek(step int, keep func(HistoryEntry) bool) (model, bool) {
	for i := m.historyIdx + step; i >= 0 && i < m.history.Len(); i += step {
		entry, err := m.history.Entry(i)
		if err != nil || !keep(entry) {
			continue
		}

		if m.mode != entry.Mode {
			m = m.switchToMode(entry.Mode)
		}

		m.historyIdx = i
		m.input.SetValue(entry.Line)
		m.input.SetCursor(len(entry.Line))
		refreshMatches(&m, false)

		return m, true
	}

	return m, false
}

// clearHistoryView leaves history navigation with an empty input.
func (m model) clearHistoryView() model {
	if m.historyIdx < m.history.Len() {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		refreshMatches(&m, false)
	}

	return m
}

// historyCtrl navigates command history only. The first step remembers the
// current mode and input, which are restored when history runs out.
func (m model) historyCtrl(step int) model {
	if !m.altNavActive {
		m.altNavActive = true
		m.altNavOrigMode = m.mode
		m.altNavOrigText = m.input.Value()
		m.altNavOrigCursor = m.input.Position()
		m = m.switchToMode(modeCtrl)
	}

	next, ok := m.seek(step, func(e HistoryEntry) bool { return e.Mode == modeCtrl })
	if ok {
		return next
	}

	m.altNavActive = false
	m = m.switchToMode(m.altNavOrigMode)
	m.input.SetValue(m.altNavOrigText)
	m.input.SetCursor(m.altNavOrigCursor)
	m.historyIdx = m.history.Len()
	refreshMatches(&m, false)

	return m
}

// switchToMode saves the input of the current mode and restores the input
// last entered in mode.
func (m model) switchToMode(mode inputMode) model {
	if mode == m.mode {
		return m
	}

	m.saved[m.mode].text = m.input.Value()
	m.saved[m.mode].cursor = m.input.Position()

	m.mode = mode
	if mode == modeExpand {
		m.input.Prompt = promptStyle.Render(expandPrompt)
	} else {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
	}

	m.input.SetValue(m.saved[mode].text)
	m.input.SetCursor(m.saved[mode].cursor)
	refreshMatches(&m, false)

	return m
}
