package repl

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/haiku/lang"
)

var (
	hintTagStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	hintPartStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	hintValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// tokenAt returns the expression token containing cursor.
func tokenAt(input string, cursor int) string {
	cursor = min(max(cursor, 0), len(input))

	start := strings.LastIndexAny(input[:cursor], "<>+") + 1

	end := strings.IndexAny(input[cursor:], "<>+")
	if end < 0 {
		end = len(input)
	} else {
		end += cursor
	}

	return input[start:end]
}

// describeSpec summarizes what a token builds, unstyled.
func describeSpec(s lang.Spec) []string {
	var parts []string

	switch s.Kind() {
	case lang.KindNone:
		return nil
	case lang.KindElement:
		parts = append(parts, "<"+s.Tag+">")
	case lang.KindText:
		parts = append(parts, "text")
	}

	if s.ID != "" {
		parts = append(parts, "id="+s.ID)
	}

	if len(s.Classes) > 0 {
		parts = append(parts, "class="+strings.Join(s.Classes, " "))
	}

	for _, a := range s.Attrs {
		parts = append(parts, a.Key+"="+lang.Unescape(a.Value))
	}

	if s.HasText {
		parts = append(parts, "{"+lang.Unescape(s.Text)+"}")
	}

	return parts
}

// renderSpecHint renders the spec of the token under the cursor, or "" when
// the token builds nothing.
func renderSpecHint(input string, cursor int) string {
	parts := describeSpec(lang.ParseSpec(tokenAt(input, cursor)))
	if len(parts) == 0 {
		return ""
	}

	var b strings.Builder

	b.WriteString(hintTagStyle.Render(parts[0]))

	for _, p := range parts[1:] {
		b.WriteString(" ")

		if k, v, ok := strings.Cut(p, "="); ok {
			b.WriteString(hintPartStyle.Render(k + "="))
			b.WriteString(hintValueStyle.Render(v))
		} else {
			b.WriteString(hintValueStyle.Render(p))
		}
	}

	return b.String()
}
