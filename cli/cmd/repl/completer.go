package repl

import (
	"maps"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/haiku/lang"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "list", "data", "edit", "load", "clear", "quit"}

// tagNames are the element names offered at the start of a token.
var tagNames = []string{
	"a", "abbr", "article", "aside", "b", "blockquote", "br", "button",
	"caption", "code", "dd", "div", "dl", "dt", "em", "fieldset", "figure",
	"footer", "form", "h1", "h2", "h3", "h4", "h5", "h6", "header", "hr", "i",
	"img", "input", "label", "legend", "li", "main", "nav", "ol", "option",
	"p", "pre", "section", "select", "small", "span", "strong", "sub", "sup",
	"table", "tbody", "td", "textarea", "tfoot", "th", "thead", "tr", "ul",
}

// isWordBoundary reports whether r delimits a completion word. Hyphens and
// underscores stay inside words since ids and field names use them.
func isWordBoundary(r rune) bool {
	switch r {
	case '>', '<', '+', ' ', '\t',
		'{', '}', '[', ']', ',', '=',
		'#', '.', '@', '$', ';', '%', ':':
		return true
	}

	return false
}

// wordBounds returns the word at cursor and its byte offsets in input. The
// word is empty when the cursor sits on a boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(cursor, len(input))

	start = cursor
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor
	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// wordContext classifies what the word at start completes to.
type wordContext int

const (
	contextNone wordContext = iota
	contextTag
	contextTemplate
	contextField
)

// contextAt reports the kind of word starting at start in an expression.
// A word is a template id after a leading '@', a field after '$', and a tag
// name at the start of a token. Words inside text or attribute blocks are
// not completed.
func contextAt(input string, start int) wordContext {
	if start == 0 {
		return contextTag
	}

	if inBlock(input[:start]) {
		if input[start-1] == '$' {
			return contextField
		}

		return contextNone
	}

	switch input[start-1] {
	case '@':
		if strings.TrimSpace(input[:start-1]) == "" {
			return contextTemplate
		}

		return contextNone
	case '$':
		return contextField
	case '>', '<', '+', ' ':
		return contextTag
	default:
		return contextNone
	}
}

// inBlock reports whether prefix ends inside an unclosed text or attribute
// block.
func inBlock(prefix string) bool {
	text := strings.LastIndexByte(prefix, '{') > strings.LastIndexByte(prefix, '}')
	attrs := strings.LastIndexByte(prefix, '[') > strings.LastIndexByte(prefix, ']')

	return text || attrs
}

// candidatesFor returns the completions for a word of kind wc.
func (m model) candidatesFor(wc wordContext) []string {
	switch wc {
	case contextTag:
		return tagNames
	case contextTemplate:
		return m.binder.Registry().TemplateIDs()
	case contextField:
		return fieldNames(m.record)
	default:
		return nil
	}
}

// fieldNames returns the sorted keys of a mapping record.
func fieldNames(record any) []string {
	if !lang.IsMapping(record) {
		return nil
	}

	switch t := lang.Sanitize(record, 0).(type) {
	case lang.Sanitized:
		return slices.Sorted(maps.Keys(t))
	default:
		return nil
	}
}

// computeMatches returns the fuzzy matches for the word at the cursor,
// ranked best first, with the candidate list and word offsets. An empty word
// matches everything after '@' or '$' and nothing elsewhere.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	candidates []string,
	wordStart, wordEnd int,
) {
	input := m.input.Value()

	word, wordStart, wordEnd := wordBounds(input, m.input.Position())

	var wc wordContext

	if m.mode == modeCtrl {
		if word == "" || wordStart > 0 {
			return nil, nil, wordStart, wordEnd
		}

		candidates = ctrlCommands
	} else {
		wc = contextAt(input, wordStart)
		candidates = m.candidatesFor(wc)
	}

	if len(candidates) == 0 {
		return nil, nil, wordStart, wordEnd
	}

	if word == "" {
		if wc != contextTemplate && wc != contextField {
			return nil, nil, wordStart, wordEnd
		}

		matches = make(fuzzy.Matches, len(candidates))
		for i, c := range candidates {
			matches[i] = fuzzy.Match{Str: c, Index: i}
		}

		return matches, candidates, wordStart, wordEnd
	}

	return fuzzy.Find(word, candidates), candidates, wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to
// width. The selected candidate uses the selected style while tabbing.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	ellipsis := hintStyle.Render("...")
	reserve := lipgloss.Width(sep) + lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx)
		w := lipgloss.Width(rendered)

		if i > 0 {
			if i < len(matches)-1 && used+lipgloss.Width(sep)+w+reserve > width {
				b.WriteString(sep + ellipsis)

				break
			}

			b.WriteString(sep)
			used += lipgloss.Width(sep)
		}

		b.WriteString(rendered)
		used += w
	}

	return b.String()
}

// renderCandidate renders one candidate with its matched runes highlighted.
func renderCandidate(match fuzzy.Match, selected bool) string {
	base, highlight := suggestionStyle, matchStyle
	if selected {
		base, highlight = selectedStyle, selectedMatchStyle
	}

	var b strings.Builder

	for i, r := range match.Str {
		if slices.Contains(match.MatchedIndexes, i) {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	return b.String()
}
