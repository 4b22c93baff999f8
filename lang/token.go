package lang

import (
	"strings"
)

// Kind classifies the node a [Spec] produces.
type Kind int

const (
	KindNone    Kind = iota // none
	KindElement             // element
	KindText                // text
)

func (k Kind) String() string {
	switch k {
	case KindElement:
		return "element"
	case KindText:
		return "text"
	default:
		return "none"
	}
}

// Attr is one key/value pair from a token's attribute block.
type Attr struct {
	Key   string
	Value string
}

// Spec is the parsed form of one token. Text and attribute values are still
// escaped; the builder unescapes them.
type Spec struct {
	Tag     string
	ID      string
	Classes []string
	Attrs   []Attr
	Text    string
	HasText bool
}

// Kind reports what s builds: an element when it has a tag, a text node when
// it has only text, and nothing otherwise.
func (s Spec) Kind() Kind {
	switch {
	case s.Tag != "":
		return KindElement
	case s.HasText:
		return KindText
	default:
		return KindNone
	}
}

// ParseSpec parses one token.
//
// The tag is read from the start of the trimmed token. The first text block
// is then cut out of the token, followed by the first attribute block, so
// neither can be mistaken for an id or class. Of the remainder, the first
// "#name" is the id and every ".name" is a class.
func ParseSpec(token string) Spec {
	token = strings.TrimSpace(token)

	var s Spec

	s.Tag = token[:scanTag(token)]

	rest := token

	if i, j, ok := findText(rest); ok {
		s.Text, s.HasText = rest[i+1:j-1], true
		rest = rest[:i] + rest[j:]
	}

	if i, j, ok := findAttrs(rest); ok {
		s.Attrs = parseAttrs(rest[i+1 : j-1])
		rest = rest[:i] + rest[j:]
	}

	s.ID = scanID(rest)
	s.Classes = scanClasses(rest)

	return s
}

// scanTag returns the length of the leading letters[1-6]? run.
func scanTag(s string) int {
	n := 0
	for n < len(s) && isLetter(s[n]) {
		n++
	}

	if n > 0 && n < len(s) && s[n] >= '1' && s[n] <= '6' {
		n++
	}

	return n
}

// findText locates the first "{...}" holding at least one character. It
// returns the bounds of the whole block.
func findText(s string) (int, int, bool) {
	for i := 0; i < len(s); i++ {
		if s[i] != '{' {
			continue
		}

		end := strings.IndexByte(s[i+1:], '}')
		if end < 0 {
			return 0, 0, false
		}

		if end > 0 {
			return i, i + 1 + end + 1, true
		}
	}

	return 0, 0, false
}

// findAttrs locates the first "[...]".
func findAttrs(s string) (int, int, bool) {
	i := strings.IndexByte(s, '[')
	if i < 0 {
		return 0, 0, false
	}

	end := strings.IndexByte(s[i+1:], ']')
	if end < 0 {
		return 0, 0, false
	}

	return i, i + 1 + end + 1, true
}

// parseAttrs splits "k=v,k=v". An entry with several '=' keeps everything
// after the first as its value; an entry with none is dropped.
func parseAttrs(body string) []Attr {
	var attrs []Attr

	for entry := range strings.SplitSeq(body, ",") {
		key, value, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}

		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}

		attrs = append(attrs, Attr{Key: key, Value: value})
	}

	return attrs
}

func scanID(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] != '#' {
			continue
		}

		if end := scanName(s, i+1, false); end > i+1 {
			return s[i+1 : end]
		}
	}

	return ""
}

func scanClasses(s string) []string {
	var classes []string

	for i := 0; i < len(s); {
		if s[i] == '.' {
			if end := scanName(s, i+1, true); end > i+1 {
				classes = append(classes, s[i+1:end])
				i = end

				continue
			}
		}

		i++
	}

	return classes
}

// scanName matches -?[_a-zA-Z][_a-zA-Z0-9-]* at s[start:], the leading dash
// allowed only when dash is set. It returns the end index, or start when
// nothing matched.
func scanName(s string, start int, dash bool) int {
	i := start
	if dash && i < len(s) && s[i] == '-' {
		i++
	}

	if i >= len(s) || !(isLetter(s[i]) || s[i] == '_') {
		return start
	}

	for i++; i < len(s) && isNameByte(s[i]); i++ {
	}

	return i
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isNameByte(b byte) bool {
	return isLetter(b) || (b >= '0' && b <= '9') || b == '_' || b == '-'
}

// Op is a positional operator.
type Op byte

const (
	OpDescend Op = '>'
	OpAscend  Op = '<'
	OpSibling Op = '+'
)

// Tokenize splits an expression on positional operators. There is always one
// more token than operator; ops[i] follows tokens[i].
func Tokenize(expression string) (tokens []string, ops []Op) {
	start := 0

	for i := 0; i < len(expression); i++ {
		switch expression[i] {
		case '>', '<', '+':
			tokens = append(tokens, expression[start:i])
			ops = append(ops, Op(expression[i]))
			start = i + 1
		}
	}

	return append(tokens, expression[start:]), ops
}
