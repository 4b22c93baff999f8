package lang

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseSpec(t *testing.T) {
	tests := []struct {
		token string
		want  Spec
	}{
		{"div", Spec{Tag: "div"}},
		{"  h3  ", Spec{Tag: "h3"}},
		{"h7", Spec{Tag: "h"}},
		{"div#page", Spec{Tag: "div", ID: "page"}},
		{"p#a#b", Spec{Tag: "p", ID: "a"}},
		{"li.a.b.a", Spec{Tag: "li", Classes: []string{"a", "b", "a"}}},
		{"i.-neg", Spec{Tag: "i", Classes: []string{"-neg"}}},
		{"span.9x.ok", Spec{Tag: "span", Classes: []string{"ok"}}},
		{
			"a[href=/x,title=A=B]",
			Spec{Tag: "a", Attrs: []Attr{{"href", "/x"}, {"title", "A=B"}}},
		},
		{
			"a[href=/x.y#z,bare]",
			Spec{Tag: "a", Attrs: []Attr{{"href", "/x.y#z"}}},
		},
		{
			"a[k=1][k=2]",
			Spec{Tag: "a", Attrs: []Attr{{"k", "1"}}},
		},
		{"p{Hello .world #x}", Spec{Tag: "p", Text: "Hello .world #x", HasText: true}},
		{"{bare}", Spec{Text: "bare", HasText: true}},
		{"{}", Spec{}},
		{"{}p", Spec{}},
		{"{x}p", Spec{Text: "x", HasText: true}},
		{"p{}{y}", Spec{Tag: "p", Text: "y", HasText: true}},
		{"li*5", Spec{Tag: "li"}},
		{"#orphan.x", Spec{ID: "orphan", Classes: []string{"x"}}},
		{"", Spec{}},
		{
			"input#q.wide[type=text,name=q]{hint}",
			Spec{
				Tag:     "input",
				ID:      "q",
				Classes: []string{"wide"},
				Attrs:   []Attr{{"type", "text"}, {"name", "q"}},
				Text:    "hint",
				HasText: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			t.Parallel()

			if got := ParseSpec(tt.token); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseSpec(%q) = %+v, want %+v", tt.token, got, tt.want)
			}
		})
	}
}

func TestSpec_Kind(t *testing.T) {
	tests := []struct {
		token string
		want  Kind
	}{
		{"div", KindElement},
		{"{t}", KindText},
		{"#id", KindNone},
		{"", KindNone},
	}

	for _, tt := range tests {
		if got := ParseSpec(tt.token).Kind(); got != tt.want {
			t.Errorf("ParseSpec(%q).Kind() = %v, want %v", tt.token, got, tt.want)
		}
	}
}

func TestTokenize(t *testing.T) {
	tokens, ops := Tokenize("div#page>div.logo+ul#navigation>li*5>a<p")

	wantTokens := []string{"div#page", "div.logo", "ul#navigation", "li*5", "a", "p"}
	wantOps := []Op{OpDescend, OpSibling, OpDescend, OpDescend, OpAscend}

	if !reflect.DeepEqual(tokens, wantTokens) {
		t.Errorf("tokens = %q, want %q", tokens, wantTokens)
	}

	if !reflect.DeepEqual(ops, wantOps) {
		t.Errorf("ops = %q, want %q", ops, wantOps)
	}
}

func TestTokenize_Empty(t *testing.T) {
	tokens, ops := Tokenize("")
	if len(tokens) != 1 || tokens[0] != "" || len(ops) != 0 {
		t.Errorf("Tokenize(\"\") = %q, %q", tokens, ops)
	}
}

func FuzzParseSpec(f *testing.F) {
	for _, seed := range []string{
		"div", "a[href=/x,title=A=B]", "p{x}", "li.a.b#c", "{", "[", "#.", "h6{}",
	} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, token string) {
		s := ParseSpec(token)

		if s.Tag != "" && !strings.HasPrefix(strings.TrimSpace(token), s.Tag) {
			t.Errorf("tag %q is not a prefix of %q", s.Tag, token)
		}

		if s.HasText && s.Text == "" {
			t.Errorf("empty text block accepted in %q", token)
		}

		for _, a := range s.Attrs {
			if a.Key == "" {
				t.Errorf("empty attribute key in %q", token)
			}
		}

		tokens, ops := Tokenize(token)
		if len(tokens) != len(ops)+1 {
			t.Errorf("Tokenize(%q): %d tokens for %d ops", token, len(tokens), len(ops))
		}
	})
}
