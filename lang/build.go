package lang

import (
	"html"

	"github.com/ardnew/haiku/dom"
)

// Build creates the node described by s in t. It returns false when s
// describes nothing.
//
// Text and attribute values are unescaped and entity-decoded, so data that
// was sanitized into "&lt;b&gt;" shows as the literal text "<b>".
func Build[N comparable](t dom.Tree[N], s Spec) (N, bool, error) {
	var zero N

	switch s.Kind() {
	case KindText:
		return t.CreateText(decode(s.Text)), true, nil

	case KindElement:
		el := t.CreateElement(s.Tag)

		for _, a := range s.Attrs {
			t.SetAttribute(el, a.Key, decode(a.Value))
		}

		if s.ID != "" {
			t.SetAttribute(el, "id", s.ID)
		}

		for _, c := range s.Classes {
			t.AddClass(el, c)
		}

		if s.HasText {
			if err := t.AppendChild(el, t.CreateText(decode(s.Text))); err != nil {
				return zero, false, err
			}
		}

		return el, true, nil

	default:
		return zero, false, nil
	}
}

func decode(s string) string {
	return html.UnescapeString(Unescape(s))
}
