package dom

import (
	"strings"

	"github.com/goccy/go-yaml"
	"golang.org/x/net/html"
)

// Dump is a plain structural view of a node, suitable for YAML or JSON
// encoding. Text nodes carry only Text.
type Dump struct {
	Tag      string            `json:"tag,omitempty"      yaml:"tag,omitempty"`
	ID       string            `json:"id,omitempty"       yaml:"id,omitempty"`
	Classes  []string          `json:"classes,omitempty"  yaml:"classes,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty"    yaml:"attrs,omitempty"`
	Text     string            `json:"text,omitempty"     yaml:"text,omitempty"`
	Children []Dump            `json:"children,omitempty" yaml:"children,omitempty"`
}

// DumpNode converts n into a [Dump]. A fragment yields one Dump per child.
func DumpNode(n *html.Node) []Dump {
	if n == nil {
		return nil
	}

	if n.Type == html.DocumentNode {
		return dumpChildren(n)
	}

	if d, ok := dumpOne(n); ok {
		return []Dump{d}
	}

	return nil
}

func dumpChildren(n *html.Node) []Dump {
	var out []Dump

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if d, ok := dumpOne(c); ok {
			out = append(out, d)
		}
	}

	return out
}

func dumpOne(n *html.Node) (Dump, bool) {
	switch n.Type {
	case html.TextNode:
		return Dump{Text: n.Data}, true

	case html.ElementNode:
		d := Dump{Tag: n.Data}

		for _, a := range n.Attr {
			switch a.Key {
			case "id":
				d.ID = a.Val
			case "class":
				d.Classes = strings.Fields(a.Val)
			default:
				if d.Attrs == nil {
					d.Attrs = make(map[string]string)
				}

				d.Attrs[a.Key] = a.Val
			}
		}

		d.Children = dumpChildren(n)

		return d, true

	case html.DocumentNode:
		return Dump{Children: dumpChildren(n)}, true

	default:
		return Dump{}, false
	}
}

// MarshalYAML encodes the structure of n as YAML.
func MarshalYAML(n *html.Node) ([]byte, error) {
	return yaml.MarshalWithOptions(DumpNode(n), yaml.IndentSequence(true))
}
