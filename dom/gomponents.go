package dom

import (
	"golang.org/x/net/html"
	g "maragu.dev/gomponents"
)

// Component converts n into a gomponents node so expanded markup can be
// composed with other components. Comments and doctypes are dropped.
func Component(n *html.Node) g.Node {
	if n == nil {
		return nil
	}

	switch n.Type {
	case html.TextNode:
		return g.Text(n.Data)

	case html.ElementNode:
		children := make([]g.Node, 0, len(n.Attr))

		for _, a := range n.Attr {
			if a.Val == "" && isBooleanAttr(a.Key) {
				children = append(children, g.Attr(a.Key))
			} else {
				children = append(children, g.Attr(a.Key, a.Val))
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if cn := Component(c); cn != nil {
				children = append(children, cn)
			}
		}

		return g.El(n.Data, children...)

	case html.DocumentNode:
		var group g.Group

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if cn := Component(c); cn != nil {
				group = append(group, cn)
			}
		}

		return group

	default:
		return nil
	}
}

func isBooleanAttr(key string) bool {
	switch key {
	case "checked", "selected", "disabled", "readonly", "required",
		"multiple", "hidden", "autofocus":
		return true
	}

	return false
}
