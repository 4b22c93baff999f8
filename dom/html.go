package dom

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTML is a [Tree] over [html.Node]. Fragments are [html.DocumentNode]
// values, which [html.Render] writes as their children only.
type HTML struct{}

var _ Tree[*html.Node] = HTML{}

func (HTML) CreateFragment() *html.Node {
	return &html.Node{Type: html.DocumentNode}
}

func (HTML) CreateElement(tag string) *html.Node {
	tag = strings.ToLower(tag)

	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
}

func (HTML) CreateText(text string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}

func (HTML) SetAttribute(n *html.Node, key, value string) {
	if n == nil || n.Type != html.ElementNode {
		return
	}

	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return
	}

	for i := range n.Attr {
		if n.Attr[i].Namespace == "" && n.Attr[i].Key == key {
			n.Attr[i].Val = value

			return
		}
	}

	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: value})
}

func (HTML) Attribute(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}

	key = strings.ToLower(key)

	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}

	return "", false
}

func (h HTML) AddClass(n *html.Node, class string) {
	if class == "" {
		return
	}

	if list, ok := h.Attribute(n, "class"); ok && list != "" {
		class = list + " " + class
	}

	h.SetAttribute(n, "class", class)
}

func removeAttribute(n *html.Node, key string) {
	kept := n.Attr[:0]

	for _, a := range n.Attr {
		if a.Namespace != "" || a.Key != key {
			kept = append(kept, a)
		}
	}

	n.Attr = kept
}

func (HTML) AppendChild(parent, child *html.Node) error {
	if parent == nil || child == nil {
		return ErrMissingTarget
	}

	switch parent.Type {
	case html.TextNode, html.CommentNode, html.DoctypeNode:
		return ErrInvalidParent.With(slog.String("parent", parent.Data))
	}

	for p := parent; p != nil; p = p.Parent {
		if p == child {
			return ErrInvalidParent.With(slog.String("reason", "cycle"))
		}
	}

	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}

	parent.AppendChild(child)

	return nil
}

func (HTML) Parent(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}

	return n.Parent
}

func (HTML) FirstChild(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}

	return n.FirstChild
}

func (HTML) IsText(n *html.Node) bool {
	return n != nil && n.Type == html.TextNode
}

func (h HTML) QueryByAttribute(root *html.Node, key string) []*html.Node {
	var found []*html.Node

	walk(root, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}

		if _, ok := h.Attribute(n, key); ok {
			found = append(found, n)
		}
	})

	return found
}

func walk(n *html.Node, visit func(*html.Node)) {
	if n == nil {
		return
	}

	visit(n)

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

func (h HTML) SetValue(n *html.Node, v any) error {
	if n == nil {
		return ErrMissingTarget
	}

	if n.Type == html.TextNode {
		n.Data = ValueString(v)

		return nil
	}

	switch n.DataAtom {
	case atom.Input:
		kind, _ := h.Attribute(n, "type")

		switch strings.ToLower(kind) {
		case "checkbox", "radio":
			if Truthy(v) {
				h.SetAttribute(n, "checked", "")
			} else {
				removeAttribute(n, "checked")
			}
		default:
			h.SetAttribute(n, "value", ValueString(v))
		}

	case atom.Select:
		want := ValueString(v)

		walk(n, func(o *html.Node) {
			if o.DataAtom != atom.Option {
				return
			}

			val, ok := h.Attribute(o, "value")
			if !ok {
				val = strings.TrimSpace(h.Text(o))
			}

			if val == want {
				h.SetAttribute(o, "selected", "")
			} else {
				removeAttribute(o, "selected")
			}
		})

	default:
		h.replaceChildren(n, ValueString(v))
	}

	return nil
}

func (h HTML) replaceChildren(n *html.Node, text string) {
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
	}

	n.AppendChild(h.CreateText(text))
}

func (HTML) Text(n *html.Node) string {
	var sb strings.Builder

	walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	})

	return sb.String()
}

func (HTML) Render(w io.Writer, n *html.Node) error {
	if n == nil {
		return ErrMissingTarget
	}

	if err := html.Render(w, n); err != nil {
		return ErrRender.Wrap(err)
	}

	return nil
}

// RenderString renders n and returns the markup.
func (h HTML) RenderString(n *html.Node) (string, error) {
	var buf bytes.Buffer

	if err := h.Render(&buf, n); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// Parse reads a view. Input that looks like a complete document is parsed
// as one; anything else is parsed as a body fragment and returned inside a
// fragment node.
func Parse(r io.Reader) (*html.Node, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, ErrParse.Wrap(err)
	}

	head := strings.ToLower(string(bytes.TrimSpace(src[:min(len(src), 512)])))
	if strings.HasPrefix(head, "<!doctype") || strings.HasPrefix(head, "<html") {
		doc, err := html.Parse(bytes.NewReader(src))
		if err != nil {
			return nil, ErrParse.Wrap(err)
		}

		return doc, nil
	}

	return ParseFragment(bytes.NewReader(src))
}

// ParseFragment parses r as the content of a body element.
func ParseFragment(r io.Reader) (*html.Node, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}

	nodes, err := html.ParseFragment(r, body)
	if err != nil {
		return nil, ErrParse.Wrap(err)
	}

	frag := HTML{}.CreateFragment()
	for _, n := range nodes {
		frag.AppendChild(n)
	}

	return frag, nil
}

// ValueString formats a bound value for display. Whole floats print without
// a fractional part.
func ValueString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case interface{ String() string }:
		return t.String()
	default:
		return formatReflect(v)
	}
}

// Truthy reports whether v turns a checkbox on.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "", "0", "false", "off", "no":
			return false
		}

		return true
	default:
		s := ValueString(v)

		return s != "" && s != "0"
	}
}

func formatReflect(v any) string {
	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
