// Package dom defines the host tree that markup expansion builds into and
// binding writes to, along with an implementation over
// [golang.org/x/net/html].
//
// The expansion and binding engines never touch nodes directly. Every
// creation, mutation, query and serialization goes through a [Tree], so any
// node representation with a comparable handle type can host them.
package dom

import (
	"io"

	"github.com/ardnew/haiku/pkg"
)

var (
	ErrMissingTarget = pkg.NewError("missing target node")
	ErrInvalidParent = pkg.NewError("node cannot have children")
	ErrRender        = pkg.NewError("render markup")
	ErrParse         = pkg.NewError("parse markup")
)

// Tree is the capability set a host node model provides. N is the node
// handle; its zero value stands for "no node".
type Tree[N comparable] interface {
	// CreateFragment returns an empty container whose children are rendered
	// without a wrapping element.
	CreateFragment() N
	CreateElement(tag string) N
	CreateText(text string) N

	SetAttribute(n N, key, value string)
	Attribute(n N, key string) (string, bool)
	// AddClass appends class to the node's class list, keeping duplicates.
	AddClass(n N, class string)

	// AppendChild makes child the last child of parent, first detaching it
	// from any previous parent.
	AppendChild(parent, child N) error
	Parent(n N) N
	FirstChild(n N) N
	IsText(n N) bool

	// QueryByAttribute returns every element at or below root carrying the
	// attribute key, in document order.
	QueryByAttribute(root N, key string) []N

	// SetValue writes v into n the way a form control displays it.
	SetValue(n N, v any) error
	// Text returns the concatenated text content of n.
	Text(n N) string

	// Render writes the markup of n. Fragments render their children only.
	Render(w io.Writer, n N) error
}
