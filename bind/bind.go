package bind

import (
	"context"
	"log/slog"
	"reflect"
	"strings"

	"github.com/ardnew/haiku/dom"
	"github.com/ardnew/haiku/lang"
	"github.com/ardnew/haiku/log"
)

// Attributes read from a view.
const (
	AttrBinding         = "data-binding"
	AttrValueString     = "data-value-string"
	AttrChildrenBinding = "data-children-binding"
	AttrTemplate        = "data-template"
	AttrTemplateMap     = "data-template-map"
	AttrTemplateContext = "data-template-context"
	AttrChildrenFooter  = "data-children-footer"
)

// Binder fills views with record data using the templates in a [Registry].
type Binder[N comparable] struct {
	exp    *lang.Expander[N]
	tree   dom.Tree[N]
	reg    *Registry
	logger log.Logger
}

// New returns a [Binder] that expands templates from reg with exp and logs
// through exp's logger.
func New[N comparable](exp *lang.Expander[N], reg *Registry) *Binder[N] {
	return &Binder[N]{
		exp:    exp,
		tree:   exp.Tree(),
		reg:    reg,
		logger: exp.Logger(),
	}
}

// Registry returns the registry templates are resolved from.
func (b *Binder[N]) Registry() *Registry { return b.reg }

// Expander returns the expander templates are built with.
func (b *Binder[N]) Expander() *lang.Expander[N] { return b.exp }

// ExpandTemplate expands the template registered under id against data.
func (b *Binder[N]) ExpandTemplate(ctx context.Context, id string, data any) (N, error) {
	body, ok := b.reg.Template(id)
	if !ok {
		var zero N

		return zero, ErrTemplateNotFound.With(slog.String("id", id))
	}

	return b.exp.Expand(ctx, body, data)
}

// BindTemplate expands the template registered under id against record and
// binds the result to the same record.
func (b *Binder[N]) BindTemplate(ctx context.Context, id string, record any) (N, error) {
	root, err := b.ExpandTemplate(ctx, id, record)
	if err != nil {
		return root, err
	}

	return root, b.Bind(ctx, root, record)
}

// Bind fills view from record in place.
//
// Containers marked with [AttrChildrenBinding] are handled first: one
// subtree per element of the named sequence field is expanded from a
// template, bound to that element, and appended, followed by an optional
// footer. Then every node marked with [AttrBinding] outside those generated
// subtrees receives its field's value.
//
// Missing fields and templates are skipped with a log message. The error
// result reports tree failures only.
func (b *Binder[N]) Bind(ctx context.Context, view N, record any) error {
	var zero N
	if view == zero {
		return dom.ErrMissingTarget
	}

	return b.bind(ctx, view, record, make(map[uintptr]struct{}))
}

func (b *Binder[N]) bind(
	ctx context.Context,
	view N,
	record any,
	active map[uintptr]struct{},
) error {
	if id, ok := identity(record); ok {
		if _, seen := active[id]; seen {
			b.logger.WarnContext(ctx, "skipping bind", slog.Any("error", ErrRecordCycle))

			return nil
		}

		active[id] = struct{}{}
		defer delete(active, id)
	}

	generated := make(map[N]struct{})

	for _, c := range b.tree.QueryByAttribute(view, AttrChildrenBinding) {
		if err := b.bindChildren(ctx, c, record, generated, active); err != nil {
			return err
		}
	}

	for _, n := range b.tree.QueryByAttribute(view, AttrBinding) {
		if b.within(n, view, generated) {
			continue
		}

		b.bindValue(ctx, n, record)
	}

	return nil
}

// within reports whether n is a generated node or has one as an ancestor
// below root.
func (b *Binder[N]) within(n, root N, generated map[N]struct{}) bool {
	if len(generated) == 0 {
		return false
	}

	var zero N

	for p := n; p != zero && p != root; p = b.tree.Parent(p) {
		if _, ok := generated[p]; ok {
			return true
		}
	}

	return false
}

func (b *Binder[N]) bindChildren(
	ctx context.Context,
	container N,
	record any,
	generated map[N]struct{},
	active map[uintptr]struct{},
) error {
	field, _ := b.tree.Attribute(container, AttrChildrenBinding)

	value, ok := lang.Field(record, field)
	if items, isSeq := lang.Elements(value); ok && isSeq {
		ambientText, _ := b.tree.Attribute(container, AttrTemplateContext)
		ambient := ParseAmbient(ambientText)

		for i, item := range items {
			body, found := b.template(container, item)
			if !found {
				b.logger.WarnContext(ctx, "skipping child",
					slog.Any("error", ErrTemplateNotFound.With(
						slog.String("field", field),
						slog.Int("index", i),
					)))

				continue
			}

			frag, err := b.exp.Expand(ctx, body, Merge(ambient, item))
			if err != nil {
				return err
			}

			if err := b.bind(ctx, frag, item, active); err != nil {
				return err
			}

			if err := b.adopt(container, frag, generated); err != nil {
				return err
			}
		}
	} else {
		b.logger.DebugContext(ctx, "no sequence to bind",
			slog.String("field", field),
			slog.Bool("present", ok))
	}

	footer, ok := b.tree.Attribute(container, AttrChildrenFooter)
	if !ok || footer == "" {
		return nil
	}

	body, ok := b.reg.Template(footer)
	if !ok {
		b.logger.WarnContext(ctx, "skipping footer",
			slog.Any("error", ErrTemplateNotFound.With(slog.String("id", footer))))

		return nil
	}

	frag, err := b.exp.Expand(ctx, body, record)
	if err != nil {
		return err
	}

	return b.adopt(container, frag, nil)
}

// template resolves the body used for one element of a container.
func (b *Binder[N]) template(container N, item any) (string, bool) {
	if id, ok := b.tree.Attribute(container, AttrTemplate); ok && id != "" {
		return b.reg.Template(id)
	}

	if mapID, ok := b.tree.Attribute(container, AttrTemplateMap); ok && mapID != "" {
		return b.reg.ResolveByMap(mapID, item)
	}

	return "", false
}

// adopt moves the children of frag to the end of parent, recording them in
// generated when it is not nil.
func (b *Binder[N]) adopt(parent, frag N, generated map[N]struct{}) error {
	var zero N

	for c := b.tree.FirstChild(frag); c != zero; c = b.tree.FirstChild(frag) {
		if err := b.tree.AppendChild(parent, c); err != nil {
			return err
		}

		if generated != nil {
			generated[c] = struct{}{}
		}
	}

	return nil
}

func (b *Binder[N]) bindValue(ctx context.Context, n N, record any) {
	name, _ := b.tree.Attribute(n, AttrBinding)

	var value any

	if name == lang.SelfToken {
		switch vs, ok := b.tree.Attribute(n, AttrValueString); {
		case ok:
			body := "span{" + strings.ReplaceAll(vs, "%", "$") + "}"

			span, err := b.exp.Create(ctx, body, record)
			if err != nil {
				b.logger.WarnContext(ctx, "skipping value string",
					slog.String("template", vs), slog.Any("error", err))

				return
			}

			value = b.tree.Text(span)

		case record != nil && !lang.IsMapping(record):
			value = record

		default:
			return
		}
	} else {
		// A present null clears the node; only absent fields are skipped.
		v, ok := lang.Field(record, name)
		if !ok {
			return
		}

		value = v
	}

	if err := b.tree.SetValue(n, value); err != nil {
		b.logger.WarnContext(ctx, "skipping binding",
			slog.String("field", name), slog.Any("error", err))
	}
}

// identity returns an address for records that can contain themselves.
func identity(record any) (uintptr, bool) {
	rv := reflect.ValueOf(record)

	switch rv.Kind() {
	case reflect.Map, reflect.Pointer:
		if rv.IsNil() {
			return 0, false
		}

		return rv.Pointer(), true

	case reflect.Slice:
		if rv.Len() == 0 {
			return 0, false
		}

		return rv.Pointer(), true

	default:
		return 0, false
	}
}
