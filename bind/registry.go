package bind

import (
	"log/slog"
	"maps"
	"reflect"
	"slices"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/ardnew/haiku/dom"
	"github.com/ardnew/haiku/lang"
	"github.com/ardnew/haiku/pkg"
)

var (
	ErrDuplicateTemplate = pkg.NewError("duplicate template")
	ErrInvalidSelector   = pkg.NewError("invalid conditional selector")
	ErrTemplateNotFound  = pkg.NewError("template not found")
	ErrRecordCycle       = pkg.NewError("record refers to itself")
	ErrCatalog           = pkg.NewError("read template catalog")
)

// ConditionalMap selects a template by a record's field value.
//
// The selector is Field, or Expr when set: an expr-lang expression
// evaluated with the record's fields as variables (and the whole record as
// "self"). The selector's value, formatted as text, is looked up in Values
// to get a template id; Default names the template used otherwise.
type ConditionalMap struct {
	Field   string            `json:"field,omitempty"   yaml:"field,omitempty"`
	Values  map[string]string `json:"values,omitempty"  yaml:"values,omitempty"`
	Default string            `json:"default,omitempty" yaml:"default,omitempty"`
	Expr    string            `json:"expr,omitempty"    yaml:"expr,omitempty"`

	program *vm.Program
}

// Registry holds named templates and conditional maps. It is safe for
// concurrent use.
//
// Registering a template id twice is an error. Registering a conditional
// map id twice keeps the first map.
type Registry struct {
	mu           sync.RWMutex
	templates    map[string]string
	conditionals map[string]ConditionalMap
}

// NewRegistry returns an empty [Registry].
func NewRegistry() *Registry {
	return &Registry{
		templates:    make(map[string]string),
		conditionals: make(map[string]ConditionalMap),
	}
}

// AddTemplate registers body under id.
func (r *Registry) AddTemplate(id, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.templates[id]; ok {
		return ErrDuplicateTemplate.With(slog.String("id", id))
	}

	r.templates[id] = body

	return nil
}

// Template returns the body registered under id.
func (r *Registry) Template(id string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	body, ok := r.templates[id]

	return body, ok
}

// TemplateIDs returns the registered template ids in sorted order.
func (r *Registry) TemplateIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Sorted(maps.Keys(r.templates))
}

// AddConditionalsMap registers m under id unless id is already taken, and
// reports whether m was stored. An Expr that does not compile is an error.
func (r *Registry) AddConditionalsMap(id string, m ConditionalMap) (bool, error) {
	if m.Expr != "" {
		program, err := expr.Compile(m.Expr, expr.AllowUndefinedVariables())
		if err != nil {
			return false, ErrInvalidSelector.Wrap(err).
				With(slog.String("id", id), slog.String("expr", m.Expr))
		}

		m.program = program
	}

	m.Values = maps.Clone(m.Values)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conditionals[id]; ok {
		return false, nil
	}

	r.conditionals[id] = m

	return true, nil
}

// ConditionalsMap returns the map registered under id.
func (r *Registry) ConditionalsMap(id string) (ConditionalMap, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.conditionals[id]

	return m, ok
}

// ConditionalIDs returns the registered conditional map ids in sorted order.
func (r *Registry) ConditionalIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Sorted(maps.Keys(r.conditionals))
}

// ResolveByMap picks a template body for record using the conditional map
// mapID. The template named for the selector's value wins, then the
// default template. It reports false when neither is registered.
func (r *Registry) ResolveByMap(mapID string, record any) (string, bool) {
	m, ok := r.ConditionalsMap(mapID)
	if !ok {
		return "", false
	}

	if key, ok := m.selector(record); ok {
		if id, ok := m.Values[key]; ok {
			if body, ok := r.Template(id); ok {
				return body, true
			}
		}
	}

	if m.Default == "" {
		return "", false
	}

	return r.Template(m.Default)
}

// selector returns the text of the record's selecting value.
func (m ConditionalMap) selector(record any) (string, bool) {
	if m.program != nil {
		out, err := expr.Run(m.program, exprEnv(record))
		if err != nil || out == nil {
			return "", false
		}

		return dom.ValueString(out), true
	}

	v, ok := lang.Field(record, m.Field)
	if !ok || v == nil {
		return "", false
	}

	return dom.ValueString(v), true
}

// exprEnv exposes a record to expr-lang: a mapping's fields become
// variables, and "self" is the record itself unless a field shadows it.
func exprEnv(record any) map[string]any {
	env := make(map[string]any)

	switch t := record.(type) {
	case map[string]any:
		maps.Copy(env, t)
	case lang.Sanitized:
		maps.Copy(env, t)
	default:
		if rv := reflect.ValueOf(record); rv.Kind() == reflect.Map {
			iter := rv.MapRange()
			for iter.Next() {
				env[dom.ValueString(iter.Key().Interface())] = iter.Value().Interface()
			}
		}
	}

	if _, ok := env["self"]; !ok {
		env["self"] = record
	}

	return env
}
