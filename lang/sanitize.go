package lang

import (
	"reflect"

	"github.com/ardnew/haiku/dom"
)

// DefaultDepth is how many levels of mappings [Sanitize] descends into
// during expansion: one level of field lookup.
const DefaultDepth = 1

// Sanitized is a mapping that has already been through [Sanitize].
// Sanitize returns values of this type unchanged.
type Sanitized map[string]any

// Escaped is a string that has already been through [Sanitize]. Sanitize
// returns values of this type unchanged.
type Escaped string

// String returns the escaped text.
func (e Escaped) String() string { return string(e) }

// Unexpanded replaces every value of a mapping found below the depth limit.
type Unexpanded struct{}

// Sanitize returns a copy of v that is safe to interpolate into an
// expression. Every string is stripped of markup and escaped; mappings
// become [Sanitized], and mappings reached after depth levels have each of
// their values replaced by [Unexpanded]. Sequences do not count toward the
// depth.
//
// Mappings and sequences of any concrete Go type are normalized to
// [Sanitized] and []any. Other values are returned as is.
func Sanitize(v any, depth int) any {
	switch t := v.(type) {
	case nil:
		return nil

	case Sanitized, Escaped:
		return t

	case string:
		return Escaped(Escape(StripHTML(t)))

	case map[string]any:
		out := make(Sanitized, len(t))
		for k, e := range t {
			out[k] = sanitizeField(e, depth)
		}

		return out

	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Sanitize(e, depth)
		}

		return out

	case bool, int, int64, uint64, float64, Unexpanded:
		return t
	}

	return sanitizeReflect(reflect.ValueOf(v), depth)
}

func sanitizeField(v any, depth int) any {
	if depth > 0 {
		return Sanitize(v, depth-1)
	}

	return Unexpanded{}
}

func sanitizeReflect(rv reflect.Value, depth int) any {
	switch rv.Kind() {
	case reflect.Map:
		out := make(Sanitized, rv.Len())

		iter := rv.MapRange()
		for iter.Next() {
			out[dom.ValueString(iter.Key().Interface())] = sanitizeField(
				iter.Value().Interface(), depth,
			)
		}

		return out

	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil
		}

		out := make([]any, rv.Len())
		for i := range rv.Len() {
			out[i] = Sanitize(rv.Index(i).Interface(), depth)
		}

		return out

	case reflect.String:
		return Escaped(Escape(StripHTML(rv.String())))

	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}

		return Sanitize(rv.Elem().Interface(), depth)

	default:
		return rv.Interface()
	}
}

// IsMapping reports whether v is a string-keyed mapping after
// normalization.
func IsMapping(v any) bool {
	switch v.(type) {
	case Sanitized, map[string]any:
		return true
	case nil:
		return false
	}

	return reflect.ValueOf(v).Kind() == reflect.Map
}

// IsSequence reports whether v is sequence-like. Strings and byte slices
// are not.
func IsSequence(v any) bool {
	switch v.(type) {
	case []any:
		return true
	case nil, string, []byte:
		return false
	}

	k := reflect.ValueOf(v).Kind()

	return k == reflect.Slice || k == reflect.Array
}

// Field returns the value stored under key when v is a mapping.
func Field(v any, key string) (any, bool) {
	switch t := v.(type) {
	case Sanitized:
		e, ok := t[key]

		return e, ok
	case map[string]any:
		e, ok := t[key]

		return e, ok
	case nil:
		return nil, false
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}

	e := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
	if !e.IsValid() {
		return nil, false
	}

	return e.Interface(), true
}

// Elements returns the items of a sequence-like v.
func Elements(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case nil, string, []byte:
		return nil, false
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}

	out := make([]any, rv.Len())
	for i := range rv.Len() {
		out[i] = rv.Index(i).Interface()
	}

	return out, true
}
