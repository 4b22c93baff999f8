package lang

import (
	"reflect"
	"strings"

	"github.com/ardnew/haiku/dom"
)

// SelfToken stands for the whole context value in substituted text.
const SelfToken = "%self"

// Substitute fills placeholders in text from context.
//
// Every "%self" is replaced by [SelfString] of the whole context, provided
// the context is not nil. Every "$name;" is replaced by the context's field
// name: strings and numbers are inserted literally, other values as a
// "(typename)" marker, and absent or nil fields as fallback. A "$" with no
// closing ";" before the next "$" is left as is.
//
// Both placeholder kinds are filled in one scan and inserted values are never
// rescanned. This differs from replacing "%self" first and substituting
// fields over the result: a scalar context whose text holds "$x;" is
// inserted verbatim rather than expanded again, and "$%self;" names the
// field "%self" instead of a field spelled by the context.
func Substitute(text string, context any, fallback string) string {
	if !strings.ContainsAny(text, "$%") {
		return text
	}

	var (
		sb   strings.Builder
		self = context != nil && strings.Contains(text, SelfToken)
	)

	sb.Grow(len(text))

	for pos := 0; pos < len(text); {
		switch {
		case self && strings.HasPrefix(text[pos:], SelfToken):
			sb.WriteString(SelfString(context))
			pos += len(SelfToken)

		case text[pos] == '$':
			name, end, ok := scanPlaceholder(text, pos)
			if !ok {
				sb.WriteByte('$')
				pos++

				continue
			}

			sb.WriteString(fieldString(context, name, fallback))
			pos = end

		default:
			sb.WriteByte(text[pos])
			pos++
		}
	}

	return sb.String()
}

// scanPlaceholder reads "$name;" starting at text[pos] == '$'. It returns the
// name and the index just past ';'.
func scanPlaceholder(text string, pos int) (string, int, bool) {
	rest := text[pos+1:]

	end := strings.IndexAny(rest, "$;")
	if end <= 0 || rest[end] != ';' {
		return "", 0, false
	}

	return rest[:end], pos + 1 + end + 1, true
}

func fieldString(context any, name, fallback string) string {
	v, ok := Field(context, name)
	if !ok || v == nil {
		return fallback
	}

	if isText(v) {
		return dom.ValueString(v)
	}

	return "(" + TypeName(v) + ")"
}

// SelfString formats a whole context value for "%self": scalars as their
// text, structured values as a "(typename)" marker.
func SelfString(v any) string {
	if v == nil || IsMapping(v) || IsSequence(v) {
		return "(" + TypeName(v) + ")"
	}

	if _, ok := v.(Unexpanded); ok {
		return "(" + TypeName(v) + ")"
	}

	return dom.ValueString(v)
}

// isText reports whether v is inserted literally by field substitution.
func isText(v any) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

// TypeName names the kind of v the way placeholders report it.
func TypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case Unexpanded:
		return "unexpanded"
	case bool:
		return "boolean"
	}

	switch {
	case IsMapping(v):
		return "object"
	case IsSequence(v):
		return "array"
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Struct, reflect.Pointer:
		return "object"
	case reflect.Func:
		return "function"
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	default:
		if isText(v) {
			return "number"
		}

		return reflect.TypeOf(v).Kind().String()
	}
}
