package pkg

import (
	"errors"
	"log/slog"
	"strings"
)

// Error is an error with an optional wrapped cause and structured logging
// attributes. Packages declare their sentinel errors with [NewError] and
// derive contextual errors from them with [Error.Wrap] and [Error.With];
// derived errors still match their sentinel under [errors.Is].
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
	base  *Error
}

// NewError creates a sentinel Error with the given message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError converts err into an *Error, returning it unchanged if it already
// is one.
func WrapError(err error) *Error {
	if err == nil {
		return nil
	}

	var ee *Error
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error formats as "<msg>: <cause>", omitting whichever part is empty.
func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return e == t || (e.base != nil && e.base == t)
}

// Attrs returns the structured attributes attached to e.
func (e *Error) Attrs() []slog.Attr { return e.attrs }

func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap returns a copy of e with err as its cause.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs,
		base:  e.root(),
	}
}

// With returns a copy of e with attrs appended.
func (e *Error) With(attrs ...slog.Attr) *Error {
	merged := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(merged, e.attrs)
	copy(merged[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: merged,
		base:  e.root(),
	}
}

func (e *Error) root() *Error {
	if e.base != nil {
		return e.base
	}

	return e
}
