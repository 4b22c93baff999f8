package log

import (
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode"
)

// DefaultTimeLayout is the timestamp layout of a new [Logger].
const DefaultTimeLayout = time.RFC3339

// Option changes one setting of a [Logger] configuration.
type Option func(config) config

// config is the state a handler is built from. The mutex is shared by the
// copies held in one Logger and replaced whenever a new Logger is derived.
type config struct {
	mutex  *sync.RWMutex
	output io.Writer
	stamp  func(time.Time) string
	level  Level
	format Format
	caller bool
	pretty bool
}

func makeConfig(w io.Writer, opts ...Option) config {
	return config{mutex: new(sync.RWMutex)}.with(WithDefaults(w)).with(opts...)
}

// clone returns a copy of c with its own mutex and opts applied.
func (c config) clone(opts ...Option) config {
	c.mutex = new(sync.RWMutex)

	return c.with(opts...)
}

func (c config) with(opts ...Option) config {
	for _, opt := range opts {
		c = opt(c)
	}

	return c
}

// replaceAttr formats timestamps with the configured layout, dropping them
// when the layout is empty, and names the trace level.
func (c config) replaceAttr(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.TimeKey:
		t, ok := a.Value.Any().(time.Time)
		if !ok {
			break
		}

		s := c.stamp(t)
		if s == "" {
			return slog.Attr{}
		}

		a.Value = slog.StringValue(s)

	case slog.LevelKey:
		if l, ok := a.Value.Any().(slog.Level); ok {
			a.Value = slog.StringValue(strings.ToUpper(Level(l).String()))
		}
	}

	return a
}

func (c config) handler() slog.Handler {
	opts := &slog.HandlerOptions{
		AddSource:   c.caller,
		Level:       slog.Level(c.level),
		ReplaceAttr: c.replaceAttr,
	}

	switch {
	case c.format == FormatJSON:
		return slog.NewJSONHandler(c.output, opts)
	case c.format == FormatText && c.pretty:
		return newPrettyTextHandler(c.output, opts)
	case c.format == FormatText:
		return slog.NewTextHandler(c.output, opts)
	default:
		return slog.DiscardHandler
	}
}

// WithDefaults resets every setting: output to w (or [io.Discard] when
// nil), [DefaultTimeLayout], [DefaultLevel], [DefaultFormat], no caller
// and no colour.
func WithDefaults(w io.Writer) Option {
	return func(c config) config {
		c = WithOutput(w)(c)
		c.stamp = timeFormatter(DefaultTimeLayout)
		c.level = DefaultLevel
		c.format = DefaultFormat
		c.caller = false
		c.pretty = false

		return c
	}
}

// WithOutput directs records to w, or discards them when w is nil.
func WithOutput(w io.Writer) Option {
	return func(c config) config {
		if w == nil {
			w = io.Discard
		}

		c.output = w

		return c
	}
}

// WithLevel discards records below level.
func WithLevel(level Level) Option {
	return func(c config) config {
		c.level = level

		return c
	}
}

// WithFormat selects the record encoding.
func WithFormat(format Format) Option {
	return func(c config) config {
		c.format = format

		return c
	}
}

// WithTimeLayout sets the timestamp layout. Names of the [time] package
// layouts are matched ignoring case and punctuation ("RFC-3339", "kitchen");
// "ms" and "us" select the millisecond and microsecond stamps. Other
// layouts are used verbatim, and "" or "none" omits timestamps.
func WithTimeLayout(layout string) Option {
	return func(c config) config {
		c.stamp = timeFormatter(layout)

		return c
	}
}

// WithCaller includes the source location of each call.
func WithCaller(enable bool) Option {
	return func(c config) config {
		c.caller = enable

		return c
	}
}

// WithPretty colourizes text output.
func WithPretty(enable bool) Option {
	return func(c config) config {
		c.pretty = enable

		return c
	}
}

var namedLayouts = map[string]string{
	"ansic":       time.ANSIC,
	"unixdate":    time.UnixDate,
	"rubydate":    time.RubyDate,
	"rfc822":      time.RFC822,
	"rfc822z":     time.RFC822Z,
	"rfc850":      time.RFC850,
	"rfc1123":     time.RFC1123,
	"rfc1123z":    time.RFC1123Z,
	"rfc3339":     time.RFC3339,
	"rfc3339nano": time.RFC3339Nano,
	"kitchen":     time.Kitchen,
	"stamp":       time.Stamp,
	"stampmilli":  time.StampMilli,
	"stampmicro":  time.StampMicro,
	"stampnano":   time.StampNano,
	"datetime":    time.DateTime,
	"dateonly":    time.DateOnly,
	"timeonly":    time.TimeOnly,
	"ms":          time.StampMilli,
	"us":          time.StampMicro,
	"none":        "",
	"":            "",
}

func timeFormatter(layout string) func(time.Time) string {
	key := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}

		return -1
	}, layout)

	if named, ok := namedLayouts[key]; ok {
		layout = named
	}

	if layout == "" {
		return func(time.Time) string { return "" }
	}

	return func(t time.Time) string { return t.Format(layout) }
}
