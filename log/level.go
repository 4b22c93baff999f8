package log

import (
	"iter"
	"log/slog"
	"strings"
)

// Level is the severity of a log message.
type Level slog.Level

// Log levels, including a trace level below [slog.LevelDebug].
const (
	LevelTrace = Level(slog.LevelDebug - 4)
	LevelDebug = Level(slog.LevelDebug)
	LevelInfo  = Level(slog.LevelInfo)
	LevelWarn  = Level(slog.LevelWarn)
	LevelError = Level(slog.LevelError)
)

// DefaultLevel is used when a level name cannot be parsed.
const DefaultLevel = LevelInfo

var levelNames = [...]struct {
	level Level
	name  string
}{
	{LevelTrace, "trace"},
	{LevelDebug, "debug"},
	{LevelInfo, "info"},
	{LevelWarn, "warn"},
	{LevelError, "error"},
}

// String returns the lowercase name of l, or slog's offset notation for
// levels between the named ones.
func (l Level) String() string {
	for _, n := range levelNames {
		if n.level == l {
			return n.name
		}
	}

	return strings.ToLower(slog.Level(l).String())
}

// Levels yields the name of every named level in ascending severity.
func Levels() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, n := range levelNames {
			if !yield(n.name) {
				return
			}
		}
	}
}

// ParseLevel returns the level named by s, ignoring case and surrounding
// space. Besides the names yielded by [Levels], it accepts slog's offset
// notation such as "INFO+2". Anything else yields [DefaultLevel].
func ParseLevel(s string) Level {
	s = strings.TrimSpace(s)

	for _, n := range levelNames {
		if strings.EqualFold(s, n.name) {
			return n.level
		}
	}

	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return DefaultLevel
	}

	return Level(l)
}

// Format is the encoding of log records.
type Format int

// Log formats.
const (
	FormatText Format = iota
	FormatJSON
)

// DefaultFormat is used when a format name cannot be parsed.
const DefaultFormat = FormatJSON

var formatNames = map[Format]string{
	FormatJSON: "json",
	FormatText: "text",
}

// String returns the name of f.
func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}

	return "unknown"
}

// Formats yields the name of every format, [DefaultFormat] first.
func Formats() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, f := range []Format{FormatJSON, FormatText} {
			if !yield(f.String()) {
				return
			}
		}
	}
}

// ParseFormat returns the format named by s, or [DefaultFormat].
func ParseFormat(s string) Format {
	s = strings.TrimSpace(s)

	for f, name := range formatNames {
		if strings.EqualFold(s, name) {
			return f
		}
	}

	return DefaultFormat
}
