package cli

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/haiku/log"
)

// logFormat configures the logger format as a side effect of parsing, so
// errors reported while Kong is still parsing use it.
type logFormat string

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *logFormat) UnmarshalText(text []byte) error {
	*f = logFormat(text)
	log.Config(log.WithFormat(log.ParseFormat(string(*f))))

	return nil
}

// logLevel configures the logger level as a side effect of parsing, so
// errors reported while Kong is still parsing use it.
type logLevel string

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *logLevel) UnmarshalText(text []byte) error {
	*l = logLevel(text)
	log.Config(log.WithLevel(log.ParseLevel(string(*l))))

	return nil
}

type logConfig struct {
	Level      logLevel  `default:"info"    enum:"trace,debug,info,warn,error" help:"Set log level."`
	Format     logFormat `default:"json"    enum:"json,text"                   help:"Set log format."`
	TimeLayout string    `default:"RFC3339"                                    help:"Set timestamp format."`
	Caller     bool      `default:"false"                                      help:"Include caller information."       negatable:""`
	Pretty     bool      `default:"true"                                       help:"Enable colorized pretty printing." negatable:""`
}

func (*logConfig) vars() kong.Vars {
	return kong.Vars{}
}

func (*logConfig) group() kong.Group {
	var group kong.Group

	group.Key = "log"
	group.Title = "Logging options"

	return group
}

func (f *logConfig) start(ctx context.Context) {
	log.Config(
		log.WithLevel(log.ParseLevel(string(f.Level))),
		log.WithFormat(log.ParseFormat(string(f.Format))),
		log.WithTimeLayout(f.TimeLayout),
		log.WithCaller(f.Caller),
		log.WithPretty(f.Pretty),
	)

	log.DebugContext(ctx, "logger initialized",
		slog.String("level", string(f.Level)),
		slog.String("format", string(f.Format)),
		slog.String("time", f.TimeLayout),
		slog.Bool("caller", f.Caller),
		slog.Bool("pretty", f.Pretty),
	)
}

// scan applies logger flags found in args before Kong parses them, so the
// logger is configured regardless of flag position. Boolean flags never
// reach a TextUnmarshaler and are only applied here and in start.
func (f *logConfig) scan(args []string) {
	valued := map[string]func(string){
		"level":  func(v string) { _ = f.Level.UnmarshalText([]byte(v)) },
		"format": func(v string) { _ = f.Format.UnmarshalText([]byte(v)) },
	}

	toggles := map[string]func(bool){
		"pretty": func(b bool) { f.Pretty = b; log.Config(log.WithPretty(b)) },
		"caller": func(b bool) { f.Caller = b; log.Config(log.WithCaller(b)) },
	}

	for i := 0; i < len(args); i++ {
		name, negated := strings.CutPrefix(args[i], "--no-log-")
		if !negated {
			var ok bool
			if name, ok = strings.CutPrefix(args[i], "--log-"); !ok {
				continue
			}
		}

		name, value, assigned := strings.Cut(name, "=")

		if set, ok := valued[name]; ok && !negated {
			// Consume the next argument unless the value was assigned inline.
			if !assigned && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				value = args[i+1]
				i++
			}

			set(value)

			continue
		}

		if set, ok := toggles[name]; ok {
			b := true
			if assigned {
				var err error
				if b, err = strconv.ParseBool(value); err != nil {
					continue
				}
			}

			set(b != negated)
		}
	}
}
