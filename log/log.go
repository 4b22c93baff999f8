package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"
	"time"
)

// DefaultContextProvider returns the context used by the context-unaware
// logging methods.
var DefaultContextProvider = context.TODO

// Logger is a concurrency-safe structured logger. The zero value discards
// every message.
type Logger struct {
	*slog.Logger
	config
}

// Make creates a [Logger] writing to w with the default configuration
// overridden by opts.
func Make(w io.Writer, opts ...Option) Logger {
	cfg := makeConfig(w, opts...)

	return Logger{
		config: cfg,
		Logger: slog.New(cfg.handler()),
	}
}

// Wrap returns a new [Logger] using the receiver's configuration as a base
// with opts applied on top.
//
// Attributes added with [Logger.With] are not carried over, since the
// handler is rebuilt from the new configuration.
func (l Logger) Wrap(opts ...Option) Logger {
	if l.mutex == nil {
		return Make(io.Discard, opts...)
	}

	l.mutex.RLock()
	cfg := l.clone(opts...)
	l.mutex.RUnlock()

	return Logger{
		config: cfg,
		Logger: slog.New(cfg.handler()),
	}
}

// With returns a new [Logger] that adds attrs to every message.
func (l Logger) With(attrs ...slog.Attr) Logger {
	if l.Logger == nil {
		return l
	}

	l.mutex.RLock()
	cfg := l.clone()
	l.mutex.RUnlock()

	return Logger{
		config: cfg,
		Logger: slog.New(l.Handler().WithAttrs(attrs)),
	}
}

// Level returns the minimum level that is written.
func (l Logger) Level() Level {
	if l.Logger == nil {
		return DefaultLevel
	}

	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return l.level
}

// Format returns the output format.
func (l Logger) Format() Format {
	if l.Logger == nil {
		return DefaultFormat
	}

	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return l.format
}

func (l Logger) TraceContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.logContext(ctx, LevelTrace, msg, attrs...)
}

func (l Logger) Trace(msg string, attrs ...slog.Attr) {
	l.logContext(DefaultContextProvider(), LevelTrace, msg, attrs...)
}

func (l Logger) DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.logContext(ctx, LevelDebug, msg, attrs...)
}

func (l Logger) Debug(msg string, attrs ...slog.Attr) {
	l.logContext(DefaultContextProvider(), LevelDebug, msg, attrs...)
}

func (l Logger) InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.logContext(ctx, LevelInfo, msg, attrs...)
}

func (l Logger) Info(msg string, attrs ...slog.Attr) {
	l.logContext(DefaultContextProvider(), LevelInfo, msg, attrs...)
}

func (l Logger) WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.logContext(ctx, LevelWarn, msg, attrs...)
}

func (l Logger) Warn(msg string, attrs ...slog.Attr) {
	l.logContext(DefaultContextProvider(), LevelWarn, msg, attrs...)
}

func (l Logger) ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.logContext(ctx, LevelError, msg, attrs...)
}

func (l Logger) Error(msg string, attrs ...slog.Attr) {
	l.logContext(DefaultContextProvider(), LevelError, msg, attrs...)
}

// logContext builds the record by hand so the source position reported with
// [WithCaller] is the caller of the exported method, not this file.
func (l Logger) logContext(
	ctx context.Context,
	level Level,
	msg string,
	attrs ...slog.Attr,
) {
	if l.Logger == nil {
		return
	}

	l.mutex.RLock()
	defer l.mutex.RUnlock()

	if !l.Enabled(ctx, slog.Level(level)) {
		return
	}

	// runtime.Callers, logContext, exported method
	var pcs [1]uintptr

	runtime.Callers(3, pcs[:])

	r := slog.NewRecord(time.Now(), slog.Level(level), msg, pcs[0])
	r.AddAttrs(attrs...)

	_ = l.Handler().Handle(ctx, r)
}

var defaultLog = Make(os.Stderr)

// Config reconfigures the default logger.
func Config(opts ...Option) {
	defaultLog = defaultLog.Wrap(opts...)
}

// Default returns the default logger.
func Default() Logger { return defaultLog }

func Trace(msg string, attrs ...slog.Attr) {
	defaultLog.logContext(DefaultContextProvider(), LevelTrace, msg, attrs...)
}

func Debug(msg string, attrs ...slog.Attr) {
	defaultLog.logContext(DefaultContextProvider(), LevelDebug, msg, attrs...)
}

func DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	defaultLog.logContext(ctx, LevelDebug, msg, attrs...)
}

func Info(msg string, attrs ...slog.Attr) {
	defaultLog.logContext(DefaultContextProvider(), LevelInfo, msg, attrs...)
}

func InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	defaultLog.logContext(ctx, LevelInfo, msg, attrs...)
}

func Warn(msg string, attrs ...slog.Attr) {
	defaultLog.logContext(DefaultContextProvider(), LevelWarn, msg, attrs...)
}

func WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	defaultLog.logContext(ctx, LevelWarn, msg, attrs...)
}

func Error(msg string, attrs ...slog.Attr) {
	defaultLog.logContext(DefaultContextProvider(), LevelError, msg, attrs...)
}

func ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	defaultLog.logContext(ctx, LevelError, msg, attrs...)
}

// With returns the default logger with attrs added to every message.
func With(attrs ...slog.Attr) Logger {
	return defaultLog.With(attrs...)
}
