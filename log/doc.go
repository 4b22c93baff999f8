// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// The package offers configurable time formatting, caller information,
// and output formats that are applied at logger creation time using
// functional options.
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("expansion complete", slog.Int("nodes", 12))
//	logger.Warn("template not found", slog.String("id", "row"))
//
// # Configuration
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true))
//
// The zero [Logger] discards everything, so library types can hold one
// without requiring callers to configure logging.
//
// # Default Logger
//
// Package-level functions such as [Info] and [WarnContext] write to a shared
// default logger reconfigured with [Config]. Context-unaware variants use
// [DefaultContextProvider], which returns [context.TODO] by default.
//
// # Output Formats
//
// Two output formats are supported: [FormatJSON] (default) and [FormatText].
// With [WithPretty], text output is colorized using lipgloss styles.
package log
