// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// Loggers are immutable values configured with functional options at
// creation time:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatJSON),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true))
//
// [Logger.Wrap] derives a logger with a modified configuration and
// [Logger.With] derives one that adds attributes to every record.
//
// # Levels
//
// In addition to the four slog levels the package defines [LevelTrace],
// used by the interpreter for per-line diagnostics that are only useful when
// debugging a script.
//
// # Output
//
// Two formats are supported, [FormatText] (default) and [FormatJSON]. With
// pretty printing enabled, text records are colorized with lipgloss styles
// bound to the output writer, and JSON records are indented.
//
// Package-level functions such as [Info] and [DebugContext] write to a
// default logger on stderr, which [Config] reconfigures.
package log
