// Package logger defines the logging contract shared by the ElenaWatch dev
// tools, so the transfer engine and the host tooling can log through whatever
// backend the embedding application prefers.
//
// The Logger interface supports structured logging with key-value pairs at
// the usual severity levels. A slog-backed implementation is provided via
// NewSlog, and a package-level default logger is available through the
// top-level functions in default.go.
package logger

// Level indicates the logging severity level.
type Level = int8

const (
	// DebugLevel logs are voluminous protocol traces, usually disabled
	// outside of interop debugging.
	DebugLevel Level = iota - 1
	// InfoLevel is the default logging priority.
	InfoLevel
	// WarnLevel logs flag potential issues that don't stop a transfer.
	WarnLevel
	// ErrorLevel logs are high-priority failures.
	ErrorLevel
	// FatalLevel logs a message, then calls os.Exit(1).
	FatalLevel
)

// Logger is the common logging interface used throughout the module.
type Logger interface {
	// Debug logs a message at DebugLevel with optional key-value fields.
	Debug(msg string, keysAndValues ...any)
	// Info logs a message at InfoLevel with optional key-value fields.
	Info(msg string, keysAndValues ...any)
	// Warn logs a message at WarnLevel with optional key-value fields.
	Warn(msg string, keysAndValues ...any)
	// Error logs a message at ErrorLevel with optional key-value fields.
	Error(msg string, keysAndValues ...any)
	// Fatal logs a message at FatalLevel, then calls os.Exit(1) even if
	// logging at FatalLevel is disabled.
	Fatal(msg string, keysAndValues ...any)
	// With creates a child logger with additional structured context.
	// Key-values added to the child don't affect the parent, and vice versa.
	With(keyValues ...any) Logger
	// Level returns the minimum enabled level for this logger.
	Level() Level
	// SetLevel sets the minimum enabled level for this logger.
	SetLevel(level Level)
}
