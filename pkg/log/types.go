package log

// Logger is the structured logger used across solrpc packages.
type Logger interface {
	// Debug logs low-level detail such as raw JSON-RPC envelopes.
	Debug(msg string, keysAndValues ...any)
	// Info logs routine progress: connections, submitted transfers.
	Info(msg string, keysAndValues ...any)
	// Warn logs unexpected but recoverable situations.
	Warn(msg string, keysAndValues ...any)
	// Error logs failures that need attention.
	Error(msg string, keysAndValues ...any)
	// Fatal logs an unrecoverable failure and may terminate the process.
	Fatal(msg string, keysAndValues ...any)
	// WithKV returns a logger that attaches key/value to every entry.
	WithKV(key string, value any) Logger
	// GetAllKV returns the persistent key/value pairs of this logger.
	GetAllKV() []any
	// WithName returns a sub-logger; names are joined with dots.
	WithName(name string) Logger
	// Name returns the logger's name.
	Name() string
	// AddCallerSkip returns a logger reporting callers skip frames higher.
	AddCallerSkip(skip int) Logger
}

// Level is a log severity.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
	LevelFatal Level = "fatal"
)
