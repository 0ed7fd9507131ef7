package common

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// LoggerOption is a functional option used to configure a logger created by NewLogger.
type LoggerOption func(*log.Options)

// WithLogLevel sets the minimum level a logger emits.
//
// Parameters:
//   - level: the minimum level
//
// Returns:
//   - LoggerOption: a function that applies the level
func WithLogLevel(level log.Level) LoggerOption {
	return func(o *log.Options) {
		o.Level = level
	}
}

// WithCaller toggles reporting of the calling file and line.
//
// Parameters:
//   - enabled: whether the caller is reported
//
// Returns:
//   - LoggerOption: a function that applies the caller option
func WithCaller(enabled bool) LoggerOption {
	return func(o *log.Options) {
		o.ReportCaller = enabled
	}
}

// NewLogger creates a structured logger writing to stderr with RFC3339 timestamps.
//
// Parameters:
//   - prefix: the prefix printed in front of every message
//   - options: a variadic list of options to configure the logger
//
// Returns:
//   - *log.Logger: the configured logger
func NewLogger(prefix string, options ...LoggerOption) *log.Logger {
	return NewLoggerTo(os.Stderr, prefix, options...)
}

// NewLoggerTo creates a structured logger writing to w.
//
// Parameters:
//   - w: the destination writer
//   - prefix: the prefix printed in front of every message
//   - options: a variadic list of options to configure the logger
//
// Returns:
//   - *log.Logger: the configured logger
func NewLoggerTo(w io.Writer, prefix string, options ...LoggerOption) *log.Logger {
	opts := log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          prefix,
		Level:           log.InfoLevel,
	}
	for _, opt := range options {
		opt(&opts)
	}
	return log.NewWithOptions(w, opts)
}

// NopLogger returns a logger that discards everything.
//
// Returns:
//   - *log.Logger: a logger writing to io.Discard
func NopLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

// ParseLogLevel converts a level name ("debug", "info", "warn", "error", "fatal") into a log.Level.
//
// Parameters:
//   - name: the level name
//
// Returns:
//   - log.Level: the parsed level
//   - error: error if the name is not a known level
func ParseLogLevel(name string) (log.Level, error) {
	return log.ParseLevel(name)
}
