package logger

import (
	"fmt"
	"strings"
)

// Logger defines the interface for logging operations across opreply.
// Fields are alternating key/value pairs.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})

	// Error logs an error-level message with the error and optional structured fields.
	Error(msg string, err error, fields ...interface{})

	// With returns a Logger that adds fields to every message.
	With(fields ...interface{}) Logger
}

// Closeable is an optional interface for loggers that need cleanup.
type Closeable interface {
	Close() error
}

// Level orders log severities.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{"debug", "info", "warn", "error"}

func (l Level) String() string {
	if l < LevelDebug || l > LevelError {
		return fmt.Sprintf("level(%d)", int(l))
	}
	return levelNames[l]
}

// ParseLevel maps a level name to a Level. The empty string is LevelInfo.
func ParseLevel(name string) (Level, error) {
	if name == "" {
		return LevelInfo, nil
	}
	for i, n := range levelNames {
		if strings.EqualFold(name, n) {
			return Level(i), nil
		}
	}
	return LevelInfo, wrapLoggerErr("parse level", ErrLogLevel, fmt.Errorf("unknown level %q", name), "")
}

// NoOpLogger is a no-operation logger that discards all messages.
// Used as the default logger for tests and when logging is disabled.
type NoOpLogger struct{}

func (NoOpLogger) Debug(string, ...interface{})        {}
func (NoOpLogger) Info(string, ...interface{})         {}
func (NoOpLogger) Warn(string, ...interface{})         {}
func (NoOpLogger) Error(string, error, ...interface{}) {}
func (n NoOpLogger) With(...interface{}) Logger        { return n }

var _ Logger = NoOpLogger{}

// joinFields appends extra to base without sharing base's backing array.
func joinFields(base, extra []interface{}) []interface{} {
	if len(base) == 0 {
		return extra
	}
	out := make([]interface{}, 0, len(base)+len(extra))
	out = append(out, base...)
	return append(out, extra...)
}
