package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// ConsoleLogger writes human-readable lines: info and below to out, warnings
// and errors to err.
type ConsoleLogger struct {
	minLevel Level
	fields   []interface{}

	mu  *sync.Mutex
	out io.Writer
	err io.Writer
}

// NewConsoleLogger creates a logger that writes to stdout and stderr.
func NewConsoleLogger(level Level) Logger {
	return NewConsoleLoggerTo(level, os.Stdout, os.Stderr)
}

// NewConsoleLoggerTo creates a console logger over the given writers.
func NewConsoleLoggerTo(level Level, out, err io.Writer) Logger {
	return &ConsoleLogger{
		minLevel: level,
		mu:       &sync.Mutex{},
		out:      out,
		err:      err,
	}
}

func (cl *ConsoleLogger) Debug(msg string, fields ...interface{}) {
	cl.log(LevelDebug, msg, fields)
}

func (cl *ConsoleLogger) Info(msg string, fields ...interface{}) {
	cl.log(LevelInfo, msg, fields)
}

func (cl *ConsoleLogger) Warn(msg string, fields ...interface{}) {
	cl.log(LevelWarn, msg, fields)
}

// Error is logged regardless of level.
func (cl *ConsoleLogger) Error(msg string, err error, fields ...interface{}) {
	cl.log(LevelError, msg, append([]interface{}{"error", err}, fields...))
}

func (cl *ConsoleLogger) With(fields ...interface{}) Logger {
	c := *cl
	c.fields = joinFields(cl.fields, fields)
	return &c
}

func (cl *ConsoleLogger) log(level Level, msg string, fields []interface{}) {
	if level < cl.minLevel && level != LevelError {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s: %s", time.Now().Format("2006-01-02T15:04:05.000Z07:00"),
		strings.ToUpper(level.String()), msg)
	writeFields(&b, cl.fields)
	writeFields(&b, fields)
	b.WriteByte('\n')

	w := cl.out
	if level >= LevelWarn {
		w = cl.err
	}
	cl.mu.Lock()
	defer cl.mu.Unlock()
	_, _ = io.WriteString(w, b.String())
}

func writeFields(b *strings.Builder, fields []interface{}) {
	for i := 0; i+1 < len(fields); i += 2 {
		fmt.Fprintf(b, " %v=%v", fields[i], fields[i+1])
	}
}
