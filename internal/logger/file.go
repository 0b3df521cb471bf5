package logger

import (
	"fmt"
	"path/filepath"

	"github.com/julianstephens/go-utils/helpers"
	goulog "github.com/julianstephens/go-utils/logger"

	"github.com/julianstephens/opreply/internal/opreply"
)

// FileOptions configures a rotating log file.
type FileOptions struct {
	Dir        string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// FileLogger wraps go-utils/logger with rotating, compressed JSON file output.
type FileLogger struct {
	underlying *goulog.Logger
	filePath   string
	minLevel   Level
	fields     []interface{}
}

// NewFileLogger creates the log directory if needed and returns a logger
// writing to opts.Dir/opts.File. A zero MaxSizeMB uses
// opreply.DefaultLogMaxSize and a zero MaxAgeDays keeps logs for 28 days.
func NewFileLogger(level Level, opts FileOptions) (Logger, error) {
	if err := helpers.Ensure(opts.Dir, true); err != nil {
		return nil, wrapLoggerErr("create file logger", ErrLogCreate, err, opts.Dir)
	}
	if opts.MaxSizeMB == 0 {
		opts.MaxSizeMB = opreply.DefaultLogMaxSize
	}
	if opts.MaxAgeDays == 0 {
		opts.MaxAgeDays = 28
	}

	logPath := filepath.Join(opts.Dir, opts.File)
	underlying := goulog.New()
	if err := underlying.SetFileOutputWithConfig(goulog.FileRotationConfig{
		Filename:   logPath,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: &opts.MaxBackups,
		MaxAge:     &opts.MaxAgeDays,
		Compress:   true,
	}); err != nil {
		return nil, wrapLoggerErr("create file logger", ErrLogCreate, err, logPath)
	}

	return &FileLogger{
		underlying: underlying,
		filePath:   logPath,
		minLevel:   level,
	}, nil
}

// Path returns the active log file.
func (fl *FileLogger) Path() string { return fl.filePath }

func (fl *FileLogger) Debug(msg string, fields ...interface{}) {
	if fl.minLevel > LevelDebug {
		return
	}
	fl.underlying.WithFields(fl.fieldMap(fields)).Debug(msg)
}

func (fl *FileLogger) Info(msg string, fields ...interface{}) {
	if fl.minLevel > LevelInfo {
		return
	}
	fl.underlying.WithFields(fl.fieldMap(fields)).Info(msg)
}

func (fl *FileLogger) Warn(msg string, fields ...interface{}) {
	if fl.minLevel > LevelWarn {
		return
	}
	fl.underlying.WithFields(fl.fieldMap(fields)).Warn(msg)
}

func (fl *FileLogger) Error(msg string, err error, fields ...interface{}) {
	fl.underlying.WithFields(fl.fieldMap(append([]interface{}{"error", err}, fields...))).Error(msg)
}

func (fl *FileLogger) With(fields ...interface{}) Logger {
	c := *fl
	c.fields = joinFields(fl.fields, fields)
	return &c
}

// Close is a no-op; go-utils/logger flushes on every write.
func (fl *FileLogger) Close() error {
	return nil
}

func (fl *FileLogger) fieldMap(fields []interface{}) map[string]interface{} {
	result := make(map[string]interface{}, (len(fl.fields)+len(fields))/2)
	for _, fs := range [][]interface{}{fl.fields, fields} {
		for i := 0; i+1 < len(fs); i += 2 {
			result[fmt.Sprintf("%v", fs[i])] = fs[i+1]
		}
	}
	return result
}
