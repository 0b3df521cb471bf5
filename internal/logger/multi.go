package logger

import "errors"

// MultiLogger forwards every call to each of its loggers.
type MultiLogger struct {
	loggers []Logger
}

func NewMultiLogger(loggers ...Logger) Logger {
	return &MultiLogger{loggers: loggers}
}

func (ml *MultiLogger) Debug(msg string, fields ...interface{}) {
	for _, lg := range ml.loggers {
		lg.Debug(msg, fields...)
	}
}

func (ml *MultiLogger) Info(msg string, fields ...interface{}) {
	for _, lg := range ml.loggers {
		lg.Info(msg, fields...)
	}
}

func (ml *MultiLogger) Warn(msg string, fields ...interface{}) {
	for _, lg := range ml.loggers {
		lg.Warn(msg, fields...)
	}
}

func (ml *MultiLogger) Error(msg string, err error, fields ...interface{}) {
	for _, lg := range ml.loggers {
		lg.Error(msg, err, fields...)
	}
}

func (ml *MultiLogger) With(fields ...interface{}) Logger {
	loggers := make([]Logger, len(ml.loggers))
	for i, lg := range ml.loggers {
		loggers[i] = lg.With(fields...)
	}
	return &MultiLogger{loggers: loggers}
}

// Close closes every Closeable logger and returns their joined errors.
func (ml *MultiLogger) Close() error {
	var errs []error
	for _, lg := range ml.loggers {
		if c, ok := lg.(Closeable); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return wrapLoggerErr("close multi logger", ErrLogClose, errors.Join(errs...), "")
}
