package logger

import "errors"

var (
	ErrLogCreate = errors.New("logger: create error")
	ErrLogClose  = errors.New("logger: close error")
	ErrLogLevel  = errors.New("logger: invalid level")
)

type LoggerError struct {
	Op    string // operation being performed, e.g., "create file logger"
	Err   error  // sentinel
	Cause error  // underlying error
	Path  string // optional path related to the error
}

func (e *LoggerError) Error() string {
	msg := e.Op + " error"
	if e.Path != "" {
		msg += " on " + e.Path
	}
	msg += ": " + e.Err.Error()
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *LoggerError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

func wrapLoggerErr(op string, err, cause error, path string) error {
	return &LoggerError{
		Op:    op,
		Err:   err,
		Cause: cause,
		Path:  path,
	}
}
