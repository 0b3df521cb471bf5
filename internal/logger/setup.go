package logger

// Options selects the outputs New wires together.
type Options struct {
	Level string
	// Stream enables console output.
	Stream bool
	// File enables the rotating log file when File.Dir is set.
	File FileOptions
}

// New builds a Logger from opts. With no outputs enabled it returns a
// NoOpLogger.
func New(opts Options) (Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	var loggers []Logger
	if opts.Stream {
		loggers = append(loggers, NewConsoleLogger(level))
	}
	if opts.File.Dir != "" {
		fl, err := NewFileLogger(level, opts.File)
		if err != nil {
			return nil, err
		}
		loggers = append(loggers, fl)
	}

	switch len(loggers) {
	case 0:
		return NoOpLogger{}, nil
	case 1:
		return loggers[0], nil
	default:
		return NewMultiLogger(loggers...), nil
	}
}

// Close closes lg if it holds resources.
func Close(lg Logger) error {
	if c, ok := lg.(Closeable); ok {
		return c.Close()
	}
	return nil
}
