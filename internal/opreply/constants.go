package opreply

const (
	// ConfigFileName is looked up in the working directory when no --config
	// path is given.
	ConfigFileName = "opreply.toml"
	ConfigVersion  = 1
)

// Log file defaults
const (
	DefaultLogFileName   = "opreply.log"
	DefaultLogMaxSize    = 100
	DefaultLogMaxBackups = 3
	DefaultLogLevel      = "info"
)

// Sample and bench defaults
const (
	DefaultSampleCount = 100
	DefaultBenchCount  = 10000
	DefaultPool        = 2
	DefaultPGNum       = 64
)
