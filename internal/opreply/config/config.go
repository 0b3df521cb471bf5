package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/julianstephens/go-utils/helpers"

	"github.com/julianstephens/opreply/internal/opreply"
	"github.com/julianstephens/opreply/internal/opreply/envelope"
	"github.com/julianstephens/opreply/internal/opreply/osd"
)

// Config is the on-disk opreply.toml.
type Config struct {
	Version int          `toml:"version"`
	Peer    PeerConfig   `toml:"peer"`
	Limits  LimitsConfig `toml:"limits"`
	Log     LogConfig    `toml:"log"`
}

// PeerConfig describes the peer replies are encoded for.
type PeerConfig struct {
	// Features lists the feature names the peer advertises, e.g. "pgid64".
	Features []string `toml:"features"`
}

type LimitsConfig struct {
	// MaxFrameBytes bounds a single envelope; 0 means the envelope default.
	MaxFrameBytes uint32 `toml:"max_frame_bytes"`
}

// LogConfig controls the rotating log file. An empty Dir disables file
// logging.
type LogConfig struct {
	Dir        string `toml:"dir"`
	File       string `toml:"file"`
	Level      string `toml:"level"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

var validLevels = []string{"debug", "info", "warn", "error"}

// Default returns a Config with default settings: a peer with every
// feature, default frame limits, and no log file.
func Default() *Config {
	return &Config{
		Version: opreply.ConfigVersion,
		Peer:    PeerConfig{Features: []string{"all"}},
		Limits:  LimitsConfig{MaxFrameBytes: envelope.DefaultMaxFrameBytes},
		Log: LogConfig{
			File:       opreply.DefaultLogFileName,
			Level:      opreply.DefaultLogLevel,
			MaxSizeMB:  opreply.DefaultLogMaxSize,
			MaxBackups: opreply.DefaultLogMaxBackups,
		},
	}
}

// Load reads and validates the config at path. Keys missing from the file
// keep their defaults; keys the Config does not know are rejected.
func Load(path string) (*Config, error) {
	if !helpers.Exists(path) {
		return nil, &ConfigError{Kind: ConfigErrorKindNotFound, Path: path, Err: fs.ErrNotExist}
	}

	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, &ConfigError{Kind: ConfigErrorKindDecode, Path: path, Err: err}
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, &ConfigError{
			Kind: ConfigErrorKindUnknownKey,
			Path: path,
			Err:  fmt.Errorf("unknown keys: %s", strings.Join(keys, ", ")),
		}
	}

	if err := cfg.Validate(); err != nil {
		if ce, ok := err.(*ConfigError); ok {
			ce.Path = path
		}
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads path when it is set. Otherwise it loads
// opreply.ConfigFileName from the working directory if present and falls
// back to Default.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, &ConfigError{Kind: ConfigErrorKindNotFound, Err: err}
	}
	p := filepath.Join(wd, opreply.ConfigFileName)
	if !helpers.Exists(p) {
		return Default(), nil
	}
	return Load(p)
}

// Validate checks the config's values.
func (c *Config) Validate() error {
	if c.Version > opreply.ConfigVersion {
		return &ConfigError{
			Kind: ConfigErrorKindUnsupportedVersion,
			Err:  fmt.Errorf("config version %d is not supported", c.Version),
		}
	}
	if _, err := c.PeerFeatures(); err != nil {
		return &ConfigError{Kind: ConfigErrorKindInvalid, Err: err}
	}
	if c.Limits.MaxFrameBytes != 0 && c.Limits.MaxFrameBytes < envelope.HeaderSize {
		return &ConfigError{
			Kind: ConfigErrorKindInvalid,
			Err:  fmt.Errorf("max_frame_bytes %d is below the %d byte header", c.Limits.MaxFrameBytes, envelope.HeaderSize),
		}
	}
	if !isValidLevel(c.Log.Level) {
		return &ConfigError{
			Kind: ConfigErrorKindInvalid,
			Err:  fmt.Errorf("log level %q is not one of %s", c.Log.Level, strings.Join(validLevels, ", ")),
		}
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 {
		return &ConfigError{
			Kind: ConfigErrorKindInvalid,
			Err:  errors.New("log rotation sizes must not be negative"),
		}
	}
	return nil
}

// PeerFeatures returns the feature mask of the configured peer.
func (c *Config) PeerFeatures() (osd.Features, error) {
	return osd.ParseFeatures(c.Peer.Features)
}

// EnvelopeLimits returns the frame limits for readers and writers.
func (c *Config) EnvelopeLimits() envelope.Limits {
	return envelope.Limits{MaxFrameBytes: c.Limits.MaxFrameBytes}
}

// LogFilePath returns the rotating log file path, or "" when file logging
// is disabled.
func (c *Config) LogFilePath() string {
	if c.Log.Dir == "" {
		return ""
	}
	name := c.Log.File
	if name == "" {
		name = opreply.DefaultLogFileName
	}
	return filepath.Join(c.Log.Dir, name)
}

// Init writes a default config to path. It refuses to overwrite an existing
// file.
func Init(path string) error {
	if helpers.Exists(path) {
		return &ConfigError{
			Kind: ConfigErrorKindAlreadyExists,
			Path: path,
			Err:  fmt.Errorf("config already exists at %s", path),
		}
	}
	return Write(path, Default())
}

// Write encodes cfg as TOML and replaces path atomically.
func Write(path string, cfg *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return &ConfigError{Kind: ConfigErrorKindEncode, Path: path, Err: err}
	}

	if err := helpers.AtomicFileWrite(path, buf.Bytes()); err != nil {
		return &ConfigError{Kind: ConfigErrorKindWrite, Path: path, Err: err}
	}
	f, err := os.Open(filepath.Dir(path)) //nolint:gosec
	if err != nil {
		return &ConfigError{Kind: ConfigErrorKindWrite, Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	if err := f.Sync(); err != nil {
		return &ConfigError{Kind: ConfigErrorKindWrite, Path: path, Err: err}
	}
	return nil
}

func isValidLevel(level string) bool {
	for _, l := range validLevels {
		if strings.EqualFold(level, l) {
			return true
		}
	}
	return false
}
