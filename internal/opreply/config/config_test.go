package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"
	tst "github.com/julianstephens/go-utils/tests"

	"github.com/julianstephens/opreply/internal/logger"
	"github.com/julianstephens/opreply/internal/opreply"
	"github.com/julianstephens/opreply/internal/opreply/config"
	"github.com/julianstephens/opreply/internal/opreply/envelope"
	"github.com/julianstephens/opreply/internal/opreply/osd"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), opreply.ConfigFileName)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

// TestInitAndLoad verifies a freshly initialized config loads back as the default
func TestInitAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), opreply.ConfigFileName)
	tst.RequireNoError(t, config.Init(path))

	cfg, err := config.Load(path)
	tst.RequireNoError(t, err)
	tst.AssertDeepEqual(t, cfg, config.Default())

	features, err := cfg.PeerFeatures()
	tst.RequireNoError(t, err)
	tst.AssertTrue(t, features.Has(osd.FeaturePGID64), "default peer should support pgid64")
	assert.Equal(t, "", cfg.LogFilePath())
}

// TestInitAlreadyExists validates that Init never overwrites
func TestInitAlreadyExists(t *testing.T) {
	path := writeConfig(t, "version = 1\n")
	err := config.Init(path)
	assert.IsError(t, err, config.ErrConfigAlreadyExists)

	data, err := os.ReadFile(path) //nolint:gosec
	tst.RequireNoError(t, err)
	assert.Equal(t, "version = 1\n", string(data))
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
version = 1

[peer]
features = []

[log]
dir = "/var/log/opreply"
level = "debug"
`)
	cfg, err := config.Load(path)
	tst.RequireNoError(t, err)

	features, err := cfg.PeerFeatures()
	tst.RequireNoError(t, err)
	tst.AssertFalse(t, features.Has(osd.FeaturePGID64), "empty feature list should select the legacy layout")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, opreply.DefaultLogMaxSize, cfg.Log.MaxSizeMB)
	assert.Equal(t, filepath.Join("/var/log/opreply", opreply.DefaultLogFileName), cfg.LogFilePath())
	assert.Equal(t, envelope.Limits{MaxFrameBytes: envelope.DefaultMaxFrameBytes}, cfg.EnvelopeLimits())
}

func TestLoadErrors(t *testing.T) {
	testCases := []struct {
		name    string
		body    string
		wantErr error
	}{
		{"UnknownKey", "version = 1\nfsync = true\n", config.ErrConfigUnknownKey},
		{"UnknownNestedKey", "[limits]\nmax_frame_bytes = 1024\nmax_ops = 3\n", config.ErrConfigUnknownKey},
		{"BadSyntax", "version = \n", config.ErrConfigDecode},
		{"FutureVersion", "version = 9\n", config.ErrConfigUnsupportedVersion},
		{"UnknownFeature", "[peer]\nfeatures = [\"msgr2\"]\n", config.ErrConfigInvalid},
		{"TinyFrames", "[limits]\nmax_frame_bytes = 8\n", config.ErrConfigInvalid},
		{"BadLevel", "[log]\nlevel = \"chatty\"\n", config.ErrConfigInvalid},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.body)
			_, err := config.Load(path)
			assert.IsError(t, err, tc.wantErr)

			var ce *config.ConfigError
			tst.AssertTrue(t, errors.As(err, &ce), "expected ConfigError")
			assert.Equal(t, path, ce.Path)
		})
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.IsError(t, err, config.ErrConfigNotFound)
}

func TestWriteRoundTrip(t *testing.T) {
	cfg := config.Default()
	cfg.Peer.Features = []string{"pgid64"}
	cfg.Limits.MaxFrameBytes = 4096
	cfg.Log.Dir = "logs"

	path := filepath.Join(t.TempDir(), "custom.toml")
	tst.RequireNoError(t, config.Write(path, cfg))

	got, err := config.Load(path)
	tst.RequireNoError(t, err)
	tst.AssertDeepEqual(t, got, cfg)
}

func TestLoadOrDefault(t *testing.T) {
	prevWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	defer func() { _ = os.Chdir(prevWd) }()

	dir := t.TempDir()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to change to temp directory: %v", err)
	}

	cfg, err := config.LoadOrDefault("")
	tst.RequireNoError(t, err)
	tst.AssertDeepEqual(t, cfg, config.Default())

	if err := os.WriteFile(filepath.Join(dir, opreply.ConfigFileName), []byte("[log]\nlevel = \"warn\"\n"), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	cfg, err = config.LoadOrDefault("")
	tst.RequireNoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestZeroLogSizeStartsFileLogger(t *testing.T) {
	cfg := config.Default()
	cfg.Log.Dir = t.TempDir()
	cfg.Log.MaxSizeMB = 0
	cfg.Log.MaxBackups = 0
	tst.RequireNoError(t, cfg.Validate())

	lg, err := logger.New(logger.Options{
		Level: cfg.Log.Level,
		File: logger.FileOptions{
			Dir:        cfg.Log.Dir,
			File:       cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
		},
	})
	tst.RequireNoError(t, err)
	tst.RequireNoError(t, logger.Close(lg))
}

func TestConfigErrorKindString(t *testing.T) {
	assert.Equal(t, "unknown_key", config.ConfigErrorKindUnknownKey.String())
	assert.Equal(t, "unknown", config.ConfigErrorKind(0).String())
}
