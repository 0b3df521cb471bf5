package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/opreply/internal/cli"
	"github.com/julianstephens/opreply/internal/logger"
	"github.com/julianstephens/opreply/internal/opreply"
	"github.com/julianstephens/opreply/internal/opreply/config"
)

var (
	version = "opreply v0.1.0"
)

type LogOpts struct {
	Level  string `help:"Logging level (debug, info, warn, error); defaults to the config's level" envvar:"OPREPLY_LOG_LEVEL"`
	Debug  bool   `help:"Enable debug logging (overrides --log-level)"                              envvar:"OPREPLY_DEBUG"`
	Stream bool   `help:"Log to stdout/stderr in addition to the config's log file"                 envvar:"OPREPLY_LOG_STREAM"`
}

type CLI struct {
	Encode cli.EncodeCmd `cmd:"" help:"Encode fixture files into a capture"`
	Decode cli.DecodeCmd `cmd:"" help:"Decode and print every reply in a capture"`
	Sample cli.SampleCmd `cmd:"" help:"Write a capture of generated replies"`
	Bench  cli.BenchCmd  `cmd:"" help:"Measure encode and decode latency"`
	Config cli.ConfigCmd `cmd:"" help:"Manage the config file"`

	ConfigPath string           `name:"config" help:"Config file (default: ./${config_file} if present)" type:"path" envvar:"OPREPLY_CONFIG"`
	LogOpts    LogOpts          `embed:"" prefix:"log-" help:"Logging options"`
	Version    kong.VersionFlag `help:"Show version information" short:"V"`
}

func createLogger(opts LogOpts, cfg *config.Config) (logger.Logger, error) {
	level := cfg.Log.Level
	if opts.Level != "" {
		level = opts.Level
	}
	if opts.Debug {
		level = "debug"
	}

	return logger.New(logger.Options{
		Level:  level,
		Stream: opts.Stream,
		File: logger.FileOptions{
			Dir:        cfg.Log.Dir,
			File:       cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
		},
	})
}

func main() {
	cliApp := &CLI{}
	ctx := kong.Parse(cliApp,
		kong.Name("opreply"),
		kong.Description("Encode, decode and inspect object operation replies"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version":      version,
			"config_file":  opreply.ConfigFileName,
			"sample_count": strconv.Itoa(opreply.DefaultSampleCount),
			"bench_count":  strconv.Itoa(opreply.DefaultBenchCount),
		},
	)

	cfg, err := config.LoadOrDefault(cliApp.ConfigPath)
	if err != nil {
		// config init must work even when the existing config is broken.
		if !strings.HasPrefix(ctx.Command(), "config ") {
			ctx.FatalIfErrorf(err)
		}
		cfg = config.Default()
	}

	lg, err := createLogger(cliApp.LogOpts, cfg)
	if err != nil {
		ctx.FatalIfErrorf(err)
	}
	defer func() { _ = logger.Close(lg) }()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx.BindTo(sigCtx, (*context.Context)(nil))

	err = ctx.Run(cli.NewEnv(lg, cfg))
	if err != nil {
		if errors.Is(err, cli.ErrDecodeFaults) {
			_ = logger.Close(lg)
			os.Exit(2)
		}
		ctx.FatalIfErrorf(err)
	}
}
