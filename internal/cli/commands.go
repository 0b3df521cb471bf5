package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/go-utils/cliutil"
	"github.com/julianstephens/go-utils/jsonutil"

	"github.com/julianstephens/opreply/internal/opreply/bench"
	"github.com/julianstephens/opreply/internal/opreply/config"
	"github.com/julianstephens/opreply/internal/opreply/envelope"
	"github.com/julianstephens/opreply/internal/opreply/fixture"
	"github.com/julianstephens/opreply/internal/opreply/message"
	"github.com/julianstephens/opreply/internal/opreply/osd"
	"github.com/julianstephens/opreply/internal/opreply/tid"
	"github.com/julianstephens/opreply/internal/opreply/workload"
)

// ErrDecodeFaults is returned when a capture contained frames that could
// not be decoded.
var ErrDecodeFaults = errors.New("capture contained undecodable frames")

// EncodeCmd encodes fixture files into a capture.
type EncodeCmd struct {
	Fixtures []string `arg:"" help:"Fixture files describing replies" type:"existingfile"`
	Output   string   `short:"o" required:"" help:"Capture file to write"`
	Legacy   bool     `help:"Encode for a peer without wide placement group support"`
	Append   bool     `help:"Append to an existing capture instead of replacing it"`
}

func (c *EncodeCmd) Run(env *Env) error {
	features, err := peerFeatures(env, c.Legacy)
	if err != nil {
		return err
	}

	f, err := openCapture(c.Output, c.Append)
	if err != nil {
		cliutil.PrintError(fmt.Sprintf("cannot open capture %s: %v", c.Output, err))
		return err
	}
	w := envelope.NewFrameWriter(f, env.Config.EnvelopeLimits())

	for _, path := range c.Fixtures {
		fx, err := fixture.Load(path)
		if err != nil {
			_ = f.Close()
			return err
		}
		r, err := fx.Build()
		if err != nil {
			_ = f.Close()
			return err
		}
		frame := r.ToFrame(features)
		at, err := w.Write(frame)
		if err != nil {
			_ = f.Close()
			return err
		}
		env.Logger.Debug("reply encoded", "fixture", path, "tid", r.Tid(), "version", frame.Header.Version, "offset", at)
		_, _ = fmt.Fprintf(env.Out, "%s -> v%d %s\n", path, frame.Header.Version, r)
	}

	if err := f.Close(); err != nil {
		return err
	}
	env.Logger.Info("capture written", "path", c.Output, "frames", w.Frames(), "bytes", w.Offset(), "features", features.String())
	_, _ = fmt.Fprintf(env.Out, "wrote %d frames (%d bytes) to %s\n", w.Frames(), w.Offset(), c.Output)
	return nil
}

// DecodeCmd prints every reply in a capture.
type DecodeCmd struct {
	Capture string `arg:"" help:"Capture file to read" type:"existingfile"`
	JSON    bool   `help:"Print one JSON object per reply"`
}

func (c *DecodeCmd) Run(env *Env) error {
	f, err := os.Open(c.Capture) //nolint:gosec
	if err != nil {
		cliutil.PrintError(fmt.Sprintf("cannot open capture %s: %v", c.Capture, err))
		return err
	}
	defer func() { _ = f.Close() }()

	lg := env.Logger.With("capture", c.Capture)
	r := envelope.NewFrameReader(bufio.NewReader(f), env.Config.EnvelopeLimits())

	var frames, faults int
	for {
		off := r.Offset()
		frame, err := r.Next()
		if envelope.IsCleanEOF(err) {
			break
		}
		frames++
		if err != nil {
			faults++
			lg.Error("frame parse failed", err, "offset", off)
			// A checksum or section-length fault leaves the stream on the next
			// frame boundary; anything else loses framing.
			if errors.Is(err, envelope.ErrChecksumMismatch) || errors.Is(err, envelope.ErrCorrupt) {
				continue
			}
			break
		}

		reply, err := message.FromFrame(frame)
		if err != nil {
			faults++
			lg.Error("reply decode failed", err, "offset", off, "tid", frame.Header.Tid, "version", frame.Header.Version)
			continue
		}

		if c.JSON {
			data, err := jsonutil.Marshal(newReplyView(off, frame.Header, reply))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(env.Out, string(data))
		} else {
			_, _ = fmt.Fprintf(env.Out, "%8d v%d %s\n", off, frame.Header.Version, reply)
		}
	}

	lg.Info("capture decoded", "frames", frames, "faults", faults)
	if faults > 0 {
		cliutil.PrintError(fmt.Sprintf("%d of %d frames in %s could not be decoded", faults, frames, c.Capture))
		return fmt.Errorf("%w: %d of %d", ErrDecodeFaults, faults, frames)
	}
	return nil
}

// SampleCmd writes a capture of generated replies.
type SampleCmd struct {
	Count  int      `short:"n" default:"${sample_count}" help:"Number of replies to generate"`
	Output string   `short:"o" required:"" help:"Capture file to write"`
	Seed   int64    `default:"1" help:"Random seed"`
	Kinds  []string `help:"Reply kinds to generate (write, read, enoent, watch)"`
	Legacy bool     `help:"Encode for a peer without wide placement group support"`
	Append bool     `help:"Append to an existing capture, continuing after its highest tid"`
}

func (c *SampleCmd) Run(env *Env) error {
	features, err := peerFeatures(env, c.Legacy)
	if err != nil {
		return err
	}
	opts, err := workloadOptions(c.Seed, c.Kinds)
	if err != nil {
		return err
	}

	alloc, err := tid.NewCounterAllocator(1)
	if err != nil {
		return err
	}
	if c.Append {
		maxTid, err := maxCaptureTid(c.Output, env.Config.EnvelopeLimits())
		if err != nil {
			cliutil.PrintError(fmt.Sprintf("cannot append to %s: %v", c.Output, err))
			return err
		}
		if err := tid.ResumeAfter(alloc, maxTid); err != nil {
			return err
		}
	}

	f, err := openCapture(c.Output, c.Append)
	if err != nil {
		cliutil.PrintError(fmt.Sprintf("cannot open capture %s: %v", c.Output, err))
		return err
	}
	w := envelope.NewFrameWriter(f, env.Config.EnvelopeLimits())
	gen := workload.NewGenerator(alloc, opts)

	counts := make(map[workload.Kind]int)
	for i := 0; i < c.Count; i++ {
		r, kind, err := gen.Next()
		if err == nil {
			_, err = w.Write(r.ToFrame(features))
		}
		if err != nil {
			_ = f.Close()
			return err
		}
		counts[kind]++
	}
	if err := f.Close(); err != nil {
		return err
	}

	fields := []interface{}{"path", c.Output, "frames", w.Frames(), "first_tid", alloc.Peek() - uint64(w.Frames())}
	for _, k := range workload.AllKinds() {
		fields = append(fields, k.String(), counts[k])
	}
	env.Logger.Info("sample capture written", fields...)
	_, _ = fmt.Fprintf(env.Out, "wrote %d frames (%d bytes) to %s\n", w.Frames(), w.Offset(), c.Output)
	return nil
}

// BenchCmd measures encode and decode latency over generated replies.
type BenchCmd struct {
	Count   int      `short:"n" default:"${bench_count}" help:"Number of replies to generate"`
	Seed    int64    `default:"1" help:"Random seed"`
	Kinds   []string `help:"Reply kinds to generate (write, read, enoent, watch)"`
	Layouts []string `default:"legacy,current" enum:"legacy,current" help:"Layouts to measure"`
	JSON    bool     `help:"Print the report as JSON"`
}

func (c *BenchCmd) Run(ctx context.Context, env *Env) error {
	opts, err := workloadOptions(c.Seed, c.Kinds)
	if err != nil {
		return err
	}
	alloc, err := tid.NewCounterAllocator(1)
	if err != nil {
		return err
	}

	var layouts []bench.Layout
	for _, name := range c.Layouts {
		l := bench.Layout{Name: name}
		if name == "current" {
			l.Features = osd.FeaturesAll
		}
		layouts = append(layouts, l)
	}

	report, err := bench.Run(ctx, workload.NewGenerator(alloc, opts), bench.Options{
		Count:   c.Count,
		Limits:  env.Config.EnvelopeLimits(),
		Layouts: layouts,
		Logger:  env.Logger,
	})
	if err != nil {
		return err
	}

	if c.JSON {
		data, err := jsonutil.Marshal(report)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(env.Out, string(data))
		return nil
	}
	report.PrettyPrint(env.Out)
	return nil
}

// ConfigCmd groups config file commands.
type ConfigCmd struct {
	Init ConfigInitCmd `cmd:"" help:"Write a default config file"`
}

type ConfigInitCmd struct {
	Path string `arg:"" optional:"" default:"${config_file}" help:"Where to write the config"`
}

func (c *ConfigInitCmd) Run(env *Env) error {
	if err := config.Init(c.Path); err != nil {
		cliutil.PrintError(err.Error())
		return err
	}
	env.Logger.Info("config written", "path", c.Path)
	_, _ = fmt.Fprintf(env.Out, "wrote default config to %s\n", c.Path)
	return nil
}

func peerFeatures(env *Env, legacy bool) (osd.Features, error) {
	if legacy {
		return 0, nil
	}
	return env.Config.PeerFeatures()
}

func workloadOptions(seed int64, kinds []string) (workload.Options, error) {
	opts := workload.DefaultOptions()
	opts.Seed = seed
	if len(kinds) == 0 {
		return opts, nil
	}
	opts.Kinds = nil
	for _, name := range kinds {
		k, err := workload.ParseKind(name)
		if err != nil {
			return opts, err
		}
		opts.Kinds = append(opts.Kinds, k)
	}
	return opts, nil
}
