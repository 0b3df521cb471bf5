package bench

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/julianstephens/opreply/internal/logger"
	"github.com/julianstephens/opreply/internal/opreply/envelope"
	"github.com/julianstephens/opreply/internal/opreply/message"
	"github.com/julianstephens/opreply/internal/opreply/osd"
	"github.com/julianstephens/opreply/internal/opreply/workload"
)

var ErrMismatch = errors.New("bench: decoded reply does not match")

// Options configures a bench run.
type Options struct {
	Count  int
	Limits envelope.Limits
	// Layouts lists the peer feature sets every reply is encoded for.
	Layouts []Layout
	Logger  logger.Logger
}

// Layout names a peer feature set.
type Layout struct {
	Name     string
	Features osd.Features
}

// DefaultLayouts returns the legacy and current layouts.
func DefaultLayouts() []Layout {
	return []Layout{
		{Name: "legacy", Features: 0},
		{Name: "current", Features: osd.FeaturesAll},
	}
}

// Stat summarises one phase of one layout.
type Stat struct {
	Layout string        `json:"layout"`
	Phase  string        `json:"phase"`
	Count  int64         `json:"count"`
	Mean   time.Duration `json:"mean"`
	P50    time.Duration `json:"p50"`
	P99    time.Duration `json:"p99"`
	Max    time.Duration `json:"max"`
	Bytes  int64         `json:"bytes"`
}

// Report is the result of a bench run.
type Report struct {
	Replies int           `json:"replies"`
	Elapsed time.Duration `json:"elapsed"`
	Stats   []Stat        `json:"stats"`
}

type phase struct {
	hist  *hdrhistogram.Histogram
	bytes int64
}

func newPhase() *phase {
	return &phase{hist: hdrhistogram.New(1, int64(10*time.Second), 3)}
}

func (p *phase) put(d time.Duration) {
	_ = p.hist.RecordValue(int64(d))
}

func (p *phase) stat(layout, name string) Stat {
	return Stat{
		Layout: layout,
		Phase:  name,
		Count:  p.hist.TotalCount(),
		Mean:   time.Duration(p.hist.Mean()),
		P50:    time.Duration(p.hist.ValueAtQuantile(50.)),
		P99:    time.Duration(p.hist.ValueAtQuantile(99.)),
		Max:    time.Duration(p.hist.Max()),
		Bytes:  p.bytes,
	}
}

// Run encodes every generated reply for each layout, wraps it in an
// envelope and decodes it back, timing both directions. A decoded reply
// whose tid, op count or result differs from the generated reply aborts the run.
func Run(ctx context.Context, gen *workload.Generator, opts Options) (*Report, error) {
	if opts.Count <= 0 {
		return nil, fmt.Errorf("bench: count must be positive, got %d", opts.Count)
	}
	if len(opts.Layouts) == 0 {
		opts.Layouts = DefaultLayouts()
	}
	lg := opts.Logger
	if lg == nil {
		lg = logger.NoOpLogger{}
	}

	encode := make([]*phase, len(opts.Layouts))
	decode := make([]*phase, len(opts.Layouts))
	for i := range opts.Layouts {
		encode[i], decode[i] = newPhase(), newPhase()
	}

	start := time.Now()
	for n := 0; n < opts.Count; n++ {
		if err := ctx.Err(); err != nil {
			lg.Warn("bench cancelled", "completed", n)
			return nil, err
		}
		r, kind, err := gen.Next()
		if err != nil {
			return nil, err
		}

		for i, layout := range opts.Layouts {
			t0 := time.Now()
			buf, err := envelope.EncodeFrame(r.ToFrame(layout.Features), opts.Limits)
			if err != nil {
				return nil, err
			}
			encode[i].put(time.Since(t0))
			encode[i].bytes += int64(len(buf))

			t0 = time.Now()
			f, err := envelope.DecodeFrame(buf, opts.Limits)
			if err != nil {
				return nil, err
			}
			got, err := message.FromFrame(f)
			if err != nil {
				return nil, err
			}
			decode[i].put(time.Since(t0))
			decode[i].bytes += int64(len(buf))

			if err := verify(r, got); err != nil {
				lg.Error("bench verification failed", err, "layout", layout.Name, "kind", kind.String(), "tid", r.Tid())
				return nil, err
			}
		}
	}

	report := &Report{Replies: opts.Count, Elapsed: time.Since(start)}
	for i, layout := range opts.Layouts {
		report.Stats = append(report.Stats,
			encode[i].stat(layout.Name, "encode"),
			decode[i].stat(layout.Name, "decode"))
	}
	lg.Info("bench complete", "replies", report.Replies, "elapsed", report.Elapsed)
	return report, nil
}

func verify(want, got *message.Reply) error {
	switch {
	case want.Tid() != got.Tid():
		return fmt.Errorf("%w: tid want=%d have=%d", ErrMismatch, want.Tid(), got.Tid())
	case want.NumOps() != got.NumOps():
		return fmt.Errorf("%w: num_ops want=%d have=%d", ErrMismatch, want.NumOps(), got.NumOps())
	case want.Result() != got.Result():
		return fmt.Errorf("%w: result want=%d have=%d", ErrMismatch, want.Result(), got.Result())
	case want.BadReplayVersion() != got.BadReplayVersion():
		return fmt.Errorf("%w: bad_replay_version want=%s have=%s", ErrMismatch, want.BadReplayVersion(), got.BadReplayVersion())
	}
	return nil
}

// PrettyPrint writes the report as a table.
func (r *Report) PrettyPrint(w io.Writer) {
	round := func(d time.Duration) time.Duration { return d.Round(time.Microsecond / 10) }

	fmt.Fprintf(w, "%d replies in %s\n", r.Replies, r.Elapsed.Round(time.Millisecond))
	fmt.Fprintln(w, " layout   | phase  |      count |       mean |        50% |        99% |        max |      MB/s")
	fmt.Fprintln(w, "----------+--------+------------+------------+------------+------------+------------+----------")
	for _, s := range r.Stats {
		var mbps float64
		if total := time.Duration(int64(s.Mean) * s.Count); total > 0 {
			mbps = float64(s.Bytes) / total.Seconds() / (1 << 20)
		}
		fmt.Fprintf(w, " %-8s | %-6s | %10d | %10s | %10s | %10s | %10s | %9.1f\n",
			s.Layout, s.Phase, s.Count, round(s.Mean), round(s.P50), round(s.P99), round(s.Max), mbps)
	}
}
