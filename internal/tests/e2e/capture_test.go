package e2e_test

import (
	"bytes"
	"path/filepath"
	"testing"

	tst "github.com/julianstephens/go-utils/tests"

	"github.com/julianstephens/opreply/internal/opreply/envelope"
	"github.com/julianstephens/opreply/internal/opreply/fixture"
	"github.com/julianstephens/opreply/internal/opreply/message"
	"github.com/julianstephens/opreply/internal/opreply/osd"
	"github.com/julianstephens/opreply/internal/opreply/tid"
	"github.com/julianstephens/opreply/internal/opreply/workload"
)

// TestMixedPeerCapture writes the same replies for an old and a new peer into
// one capture and reads them all back.
func TestMixedPeerCapture(t *testing.T) {
	alloc, err := tid.NewCounterAllocator(1)
	tst.RequireNoError(t, err)
	gen := workload.NewGenerator(alloc, workload.DefaultOptions())

	// 1. Generate replies and encode each for both peers
	var buf bytes.Buffer
	w := envelope.NewFrameWriter(&buf, envelope.DefaultLimits())
	var want []*message.Reply
	for i := 0; i < 40; i++ {
		r, _, err := gen.Next()
		tst.RequireNoError(t, err)
		want = append(want, r)

		_, err = w.Write(r.ToFrame(0))
		tst.RequireNoError(t, err)
		_, err = w.Write(r.ToFrame(osd.FeaturePGID64))
		tst.RequireNoError(t, err)
	}
	tst.AssertEqual(t, w.Frames(), 80, "frames written")

	// 2. Read every frame back
	r := envelope.NewFrameReader(bytes.NewReader(buf.Bytes()), envelope.DefaultLimits())
	for i := 0; i < 80; i++ {
		frame, err := r.Next()
		tst.RequireNoError(t, err)
		got, err := message.FromFrame(frame)
		tst.RequireNoError(t, err)

		orig := want[i/2]
		tst.AssertEqual(t, got.Tid(), orig.Tid(), "tid")
		tst.AssertEqual(t, got.Result(), orig.Result(), "result")
		tst.AssertEqual(t, got.NumOps(), orig.NumOps(), "num_ops")
		tst.AssertDeepEqual(t, got.BadReplayVersion(), orig.BadReplayVersion())

		// 3. Only the new peer sees the split versions and retry count
		if i%2 == 0 {
			tst.AssertEqual(t, frame.Header.Version, message.LegacyVersion, "legacy frame version")
			tst.AssertEqual(t, got.RetryAttempt(), message.RetryUnknown, "legacy retry")
			tst.AssertEqual(t, got.UserVersion(), orig.BadReplayVersion().Version, "legacy user version")
		} else {
			tst.AssertEqual(t, frame.Header.Version, message.HeadVersion, "current frame version")
			tst.AssertEqual(t, got.RetryAttempt(), orig.RetryAttempt(), "retry")
			tst.AssertDeepEqual(t, got.ReplayVersion(), orig.ReplayVersion())
			tst.AssertEqual(t, got.UserVersion(), orig.UserVersion(), "user_version")
		}
	}

	_, err = r.Next()
	tst.AssertTrue(t, envelope.IsCleanEOF(err), "expected clean EOF after last frame")
}

// TestNewerPeerFrame decodes a frame from a peer one layout ahead, which
// appends fields this decoder does not know.
func TestNewerPeerFrame(t *testing.T) {
	fx, err := fixture.Load(filepath.Join("..", "..", "opreply", "fixture", "testdata", "read.toml"))
	tst.RequireNoError(t, err)
	reply, err := fx.Build()
	tst.RequireNoError(t, err)

	// 1. Encode at HeadVersion, then extend as a newer peer would
	f := reply.ToFrame(osd.FeaturesAll)
	f.Header.Version = message.HeadVersion + 1
	f.Payload = append(append([]byte{}, f.Payload...), 0x01, 0x00, 0x00, 0x00)

	raw, err := envelope.EncodeFrame(f, envelope.DefaultLimits())
	tst.RequireNoError(t, err)
	decoded, err := envelope.DecodeFrame(raw, envelope.DefaultLimits())
	tst.RequireNoError(t, err)

	// 2. The known fields decode unchanged
	got, err := message.FromFrame(decoded)
	tst.RequireNoError(t, err)
	tst.AssertEqual(t, got.Tid(), uint64(42), "tid")
	tst.AssertEqual(t, got.UserVersion(), uint64(7), "user_version")
	tst.AssertDeepEqual(t, got.Ops()[0].OutData, []byte("hello, object"))

	// 3. A peer that raises the compat version is refused
	decoded.Header.CompatVersion = message.HeadVersion + 1
	_, err = message.FromFrame(decoded)
	tst.AssertTrue(t, err != nil, "expected incompatible version to be refused")
}
