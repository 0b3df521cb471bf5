package workload_test

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	tst "github.com/julianstephens/go-utils/tests"

	"github.com/julianstephens/opreply/internal/opreply/message"
	"github.com/julianstephens/opreply/internal/opreply/osd"
	"github.com/julianstephens/opreply/internal/opreply/workload"
	"github.com/julianstephens/opreply/internal/testutil"
)

func TestGeneratorIsDeterministic(t *testing.T) {
	opts := workload.DefaultOptions()
	opts.Seed = 99
	a := workload.NewGenerator(testutil.NewIDAllocator(1), opts)
	b := workload.NewGenerator(testutil.NewIDAllocator(1), opts)

	for i := 0; i < 50; i++ {
		ra, ka, err := a.Next()
		tst.RequireNoError(t, err)
		rb, kb, err := b.Next()
		tst.RequireNoError(t, err)

		assert.Equal(t, ka, kb)
		ea := ra.EncodePayload(osd.FeaturesAll)
		eb := rb.EncodePayload(osd.FeaturesAll)
		assert.Equal(t, ea.Payload, eb.Payload, "reply %d payload", i)
		assert.Equal(t, ea.Data, eb.Data, "reply %d data", i)
	}
}

func TestGeneratorTidsIncrease(t *testing.T) {
	ids := testutil.NewIDAllocator(100)
	g := workload.NewGenerator(ids, workload.DefaultOptions())
	for i := uint64(0); i < 20; i++ {
		r, _, err := g.Next()
		tst.RequireNoError(t, err)
		assert.Equal(t, 100+i, r.Tid())
	}
	assert.Equal(t, uint64(120), ids.Peek())
}

func TestGeneratorKinds(t *testing.T) {
	testCases := []struct {
		kind  workload.Kind
		check func(t *testing.T, r *message.Reply)
	}{
		{workload.KindWrite, func(t *testing.T, r *message.Reply) {
			tst.AssertTrue(t, r.IsOnDisk(), "writes are acked on disk")
			assert.Equal(t, r.ReplayVersion(), r.BadReplayVersion())
			assert.Equal(t, r.ReplayVersion().Version, r.UserVersion())
		}},
		{workload.KindRead, func(t *testing.T, r *message.Reply) {
			assert.Equal(t, int32(0), r.Result())
			tst.AssertTrue(t, len(r.Ops()[0].OutData) > 0, "reads carry out data")
			assert.Equal(t, 16, len(r.Ops()[1].OutData))
		}},
		{workload.KindEnoent, func(t *testing.T, r *message.Reply) {
			assert.Equal(t, int32(-2), r.Result())
			assert.Equal(t, int32(-2), r.Ops()[0].Rval)
			tst.AssertTrue(t, r.ReplayVersion().IsZero(), "enoent leaves the replay version unset")
		}},
		{workload.KindWatch, func(t *testing.T, r *message.Reply) {
			assert.Equal(t, osd.OpWatch, r.Ops()[0].Code)
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.kind.String(), func(t *testing.T) {
			opts := workload.DefaultOptions()
			opts.Kinds = []workload.Kind{tc.kind}
			g := workload.NewGenerator(testutil.NewIDAllocator(1), opts)
			for i := 0; i < 10; i++ {
				r, k, err := g.Next()
				tst.RequireNoError(t, err)
				assert.Equal(t, tc.kind, k)
				assert.True(t, r.PGID().Seed < opts.PGNum, "seed %d outside pg count", r.PGID().Seed)
				tc.check(t, r)
			}
		})
	}
}

func TestWatchAdvancesReplayVersionOnly(t *testing.T) {
	opts := workload.DefaultOptions()
	opts.Kinds = []workload.Kind{workload.KindWrite, workload.KindWatch}
	g := workload.NewGenerator(testutil.NewIDAllocator(1), opts)

	var watch *message.Reply
	var userVersion uint64
	for i := 0; i < 100 && watch == nil; i++ {
		r, k, err := g.Next()
		tst.RequireNoError(t, err)
		if k == workload.KindWatch && userVersion != 0 {
			watch = r
		} else if k == workload.KindWrite {
			userVersion = r.UserVersion()
		}
	}
	if watch == nil {
		t.Fatal("expected a watch after a write")
	}

	assert.Equal(t, userVersion, watch.UserVersion())
	tst.AssertTrue(t, watch.ReplayVersion().Version > userVersion, "watch must advance the replay version")
	assert.Equal(t, watch.ReplayVersion().WithVersion(userVersion), watch.BadReplayVersion())
}

func TestParseKind(t *testing.T) {
	for _, k := range workload.AllKinds() {
		got, err := workload.ParseKind(k.String())
		tst.RequireNoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := workload.ParseKind("scrub")
	assert.Error(t, err)
	assert.Equal(t, "kind(9)", workload.Kind(9).String())
}
