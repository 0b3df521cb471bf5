package fixture_test

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
	tst "github.com/julianstephens/go-utils/tests"

	"github.com/julianstephens/opreply/internal/opreply/fixture"
	"github.com/julianstephens/opreply/internal/opreply/message"
	"github.com/julianstephens/opreply/internal/opreply/osd"
	"github.com/julianstephens/opreply/internal/testutil"
)

func TestLoadAndBuildMatchesSample(t *testing.T) {
	f, err := fixture.Load("testdata/read.toml")
	tst.RequireNoError(t, err)

	r, err := f.Build()
	tst.RequireNoError(t, err)
	assert.Equal(t, uint64(42), r.Tid())
	assert.Equal(t, osd.PGID{Pool: 2, Seed: 0x1f, Preferred: -1}, r.PGID())
	assert.Equal(t, int32(2), r.RetryAttempt())
	assert.Equal(t, osd.EVersion{Epoch: 3, Version: 7}, r.BadReplayVersion())

	want := testutil.NewSampleReply(t, 42)
	for _, features := range []osd.Features{0, osd.FeaturesAll} {
		got := r.EncodePayload(features)
		exp := want.EncodePayload(features)
		assert.Equal(t, exp.Version, got.Version)
		assert.Equal(t, exp.Payload, got.Payload, "features %s", features)
		assert.Equal(t, exp.Data, got.Data, "features %s", features)
	}
}

func TestBuildEnoent(t *testing.T) {
	f, err := fixture.Load("testdata/enoent.toml")
	tst.RequireNoError(t, err)
	r, err := f.Build()
	tst.RequireNoError(t, err)

	oid := osd.ObjectID{Name: "missing_object"}
	assert.Equal(t, osd.PGIDFor(oid, 5, 32), r.PGID())
	assert.Equal(t, osd.EVersion{Epoch: 3, Version: 10}, r.BadReplayVersion())
	assert.Equal(t, uint64(7), r.UserVersion())
	tst.AssertTrue(t, r.ReplayVersion().IsZero(), "enoent must not record a replay version")
	assert.Equal(t, osd.FlagWrite|osd.FlagAck, r.Flags())
	assert.Equal(t, "osd_op_reply(7 missing_object [delete r=-2] ack = -2 (no such file or directory))", r.String())
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := fixture.Parse([]byte("tid = 1\nobject = \"x\"\nsnapid = 4\n"))
	assert.IsError(t, err, fixture.ErrFixtureDecode)

	var fe *fixture.FixtureError
	tst.AssertTrue(t, errors.As(err, &fe), "expected FixtureError")
	assert.Equal(t, "snapid", fe.Field)
}

func TestBuildInvalid(t *testing.T) {
	testCases := []struct {
		name  string
		body  string
		field string
	}{
		{"MissingObject", "tid = 1\n", "object"},
		{"ZeroTid", "object = \"x\"\n", "tid"},
		{"BadFlag", "tid = 1\nobject = \"x\"\nrequest_flags = [\"sideways\"]\n", "request_flags"},
		{"BadAck", "tid = 1\nobject = \"x\"\nack = \"read\"\n", "ack"},
		{"BadCode", "tid = 1\nobject = \"x\"\n[[op]]\ncode = \"read\"\n[[op]]\ncode = \"frobnicate\"\n", "op[1].code"},
		{"BothOuts", "tid = 1\nobject = \"x\"\n[[op]]\ncode = \"read\"\nout = \"a\"\nout_hex = \"61\"\n", "op[0].out"},
		{"BadHex", "tid = 1\nobject = \"x\"\n[[op]]\ncode = \"read\"\nout_hex = \"zz\"\n", "op[0].out"},
		{"NegativeRetry", "tid = 1\nobject = \"x\"\nretry = -5\n", "retry"},
		{"BadMode", "tid = 1\nobject = \"x\"\n[versions]\nmode = \"sometimes\"\n", "versions.mode"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := fixture.Parse([]byte(tc.body))
			tst.RequireNoError(t, err)

			_, err = f.Build()
			assert.IsError(t, err, fixture.ErrFixtureInvalid)
			var fe *fixture.FixtureError
			tst.AssertTrue(t, errors.As(err, &fe), "expected FixtureError")
			assert.Equal(t, tc.field, fe.Field)
		})
	}
}

func TestBuildUnknownRetry(t *testing.T) {
	f, err := fixture.Parse([]byte("tid = 2\nobject = \"x\"\nretry = -1\n"))
	tst.RequireNoError(t, err)
	r, err := f.Build()
	tst.RequireNoError(t, err)
	assert.Equal(t, message.RetryUnknown, r.RetryAttempt())
}

func TestBuildVersionsNone(t *testing.T) {
	f, err := fixture.Parse([]byte("tid = 3\nobject = \"x\"\n[versions]\nmode = \"none\"\nversion = 9\n"))
	tst.RequireNoError(t, err)
	r, err := f.Build()
	tst.RequireNoError(t, err)
	tst.AssertTrue(t, r.BadReplayVersion().IsZero(), "mode none must leave versions unset")
	assert.Equal(t, 0, r.NumOps())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := fixture.Load("testdata/does-not-exist.toml")
	assert.IsError(t, err, fixture.ErrFixtureDecode)
	assert.Contains(t, err.Error(), "does-not-exist.toml")
}
