package testutil

import (
	"testing"

	tst "github.com/julianstephens/go-utils/tests"

	"github.com/julianstephens/opreply/internal/opreply/message"
	"github.com/julianstephens/opreply/internal/opreply/osd"
)

// Versions used by the sample replies.
var (
	SampleReplayVersion = osd.EVersion{Epoch: 3, Version: 10}
	SampleUserVersion   = uint64(7)
)

// NewReadRequest returns a request with a read and a stat op against
// "rbd_data.1234" in pool 2.
func NewReadRequest(tid uint64) *message.OpRequest {
	return &message.OpRequest{
		TID: tid,
		OID: osd.ObjectID{Name: "rbd_data.1234"},
		PG:  osd.PGID{Pool: 2, Seed: 0x1f, Preferred: -1},
		OpList: []osd.Op{
			{Code: osd.OpRead, PayloadLen: 4096},
			{Code: osd.OpStat, PayloadLen: 16},
		},
		ReqFlags: osd.FlagRead | osd.FlagAck,
		Attempt:  2,
	}
}

// ExecutedOps returns the ops of NewReadRequest as the storage node would
// after running them: with results and out data attached.
func ExecutedOps() []osd.Op {
	return []osd.Op{
		{Code: osd.OpRead, Flags: 0x1, Rval: 0, OutData: []byte("hello, object")},
		{Code: osd.OpStat, Rval: -2, OutData: []byte{0x01, 0x02, 0x03}},
	}
}

// NewSampleReply builds a fully populated reply: executed ops with out
// data, ondisk ack, and split replay/user versions.
func NewSampleReply(t *testing.T, tid uint64) *message.Reply {
	t.Helper()
	r := message.NewReplyFromRequest(NewReadRequest(tid), 0, 42, osd.FlagOnDisk)
	_, err := r.SwapOps(ExecutedOps())
	tst.RequireNoError(t, err)
	r.SetReplyVersions(SampleReplayVersion, SampleUserVersion)
	return r
}
