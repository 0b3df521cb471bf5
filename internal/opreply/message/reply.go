package message

import "github.com/julianstephens/opreply/internal/opreply/osd"

const (
	// MsgTypeOSDOpReply is the envelope type id of an op reply.
	MsgTypeOSDOpReply uint16 = 43

	// HeadVersion is the newest reply layout this package writes.
	HeadVersion uint16 = 5
	// CompatVersion is the oldest decoder able to read a HeadVersion payload.
	CompatVersion uint16 = 2
	// LegacyVersion is written for peers without wide placement group support.
	LegacyVersion uint16 = 1

	TypeName = "osd_op_reply"
)

// RetryUnknown is reported when the peer was too old to send a retry count.
const RetryUnknown int32 = -1

// Reply is the outcome of an object operation sent back to its issuer.
//
// A Reply is owned by a single goroutine at a time. The number of ops is
// fixed at construction; only their out data moves.
type Reply struct {
	tid   uint64
	oid   osd.ObjectID
	pgid  osd.PGID
	ops   []osd.Op
	flags osd.Flags

	result int32

	// badReplayVersion is what peers predating the replay/user version split
	// read as "the version this op produced".
	badReplayVersion osd.EVersion
	replayVersion    osd.EVersion
	userVersion      uint64

	epoch        uint32
	retryAttempt int32

	// data is the shared out data section. It is populated by merging the
	// ops' out data on encode, or by the envelope before a split on decode.
	data   []byte
	merged bool
}

// NewReply returns an empty reply, as used by the decoder.
func NewReply() *Reply {
	return &Reply{retryAttempt: RetryUnknown}
}

// NewReplyFromRequest builds a reply to req. The request's ops are copied
// with their payload lengths cleared, its ack and durability flags are
// replaced by ackKind, and its tid and retry attempt carry over.
func NewReplyFromRequest(req Request, result int32, epoch uint32, ackKind osd.Flags) *Reply {
	ops := osd.CloneOps(req.Ops())
	for i := range ops {
		ops[i].PayloadLen = 0
	}
	return &Reply{
		tid:          req.Tid(),
		oid:          req.ObjectID(),
		pgid:         req.PGID(),
		ops:          ops,
		flags:        (req.Flags() &^ osd.AckMask) | ackKind,
		result:       result,
		epoch:        epoch,
		userVersion:  0,
		retryAttempt: req.RetryAttempt(),
	}
}

func (r *Reply) Tid() uint64            { return r.tid }
func (r *Reply) ObjectID() osd.ObjectID { return r.oid }
func (r *Reply) PGID() osd.PGID         { return r.pgid }
func (r *Reply) Flags() osd.Flags       { return r.flags }
func (r *Reply) IsOnDisk() bool         { return r.flags.IsOnDisk() }
func (r *Reply) IsOnNVRAM() bool        { return r.flags.IsOnNVRAM() }
func (r *Reply) Result() int32          { return r.result }
func (r *Reply) Epoch() uint32          { return r.epoch }

// Ops returns the reply's op sequence. Callers may read entries but must not
// change its length.
func (r *Reply) Ops() []osd.Op { return r.ops }

func (r *Reply) NumOps() int { return len(r.ops) }

// BadReplayVersion returns the combined version marker sent to legacy peers.
func (r *Reply) BadReplayVersion() osd.EVersion { return r.badReplayVersion }
func (r *Reply) ReplayVersion() osd.EVersion    { return r.replayVersion }
func (r *Reply) UserVersion() uint64            { return r.userVersion }

// RetryAttempt returns how many times the request had been retried, or
// RetryUnknown.
func (r *Reply) RetryAttempt() int32 { return r.retryAttempt }

// Data returns the shared out data section, if it has not been split into
// the ops.
func (r *Reply) Data() []byte { return r.data }

func (r *Reply) SetTid(tid uint64)   { r.tid = tid }
func (r *Reply) SetResult(res int32) { r.result = res }
func (r *Reply) AddFlags(f osd.Flags) {
	r.flags |= f
}

// SwapOps installs ops as the reply's op sequence and returns the previous
// one. The sequences must have the same length.
func (r *Reply) SwapOps(ops []osd.Op) ([]osd.Op, error) {
	if len(ops) != len(r.ops) {
		return nil, &InvariantError{Op: "swap_ops", Want: len(r.ops), Have: len(ops)}
	}
	prev := r.ops
	r.ops = ops
	r.merged = false
	return prev, nil
}

// ClaimOpOutData moves each op's out data from src into the matching reply
// op. src entries are left without out data.
func (r *Reply) ClaimOpOutData(src []osd.Op) error {
	if len(src) != len(r.ops) {
		return &InvariantError{Op: "claim_op_out_data", Want: len(r.ops), Have: len(src)}
	}
	for i := range src {
		r.ops[i].OutData = src[i].OutData
		src[i].OutData = nil
	}
	r.merged = false
	return nil
}

// TakeData moves the shared out data section out of the reply.
func (r *Reply) TakeData() []byte {
	d := r.data
	r.data = nil
	return d
}
