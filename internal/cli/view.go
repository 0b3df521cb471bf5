package cli

import (
	"github.com/julianstephens/opreply/internal/opreply/envelope"
	"github.com/julianstephens/opreply/internal/opreply/message"
	"github.com/julianstephens/opreply/internal/opreply/osd"
)

// ReplyView is the JSON form of a decoded reply.
type ReplyView struct {
	Offset           int64           `json:"offset"`
	Header           envelope.Header `json:"header"`
	Tid              uint64          `json:"tid"`
	Object           string          `json:"object"`
	PGID             string          `json:"pgid"`
	Flags            string          `json:"flags"`
	Result           int32           `json:"result"`
	Errno            string          `json:"errno,omitempty"`
	Epoch            uint32          `json:"epoch"`
	RetryAttempt     int32           `json:"retry_attempt"`
	BadReplayVersion string          `json:"bad_replay_version"`
	ReplayVersion    string          `json:"replay_version"`
	UserVersion      uint64          `json:"user_version"`
	Ops              []OpView        `json:"ops"`
	DataLen          int             `json:"data_len"`
}

type OpView struct {
	Code       string `json:"code"`
	Flags      uint32 `json:"flags"`
	PayloadLen uint32 `json:"payload_len"`
	Rval       int32  `json:"rval"`
	OutLen     int    `json:"out_len"`
}

func newReplyView(offset int64, h envelope.Header, r *message.Reply) ReplyView {
	v := ReplyView{
		Offset:           offset,
		Header:           h,
		Tid:              r.Tid(),
		Object:           r.ObjectID().Name,
		PGID:             r.PGID().String(),
		Flags:            r.Flags().String(),
		Result:           r.Result(),
		Errno:            osd.ErrnoName(r.Result()),
		Epoch:            r.Epoch(),
		RetryAttempt:     r.RetryAttempt(),
		BadReplayVersion: r.BadReplayVersion().String(),
		ReplayVersion:    r.ReplayVersion().String(),
		UserVersion:      r.UserVersion(),
		Ops:              make([]OpView, r.NumOps()),
		DataLen:          len(r.Data()),
	}
	for i, op := range r.Ops() {
		v.Ops[i] = OpView{
			Code:       op.Code.String(),
			Flags:      op.Flags,
			PayloadLen: op.PayloadLen,
			Rval:       op.Rval,
			OutLen:     len(op.OutData),
		}
	}
	return v
}
